package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type Config struct {
	App           AppConfig           `mapstructure:"app" envconfig:"APP"`
	Server        ServerConfig        `mapstructure:"http_server" envconfig:"HTTP_SERVER"`
	Store         StoreConfig         `mapstructure:"store" envconfig:"STORE"`
	Security      SecurityConfig      `mapstructure:"security" envconfig:"SECURITY"`
	Redis         RedisConfig         `mapstructure:"redis" envconfig:"REDIS"`
	Access        AccessConfig        `mapstructure:"access" envconfig:"ACCESS"`
	Observability ObservabilityConfig `mapstructure:"observability" envconfig:"OBSERVABILITY"`
}

type AppConfig struct {
	Name string `mapstructure:"name" envconfig:"NAME" default:"hr-portal"`
	Env  string `mapstructure:"env" envconfig:"ENV" default:"development" validate:"required,oneof=development test production"`
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"PORT" default:"8080" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	TrustProxyHeaders bool          `mapstructure:"trust_proxy_headers" envconfig:"TRUST_PROXY_HEADERS"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
}

type StoreConfig struct {
	Driver          string        `mapstructure:"driver" envconfig:"DRIVER" default:"file" validate:"required,oneof=file postgres sqlite"`
	DataDir         string        `mapstructure:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required_if=Driver file"`
	Source          string        `mapstructure:"source" envconfig:"SOURCE" validate:"required_unless=Driver file"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS" default:"10" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS" default:"5" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME" default:"5m"`
}

type SecurityConfig struct {
	SessionSecret      string           `mapstructure:"session_secret" envconfig:"SESSION_SECRET" validate:"required,min=32"`
	SessionTTL         time.Duration    `mapstructure:"session_ttl" envconfig:"SESSION_TTL" default:"168h" validate:"required"`
	BCryptCost         int              `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST" default:"12" validate:"required,min=4,max=15"`
	PermissionCacheTTL time.Duration    `mapstructure:"permission_cache_ttl" envconfig:"PERMISSION_CACHE_TTL" default:"5m"`
	Revocation         RevocationConfig `mapstructure:"revocation" envconfig:"REVOCATION"`
	RateLimit          RateLimitConfig  `mapstructure:"rate_limit" envconfig:"RATE_LIMIT"`
}

type RevocationConfig struct {
	Enabled bool `mapstructure:"enabled" envconfig:"ENABLED"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" envconfig:"REQUESTS" default:"20" validate:"min=0"`
	Window   time.Duration `mapstructure:"window" envconfig:"WINDOW" default:"1m"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" envconfig:"ADDR" default:"127.0.0.1:6379"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int    `mapstructure:"db" envconfig:"DB" validate:"min=0"`
}

type AccessConfig struct {
	DefaultDeny bool `mapstructure:"default_deny" envconfig:"DEFAULT_DENY"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics" envconfig:"METRICS"`
	Logging LoggingConfig `mapstructure:"logging" envconfig:"LOGGING"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" envconfig:"ENABLED" default:"true"`
	Path    string `mapstructure:"path" envconfig:"PATH" default:"/metrics" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL" default:"info" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" envconfig:"FORMAT" default:"text" validate:"required,oneof=json text"`
}

// LoadConfigFromEnv builds the configuration purely from environment
// variables, e.g. SECURITY_SESSION_SECRET or STORE_DRIVER.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("store config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if c.Security.Revocation.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis config: addr is required when revocation is enabled")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *StoreConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *StoreConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if strings.TrimSpace(c.SessionSecret) == "" {
		return errors.New("session secret is required")
	}
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 15 {
		return errors.New("bcrypt cost must be between 4 and 15")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}
