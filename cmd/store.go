package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/hr-portal/internal"
	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-portal/internal/department"
	"github.com/frahmantamala/hr-portal/internal/user"
	"github.com/frahmantamala/hr-portal/internal/user/filestore"
	userPostgres "github.com/frahmantamala/hr-portal/internal/user/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// credentialStore is what both backends offer beyond user.Store.
type credentialStore interface {
	user.Store
	department.RepositoryAPI
	SeedRoles(ctx context.Context, roles []userDatamodel.Role) error
	SeedDepartments(ctx context.Context, departments []userDatamodel.Department) error
	ClearUsers(ctx context.Context) error
}

// openStore builds the configured backend. The returned close func is never
// nil.
func openStore(cfg internal.StoreConfig) (credentialStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case internal.StoreDriverFile:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("create data dir: %w", err)
		}
		store, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case internal.StoreDriverPostgres:
		db, err := initDB(cfg)
		if err != nil {
			return nil, noop, err
		}
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("open gorm postgres: %w", err)
		}
		return userPostgres.NewUserRepository(gdb), db.Close, nil

	case internal.StoreDriverSQLite:
		gdb, err := gorm.Open(sqlite.Open(cfg.Source), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		if err := gdb.AutoMigrate(&userDatamodel.User{}, &userDatamodel.Role{}, &userDatamodel.Department{}); err != nil {
			return nil, noop, fmt.Errorf("migrate sqlite schema: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, noop, err
		}
		sqlDB.SetMaxOpenConns(1)
		return userPostgres.NewUserRepository(gdb), sqlDB.Close, nil
	}

	return nil, noop, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

// initDB opens the postgres pool through the pgx stdlib driver.
func initDB(cfg internal.StoreConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
