package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/hr-portal/internal/user"
)

type RouteClass string

const (
	ClassPublic        RouteClass = "public"
	ClassProtectedAPI  RouteClass = "protected-api"
	ClassProtectedPage RouteClass = "protected-page"
)

// RouteRule is one entry of the access table. Empty Roles means any
// authenticated role. Redirect is where a page request lands when the role
// is not allowed. An Exact rule matches its prefix only, not the paths below.
type RouteRule struct {
	Prefix   string
	Class    RouteClass
	Roles    []string
	Redirect string
	Exact    bool
}

// Matches is segment aware: /hr matches /hr and /hr/employees, not /hrx.
func (r RouteRule) Matches(path string) bool {
	if path == r.Prefix {
		return true
	}
	if r.Exact {
		return false
	}
	prefix := strings.TrimSuffix(r.Prefix, "/")
	return strings.HasPrefix(path, prefix+"/") && prefix != ""
}

func (r RouteRule) Allows(role string) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RouteTable classifies request paths; the first matching rule wins.
type RouteTable struct {
	rules       []RouteRule
	defaultDeny bool
}

func NewRouteTable(rules []RouteRule, defaultDeny bool) (*RouteTable, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &RouteTable{rules: append([]RouteRule(nil), rules...), defaultDeny: defaultDeny}, nil
}

// Classify returns the rule governing path. Unlisted paths yield a public
// rule unless the table denies by default, in which case /api paths are
// protected APIs and everything else a protected page.
func (t *RouteTable) Classify(path string) RouteRule {
	for _, rule := range t.rules {
		if rule.Matches(path) {
			return rule
		}
	}
	if !t.defaultDeny {
		return RouteRule{Prefix: path, Class: ClassPublic}
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		return RouteRule{Prefix: path, Class: ClassProtectedAPI}
	}
	return RouteRule{Prefix: path, Class: ClassProtectedPage}
}

func (t *RouteTable) Rules() []RouteRule {
	return append([]RouteRule(nil), t.rules...)
}

func ValidateRules(rules []RouteRule) error {
	var errs []error
	seen := make(map[string]bool, len(rules))

	for i, rule := range rules {
		where := fmt.Sprintf("rule %d (%s)", i, rule.Prefix)

		if !strings.HasPrefix(rule.Prefix, "/") {
			errs = append(errs, fmt.Errorf("%s: prefix must start with /", where))
		}
		key := rule.Prefix
		if rule.Exact {
			key = "=" + key
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate prefix", where))
		}
		seen[key] = true

		switch rule.Class {
		case ClassPublic:
			if len(rule.Roles) > 0 {
				errs = append(errs, fmt.Errorf("%s: public rules cannot restrict roles", where))
			}
		case ClassProtectedAPI:
		case ClassProtectedPage:
			if len(rule.Roles) > 0 && rule.Redirect == "" {
				errs = append(errs, fmt.Errorf("%s: page rule with roles needs a redirect", where))
			}
		default:
			errs = append(errs, fmt.Errorf("%s: unknown class %q", where, rule.Class))
		}

		for _, role := range rule.Roles {
			if !user.IsKnownRole(role) {
				errs = append(errs, fmt.Errorf("%s: unknown role %q", where, role))
			}
		}
		if rule.Redirect != "" && !strings.HasPrefix(rule.Redirect, "/") {
			errs = append(errs, fmt.Errorf("%s: redirect must be an absolute path", where))
		}
	}

	return errors.Join(errs...)
}

// DefaultRouteRules is the access table of the portal.
func DefaultRouteRules() []RouteRule {
	public := []string{
		"/", "/login", "/register", "/forgot-password",
		"/api/auth/login", "/api/auth/register", "/api/auth/logout", "/api/departments",
		"/healthz", "/ping", "/metrics", "/openapi.yml", "/swagger",
	}

	rules := make([]RouteRule, 0, len(public)+8)
	for _, p := range public {
		rules = append(rules, RouteRule{Prefix: p, Class: ClassPublic})
	}

	return append(rules,
		RouteRule{Prefix: "/api/auth/me", Class: ClassProtectedAPI},
		RouteRule{Prefix: "/api/users", Class: ClassProtectedAPI},
		RouteRule{
			Prefix:   "/dashboard",
			Exact:    true,
			Class:    ClassProtectedPage,
			Roles:    []string{user.RoleAdmin, user.RoleManager, user.RoleHR},
			Redirect: "/employee/dashboard",
		},
		RouteRule{Prefix: "/dashboard", Class: ClassProtectedPage},
		RouteRule{Prefix: "/admin", Class: ClassProtectedPage, Roles: []string{user.RoleAdmin}, Redirect: "/dashboard"},
		RouteRule{Prefix: "/hr", Class: ClassProtectedPage, Roles: []string{user.RoleHR, user.RoleAdmin}, Redirect: "/dashboard"},
		RouteRule{Prefix: "/manager", Class: ClassProtectedPage, Roles: []string{user.RoleManager, user.RoleAdmin}, Redirect: "/dashboard"},
		RouteRule{
			Prefix:   "/employee",
			Class:    ClassProtectedPage,
			Roles:    []string{user.RoleEmployee, user.RoleAdmin, user.RoleManager, user.RoleHR},
			Redirect: "/dashboard",
		},
	)
}
