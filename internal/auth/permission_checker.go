package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WildcardPermission grants every permission.
const WildcardPermission = "*"

type RolePermissionSource interface {
	GetRolePermissions(ctx context.Context, role string) ([]string, error)
}

// PermissionChecker answers role permission questions, caching each role's
// permission list for a bounded time.
type PermissionChecker struct {
	source RolePermissionSource
	cache  *expirable.LRU[string, []string]
	logger *slog.Logger
}

func NewPermissionChecker(source RolePermissionSource, ttl time.Duration, logger *slog.Logger) *PermissionChecker {
	return &PermissionChecker{
		source: source,
		cache:  expirable.NewLRU[string, []string](32, nil, ttl),
		logger: logger,
	}
}

func (c *PermissionChecker) Permissions(ctx context.Context, role string) ([]string, error) {
	if perms, ok := c.cache.Get(role); ok {
		return perms, nil
	}
	perms, err := c.source.GetRolePermissions(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("load permissions for role %q: %w", role, err)
	}
	c.cache.Add(role, perms)
	return perms, nil
}

// HasPermission fails closed: a lookup error is reported as no permission
// together with the error.
func (c *PermissionChecker) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	perms, err := c.Permissions(ctx, role)
	if err != nil {
		return false, err
	}
	return Grants(perms, permission), nil
}

// Invalidate drops cached permissions, e.g. after reseeding roles.
func (c *PermissionChecker) Invalidate() {
	c.cache.Purge()
}

func Grants(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == WildcardPermission || p == permission {
			return true
		}
	}
	return false
}
