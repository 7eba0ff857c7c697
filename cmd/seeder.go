package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hr-portal/internal/auth"
	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/user"
	"github.com/frahmantamala/hr-portal/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the credential store with roles, departments and demo users",
	Long:  `Seed the configured credential store with the role permission table, departments and one demo account per role.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(cfg.App.Env)
		lg := logger.LoggerWrapper()

		store, closeStore, err := openStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closeStore()

		bus := events.NewEventBus(lg)
		auth.NewAuditLogger(lg).RegisterEventHandlers(bus)

		return seed(cmd.Context(), store, auth.NewHasher(cfg.Security.BCryptCost), bus, clearData)
	},
}

// seed announces every account it creates on bus synchronously, so audit
// lines are written before the command exits.
func seed(ctx context.Context, store credentialStore, hasher *auth.Hasher, bus *events.EventBus, clear bool) error {
	lg := logger.From(ctx)

	if clear {
		if err := store.ClearUsers(ctx); err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}
		lg.Info("cleared existing users")
	}

	if err := store.SeedRoles(ctx, user.DefaultRoles()); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	lg.Info("seeded roles", "count", len(user.DefaultRoles()))

	if err := store.SeedDepartments(ctx, user.DefaultDepartments()); err != nil {
		return fmt.Errorf("failed to seed departments: %w", err)
	}
	lg.Info("seeded departments", "count", len(user.DefaultDepartments()))

	for _, demo := range user.DemoUsers() {
		existing, err := store.FindUserByEmail(ctx, demo.Email)
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", demo.Email, err)
		}
		if existing != nil {
			lg.Info("demo user already exists", "email", demo.Email)
			continue
		}

		hash, err := hasher.Hash(demo.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", demo.Email, err)
		}
		draft := demo.Draft
		draft.PasswordHash = hash

		created, err := store.CreateUser(ctx, draft)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", demo.Email, err)
		}
		lg.Info("seeded demo user", "email", created.Email, "role", created.Role, "id", created.ID)

		if err := bus.PublishSync(ctx, events.NewUserRegisteredEvent(created.ID, created.Email, created.Department)); err != nil {
			return fmt.Errorf("failed to announce %s: %w", created.Email, err)
		}
	}

	return nil
}
