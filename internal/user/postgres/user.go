package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-portal/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository is the SQL credential store. It works against postgres in
// production and sqlite in tests; the unique index on users.email is the
// last line of defence against concurrent duplicate registrations.
type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*user.User, error) {
	var m userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user.FromDataModel(&m), nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]*user.User, error) {
	var rows []*userDatamodel.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*user.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, user.FromDataModel(m))
	}
	return users, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, draft user.Draft) (*user.User, error) {
	created := user.NewFromDraft(draft, r.now())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", draft.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.ErrDuplicateEmail
		}
		return tx.Create(user.ToDataModel(created)).Error
	})
	if err != nil {
		return nil, translate(err, "create user")
	}
	return created, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	var updated *user.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m userDatamodel.User
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return err
		}

		if patch.Email != nil {
			var count int64
			if err := tx.Model(&userDatamodel.User{}).
				Where("email = ? AND id <> ?", *patch.Email, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return internal.ErrDuplicateEmail
			}
		}

		updated = user.FromDataModel(&m)
		patch.Apply(updated)
		return tx.Save(user.ToDataModel(updated)).Error
	})
	if err != nil {
		return nil, translate(err, "update user")
	}
	return updated, nil
}

func (r *UserRepository) RecordLogin(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("last_login", r.now().UTC())
	if res.Error != nil {
		return fmt.Errorf("record login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetRolePermissions(ctx context.Context, role string) ([]string, error) {
	var m userDatamodel.Role
	err := r.db.WithContext(ctx).Where("name = ?", role).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("get role permissions: %w", err)
	}
	if m.Permissions == nil {
		return []string{}, nil
	}
	return m.Permissions, nil
}

func (r *UserRepository) ListDepartments(ctx context.Context) ([]*userDatamodel.Department, error) {
	var departments []*userDatamodel.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

func (r *UserRepository) SeedRoles(ctx context.Context, roles []userDatamodel.Role) error {
	if len(roles) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, UpdateAll: true}).
		Create(&roles).Error
}

func (r *UserRepository) SeedDepartments(ctx context.Context, departments []userDatamodel.Department) error {
	if len(departments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&departments).Error
}

func (r *UserRepository) ClearUsers(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&userDatamodel.User{}).Error
}

func (r *UserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// translate keeps domain sentinels intact and maps unique violations that
// slipped past the existence check onto DuplicateEmail.
func translate(err error, op string) error {
	if errors.Is(err, internal.ErrDuplicateEmail) || errors.Is(err, internal.ErrUserNotFound) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateEmail
	}
	return fmt.Errorf("%s: %w", op, err)
}
