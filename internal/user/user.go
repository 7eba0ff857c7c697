package user

import (
	"context"
	"strconv"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
	"github.com/google/uuid"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// Permissions guarding the user administration API.
const (
	PermissionListUsers   = "employees"
	PermissionManageUsers = "users.manage"
)

// Roles lists every role a user record may carry.
var Roles = []string{RoleAdmin, RoleManager, RoleHR, RoleEmployee}

func IsKnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         string     `json:"role"`
	Department   string     `json:"department"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin"`
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// Draft carries the caller-supplied fields of a new user. ID and CreatedAt
// are always assigned by the store.
type Draft struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	Department   string
	IsActive     bool
}

// Patch is a shallow update: nil fields are left untouched.
type Patch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Role         *string
	Department   *string
	IsActive     *bool
	LastLogin    *time.Time
}

// Store is the credential store. Lookups return (nil, nil) on a miss.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	CreateUser(ctx context.Context, draft Draft) (*User, error)
	UpdateUser(ctx context.Context, id string, patch Patch) (*User, error)
	RecordLogin(ctx context.Context, id string) error
	GetRolePermissions(ctx context.Context, role string) ([]string, error)
	Ping(ctx context.Context) error
}

// NewUserID returns ids of the form usr_<base36 unix millis>_<5 random chars>.
func NewUserID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return "usr_" + strconv.FormatInt(now.UnixMilli(), 36) + "_" + random
}

// NewFromDraft applies the store-side defaults to a draft.
func NewFromDraft(d Draft, now time.Time) *User {
	role := d.Role
	if role == "" {
		role = RoleEmployee
	}
	return &User{
		ID:           NewUserID(now),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         role,
		Department:   d.Department,
		IsActive:     d.IsActive,
		CreatedAt:    now.UTC(),
	}
}

// Apply merges the non-nil patch fields into u.
func (p Patch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.LastLogin != nil {
		t := p.LastLogin.UTC()
		u.LastLogin = &t
	}
}

func (p Patch) IsEmpty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.FirstName == nil && p.LastName == nil &&
		p.Role == nil && p.Department == nil && p.IsActive == nil && p.LastLogin == nil
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		Department:   u.Department,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}
