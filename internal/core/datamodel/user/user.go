package user

import "time"

// User is the persisted row / file record. The password hash is stored
// under the "password" key in the flat-file layout.
type User struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	Email        string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"password"`
	FirstName    string     `gorm:"column:first_name;not null" json:"firstName"`
	LastName     string     `gorm:"column:last_name;not null" json:"lastName"`
	Role         string     `gorm:"column:role;not null" json:"role"`
	Department   string     `gorm:"column:department" json:"department"`
	IsActive     bool       `gorm:"column:is_active;not null" json:"isActive"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	LastLogin    *time.Time `gorm:"column:last_login" json:"lastLogin"`
}

func (User) TableName() string { return "users" }

type Role struct {
	Name        string   `gorm:"column:name;primaryKey" json:"name"`
	Permissions []string `gorm:"column:permissions;serializer:json;not null" json:"permissions"`
}

func (Role) TableName() string { return "roles" }

type Department struct {
	ID   string `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (Department) TableName() string { return "departments" }
