package user

import (
	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/common/validation"
)

// UpdateUserDTO is the admin edit payload; absent fields are not touched.
type UpdateUserDTO struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"isActive"`
}

func (d UpdateUserDTO) Validate() *internal.AppError {
	if d.FirstName == nil && d.LastName == nil && d.Role == nil && d.Department == nil && d.IsActive == nil {
		return internal.NewValidationError("No fields to update", internal.ErrCodeValidationFailed)
	}

	v := validation.NewValidator()
	v.Field("firstName", d.FirstName).
		MinLength(2, "First name must be at least 2 characters").
		MaxLength(100)
	v.Field("lastName", d.LastName).
		MinLength(2, "Last name must be at least 2 characters").
		MaxLength(100)
	v.Field("role", d.Role).
		OneOf("Role must be one of admin, manager, hr, employee", Roles...)
	v.Field("department", d.Department).
		MinLength(1, "Department is required")
	return v.Validate()
}

func (d UpdateUserDTO) ToPatch() Patch {
	return Patch{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Role:       d.Role,
		Department: d.Department,
		IsActive:   d.IsActive,
	}
}
