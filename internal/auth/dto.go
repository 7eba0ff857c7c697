package auth

import (
	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterDTO carries self-registration input. There is no role field:
// self-registered accounts are always employees.
type RegisterDTO struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Email("Invalid email")
	v.Field("password", d.Password).Required("Password is required")
	return v.Validate()
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("firstName", d.FirstName).MinLength(2, "First name must be at least 2 characters")
	v.Field("lastName", d.LastName).MinLength(2, "Last name must be at least 2 characters")
	v.Field("email", d.Email).Email("Invalid email")
	v.Field("password", d.Password).PasswordStrength()
	v.Field("department", d.Department).Required("Department is required")
	return v.Validate()
}
