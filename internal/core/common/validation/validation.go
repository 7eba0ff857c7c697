package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	errors "github.com/frahmantamala/hr-portal/internal"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) fail(message string, code errors.ErrorCode) *errors.AppError {
	return errors.NewValidationFieldError(fv.FieldName, message, code)
}

// Required rejects empty strings and nil string pointers. An empty message
// falls back to "<field> is required".
func (fv *FieldValidator) Required(message string) *FieldValidator {
	if message == "" {
		message = fmt.Sprintf("%s is required", fv.FieldName)
	}
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if v == "" {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return fv.fail(message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// MinLength counts characters, not bytes. A nil *string is skipped so that
// optional patch fields can share the rule.
func (fv *FieldValidator) MinLength(min int, message string) *FieldValidator {
	if message == "" {
		message = fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min)
	}
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := stringValue(value); ok && utf8.RuneCountInString(s) < min {
			return fv.fail(message, errors.ErrCodeTooShort)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if s, ok := stringValue(value); ok && utf8.RuneCountInString(s) > max {
			message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
			return fv.fail(message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		if !IsEmail(s) {
			return fv.fail(message, errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

// PasswordStrength reports only the first unmet rule: length first, then
// the lower/upper/digit mix.
func (fv *FieldValidator) PasswordStrength() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, _ := stringValue(value)
		if msg := PasswordProblem(s); msg != "" {
			return fv.fail(msg, errors.ErrCodeWeakPassword)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(message string, allowed ...string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := stringValue(value)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fv.fail(message, errors.ErrCodeInvalidRole)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate runs every field in declaration order and folds all failures into
// one validation error whose detailed message joins them with ", ".
func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
				continue
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordProblem returns a user-facing message describing why the password
// is too weak, or "" when it is acceptable.
func PasswordProblem(password string) string {
	if utf8.RuneCountInString(password) < 8 {
		return "Password must be at least 8 characters"
	}
	if len(password) > MaxPasswordBytes {
		return "Password must be at most 72 bytes"
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return "Password must contain at least one lowercase letter, one uppercase letter and one digit"
	}
	return ""
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
