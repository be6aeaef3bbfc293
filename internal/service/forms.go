package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/msomdec/agenda/internal/domain"
)

// RegisterForm is the submitted registration form.
type RegisterForm struct {
	Username        string `validate:"required,min=3,max=32,username"`
	Email           string `validate:"required,email,max=254"`
	Password        string `validate:"required,min=8,max=72"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// PasswordForm is the submitted change-password form.
type PasswordForm struct {
	OldPassword     string `validate:"required"`
	NewPassword     string `validate:"required,min=8,max=72"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

// EntryForm is the submitted add-entry form. Date is either DD-MM-YYYY or
// YYYY-MM-DD; when it is empty the separate Day, Month and Year fields are
// used instead.
type EntryForm struct {
	Date        string
	Day         string `validate:"required_without=Date"`
	Month       string `validate:"required_without=Date"`
	Year        string `validate:"required_without=Date"`
	Description string `validate:"required,max=500"`
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateForm runs struct validation and converts failures into an
// ErrInvalidInput carrying readable messages.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate form: %w", err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required", "required_without":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "username":
		return field + " may only contain letters, digits and underscores"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func fieldLabel(name string) string {
	switch name {
	case "ConfirmPassword":
		return "password confirmation"
	case "OldPassword":
		return "current password"
	case "NewPassword":
		return "new password"
	}
	return strings.ToLower(name)
}
