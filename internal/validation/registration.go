package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/harshit-singhania/recallforge/pkg/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRegistration checks a registration request against the struct
// tags on api.RegisterRequest plus the username format rules, so obviously
// bad input never reaches the server.
func ValidateRegistration(req api.RegisterRequest) error {
	if err := ValidateUsername(req.Username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Field() {
			case "Email":
				return fmt.Errorf("invalid email address")
			case "Password":
				return fmt.Errorf("password must be at least %s characters long", fe.Param())
			default:
				return fmt.Errorf("invalid %s", fe.Field())
			}
		}
		return fmt.Errorf("invalid registration data: %w", err)
	}

	return nil
}
