package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers proxy-specific validation rules.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("browser_name", validateBrowserName); err != nil {
		return fmt.Errorf("failed to register browser_name validator: %w", err)
	}
	return nil
}

// validateBrowserName rejects punctuation or whitespace in an
// unsupported-browser list entry.
func validateBrowserName(fl validator.FieldLevel) bool {
	return browserNamePattern.MatchString(fl.Field().String())
}

// Validate validates the EnvConfig using struct tags and cross-field rules.
func (c *EnvConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustomValidators(v); err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	for _, name := range c.UnsupportedBrowsers {
		if !browserNamePattern.MatchString(name) {
			return fmt.Errorf("unsupported_browsers: %q must contain no punctuation or whitespace", name)
		}
	}
	for i, rule := range c.RateLimit {
		if rule.MaxRequests <= 0 || rule.Seconds <= 0 {
			return fmt.Errorf("rate_limit[%d]: max_requests and seconds must both be positive", i)
		}
	}
	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "browser_name":
		return fmt.Sprintf("%s must contain no punctuation or whitespace", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
