package validate

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Get returns the process-wide validator instance
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
	})
	return instance
}

// Struct validates a request input struct
func Struct(s interface{}) error {
	return Get().Struct(s)
}

// Message renders a validation error into a single user-facing line
func Message(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid input"
	}

	parts := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			parts = append(parts, e.Field()+" is required")
		case "max":
			parts = append(parts, e.Field()+" is too long")
		default:
			parts = append(parts, e.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
