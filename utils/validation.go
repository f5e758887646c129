package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidatePositive checks if an amount is positive
func ValidatePositive(value decimal.Decimal, fieldName string) error {
	if !value.IsPositive() {
		return NewValidationError(fmt.Sprintf("%s must be positive", fieldName))
	}
	return nil
}

// ValidateNotEmpty checks if a slice is not empty
func ValidateNotEmpty[T any](slice []T, fieldName string) error {
	if len(slice) == 0 {
		return NewValidationError(fmt.Sprintf("%s cannot be empty", fieldName))
	}
	return nil
}

// ValidateOneOf checks that value is one of the allowed options
func ValidateOneOf(value string, allowed []string, fieldName string) error {
	for _, option := range allowed {
		if value == option {
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("%s must be one of %s", fieldName, strings.Join(allowed, ", ")))
}
