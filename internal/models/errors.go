package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("entity not found")
	ErrForbidden       = errors.New("operation not permitted")
	ErrFeatureDisabled = errors.New("feature is disabled")
	ErrCategoryInUse   = errors.New("category still has items")
	ErrItemInUse       = errors.New("item is part of a set meal")
	ErrBusy            = errors.New("resource busy, retry later")
	ErrStaleCallback   = errors.New("payment already confirmed with a different serial")
)

// ValidationError reports a user-correctable problem with a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
