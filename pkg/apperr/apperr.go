// Package apperr defines the error kinds surfaced at the HTTP boundary.
package apperr

import "fmt"

// ValidationError reports malformed or missing input fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid returns a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced restaurant that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Restaurant %s not found.", e.ID)
}

// ItemNotFoundError reports an order line naming an item absent from the menu.
type ItemNotFoundError struct {
	Item string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Item %s not found in restaurant menu.", e.Item)
}

// StorageError wraps a datastore failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError for op. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
