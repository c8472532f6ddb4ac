package tracker

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a ticket, column or customer does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrSelfRelation is returned when a ticket is related to itself.
	ErrSelfRelation = errors.New("self-referential relation")
	// ErrDuplicateCustomer is returned when a company name is already taken.
	ErrDuplicateCustomer = errors.New("customer already exists")
)

// ValidationError lists the input fields that failed validation, by their
// JSON names, alongside a readable message per field.
type ValidationError struct {
	Fields   []string
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, field)
	e.Messages = append(e.Messages, msg)
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, msg string) error {
	e := &ValidationError{}
	e.add(field, msg)
	return e
}

// InvalidFields returns the JSON names of the offending fields.
func (e *ValidationError) InvalidFields() []string {
	return append([]string(nil), e.Fields...)
}
