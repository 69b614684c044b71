package entities

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages shown next to the form when a field fails validation, keyed by
// "<Type>.<form field>".
var fieldMessages = map[string]string{
	"Book.title":  "Title is a required field.",
	"Book.author": "Author is a required field.",
	"Book.genre":  "Genre is a required field.",

	"Patron.first_name": "First name is a required field.",
	"Patron.last_name":  "Last name is a required field.",
	"Patron.address":    "Address is a required field.",
	"Patron.email":      "Email address invalid.",
	"Patron.library_id": "Library id is a required field.",
	"Patron.zip_id":     "Zip code is a required field.",

	"Loan.book_id":   "Please select a book.",
	"Loan.patron_id": "Please select a patron.",
	"Loan.loaned_on": "Please enter a valid date for loan date. (mm/dd/yyyy)",
	"Loan.return_by": "Please enter a valid date for return date. (mm/dd/yyyy)",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError is a single rejected form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation, in struct
// field order. Nothing is persisted when it is returned.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), " ")
}

// Messages returns the user-facing messages in field order.
func (e *ValidationError) Messages() []string {
	messages := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		messages = append(messages, fe.Message)
	}
	return messages
}

// Field returns the message for a field, or "".
func (e *ValidationError) Field(name string) string {
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe.Message
		}
	}
	return ""
}

// Add appends a message for field unless one is already present.
func (e *ValidationError) Add(field, message string) {
	if e.Field(field) != "" {
		return
	}
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds at least one error.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Validate checks the validate tags of a Book, Patron or Loan.
// It returns *ValidationError for rejected input.
func Validate(entity any) error {
	ve := &ValidationError{}
	if err := Collect(ve, entity); err != nil {
		return err
	}
	return ve.OrNil()
}

// Collect runs the same checks as Validate but appends into an existing
// ValidationError, so callers can add their own reference checks.
func Collect(ve *ValidationError, entity any) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return fmt.Errorf("validate %T: %w", entity, err)
	}

	for _, fe := range invalid {
		message, ok := fieldMessages[fe.Namespace()]
		if !ok {
			message = fmt.Sprintf("%s is invalid.", fe.Field())
		}
		ve.Add(fe.Field(), message)
	}
	return nil
}
