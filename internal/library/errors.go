package library

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested book, patron or filter does not exist.
var ErrNotFound = errors.New("not found")

// RuleError is a request that is well formed but not allowed in the
// current state of the library, such as returning a book that is on the
// shelf. Message is shown to the librarian as is.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}

const (
	msgNotCheckedOut     = "Sorry, that book hasn't been checked out."
	msgAlreadyCheckedOut = "Sorry, that book is already checked out."
	msgNoOpenLoan        = "Sorry, no open loan was found for that book."
	msgLibraryIDTaken    = "Library id is already in use."
	msgSelectBook        = "Please select a book."
	msgSelectPatron      = "Please select a patron."
	msgReturnedOn        = "Please enter a valid date for return date. (mm/dd/yyyy)"
)

// notFound maps gorm's missing-row error onto ErrNotFound and wraps
// everything else with what was being looked up.
func notFound(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
