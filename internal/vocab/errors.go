package vocab

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned when owner, notebook or headword is empty
var ErrInvalidRecord = errors.New("owner, notebook and headword are required")

// DuplicateError reports an add or rename that would break headword uniqueness
// within an owner's notebook.
type DuplicateError struct {
	Owner    string
	Notebook string
	Headword string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("word %q already exists in notebook %q", e.Headword, e.Notebook)
}

// EnrichmentError reports a failed translation or phonetic lookup
type EnrichmentError struct {
	Field    string // "translation" or "phonetic"
	Headword string
	Err      error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("failed to look up %s for %q: %v", e.Field, e.Headword, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// IsDuplicate reports whether err is a DuplicateError
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}
