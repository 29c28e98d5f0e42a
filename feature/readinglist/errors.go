package readinglist

import (
	"errors"
	"fmt"
)

// Local-store failures. These surface synchronously and abort the triggering
// operation; nothing is persisted when one is returned.
var (
	ErrUnableToCreateList  = errors.New("unable to create reading list")
	ErrUnableToDeleteList  = errors.New("unable to delete reading list")
	ErrUnableToUpdateList  = errors.New("unable to update reading list")
	ErrUnableToAddEntry    = errors.New("unable to add entry to reading list")
	ErrUnableToRemoveEntry = errors.New("unable to remove entry from reading list")

	// ErrCannotDeleteDefaultList guards the default list: it can lose
	// entries but never be removed as a list.
	ErrCannotDeleteDefaultList = errors.New("the default reading list cannot be deleted")
)

// ListExistsError reports a create or rename that would collide with another
// non-deleted list under canonical-name comparison.
type ListExistsError struct {
	Name string
}

func (e *ListExistsError) Error() string {
	return fmt.Sprintf("a reading list named %q already exists", e.Name)
}

// ListNotFoundError reports a lookup for a list that does not exist.
type ListNotFoundError struct {
	Name string
}

func (e *ListNotFoundError) Error() string {
	return fmt.Sprintf("no reading list named %q", e.Name)
}
