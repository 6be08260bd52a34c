package store

import (
	"fmt"
	"strings"

	"worklog/internal/core"
)

// DuplicateIDError reports a record id that appears twice in a collection.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate record id: %s", e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return core.ErrDuplicateID
}

func trimLabel(s string) string {
	return strings.TrimSpace(s)
}
