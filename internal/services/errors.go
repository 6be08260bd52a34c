package services

import (
	"fmt"

	"worklog/internal/core"
)

// ErrRefresh reports a collection that could not be reloaded. The previous
// snapshot stays in service.
type ErrRefresh struct {
	Kind core.Kind
	Err  error
}

func (e *ErrRefresh) Error() string {
	return fmt.Sprintf("refresh %s: %v", e.Kind, e.Err)
}

func (e *ErrRefresh) Unwrap() error {
	return e.Err
}
