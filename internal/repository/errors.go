package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrConstraint   = errors.New("constraint violated")
	ErrAreaNotFound = errors.New("area not found")
	ErrInUse        = errors.New("still referenced")
)

// InsufficientInventoryError reports the first area of a cart that could
// not cover its requested quantity.
type InsufficientInventoryError struct {
	Area      string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory in area %q: requested %d, available %d",
		e.Area, e.Requested, e.Available)
}
