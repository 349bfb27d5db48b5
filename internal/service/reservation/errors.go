package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrAreaNotFound          = errors.New("area not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationNotPending = errors.New("reservation is no longer pending")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
)

// InsufficientInventoryError names the first area that could not cover the
// requested quantity.
type InsufficientInventoryError struct {
	Area      string `json:"area"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory in area %s: requested %d, available %d",
		e.Area, e.Requested, e.Available)
}
