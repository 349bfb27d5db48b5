package orders

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSalesClosed       = errors.New("session is not on sale")
	ErrInvalidCart       = errors.New("invalid cart")
	ErrAreaNotFound      = errors.New("area not found")
	ErrUnknownTicketType = errors.New("unknown ticket type")
	ErrPriceMismatch     = errors.New("unit price does not match the current price")
	ErrEventMismatch     = errors.New("session does not belong to the event")
	ErrOrderNotFound     = errors.New("order not found")
	ErrRateLimited       = errors.New("too many orders, retry later")
)

// PersistenceError reports a failure after seats were reserved. Compensated
// tells whether the held seats were given back before returning.
type PersistenceError struct {
	Compensated bool
	Err         error
}

func (e *PersistenceError) Error() string {
	if e.Compensated {
		return fmt.Sprintf("order could not be saved, held seats were released: %v", e.Err)
	}
	return fmt.Sprintf("order could not be saved, held seats are released on expiry: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// RateLimitedError carries how long the buyer should wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%v: retry in %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
