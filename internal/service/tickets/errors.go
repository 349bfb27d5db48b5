package tickets

import (
	"errors"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid ticket status")
	ErrOrderNotPaid   = errors.New("order is not paid")
)
