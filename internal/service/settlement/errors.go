package settlement

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrSettlementConflict = errors.New("order already settled with a different outcome")
	ErrNotCancellable     = errors.New("order cannot be cancelled")
	ErrInvalidSignature   = errors.New("invalid callback signature")
	ErrInvalidCallback    = errors.New("invalid callback payload")
)
