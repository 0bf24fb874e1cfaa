package services

import "errors"

// Error taxonomy. Service mengembalikan sentinel ini; hanya controller yang
// menerjemahkan ke HTTP status code.
var (
	// ConflictError
	ErrDuplicateName = errors.New("menu item with that name already exists")
	ErrWeekConflict  = errors.New("a weekly menu already exists for that week")

	// NotFoundError
	ErrItemNotFound    = errors.New("menu item not found")
	ErrMenuNotFound    = errors.New("weekly menu not found")
	ErrVersionNotFound = errors.New("menu version not found")
	ErrNoPreviousMenu  = errors.New("no menu found for the previous week")
	ErrParentNotFound  = errors.New("parent not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrTopupNotFound   = errors.New("topup not found")

	// UnprocessableError: order valid secara bentuk tapi tidak bisa dieksekusi
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrItemUnavailable     = errors.New("menu item is not available for ordering")

	// ValidationError
	ErrInvalidPrice    = errors.New("price must be a non-negative number")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrReasonRequired  = errors.New("decline reason is required")

	// ConflictError pada state machine
	ErrTerminalStatus  = errors.New("order is in a terminal status")
	ErrTopupNotPending = errors.New("topup is not pending")
	ErrAlreadyRefunded = errors.New("order has already been refunded")
	ErrNotCancelled    = errors.New("only cancelled orders can be refunded")
)

// IsNotFound melaporkan apakah err adalah salah satu sentinel not-found.
func IsNotFound(err error) bool {
	switch {
	case errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrMenuNotFound),
		errors.Is(err, ErrVersionNotFound),
		errors.Is(err, ErrNoPreviousMenu),
		errors.Is(err, ErrParentNotFound),
		errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrTopupNotFound):
		return true
	}
	return false
}

// IsConflict melaporkan apakah err adalah conflict (duplikasi / state machine).
func IsConflict(err error) bool {
	switch {
	case errors.Is(err, ErrDuplicateName),
		errors.Is(err, ErrWeekConflict),
		errors.Is(err, ErrTerminalStatus),
		errors.Is(err, ErrTopupNotPending),
		errors.Is(err, ErrAlreadyRefunded),
		errors.Is(err, ErrNotCancelled):
		return true
	}
	return false
}

// IsValidation melaporkan apakah err adalah kesalahan input.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrReasonRequired):
		return true
	}
	return false
}
