package service

import (
	"errors"
	"fmt"

	"booking-service/internal/repository"
)

// Kind classifies failures so callers can choose between fixing input,
// re-reading state, or giving up.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
	KindTerminalState
	KindConstraintViolation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindTerminalState:
		return "terminal_state"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal_error"
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// KindOf returns KindInternal for errors that did not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUnauthorized = newErr(KindUnauthorized, "unauthorized")
	ErrForbidden    = newErr(KindForbidden, "forbidden")
	ErrOperatorOnly = newErr(KindForbidden, "operation requires admin role")

	ErrUserNotFound        = newErr(KindNotFound, "user not found")
	ErrZoneNotFound        = newErr(KindNotFound, "zone not found")
	ErrTableNotFound       = newErr(KindNotFound, "table not found")
	ErrMenuItemNotFound    = newErr(KindNotFound, "menu item not found")
	ErrReservationNotFound = newErr(KindNotFound, "reservation not found")
	ErrOrderNotFound       = newErr(KindNotFound, "order not found")

	ErrMissingField        = newErr(KindValidation, "missing required field")
	ErrInvalidDate         = newErr(KindValidation, "reservation_date must be YYYY-MM-DD")
	ErrInvalidTime         = newErr(KindValidation, "reservation_time must be HH:MM")
	ErrDateInPast          = newErr(KindValidation, "reservation_date is in the past")
	ErrGuestCountInvalid   = newErr(KindValidation, "guest_count must be between 1 and 50")
	ErrCapacityExceeded    = newErr(KindValidation, "guest_count exceeds table capacity")
	ErrTableInactive       = newErr(KindValidation, "table is not active")
	ErrTableZoneMismatch   = newErr(KindValidation, "table does not belong to zone")
	ErrInvalidStatus       = newErr(KindValidation, "invalid status")
	ErrExpiredNotManual    = newErr(KindValidation, "expired is set by the system only")
	ErrInvalidTransition   = newErr(KindValidation, "status transition not allowed")
	ErrEmptyPatch          = newErr(KindValidation, "no changes to apply")
	ErrInvalidOrderType    = newErr(KindValidation, "order_type must be dine-in, takeout or delivery")
	ErrInvalidPayment      = newErr(KindValidation, "invalid payment status")
	ErrBadPaymentMethod    = newErr(KindValidation, "payment_method must be cash, card, transfer or mobile")
	ErrEmptyItems          = newErr(KindValidation, "order requires at least one item")
	ErrQuantityInvalid     = newErr(KindValidation, "quantity must be between 1 and 100")
	ErrMenuItemUnavailable = newErr(KindValidation, "menu item is not available")
	ErrNeedTable           = newErr(KindValidation, "need active reservation or table for dine-in order")

	ErrSlotTaken           = newErr(KindConflict, "table already booked for this date and time")
	ErrActiveReservation   = newErr(KindConflict, "user already has an active reservation")
	ErrRedundantTransition = newErr(KindConflict, "status already set")
	ErrConcurrentUpdate    = newErr(KindConflict, "record changed concurrently")

	ErrReservationClosed = newErr(KindTerminalState, "reservation is completed, cancelled or expired")
	ErrOrderClosed       = newErr(KindTerminalState, "order is completed or cancelled")

	ErrConstraintViolation = newErr(KindConstraintViolation, "constraint violation")
)

func fieldErr(base *Error, field string) error { return fmt.Errorf("%w: %s", base, field) }

// lostRace marks a unique violation: a concurrent writer committed the same key first.
type lostRace struct{ error }

func (e lostRace) Unwrap() error { return e.error }

// storeErr maps integrity failures raised by the database onto ErrConstraintViolation.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsConstraintViolation(err) {
		wrapped := fmt.Errorf("%w: %s", ErrConstraintViolation, repository.ConstraintName(err))
		if repository.IsUniqueViolation(err) {
			return lostRace{wrapped}
		}
		return wrapped
	}
	return err
}

// retryOnConstraint re-runs fn once after a unique violation. Check, foreign-key and
// not-null failures are returned as is; re-running cannot change their outcome.
func retryOnConstraint(fn func() error) error {
	err := fn()
	var race lostRace
	if errors.As(err, &race) {
		err = fn()
	}
	return err
}
