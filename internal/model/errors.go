package model

import "errors"

// Kind classifies a domain failure so that callers can translate it into a
// transport level response without matching on individual errors.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error is a named domain failure.  Sentinels below are compared with
// errors.Is, so wrapped occurrences still match.
type Error struct {
	Kind Kind   // failure class
	Code string // stable machine readable code returned to clients
	Msg  string // human readable message
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrFlightNotFound      = newError(KindNotFound, "FLIGHT_NOT_FOUND", "flight not found")
	ErrSeatNotFound        = newError(KindNotFound, "SEAT_NOT_FOUND", "seat not found")
	ErrReservationNotFound = newError(KindNotFound, "RESERVATION_NOT_FOUND", "reservation not found")
	ErrUserNotFound        = newError(KindNotFound, "USER_NOT_FOUND", "user not found")

	ErrDuplicateFlightNumber = newError(KindConflict, "DUPLICATE_FLIGHT_NUMBER", "flight number already exists")
	ErrSeatUnavailable       = newError(KindConflict, "SEAT_UNAVAILABLE", "seat is not available")
	ErrAlreadyCancelled      = newError(KindConflict, "ALREADY_CANCELLED", "reservation is already cancelled")
	ErrFlightNotBookable     = newError(KindConflict, "FLIGHT_NOT_BOOKABLE", "flight is not open for booking")
	ErrIllegalSeatTransition = newError(KindConflict, "ILLEGAL_SEAT_TRANSITION", "seat status change not allowed")
	ErrEmailExists           = newError(KindConflict, "EMAIL_EXISTS", "email already registered")

	ErrInvalidSchedule    = newError(KindInvalidInput, "INVALID_SCHEDULE", "arrival must be after departure")
	ErrInvalidCapacity    = newError(KindInvalidInput, "INVALID_CAPACITY", "seat capacity must be between 1 and 1000")
	ErrInvalidRoute       = newError(KindInvalidInput, "INVALID_ROUTE", "origin and destination must not be blank")
	ErrSeatFlightMismatch = newError(KindInvalidInput, "SEAT_FLIGHT_MISMATCH", "seat does not belong to this flight")

	ErrUnauthorized = newError(KindUnauthorized, "UNAUTHORIZED", "unauthorized")
)

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err, or "INTERNAL".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
