package model

import (
	"errors"
	"fmt"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidBookingType = errors.New("invalid booking type")
	ErrInvalidReference   = errors.New("invalid booking reference")
)

// =====================================================
// CUSTOM BOOKING ERROR
// =====================================================

type BookingError struct {
	Code    string
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func NewBookingError(code, message string, err error) *BookingError {
	return &BookingError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =====================================================
// ERROR CONSTRUCTORS
// =====================================================

func NewBookingNotFoundError(id string) *BookingError {
	return NewBookingError(
		ErrCodeBookingNotFound,
		fmt.Sprintf("Booking not found: %s", id),
		ErrBookingNotFound,
	)
}

func NewInvalidBookingTypeError(bookingType string) *BookingError {
	return NewBookingError(
		ErrCodeInvalidBookingType,
		fmt.Sprintf("Invalid booking type: %s", bookingType),
		ErrInvalidBookingType,
	)
}

func NewInvalidReferenceError(reference string) *BookingError {
	return NewBookingError(
		ErrCodeInvalidReference,
		fmt.Sprintf("Invalid booking reference: %s", reference),
		ErrInvalidReference,
	)
}
