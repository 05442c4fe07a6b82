package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller errors detected before any computation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrContract marks data handed between engines that breaks the hourly contract.
	ErrContract = errors.New("contract violation")
)

// LengthError reports an hourly series of the wrong length.
type LengthError struct {
	Series string
	Got    int
	Want   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("series %q has %d values, expected %d", e.Series, e.Got, e.Want)
}

func (e *LengthError) Unwrap() error { return ErrContract }

// ContractError reports a bad value inside an otherwise well-sized series.
type ContractError struct {
	Series string
	Hour   int
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("series %q hour %d: %s", e.Series, e.Hour, e.Reason)
}

func (e *ContractError) Unwrap() error { return ErrContract }

// ValidationError reports an out-of-range input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
