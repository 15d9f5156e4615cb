package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// UnknownSpeciesError is returned when a species label is neither a valid
// chemical formula nor a known alias.
type UnknownSpeciesError struct {
	Label  string
	Reason string
}

// Error implements the error interface
func (e *UnknownSpeciesError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("[%s] cannot resolve species %q: %s", ErrTypeUnknownSpecies, e.Label, e.Reason)
	}
	return fmt.Sprintf("[%s] cannot resolve species %q", ErrTypeUnknownSpecies, e.Label)
}

// ErrorType reports ErrTypeUnknownSpecies.
func (e *UnknownSpeciesError) ErrorType() ErrorType {
	return ErrTypeUnknownSpecies
}

// MissingArgumentError is returned when neither an explicit nor a default
// column (family) could be found for an argument of a calculation.
type MissingArgumentError struct {
	Function string
	Argument string
	Tried    []string
}

// Error implements the error interface
func (e *MissingArgumentError) Error() string {
	msg := fmt.Sprintf("[%s] %s: argument %s could not be resolved", ErrTypeMissingArgument, e.Function, e.Argument)
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (tried %s)", strings.Join(e.Tried, ", "))
	}
	return msg
}

// ErrorType reports ErrTypeMissingArgument.
func (e *MissingArgumentError) ErrorType() ErrorType {
	return ErrTypeMissingArgument
}

// UnitMismatchError is returned when an operation receives operands whose
// units cannot be combined.
type UnitMismatchError struct {
	Op    string
	Left  string
	Right string
}

// Error implements the error interface
func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("[%s] cannot %s %s and %s", ErrTypeUnitMismatch, e.Op, describeUnit(e.Left), describeUnit(e.Right))
}

// ErrorType reports ErrTypeUnitMismatch.
func (e *UnitMismatchError) ErrorType() ErrorType {
	return ErrTypeUnitMismatch
}

func describeUnit(u string) string {
	if u == "" {
		return "[dimensionless]"
	}
	return "[" + u + "]"
}

// NewUnknownSpeciesError creates an UnknownSpeciesError
func NewUnknownSpeciesError(label, reason string) *UnknownSpeciesError {
	return &UnknownSpeciesError{Label: label, Reason: reason}
}

// NewMissingArgumentError creates a MissingArgumentError
func NewMissingArgumentError(function, argument string, tried ...string) *MissingArgumentError {
	return &MissingArgumentError{Function: function, Argument: argument, Tried: tried}
}

// NewUnitMismatchError creates a UnitMismatchError
func NewUnitMismatchError(op, left, right string) *UnitMismatchError {
	return &UnitMismatchError{Op: op, Left: left, Right: right}
}

// IsUnknownSpecies reports whether err wraps an UnknownSpeciesError.
func IsUnknownSpecies(err error) bool {
	var target *UnknownSpeciesError
	return stderrors.As(err, &target)
}

// IsMissingArgument reports whether err wraps a MissingArgumentError.
func IsMissingArgument(err error) bool {
	var target *MissingArgumentError
	return stderrors.As(err, &target)
}

// IsUnitMismatch reports whether err wraps a UnitMismatchError.
func IsUnitMismatch(err error) bool {
	var target *UnitMismatchError
	return stderrors.As(err, &target)
}

// As is errors.As, re-exported so callers importing this package under its
// own name do not need a second import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
