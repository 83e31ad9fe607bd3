package domain

import "fmt"

// MalformedLineError reports a raw line that cannot be split into fields.
type MalformedLineError struct {
	Token  string
	Reason string
}

func (e *MalformedLineError) Error() string {
	if e.Token == "" {
		return "malformed line: " + e.Reason
	}
	return fmt.Sprintf("malformed token %q: %s", e.Token, e.Reason)
}

// UnknownFieldError reports a field code missing from the FieldSpec.
type UnknownFieldError struct {
	Code string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field code %q", e.Code)
}

// UnrecognizedUnitError reports an air temperature suffix that is neither C nor F.
// It is attached to a record as a diagnostic, not returned as a failure.
type UnrecognizedUnitError struct {
	Code string
	Unit string
}

func (e *UnrecognizedUnitError) Error() string {
	return fmt.Sprintf("unrecognized unit %q for field %s", e.Unit, e.Code)
}

// UnitMismatchError reports a value whose suffix differs from the FieldSpec.
// It is a diagnostic; the value is still stored.
type UnitMismatchError struct {
	Code string
	Got  string
	Want string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("incorrect unit %q for field %s, expected %q", e.Got, e.Code, e.Want)
}

// MissingCompanionVariableError reports a QC input that needs another variable
// which is absent, e.g. wind_from_direction without wind_speed.
type MissingCompanionVariableError struct {
	Variable  string
	Companion string
}

func (e *MissingCompanionVariableError) Error() string {
	return fmt.Sprintf("%s requires %s, which is missing", e.Variable, e.Companion)
}

// ShapeMismatchError reports a companion array whose element count differs.
type ShapeMismatchError struct {
	Variable  string
	Companion string
	Want      int
	Got       int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s has %d elements but %s has %d", e.Variable, e.Want, e.Companion, e.Got)
}
