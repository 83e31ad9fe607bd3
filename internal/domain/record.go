package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one parsed field. Text is the unit-stripped value (the raw suffixed
// value for Id); Number is set when the parser already converted it.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// ParsedRecord is one raw line after parsing and unit normalisation.
type ParsedRecord struct {
	Timestamp string
	Values    map[string]Value

	// Diagnostics holds non-fatal problems found while parsing the line,
	// such as *UnitMismatchError and *UnrecognizedUnitError.
	Diagnostics []error
}

// Text returns the stored text for code, or "" when the field is unset.
// The Timestamp code resolves to the record timestamp.
func (r ParsedRecord) Text(code string) string {
	if code == FieldTimestamp {
		return r.Timestamp
	}
	return r.Values[code].Text
}

// Float returns the numeric value of code. A field that is unset yields NaN
// and ok=false; a field that is set but not numeric yields an error.
func (r ParsedRecord) Float(code string) (v float64, ok bool, err error) {
	val, present := r.Values[code]
	if !present {
		return math.NaN(), false, nil
	}
	if val.Numeric {
		return val.Number, true, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(val.Text), 64)
	if err != nil {
		return math.NaN(), false, fmt.Errorf("field %s: %w", code, err)
	}
	return f, true, nil
}
