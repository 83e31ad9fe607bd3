package domain

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Delimiter separates tokens in a raw station line.
const Delimiter = ","

// celsiusToKelvin is the offset applied to Celsius air temperatures.
const celsiusToKelvin = 273.15

// Parser turns raw station lines into ParsedRecords using an injected FieldSpec.
type Parser struct {
	fields FieldSpec
	logger *slog.Logger
}

// NewParser creates a Parser. Diagnostics are logged at WARN on logger.
func NewParser(fields FieldSpec, logger *slog.Logger) *Parser {
	return &Parser{fields: fields, logger: logger}
}

// ParseText splits line on Delimiter and parses the tokens.
func (p *Parser) ParseText(line string) (ParsedRecord, error) {
	return p.ParseLine(strings.Split(strings.TrimRight(line, "\r\n"), Delimiter))
}

// ParseLine parses one tokenised line. Token 0 is the timestamp, token 1 is the
// start-of-data sentinel and is discarded, the rest are CODE=VALUEUNIT pairs.
//
// Structural problems (*MalformedLineError, *UnknownFieldError) are returned.
// Unit problems are recorded on the record's Diagnostics and logged.
func (p *Parser) ParseLine(tokens []string) (ParsedRecord, error) {
	if len(tokens) < 2 {
		return ParsedRecord{}, &MalformedLineError{Reason: fmt.Sprintf("expected timestamp and sentinel, got %d tokens", len(tokens))}
	}

	rec := ParsedRecord{
		Timestamp: tokens[0],
		Values:    make(map[string]Value, len(tokens)-2),
	}

	for _, tok := range tokens[2:] {
		code, raw, ok := strings.Cut(tok, "=")
		if !ok {
			return ParsedRecord{}, &MalformedLineError{Token: tok, Reason: "missing '=' separator"}
		}
		if raw == "" {
			return ParsedRecord{}, &MalformedLineError{Token: tok, Reason: "empty value"}
		}

		want, known := p.fields.Unit(code)
		if !known {
			return ParsedRecord{}, &UnknownFieldError{Code: code}
		}

		unit := raw[len(raw)-1]
		number := raw[:len(raw)-1]

		if unit != want && !skipUnitCheck(code) {
			p.diagnose(&rec, &UnitMismatchError{Code: code, Got: string(unit), Want: string(want)})
		}

		switch code {
		case FieldID:
			rec.Values[code] = Value{Text: raw}
		case FieldAirTemperature:
			k, err := p.airTemperature(&rec, number, unit)
			if err != nil {
				return ParsedRecord{}, &MalformedLineError{Token: tok, Reason: err.Error()}
			}
			if k != nil {
				rec.Values[code] = Value{Text: strconv.FormatFloat(*k, 'f', -1, 64), Number: *k, Numeric: true}
			}
		default:
			rec.Values[code] = Value{Text: number}
		}
	}

	return rec, nil
}

// airTemperature converts a Ta reading to Kelvin. It returns nil with a
// diagnostic when the unit is neither Celsius nor Fahrenheit.
func (p *Parser) airTemperature(rec *ParsedRecord, number string, unit byte) (*float64, error) {
	var k float64
	switch unit {
	case 'C':
		v, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return nil, fmt.Errorf("air temperature: %w", err)
		}
		k = v + celsiusToKelvin
	case 'F':
		v, err := strconv.ParseFloat(number, 64)
		if err != nil {
			return nil, fmt.Errorf("air temperature: %w", err)
		}
		// The station software's formula, written via Rankine. It equals
		// (F - 32) * 5/9 + 273.15, so the result is Kelvin.
		k = (v + 459.67) * (5.0 / 9.0)
	default:
		p.diagnose(rec, &UnrecognizedUnitError{Code: FieldAirTemperature, Unit: string(unit)})
		return nil, nil
	}
	return &k, nil
}

func (p *Parser) diagnose(rec *ParsedRecord, err error) {
	rec.Diagnostics = append(rec.Diagnostics, err)
	if p.logger != nil {
		p.logger.Warn("field diagnostic", "timestamp", rec.Timestamp, "error", err)
	}
}

// skipUnitCheck reports codes whose unit suffix is not validated: the unitless
// Timestamp and Id, and Vh whose suffix varies with the heater state.
func skipUnitCheck(code string) bool {
	switch code {
	case FieldTimestamp, FieldID, FieldSupplyVoltage:
		return true
	default:
		return false
	}
}
