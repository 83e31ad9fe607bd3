package domain

import (
	"fmt"
	"time"
)

// VariableSource maps a product variable to the station field it is read from.
type VariableSource struct {
	Variable string
	Field    string
}

// SurfaceMetSources lists the surface-met variables and their station fields.
func SurfaceMetSources() []VariableSource {
	return []VariableSource{
		{Variable: VarAirPressure, Field: "Pa"},
		{Variable: VarAirTemperature, Field: "Ta"},
		{Variable: VarRelativeHumidity, Field: "Ua"},
		{Variable: VarWindSpeed, Field: "Sm"},
		{Variable: VarWindFromDirection, Field: "Dm"},
		{Variable: "thickness_of_rainfall_amount", Field: "Rc"},
		{Variable: VarRainfallRate, Field: "Ri"},
		{Variable: "hail_intensity", Field: "Hc"},
		{Variable: "hail_rate", Field: "Hi"},
	}
}

// Columns is a batch of records in column form, ready for QC and writing.
type Columns struct {
	Times     []time.Time
	Variables map[string]Array
	Order     []string

	// Missing counts, per variable, the records where the field was absent.
	Missing map[string]int
}

// BuildColumns converts records into one Array per source variable. A field
// missing from a record becomes NaN; a field that is present but not numeric
// is an error naming the 1-based record index.
func BuildColumns(records []ParsedRecord, sources []VariableSource) (Columns, error) {
	n := len(records)
	cols := Columns{
		Times:     make([]time.Time, n),
		Variables: make(map[string]Array, len(sources)),
		Order:     make([]string, 0, len(sources)),
		Missing:   make(map[string]int),
	}
	for _, s := range sources {
		cols.Variables[s.Variable] = Array{Shape: []int{n}, Data: make([]float64, n)}
		cols.Order = append(cols.Order, s.Variable)
	}

	for i, rec := range records {
		t, err := ParseTimestamp(rec.Timestamp)
		if err != nil {
			return Columns{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		cols.Times[i] = t

		for _, s := range sources {
			v, ok, err := rec.Float(s.Field)
			if err != nil {
				return Columns{}, fmt.Errorf("record %d: %s: %w", i+1, s.Variable, err)
			}
			if !ok {
				cols.Missing[s.Variable]++
			}
			cols.Variables[s.Variable].Data[i] = v
		}
	}
	return cols, nil
}
