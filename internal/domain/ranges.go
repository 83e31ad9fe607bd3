package domain

import "sort"

// Physical variable names used by the QC engine and the surface-met product.
const (
	VarAirPressure       = "air_pressure"
	VarAirTemperature    = "air_temperature"
	VarRelativeHumidity  = "relative_humidity"
	VarWindSpeed         = "wind_speed"
	VarWindFromDirection = "wind_from_direction"
	VarRainfallRate      = "rainfall_rate"
)

// VariableRange is the manufacturer operating range of one variable.
// Bounds are inclusive.
type VariableRange struct {
	Min      float64
	Max      float64
	Units    string
	FlagName string
}

// Contains reports whether v lies within [Min, Max].
func (r VariableRange) Contains(v float64) bool {
	return !(v < r.Min || v > r.Max)
}

// RangeTable is an immutable set of VariableRanges keyed by variable name.
type RangeTable struct {
	ranges map[string]VariableRange
}

// NewRangeTable copies ranges into a RangeTable.
func NewRangeTable(ranges map[string]VariableRange) RangeTable {
	m := make(map[string]VariableRange, len(ranges))
	for k, v := range ranges {
		m[k] = v
	}
	return RangeTable{ranges: m}
}

// DefaultRanges returns the Vaisala WXT536 operating ranges.
// The wind_speed minimum is 0.01 because a reading of exactly 0 is flagged
// separately as calm.
func DefaultRanges() RangeTable {
	return NewRangeTable(map[string]VariableRange{
		VarAirPressure:       {Min: 500, Max: 1100, Units: "hPa", FlagName: "qc_flag_pressure"},
		VarAirTemperature:    {Min: 221.15, Max: 333.15, Units: "K", FlagName: "qc_flag_temperature"},
		VarRelativeHumidity:  {Min: 0, Max: 100, Units: "%", FlagName: "qc_flag_relative_humidity"},
		VarWindSpeed:         {Min: 0.01, Max: 60, Units: "m/s", FlagName: "qc_flag_wind_speed"},
		VarWindFromDirection: {Min: 0, Max: 360, Units: "degrees", FlagName: "qc_flag_wind_from_direction"},
		VarRainfallRate:      {Min: 0, Max: 200, Units: "mm/hr", FlagName: "qc_flag_precipitation"},
	})
}

// Lookup returns the range for variable.
func (t RangeTable) Lookup(variable string) (VariableRange, bool) {
	r, ok := t.ranges[variable]
	return r, ok
}

// With returns a copy of t with the given ranges added or replaced.
func (t RangeTable) With(overrides map[string]VariableRange) RangeTable {
	m := make(map[string]VariableRange, len(t.ranges)+len(overrides))
	for k, v := range t.ranges {
		m[k] = v
	}
	for k, v := range overrides {
		m[k] = v
	}
	return RangeTable{ranges: m}
}

// Variables returns the variable names in sorted order.
func (t RangeTable) Variables() []string {
	names := make([]string, 0, len(t.ranges))
	for k := range t.ranges {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
