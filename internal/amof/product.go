// Package amof describes the NCAS AMOF 2.0 surface-met product written for
// ncas-aws-10: its dimensions, variables, QC flag variables, global
// attributes, and file naming.
package amof

import (
	"fmt"
	"strings"
)

// FillValue marks missing data in floating-point variables.
const FillValue float32 = -1e20

// Dimension names.
const (
	DimTime      = "time"
	DimLatitude  = "latitude"
	DimLongitude = "longitude"
)

// DataType is the netCDF storage type of a variable.
type DataType int

const (
	Float64 DataType = iota
	Float32
	Int32
	Int8
)

func (t DataType) String() string {
	switch t {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int8:
		return "int8"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// Attr is a single netCDF attribute. Order matters, so attributes are kept in slices.
type Attr struct {
	Name  string
	Value any
}

// Variable is a product variable definition.
type Variable struct {
	Name  string
	Type  DataType
	Dims  []string
	Attrs []Attr
}

// FillValue returns the variable's _FillValue, if it has one.
func (v Variable) FillValue() (float32, bool) {
	for _, a := range v.Attrs {
		if a.Name == "_FillValue" {
			f, ok := a.Value.(float32)
			return f, ok
		}
	}
	return 0, false
}

// Product is the set of variables a data product may contain.
type Product struct {
	Name      string
	Version   string
	Variables []Variable
}

// Variable looks up a variable definition by name.
func (p Product) Variable(name string) (Variable, bool) {
	for _, v := range p.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// FileID identifies one AMOF file.
type FileID struct {
	Instrument string
	Platform   string
	Date       string
	Product    string
	Version    string
}

// FileName returns <instrument>_<platform>_<date>_<product>_v<version>.nc.
func (id FileID) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%s_v%s.nc", id.Instrument, id.Platform, id.Date, id.Product, id.Version)
}

// Flag meanings per QC family. Code 0 is reserved in AMOF.
var (
	genericFlagValues   = []int8{0, 1, 2}
	genericFlagMeanings = "not_used good_data bad_data_outside_operational_range"

	windSpeedFlagValues   = []int8{0, 1, 2, 3}
	windSpeedFlagMeanings = "not_used good_data suspect_data_wind_speed_zero bad_data_outside_operational_range"

	windDirectionFlagMeanings = "not_used good_data suspect_data_wind_direction_undefined_at_zero_wind_speed bad_data_outside_operational_range"
)

// SurfaceMet returns the surface-met product definition.
func SurfaceMet() Product {
	vars := []Variable{
		{Name: "time", Type: Float64, Dims: []string{DimTime}, Attrs: []Attr{
			{"units", "seconds since 1970-01-01 00:00:00"},
			{"standard_name", "time"},
			{"long_name", "Time (seconds since 1970-01-01 00:00:00)"},
			{"axis", "T"},
			{"calendar", "standard"},
		}},
		{Name: "latitude", Type: Float32, Dims: []string{DimLatitude}, Attrs: []Attr{
			{"units", "degrees_north"},
			{"standard_name", "latitude"},
			{"long_name", "Latitude"},
		}},
		{Name: "longitude", Type: Float32, Dims: []string{DimLongitude}, Attrs: []Attr{
			{"units", "degrees_east"},
			{"standard_name", "longitude"},
			{"long_name", "Longitude"},
		}},
		timePart("day_of_year", Float32, "Day of Year"),
		timePart("year", Int32, "Year"),
		timePart("month", Int32, "Month"),
		timePart("day", Int32, "Day"),
		timePart("hour", Int32, "Hour"),
		timePart("minute", Int32, "Minute"),
		timePart("second", Float32, "Second"),
		measurement("air_pressure", "hPa", "air_pressure", "Air Pressure"),
		measurement("air_temperature", "K", "air_temperature", "Air Temperature"),
		measurement("relative_humidity", "%", "relative_humidity", "Relative Humidity"),
		measurement("wind_speed", "m s-1", "wind_speed", "Mean Wind Speed"),
		measurement("wind_from_direction", "degree", "wind_from_direction", "Mean Wind Direction"),
		measurement("thickness_of_rainfall_amount", "mm", "thickness_of_rainfall_amount", "Thickness of Rainfall Amount"),
		measurement("rainfall_rate", "mm hr-1", "rainfall_rate", "Rainfall Rate"),
		measurement("hail_intensity", "hits cm-2", "", "Hail Intensity"),
		measurement("hail_rate", "hits cm-2 hr-1", "", "Hail Rate"),
		qcFlag("qc_flag_pressure", "Pressure", genericFlagValues, genericFlagMeanings),
		qcFlag("qc_flag_temperature", "Temperature", genericFlagValues, genericFlagMeanings),
		qcFlag("qc_flag_relative_humidity", "Relative Humidity", genericFlagValues, genericFlagMeanings),
		qcFlag("qc_flag_wind_speed", "Wind Speed", windSpeedFlagValues, windSpeedFlagMeanings),
		qcFlag("qc_flag_wind_from_direction", "Wind Direction", windSpeedFlagValues, windDirectionFlagMeanings),
		qcFlag("qc_flag_precipitation", "Precipitation", genericFlagValues, genericFlagMeanings),
	}
	return Product{Name: "surface-met", Version: "1.0", Variables: vars}
}

func timePart(name string, typ DataType, longName string) Variable {
	return Variable{Name: name, Type: typ, Dims: []string{DimTime}, Attrs: []Attr{
		{"units", "1"},
		{"long_name", longName},
	}}
}

func measurement(name, units, standardName, longName string) Variable {
	attrs := []Attr{
		{"_FillValue", FillValue},
		{"units", units},
	}
	if standardName != "" {
		attrs = append(attrs, Attr{"standard_name", standardName})
	}
	attrs = append(attrs,
		Attr{"long_name", longName},
		Attr{"coordinates", "latitude longitude"},
		Attr{"cell_methods", "time: mean"},
	)
	return Variable{Name: name, Type: Float32, Dims: []string{DimTime}, Attrs: attrs}
}

func qcFlag(name, quantity string, values []int8, meanings string) Variable {
	v := make([]int8, len(values))
	copy(v, values)
	return Variable{Name: name, Type: Int8, Dims: []string{DimTime}, Attrs: []Attr{
		{"units", "1"},
		{"long_name", "Data Quality flag: " + quantity},
		{"flag_values", v},
		{"flag_meanings", strings.TrimSpace(meanings)},
	}}
}
