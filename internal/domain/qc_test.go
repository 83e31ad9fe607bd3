package domain

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQC() *QC {
	return NewQC(DefaultRanges(), slog.Default(), false)
}

func TestCheckValid_Flags(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]Array
		flagName string
		want     []int8
	}{
		{
			name:     "air pressure inclusive bounds",
			data:     map[string]Array{VarAirPressure: Vector(499, 500, 1100, 1101)},
			flagName: "qc_flag_pressure",
			want:     []int8{2, 1, 1, 2},
		},
		{
			name:     "air temperature",
			data:     map[string]Array{VarAirTemperature: Vector(221.14, 221.15, 294.45, 333.15, 333.16)},
			flagName: "qc_flag_temperature",
			want:     []int8{2, 1, 1, 1, 2},
		},
		{
			name:     "relative humidity",
			data:     map[string]Array{VarRelativeHumidity: Vector(-0.1, 0, 100, 100.1)},
			flagName: "qc_flag_relative_humidity",
			want:     []int8{2, 1, 1, 2},
		},
		{
			name:     "rainfall rate",
			data:     map[string]Array{VarRainfallRate: Vector(0, 12.5, 200.5)},
			flagName: "qc_flag_precipitation",
			want:     []int8{1, 1, 2},
		},
		{
			name:     "wind speed calm and out of range",
			data:     map[string]Array{VarWindSpeed: Vector(0, 0.005, 30, 75)},
			flagName: "qc_flag_wind_speed",
			want:     []int8{2, 3, 1, 3},
		},
		{
			name: "wind direction follows wind speed",
			data: map[string]Array{
				VarWindFromDirection: Vector(10, 400, 90),
				VarWindSpeed:         Vector(0, 5, 5),
			},
			flagName: "qc_flag_wind_from_direction",
			want:     []int8{2, 3, 1},
		},
		{
			name: "calm wins over out of range direction",
			data: map[string]Array{
				VarWindFromDirection: Vector(-1, 361),
				VarWindSpeed:         Vector(0, 0),
			},
			flagName: "qc_flag_wind_from_direction",
			want:     []int8{2, 2},
		},
		{
			name:     "NaN is not out of range",
			data:     map[string]Array{VarAirPressure: Vector(math.NaN(), 1000)},
			flagName: "qc_flag_pressure",
			want:     []int8{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := newTestQC().CheckValid(tt.data)
			require.NoError(t, err)
			require.Contains(t, flags, tt.flagName)
			if diff := cmp.Diff(tt.want, flags[tt.flagName].Data); diff != "" {
				t.Fatalf("flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckValid_PreservesShape(t *testing.T) {
	data := map[string]Array{
		VarAirPressure: {Shape: []int{2, 2}, Data: []float64{499, 500, 1100, 1101}},
	}
	flags, err := newTestQC().CheckValid(data)
	require.NoError(t, err)

	got := flags["qc_flag_pressure"]
	assert.Equal(t, []int{2, 2}, got.Shape)
	assert.Equal(t, []int8{2, 1, 1, 2}, got.Data)
}

func TestCheckValid_NeverWritesReservedFlag(t *testing.T) {
	data := map[string]Array{
		VarAirPressure:       Vector(math.NaN(), 0, 1000),
		VarWindSpeed:         Vector(0, 5, 100),
		VarWindFromDirection: Vector(0, 400, 90),
	}
	flags, err := newTestQC().CheckValid(data)
	require.NoError(t, err)
	for name, f := range flags {
		assert.NotContains(t, f.Data, FlagNotUsed, name)
	}
}

func TestCheckValid_SkipsUnknownVariables(t *testing.T) {
	data := map[string]Array{
		"hail_rate":    Vector(1, 2, 3),
		VarAirPressure: Vector(1000),
	}
	flags, err := newTestQC().CheckValid(data)
	require.NoError(t, err)
	assert.Len(t, flags, 1)
	assert.Contains(t, flags, "qc_flag_pressure")
}

func TestCheckValid_VerboseReportsSkipped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	q := NewQC(DefaultRanges(), logger, true)

	flags, err := q.CheckValid(map[string]Array{"hail_rate": Vector(1)})
	require.NoError(t, err)
	assert.Empty(t, flags)
	assert.Contains(t, buf.String(), "hail_rate")
}

func TestCheckValid_SilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	q := NewQC(DefaultRanges(), logger, false)

	_, err := q.CheckValid(map[string]Array{"hail_rate": Vector(1)})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestCheckValid_MissingCompanion(t *testing.T) {
	_, err := newTestQC().CheckValid(map[string]Array{
		VarWindFromDirection: Vector(10, 20),
	})
	var missing *MissingCompanionVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, VarWindSpeed, missing.Companion)
}

func TestCheckValid_CompanionLengthMismatch(t *testing.T) {
	_, err := newTestQC().CheckValid(map[string]Array{
		VarWindFromDirection: Vector(10, 20),
		VarWindSpeed:         Vector(1),
	})
	var mismatch *ShapeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestCheckValid_InjectedRanges(t *testing.T) {
	ranges := DefaultRanges().With(map[string]VariableRange{
		VarAirPressure: {Min: 900, Max: 1050, Units: "hPa", FlagName: "qc_flag_pressure"},
		"wind_gust":    {Min: 0, Max: 80, Units: "m/s", FlagName: "qc_flag_wind_gust"},
	})
	q := NewQC(ranges, slog.Default(), false)

	flags, err := q.CheckValid(map[string]Array{
		VarAirPressure: Vector(899, 1000, 1051),
		"wind_gust":    Vector(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []int8{2, 1, 2}, flags["qc_flag_pressure"].Data)
	assert.NotContains(t, flags, "qc_flag_wind_gust", "unhandled wind variables are skipped")

	// The default table is unaffected by the override.
	r, ok := DefaultRanges().Lookup(VarAirPressure)
	require.True(t, ok)
	assert.Equal(t, 500.0, r.Min)
}

func TestRangeTable_Variables(t *testing.T) {
	assert.Equal(t, []string{
		VarAirPressure, VarAirTemperature, VarRainfallRate,
		VarRelativeHumidity, VarWindFromDirection, VarWindSpeed,
	}, DefaultRanges().Variables())
}
