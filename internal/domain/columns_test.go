package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildColumns(t *testing.T) {
	p := newTestParser()
	lines := []string{
		"2022-03-07T12:00:00.000,0R0,Dm=240D,Sm=2.6M,Ta=21.3C,Ua=45.2P,Pa=1012.4H,Rc=0.00M,Ri=0.0M,Hc=0.0M,Hi=0.0M",
		"2022-03-07T12:00:05.000,0R0,Dm=250D,Sm=0.0M,Ta=21.4C,Ua=45.0P,Rc=0.10M,Ri=1.2M,Hc=0.0M,Hi=0.0M",
	}
	records := make([]ParsedRecord, 0, len(lines))
	for _, l := range lines {
		rec, err := p.ParseText(l)
		require.NoError(t, err)
		records = append(records, rec)
	}

	cols, err := BuildColumns(records, SurfaceMetSources())
	require.NoError(t, err)

	require.Len(t, cols.Times, 2)
	assert.Equal(t, time.Date(2022, 3, 7, 12, 0, 5, 0, time.UTC), cols.Times[1])
	assert.Len(t, cols.Order, 9)
	assert.Equal(t, VarAirPressure, cols.Order[0])

	pa := cols.Variables[VarAirPressure]
	assert.Equal(t, []int{2}, pa.Shape)
	assert.InDelta(t, 1012.4, pa.Data[0], 1e-9)
	assert.True(t, math.IsNaN(pa.Data[1]), "missing Pa should be NaN")
	assert.Equal(t, 1, cols.Missing[VarAirPressure])

	assert.InDelta(t, 294.55, cols.Variables[VarAirTemperature].Data[1], 1e-9)
	assert.Equal(t, []float64{2.6, 0}, cols.Variables[VarWindSpeed].Data)
	assert.Equal(t, []float64{240, 250}, cols.Variables[VarWindFromDirection].Data)
	assert.Equal(t, []float64{0, 1.2}, cols.Variables[VarRainfallRate].Data)
}

func TestBuildColumns_Errors(t *testing.T) {
	t.Run("bad timestamp", func(t *testing.T) {
		_, err := BuildColumns([]ParsedRecord{{Timestamp: "yesterday"}}, SurfaceMetSources())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record 1")
	})

	t.Run("non numeric value", func(t *testing.T) {
		rec := ParsedRecord{
			Timestamp: "2022-03-07T12:00:00",
			Values:    map[string]Value{"Pa": {Text: "n/a"}},
		}
		_, err := BuildColumns([]ParsedRecord{rec}, SurfaceMetSources())
		require.Error(t, err)
		assert.Contains(t, err.Error(), VarAirPressure)
	})
}

func TestArray_Float32s(t *testing.T) {
	assert.Equal(t, []float32{1.5, -2}, Vector(1.5, -2).Float32s())
}

func TestObservations(t *testing.T) {
	t0 := time.Date(2022, 3, 7, 12, 0, 0, 0, time.UTC)
	cols := Columns{
		Times: []time.Time{t0, t0.Add(5 * time.Second)},
		Variables: map[string]Array{
			VarAirPressure: Vector(1012.4, math.NaN()),
		},
		Order: []string{VarAirPressure},
	}
	flags := map[string]FlagArray{
		VarAirPressure: {Shape: []int{2}, Data: []int8{FlagGood, FlagOutOfRange}},
	}
	processed := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	obs := Observations("ncas-aws-10", cols, flags, processed)

	require.Len(t, obs, 2)
	assert.Equal(t, "ncas-aws-10", obs[0].Instrument)
	assert.Equal(t, t0, obs[0].Time)
	assert.Equal(t, processed, obs[1].ProcessedAt)
	require.NotNil(t, obs[0].Values[VarAirPressure])
	assert.InDelta(t, 1012.4, *obs[0].Values[VarAirPressure], 1e-9)
	assert.Nil(t, obs[1].Values[VarAirPressure], "NaN published as null")
	assert.Equal(t, FlagGood, obs[0].Flags[VarAirPressure])
	assert.Equal(t, FlagOutOfRange, obs[1].Flags[VarAirPressure])
}
