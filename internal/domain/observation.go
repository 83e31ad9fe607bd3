package domain

import (
	"math"
	"time"
)

// Observation is one quality-controlled timestep, as published downstream.
// Missing values are nil so they serialize as JSON null.
type Observation struct {
	Instrument  string              `json:"instrument"`
	Time        time.Time           `json:"time"`
	Values      map[string]*float64 `json:"values"`
	Flags       map[string]int8     `json:"qc_flags"`
	ProcessedAt time.Time           `json:"processed_at"`
}

// Observations turns column data and their QC flags into one Observation per
// timestep. Flags are keyed by the variable they describe.
func Observations(instrument string, cols Columns, flags map[string]FlagArray, processedAt time.Time) []Observation {
	out := make([]Observation, len(cols.Times))
	for i, t := range cols.Times {
		obs := Observation{
			Instrument:  instrument,
			Time:        t,
			Values:      make(map[string]*float64, len(cols.Order)),
			Flags:       make(map[string]int8, len(flags)),
			ProcessedAt: processedAt,
		}
		for _, name := range cols.Order {
			v := cols.Variables[name].Data[i]
			if math.IsNaN(v) {
				obs.Values[name] = nil
				continue
			}
			obs.Values[name] = &v
		}
		for name, f := range flags {
			obs.Flags[name] = f.Data[i]
		}
		out[i] = obs
	}
	return out
}
