package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout matches station timestamps with or without fractional seconds,
// e.g. 2022-03-07T12:00:00.123 or 2022-03-07T12:00:00. Times are UTC.
const TimestampLayout = "2006-01-02T15:04:05.999999999"

// CoverageLayout is the format of the time_coverage_* global attributes.
const CoverageLayout = "2006-01-02T15:04:05"

// ParseTimestamp parses a station timestamp as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// TimeAxis holds the AMOF time coordinate and its broken-down companions.
type TimeAxis struct {
	Unix      []float64
	Year      []int32
	Month     []int32
	Day       []int32
	Hour      []int32
	Minute    []int32
	Second    []float32
	DayOfYear []float32
}

// BuildTimeAxis derives the time variables from parsed times.
// DayOfYear is fractional: 00:00 on 1 January is 1.0.
func BuildTimeAxis(times []time.Time) TimeAxis {
	n := len(times)
	ax := TimeAxis{
		Unix:      make([]float64, n),
		Year:      make([]int32, n),
		Month:     make([]int32, n),
		Day:       make([]int32, n),
		Hour:      make([]int32, n),
		Minute:    make([]int32, n),
		Second:    make([]float32, n),
		DayOfYear: make([]float32, n),
	}
	for i, t := range times {
		t = t.UTC()
		sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
		ax.Unix[i] = float64(t.Unix()) + float64(t.Nanosecond())/1e9
		ax.Year[i] = int32(t.Year())
		ax.Month[i] = int32(t.Month())
		ax.Day[i] = int32(t.Day())
		ax.Hour[i] = int32(t.Hour())
		ax.Minute[i] = int32(t.Minute())
		ax.Second[i] = float32(sec)
		daySeconds := float64(t.Hour()*3600+t.Minute()*60) + sec
		ax.DayOfYear[i] = float32(float64(t.YearDay()) + daySeconds/86400)
	}
	return ax
}

// Coverage returns the earliest and latest of times.
func Coverage(times []time.Time) (start, end time.Time, err error) {
	if len(times) == 0 {
		return time.Time{}, time.Time{}, errors.New("no timestamps")
	}
	start, end = times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(start) {
			start = t
		}
		if t.After(end) {
			end = t
		}
	}
	return start.UTC(), end.UTC(), nil
}

// FileDate is the date component of an AMOF file name: YYYYMMDD when the data
// cover a single day, YYYYMM within one month, otherwise YYYY.
func FileDate(start, end time.Time) string {
	switch {
	case start.Year() == end.Year() && start.YearDay() == end.YearDay():
		return start.Format("20060102")
	case start.Year() == end.Year() && start.Month() == end.Month():
		return start.Format("200601")
	default:
		return start.Format("2006")
	}
}

// SamplingInterval estimates the sampling interval in seconds. Samples are not
// exactly evenly spaced, so it averages the gaps in the middle half of the
// series, in time order. A single gap is used as is. ok is false when there
// are fewer than two times.
func SamplingInterval(times []time.Time) (seconds float64, ok bool) {
	if len(times) < 2 {
		return 0, false
	}
	deltas := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		deltas = append(deltas, times[i].Sub(times[i-1]).Seconds())
	}
	mid := deltas[len(deltas)/4 : 3*len(deltas)/4]
	if len(mid) == 0 {
		mid = deltas
	}
	var sum float64
	for _, d := range mid {
		sum += d
	}
	return math.Round(sum/float64(len(mid))*1e4) / 1e4, true
}

// FormatSamplingInterval renders the sampling_interval global attribute,
// e.g. "5.0 seconds" or "1.0025 seconds".
func FormatSamplingInterval(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + " seconds"
}
