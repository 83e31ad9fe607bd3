package domain

import (
	"log/slog"
	"sort"
	"strings"
)

// QC flag codes written to the qc_flag_* variables. Code 2 means "out of
// range" for generic variables and "calm" for the wind variables, where an
// out-of-range value gets code 3 instead.
const (
	FlagNotUsed        int8 = 0
	FlagGood           int8 = 1
	FlagOutOfRange     int8 = 2
	FlagCalm           int8 = 2
	FlagWindOutOfRange int8 = 3
)

// QC flags arrays against the operating ranges of a RangeTable.
type QC struct {
	ranges  RangeTable
	logger  *slog.Logger
	verbose bool
}

// NewQC creates a range checker. With verbose set, variables that have no
// range are reported at INFO instead of being skipped silently.
func NewQC(ranges RangeTable, logger *slog.Logger, verbose bool) *QC {
	return &QC{ranges: ranges, logger: logger, verbose: verbose}
}

// Ranges returns the table the checker flags against.
func (q *QC) Ranges() RangeTable { return q.ranges }

// CheckValid returns one flag array per input variable that has a range,
// keyed by the range's flag name. Arrays keep the shape of their input.
func (q *QC) CheckValid(data map[string]Array) (map[string]FlagArray, error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	flags := make(map[string]FlagArray, len(names))
	for _, name := range names {
		r, ok := q.ranges.Lookup(name)
		if !ok {
			if q.verbose && q.logger != nil {
				q.logger.Info("no qc flag available for variable, continuing", "variable", name)
			}
			continue
		}

		arr := data[name]
		switch {
		case !strings.Contains(name, "wind"):
			flags[r.FlagName] = flagGeneric(arr, r)
		case name == VarWindSpeed:
			flags[r.FlagName] = flagWindSpeed(arr, r)
		case name == VarWindFromDirection:
			speed, ok := data[VarWindSpeed]
			if !ok {
				return nil, &MissingCompanionVariableError{Variable: name, Companion: VarWindSpeed}
			}
			if speed.Len() != arr.Len() {
				return nil, &ShapeMismatchError{Variable: name, Companion: VarWindSpeed, Want: arr.Len(), Got: speed.Len()}
			}
			flags[r.FlagName] = flagWindDirection(arr, speed, r)
		default:
			if q.logger != nil {
				q.logger.Warn("no qc rule for wind variable, skipping", "variable", name)
			}
		}
	}
	return flags, nil
}

func flagGeneric(arr Array, r VariableRange) FlagArray {
	out := newFlagArray(arr.Shape, arr.Len())
	for i, bad := range outOfRange(arr.Data, r) {
		if bad {
			out.Data[i] = FlagOutOfRange
		}
	}
	return out
}

func flagWindSpeed(arr Array, r VariableRange) FlagArray {
	out := newFlagArray(arr.Shape, arr.Len())
	calm := isZero(arr.Data)
	for i, bad := range outOfRange(arr.Data, r) {
		switch {
		case calm[i]:
			out.Data[i] = FlagCalm
		case bad:
			out.Data[i] = FlagWindOutOfRange
		}
	}
	return out
}

// flagWindDirection flags direction as calm wherever the paired speed is zero,
// since direction is undefined without wind.
func flagWindDirection(arr, speed Array, r VariableRange) FlagArray {
	out := newFlagArray(arr.Shape, arr.Len())
	calm := isZero(speed.Data)
	for i, bad := range outOfRange(arr.Data, r) {
		switch {
		case calm[i]:
			out.Data[i] = FlagCalm
		case bad:
			out.Data[i] = FlagWindOutOfRange
		}
	}
	return out
}

// outOfRange is the element-wise mask data < min | data > max. NaN compares
// false on both sides and is therefore in range.
func outOfRange(data []float64, r VariableRange) []bool {
	mask := make([]bool, len(data))
	for i, v := range data {
		mask[i] = !r.Contains(v)
	}
	return mask
}

func isZero(data []float64) []bool {
	mask := make([]bool, len(data))
	for i, v := range data {
		mask[i] = v == 0
	}
	return mask
}
