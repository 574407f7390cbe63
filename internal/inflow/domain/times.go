package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// stepEpsilon absorbs round-off in (tEnd-t0)/dt before truncation.
const stepEpsilon = 1e-8

// TimeRange describes the simulation times the generated fields map onto.
type TimeRange struct {
	T0        float64 `json:"t0" yaml:"t0"`
	TEnd      float64 `json:"tEnd" yaml:"tEnd"`
	Dt        float64 `json:"dt" yaml:"dt"`
	Precision int     `json:"precision" yaml:"precision"`
}

// Validate checks that the range produces at least one step.
func (r TimeRange) Validate() error {
	if r.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidTimeRange, r.Dt)
	}
	if r.TEnd < r.T0 {
		return fmt.Errorf("%w: tEnd %g is before t0 %g", ErrInvalidTimeRange, r.TEnd, r.T0)
	}
	if r.Precision < 0 {
		return fmt.Errorf("%w: precision must not be negative", ErrInvalidTimeRange)
	}
	return nil
}

// Steps returns the number of time values from T0 to TEnd inclusive.
func (r TimeRange) Steps() int {
	return int(math.Floor((r.TEnd-r.T0)/r.Dt + 1 + stepEpsilon))
}

// At returns the rounded time value for a position.
func (r TimeRange) At(position int) float64 {
	return RoundTime(r.T0+r.Dt*float64(position), r.Precision)
}

// Label returns the directory name for a position.
func (r TimeRange) Label(position int) string {
	return FormatTime(r.At(position), r.Precision)
}

// RoundTime rounds t to the given number of decimals.
func RoundTime(t float64, precision int) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(t, 'f', precision, 64), 64)
	if err != nil {
		return t
	}
	return v
}

// FormatTime renders t rounded to precision decimals without trailing zeros.
func FormatTime(t float64, precision int) string {
	return strconv.FormatFloat(RoundTime(t, precision), 'f', -1, 64)
}

// IsTimeName reports whether a directory name is a time value.
func IsTimeName(name string) bool {
	_, err := strconv.ParseFloat(name, 64)
	return err == nil
}

// SortTimes orders time directory names by their numeric value and drops
// names that are not numbers.
func SortTimes(names []string) []string {
	type entry struct {
		name  string
		value float64
	}
	entries := make([]entry, 0, len(names))
	for _, n := range names {
		v, err := strconv.ParseFloat(n, 64)
		if err != nil {
			continue
		}
		entries = append(entries, entry{name: n, value: v})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].value < entries[j].value })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// ChunksAndOffsets splits size items into n contiguous chunks. The first
// size%n chunks carry one extra item.
func ChunksAndOffsets(n, size int) (chunks, offsets []int) {
	if n <= 0 {
		n = 1
	}
	chunks = make([]int, n)
	offsets = make([]int, n)
	if size <= 0 {
		return chunks, offsets
	}

	base, rest := size/n, size%n
	offset := 0
	for i := 0; i < n; i++ {
		chunks[i] = base
		if i < rest {
			chunks[i]++
		}
		offsets[i] = offset
		offset += chunks[i]
	}
	return chunks, offsets
}
