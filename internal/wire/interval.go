package wire

import (
	"fmt"
	"math"
)

// Int32Interval is an inclusive [Min, Max] range. Min > Max marks an
// indeterminate result, e.g. the min/max of a dimension in an empty document.
type Int32Interval struct {
	Min int32
	Max int32
}

// Indeterminate is the interval reported when there is nothing to measure.
var Indeterminate = Int32Interval{Min: math.MaxInt32, Max: math.MinInt32}

// Valid reports whether the interval holds at least one value.
func (i Int32Interval) Valid() bool { return i.Min <= i.Max }

// Extend widens i to include v.
func (i Int32Interval) Extend(v int32) Int32Interval {
	if !i.Valid() {
		return Int32Interval{Min: v, Max: v}
	}
	return Int32Interval{Min: min(i.Min, v), Max: max(i.Max, v)}
}

func (i Int32Interval) String() string {
	if !i.Valid() {
		return "indeterminate"
	}
	return fmt.Sprintf("[%d,%d]", i.Min, i.Max)
}

// NewIntervalBuffer allocates room for n intervals.
func NewIntervalBuffer(n int) []byte {
	return make([]byte, n*Int32IntervalSize)
}

// PutIntervals writes intervals into b, which must have room for all of them.
func PutIntervals(b []byte, intervals []Int32Interval) error {
	if len(b) < len(intervals)*Int32IntervalSize {
		return ErrTruncated
	}
	for i, iv := range intervals {
		order.PutUint32(b[i*Int32IntervalSize:], uint32(iv.Min))
		order.PutUint32(b[i*Int32IntervalSize+4:], uint32(iv.Max))
	}
	return nil
}

// DecodeIntervals reads n intervals from b.
func DecodeIntervals(b []byte, n int) ([]Int32Interval, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if len(b)/Int32IntervalSize < n {
		return nil, ErrTruncated
	}
	out := make([]Int32Interval, n)
	for i := range out {
		out[i] = Int32Interval{
			Min: int32(order.Uint32(b[i*Int32IntervalSize:])),
			Max: int32(order.Uint32(b[i*Int32IntervalSize+4:])),
		}
	}
	return out, nil
}
