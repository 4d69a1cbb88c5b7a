package streamkit

import (
	"math"
	"strconv"
)

// Demand expresses how many more values a consumer is currently willing to
// accept: either a finite non-negative count or unbounded. The zero value is
// no demand. Demand is a pure value type; arithmetic never produces a
// negative count and has no error conditions.
type Demand struct {
	count     int64
	unbounded bool
}

// None returns zero demand.
func None() Demand { return Demand{} }

// Finite returns demand for exactly n more values. Negative n is treated as
// zero.
func Finite(n int) Demand {
	if n < 0 {
		return Demand{}
	}
	return Demand{count: int64(n)}
}

// Unbounded returns demand that never runs out.
func Unbounded() Demand { return Demand{unbounded: true} }

// Add combines two demands. Unbounded absorbs any addition; finite counts
// saturate instead of overflowing.
func (d Demand) Add(other Demand) Demand {
	if d.unbounded || other.unbounded {
		return Demand{unbounded: true}
	}
	sum := d.count + other.count
	if sum < d.count {
		sum = math.MaxInt64
	}
	return Demand{count: sum}
}

// Decrement consumes one unit of demand, saturating at zero. Unbounded
// demand is unaffected.
func (d Demand) Decrement() Demand {
	if d.unbounded || d.count == 0 {
		return d
	}
	return Demand{count: d.count - 1}
}

// IsPositive reports whether at least one more value may be delivered.
func (d Demand) IsPositive() bool { return d.unbounded || d.count > 0 }

// IsUnbounded reports whether the demand never runs out.
func (d Demand) IsUnbounded() bool { return d.unbounded }

// Count returns the remaining finite count. It is zero for unbounded demand;
// check IsUnbounded to distinguish.
func (d Demand) Count() int64 {
	if d.unbounded {
		return 0
	}
	return d.count
}

// String implements fmt.Stringer.
func (d Demand) String() string {
	if d.unbounded {
		return "unbounded"
	}
	return strconv.FormatInt(d.count, 10)
}
