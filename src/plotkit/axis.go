package plotkit

import (
	"math"
	"strconv"
)

// Range is a resolved axis interval. Backends must honor it verbatim so the
// same request draws the same viewport everywhere.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Span() float64 { return r.Max - r.Min }

// Contains reports whether v lies inside the closed interval.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// PadRange widens the interval by fractions of its span on each side. A
// degenerate interval is padded relative to its magnitude so single-value
// axes still get visible breathing room.
func PadRange(r Range, lo, hi float64) Range {
	span := r.Span()
	if span <= 0 {
		span = math.Max(math.Abs(r.Max), 1)
	}
	return Range{Min: r.Min - span*lo, Max: r.Max + span*hi}
}

// Tick is one labeled axis position.
type Tick struct {
	Value float64
	Label string
}

// NiceTicks places around n round-valued ticks inside the range. Tick
// positions snap to 1/2/5 multiples of a power of ten, the same way hand
// drawn axes are labeled.
func NiceTicks(r Range, n int) []Tick {
	if n < 2 {
		n = 2
	}
	span := r.Span()
	if span <= 0 {
		return []Tick{{Value: r.Min, Label: formatTickValue(r.Min, 0)}}
	}
	step := niceNum(span/float64(n-1), true)
	start := math.Ceil(r.Min/step) * step
	dec := decimalsFor(step)
	ticks := make([]Tick, 0, n+2)
	for v := start; v <= r.Max+step*1e-9; v += step {
		// avoid "-0" labels at the zero baseline
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		ticks = append(ticks, Tick{Value: v, Label: formatTickValue(v, dec)})
	}
	return ticks
}

// niceNum rounds x to a 1, 2 or 5 multiple of a power of ten.
func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	if round {
		switch {
		case f < 1.5:
			nf = 1
		case f < 3:
			nf = 2
		case f < 7:
			nf = 5
		default:
			nf = 10
		}
	} else {
		switch {
		case f <= 1:
			nf = 1
		case f <= 2:
			nf = 2
		case f <= 5:
			nf = 5
		default:
			nf = 10
		}
	}
	return nf * math.Pow(10, exp)
}

func decimalsFor(step float64) int {
	if step >= 1 {
		return 0
	}
	d := int(math.Ceil(-math.Log10(step)))
	if d > 6 {
		d = 6
	}
	return d
}

func formatTickValue(v float64, dec int) string {
	if math.Abs(v) >= 1e6 {
		return strconv.FormatFloat(v, 'g', 4, 64)
	}
	return strconv.FormatFloat(v, 'f', dec, 64)
}
