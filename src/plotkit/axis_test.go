package plotkit

import (
	"math"
	"testing"
)

func TestPadRangeBySpanFraction(t *testing.T) {
	r := PadRange(Range{Min: 0, Max: 20}, 0, 0.1)
	if r.Min != 0 || math.Abs(r.Max-22) > 1e-9 {
		t.Fatalf("got [%v,%v], want [0,22]", r.Min, r.Max)
	}
	r = PadRange(Range{Min: 100, Max: 300}, 0.1, 0.1)
	if math.Abs(r.Min-80) > 1e-9 || math.Abs(r.Max-320) > 1e-9 {
		t.Fatalf("got [%v,%v], want [80,320]", r.Min, r.Max)
	}
}

func TestPadRangeDegenerate(t *testing.T) {
	r := PadRange(Range{Min: 5, Max: 5}, 0.1, 0.1)
	if r.Span() <= 0 {
		t.Fatalf("degenerate range should gain breathing room, got [%v,%v]", r.Min, r.Max)
	}
	if !r.Contains(5) {
		t.Fatalf("padded range must still contain the value")
	}
}

func TestNiceTicksAreRoundAndInside(t *testing.T) {
	r := Range{Min: 0, Max: 103}
	ticks := NiceTicks(r, 6)
	if len(ticks) < 3 {
		t.Fatalf("expected several ticks, got %d", len(ticks))
	}
	for _, tk := range ticks {
		if tk.Value < r.Min-1e-9 || tk.Value > r.Max+1e-9 {
			t.Errorf("tick %v outside [%v,%v]", tk.Value, r.Min, r.Max)
		}
	}
	// step 20 over [0,103]
	if ticks[0].Value != 0 || ticks[1].Value != 20 {
		t.Fatalf("expected ticks starting 0,20, got %v,%v", ticks[0].Value, ticks[1].Value)
	}
	if ticks[0].Label != "0" {
		t.Fatalf("integer steps should label without decimals, got %q", ticks[0].Label)
	}
}

func TestNiceTicksSubUnitStep(t *testing.T) {
	ticks := NiceTicks(Range{Min: 0, Max: 1}, 6)
	found := false
	for _, tk := range ticks {
		if tk.Label == "0.2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a 0.2 tick over [0,1], got %+v", ticks)
	}
}

func TestNiceTicksDegenerateRange(t *testing.T) {
	ticks := NiceTicks(Range{Min: 7, Max: 7}, 6)
	if len(ticks) != 1 || ticks[0].Value != 7 {
		t.Fatalf("degenerate range should yield the single value, got %+v", ticks)
	}
}
