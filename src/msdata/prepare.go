package msdata

import (
	"fmt"
	"sort"
	"strings"
)

// BinMode selects whether Bin partitions the table.
type BinMode int

const (
	// BinAuto bins only when the row count exceeds the bin product.
	BinAuto BinMode = iota
	// BinOn always bins.
	BinOn
	// BinOff never bins.
	BinOff
)

// ParseBinMode accepts "auto", "on"/"true" and "off"/"false".
func ParseBinMode(s string) (BinMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return BinAuto, nil
	case "on", "true":
		return BinOn, nil
	case "off", "false":
		return BinOff, nil
	}
	return BinAuto, fmt.Errorf("unsupported bin mode %q (want auto, on or off)", s)
}

func (m BinMode) String() string {
	switch m {
	case BinOn:
		return "on"
	case BinOff:
		return "off"
	default:
		return "auto"
	}
}

// Axis names a table dimension for marginal integration.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// ShouldBin is the auto-binning predicate: bin when explicitly requested,
// or in auto mode when the row count exceeds the bin product. Small tables
// pass through untouched so no fidelity is lost by default.
func ShouldBin(rows, nx, ny int, mode BinMode) bool {
	switch mode {
	case BinOn:
		return true
	case BinOff:
		return false
	default:
		return rows > nx*ny
	}
}

// Bin partitions X and Y into nx and ny equal-width intervals, averages
// intensity per cell and replaces interval bounds with midpoints. Cells
// with no observations are kept with intensity 0, so the output always has
// exactly nx*ny rows (and never more). The second return reports whether
// binning actually ran; when it did not, the input table is returned as-is.
//
// Binned points lose per-observation identity: annotation and auxiliary
// tooltip columns are dropped from the result.
func Bin(t *Table, nx, ny int, mode BinMode) (*Table, bool) {
	if nx < 1 || ny < 1 || !ShouldBin(t.Len(), nx, ny, mode) {
		return t, false
	}

	xMin, xMax := t.XExtent()
	yMin, yMax := t.YExtent()
	xAxis := newBinAxis(xMin, xMax, nx)
	yAxis := newBinAxis(yMin, yMax, ny)

	sums := make([]float64, xAxis.n*yAxis.n)
	counts := make([]int, xAxis.n*yAxis.n)
	for _, p := range t.Points {
		ix := xAxis.index(p.X)
		iy := yAxis.index(p.Y)
		sums[iy*xAxis.n+ix] += p.Intensity
		counts[iy*xAxis.n+ix]++
	}

	out := &Table{Points: make([]Point, 0, xAxis.n*yAxis.n)}
	for iy := 0; iy < yAxis.n; iy++ {
		for ix := 0; ix < xAxis.n; ix++ {
			mean := 0.0
			if c := counts[iy*xAxis.n+ix]; c > 0 {
				mean = sums[iy*xAxis.n+ix] / float64(c)
			}
			out.Points = append(out.Points, Point{
				X:         xAxis.midpoint(ix),
				Y:         yAxis.midpoint(iy),
				Intensity: mean,
				MZ:        nan,
				ProductMZ: nan,
			})
		}
	}
	return out, true
}

// binAxis is one equal-width partition. A degenerate extent (all values
// equal) collapses to a single cell whose midpoint is the shared value, so
// the output never exceeds the requested bin product.
type binAxis struct {
	origin float64
	width  float64
	n      int
}

func newBinAxis(min, max float64, n int) binAxis {
	if max <= min {
		return binAxis{origin: min - 0.5, width: 1, n: 1}
	}
	return binAxis{origin: min, width: (max - min) / float64(n), n: n}
}

func (a binAxis) index(v float64) int {
	i := int((v - a.origin) / a.width)
	if i < 0 {
		i = 0
	}
	if i >= a.n {
		i = a.n - 1
	}
	return i
}

func (a binAxis) midpoint(i int) float64 {
	return a.origin + (float64(i)+0.5)*a.width
}

// NormalizeRelative rescales intensity in place to [0, 100] by dividing by
// the maximum. A table whose maximum is 0 is left unchanged.
func NormalizeRelative(t *Table) {
	_, max := t.IntensityExtent()
	if max == 0 {
		return
	}
	for i := range t.Points {
		t.Points[i].Intensity = t.Points[i].Intensity / max * 100
	}
}

// SortByIntensity sorts ascending so low-intensity points render first and
// high-intensity markers draw on top of them. The sort is stable so equal
// intensities keep source order.
func SortByIntensity(t *Table) {
	sort.SliceStable(t.Points, func(i, j int) bool {
		return t.Points[i].Intensity < t.Points[j].Intensity
	})
}

// IntegrateAlong collapses all rows sharing the same coordinate on the kept
// axis (and annotation, when requested) into one row summing intensity.
// The result keeps only the retained coordinate and is sorted by it, with
// annotation as tie-break, ready to draw as a marginal line plot.
func IntegrateAlong(t *Table, keep Axis, byAnnotation bool) *Table {
	type key struct {
		coord float64
		ann   string
	}
	sums := map[key]float64{}
	order := make([]key, 0)
	for _, p := range t.Points {
		k := key{coord: p.X}
		if keep == AxisY {
			k.coord = p.Y
		}
		if byAnnotation {
			k.ann = p.Annotation
		}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += p.Intensity
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].coord != order[j].coord {
			return order[i].coord < order[j].coord
		}
		return order[i].ann < order[j].ann
	})

	out := &Table{HasAnnotation: byAnnotation && t.HasAnnotation}
	out.Points = make([]Point, 0, len(order))
	for _, k := range order {
		p := Point{Intensity: sums[k], Annotation: k.ann, MZ: nan, ProductMZ: nan}
		if keep == AxisY {
			p.Y = k.coord
		} else {
			p.X = k.coord
		}
		out.Points = append(out.Points, p)
	}
	return out
}
