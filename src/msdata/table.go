// Package msdata holds the tabular observation model shared by every plot
// kind, plus the pure data-shaping steps (binning, normalization, hover
// text, z-order sorting, marginal integration) that run before any backend
// sees the data.
package msdata

import (
	"fmt"
	"math"
	"strings"
)

var nan = math.NaN()

// Point is a single observation. X and Y are plot coordinates; Intensity is
// the measured value. One-dimensional kinds (chromatogram, spectrum,
// mobilogram) plot (X, Intensity) and leave Y unused. MZ and ProductMZ are
// auxiliary tooltip columns and are NaN when the source table lacks them.
type Point struct {
	X          float64
	Y          float64
	Intensity  float64
	Annotation string
	MZ         float64
	ProductMZ  float64
	Hover      string
}

// Table is an observation table. The Has* flags record which optional
// columns were present in the source so tooltip synthesis can skip absent
// ones instead of testing every point for NaN.
type Table struct {
	Points        []Point
	HasAnnotation bool
	HasMZ         bool
	HasProductMZ  bool
}

// Feature describes one detected peak boundary overlaid on chromatogram and
// mobilogram plots. QValue is NaN when the source table carries no score.
type Feature struct {
	LeftWidth     float64
	RightWidth    float64
	ApexIntensity float64
	QValue        float64
}

// Label returns the legend label for the feature at the given index.
func (f Feature) Label(idx int) string {
	if !math.IsNaN(f.QValue) {
		return fmt.Sprintf("Feature %d (q-value: %.4f)", idx, f.QValue)
	}
	return fmt.Sprintf("Feature %d", idx)
}

// NewTable builds a table from bare (x, y, intensity) triples. Optional
// columns start absent; callers set them point by point and flip the flags.
func NewTable(pts []Point) *Table {
	return &Table{Points: pts}
}

func (t *Table) Len() int { return len(t.Points) }

// Clone returns a deep copy. Data preparation never mutates caller-owned
// tables; every destructive step operates on a clone.
func (t *Table) Clone() *Table {
	cp := *t
	cp.Points = make([]Point, len(t.Points))
	copy(cp.Points, t.Points)
	return &cp
}

// IntensityExtent returns the min and max intensity over all points.
// Returns (0, 0) for an empty table.
func (t *Table) IntensityExtent() (min, max float64) {
	if len(t.Points) == 0 {
		return 0, 0
	}
	min, max = t.Points[0].Intensity, t.Points[0].Intensity
	for _, p := range t.Points[1:] {
		if p.Intensity < min {
			min = p.Intensity
		}
		if p.Intensity > max {
			max = p.Intensity
		}
	}
	return min, max
}

// XExtent returns the min and max X coordinate. Returns (0, 0) for an empty
// table.
func (t *Table) XExtent() (min, max float64) {
	if len(t.Points) == 0 {
		return 0, 0
	}
	min, max = t.Points[0].X, t.Points[0].X
	for _, p := range t.Points[1:] {
		if p.X < min {
			min = p.X
		}
		if p.X > max {
			max = p.X
		}
	}
	return min, max
}

// YExtent returns the min and max Y coordinate. Returns (0, 0) for an empty
// table.
func (t *Table) YExtent() (min, max float64) {
	if len(t.Points) == 0 {
		return 0, 0
	}
	min, max = t.Points[0].Y, t.Points[0].Y
	for _, p := range t.Points[1:] {
		if p.Y < min {
			min = p.Y
		}
		if p.Y > max {
			max = p.Y
		}
	}
	return min, max
}

// Annotations returns the distinct annotation values in first-seen order.
// Tables without the annotation column yield a single empty group.
func (t *Table) Annotations() []string {
	if !t.HasAnnotation {
		return []string{""}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, p := range t.Points {
		if _, ok := seen[p.Annotation]; ok {
			continue
		}
		seen[p.Annotation] = struct{}{}
		out = append(out, p.Annotation)
	}
	return out
}

// SynthesizeHover fills each point's Hover string from rounded coordinates
// and the integer intensity. Lines are joined with '\n'; backends convert
// to their native separator. includeY adds the Y coordinate line for
// two-dimensional kinds (peak maps, feature heatmaps). Only meaningful when
// binning did not collapse per-point identity.
func SynthesizeHover(t *Table, xName, yName string, includeY bool) {
	for i := range t.Points {
		p := &t.Points[i]
		lines := make([]string, 0, 3)
		if includeY {
			// y is the m/z-style axis on 2D plots, keep six decimals
			lines = append(lines, fmt.Sprintf("%s: %.6f", yName, p.Y))
		}
		lines = append(lines, fmt.Sprintf("%s: %.2f", xName, p.X))
		lines = append(lines, fmt.Sprintf("intensity: %d", int(p.Intensity)))
		p.Hover = strings.Join(lines, "\n")
	}
}
