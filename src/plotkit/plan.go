package plotkit

import (
	"fmt"
	"image/color"
	"math"

	"github.com/openmsviz/msviz/src/msdata"
)

// Request is one plot call: the observation table, optional companions and
// the configuration. The request owns nothing; Resolve clones before any
// destructive step.
type Request struct {
	Kind Kind
	Data *msdata.Table

	// Reference is the second spectrum drawn downward when
	// Config.MirrorSpectrum is set. Ignored by other kinds.
	Reference *msdata.Table

	// Features are peak boundaries overlaid on chromatograms and
	// mobilograms.
	Features []msdata.Feature

	Config Config
}

// Series is one drawable trace: points sharing an annotation, with its
// assigned palette color. Mirrored marks display copies whose intensities
// were negated.
type Series struct {
	Name     string
	Points   []msdata.Point
	Color    color.RGBA
	Mirrored bool
}

// Marginal is one integrated side panel of a feature heatmap.
type Marginal struct {
	// Axis is the spatial axis the panel keeps; the other one was
	// integrated away.
	Axis   msdata.Axis
	Series []Series
	// IntensityRange is the integrated-intensity axis interval.
	IntensityRange Range
	Title          string
}

// Plan is the fully resolved, backend-independent description of a figure.
// Everything the three backends must agree on (ranges, legend visibility,
// color-scale domain, tooltip suppression, mirror negation) is decided here
// exactly once.
type Plan struct {
	Kind   Kind
	Config Config

	Series       []Series
	MirrorSeries []Series
	Features     []msdata.Feature

	Binned bool
	// ShowTooltips is false once binning collapsed per-point identity.
	ShowTooltips bool

	XRange Range
	YRange Range
	// ZeroBaseline draws the shared y=0 line stick plots hang from.
	ZeroBaseline bool

	// Gradient is non-nil for kinds that map intensity to color. Its
	// domain spans the global min/max intensity of the full prepared
	// dataset, never just a visible subset.
	Gradient *Gradient

	XMarginal *Marginal
	YMarginal *Marginal
}

// HasLegend reports whether the figure shows a legend: it must be enabled
// and at least one series must carry a name.
func (p *Plan) HasLegend() bool {
	if !p.Config.Legend.Show {
		return false
	}
	for _, s := range p.Series {
		if s.Name != "" {
			return true
		}
	}
	for _, s := range p.MirrorSeries {
		if s.Name != "" {
			return true
		}
	}
	return false
}

// ColorDomain returns the intensity interval of the color scale, or (0,0)
// when the plan has none.
func (p *Plan) ColorDomain() Range {
	if p.Gradient == nil {
		return Range{}
	}
	mn, mx := p.Gradient.Domain()
	return Range{Min: mn, Max: mx}
}

// Resolve runs the preparation pipeline and freezes every cross-backend
// decision into a Plan. The request's tables are never mutated.
func Resolve(req Request) (*Plan, error) {
	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if req.Data == nil || req.Data.Len() == 0 {
		return nil, ErrEmptyTable
	}
	applyDefaultLabels(&cfg, req.Kind)

	data := req.Data.Clone()

	plan := &Plan{Kind: req.Kind, Config: cfg, ShowTooltips: true}

	if req.Kind.twoDimensional() {
		binned, did := msdata.Bin(data, cfg.NumXBins, cfg.NumYBins, cfg.BinPeaks)
		data = binned
		plan.Binned = did
		if did {
			plan.ShowTooltips = false
		}
	}
	// relative scaling runs on the binned table, so the displayed maximum
	// is exactly 100 even after bin means averaged the raw peak away
	if cfg.RelativeIntensity {
		msdata.NormalizeRelative(data)
	}
	if req.Kind.twoDimensional() {
		msdata.SortByIntensity(data)
	}

	if plan.ShowTooltips {
		hx, hy := hoverNames(req.Kind)
		msdata.SynthesizeHover(data, hx, hy, req.Kind.twoDimensional())
		if req.Kind == KindChromatogram || req.Kind == KindMobilogram {
			appendAuxHover(data)
		}
	}

	gen, err := NewColorGenerator(cfg.Palette)
	if err != nil {
		return nil, err
	}

	if req.Kind.twoDimensional() {
		mn, mx := data.IntensityExtent()
		grad, err := NewGradient(cfg.Colormap, mn, mx)
		if err != nil {
			return nil, err
		}
		plan.Gradient = grad
		plan.Series = []Series{{Points: data.Points}}
	} else {
		plan.Series = groupSeries(data, gen, false)
		// a lone unannotated trace takes the legend title as its label,
		// otherwise the legend would have nothing to list
		if cfg.Legend.Title != "" && len(plan.Series) == 1 && plan.Series[0].Name == "" {
			plan.Series[0].Name = cfg.Legend.Title
		}
	}

	if req.Kind == KindSpectrum && cfg.MirrorSpectrum && req.Reference != nil && req.Reference.Len() > 0 {
		ref := req.Reference.Clone()
		if cfg.RelativeIntensity {
			msdata.NormalizeRelative(ref)
		}
		if plan.ShowTooltips {
			hx, hy := hoverNames(req.Kind)
			msdata.SynthesizeHover(ref, hx, hy, false)
		}
		// sign flip happens on this clone only; the caller's reference
		// table keeps its positive intensities
		for i := range ref.Points {
			ref.Points[i].Intensity = -ref.Points[i].Intensity
		}
		// the mirror restarts the palette cycle so each reference trace
		// gets the same color as its upward counterpart
		mirrorGen, err := NewColorGenerator(cfg.Palette)
		if err != nil {
			return nil, err
		}
		plan.MirrorSeries = groupSeries(ref, mirrorGen, true)
	}
	if req.Kind == KindSpectrum || req.Kind == KindVLine {
		plan.ZeroBaseline = true
	}

	if req.Kind == KindChromatogram || req.Kind == KindMobilogram {
		plan.Features = req.Features
	}

	resolveRanges(plan, data)

	if req.Kind == KindFeatureHeatmap && cfg.AddMarginals {
		plan.XMarginal = buildMarginal(data, msdata.AxisX, cfg)
		plan.YMarginal = buildMarginal(data, msdata.AxisY, cfg)
	}

	return plan, nil
}

// applyDefaultLabels fills empty axis labels with the kind's conventional
// names so all backends title their axes identically.
func applyDefaultLabels(cfg *Config, kind Kind) {
	dx, dy := defaultLabels(kind)
	if cfg.XLabel == "" {
		cfg.XLabel = dx
	}
	if cfg.YLabel == "" {
		cfg.YLabel = dy
	}
}

func defaultLabels(kind Kind) (x, y string) {
	switch kind {
	case KindChromatogram:
		return "Retention Time", "Intensity"
	case KindMobilogram:
		return "Ion Mobility", "Intensity"
	case KindSpectrum, KindVLine:
		return "mass-to-charge", "Intensity"
	case KindPeakMap, KindFeatureHeatmap, KindScatter:
		return "RT (s)", "m/z"
	default:
		return "x", "y"
	}
}

// hoverNames are the short coordinate names used in tooltip text, distinct
// from the axis labels.
func hoverNames(kind Kind) (x, y string) {
	switch kind {
	case KindChromatogram:
		return "RT", ""
	case KindMobilogram:
		return "IM", ""
	case KindSpectrum, KindVLine:
		return "m/z", ""
	case KindPeakMap, KindFeatureHeatmap, KindScatter:
		return "RT", "m/z"
	default:
		return "x", "y"
	}
}

// appendAuxHover enriches chromatogram tooltips with the auxiliary columns
// carried by the source table.
func appendAuxHover(t *msdata.Table) {
	for i := range t.Points {
		p := &t.Points[i]
		if t.HasMZ && !math.IsNaN(p.MZ) {
			p.Hover += fmt.Sprintf("\nm/z: %.4f", p.MZ)
		}
		if t.HasAnnotation && p.Annotation != "" {
			p.Hover += "\nannotation: " + p.Annotation
		}
		if t.HasProductMZ && !math.IsNaN(p.ProductMZ) {
			p.Hover += fmt.Sprintf("\nproduct m/z: %.4f", p.ProductMZ)
		}
	}
}

// groupSeries splits the table into one series per annotation, assigning
// palette colors in first-seen order.
func groupSeries(t *msdata.Table, gen *ColorGenerator, mirrored bool) []Series {
	names := t.Annotations()
	out := make([]Series, 0, len(names))
	for _, name := range names {
		s := Series{
			Name:     name,
			Color:    gen.Next(),
			Mirrored: mirrored,
		}
		if !t.HasAnnotation {
			s.Points = t.Points
		} else {
			for _, p := range t.Points {
				if p.Annotation == name {
					s.Points = append(s.Points, p)
				}
			}
		}
		out = append(out, s)
	}
	return out
}

// resolveRanges freezes the axis viewport per kind:
//   - chromatogram, mobilogram, line: y anchored at zero with 10% headroom
//   - spectrum, vline: x padded 10% both sides; mirrored plots extend the
//     y interval below zero symmetrically to the reference maximum
//   - two-dimensional kinds: both axes padded 2%
func resolveRanges(plan *Plan, data *msdata.Table) {
	xmin, xmax := data.XExtent()
	_, imax := data.IntensityExtent()

	switch plan.Kind {
	case KindChromatogram, KindMobilogram, KindLine:
		for _, f := range plan.Features {
			if f.ApexIntensity > imax {
				imax = f.ApexIntensity
			}
		}
		plan.XRange = Range{Min: xmin, Max: xmax}
		plan.YRange = PadRange(Range{Min: 0, Max: imax}, 0, 0.1)

	case KindSpectrum, KindVLine:
		ymin := 0.0
		for _, s := range plan.MirrorSeries {
			for _, p := range s.Points {
				if p.X < xmin {
					xmin = p.X
				}
				if p.X > xmax {
					xmax = p.X
				}
				if p.Intensity < ymin {
					ymin = p.Intensity
				}
			}
		}
		plan.XRange = PadRange(Range{Min: xmin, Max: xmax}, 0.1, 0.1)
		if ymin < 0 {
			plan.YRange = PadRange(Range{Min: ymin, Max: imax}, 0.05, 0.05)
		} else {
			plan.YRange = PadRange(Range{Min: 0, Max: imax}, 0, 0.1)
		}

	default:
		ymin, ymax := data.YExtent()
		plan.XRange = PadRange(Range{Min: xmin, Max: xmax}, 0.02, 0.02)
		plan.YRange = PadRange(Range{Min: ymin, Max: ymax}, 0.02, 0.02)
	}

	// single-observation tables leave a zero-span viewport; widen it so the
	// renderers never divide by an empty span
	if plan.XRange.Span() <= 0 {
		plan.XRange = PadRange(plan.XRange, 0.5, 0.5)
	}
	if plan.YRange.Span() <= 0 {
		plan.YRange = PadRange(plan.YRange, 0.5, 0.5)
	}
}

// buildMarginal integrates one spatial axis away and groups the projection
// by annotation. Each panel gets a fresh color cycle, matching the main
// panel's palette but restarting the sequence.
func buildMarginal(data *msdata.Table, keep msdata.Axis, cfg Config) *Marginal {
	integrated := msdata.IntegrateAlong(data, keep, data.HasAnnotation)
	gen, err := NewColorGenerator(cfg.Palette)
	if err != nil {
		return nil
	}
	_, imax := integrated.IntensityExtent()
	m := &Marginal{
		Axis:           keep,
		Series:         groupSeries(integrated, gen, false),
		IntensityRange: PadRange(Range{Min: 0, Max: imax}, 0, 0.1),
	}
	if keep == msdata.AxisX {
		m.Title = "Integrated " + cfg.XLabel
	} else {
		m.Title = "Integrated " + cfg.YLabel
	}
	return m
}
