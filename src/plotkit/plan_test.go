package plotkit

import (
	"math"
	"strings"
	"testing"

	"github.com/openmsviz/msviz/src/msdata"
)

func table(vals ...[3]float64) *msdata.Table {
	pts := make([]msdata.Point, 0, len(vals))
	for _, v := range vals {
		pts = append(pts, msdata.Point{X: v[0], Y: v[1], Intensity: v[2], MZ: math.NaN(), ProductMZ: math.NaN()})
	}
	return msdata.NewTable(pts)
}

func TestResolveEmptyTable(t *testing.T) {
	_, err := Resolve(Request{Kind: KindChromatogram, Data: msdata.NewTable(nil), Config: DefaultConfig()})
	if err != ErrEmptyTable {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestResolveRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	if _, err := Resolve(Request{Kind: KindLine, Data: table([3]float64{1, 0, 1}), Config: cfg}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestChromatogramYRangeAnchoredAtZero(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:   KindChromatogram,
		Data:   table([3]float64{1, 0, 10}, [3]float64{2, 0, 20}, [3]float64{3, 0, 5}),
		Config: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.YRange.Min != 0 {
		t.Errorf("y min = %v, want 0", plan.YRange.Min)
	}
	if math.Abs(plan.YRange.Max-22) > 1e-9 {
		t.Errorf("y max = %v, want 22 (max intensity plus 10%%)", plan.YRange.Max)
	}
}

func TestSpectrumXRangePaddedBothSides(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:   KindSpectrum,
		Data:   table([3]float64{100, 0, 10}, [3]float64{300, 0, 20}),
		Config: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if math.Abs(plan.XRange.Min-80) > 1e-9 || math.Abs(plan.XRange.Max-320) > 1e-9 {
		t.Fatalf("x range [%v,%v], want [80,320]", plan.XRange.Min, plan.XRange.Max)
	}
	if !plan.ZeroBaseline {
		t.Fatalf("spectrum must carry the zero baseline")
	}
}

func TestMirrorSpectrumNegatesDisplayCopyOnly(t *testing.T) {
	ref := table([3]float64{150, 0, 8}, [3]float64{250, 0, 16})
	cfg := DefaultConfig()
	cfg.MirrorSpectrum = true
	plan, err := Resolve(Request{
		Kind:      KindSpectrum,
		Data:      table([3]float64{100, 0, 10}, [3]float64{300, 0, 20}),
		Reference: ref,
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(plan.MirrorSeries) != 1 {
		t.Fatalf("expected one mirror series, got %d", len(plan.MirrorSeries))
	}
	got := plan.MirrorSeries[0].Points
	want := []float64{-8, -16}
	for i, w := range want {
		if got[i].Intensity != w {
			t.Errorf("mirror point %d: intensity %v, want %v", i, got[i].Intensity, w)
		}
	}
	// the caller's reference keeps its positive values
	if ref.Points[0].Intensity != 8 || ref.Points[1].Intensity != 16 {
		t.Fatalf("reference table was mutated: %+v", ref.Points)
	}
	if plan.YRange.Min >= 0 {
		t.Fatalf("mirrored plot must extend below zero, got y min %v", plan.YRange.Min)
	}
}

func TestPeakMapBinningSuppressesTooltips(t *testing.T) {
	var vals [][3]float64
	for i := 0; i < 30; i++ {
		vals = append(vals, [3]float64{float64(i % 7), float64(i % 5), float64(i)})
	}
	cfg := DefaultConfig()
	cfg.NumXBins, cfg.NumYBins = 2, 2
	plan, err := Resolve(Request{Kind: KindPeakMap, Data: table(vals...), Config: cfg})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !plan.Binned {
		t.Fatalf("30 rows over 4 cells should auto-bin")
	}
	if plan.ShowTooltips {
		t.Fatalf("tooltips must be suppressed once binning collapsed identity")
	}
	for _, p := range plan.Series[0].Points {
		if p.Hover != "" {
			t.Fatalf("binned points must not carry hover text")
		}
	}
}

func TestPeakMapUnbinnedKeepsTooltips(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:   KindPeakMap,
		Data:   table([3]float64{1, 100, 10}, [3]float64{2, 200, 20}),
		Config: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Binned || !plan.ShowTooltips {
		t.Fatalf("small table must pass through with tooltips")
	}
	h := plan.Series[0].Points[0].Hover
	if !strings.Contains(h, "m/z: 100.000000") || !strings.Contains(h, "RT: 1.00") || !strings.Contains(h, "intensity: 10") {
		t.Fatalf("unexpected hover text %q", h)
	}
}

func TestColorDomainSpansFullDataset(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:   KindFeatureHeatmap,
		Data:   table([3]float64{1, 1, 3}, [3]float64{2, 2, 97}, [3]float64{3, 3, 41}),
		Config: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	d := plan.ColorDomain()
	if d.Min != 3 || d.Max != 97 {
		t.Fatalf("color domain [%v,%v], want global [3,97]", d.Min, d.Max)
	}
}

func TestPeakMapPointsSortedForZOrder(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:   KindPeakMap,
		Data:   table([3]float64{1, 1, 9}, [3]float64{2, 2, 1}, [3]float64{3, 3, 5}),
		Config: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	pts := plan.Series[0].Points
	for i := 1; i < len(pts); i++ {
		if pts[i].Intensity < pts[i-1].Intensity {
			t.Fatalf("points not ascending by intensity at %d", i)
		}
	}
}

func TestRelativeIntensityNormalization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelativeIntensity = true
	src := table([3]float64{1, 0, 10}, [3]float64{2, 0, 20}, [3]float64{3, 0, 5})
	plan, err := Resolve(Request{Kind: KindChromatogram, Data: src, Config: cfg})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []float64{50, 100, 25}
	for i, w := range want {
		if math.Abs(plan.Series[0].Points[i].Intensity-w) > 1e-9 {
			t.Errorf("point %d: %v, want %v", i, plan.Series[0].Points[i].Intensity, w)
		}
	}
	// request data untouched
	if src.Points[1].Intensity != 20 {
		t.Fatalf("input table was mutated")
	}
}

func TestBinnedRelativeIntensityPeaksAtHundred(t *testing.T) {
	// the raw maximum sits in a shared bin whose mean is below it, so
	// scaling must run on the binned values, not the raw ones
	cfg := DefaultConfig()
	cfg.RelativeIntensity = true
	cfg.BinPeaks = msdata.BinOn
	cfg.NumXBins, cfg.NumYBins = 2, 2
	plan, err := Resolve(Request{
		Kind: KindPeakMap,
		Data: table(
			[3]float64{0, 0, 100},
			[3]float64{0.1, 0.1, 10},
			[3]float64{10, 10, 50},
			[3]float64{9, 9, 20},
			[3]float64{8, 8, 20},
		),
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !plan.Binned {
		t.Fatalf("BinOn must bin")
	}
	max := 0.0
	for _, p := range plan.Series[0].Points {
		if p.Intensity > max {
			max = p.Intensity
		}
	}
	if math.Abs(max-100) > 1e-9 {
		t.Fatalf("binned relative maximum = %v, want 100", max)
	}
	if d := plan.ColorDomain(); math.Abs(d.Max-100) > 1e-9 {
		t.Fatalf("color domain max = %v, want 100", d.Max)
	}
}

func TestMirrorSeriesMatchesMainTraceColor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MirrorSpectrum = true
	plan, err := Resolve(Request{
		Kind:      KindSpectrum,
		Data:      table([3]float64{100, 0, 10}, [3]float64{300, 0, 20}),
		Reference: table([3]float64{150, 0, 8}, [3]float64{250, 0, 16}),
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// the palette cycle restarts for the mirror, so the reference trace
	// pairs visually with its upward counterpart
	if plan.MirrorSeries[0].Color != plan.Series[0].Color {
		t.Fatalf("mirror color %v, want main trace color %v", plan.MirrorSeries[0].Color, plan.Series[0].Color)
	}
}

func TestAnnotationGroupingAssignsDistinctColors(t *testing.T) {
	src := &msdata.Table{HasAnnotation: true, Points: []msdata.Point{
		{X: 1, Intensity: 1, Annotation: "a", MZ: math.NaN(), ProductMZ: math.NaN()},
		{X: 2, Intensity: 2, Annotation: "b", MZ: math.NaN(), ProductMZ: math.NaN()},
		{X: 3, Intensity: 3, Annotation: "a", MZ: math.NaN(), ProductMZ: math.NaN()},
	}}
	plan, err := Resolve(Request{Kind: KindChromatogram, Data: src, Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(plan.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(plan.Series))
	}
	if plan.Series[0].Name != "a" || plan.Series[1].Name != "b" {
		t.Fatalf("series names %q,%q, want a,b", plan.Series[0].Name, plan.Series[1].Name)
	}
	if plan.Series[0].Color == plan.Series[1].Color {
		t.Fatalf("annotation groups must get distinct palette colors")
	}
	if !plan.HasLegend() {
		t.Fatalf("named series with legend enabled should show a legend")
	}
}

func TestChromatogramHoverCarriesAuxColumns(t *testing.T) {
	src := &msdata.Table{HasAnnotation: true, HasMZ: true, HasProductMZ: true, Points: []msdata.Point{
		{X: 1, Intensity: 10, Annotation: "frag", MZ: 512.1234, ProductMZ: 600.5},
	}}
	plan, err := Resolve(Request{Kind: KindChromatogram, Data: src, Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	h := plan.Series[0].Points[0].Hover
	for _, want := range []string{"RT: 1.00", "m/z: 512.1234", "annotation: frag", "product m/z: 600.5000"} {
		if !strings.Contains(h, want) {
			t.Errorf("hover %q missing %q", h, want)
		}
	}
}

func TestFeatureApexExtendsYRange(t *testing.T) {
	plan, err := Resolve(Request{
		Kind:     KindChromatogram,
		Data:     table([3]float64{1, 0, 10}, [3]float64{2, 0, 20}),
		Features: []msdata.Feature{{LeftWidth: 1, RightWidth: 2, ApexIntensity: 50, QValue: math.NaN()}},
		Config:   DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if math.Abs(plan.YRange.Max-55) > 1e-9 {
		t.Fatalf("y max = %v, want 55 (apex 50 plus 10%%)", plan.YRange.Max)
	}
}

func TestHeatmapMarginalsIntegrateAndLink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddMarginals = true
	cfg.BinPeaks = msdata.BinOff
	plan, err := Resolve(Request{
		Kind: KindFeatureHeatmap,
		Data: table(
			[3]float64{1, 100, 10},
			[3]float64{1, 200, 5},
			[3]float64{2, 100, 7},
		),
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.XMarginal == nil || plan.YMarginal == nil {
		t.Fatalf("marginals missing")
	}
	xm := plan.XMarginal.Series[0].Points
	if len(xm) != 2 || xm[0].Intensity != 15 || xm[1].Intensity != 7 {
		t.Fatalf("x-marginal integration wrong: %+v", xm)
	}
	ym := plan.YMarginal.Series[0].Points
	if len(ym) != 2 || ym[0].Intensity != 17 || ym[1].Intensity != 5 {
		t.Fatalf("y-marginal integration wrong: %+v", ym)
	}
	if plan.XMarginal.Title != "Integrated RT (s)" {
		t.Fatalf("x-marginal title %q", plan.XMarginal.Title)
	}
	if plan.YMarginal.Title != "Integrated m/z" {
		t.Fatalf("y-marginal title %q", plan.YMarginal.Title)
	}
}

func TestLegendTitleLabelsLoneTrace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Legend.Title = "XIC"
	plan, err := Resolve(Request{Kind: KindChromatogram, Data: table([3]float64{1, 0, 10}, [3]float64{2, 0, 20}), Config: cfg})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Series[0].Name != "XIC" {
		t.Fatalf("lone trace should take the legend title, got %q", plan.Series[0].Name)
	}
	if !plan.HasLegend() {
		t.Fatalf("titled lone trace should show a legend")
	}
}

func TestDefaultLabelsPerKind(t *testing.T) {
	plan, err := Resolve(Request{Kind: KindMobilogram, Data: table([3]float64{1, 0, 1}), Config: DefaultConfig()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Config.XLabel != "Ion Mobility" || plan.Config.YLabel != "Intensity" {
		t.Fatalf("labels %q/%q", plan.Config.XLabel, plan.Config.YLabel)
	}

	cfg := DefaultConfig()
	cfg.XLabel = "custom"
	plan, err = Resolve(Request{Kind: KindMobilogram, Data: table([3]float64{1, 0, 1}), Config: cfg})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Config.XLabel != "custom" {
		t.Fatalf("explicit label must win, got %q", plan.Config.XLabel)
	}
}
