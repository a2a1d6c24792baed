package plotkit

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/openmsviz/msviz/src/msdata"
)

func TestImageFigureRendersAtConfiguredSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Legend.Show = false
	fig, err := Plot(Request{
		Kind:   KindChromatogram,
		Data:   table([3]float64{1, 0, 10}, [3]float64{2, 0, 20}, [3]float64{3, 0, 5}),
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	imgFig, ok := fig.(*ImageFigure)
	if !ok {
		t.Fatalf("expected *ImageFigure, got %T", fig)
	}
	b := imgFig.Img.Bounds()
	if b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		t.Fatalf("image %dx%d, want %dx%d", b.Dx(), b.Dy(), cfg.Width, cfg.Height)
	}

	var buf bytes.Buffer
	if err := imgFig.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
}

func TestImagePeakMapGainsColorScaleStrip(t *testing.T) {
	cfg := DefaultConfig()
	fig, err := Plot(Request{
		Kind:   KindPeakMap,
		Data:   table([3]float64{1, 100, 3}, [3]float64{2, 200, 97}),
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	b := fig.(*ImageFigure).Img.Bounds()
	if b.Dx() != cfg.Width+colorScaleWidth {
		t.Fatalf("width %d, want %d plus the color scale strip", b.Dx(), cfg.Width+colorScaleWidth)
	}
}

func TestNegatedTickLabelsKeepPositiveMagnitudes(t *testing.T) {
	// a leftward-growing intensity axis spanning [-10,0]
	ticks := negatedTickLabels(Range{Min: -10, Max: 0}, 3, 0)
	if len(ticks) == 0 {
		t.Fatalf("no ticks")
	}
	for _, tk := range ticks {
		if tk.Label[0] == '-' {
			t.Errorf("tick %v labeled %q, labels must show the positive magnitude", tk.Value, tk.Label)
		}
	}
	last := ticks[len(ticks)-1]
	if last.Value != 0 || last.Label != "0" {
		t.Fatalf("zero tick labeled %q, want \"0\"", last.Label)
	}
}

func TestImageHeatmapGridComposesAtConfiguredSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddMarginals = true
	cfg.BinPeaks = msdata.BinOff
	cfg.Legend.Show = false
	fig, err := Plot(Request{
		Kind: KindFeatureHeatmap,
		Data: table(
			[3]float64{1, 100, 10},
			[3]float64{1, 200, 5},
			[3]float64{2, 100, 7},
			[3]float64{2, 200, 12},
		),
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Plot: %v", err)
	}
	b := fig.(*ImageFigure).Img.Bounds()
	if b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		t.Fatalf("grid %dx%d, want %dx%d", b.Dx(), b.Dy(), cfg.Width, cfg.Height)
	}
}

func TestStickSeriesNamesFirstOnly(t *testing.T) {
	s := Series{
		Name: "ref",
		Points: []msdata.Point{
			{X: 1, Intensity: 5},
			{X: 2, Intensity: 7},
		},
	}
	out := stickSeries(s)
	if len(out) != 2 {
		t.Fatalf("expected one series per stick, got %d", len(out))
	}
	if out[0].(chart.ContinuousSeries).Name != "ref" {
		t.Fatalf("first stick should carry the group name")
	}
	if out[1].(chart.ContinuousSeries).Name != "" {
		t.Fatalf("later sticks must stay unnamed so the legend lists the group once")
	}
	ys := out[0].(chart.ContinuousSeries).YValues
	if ys[0] != 0 || ys[1] != 5 {
		t.Fatalf("stick must run from the zero baseline to the peak, got %v", ys)
	}
}

func TestGradientScatterSeriesBucketsByIntensity(t *testing.T) {
	grad, err := NewGradient("plasma", 0, 100)
	if err != nil {
		t.Fatalf("NewGradient: %v", err)
	}
	var pts []msdata.Point
	for i := 0; i <= 100; i++ {
		pts = append(pts, msdata.Point{X: float64(i), Y: float64(i), Intensity: float64(i)})
	}
	out := gradientScatterSeries(pts, grad)
	if len(out) == 0 || len(out) > colormapBuckets {
		t.Fatalf("bucket count %d outside (0,%d]", len(out), colormapBuckets)
	}
	total := 0
	for _, s := range out {
		total += len(s.(chart.ContinuousSeries).XValues)
	}
	if total != len(pts) {
		t.Fatalf("bucketing lost points: %d of %d", total, len(pts))
	}
}

func TestFeatureSeriesDashedRectangles(t *testing.T) {
	plan := &Plan{
		Config: DefaultConfig(),
		Features: []msdata.Feature{
			{LeftWidth: 1, RightWidth: 2, ApexIntensity: 50, QValue: 0.01},
			{LeftWidth: 3, RightWidth: 4, ApexIntensity: 30, QValue: math.NaN()},
		},
	}
	out := featureSeries(plan)
	if len(out) != 2 {
		t.Fatalf("expected 2 boundary series, got %d", len(out))
	}
	first := out[0].(chart.ContinuousSeries)
	if first.Name != "Feature 0 (q-value: 0.0100)" {
		t.Fatalf("unexpected label %q", first.Name)
	}
	if len(first.Style.StrokeDashArray) == 0 {
		t.Fatalf("boundaries must draw dashed")
	}
	if first.XValues[0] != 1 || first.XValues[1] != 2 || first.YValues[2] != 50 {
		t.Fatalf("rectangle path wrong: x=%v y=%v", first.XValues, first.YValues)
	}
}
