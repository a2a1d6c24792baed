package plotkit

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/openmsviz/msviz/src/logx"
	"github.com/openmsviz/msviz/src/msdata"
)

// colormapBuckets is the quantization depth when painting intensity-mapped
// markers: one raster series per occupied gradient slice.
const colormapBuckets = 48

// ImageFigure is the static-raster figure.
type ImageFigure struct {
	Img image.Image
}

func (f *ImageFigure) Backend() Backend { return BackendImage }

// WritePNG encodes the figure to PNG.
func (f *ImageFigure) WritePNG(w io.Writer) error {
	return png.Encode(w, f.Img)
}

type imageBackend struct{}

func (b imageBackend) render(plan *Plan) (Figure, error) {
	img, err := b.renderImage(plan)
	if err != nil {
		return nil, &RenderError{Backend: BackendImage, Op: "render " + plan.Kind.String(), Err: err}
	}
	return &ImageFigure{Img: img}, nil
}

func (b imageBackend) renderImage(plan *Plan) (image.Image, error) {
	if plan.Kind == KindFeatureHeatmap && plan.XMarginal != nil && plan.YMarginal != nil {
		return composeHeatmapGrid(b, plan)
	}
	main, err := b.renderPanel(plan, plan.Config.Width, plan.Config.Height)
	if err != nil {
		return nil, err
	}
	if plan.Gradient != nil && plan.Config.Legend.Show {
		return appendColorScale(main, plan), nil
	}
	return main, nil
}

// renderPanel draws the main plot area at the given pixel size.
func (b imageBackend) renderPanel(plan *Plan, w, h int) (image.Image, error) {
	ch := chart.Chart{
		Title:      plan.Config.Title,
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 14}},
		XAxis:      b.axis(plan.Config.XLabel, plan.XRange, plan.Config.Grid),
		YAxis: chart.YAxis{
			Name:           plan.Config.YLabel,
			Range:          &chart.ContinuousRange{Min: plan.YRange.Min, Max: plan.YRange.Max},
			Ticks:          toChartTicks(NiceTicks(plan.YRange, 6)),
			GridMajorStyle: gridStyle(plan.Config.Grid),
		},
		Series: b.buildSeries(plan),
	}
	if plan.HasLegend() {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return renderChartPNG(ch)
}

func (b imageBackend) axis(name string, r Range, grid bool) chart.XAxis {
	return chart.XAxis{
		Name:           name,
		Range:          &chart.ContinuousRange{Min: r.Min, Max: r.Max},
		Ticks:          toChartTicks(NiceTicks(r, 6)),
		GridMajorStyle: gridStyle(grid),
	}
}

func gridStyle(enabled bool) chart.Style {
	if !enabled {
		return chart.Style{}
	}
	return chart.Style{StrokeColor: chart.ColorAlternateGray.WithAlpha(64), StrokeWidth: 1.0}
}

func (b imageBackend) buildSeries(plan *Plan) []chart.Series {
	var out []chart.Series
	switch plan.Kind {
	case KindLine, KindChromatogram, KindMobilogram:
		for _, s := range plan.Series {
			out = append(out, lineSeries(s))
		}
		out = append(out, featureSeries(plan)...)

	case KindVLine, KindSpectrum:
		out = append(out, baselineSeries(plan.XRange))
		for _, s := range plan.Series {
			out = append(out, stickSeries(s)...)
		}
		for _, s := range plan.MirrorSeries {
			out = append(out, stickSeries(s)...)
		}

	default: // scatter, peak map, feature heatmap
		for _, s := range plan.Series {
			out = append(out, gradientScatterSeries(s.Points, plan.Gradient)...)
		}
	}
	return out
}

// lineSeries draws one annotation group as a continuous path. Points are
// sorted by x so unordered source tables still draw a sane path.
func lineSeries(s Series) chart.Series {
	pts := make([]msdata.Point, len(s.Points))
	copy(pts, s.Points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Intensity
	}
	return chart.ContinuousSeries{
		Name:    s.Name,
		XValues: xs,
		YValues: ys,
		Style:   chart.Style{StrokeWidth: 2, StrokeColor: toDrawing(s.Color)},
	}
}

// stickSeries draws each peak as a vertical segment from the zero baseline.
// Only the first stick carries the series name, so the legend lists the
// group once.
func stickSeries(s Series) []chart.Series {
	out := make([]chart.Series, 0, len(s.Points))
	style := chart.Style{StrokeWidth: 2, StrokeColor: toDrawing(s.Color)}
	for i, p := range s.Points {
		name := ""
		if i == 0 {
			name = s.Name
		}
		out = append(out, chart.ContinuousSeries{
			Name:    name,
			XValues: []float64{p.X, p.X},
			YValues: []float64{0, p.Intensity},
			Style:   style,
		})
	}
	return out
}

func baselineSeries(xr Range) chart.Series {
	return chart.ContinuousSeries{
		XValues: []float64{xr.Min, xr.Max},
		YValues: []float64{0, 0},
		Style:   chart.Style{StrokeWidth: 1, StrokeColor: chart.ColorAlternateGray},
	}
}

// featureSeries draws each peak boundary as a dashed rectangle from the
// baseline to the apex, colored along the feature colormap.
func featureSeries(plan *Plan) []chart.Series {
	if len(plan.Features) == 0 {
		return nil
	}
	grad, err := NewGradient(plan.Config.Features.Colormap, 0, float64(len(plan.Features)))
	if err != nil {
		logx.Warnf("skipping feature boundaries: %v", err)
		return nil
	}
	out := make([]chart.Series, 0, len(plan.Features))
	for i, f := range plan.Features {
		col := toDrawing(grad.At(float64(i)))
		out = append(out, chart.ContinuousSeries{
			Name:    f.Label(i),
			XValues: []float64{f.LeftWidth, f.RightWidth, f.RightWidth, f.LeftWidth, f.LeftWidth},
			YValues: []float64{0, 0, f.ApexIntensity, f.ApexIntensity, 0},
			Style: chart.Style{
				StrokeWidth:     plan.Config.Features.LineWidth,
				StrokeColor:     col,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}
	return out
}

// gradientScatterSeries quantizes the colormap into slices and emits one
// marker series per occupied slice. Input arrives sorted ascending by
// intensity, so later (brighter) series draw over earlier ones.
func gradientScatterSeries(pts []msdata.Point, grad *Gradient) []chart.Series {
	if grad == nil || len(pts) == 0 {
		return nil
	}
	mn, mx := grad.Domain()
	span := mx - mn
	bucket := func(v float64) int {
		if span <= 0 {
			return colormapBuckets - 1
		}
		i := int((v - mn) / span * colormapBuckets)
		if i < 0 {
			i = 0
		}
		if i >= colormapBuckets {
			i = colormapBuckets - 1
		}
		return i
	}
	xs := make([][]float64, colormapBuckets)
	ys := make([][]float64, colormapBuckets)
	for _, p := range pts {
		i := bucket(p.Intensity)
		xs[i] = append(xs[i], p.X)
		ys[i] = append(ys[i], p.Y)
	}
	var out []chart.Series
	for i := 0; i < colormapBuckets; i++ {
		if len(xs[i]) == 0 {
			continue
		}
		mid := mn + (float64(i)+0.5)/colormapBuckets*span
		out = append(out, chart.ContinuousSeries{
			XValues: xs[i],
			YValues: ys[i],
			Style:   pointStyle(toDrawing(grad.At(mid))),
		})
	}
	return out
}

// pointStyle renders markers only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

func toDrawing(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func toChartTicks(ticks []Tick) []chart.Tick {
	out := make([]chart.Tick, len(ticks))
	for i, t := range ticks {
		out[i] = chart.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

func renderChartPNG(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, err
	}
	return img, nil
}
