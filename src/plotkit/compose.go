package plotkit

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// colorScaleWidth is the extra strip appended to intensity-mapped plots in
// place of a legend.
const colorScaleWidth = 70

// composeHeatmapGrid arranges the feature heatmap with its two integrated
// marginals into a 2x2 grid: x-marginal on top, y-marginal on the left,
// heatmap bottom-right, top-left cell empty. The heatmap and x-marginal
// share the x viewport; the heatmap and y-marginal share the y viewport.
func composeHeatmapGrid(b imageBackend, plan *Plan) (image.Image, error) {
	totalW, totalH := plan.Config.Width, plan.Config.Height
	sideW := totalW * 3 / 10
	topH := totalH * 3 / 10
	mainW, mainH := totalW-sideW, totalH-topH

	main, err := b.renderPanel(plan, mainW, mainH)
	if err != nil {
		return nil, err
	}
	xm, err := renderXMarginal(plan, mainW, topH)
	if err != nil {
		return nil, err
	}
	ym, err := renderYMarginal(plan, sideW, mainH)
	if err != nil {
		return nil, err
	}

	grid := image.NewRGBA(image.Rect(0, 0, totalW, totalH))
	draw.Draw(grid, grid.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(grid, image.Rect(sideW, 0, totalW, topH), xm, xm.Bounds().Min, draw.Src)
	draw.Draw(grid, image.Rect(0, topH, sideW, totalH), ym, ym.Bounds().Min, draw.Src)
	draw.Draw(grid, image.Rect(sideW, topH, totalW, totalH), main, main.Bounds().Min, draw.Src)

	drawPanelLabel(grid, plan.XMarginal.Title, sideW+8, 12)
	drawPanelLabel(grid, plan.YMarginal.Title, 8, topH+12)
	return grid, nil
}

// renderXMarginal draws the top panel: intensity integrated over y, sharing
// the heatmap's x viewport.
func renderXMarginal(plan *Plan, w, h int) (image.Image, error) {
	m := plan.XMarginal
	series := make([]chart.Series, 0, len(m.Series))
	for _, s := range m.Series {
		series = append(series, lineSeries(s))
	}
	ch := chart.Chart{
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 18, Left: 16, Right: 12, Bottom: 6}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: plan.XRange.Min, Max: plan.XRange.Max},
			Ticks: toChartTicks(NiceTicks(plan.XRange, 6)),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: m.IntensityRange.Min, Max: m.IntensityRange.Max},
			Ticks: toChartTicks(NiceTicks(m.IntensityRange, 3)),
		},
		Series: series,
	}
	return renderChartPNG(ch)
}

// renderYMarginal draws the left panel. The intensity axis grows leftward to
// mirror the grid orientation; go-chart has no descending axis, so values
// are negated and the tick labels keep the positive magnitudes.
func renderYMarginal(plan *Plan, w, h int) (image.Image, error) {
	m := plan.YMarginal
	series := make([]chart.Series, 0, len(m.Series))
	for _, s := range m.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i] = -p.Intensity
			ys[i] = p.Y
		}
		series = append(series, chart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeWidth: 2, StrokeColor: toDrawing(s.Color)},
		})
	}
	xr := Range{Min: -m.IntensityRange.Max, Max: -m.IntensityRange.Min}
	ticks := negatedTickLabels(xr, 3, decimalsForRange(m.IntensityRange))
	ch := chart.Chart{
		Width:      w,
		Height:     h,
		Background: chart.Style{Padding: chart.Box{Top: 18, Left: 8, Right: 4, Bottom: 14}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: xr.Min, Max: xr.Max},
			Ticks: toChartTicks(ticks),
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: plan.YRange.Min, Max: plan.YRange.Max},
			Ticks: toChartTicks(NiceTicks(plan.YRange, 6)),
		},
		Series: series,
	}
	return renderChartPNG(ch)
}

// negatedTickLabels relabels a sign-flipped axis's ticks with their positive
// magnitudes.
func negatedTickLabels(r Range, n, dec int) []Tick {
	ticks := NiceTicks(r, n)
	for i := range ticks {
		v := -ticks[i].Value
		if ticks[i].Value == 0 {
			v = 0 // negating the zero tick would label it "-0"
		}
		ticks[i].Label = formatTickValue(v, dec)
	}
	return ticks
}

func decimalsForRange(r Range) int {
	span := r.Span()
	if span <= 0 {
		return 0
	}
	return decimalsFor(span / 4)
}

// appendColorScale widens the image and paints a vertical gradient strip
// with the domain bounds labeled, standing in for a marker legend.
func appendColorScale(main image.Image, plan *Plan) image.Image {
	b := main.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()+colorScaleWidth, b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, b, main, b.Min, draw.Src)

	stripX := b.Dx() + 18
	stripW := 16
	top, bottom := 30, b.Dy()-30
	mn, mx := plan.Gradient.Domain()
	for y := top; y < bottom; y++ {
		f := float64(bottom-y) / float64(bottom-top)
		c := plan.Gradient.At(mn + f*(mx-mn))
		for x := stripX; x < stripX+stripW; x++ {
			out.SetRGBA(x, y, c)
		}
	}
	drawPanelLabel(out, formatTickValue(mx, 0), stripX, top-6)
	drawPanelLabel(out, formatTickValue(mn, 0), stripX, bottom+14)
	return out
}

// drawPanelLabel paints small annotation text straight onto the raster.
func drawPanelLabel(dst *image.RGBA, text string, x, y int) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
