package plotkit

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/openmsviz/msviz/src/logx"
	"github.com/openmsviz/msviz/src/msdata"
)

// EChartsFigure is the declarative-chart figure: a complete ECharts option
// document ready for setOption.
type EChartsFigure struct {
	Option map[string]interface{}

	width  int
	height int
	title  string
}

func (f *EChartsFigure) Backend() Backend { return BackendECharts }

// MarshalJSON emits the option document.
func (f *EChartsFigure) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Option)
}

// WriteJSON writes the indented option document.
func (f *EChartsFigure) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f.Option)
}

// WriteHTML writes a self-contained page that loads ECharts from a CDN and
// applies the option.
func (f *EChartsFigure) WriteHTML(w io.Writer) error {
	opt, err := json.Marshal(f.Option)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
</head>
<body>
<div id="plot" style="width:%dpx;height:%dpx;"></div>
<script>
echarts.init(document.getElementById('plot')).setOption(%s);
</script>
</body>
</html>
`, f.title, f.width, f.height, opt)
	return err
}

type echartsBackend struct{}

func (b echartsBackend) render(plan *Plan) (Figure, error) {
	opt := map[string]interface{}{}
	if plan.Config.Title != "" {
		opt["title"] = map[string]interface{}{"text": plan.Config.Title}
	}
	b.applyLegend(opt, plan)
	b.applyTooltips(opt, plan)

	if plan.Kind == KindFeatureHeatmap && plan.XMarginal != nil && plan.YMarginal != nil {
		b.composeMarginalGrid(opt, plan)
	} else {
		opt["xAxis"] = b.valueAxis(plan.Config.XLabel, plan.XRange, plan.Config.Grid, false)
		opt["yAxis"] = b.valueAxis(plan.Config.YLabel, plan.YRange, plan.Config.Grid, false)
		opt["series"] = b.buildSeries(plan, 0)
	}

	if plan.Gradient != nil {
		opt["visualMap"] = b.visualMap(plan)
	}

	return &EChartsFigure{
		Option: opt,
		width:  plan.Config.Width,
		height: plan.Config.Height,
		title:  plan.Config.Title,
	}, nil
}

func (b echartsBackend) valueAxis(name string, r Range, grid, inverse bool) map[string]interface{} {
	ax := map[string]interface{}{
		"type":      "value",
		"name":      name,
		"min":       r.Min,
		"max":       r.Max,
		"splitLine": map[string]interface{}{"show": grid},
	}
	if inverse {
		ax["inverse"] = true
	}
	return ax
}

func (b echartsBackend) applyLegend(opt map[string]interface{}, plan *Plan) {
	leg := map[string]interface{}{
		"show":      plan.HasLegend(),
		"textStyle": map[string]interface{}{"fontSize": plan.Config.Legend.FontSize},
	}
	if plan.Config.Legend.Below {
		leg["bottom"] = 0
	} else {
		leg["right"] = 0
		leg["orient"] = "vertical"
	}
	opt["legend"] = leg
}

// applyTooltips switches on per-item hover, rendering the hover text stored
// in each datum's name. Suppressed entirely once binning ran.
func (b echartsBackend) applyTooltips(opt map[string]interface{}, plan *Plan) {
	if !plan.ShowTooltips {
		opt["tooltip"] = map[string]interface{}{"show": false}
		return
	}
	opt["tooltip"] = map[string]interface{}{
		"show":      true,
		"trigger":   "item",
		"formatter": "{b}",
	}
}

func (b echartsBackend) visualMap(plan *Plan) map[string]interface{} {
	mn, mx := plan.Gradient.Domain()
	return map[string]interface{}{
		"type": "continuous",
		"min":  mn,
		"max":  mx,
		// scope the mapping to the heatmap scatter (always series 0);
		// left unset, ECharts recolors the marginal line series too
		"seriesIndex": 0,
		"dimension":   2,
		"show":        plan.Config.Legend.Show,
		"right":       0,
		"top":         "middle",
		"inRange":     map[string]interface{}{"color": plan.Gradient.Stops()},
	}
}

// buildSeries translates the plan's traces for the axis pair at the given
// grid index.
func (b echartsBackend) buildSeries(plan *Plan, axisIndex int) []map[string]interface{} {
	var out []map[string]interface{}
	switch plan.Kind {
	case KindLine, KindChromatogram, KindMobilogram:
		for _, s := range plan.Series {
			out = append(out, b.lineSeries(s, axisIndex))
		}
		out = append(out, b.featureSeries(plan, axisIndex)...)

	case KindVLine, KindSpectrum:
		for _, s := range plan.Series {
			out = append(out, b.stickSeries(s, axisIndex))
		}
		for _, s := range plan.MirrorSeries {
			out = append(out, b.stickSeries(s, axisIndex))
		}
		if plan.ZeroBaseline && len(out) > 0 {
			out[0]["markLine"] = map[string]interface{}{
				"silent": true,
				"symbol": "none",
				"data":   []map[string]interface{}{{"yAxis": 0}},
			}
		}

	default: // scatter, peak map, feature heatmap
		for _, s := range plan.Series {
			out = append(out, b.scatterSeries(s, axisIndex))
		}
	}
	return out
}

func (b echartsBackend) lineSeries(s Series, axisIndex int) map[string]interface{} {
	pts := make([]msdata.Point, len(s.Points))
	copy(pts, s.Points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	data := make([]interface{}, 0, len(pts))
	for _, p := range pts {
		data = append(data, datum([]float64{p.X, p.Intensity}, p.Hover))
	}
	return map[string]interface{}{
		"type":       "line",
		"name":       s.Name,
		"showSymbol": false,
		"color":      hexString(s.Color),
		"lineStyle":  map[string]interface{}{"width": 2},
		"xAxisIndex": axisIndex,
		"yAxisIndex": axisIndex,
		"data":       data,
	}
}

// stickSeries draws one group's peaks as a single line series with null
// separators between sticks, so each peak is an isolated vertical segment.
func (b echartsBackend) stickSeries(s Series, axisIndex int) map[string]interface{} {
	data := make([]interface{}, 0, len(s.Points)*3)
	for _, p := range s.Points {
		data = append(data,
			[]float64{p.X, 0},
			datum([]float64{p.X, p.Intensity}, p.Hover),
			nil,
		)
	}
	return map[string]interface{}{
		"type":       "line",
		"name":       s.Name,
		"showSymbol": false,
		"color":      hexString(s.Color),
		"lineStyle":  map[string]interface{}{"width": 2},
		"xAxisIndex": axisIndex,
		"yAxisIndex": axisIndex,
		"data":       data,
	}
}

func (b echartsBackend) scatterSeries(s Series, axisIndex int) map[string]interface{} {
	data := make([]interface{}, 0, len(s.Points))
	for _, p := range s.Points {
		data = append(data, datum([]float64{p.X, p.Y, p.Intensity}, p.Hover))
	}
	return map[string]interface{}{
		"type":       "scatter",
		"name":       s.Name,
		"symbolSize": 6,
		"xAxisIndex": axisIndex,
		"yAxisIndex": axisIndex,
		"data":       data,
	}
}

func (b echartsBackend) featureSeries(plan *Plan, axisIndex int) []map[string]interface{} {
	if len(plan.Features) == 0 {
		return nil
	}
	grad, err := NewGradient(plan.Config.Features.Colormap, 0, float64(len(plan.Features)))
	if err != nil {
		logx.Warnf("skipping feature boundaries: %v", err)
		return nil
	}
	out := make([]map[string]interface{}, 0, len(plan.Features))
	for i, f := range plan.Features {
		data := []interface{}{
			[]float64{f.LeftWidth, 0},
			[]float64{f.RightWidth, 0},
			[]float64{f.RightWidth, f.ApexIntensity},
			[]float64{f.LeftWidth, f.ApexIntensity},
			[]float64{f.LeftWidth, 0},
		}
		out = append(out, map[string]interface{}{
			"type":       "line",
			"name":       f.Label(i),
			"showSymbol": false,
			"color":      hexString(grad.At(float64(i))),
			"lineStyle": map[string]interface{}{
				"width": plan.Config.Features.LineWidth,
				"type":  "dashed",
			},
			"xAxisIndex": axisIndex,
			"yAxisIndex": axisIndex,
			"data":       data,
		})
	}
	return out
}

// composeMarginalGrid lays out three linked grids: the heatmap bottom-right
// (axis index 0), the x-marginal above it (index 1, shared x range) and the
// y-marginal on the left (index 2, shared y range, intensity axis inverted).
func (b echartsBackend) composeMarginalGrid(opt map[string]interface{}, plan *Plan) {
	opt["grid"] = []map[string]interface{}{
		{"left": "32%", "top": "32%", "right": "12%", "bottom": "10%"},
		{"left": "32%", "top": "6%", "right": "12%", "height": "20%"},
		{"left": "6%", "top": "32%", "width": "20%", "bottom": "10%"},
	}

	grid := plan.Config.Grid
	opt["xAxis"] = []map[string]interface{}{
		withGridIndex(b.valueAxis(plan.Config.XLabel, plan.XRange, grid, false), 0),
		withGridIndex(b.valueAxis("", plan.XRange, grid, false), 1),
		withGridIndex(b.valueAxis(plan.YMarginal.Title, plan.YMarginal.IntensityRange, grid, true), 2),
	}
	opt["yAxis"] = []map[string]interface{}{
		withGridIndex(b.valueAxis(plan.Config.YLabel, plan.YRange, grid, false), 0),
		withGridIndex(b.valueAxis(plan.XMarginal.Title, plan.XMarginal.IntensityRange, grid, false), 1),
		withGridIndex(b.valueAxis("", plan.YRange, grid, false), 2),
	}

	series := b.buildSeries(plan, 0)
	for _, s := range plan.XMarginal.Series {
		series = append(series, b.lineSeries(s, 1))
	}
	for _, s := range plan.YMarginal.Series {
		// left panel: intensity on x, coordinate on y
		data := make([]interface{}, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, []float64{p.Intensity, p.Y})
		}
		series = append(series, map[string]interface{}{
			"type":       "line",
			"name":       s.Name,
			"showSymbol": false,
			"color":      hexString(s.Color),
			"lineStyle":  map[string]interface{}{"width": 2},
			"xAxisIndex": 2,
			"yAxisIndex": 2,
			"data":       data,
		})
	}
	opt["series"] = series
}

func withGridIndex(ax map[string]interface{}, idx int) map[string]interface{} {
	ax["gridIndex"] = idx
	return ax
}

// datum wraps a coordinate with its hover text; ECharts renders the name
// through the "{b}" tooltip formatter.
func datum(value []float64, hover string) interface{} {
	if hover == "" {
		return value
	}
	return map[string]interface{}{
		"value": value,
		"name":  strings.ReplaceAll(hover, "\n", "<br/>"),
	}
}
