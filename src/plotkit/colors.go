package plotkit

import (
	"fmt"
	"image/color"
	"math"
)

// Qualitative palettes cycle per annotation series. The default is Paul
// Tol's bright scheme, which stays distinguishable for color-blind readers.
var qualitativePalettes = map[string][]string{
	"tol": {
		"#4477AA", "#EE6677", "#228833", "#CCBB44", "#66CCEE",
		"#AA3377", "#BBBBBB", "#EE8866", "#44BB99", "#FFAABB",
	},
	"okabe-ito": {
		"#E69F00", "#56B4E9", "#009E73", "#F0E442",
		"#0072B2", "#D55E00", "#CC79A7", "#000000",
	},
}

// Sequential colormaps are anchor stops interpolated linearly; enough for
// marker coloring, where per-point quantization dominates anyway.
var sequentialColormaps = map[string][]string{
	"plasma": {
		"#0D0887", "#7E03A8", "#CC4778", "#F89441", "#F0F921",
	},
	"viridis": {
		"#440154", "#3B528B", "#21918C", "#5EC962", "#FDE725",
	},
	"inferno": {
		"#000004", "#57106E", "#BC3754", "#F98C0A", "#FCFFA4",
	},
}

// ColorGenerator hands out qualitative series colors, cycling when the
// annotation count exceeds the palette length.
type ColorGenerator struct {
	colors []color.RGBA
	next   int
}

// NewColorGenerator builds a generator over a named palette.
func NewColorGenerator(palette string) (*ColorGenerator, error) {
	hexes, ok := qualitativePalettes[palette]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", palette)
	}
	g := &ColorGenerator{colors: make([]color.RGBA, len(hexes))}
	for i, h := range hexes {
		g.colors[i] = mustHexColor(h)
	}
	return g, nil
}

// Next returns the next palette color, wrapping around at the end.
func (g *ColorGenerator) Next() color.RGBA {
	c := g.colors[g.next%len(g.colors)]
	g.next++
	return c
}

// Gradient maps an intensity domain onto a sequential colormap.
type Gradient struct {
	stops    []color.RGBA
	min, max float64
}

// NewGradient builds a gradient over [min, max]. A degenerate domain maps
// everything to the top stop.
func NewGradient(colormap string, min, max float64) (*Gradient, error) {
	hexes, ok := sequentialColormaps[colormap]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q", colormap)
	}
	g := &Gradient{stops: make([]color.RGBA, len(hexes)), min: min, max: max}
	for i, h := range hexes {
		g.stops[i] = mustHexColor(h)
	}
	return g, nil
}

// Stops returns the gradient's anchor colors as hex strings, low to high.
func (g *Gradient) Stops() []string {
	out := make([]string, len(g.stops))
	for i, c := range g.stops {
		out[i] = hexString(c)
	}
	return out
}

// Domain returns the intensity interval the gradient spans.
func (g *Gradient) Domain() (min, max float64) { return g.min, g.max }

// At maps an intensity to its color. Values outside the domain clamp to the
// end stops.
func (g *Gradient) At(v float64) color.RGBA {
	if g.max <= g.min {
		return g.stops[len(g.stops)-1]
	}
	f := (v - g.min) / (g.max - g.min)
	if f <= 0 {
		return g.stops[0]
	}
	if f >= 1 {
		return g.stops[len(g.stops)-1]
	}
	pos := f * float64(len(g.stops)-1)
	i := int(pos)
	t := pos - float64(i)
	a, b := g.stops[i], g.stops[i+1]
	return color.RGBA{
		R: lerpByte(a.R, b.R, t),
		G: lerpByte(a.G, b.G, t),
		B: lerpByte(a.B, b.B, t),
		A: 255,
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func hexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("bad hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("bad hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// mustHexColor is for the package's own literals, which are spot-checked in
// tests.
func mustHexColor(s string) color.RGBA {
	c, err := hexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func hexString(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
