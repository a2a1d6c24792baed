package plotkit

import (
	"fmt"

	"github.com/openmsviz/msviz/src/msdata"
)

// LegendConfig controls the legend element on all backends.
type LegendConfig struct {
	Show     bool
	Title    string
	FontSize int
	// Below moves the legend from the right side to below the plot.
	Below bool
}

// FeatureConfig controls how detected peak boundaries are overlaid on
// chromatogram and mobilogram plots.
type FeatureConfig struct {
	// Colormap names the sequential colormap used for boundary colors.
	Colormap  string
	LineWidth float64
}

// Config carries every knob shared by the three backends. Zero value is not
// usable; start from DefaultConfig.
type Config struct {
	Backend Backend

	Width  int
	Height int

	Title  string
	XLabel string
	YLabel string
	Grid   bool

	Legend LegendConfig

	// RelativeIntensity rescales intensity to percent of maximum before
	// anything else looks at the values.
	RelativeIntensity bool

	// BinPeaks together with NumXBins/NumYBins controls density reduction
	// on two-dimensional kinds.
	BinPeaks msdata.BinMode
	NumXBins int
	NumYBins int

	// MirrorSpectrum draws the reference spectrum downward from a shared
	// zero baseline.
	MirrorSpectrum bool

	// AddMarginals composes integrated side panels around a feature heatmap.
	AddMarginals bool

	// Palette is the qualitative cycle for annotation series; Colormap is
	// the sequential gradient for intensity color scales.
	Palette  string
	Colormap string

	Features FeatureConfig
}

// DefaultConfig returns the defaults every plot starts from.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendImage,
		Width:    750,
		Height:   500,
		Grid:     true,
		Legend:   LegendConfig{Show: true, FontSize: 10},
		BinPeaks: msdata.BinAuto,
		NumXBins: 50,
		NumYBins: 50,
		Palette:  "tol",
		Colormap: "plasma",
		Features: FeatureConfig{Colormap: "viridis", LineWidth: 2},
	}
}

// Validate rejects configurations no backend could honor.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("plot dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.NumXBins < 1 || c.NumYBins < 1 {
		return fmt.Errorf("bin counts must be at least 1, got %dx%d", c.NumXBins, c.NumYBins)
	}
	if _, ok := qualitativePalettes[c.Palette]; !ok {
		return fmt.Errorf("unknown palette %q", c.Palette)
	}
	if _, ok := sequentialColormaps[c.Colormap]; !ok {
		return fmt.Errorf("unknown colormap %q", c.Colormap)
	}
	if _, ok := sequentialColormaps[c.Features.Colormap]; !ok {
		return fmt.Errorf("unknown feature colormap %q", c.Features.Colormap)
	}
	return nil
}
