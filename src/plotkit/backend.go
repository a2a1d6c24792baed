// Package plotkit renders mass-spectrometry observation tables (peak maps,
// chromatograms, mobilograms, spectra, feature heatmaps) through three
// interchangeable backends: a static raster renderer built on go-chart, an
// interactive Fyne canvas with crosshair and tooltips, and a declarative
// ECharts option document.
//
// All data shaping and every cross-backend semantic (axis ranges, legend
// visibility, color-scale domain, tooltip suppression after binning, mirror
// negation) is resolved once into a Plan; the backends only translate the
// plan into their native figure objects.
package plotkit

import (
	"errors"
	"fmt"
	"strings"
)

// Backend selects the rendering engine. The set is closed: dispatch is an
// exhaustive switch over these constants, not a runtime string lookup.
type Backend int

const (
	BackendImage Backend = iota
	BackendInteractive
	BackendECharts
)

// ParseBackend resolves a backend name from configuration input.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "png", "":
		return BackendImage, nil
	case "interactive", "fyne":
		return BackendInteractive, nil
	case "echarts", "html":
		return BackendECharts, nil
	}
	return BackendImage, fmt.Errorf("unsupported backend %q (want image, interactive or echarts)", s)
}

func (b Backend) String() string {
	switch b {
	case BackendInteractive:
		return "interactive"
	case BackendECharts:
		return "echarts"
	default:
		return "image"
	}
}

// Kind identifies what the plot draws.
type Kind int

const (
	KindLine Kind = iota
	KindVLine
	KindScatter
	KindChromatogram
	KindMobilogram
	KindSpectrum
	KindPeakMap
	KindFeatureHeatmap
)

var kindNames = map[Kind]string{
	KindLine:           "line",
	KindVLine:          "vline",
	KindScatter:        "scatter",
	KindChromatogram:   "chromatogram",
	KindMobilogram:     "mobilogram",
	KindSpectrum:       "spectrum",
	KindPeakMap:        "peakmap",
	KindFeatureHeatmap: "featureheatmap",
}

// ParseKind resolves a plot kind name.
func ParseKind(s string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == n {
			return k, nil
		}
	}
	return KindLine, fmt.Errorf("unsupported plot kind %q", s)
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// twoDimensional reports whether the kind plots two spatial dimensions with
// intensity as color; only those kinds are ever binned.
func (k Kind) twoDimensional() bool {
	return k == KindPeakMap || k == KindFeatureHeatmap || k == KindScatter
}

// ErrEmptyTable is returned when a plot is requested over zero observations.
var ErrEmptyTable = errors.New("observation table is empty")

// RenderError wraps a backend failure with enough context to name the
// failing engine and operation.
type RenderError struct {
	Backend Backend
	Op      string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Figure is a backend-native figure handle. Concrete types expose the
// native object (image.Image, fyne.CanvasObject, ECharts option document)
// plus writers; the caller owns the figure exclusively.
type Figure interface {
	Backend() Backend
}

// Plot resolves the request into a render plan and dispatches to the
// configured backend. No partial figure is ever returned on error.
func Plot(req Request) (Figure, error) {
	plan, err := Resolve(req)
	if err != nil {
		return nil, err
	}
	switch req.Config.Backend {
	case BackendImage:
		return imageBackend{}.render(plan)
	case BackendInteractive:
		return interactiveBackend{}.render(plan)
	case BackendECharts:
		return echartsBackend{}.render(plan)
	}
	return nil, fmt.Errorf("unsupported backend %d", int(req.Config.Backend))
}
