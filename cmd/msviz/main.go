// msviz renders mass-spectrometry observation tables (CSV or XLSX) as
// chromatograms, mobilograms, spectra, peak maps and feature heatmaps,
// through a static PNG renderer, an interactive window or an ECharts
// document.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openmsviz/msviz/src/logx"
	"github.com/openmsviz/msviz/src/msdata"
	"github.com/openmsviz/msviz/src/plotkit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.Errorf("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "msviz",
		Short:         "Render mass-spectrometry data as plots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.SetLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.AddCommand(newRenderCmd(), newViewCmd())
	return root
}

// plotOptions collects every flag shared by render and view.
type plotOptions struct {
	input     string
	sheet     string
	kind      string
	reference string
	features  string
	style     string

	layout msdata.ColumnLayout

	width, height     int
	title             string
	xlabel, ylabel    string
	grid              bool
	legend            bool
	legendTitle       string
	legendSize        int
	legendBelow       bool
	relative          bool
	binMode           string
	xBins, yBins      int
	mirror            bool
	marginals         bool
	palette, colormap string
	featureColormap   string
	featureLineWidth  float64
}

func (o *plotOptions) register(cmd *cobra.Command) {
	def := plotkit.DefaultConfig()
	lay := msdata.DefaultLayout()

	cmd.Flags().StringVarP(&o.input, "input", "i", "", "input table (.csv, .xlsx)")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "workbook sheet name (xlsx only, default first sheet)")
	cmd.Flags().StringVarP(&o.kind, "kind", "k", "chromatogram", "plot kind: line, vline, scatter, chromatogram, mobilogram, spectrum, peakmap or featureheatmap")
	cmd.Flags().StringVar(&o.reference, "reference", "", "reference spectrum table for --mirror")
	cmd.Flags().StringVar(&o.features, "features", "", "feature boundary table (csv)")
	cmd.Flags().StringVar(&o.style, "style", "", "YAML style sheet; explicit flags override it")

	cmd.Flags().StringVar(&o.layout.X, "x-col", lay.X, "x coordinate column")
	cmd.Flags().StringVar(&o.layout.Y, "y-col", lay.Y, "y coordinate column (2D kinds)")
	cmd.Flags().StringVar(&o.layout.Intensity, "intensity-col", lay.Intensity, "intensity column")
	cmd.Flags().StringVar(&o.layout.Annotation, "annotation-col", lay.Annotation, "annotation/group column")
	cmd.Flags().StringVar(&o.layout.MZ, "mz-col", lay.MZ, "auxiliary m/z tooltip column")
	cmd.Flags().StringVar(&o.layout.ProductMZ, "product-mz-col", lay.ProductMZ, "auxiliary product m/z tooltip column")

	cmd.Flags().IntVar(&o.width, "width", def.Width, "plot width in pixels")
	cmd.Flags().IntVar(&o.height, "height", def.Height, "plot height in pixels")
	cmd.Flags().StringVar(&o.title, "title", "", "plot title")
	cmd.Flags().StringVar(&o.xlabel, "xlabel", "", "x axis label (default per kind)")
	cmd.Flags().StringVar(&o.ylabel, "ylabel", "", "y axis label (default per kind)")
	cmd.Flags().BoolVar(&o.grid, "grid", def.Grid, "draw grid lines")
	cmd.Flags().BoolVar(&o.legend, "legend", def.Legend.Show, "show the legend")
	cmd.Flags().StringVar(&o.legendTitle, "legend-title", "", "legend title")
	cmd.Flags().IntVar(&o.legendSize, "legend-fontsize", def.Legend.FontSize, "legend font size")
	cmd.Flags().BoolVar(&o.legendBelow, "legend-below", false, "place the legend below the plot")
	cmd.Flags().BoolVar(&o.relative, "relative", false, "rescale intensity to percent of maximum")
	cmd.Flags().StringVar(&o.binMode, "bin", "auto", "peak binning: auto, on or off")
	cmd.Flags().IntVar(&o.xBins, "x-bins", def.NumXBins, "bin count along x")
	cmd.Flags().IntVar(&o.yBins, "y-bins", def.NumYBins, "bin count along y")
	cmd.Flags().BoolVar(&o.mirror, "mirror", false, "mirror the --reference spectrum below the baseline")
	cmd.Flags().BoolVar(&o.marginals, "marginals", false, "add integrated marginal panels (featureheatmap)")
	cmd.Flags().StringVar(&o.palette, "palette", def.Palette, "qualitative palette: tol or okabe-ito")
	cmd.Flags().StringVar(&o.colormap, "colormap", def.Colormap, "intensity colormap: plasma, viridis or inferno")
	cmd.Flags().StringVar(&o.featureColormap, "feature-colormap", def.Features.Colormap, "feature boundary colormap")
	cmd.Flags().Float64Var(&o.featureLineWidth, "feature-linewidth", def.Features.LineWidth, "feature boundary line width")

	cobra.CheckErr(cmd.MarkFlagRequired("input"))
}

// config layers defaults, then the style file, then explicitly set flags.
func (o *plotOptions) config(cmd *cobra.Command) (plotkit.Config, error) {
	cfg := plotkit.DefaultConfig()
	if o.style != "" {
		s, err := loadStyle(o.style)
		if err != nil {
			return cfg, err
		}
		if err := s.apply(&cfg); err != nil {
			return cfg, err
		}
	}

	set := cmd.Flags().Changed
	if set("width") {
		cfg.Width = o.width
	}
	if set("height") {
		cfg.Height = o.height
	}
	if set("title") {
		cfg.Title = o.title
	}
	if set("xlabel") {
		cfg.XLabel = o.xlabel
	}
	if set("ylabel") {
		cfg.YLabel = o.ylabel
	}
	if set("grid") {
		cfg.Grid = o.grid
	}
	if set("legend") {
		cfg.Legend.Show = o.legend
	}
	if set("legend-title") {
		cfg.Legend.Title = o.legendTitle
	}
	if set("legend-fontsize") {
		cfg.Legend.FontSize = o.legendSize
	}
	if set("legend-below") {
		cfg.Legend.Below = o.legendBelow
	}
	if set("relative") {
		cfg.RelativeIntensity = o.relative
	}
	if set("bin") {
		mode, err := msdata.ParseBinMode(o.binMode)
		if err != nil {
			return cfg, err
		}
		cfg.BinPeaks = mode
	}
	if set("x-bins") {
		cfg.NumXBins = o.xBins
	}
	if set("y-bins") {
		cfg.NumYBins = o.yBins
	}
	if set("mirror") {
		cfg.MirrorSpectrum = o.mirror
	}
	if set("marginals") {
		cfg.AddMarginals = o.marginals
	}
	if set("palette") {
		cfg.Palette = o.palette
	}
	if set("colormap") {
		cfg.Colormap = o.colormap
	}
	if set("feature-colormap") {
		cfg.Features.Colormap = o.featureColormap
	}
	if set("feature-linewidth") {
		cfg.Features.LineWidth = o.featureLineWidth
	}
	return cfg, nil
}

// request loads the tables and assembles the plot request.
func (o *plotOptions) request(cmd *cobra.Command) (plotkit.Request, error) {
	var req plotkit.Request

	cfg, err := o.config(cmd)
	if err != nil {
		return req, err
	}
	kind, err := plotkit.ParseKind(o.kind)
	if err != nil {
		return req, err
	}

	data, err := loadTable(o.input, o.sheet, o.layout)
	if err != nil {
		return req, err
	}
	logx.Debugf("loaded %d observations from %s", data.Len(), o.input)

	req = plotkit.Request{Kind: kind, Data: data, Config: cfg}

	if o.reference != "" {
		ref, err := loadTable(o.reference, o.sheet, o.layout)
		if err != nil {
			return req, fmt.Errorf("reference: %w", err)
		}
		req.Reference = ref
	}
	if cfg.MirrorSpectrum && req.Reference == nil {
		return req, fmt.Errorf("--mirror needs --reference")
	}
	if o.features != "" {
		f, err := os.Open(o.features)
		if err != nil {
			return req, fmt.Errorf("open features: %w", err)
		}
		defer f.Close()
		feats, err := msdata.ReadFeaturesCSV(f)
		if err != nil {
			return req, err
		}
		req.Features = feats
		logx.Debugf("loaded %d features from %s", len(feats), o.features)
	}
	return req, nil
}

func loadTable(path, sheet string, layout msdata.ColumnLayout) (*msdata.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return msdata.ReadXLSX(path, sheet, layout)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open table: %w", err)
		}
		defer f.Close()
		return msdata.ReadCSV(f, layout)
	}
}

func newRenderCmd() *cobra.Command {
	var opts plotOptions
	var output, backend string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a plot to a PNG, HTML or ECharts JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			req.Config.Backend, err = outputBackend(backend, output)
			if err != nil {
				return err
			}
			fig, err := plotkit.Plot(req)
			if err != nil {
				return err
			}
			if err := writeFigure(fig, output); err != nil {
				return err
			}
			logx.Infof("rendered %s plot (%d points) to %s", req.Kind, req.Data.Len(), output)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "plot.png", "output file (.png, .html or .json)")
	cmd.Flags().StringVar(&backend, "backend", "", "backend override: image or echarts (default inferred from the output extension)")
	return cmd
}

func newViewCmd() *cobra.Command {
	var opts plotOptions
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a plot in an interactive window",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			req.Config.Backend = plotkit.BackendInteractive
			fig, err := plotkit.Plot(req)
			if err != nil {
				return err
			}
			title := req.Config.Title
			if title == "" {
				title = fmt.Sprintf("msviz — %s", req.Kind)
			}
			return fig.(*plotkit.InteractiveFigure).ShowWindow(title)
		},
	}
	opts.register(cmd)
	return cmd
}

// outputBackend resolves the render backend, inferring it from the output
// extension unless overridden.
func outputBackend(override, output string) (plotkit.Backend, error) {
	if override != "" {
		b, err := plotkit.ParseBackend(override)
		if err != nil {
			return b, err
		}
		if b == plotkit.BackendInteractive {
			return b, fmt.Errorf("the interactive backend cannot render to a file; use \"msviz view\"")
		}
		return b, nil
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".png", "":
		return plotkit.BackendImage, nil
	case ".html", ".json":
		return plotkit.BackendECharts, nil
	default:
		return plotkit.BackendImage, fmt.Errorf("cannot infer backend from output %q; pass --backend", output)
	}
}

func writeFigure(fig plotkit.Figure, output string) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	switch v := fig.(type) {
	case *plotkit.ImageFigure:
		return v.WritePNG(f)
	case *plotkit.EChartsFigure:
		if strings.EqualFold(filepath.Ext(output), ".json") {
			return v.WriteJSON(f)
		}
		return v.WriteHTML(f)
	default:
		return fmt.Errorf("backend produced an unwritable figure %T", fig)
	}
}
