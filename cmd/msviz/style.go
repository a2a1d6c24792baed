package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openmsviz/msviz/src/msdata"
	"github.com/openmsviz/msviz/src/plotkit"
)

// styleFile is the optional YAML style sheet merged under command-line
// flags: a flag given explicitly always wins over the file. Pointer fields
// distinguish "absent" from zero values.
type styleFile struct {
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
	Title  *string `yaml:"title"`
	XLabel *string `yaml:"xlabel"`
	YLabel *string `yaml:"ylabel"`
	Grid   *bool   `yaml:"grid"`

	Legend *struct {
		Show     *bool   `yaml:"show"`
		Title    *string `yaml:"title"`
		FontSize *int    `yaml:"fontsize"`
		Below    *bool   `yaml:"below"`
	} `yaml:"legend"`

	RelativeIntensity *bool   `yaml:"relative_intensity"`
	BinPeaks          *string `yaml:"bin_peaks"`
	NumXBins          *int    `yaml:"num_x_bins"`
	NumYBins          *int    `yaml:"num_y_bins"`

	Palette  *string `yaml:"palette"`
	Colormap *string `yaml:"colormap"`

	Features *struct {
		Colormap  *string  `yaml:"colormap"`
		LineWidth *float64 `yaml:"line_width"`
	} `yaml:"features"`
}

func loadStyle(path string) (*styleFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}
	var s styleFile
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse style file %s: %w", path, err)
	}
	return &s, nil
}

// apply copies the set fields onto the config. Called before flag overrides
// are layered on top.
func (s *styleFile) apply(cfg *plotkit.Config) error {
	if s.Width != nil {
		cfg.Width = *s.Width
	}
	if s.Height != nil {
		cfg.Height = *s.Height
	}
	if s.Title != nil {
		cfg.Title = *s.Title
	}
	if s.XLabel != nil {
		cfg.XLabel = *s.XLabel
	}
	if s.YLabel != nil {
		cfg.YLabel = *s.YLabel
	}
	if s.Grid != nil {
		cfg.Grid = *s.Grid
	}
	if s.Legend != nil {
		if s.Legend.Show != nil {
			cfg.Legend.Show = *s.Legend.Show
		}
		if s.Legend.Title != nil {
			cfg.Legend.Title = *s.Legend.Title
		}
		if s.Legend.FontSize != nil {
			cfg.Legend.FontSize = *s.Legend.FontSize
		}
		if s.Legend.Below != nil {
			cfg.Legend.Below = *s.Legend.Below
		}
	}
	if s.RelativeIntensity != nil {
		cfg.RelativeIntensity = *s.RelativeIntensity
	}
	if s.BinPeaks != nil {
		mode, err := msdata.ParseBinMode(*s.BinPeaks)
		if err != nil {
			return err
		}
		cfg.BinPeaks = mode
	}
	if s.NumXBins != nil {
		cfg.NumXBins = *s.NumXBins
	}
	if s.NumYBins != nil {
		cfg.NumYBins = *s.NumYBins
	}
	if s.Palette != nil {
		cfg.Palette = *s.Palette
	}
	if s.Colormap != nil {
		cfg.Colormap = *s.Colormap
	}
	if s.Features != nil {
		if s.Features.Colormap != nil {
			cfg.Features.Colormap = *s.Features.Colormap
		}
		if s.Features.LineWidth != nil {
			cfg.Features.LineWidth = *s.Features.LineWidth
		}
	}
	return nil
}
