package plotkit

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero bins", func(c *Config) { c.NumXBins = 0 }},
		{"unknown palette", func(c *Config) { c.Palette = "rainbow" }},
		{"unknown colormap", func(c *Config) { c.Colormap = "jet" }},
		{"unknown feature colormap", func(c *Config) { c.Features.Colormap = "jet" }},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}
