// Package config loads the inkframe configuration file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"inkframe/internal/logging"
	"inkframe/pkg/api"
	"inkframe/pkg/compositor"
	"inkframe/pkg/export"
	"inkframe/pkg/graphics"
	"inkframe/pkg/ink"
	"inkframe/pkg/viewport"
)

const (
	appDir   = "inkframe"
	fileName = "config.toml"
)

// Config is the whole configuration file.
type Config struct {
	Viewport Viewport `toml:"viewport"`
	Text     Text     `toml:"text"`
	Ink      Ink      `toml:"ink"`
	Render   Render   `toml:"render"`
	Export   Export   `toml:"export"`
	Log      Log      `toml:"log"`
}

// Viewport is the screen the editor lays the canvas out on.
type Viewport struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	InsetTop    float64 `toml:"inset_top"`
	InsetLeft   float64 `toml:"inset_left"`
	InsetBottom float64 `toml:"inset_bottom"`
	InsetRight  float64 `toml:"inset_right"`
	TopPanel    float64 `toml:"top_panel"`
	BottomPanel float64 `toml:"bottom_panel"`
}

// Text holds defaults for new text elements.
type Text struct {
	Color    string  `toml:"color"`
	FontSize float64 `toml:"font_size"`
}

// Ink holds the initial drawing tool.
type Ink struct {
	Tool  string  `toml:"tool"`
	Color string  `toml:"color"`
	Width float64 `toml:"width"` // 0 uses the tool default
}

// Render controls flattening.
type Render struct {
	PixelScale    float64 `toml:"pixel_scale"`
	Interpolation string  `toml:"interpolation"`
	Background    string  `toml:"background"`
}

// Export controls where and how saved images are written.
type Export struct {
	Dir         string `toml:"dir"` // empty uses ~/Pictures/inkframe
	Format      string `toml:"format"`
	Quality     int    `toml:"quality"`
	Compression int    `toml:"compression"`
}

// Log sets the log level.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	eo := export.DefaultOptions()
	return &Config{
		Viewport: Viewport{
			Width:       api.DefaultScreen.Width,
			Height:      api.DefaultScreen.Height,
			TopPanel:    viewport.DefaultTopPanel,
			BottomPanel: viewport.DefaultBottomPanel,
		},
		Text: Text{
			Color:    "#000000",
			FontSize: 24,
		},
		Ink: Ink{
			Tool:  "pen",
			Color: "#000000",
		},
		Render: Render{
			PixelScale:    1,
			Interpolation: "bilinear",
			Background:    "#ffffff",
		},
		Export: Export{
			Format:      eo.Format,
			Quality:     eo.Quality,
			Compression: eo.Compression,
		},
		Log: Log{Level: "warn"},
	}
}

// DefaultPath returns <user config dir>/inkframe/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().Debug("no config file, using defaults", "path", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}

// Validate checks sizes and enum values.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Viewport.Width > 0) || !(c.Viewport.Height > 0) {
		errs = append(errs, fmt.Errorf("viewport size %vx%v must be positive", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Viewport.TopPanel < 0 || c.Viewport.BottomPanel < 0 {
		errs = append(errs, errors.New("panel heights must not be negative"))
	}
	if !(c.Text.FontSize > 0) {
		errs = append(errs, fmt.Errorf("text font_size %v must be positive", c.Text.FontSize))
	}
	if c.Ink.Width < 0 {
		errs = append(errs, fmt.Errorf("ink width %v must not be negative", c.Ink.Width))
	}
	if !(c.Render.PixelScale > 0) {
		errs = append(errs, fmt.Errorf("render pixel_scale %v must be positive", c.Render.PixelScale))
	}
	if _, err := compositor.Interpolator(c.Render.Interpolation); err != nil {
		errs = append(errs, err)
	}
	if _, err := ink.ParseTool(c.Ink.Tool); err != nil {
		errs = append(errs, err)
	}
	for name, hex := range map[string]string{
		"text color":        c.Text.Color,
		"ink color":         c.Ink.Color,
		"render background": c.Render.Background,
	} {
		if _, err := graphics.ParseHexColor(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if _, err := c.ExportOptions().Normalize(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Layout returns the viewport layout.
func (c *Config) Layout() viewport.Layout {
	v := c.Viewport
	return viewport.Layout{
		Screen: graphics.Sz(v.Width, v.Height),
		Insets: viewport.Insets{
			Top:    v.InsetTop,
			Left:   v.InsetLeft,
			Bottom: v.InsetBottom,
			Right:  v.InsetRight,
		},
		TopPanel:    v.TopPanel,
		BottomPanel: v.BottomPanel,
	}
}

// ExportOptions returns the encoder settings.
func (c *Config) ExportOptions() export.Options {
	return export.Options{
		Format:      c.Export.Format,
		Quality:     c.Export.Quality,
		Compression: c.Export.Compression,
	}
}

// ExportDir returns the save directory, resolving the empty default.
func (c *Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures", appDir)
}

// SessionOptions converts the configuration into session options. Call
// Validate first; invalid values fall back to the defaults.
func (c *Config) SessionOptions() []api.Option {
	textColor := parseColor(c.Text.Color, color.NRGBA{0, 0, 0, 255})
	inkColor := parseColor(c.Ink.Color, color.NRGBA{0, 0, 0, 255})
	background := parseColor(c.Render.Background, color.NRGBA{255, 255, 255, 255})
	tool, _ := ink.ParseTool(c.Ink.Tool)

	return []api.Option{
		api.WithLayout(c.Layout()),
		api.WithPixelScale(c.Render.PixelScale),
		api.WithInterpolation(c.Render.Interpolation),
		api.WithBackground(background),
		api.WithTextDefaults(textColor, c.Text.FontSize),
		api.WithInk(tool, inkColor, c.Ink.Width),
		api.WithSink(export.NewFileSink(c.ExportDir(), c.ExportOptions())),
	}
}

func parseColor(hex string, fallback color.NRGBA) color.NRGBA {
	c, err := graphics.ParseHexColor(hex)
	if err != nil {
		return fallback
	}
	return c
}
