// Package config loads the YAML configuration of the saycheese command.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Camera sources.
const (
	SourceCamera = "camera" // first camera found, V4L2 on linux
	SourceScreen = "screen" // primary display
	SourceFake   = "fake"   // synthetic colour bars
)

// Snapshot file formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// CameraConfig selects the device and the resolution asked for.
type CameraConfig struct {
	Source    string  `yaml:"source"`     // camera, screen or fake
	DeviceID  string  `yaml:"device_id"`  // optional, exact device to use
	Width     int     `yaml:"width"`      // ideal width, 0 = any
	Height    int     `yaml:"height"`     // ideal height, 0 = any
	FrameRate float32 `yaml:"frame_rate"` // ideal frame rate, 0 = any
}

// PreviewConfig sizes the live preview.
type PreviewConfig struct {
	Width int `yaml:"width"` // preview width in pixels (default: 320)
}

// SnapshotConfig describes the snapshots taken once the camera is ready.
type SnapshotConfig struct {
	Count       int    `yaml:"count"`        // number of snapshots (default: 1)
	IntervalMs  int    `yaml:"interval_ms"`  // delay between snapshots (default: 500)
	OutputDir   string `yaml:"output_dir"`   // where files are written (default: ".")
	Format      string `yaml:"format"`       // png or jpeg (default: png)
	JPEGQuality int    `yaml:"jpeg_quality"` // 1-100 (default: 90)
}

// PageConfig describes the host page.
type PageConfig struct {
	Template string `yaml:"template"` // optional HTML file, a blank page otherwise
	Selector string `yaml:"selector"` // container selector (default: "#camera")
	Output   string `yaml:"output"`   // optional, rendered page written there
}

// Config aggregates the command configuration.
type Config struct {
	Camera         CameraConfig   `yaml:"camera"`
	Preview        PreviewConfig  `yaml:"preview"`
	Snapshots      SnapshotConfig `yaml:"snapshots"`
	Page           PageConfig     `yaml:"page"`
	StartTimeoutMs int            `yaml:"start_timeout_ms"` // give up waiting for the camera (default: 10000)
}

// Default returns the configuration used without a config file.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a YAML file and returns the validated configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Relative paths are relative to the config file.
	dir := filepath.Dir(path)
	if cfg.Page.Template != "" && !filepath.IsAbs(cfg.Page.Template) {
		cfg.Page.Template = filepath.Join(dir, cfg.Page.Template)
	}
	return &cfg, nil
}

// Validate fills defaults and rejects impossible values.
func (cfg *Config) Validate() error {
	switch cfg.Camera.Source {
	case "":
		cfg.Camera.Source = SourceCamera
	case SourceCamera, SourceScreen, SourceFake:
	default:
		return fmt.Errorf("camera.source must be one of %s, %s or %s, got %q", SourceCamera, SourceScreen, SourceFake, cfg.Camera.Source)
	}
	if cfg.Camera.Width < 0 || cfg.Camera.Height < 0 {
		return fmt.Errorf("camera.width and camera.height must be >= 0")
	}
	if cfg.Camera.FrameRate < 0 {
		return fmt.Errorf("camera.frame_rate must be >= 0, got %.2f", cfg.Camera.FrameRate)
	}

	if cfg.Preview.Width < 0 {
		return fmt.Errorf("preview.width must be > 0, got %d", cfg.Preview.Width)
	}
	if cfg.Preview.Width == 0 {
		cfg.Preview.Width = 320
	}

	if cfg.Snapshots.Count < 0 {
		return fmt.Errorf("snapshots.count must be >= 0, got %d", cfg.Snapshots.Count)
	}
	if cfg.Snapshots.Count == 0 {
		cfg.Snapshots.Count = 1
	}
	if cfg.Snapshots.IntervalMs <= 0 {
		cfg.Snapshots.IntervalMs = 500
	}
	if cfg.Snapshots.OutputDir == "" {
		cfg.Snapshots.OutputDir = "."
	}
	switch cfg.Snapshots.Format {
	case "":
		cfg.Snapshots.Format = FormatPNG
	case FormatPNG, FormatJPEG:
	default:
		return fmt.Errorf("snapshots.format must be %s or %s, got %q", FormatPNG, FormatJPEG, cfg.Snapshots.Format)
	}
	if cfg.Snapshots.JPEGQuality == 0 {
		cfg.Snapshots.JPEGQuality = 90
	}
	if cfg.Snapshots.JPEGQuality < 1 || cfg.Snapshots.JPEGQuality > 100 {
		return fmt.Errorf("snapshots.jpeg_quality must be between 1 and 100, got %d", cfg.Snapshots.JPEGQuality)
	}

	if cfg.Page.Selector == "" {
		cfg.Page.Selector = "#camera"
	}
	if cfg.StartTimeoutMs <= 0 {
		cfg.StartTimeoutMs = 10000
	}
	return nil
}
