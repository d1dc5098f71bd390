// package config reads the viewer settings from a TOML file. Every field has a default, so a file only needs
// the values it changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the root of the settings file.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Asset   AssetConfig   `toml:"asset"`
	Camera  CameraConfig  `toml:"camera"`
	Render  RenderConfig  `toml:"render"`
	Loader  LoaderConfig  `toml:"loader"`
	Logging LoggingConfig `toml:"logging"`
}

// WindowConfig sizes the window and its swap behavior.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
	// FrameLimit caps the frame rate; 0 leaves it uncapped.
	FrameLimit float64 `toml:"frame_limit"`
}

// AssetConfig names the glTF or GLB file to show.
type AssetConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// CameraConfig places the orbit camera. Angles are in degrees.
type CameraConfig struct {
	Fov       float32    `toml:"fov"`
	Near      float32    `toml:"near"`
	Far       float32    `toml:"far"`
	Radius    float32    `toml:"radius"`
	Azimuth   float32    `toml:"azimuth"`
	Elevation float32    `toml:"elevation"`
	Target    [3]float32 `toml:"target"`
}

// RenderConfig controls the frame state and the instance arena.
type RenderConfig struct {
	// Growth is "exact" or "geometric".
	Growth     string     `toml:"growth"`
	ClearColor [4]float32 `toml:"clear_color"`
	// SpinRate rotates every asset about Y, in radians per second.
	SpinRate  float32 `toml:"spin_rate"`
	CullFace  bool    `toml:"cull_face"`
	Profiling bool    `toml:"profiling"`
}

// LoaderConfig sizes the image decode pool.
type LoaderConfig struct {
	Workers int `toml:"workers"`
}

// LoggingConfig selects the log level by name.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the settings used when no file is given.
//
// Returns:
//   - Config: the default settings
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "oxy-gl",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Asset: AssetConfig{
			Watch: true,
		},
		Camera: CameraConfig{
			Fov:       74,
			Near:      0.3,
			Far:       100,
			Radius:    3,
			Elevation: 15,
		},
		Render: RenderConfig{
			Growth:     "exact",
			ClearColor: [4]float32{0, 0, 0, 1},
			SpinRate:   0.5,
			CullFace:   true,
		},
		Loader: LoaderConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and validates a settings file.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the defaults overlaid with the file's values
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes settings from TOML text over the defaults and validates the result. Unknown keys are
// rejected so that typos do not pass silently.
//
// Parameters:
//   - data: the TOML text
//
// Returns:
//   - Config: the decoded settings
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that the renderer cannot recover from.
//
// Returns:
//   - error: error wrapping ErrInvalid naming the first bad field
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.FrameLimit < 0:
		return fmt.Errorf("%w: window.frame_limit %g is negative", ErrInvalid, c.Window.FrameLimit)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("%w: camera.fov %g outside (0, 180)", ErrInvalid, c.Camera.Fov)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera clip planes near %g far %g", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.Radius <= 0:
		return fmt.Errorf("%w: camera.radius %g", ErrInvalid, c.Camera.Radius)
	case c.Loader.Workers < 0:
		return fmt.Errorf("%w: loader.workers %d is negative", ErrInvalid, c.Loader.Workers)
	}
	if _, err := c.Render.GrowthPolicy(); err != nil {
		return err
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: render.clear_color %v outside [0, 1]", ErrInvalid, c.Render.ClearColor)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// GrowthPolicy maps the growth name onto the arena policy.
//
// Returns:
//   - arena.GrowthPolicy: the policy
//   - error: error wrapping ErrInvalid for an unknown name
func (r RenderConfig) GrowthPolicy() (arena.GrowthPolicy, error) {
	switch strings.ToLower(r.Growth) {
	case "", "exact":
		return arena.GrowExact, nil
	case "geometric":
		return arena.GrowGeometric, nil
	default:
		return arena.GrowExact, fmt.Errorf("%w: render.growth %q (want exact or geometric)", ErrInvalid, r.Growth)
	}
}
