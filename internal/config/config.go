// Package config loads the glyphgarden configuration.
//
// A YAML file is read, environment references inside it are expanded and the
// result is decoded in strict mode on top of Default, so a file only needs to
// name the fields it changes. A .env file in the working directory is loaded
// first when present, and a few GLYPHGARDEN_* variables override the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sanonone/glyphgarden/pkg/growth"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvSeed     = "GLYPHGARDEN_SEED"
	EnvHTTPAddr = "GLYPHGARDEN_HTTP_ADDR"
	EnvSource   = "GLYPHGARDEN_SOURCE"
)

// Config is the top-level structure of the configuration file.
type Config struct {
	Canvas   CanvasConfig  `yaml:"canvas"`
	Params   growth.Params `yaml:"params"`
	Seed     int64         `yaml:"seed"`
	MaxNodes int           `yaml:"max_nodes"`
	Source   SourceConfig  `yaml:"source"`
	Run      RunConfig     `yaml:"run"`
	HTTP     HTTPConfig    `yaml:"http"`
	Log      LogConfig     `yaml:"log"`
}

type CanvasConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	CellSize float64 `yaml:"cell_size"`
}

// SourceConfig names the text the garden grows from (.txt, .md or .pdf).
type SourceConfig struct {
	Path string `yaml:"path"`
}

// RunConfig drives headless runs and the background runner.
type RunConfig struct {
	Ticks        int           `yaml:"ticks"`         // headless generations
	TickInterval time.Duration `yaml:"tick_interval"` // e.g. "100ms"
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// Default returns a complete configuration.
//
// Defaults:
//   - Canvas: 800x600, 50 unit cells
//   - Params: growth.DefaultParams()
//   - Seed: 42, MaxNodes: 1000
//   - Run: 100 ticks, one every 100ms
//   - HTTP: ":8090"
//   - Log: info, text
func Default() Config {
	opts := growth.DefaultOptions()
	return Config{
		Canvas: CanvasConfig{
			Width:    opts.CanvasWidth,
			Height:   opts.CanvasHeight,
			CellSize: opts.CellSize,
		},
		Params:   opts.Params,
		Seed:     opts.Seed,
		MaxNodes: opts.MaxNodes,
		Run:      RunConfig{Ticks: 100, TickInterval: 100 * time.Millisecond},
		HTTP:     HTTPConfig{Addr: ":8090"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration at path on top of Default. An empty path
// yields the defaults plus environment overrides. The result is validated.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("could not load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("could not read configuration file '%s': %w", path, err)
		}

		decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
		decoder.KnownFields(true)
		// An empty document leaves the defaults untouched.
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(EnvSource); v != "" {
		c.Source.Path = v
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate reports the first field that would make the engine fall back or
// the adapters fail.
func (c Config) Validate() error {
	switch {
	case !positive(c.Canvas.Width) || !positive(c.Canvas.Height):
		return fmt.Errorf("canvas must have a positive size, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	case !positive(c.Canvas.CellSize):
		return fmt.Errorf("canvas.cell_size must be positive, got %g", c.Canvas.CellSize)
	case c.MaxNodes <= 0:
		return fmt.Errorf("max_nodes must be positive, got %d", c.MaxNodes)
	case c.Run.Ticks < 0:
		return fmt.Errorf("run.ticks must not be negative, got %d", c.Run.Ticks)
	case c.Run.TickInterval <= 0:
		return fmt.Errorf("run.tick_interval must be positive, got %s", c.Run.TickInterval)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// EngineOptions maps the configuration onto growth options.
func (c Config) EngineOptions(logger *slog.Logger) growth.Options {
	opts := growth.DefaultOptions()
	opts.CanvasWidth = c.Canvas.Width
	opts.CanvasHeight = c.Canvas.Height
	opts.CellSize = c.Canvas.CellSize
	opts.Params = c.Params
	opts.Seed = c.Seed
	opts.MaxNodes = c.MaxNodes
	opts.Logger = logger
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the log section.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
