package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/ritzau/graphview/pkg/logging"
	"github.com/ritzau/graphview/pkg/sim"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when --config is not given
const DefaultFile = "graphview.toml"

const envPrefix = "GRAPHVIEW_"

// Config holds all configuration for the application
type Config struct {
	Data            string    `koanf:"data" validate:"required"`
	Port            int       `koanf:"port" validate:"min=0,max=65535"`
	OpenBrowser     bool      `koanf:"open"`
	Watch           bool      `koanf:"watch"`
	Verbosity       string    `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn error"`
	VerboseCnt      int       `koanf:"verbose" validate:"min=0"`
	JSONLogs        bool      `koanf:"json_logs"`
	Width           int       `koanf:"width" validate:"min=1"`
	Height          int       `koanf:"height" validate:"min=1"`
	Padding         float64   `koanf:"padding" validate:"min=0"`
	NodeSize        float64   `koanf:"node_size" validate:"gt=0"`
	MaxGrabDistance float64   `koanf:"max_grab_distance" validate:"min=0"`
	FPS             int       `koanf:"fps" validate:"min=1,max=240"`
	Sim             SimConfig `koanf:"sim"`
}

// SimConfig holds the layout parameters
type SimConfig struct {
	Repulsion     float64 `koanf:"repulsion" validate:"gt=0"`
	Rate          float64 `koanf:"rate" validate:"gt=0"`
	Theta         float64 `koanf:"theta" validate:"min=0"`
	Updates       int     `koanf:"updates" validate:"min=1"`
	TempMassDecay float64 `koanf:"temp_mass_decay" validate:"gt=0,lt=1"`
	Seed          uint64  `koanf:"seed"`
}

var validate = validator.New()

func defaults() map[string]interface{} {
	p := sim.DefaultParams()
	return map[string]interface{}{
		"data":              "data/graph.json",
		"port":              8080,
		"open":              false,
		"watch":             false,
		"verbosity":         "",
		"verbose":           0,
		"json_logs":         false,
		"width":             800,
		"height":            600,
		"padding":           80.0,
		"node_size":         10.0,
		"max_grab_distance": 0.0,
		"fps":               30,
		"sim": map[string]interface{}{
			"repulsion":       p.Repulsion,
			"rate":            p.Rate,
			"theta":           p.Theta,
			"updates":         p.Updates,
			"temp_mass_decay": p.TempMassDecay,
			"seed":            p.Seed,
		},
	}
}

// RegisterFlags adds the configuration flags to a flag set. Flag names use
// dashes; "sim-" flags map to the sim section.
func RegisterFlags(f *pflag.FlagSet) {
	p := sim.DefaultParams()

	f.String("config", DefaultFile, "Path to the config file")
	f.String("data", "data/graph.json", "Graph document (.json, .yaml)")
	f.Int("port", 8080, "Port for the web server")
	f.Bool("open", false, "Open the browser after starting the server")
	f.Bool("watch", false, "Reload the graph when the document changes")
	f.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	f.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	f.Bool("json-logs", false, "Log as JSON")
	f.Int("width", 800, "Surface width in pixels")
	f.Int("height", 600, "Surface height in pixels")
	f.Float64("padding", 80, "Blank margin on each side of the surface")
	f.Float64("node-size", 10, "Side of a node square in pixels")
	f.Float64("max-grab-distance", 0, "Farthest a press may be from a node to grab it (0 = any)")
	f.Int("fps", 30, "Layout steps per second")
	f.Float64("sim-repulsion", p.Repulsion, "Layout repulsion")
	f.Float64("sim-rate", p.Rate, "Layout step rate")
	f.Float64("sim-theta", p.Theta, "Barnes-Hut approximation threshold")
	f.Int("sim-updates", p.Updates, "Layout updates after each graph change")
	f.Float64("sim-temp-mass-decay", p.TempMassDecay, "Per-step decay of a released node's extra mass")
	f.Uint64("sim-seed", p.Seed, "Seed for initial node placement")
}

// flagKey maps a flag name to its config key
func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if rest, ok := strings.CutPrefix(key, "sim_"); ok {
		return "sim." + rest
	}
	return key
}

// envKey maps GRAPHVIEW_SIM_TEMP_MASS_DECAY to sim.temp_mass_decay
func envKey(s string) string {
	return flagKey(strings.ToLower(strings.TrimPrefix(s, envPrefix)))
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	path := DefaultFile
	explicit := false
	if f != nil {
		if fl := f.Lookup("config"); fl != nil {
			path = fl.Value.String()
			explicit = fl.Changed
		}
	}
	// A missing default file is fine, a missing explicit one is not
	if _, err := os.Stat(path); explicit || !errors.Is(err, fs.ErrNotExist) {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: GRAPHVIEW_ (e.g., GRAPHVIEW_PORT=9090, GRAPHVIEW_SIM_RATE=0.1)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		provider := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			if fl.Name == "config" {
				return "", nil
			}
			return flagKey(fl.Name), posflag.FlagVal(f, fl)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Report the first failure
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("invalid config: %s is required", field)
		case "min", "gte":
			return fmt.Errorf("invalid config: %s must be at least %s", field, e.Param())
		case "max", "lte":
			return fmt.Errorf("invalid config: %s must not exceed %s", field, e.Param())
		case "gt":
			return fmt.Errorf("invalid config: %s must be greater than %s", field, e.Param())
		case "lt":
			return fmt.Errorf("invalid config: %s must be less than %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("invalid config: %s must be one of %s", field, e.Param())
		default:
			return fmt.Errorf("invalid config: %s failed %s", field, e.Tag())
		}
	}
	return err
}

// Params returns the layout parameters
func (c *Config) Params() sim.Params {
	return sim.Params{
		Repulsion:     c.Sim.Repulsion,
		Rate:          c.Sim.Rate,
		Theta:         c.Sim.Theta,
		Updates:       c.Sim.Updates,
		TempMassDecay: c.Sim.TempMassDecay,
		Seed:          c.Sim.Seed,
	}
}

// LogLevel resolves the log level. An explicit verbosity wins over -v.
func (c *Config) LogLevel() slog.Level {
	switch c.Verbosity {
	case "trace":
		return logging.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	switch {
	case c.VerboseCnt >= 2:
		return logging.LevelTrace
	case c.VerboseCnt == 1:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
