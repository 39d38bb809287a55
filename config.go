package mga

import (
	"os"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable naming the directory of mga.toml.
const ConfigEnv = "MGA_CONFIG"

// SolverConfig tunes the trajectory solver.
type SolverConfig struct {
	Population       int     // CMA-ES population, zero for the default of 4+3ln(n)
	MaxGenerations   int     // Iteration budget
	SeedSamples      int     // Uniform samples drawn to pick the initial mean
	StallGenerations int     // Generations without improvement beyond Tolerance before convergence
	Tolerance        float64 // km/s
	InitStepSize     float64 // Initial CMA-ES step size in the normalized decision space
	Workers          int     // Concurrent objective evaluations, zero or one for serial
}

// LogConfig selects the log output.
type LogConfig struct {
	Level  string // debug, info, warn or error
	Format string // logfmt or json
}

// Config is the configuration of the planner.
type Config struct {
	Solver SolverConfig
	Log    LogConfig
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solver.population", 0)
	v.SetDefault("solver.generations", 400)
	v.SetDefault("solver.seed_samples", 2000)
	v.SetDefault("solver.stall_generations", 40)
	v.SetDefault("solver.tolerance", 1e-5)
	v.SetDefault("solver.step_size", 0.3)
	v.SetDefault("solver.workers", runtime.GOMAXPROCS(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "logfmt")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Solver: SolverConfig{
			Population:       v.GetInt("solver.population"),
			MaxGenerations:   v.GetInt("solver.generations"),
			SeedSamples:      v.GetInt("solver.seed_samples"),
			StallGenerations: v.GetInt("solver.stall_generations"),
			Tolerance:        v.GetFloat64("solver.tolerance"),
			InitStepSize:     v.GetFloat64("solver.step_size"),
			Workers:          v.GetInt("solver.workers"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// LoadConfig reads the configuration from path, which is either a TOML file or a directory
// containing mga.toml. An empty path falls back to the MGA_CONFIG directory, and to the defaults
// if that variable is not set either. Any key may be overridden by the environment, e.g.
// MGA_SOLVER_GENERATIONS=100.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MGA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			v.SetConfigName("mga")
			v.SetConfigType("toml")
			v.AddConfigPath(path)
		} else {
			v.SetConfigFile(path)
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, NewPrecondition("could not read configuration %s: %s", path, err)
		}
	}
	cfg := fromViper(v)
	return cfg, cfg.Validate()
}

// Validate checks the ranges of the configuration.
func (c Config) Validate() error {
	s := c.Solver
	switch {
	case s.Population < 0:
		return NewPrecondition("solver population must be non-negative, got %d", s.Population)
	case s.MaxGenerations <= 0:
		return NewPrecondition("solver generations must be positive, got %d", s.MaxGenerations)
	case s.SeedSamples < 0:
		return NewPrecondition("solver seed samples must be non-negative, got %d", s.SeedSamples)
	case s.StallGenerations <= 0:
		return NewPrecondition("solver stall generations must be positive, got %d", s.StallGenerations)
	case !(s.Tolerance >= 0):
		return NewPrecondition("solver tolerance must be non-negative, got %f", s.Tolerance)
	case !(s.InitStepSize > 0):
		return NewPrecondition("solver step size must be positive, got %f", s.InitStepSize)
	case s.Workers < 0:
		return NewPrecondition("solver workers must be non-negative, got %d", s.Workers)
	}
	switch strings.ToLower(c.Log.Format) {
	case "logfmt", "json":
	default:
		return NewPrecondition("unknown log format %q", c.Log.Format)
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return NewPrecondition("unknown log level %q", c.Log.Level)
	}
	return nil
}
