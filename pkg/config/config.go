// Package config loads the service configuration: built-in defaults, then an
// optional YAML file, then RESILIENCE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RESILIENCE_"

// ErrInvalidConfig wraps validation failures
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full service configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Data        DataConfig        `yaml:"data"`
	Precomputed PrecomputedConfig `yaml:"precomputed"`
	Logging     LoggingConfig     `yaml:"logging"`
	Attack      AttackConfig      `yaml:"attack"`
	Defense     DefenseConfig     `yaml:"defense"`
	Swap        SwapConfig        `yaml:"swap"`
	Redundancy  RedundancyConfig  `yaml:"redundancy"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig locates the OpenFlights files
type DataConfig struct {
	Dir          string `yaml:"dir"`
	AirportsFile string `yaml:"airports_file"`
	RoutesFile   string `yaml:"routes_file"`
}

// PrecomputedConfig locates the region cache and its optional S3 mirror
type PrecomputedConfig struct {
	Path     string `yaml:"path"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Key    string `yaml:"s3_key"`
	S3Region string `yaml:"s3_region"`

	// S3Endpoint points at an S3-compatible service instead of AWS
	S3Endpoint string `yaml:"s3_endpoint"`

	// Static credentials are read from the environment only
	S3AccessKeyID     string `yaml:"-"`
	S3SecretAccessKey string `yaml:"-"`
}

// LoggingConfig selects level and format
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AttackConfig holds attack simulation defaults
type AttackConfig struct {
	Strategy  string    `yaml:"strategy"`
	Fractions []float64 `yaml:"fractions"`
	Runs      int       `yaml:"runs"`
	Seed      int64     `yaml:"seed"`
	Adaptive  bool      `yaml:"adaptive"`
	Workers   int       `yaml:"workers"`
}

// DefenseConfig holds effective-resistance reinforcement defaults
type DefenseConfig struct {
	K             int     `yaml:"k"`
	MaxCandidates int     `yaml:"max_candidates"`
	MaxDistanceKM float64 `yaml:"max_distance_km"`
	Seed          int64   `yaml:"seed"`
}

// SwapConfig holds edge-swap optimizer defaults
type SwapConfig struct {
	Fractions []float64 `yaml:"fractions"`
	MaxTrials int       `yaml:"max_trials"`
	Patience  int       `yaml:"patience"`
	MinDeltaR float64   `yaml:"min_delta_r"`
	Seed      int64     `yaml:"seed"`
	Prefilter bool      `yaml:"prefilter"`
}

// RedundancyConfig holds advisor defaults
type RedundancyConfig struct {
	M             int     `yaml:"m"`
	MaxDistanceKM float64 `yaml:"max_distance_km"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Dir:          "data",
			AirportsFile: "airports.dat",
			RoutesFile:   "routes.dat",
		},
		Precomputed: PrecomputedConfig{
			Path:  "data/precomputed_attacks.json",
			S3Key: "precomputed_attacks.json.sz",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Attack: AttackConfig{
			Strategy:  string(attack.Degree),
			Fractions: robustness.DefaultFractions(),
			Runs:      1,
			Seed:      42,
			Adaptive:  true,
			Workers:   1,
		},
		Defense: DefenseConfig{
			K:             200,
			MaxCandidates: 20000,
			MaxDistanceKM: 3000,
			Seed:          123,
		},
		Swap: SwapConfig{
			Fractions: robustness.DefaultWindow(),
			MaxTrials: 20000,
			Patience:  5000,
			MinDeltaR: 1e-6,
			Seed:      123,
			Prefilter: true,
		},
		Redundancy: RedundancyConfig{M: 10, MaxDistanceKM: 3000},
	}
}

// Load reads path over the defaults (an empty path skips the file), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv in
// production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("HOST", &c.Server.Host)
	integer("PORT", &c.Server.Port)
	str("DATA_DIR", &c.Data.Dir)
	str("PRECOMPUTED_PATH", &c.Precomputed.Path)
	str("S3_BUCKET", &c.Precomputed.S3Bucket)
	str("S3_REGION", &c.Precomputed.S3Region)
	str("S3_ENDPOINT", &c.Precomputed.S3Endpoint)
	str("S3_ACCESS_KEY_ID", &c.Precomputed.S3AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.Precomputed.S3SecretAccessKey)
	str("LOG_FORMAT", &c.Logging.Format)
	integer("WORKERS", &c.Attack.Workers)

	// LOG_LEVEL and CORS_ALLOWED_ORIGINS are honoured unprefixed as well
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	str("LOG_LEVEL", &c.Logging.Level)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config")
	cv.RangeInt("server.port", c.Server.Port, 1, 65535).
		MinDuration("server.shutdown_timeout", c.Server.ShutdownTimeout, time.Second).
		Required("data.dir", c.Data.Dir).
		OneOf("logging.format", strings.ToLower(c.Logging.Format), []string{"json", "text"}).
		Custom("attack.strategy", func() error {
			_, err := attack.ParseStrategy(c.Attack.Strategy)
			return err
		}).
		Fractions("attack.fractions", c.Attack.Fractions).
		Positive("attack.runs", c.Attack.Runs).
		Positive("attack.workers", c.Attack.Workers).
		NonNegative("defense.k", c.Defense.K).
		Positive("defense.max_candidates", c.Defense.MaxCandidates).
		NonNegativeFloat("defense.max_distance_km", c.Defense.MaxDistanceKM).
		Fractions("swap.fractions", c.Swap.Fractions).
		NonNegative("swap.max_trials", c.Swap.MaxTrials).
		NonNegative("swap.patience", c.Swap.Patience).
		NonNegativeFloat("swap.min_delta_r", c.Swap.MinDeltaR).
		Positive("redundancy.m", c.Redundancy.M).
		NonNegativeFloat("redundancy.max_distance_km", c.Redundancy.MaxDistanceKM).
		When(c.Precomputed.S3Bucket != "", func(v *validation.ConfigValidator) {
			v.Required("precomputed.s3_key", c.Precomputed.S3Key)
		}).
		When(c.Precomputed.S3AccessKeyID != "", func(v *validation.ConfigValidator) {
			v.Required("precomputed.s3_secret_access_key", c.Precomputed.S3SecretAccessKey)
		})

	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
