package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Security  SecurityConfig  `koanf:"security"`
	Telemetry TelemetryConfig `koanf:"telemetry"`

	Detection DetectionConfig `koanf:"detection"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Alerts    AlertsConfig    `koanf:"alerts"`
	Collector CollectorConfig `koanf:"collector"`
}

type ServerConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// URL may be empty: the service then runs without persistence.
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	// Addr may be empty: the service then runs without the result cache.
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	MaxRetries   int           `koanf:"max_retries"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	ResultTTL    time.Duration `koanf:"result_ttl"`
}

type SecurityConfig struct {
	// JWTSecret enables bearer-token auth on mutating routes when set.
	JWTSecret   string          `koanf:"jwt_secret"`
	TokenExpiry time.Duration   `koanf:"token_expiry"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second" validate:"gt=0"`
	BurstSize         int `koanf:"burst_size" validate:"gt=0"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"gte=0,lte=1"`
}

// DetectionConfig holds the detector thresholds.
type DetectionConfig struct {
	BruteForceThreshold int      `koanf:"brute_force_threshold" validate:"gte=0"`
	SuspiciousHourStart int      `koanf:"suspicious_hour_start" validate:"gte=0,lte=23"`
	SuspiciousHourEnd   int      `koanf:"suspicious_hour_end" validate:"gte=0,lte=23"`
	DefaultUsernames    []string `koanf:"default_usernames" validate:"min=1"`
}

// ScoringConfig holds the severity weights and level thresholds.
type ScoringConfig struct {
	CriticalWeight int `koanf:"critical_weight" validate:"gt=0"`
	WarningWeight  int `koanf:"warning_weight" validate:"gt=0"`
	InfoWeight     int `koanf:"info_weight" validate:"gt=0"`

	MediumThreshold   int `koanf:"medium_threshold" validate:"gt=0"`
	HighThreshold     int `koanf:"high_threshold" validate:"gt=0"`
	CriticalThreshold int `koanf:"critical_threshold" validate:"gt=0"`
}

type AlertsConfig struct {
	MaxEntries  int           `koanf:"max_entries" validate:"gt=0"`
	MaxAge      time.Duration `koanf:"max_age" validate:"gt=0"`
	DedupWindow time.Duration `koanf:"dedup_window" validate:"gte=0"`
}

type CollectorConfig struct {
	AuthLogPath string   `koanf:"auth_log_path"`
	ProbePaths  []string `koanf:"probe_paths"`
}

// Load reads configuration from defaults, an optional YAML file and
// BREACH_-prefixed environment variables, then validates it. Invalid
// configuration fails closed: no scan may run with it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("BREACH_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "BREACH_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			ResultTTL:    5 * time.Minute,
		},
		Security: SecurityConfig{
			TokenExpiry: 24 * time.Hour,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 10,
				BurstSize:         20,
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SamplingRate: 1.0,
		},
		Detection: DetectionConfig{
			BruteForceThreshold: 3,
			SuspiciousHourStart: 0,
			SuspiciousHourEnd:   5,
			DefaultUsernames:    []string{"admin", "root", "administrator", "test", "guest"},
		},
		Scoring: ScoringConfig{
			CriticalWeight:    25,
			WarningWeight:     10,
			InfoWeight:        5,
			MediumThreshold:   30,
			HighThreshold:     60,
			CriticalThreshold: 90,
		},
		Alerts: AlertsConfig{
			MaxEntries:  500,
			MaxAge:      30 * 24 * time.Hour,
			DedupWindow: 0,
		},
		Collector: CollectorConfig{
			AuthLogPath: "sample_logs/auth_logs.json",
			ProbePaths: []string{
				"/api/users",
				"/api/admin/settings",
				"/api/database/dump",
				"/api/health",
				"/api/data/export",
			},
		},
	}
}

// Validate checks struct-level constraints and the cross-field invariants
// the tags cannot express. Any failure is a configuration error that must
// prevent a scan from running; nothing is silently clamped.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return domainerrors.NewConfigurationError("", "configuration validation failed").WithCause(err)
	}

	if c.Detection.SuspiciousHourStart > c.Detection.SuspiciousHourEnd {
		return domainerrors.NewConfigurationError("detection.suspicious_hour_start",
			fmt.Sprintf("suspicious hour range is inverted: %d > %d",
				c.Detection.SuspiciousHourStart, c.Detection.SuspiciousHourEnd))
	}

	if c.Scoring.MediumThreshold >= c.Scoring.HighThreshold ||
		c.Scoring.HighThreshold >= c.Scoring.CriticalThreshold {
		return domainerrors.NewConfigurationError("scoring",
			fmt.Sprintf("level thresholds must be strictly increasing: %d, %d, %d",
				c.Scoring.MediumThreshold, c.Scoring.HighThreshold, c.Scoring.CriticalThreshold))
	}

	return nil
}
