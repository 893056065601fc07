package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Graph   GraphConfig   `yaml:"graph"`
	Search  SearchConfig  `yaml:"search"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"readTimeout"`
	WriteTimeout     time.Duration `yaml:"writeTimeout"`
	IdleTimeout      time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`
	MetricsEnabled   bool          `yaml:"metricsEnabled"`
	AllowedOrigins   []string      `yaml:"allowedOrigins"`
	AllowCredentials bool          `yaml:"allowCredentials"`
	// SearchRPS caps cheapest-path requests per second; zero disables the limit.
	SearchRPS   float64 `yaml:"searchRps"`
	SearchBurst int     `yaml:"searchBurst"`
}

// GraphConfig describes connectivity to the Neo4j graph database.
type GraphConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	MaxConnections int    `yaml:"maxConnections"`
}

// SearchConfig bounds a single cheapest-route search.
type SearchConfig struct {
	MaxRounds int           `yaml:"maxRounds"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ImportConfig controls CSV ingestion.
type ImportConfig struct {
	DataDir string `yaml:"dataDir"`
	Workers int    `yaml:"workers"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text|json
	IncludeCaller bool   `yaml:"includeCaller"`
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultSearchBurst      = 5
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultSearchMaxRounds  = 64
	defaultSearchTimeout    = 10 * time.Second
	defaultImportDataDir    = "data"
	defaultImportWorkers    = 4
)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			SearchBurst:     defaultSearchBurst,
		},
		Graph: GraphConfig{
			MaxConnections: defaultGraphMaxSessions,
		},
		Search: SearchConfig{
			MaxRounds: defaultSearchMaxRounds,
			Timeout:   defaultSearchTimeout,
		},
		Import: ImportConfig{
			DataDir: defaultImportDataDir,
			Workers: defaultImportWorkers,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any) and environment variables, in that order of precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.HTTP.Port)
	}
	if c.HTTP.SearchRPS < 0 {
		return fmt.Errorf("search rps must not be negative, got %v", c.HTTP.SearchRPS)
	}
	if c.HTTP.SearchRPS > 0 && c.HTTP.SearchBurst <= 0 {
		return fmt.Errorf("search burst must be positive when rps is set, got %d", c.HTTP.SearchBurst)
	}
	if c.Search.MaxRounds <= 0 {
		return fmt.Errorf("search max rounds must be positive, got %d", c.Search.MaxRounds)
	}
	if c.Search.Timeout < 0 {
		return fmt.Errorf("search timeout must not be negative, got %s", c.Search.Timeout)
	}
	if c.Import.Workers <= 0 {
		return fmt.Errorf("import workers must be positive, got %d", c.Import.Workers)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)
	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	cfg.Graph.URI = valueOrDefault("GRAPH_URI", cfg.Graph.URI)
	cfg.Graph.Database = valueOrDefault("GRAPH_DATABASE", cfg.Graph.Database)
	cfg.Graph.Username = valueOrDefault("GRAPH_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = valueOrDefault("GRAPH_PASSWORD", cfg.Graph.Password)
	cfg.Graph.MaxConnections = parseIntWithDefault("GRAPH_MAX_CONNECTIONS", cfg.Graph.MaxConnections)

	cfg.Import.DataDir = valueOrDefault("IMPORT_DATA_DIR", cfg.Import.DataDir)
	cfg.Import.Workers = parseIntWithDefault("IMPORT_WORKERS", cfg.Import.Workers)

	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"SEARCH_TIMEOUT", &cfg.Search.Timeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.dst); err != nil {
			return err
		}
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", cfg.HTTP.MetricsEnabled)
	cfg.HTTP.AllowCredentials = parseBoolWithDefault("SERVER_ALLOW_CREDENTIALS", cfg.HTTP.AllowCredentials)
	if v := os.Getenv("SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitCSV(v)
	}

	if v := os.Getenv("SERVER_SEARCH_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SERVER_SEARCH_RPS: %w", err)
		}
		cfg.HTTP.SearchRPS = rps
	}
	cfg.HTTP.SearchBurst = parseIntWithDefault("SERVER_SEARCH_BURST", cfg.HTTP.SearchBurst)
	cfg.Search.MaxRounds = parseIntWithDefault("SEARCH_MAX_ROUNDS", cfg.Search.MaxRounds)

	return nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
