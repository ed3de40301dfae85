package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config wires collaborators only. Timer behaviour lives in the settings file.
type Config struct {
	DataDir           string        `yaml:"data_dir"`
	SettingsPath      string        `yaml:"settings_path"`
	StatisticsPath    string        `yaml:"statistics_path"`
	StatisticsBackend string        `yaml:"statistics_backend"`
	DBPath            string        `yaml:"db_path"`
	HTTPAddr          string        `yaml:"http_addr"`
	APISecret         string        `yaml:"api_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	CORSOrigins       []string      `yaml:"cors_origins"`
	TickInterval      time.Duration `yaml:"tick_interval"`
	Bell              bool          `yaml:"bell"`
	WatchSettings     bool          `yaml:"watch_settings"`
	// Language picks the phase labels ("en", "ru"). Empty follows the
	// system locale.
	Language string `yaml:"language"`
}

func Load() Config {
	dataDir := getEnv("POMODORO_DATA_DIR", defaultDataDir())
	cfg := Config{
		DataDir:           dataDir,
		StatisticsBackend: strings.ToLower(getEnv("POMODORO_STATS_BACKEND", BackendJSON)),
		HTTPAddr:          getEnv("POMODORO_HTTP_ADDR", "127.0.0.1:8765"),
		APISecret:         getEnv("POMODORO_API_SECRET", ""),
		TokenTTL:          time.Duration(getEnvPositiveInt("POMODORO_TOKEN_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:       getEnvList("POMODORO_CORS_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		TickInterval:      time.Duration(getEnvPositiveInt("POMODORO_TICK_MS", 1000)) * time.Millisecond,
		Bell:              getEnvBool("POMODORO_BELL", true),
		WatchSettings:     getEnvBool("POMODORO_WATCH_SETTINGS", false),
		Language:          getEnv("POMODORO_LANG", ""),
	}
	cfg.SettingsPath = getEnv("POMODORO_SETTINGS_PATH", "")
	cfg.StatisticsPath = getEnv("POMODORO_STATS_PATH", "")
	cfg.DBPath = getEnv("POMODORO_DB_PATH", "")
	cfg.fillPaths()
	return cfg
}

// LoadFile starts from Load and overlays the YAML file at path, if any. Fields
// absent from the file keep their environment or default value. The result is
// validated either way.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	// Paths derived from the old data dir are recomputed if the file moves it.
	derived := cfg
	cfg.SettingsPath, cfg.StatisticsPath, cfg.DBPath = "", "", ""
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.DataDir == derived.DataDir {
		if cfg.SettingsPath == "" {
			cfg.SettingsPath = derived.SettingsPath
		}
		if cfg.StatisticsPath == "" {
			cfg.StatisticsPath = derived.StatisticsPath
		}
		if cfg.DBPath == "" {
			cfg.DBPath = derived.DBPath
		}
	}
	cfg.StatisticsBackend = strings.ToLower(cfg.StatisticsBackend)
	cfg.fillPaths()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StatisticsBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown statistics backend %q", c.StatisticsBackend)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	return nil
}

func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func (c *Config) fillPaths() {
	if c.SettingsPath == "" {
		c.SettingsPath = filepath.Join(c.DataDir, "config.json")
	}
	if c.StatisticsPath == "" {
		c.StatisticsPath = filepath.Join(c.DataDir, "statistics.json")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "pomodoro.db")
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".pomodoro"
	}
	return filepath.Join(home, ".pomodoro")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvPositiveInt is getEnvInt for settings where zero or a negative value
// has no meaning.
func getEnvPositiveInt(key string, fallback int) int {
	value := getEnvInt(key, fallback)
	if value <= 0 {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
