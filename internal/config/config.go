package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. BIOME_DB_PATH or
// BIOME_LOCATION_LATITUDE.
const EnvPrefix = "BIOME"

type Config struct {
	DBPath           string        `mapstructure:"db_path"`
	LogFile          string        `mapstructure:"log_file"`
	LogLevel         string        `mapstructure:"log_level"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
	AutoStartDelay   time.Duration `mapstructure:"auto_start_delay"`
	Location         Location      `mapstructure:"location"`
}

// Location feeds the prayer times panel. A zero coordinate disables it.
type Location struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Method    int     `mapstructure:"method"`
}

func (l Location) Enabled() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// Dir returns ~/.config/biome or the platform equivalent.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "biome")
}

// Path is the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("db_path", filepath.Join(dir, "biome.db"))
	v.SetDefault("log_file", filepath.Join(dir, "biome.log"))
	v.SetDefault("log_level", "info")
	v.SetDefault("tick_interval", "200ms")
	v.SetDefault("snapshot_interval", "5s")
	v.SetDefault("auto_start_delay", "500ms")
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("location.method", 2)
}

// Load reads path, or the default config file when path is empty, and
// applies BIOME_* environment overrides. A missing default file is not an
// error; a missing explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the timer loop cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be positive, got %s", c.SnapshotInterval)
	}
	if c.AutoStartDelay <= 0 {
		return fmt.Errorf("auto_start_delay must be positive, got %s", c.AutoStartDelay)
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("location.latitude out of range: %v", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("location.longitude out of range: %v", c.Location.Longitude)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

type yamlLocation struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Method    int     `yaml:"method"`
}

type yamlConfig struct {
	DBPath           string       `yaml:"db_path"`
	LogFile          string       `yaml:"log_file"`
	LogLevel         string       `yaml:"log_level"`
	TickInterval     string       `yaml:"tick_interval"`
	SnapshotInterval string       `yaml:"snapshot_interval"`
	AutoStartDelay   string       `yaml:"auto_start_delay"`
	Location         yamlLocation `yaml:"location"`
}

// YAML renders the effective configuration in config file form.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(yamlConfig{
		DBPath:           c.DBPath,
		LogFile:          c.LogFile,
		LogLevel:         c.LogLevel,
		TickInterval:     c.TickInterval.String(),
		SnapshotInterval: c.SnapshotInterval.String(),
		AutoStartDelay:   c.AutoStartDelay.String(),
		Location:         yamlLocation(c.Location),
	})
}

// WriteDefault writes a commented starter config to path. An existing file
// is left untouched.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := `# biome configuration
# Every key can be overridden with BIOME_<KEY>, e.g. BIOME_LOG_LEVEL=debug.

# db_path: ~/.config/biome/biome.db
# log_file: ~/.config/biome/biome.log
log_level: info

# Timer loop
tick_interval: 200ms
snapshot_interval: 5s
auto_start_delay: 500ms

# Prayer times panel; leave at 0 to disable.
location:
  latitude: 0
  longitude: 0
  method: 2
`
	return os.WriteFile(path, []byte(content), 0o644)
}
