// Package config loads and validates the submitter configuration from
// defaults, a YAML file and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from YAML strings like
// "30s" as well as integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	default:
		return fmt.Errorf("invalid duration value %v", raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std converts back to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete submitter configuration.
type Config struct {
	Farm     FarmConfig     `yaml:"farm"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Tile     TileConfig     `yaml:"tile"`
	Hooks    HooksConfig    `yaml:"hooks"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// FarmConfig holds the farm web-service connection settings.
type FarmConfig struct {
	URL            string        `yaml:"url" env:"FS_FARM_URL"`
	Username       string        `yaml:"username" env:"FS_FARM_USERNAME"`
	Password       string        `yaml:"password" env:"FS_FARM_PASSWORD"`
	SkipTLSVerify  bool     `yaml:"skip_tls_verify" env:"FS_FARM_SKIP_TLS_VERIFY"`
	RequestTimeout Duration `yaml:"request_timeout" env:"FS_FARM_REQUEST_TIMEOUT"`
	CacheTTL       Duration `yaml:"cache_ttl" env:"FS_FARM_CACHE_TTL"`
}

// DefaultsConfig holds descriptor defaults applied to jobs that leave
// the matching fields unset.
type DefaultsConfig struct {
	Pool          string `yaml:"pool" env:"FS_DEFAULT_POOL"`
	SecondaryPool string `yaml:"secondary_pool" env:"FS_DEFAULT_SECONDARY_POOL"`
	Group         string `yaml:"group" env:"FS_DEFAULT_GROUP"`
	Priority      int    `yaml:"priority" env:"FS_DEFAULT_PRIORITY"`
	ChunkSize     int    `yaml:"chunk_size" env:"FS_DEFAULT_CHUNK_SIZE"`
}

// TileConfig holds tile assembly defaults.
type TileConfig struct {
	Assembler        string `yaml:"assembler" env:"FS_TILE_ASSEMBLER"`
	AssemblyPriority int    `yaml:"assembly_priority" env:"FS_TILE_ASSEMBLY_PRIORITY"`
	CleanupTiles     bool   `yaml:"cleanup_tiles" env:"FS_TILE_CLEANUP"`
	ErrorOnMissing   bool   `yaml:"error_on_missing" env:"FS_TILE_ERROR_ON_MISSING"`
}

// HooksConfig holds pre-submit hook settings.
type HooksConfig struct {
	// PreSubmit is the path of a JavaScript hook applied to every
	// JobInfo map before submission. Empty disables the hook.
	PreSubmit string `yaml:"pre_submit" env:"FS_HOOK_PRE_SUBMIT"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" env:"FS_LOG_LEVEL"`
	Format   string `yaml:"format" env:"FS_LOG_FORMAT"`
	Output   string `yaml:"output" env:"FS_LOG_OUTPUT"`
	FilePath string `yaml:"file_path" env:"FS_LOG_FILE_PATH"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Farm: FarmConfig{
			URL:            "http://localhost:8082",
			RequestTimeout: Duration(10 * time.Second),
			CacheTTL:       Duration(5 * time.Minute),
		},
		Defaults: DefaultsConfig{
			Pool:          "none",
			SecondaryPool: "none",
			Priority:      50,
			ChunkSize:     1,
		},
		Tile: TileConfig{
			Assembler:        "DraftTileAssembler",
			AssemblyPriority: -1,
			CleanupTiles:     true,
			ErrorOnMissing:   true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// Serialize renders the configuration as YAML.
func (c *Config) Serialize() ([]byte, error) {
	return yaml.Marshal(c)
}

// ParseConfig decodes a YAML configuration on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Loader loads configuration from defaults, file and environment.
type Loader struct {
	configPath string
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithConfigPath sets the YAML configuration file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// Load builds the configuration with precedence defaults < YAML file <
// environment variables, then validates it.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, err
	}
	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile merges the YAML file into cfg. A missing file is not an
// error, defaults apply.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", l.configPath, err)
	}
	return nil
}

// applyEnvOverrides walks the struct and applies `env` tagged
// environment variables.
func applyEnvOverrides(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnvOverrides(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("apply env %s to %s: %w", envTag, fieldType.Name, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value from its string representation.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field is not settable")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}
