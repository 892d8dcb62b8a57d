package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents one configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration values, collecting every problem
// instead of stopping at the first.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a configuration validator.
func NewValidator() *Validator {
	return &Validator{errors: make(ValidationErrors, 0)}
}

func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

// Validate checks the whole configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = make(ValidationErrors, 0)

	v.validateFarm(&cfg.Farm)
	v.validateDefaults(&cfg.Defaults)
	v.validateTile(&cfg.Tile)
	v.validateLogging(&cfg.Logging)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) validateFarm(cfg *FarmConfig) {
	if cfg.URL == "" {
		v.addError("farm.url", "farm URL is required")
	} else {
		parsed, err := url.Parse(cfg.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			v.addError("farm.url", "farm URL must be an absolute http(s) URL")
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			v.addError("farm.url", fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
		}
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		v.addError("farm.username", "username and password must be set together")
	}
	if cfg.RequestTimeout < 0 {
		v.addError("farm.request_timeout", "request timeout must be non-negative")
	}
	if cfg.CacheTTL < 0 {
		v.addError("farm.cache_ttl", "cache TTL must be non-negative")
	}
}

func (v *Validator) validateDefaults(cfg *DefaultsConfig) {
	if cfg.Priority < 0 || cfg.Priority > 100 {
		v.addError("defaults.priority", "priority must be between 0 and 100")
	}
	if cfg.ChunkSize < 1 {
		v.addError("defaults.chunk_size", "chunk size must be at least 1")
	}
}

func (v *Validator) validateTile(cfg *TileConfig) {
	if cfg.Assembler == "" {
		v.addError("tile.assembler", "assembler plugin name is required")
	}
	if cfg.AssemblyPriority > 100 {
		v.addError("tile.assembly_priority", "assembly priority must be at most 100")
	}
}

func (v *Validator) validateLogging(cfg *LoggingConfig) {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		v.addError("logging.level", fmt.Sprintf("invalid log level %q", cfg.Level))
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[cfg.Format] {
		v.addError("logging.format", fmt.Sprintf("invalid log format %q", cfg.Format))
	}

	if cfg.Output == "file" && cfg.FilePath == "" {
		v.addError("logging.file_path", "file output requires file_path")
	}
}
