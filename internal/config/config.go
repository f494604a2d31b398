// Package config handles configuration loading and validation for landingmig.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"landingmig/internal/audit"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidFormat   ConfigErrorType = "INVALID_FORMAT"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidFormat:
		return fmt.Sprintf("invalid configuration file %s: %s", e.Path, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Default roots used when nothing else is configured.
const (
	DefaultSourceRoot      = "Pagina web"
	DefaultDestinationRoot = "heavy-api/storage/app/public/landing"
)

// Empty slug policies.
const (
	EmptySlugError = "error"
	EmptySlugSkip  = "skip"
)

// Symlink policies, mirrored by the scanner.
const (
	SymlinkPolicyFiles  = "files"
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

// DefaultExtensions returns the image extensions migrated by default.
func DefaultExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".svg"}
}

// WatchSettings configures the watch command.
type WatchSettings struct {
	DebounceMs        int      `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
	StableThresholdMs int      `json:"stableThresholdMs,omitempty" yaml:"stableThresholdMs,omitempty"`
	IgnorePatterns    []string `json:"ignorePatterns,omitempty" yaml:"ignorePatterns,omitempty"`
}

// Configuration holds all settings for a migration.
type Configuration struct {
	SourceRoot      string             `json:"sourceRoot" yaml:"sourceRoot"`
	DestinationRoot string             `json:"destinationRoot" yaml:"destinationRoot"`
	Extensions      []string           `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	EmptySlugPolicy string             `json:"emptySlugPolicy,omitempty" yaml:"emptySlugPolicy,omitempty"`
	SymlinkPolicy   string             `json:"symlinkPolicy,omitempty" yaml:"symlinkPolicy,omitempty"`
	PublicPrefix    string             `json:"publicPrefix,omitempty" yaml:"publicPrefix,omitempty"`
	Audit           *audit.AuditConfig `json:"audit,omitempty" yaml:"audit,omitempty"`
	Watch           *WatchSettings     `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// Default returns a configuration pointing at the original asset folders.
func Default() *Configuration {
	cfg := &Configuration{
		SourceRoot:      DefaultSourceRoot,
		DestinationRoot: DefaultDestinationRoot,
	}
	cfg.ApplyDefaults()
	return cfg
}

// Validate checks that the configuration has all required fields.
func (c *Configuration) Validate() error {
	if c.SourceRoot == "" {
		return &ConfigError{
			Type:    ValidationError,
			Message: "sourceRoot cannot be empty",
		}
	}

	if c.DestinationRoot == "" {
		return &ConfigError{
			Type:    ValidationError,
			Message: "destinationRoot cannot be empty",
		}
	}

	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("extensions[%d] must start with a dot: %q", i, ext),
			}
		}
	}

	switch c.EmptySlugPolicy {
	case "", EmptySlugError, EmptySlugSkip:
	default:
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("emptySlugPolicy must be %q or %q, got %q", EmptySlugError, EmptySlugSkip, c.EmptySlugPolicy),
		}
	}

	switch c.SymlinkPolicy {
	case "", SymlinkPolicyFiles, SymlinkPolicyFollow, SymlinkPolicySkip, SymlinkPolicyError:
	default:
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("symlinkPolicy must be %q, %q, %q or %q, got %q", SymlinkPolicyFiles, SymlinkPolicyFollow, SymlinkPolicySkip, SymlinkPolicyError, c.SymlinkPolicy),
		}
	}

	return nil
}

// ApplyDefaults fills zero values with their defaults.
func (c *Configuration) ApplyDefaults() {
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions()
	}
	for i, ext := range c.Extensions {
		c.Extensions[i] = strings.ToLower(ext)
	}
	if c.EmptySlugPolicy == "" {
		c.EmptySlugPolicy = EmptySlugError
	}
	if c.SymlinkPolicy == "" {
		c.SymlinkPolicy = SymlinkPolicyFiles
	}
	if c.PublicPrefix == "" && c.DestinationRoot != "" {
		c.PublicPrefix = filepath.Base(filepath.Clean(c.DestinationRoot))
	}
	if c.Watch == nil {
		c.Watch = &WatchSettings{}
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = 2000
	}
	if c.Watch.StableThresholdMs == 0 {
		c.Watch.StableThresholdMs = 1000
	}
}

// AuditEnabled reports whether an audit log should be written.
func (c *Configuration) AuditEnabled() bool {
	return c.Audit != nil && c.Audit.LogDirectory != ""
}

// Load reads and parses a configuration file from the given path.
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON.
func Load(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := Unmarshal(filePath, data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidFormat,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.ApplyDefaults()

	return &config, nil
}

// Save serializes and writes a configuration to the given path, using the
// same format rules as Load.
func Save(config *Configuration, filePath string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filePath) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return &ConfigError{
			Type:    InvalidFormat,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
		}
	}

	return nil
}

// Unmarshal decodes JSON or YAML data into v, choosing the format from the
// file name. Other packages reading side files (mappings) use it too.
func Unmarshal(filePath string, data []byte, v any) error {
	if isYAML(filePath) {
		return yaml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func isYAML(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
