// Package config handles configuration loading, validation, and hot
// reloading for the input method.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Version is the current configuration schema version.
const Version = 1

// Input method schemes.
const (
	MethodTelex       = "telex"
	MethodVNI         = "vni"
	MethodVIQR        = "viqr"
	MethodSimpleTelex = "simple-telex"
)

// Output charsets. Only Unicode output supports document rewriting.
const (
	CharsetUnicode = "unicode"
	CharsetTCVN3   = "tcvn3"
	CharsetVNIWin  = "vni-win"
	CharsetVIQR    = "viqr"
)

// Config holds the complete input method configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Input selects the phonetic scheme and typing behavior.
	Input InputConfig `toml:"input" json:"input" yaml:"input"`

	// Commit controls the immediate-commit and rewrite machinery.
	Commit CommitConfig `toml:"commit" json:"commit" yaml:"commit"`

	// Hosts overrides the built-in per-application quirk table.
	Hosts []HostOverride `toml:"hosts" json:"hosts" yaml:"hosts"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// InputConfig selects the phonetic scheme and typing behavior.
type InputConfig struct {
	// Method is the input scheme: telex, vni, viqr, or simple-telex.
	Method string `toml:"method" json:"method" yaml:"method"`

	// OutputCharset is the committed text encoding. Rewriting
	// committed text requires unicode.
	OutputCharset string `toml:"output_charset" json:"output_charset" yaml:"output_charset"`

	// ProcessWAtBegin makes a leading w produce ư in Telex. When off,
	// a leading w stays a literal w but remains part of the
	// composition.
	ProcessWAtBegin bool `toml:"process_w_at_begin" json:"process_w_at_begin" yaml:"process_w_at_begin"`

	// DisplayUnderline underlines the pending composition in hosts
	// that render preedit inline.
	DisplayUnderline bool `toml:"display_underline" json:"display_underline" yaml:"display_underline"`
}

// CommitConfig controls the immediate-commit and rewrite machinery.
type CommitConfig struct {
	// Immediate commits each keystroke's output directly to the
	// document instead of holding a preedit, rewriting committed text
	// when later keys change it.
	Immediate bool `toml:"immediate" json:"immediate" yaml:"immediate"`

	// ModifySurrounding allows snapshot-based rewrites even when
	// Immediate is off.
	ModifySurrounding bool `toml:"modify_surrounding" json:"modify_surrounding" yaml:"modify_surrounding"`

	// MaxWordLength bounds the rewritable span in code points. Spans
	// longer than this are never touched.
	MaxWordLength int `toml:"max_word_length" json:"max_word_length" yaml:"max_word_length"`
}

// HostOverride adjusts the quirk profile for one application.
type HostOverride struct {
	// Name matches the host identifier reported by the input context.
	Name string `toml:"name" json:"name" yaml:"name"`

	// TrustSnapshot permits snapshot-based rewrites for this host.
	TrustSnapshot bool `toml:"trust_snapshot" json:"trust_snapshot" yaml:"trust_snapshot"`

	// ShadowOnly routes this host through the internal text model.
	ShadowOnly bool `toml:"shadow_only" json:"shadow_only" yaml:"shadow_only"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// FilePath writes logs to a file instead of stderr when set.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Input: InputConfig{
			Method:           MethodTelex,
			OutputCharset:    CharsetUnicode,
			ProcessWAtBegin:  true,
			DisplayUnderline: true,
		},
		Commit: CommitConfig{
			Immediate:         false,
			ModifySurrounding: false,
			MaxWordLength:     7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Hosts = make([]HostOverride, len(c.Hosts))
	copy(out.Hosts, c.Hosts)
	return &out
}

var (
	errUnknownMethod  = errors.New("unknown input method")
	errUnknownCharset = errors.New("unknown output charset")
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Input.Method {
	case MethodTelex, MethodVNI, MethodVIQR, MethodSimpleTelex:
	default:
		return fmt.Errorf("%w: %q", errUnknownMethod, c.Input.Method)
	}

	switch c.Input.OutputCharset {
	case CharsetUnicode, CharsetTCVN3, CharsetVNIWin, CharsetVIQR:
	default:
		return fmt.Errorf("%w: %q", errUnknownCharset, c.Input.OutputCharset)
	}

	if c.Commit.MaxWordLength < 1 || c.Commit.MaxWordLength > 64 {
		return fmt.Errorf("commit.max_word_length must be between 1 and 64, got %d", c.Commit.MaxWordLength)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}

	for _, h := range c.Hosts {
		if strings.TrimSpace(h.Name) == "" {
			return errors.New("hosts entry with empty name")
		}
	}

	return nil
}

// ApplyEnvOverrides applies UNIKEY_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("UNIKEY_INPUT_METHOD"); v != "" {
		c.Input.Method = v
	}
	if v := os.Getenv("UNIKEY_OUTPUT_CHARSET"); v != "" {
		c.Input.OutputCharset = v
	}
	if v := os.Getenv("UNIKEY_IMMEDIATE_COMMIT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Commit.Immediate = b
		}
	}
	if v := os.Getenv("UNIKEY_MAX_WORD_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Commit.MaxWordLength = n
		}
	}
	if v := os.Getenv("UNIKEY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ConfigPath returns the default configuration file location, honoring
// XDG_CONFIG_HOME.
func ConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "fcitx5-unikey.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "fcitx5-unikey", "config.toml")
}

// SaveConfig writes the configuration to path as TOML, creating parent
// directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
