package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, MethodTelex, cfg.Input.Method)
	assert.Equal(t, CharsetUnicode, cfg.Input.OutputCharset)
	assert.True(t, cfg.Input.ProcessWAtBegin)
	assert.True(t, cfg.Input.DisplayUnderline)
	assert.False(t, cfg.Commit.Immediate)
	assert.False(t, cfg.Commit.ModifySurrounding)
	assert.Equal(t, 7, cfg.Commit.MaxWordLength)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateMethod(t *testing.T) {
	for _, m := range []string{MethodTelex, MethodVNI, MethodVIQR, MethodSimpleTelex} {
		cfg := DefaultConfig()
		cfg.Input.Method = m
		assert.NoError(t, cfg.Validate(), m)
	}

	cfg := DefaultConfig()
	cfg.Input.Method = "pinyin"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown input method")
}

func TestValidateCharset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Input.OutputCharset = "koi8-r"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output charset")
}

func TestValidateMaxWordLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Commit.MaxWordLength = 0
	assert.Error(t, cfg.Validate())

	cfg.Commit.MaxWordLength = 65
	assert.Error(t, cfg.Validate())

	cfg.Commit.MaxWordLength = 64
	assert.NoError(t, cfg.Validate())
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Level = "WARN"
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateHostOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts = []HostOverride{{Name: "firefox", ShadowOnly: true}}
	assert.NoError(t, cfg.Validate())

	cfg.Hosts = append(cfg.Hosts, HostOverride{Name: "  "})
	assert.Error(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("UNIKEY_INPUT_METHOD", "vni")
	t.Setenv("UNIKEY_OUTPUT_CHARSET", "viqr")
	t.Setenv("UNIKEY_IMMEDIATE_COMMIT", "true")
	t.Setenv("UNIKEY_MAX_WORD_LENGTH", "12")
	t.Setenv("UNIKEY_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, MethodVNI, cfg.Input.Method)
	assert.Equal(t, CharsetVIQR, cfg.Input.OutputCharset)
	assert.True(t, cfg.Commit.Immediate)
	assert.Equal(t, 12, cfg.Commit.MaxWordLength)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	t.Setenv("UNIKEY_IMMEDIATE_COMMIT", "maybe")
	t.Setenv("UNIKEY_MAX_WORD_LENGTH", "lots")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.False(t, cfg.Commit.Immediate)
	assert.Equal(t, 7, cfg.Commit.MaxWordLength)
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hosts = []HostOverride{{Name: "firefox", ShadowOnly: true}}

	clone := cfg.Clone()
	clone.Input.Method = MethodVNI
	clone.Hosts[0].Name = "chromium"

	assert.Equal(t, MethodTelex, cfg.Input.Method)
	assert.Equal(t, "firefox", cfg.Hosts[0].Name)
}

func TestConfigPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigPath()
	assert.Equal(t, filepath.Join(dir, "fcitx5-unikey", "config.toml"), got)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.Input.Method = MethodVIQR
	cfg.Commit.Immediate = true
	cfg.Hosts = []HostOverride{{Name: "soffice.bin", TrustSnapshot: false}}
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := loadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
