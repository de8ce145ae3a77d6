// Package config handles configuration loading, validation, and management for vnkey.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"

	"vnkey/internal/diacritic"
	"vnkey/internal/inputmethod"
	"vnkey/internal/session"
	"vnkey/internal/syllable"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete engine configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Input controls how keystrokes become Vietnamese letters.
	Input InputConfig `toml:"input" json:"input" yaml:"input"`

	// Restore controls auto-English-restore at word breaks.
	Restore RestoreConfig `toml:"restore" json:"restore" yaml:"restore"`

	// Dictionaries locates the word lists.
	Dictionaries DictionaryConfig `toml:"dictionaries" json:"dictionaries" yaml:"dictionaries"`

	// Macros configures shorthand expansion.
	Macros MacroConfig `toml:"macros" json:"macros" yaml:"macros"`

	// Storage configuration for persistence.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	mu sync.RWMutex `toml:"-" json:"-" yaml:"-"`
}

// InputConfig holds typing behaviour.
type InputConfig struct {
	// Method is "telex", "vni" or "simple-telex".
	Method string `toml:"method" json:"method" yaml:"method"`

	// Style is "modern" (hoà) or "classical" (hòa).
	Style string `toml:"style" json:"style" yaml:"style"`

	SpellCheck bool `toml:"spell_check" json:"spell_check" yaml:"spell_check"`
	DeepCheck  bool `toml:"deep_check" json:"deep_check" yaml:"deep_check"`

	// AllowZFWJ accepts z, f, w and j as onsets.
	AllowZFWJ bool `toml:"allow_zfwj" json:"allow_zfwj" yaml:"allow_zfwj"`

	QuickStartConsonant bool `toml:"quick_start_consonant" json:"quick_start_consonant" yaml:"quick_start_consonant"`
	QuickEndConsonant   bool `toml:"quick_end_consonant" json:"quick_end_consonant" yaml:"quick_end_consonant"`

	AutoCircumflex  bool `toml:"auto_circumflex" json:"auto_circumflex" yaml:"auto_circumflex"`
	RestoreOnEscape bool `toml:"restore_on_escape" json:"restore_on_escape" yaml:"restore_on_escape"`
	AutoCapitalize  bool `toml:"auto_capitalize" json:"auto_capitalize" yaml:"auto_capitalize"`
}

// RestoreConfig holds auto-English-restore settings.
type RestoreConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
}

// DictionaryConfig holds dictionary locations.
type DictionaryConfig struct {
	// English and Vietnamese are PHT3 trie files.
	English    string `toml:"english" json:"english" yaml:"english"`
	Vietnamese string `toml:"vietnamese" json:"vietnamese" yaml:"vietnamese"`

	// Custom is a custom-dictionary JSON file.
	Custom string `toml:"custom" json:"custom" yaml:"custom"`

	// Watch reloads the files when they change on disk.
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`

	// DebounceMs is the quiet period before a changed file is reloaded.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// MacroConfig holds macro settings. Entries here are merged over the
// macros kept in the store.
type MacroConfig struct {
	Enabled bool              `toml:"enabled" json:"enabled" yaml:"enabled"`
	Entries map[string]string `toml:"entries" json:"entries" yaml:"entries"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Path is the sqlite database for custom words and macros.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file", or a file path.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file (when Output is "file").
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// TypedText logs words and keys in clear. Off, they are redacted.
	TypedText bool `toml:"log_typed_text" json:"log_typed_text" yaml:"log_typed_text"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		Version: Version,
		Input: InputConfig{
			Method:          "telex",
			Style:           "modern",
			SpellCheck:      true,
			DeepCheck:       true,
			AutoCircumflex:  true,
			RestoreOnEscape: true,
		},
		Restore: RestoreConfig{Enabled: true},
		Dictionaries: DictionaryConfig{
			English:    filepath.Join(dir, "dict", "en.pht"),
			Vietnamese: filepath.Join(dir, "dict", "vi.pht"),
			Custom:     filepath.Join(dir, "dict", "custom.json"),
			Watch:      true,
			DebounceMs: 200,
		},
		Macros:  MacroConfig{Enabled: true},
		Storage: StorageConfig{Path: filepath.Join(dir, "vnkey.db")},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: filepath.Join(PlatformLogDir(), "vnkey.log"),
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Load reads configuration from the specified path.
// If the file doesn't exist, returns default configuration.
// Supports TOML, JSON, and YAML formats based on file extension.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// SessionOptions converts the input, restore and macro sections into
// session options.
func (c *Config) SessionOptions() (session.Options, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	method, err := inputmethod.ParseMethod(c.Input.Method)
	if err != nil {
		return session.Options{}, err
	}
	style, err := diacritic.ParseStyle(c.Input.Style)
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Method:     method,
		Style:      style,
		SpellCheck: c.Input.SpellCheck,
		Syllable: syllable.Options{
			DeepCheck:           c.Input.DeepCheck,
			AllowZFWJ:           c.Input.AllowZFWJ,
			QuickStartConsonant: c.Input.QuickStartConsonant,
			QuickEndConsonant:   c.Input.QuickEndConsonant,
		},
		AutoCircumflex:  c.Input.AutoCircumflex,
		AutoRestore:     c.Restore.Enabled,
		RestoreOnEscape: c.Input.RestoreOnEscape,
		AutoCapitalize:  c.Input.AutoCapitalize,
		Macros:          c.Macros.Enabled,
	}, nil
}

// EnsureDirectories creates the directories the configured files live in.
func (c *Config) EnsureDirectories() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dirs := []string{
		filepath.Dir(c.Storage.Path),
		filepath.Dir(c.Dictionaries.English),
		filepath.Dir(c.Dictionaries.Vietnamese),
		filepath.Dir(c.Dictionaries.Custom),
	}
	if c.Logging.Output == "file" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DataDir returns the base vnkey directory.
// Uses platform-specific paths or the VNKEY_DATA_DIR environment override.
func DataDir() string {
	if envDir := os.Getenv("VNKEY_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with VNKEY_ and use underscores.
func (c *Config) ApplyEnvOverrides() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := os.Getenv("VNKEY_INPUT_METHOD"); v != "" {
		c.Input.Method = v
	}
	if v := os.Getenv("VNKEY_INPUT_STYLE"); v != "" {
		c.Input.Style = v
	}
	envBool("VNKEY_SPELL_CHECK", &c.Input.SpellCheck)
	envBool("VNKEY_RESTORE_ENABLED", &c.Restore.Enabled)
	envBool("VNKEY_MACROS_ENABLED", &c.Macros.Enabled)

	// Dictionary overrides
	if v := os.Getenv("VNKEY_ENGLISH_DICT"); v != "" {
		c.Dictionaries.English = v
	}
	if v := os.Getenv("VNKEY_VIETNAMESE_DICT"); v != "" {
		c.Dictionaries.Vietnamese = v
	}
	if v := os.Getenv("VNKEY_CUSTOM_DICT"); v != "" {
		c.Dictionaries.Custom = v
	}

	if v := os.Getenv("VNKEY_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}

	// Logging overrides
	if v := os.Getenv("VNKEY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("VNKEY_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

func envBool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Config{
		Version:      c.Version,
		Input:        c.Input,
		Restore:      c.Restore,
		Dictionaries: c.Dictionaries,
		Macros:       c.Macros,
		Storage:      c.Storage,
		Logging:      c.Logging,
	}
	if c.Macros.Entries != nil {
		clone.Macros.Entries = make(map[string]string, len(c.Macros.Entries))
		for k, v := range c.Macros.Entries {
			clone.Macros.Entries[k] = v
		}
	}
	return clone
}

// SaveConfig writes cfg to path as TOML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	clone := cfg.Clone()
	if err := toml.NewEncoder(f).Encode(clone); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
