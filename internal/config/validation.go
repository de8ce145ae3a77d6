package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"vnkey/internal/diacritic"
	"vnkey/internal/inputmethod"
)

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Warning bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e ValidationErrors) Unwrap() error { return ErrInvalidConfig }

// Warnings returns only warning-level validation errors.
func (e ValidationErrors) Warnings() ValidationErrors {
	var out ValidationErrors
	for _, err := range e {
		if err.Warning {
			out = append(out, err)
		}
	}
	return out
}

// Errors returns only error-level validation errors.
func (e ValidationErrors) Errors() ValidationErrors {
	var out ValidationErrors
	for _, err := range e {
		if !err.Warning {
			out = append(out, err)
		}
	}
	return out
}

// HasErrors returns true if there are any non-warning errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e.Errors()) > 0
}

// ValidateConfig checks c and returns ValidationErrors when anything is
// wrong. Missing dictionary files are warnings: the engine runs without
// them and picks them up once they appear.
func ValidateConfig(c *Config) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs ValidationErrors
	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}
	errs = append(errs, validateInput(&c.Input)...)
	errs = append(errs, validateDictionaries(&c.Dictionaries)...)
	errs = append(errs, validateMacros(&c.Macros)...)
	errs = append(errs, validateLogging(&c.Logging)...)
	if c.Storage.Path == "" {
		errs = append(errs, ValidationError{Field: "storage.path", Message: "required field is missing"})
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateInput(in *InputConfig) ValidationErrors {
	var errs ValidationErrors
	if _, err := inputmethod.ParseMethod(in.Method); err != nil {
		errs = append(errs, ValidationError{
			Field:   "input.method",
			Message: fmt.Sprintf("invalid input method: %s (valid: telex, vni, simple-telex)", in.Method),
		})
	}
	if _, err := diacritic.ParseStyle(in.Style); err != nil {
		errs = append(errs, ValidationError{
			Field:   "input.style",
			Message: fmt.Sprintf("invalid tone style: %s (valid: modern, classical)", in.Style),
		})
	}
	if in.DeepCheck && !in.SpellCheck {
		errs = append(errs, ValidationError{
			Field:   "input.deep_check",
			Message: "has no effect while spell_check is off",
			Warning: true,
		})
	}
	return errs
}

func validateDictionaries(d *DictionaryConfig) ValidationErrors {
	var errs ValidationErrors
	if d.DebounceMs < 0 {
		errs = append(errs, ValidationError{Field: "dictionaries.debounce_ms", Message: "cannot be negative"})
	}
	for field, path := range map[string]string{
		"dictionaries.english":    d.English,
		"dictionaries.vietnamese": d.Vietnamese,
		"dictionaries.custom":     d.Custom,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("file not readable: %s", path),
				Warning: true,
			})
		}
	}
	return errs
}

func validateMacros(m *MacroConfig) ValidationErrors {
	var errs ValidationErrors
	for k, v := range m.Entries {
		if strings.TrimSpace(k) == "" || strings.ContainsAny(k, " \t\n") {
			errs = append(errs, ValidationError{
				Field:   "macros.entries",
				Message: fmt.Sprintf("invalid macro key %q: must be a single word", k),
			})
		}
		if v == "" {
			errs = append(errs, ValidationError{
				Field:   "macros.entries." + k,
				Message: "expansion is empty",
			})
		}
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", l.Level),
		})
	}

	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", l.Format),
		})
	}

	switch l.Output {
	case "stdout", "stderr":
	case "file":
		if l.FilePath == "" {
			errs = append(errs, ValidationError{
				Field:   "logging.file_path",
				Message: "file path is required when output is 'file'",
			})
		}
	case "":
		errs = append(errs, ValidationError{Field: "logging.output", Message: "log output is required"})
	}

	return errs
}
