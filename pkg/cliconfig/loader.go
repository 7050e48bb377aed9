package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".mockierc.yaml", ".mockierc.yml"}

// FindLocalConfig searches for .mockierc.yaml or .mockierc.yml in the current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// ConfigError represents a configuration error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

// readConfigFile reads a YAML file into a map of config values.
func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// LoadConfigFile applies the values in a YAML file to cfg.
func LoadConfigFile(cfg *Config, path string) error {
	values, err := readConfigFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Apply(values, SourceFile); err != nil {
		return &ConfigError{Path: path, Message: err.Error()}
	}
	cfg.ConfigFile = path
	return nil
}

// Apply decodes values onto cfg and records source for every key present.
// Values are weakly typed: "8080" decodes into an int, "true" into a bool
// and "30s" into a time.Duration. Unknown keys are an error.
func (c *Config) Apply(values map[string]any, source string) error {
	if len(values) == 0 {
		return nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Metadata:         &md,
		Result:           c,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return err
	}

	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	for _, key := range md.Keys {
		c.Sources[key] = source
	}
	return nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigFile is an explicit config file. It must exist when set.
	ConfigFile string
}

// Load builds the configuration from defaults, the config file and the
// environment. Flags are applied by the caller with Apply and SourceFlag.
func Load(opts LoadOptions) (*Config, error) {
	// Start with defaults
	cfg := NewDefault()

	path := opts.ConfigFile
	if path == "" {
		found, err := FindLocalConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path != "" {
		if err := LoadConfigFile(cfg, path); err != nil {
			var cerr *ConfigError
			if errors.As(err, &cerr) {
				return nil, err
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}

	// A server URL that was never set follows the port.
	if cfg.Sources[KeyServer] == SourceDefault && cfg.Sources[KeyPort] != SourceDefault {
		cfg.ServerURL = DefaultServerURL(cfg.Port)
	}
	return cfg, nil
}

// keyOf returns the config key of a Config field, for error messages.
func keyOf(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	return f.Tag.Get("mapstructure")
}
