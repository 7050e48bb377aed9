// Package cliconfig provides configuration types and loading for the mockie CLI.
package cliconfig

import "time"

// Config represents the complete configuration for the mockie CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Config file (--config, or .mockierc.yaml in the current directory)
// 4. Default values (lowest priority)
type Config struct {
	// Server settings
	Port           int           `mapstructure:"port" yaml:"port" json:"port"`
	StorageFile    string        `mapstructure:"storage" yaml:"storage" json:"storage"`
	SaveSchedule   string        `mapstructure:"save_schedule" yaml:"save_schedule,omitempty" json:"saveSchedule,omitempty"`
	SaveOnShutdown bool          `mapstructure:"save_on_shutdown" yaml:"save_on_shutdown" json:"saveOnShutdown"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" json:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" json:"writeTimeout"`
	HTTP2          bool          `mapstructure:"http2" yaml:"http2" json:"http2"`

	// Admin client settings
	ServerURL string `mapstructure:"server" yaml:"server" json:"server"`

	// Logging settings
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"logLevel"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"logFormat"`

	// ConfigFile is the file the config was read from, if any.
	ConfigFile string `mapstructure:"-" yaml:"-" json:"configFile,omitempty"`

	// Sources tracks where each value came from, keyed by config key.
	Sources map[string]string `mapstructure:"-" yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Config keys, as used in config files, Sources and Apply.
const (
	KeyPort           = "port"
	KeyStorage        = "storage"
	KeySaveSchedule   = "save_schedule"
	KeySaveOnShutdown = "save_on_shutdown"
	KeyReadTimeout    = "read_timeout"
	KeyWriteTimeout   = "write_timeout"
	KeyHTTP2          = "http2"
	KeyServer         = "server"
	KeyLogLevel       = "log_level"
	KeyLogFormat      = "log_format"
)
