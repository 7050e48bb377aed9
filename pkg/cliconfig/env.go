package cliconfig

import "os"

// Environment variable names
const (
	EnvPort         = "MOCKIE_PORT"
	EnvStorage      = "MOCKIE_STORAGE"
	EnvServer       = "MOCKIE_SERVER"
	EnvLogLevel     = "MOCKIE_LOG_LEVEL"
	EnvLogFormat    = "MOCKIE_LOG_FORMAT"
	EnvSaveSchedule = "MOCKIE_SAVE_SCHEDULE"
	EnvHTTP2        = "MOCKIE_HTTP2"
)

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	EnvPort:         KeyPort,
	EnvStorage:      KeyStorage,
	EnvServer:       KeyServer,
	EnvLogLevel:     KeyLogLevel,
	EnvLogFormat:    KeyLogFormat,
	EnvSaveSchedule: KeySaveSchedule,
	EnvHTTP2:        KeyHTTP2,
}

// envValues returns the config values set in the environment. Unset and
// empty variables are skipped.
func envValues() map[string]any {
	values := make(map[string]any)
	for env, key := range envKeys {
		if v := os.Getenv(env); v != "" {
			values[key] = v
		}
	}
	return values
}

// LoadEnvConfig applies environment variables to cfg.
func LoadEnvConfig(cfg *Config) error {
	if err := cfg.Apply(envValues(), SourceEnv); err != nil {
		return &ConfigError{Path: "environment", Message: err.Error()}
	}
	return nil
}
