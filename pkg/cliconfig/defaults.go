package cliconfig

import (
	"strconv"
	"time"
)

// DefaultPort is the default HTTP server port.
const DefaultPort = 3000

// DefaultStorageFile is the default routes file.
const DefaultStorageFile = "routes.json"

// DefaultReadTimeout is the default read timeout.
const DefaultReadTimeout = 30 * time.Second

// DefaultWriteTimeout is the default write timeout.
const DefaultWriteTimeout = 30 * time.Second

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log format.
const DefaultLogFormat = "text"

// DefaultServerURL returns the default admin URL for a server on port.
func DefaultServerURL(port int) string {
	if port == 0 {
		port = DefaultPort
	}
	return "http://localhost:" + strconv.Itoa(port)
}

// NewDefault creates a new Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Port:           DefaultPort,
		StorageFile:    DefaultStorageFile,
		SaveOnShutdown: true,
		ReadTimeout:    DefaultReadTimeout,
		WriteTimeout:   DefaultWriteTimeout,
		ServerURL:      DefaultServerURL(DefaultPort),
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Sources:        make(map[string]string),
	}

	// Mark all as default source
	for _, key := range []string{
		KeyPort, KeyStorage, KeySaveSchedule, KeySaveOnShutdown, KeyReadTimeout,
		KeyWriteTimeout, KeyHTTP2, KeyServer, KeyLogLevel, KeyLogFormat,
	} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}
