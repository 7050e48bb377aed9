package cliconfig

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/getmockd/mockie/pkg/registry"
)

// Validate checks the configuration for values the server cannot use.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%s %d is out of range (1-65535)", keyOf("Port"), c.Port)
	}
	if strings.TrimSpace(c.StorageFile) == "" {
		return fmt.Errorf("%s must not be empty", keyOf("StorageFile"))
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%s %s must not be negative", keyOf("ReadTimeout"), c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("%s %s must not be negative", keyOf("WriteTimeout"), c.WriteTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%s %q is not one of debug, info, warn, error", keyOf("LogLevel"), c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%s %q is not one of text, json", keyOf("LogFormat"), c.LogFormat)
	}
	if c.SaveSchedule != "" {
		if err := registry.ValidateSchedule(c.SaveSchedule); err != nil {
			return err
		}
	}
	if u, err := url.Parse(c.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s %q is not an absolute URL", keyOf("ServerURL"), c.ServerURL)
	}
	return nil
}
