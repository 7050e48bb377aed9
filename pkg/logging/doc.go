// Package logging provides structured logging configuration for mockie.
//
// This package wraps log/slog so the server, the registry and the CLI log the
// same way.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("server started", "port", 3000)
//
// Components accept a *slog.Logger in their constructor or via a setter.
// If no logger is provided, they use Nop.
package logging
