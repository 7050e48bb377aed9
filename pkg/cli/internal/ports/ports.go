// Package ports provides port availability checking.
package ports

import (
	"fmt"
	"net"
)

// IsAvailable checks if a port is available for binding.
func IsAvailable(port int) bool {
	return Check(port) == nil
}

// Check returns an error naming the port if it cannot be bound.
func Check(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("port %d is not available: %w", port, err)
	}
	_ = ln.Close()
	return nil
}

// Free returns a port that was free at the time of the call.
func Free() (int, error) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = ln.Close() }()
	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address %s", ln.Addr())
	}
	return addr.Port, nil
}
