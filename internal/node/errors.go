package node

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned for a type tag outside the known enumeration.
	ErrUnknownType = errors.New("unknown node type")
	// ErrInvalidConfig is returned when a node's settings do not decode into
	// its typed configuration.
	ErrInvalidConfig = errors.New("invalid node config")
)

// ConfigError describes a single invalid configuration key.
type ConfigError struct {
	NodeType Type
	Key      string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s node: %q %s", ErrInvalidConfig, e.NodeType, e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
