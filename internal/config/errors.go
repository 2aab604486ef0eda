package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
// Problems with scoring parameters are reported as model.ConfigError instead.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

func invalid(key string, value any, allowed string) error {
	return fmt.Errorf("%w: %s=%v (want %s)", ErrInvalidConfig, key, value, allowed)
}
