package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds run configuration for the lowering and attack tools
type Config struct {
	WeightsFile     string
	InputFile       string
	SymbolicIndices []int
	Precision       int
	Eps             float64
	Store           string
	DBPath          string
}

// ParseIndexList parses a whitespace-separated list of feature indices
func ParseIndexList(s string) ([]int, error) {
	parts := strings.Fields(s)
	idx := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad index %q: %w", p, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative index %d", n)
		}
		idx[i] = n
	}
	return idx, nil
}

// ParseVector parses a whitespace-separated list of feature values
func ParseVector(s string) ([]float64, error) {
	parts := strings.Fields(s)
	x := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		x[i] = v
	}
	return x, nil
}

// ValidateConfig validates run configuration
func ValidateConfig(config *Config) error {
	if config.WeightsFile == "" {
		return fmt.Errorf("weights file is required")
	}

	if len(config.SymbolicIndices) == 0 {
		return fmt.Errorf("at least one symbolic feature index is required")
	}

	if config.Precision < 0 {
		return fmt.Errorf("precision must be non-negative")
	}

	if config.Eps <= 0 {
		return fmt.Errorf("eps must be positive")
	}

	switch config.Store {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("store must be 'memory' or 'sqlite'")
	}

	if config.Store == "sqlite" && config.DBPath == "" {
		return fmt.Errorf("sqlite store requires a database path")
	}

	return nil
}
