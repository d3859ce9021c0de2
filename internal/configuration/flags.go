package configuration

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/markusressel/nvfancontrol/internal/gpu"
)

// ParseLimits parses "LOW,HIGH" into fan speed limits.
// A single "0" disables the limits and results in an empty slice.
func ParseLimits(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "0" {
		return []int{}, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid limits '%s', expected LOW,HIGH or 0", value)
	}
	result := make([]int, 2)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid limits '%s': %w", value, err)
		}
		result[i] = v
	}
	if _, err := gpu.NewLimits(result[0], result[1]); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseFlickerRange parses "MINIMUM,START" into a flicker range
func ParseFlickerRange(value string) ([]uint16, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid fanflicker range '%s', expected MINIMUM,START", value)
	}
	result := make([]uint16, 2)
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid fanflicker range '%s': %w", value, err)
		}
		result[i] = uint16(v)
	}
	return result, nil
}

// GetLimits returns the configured limits, nil if they are disabled
func (c *Configuration) GetLimits() (*gpu.Limits, error) {
	switch len(c.Limits) {
	case 0:
		return nil, nil
	case 2:
		return gpu.NewLimits(c.Limits[0], c.Limits[1])
	}
	return nil, fmt.Errorf("limits must consist of exactly two values [low, high], got %v", c.Limits)
}
