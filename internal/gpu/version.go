package gpu

import (
	"fmt"
	"strconv"
	"strings"
)

// MinDriverVersion is the oldest driver supporting manual fan control
const MinDriverVersion = 352.09

// ParseDriverVersion parses the major and minor part of a version string like "550.54.14"
func ParseDriverVersion(version string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	result, err := strconv.ParseFloat(strings.Join(parts, "."), 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse driver version '%s': %w", version, err)
	}
	return result, nil
}

// CheckDriverVersion returns the driver version, or an error if it is too old
func CheckDriverVersion(ctrl Control) (float64, error) {
	raw, err := ctrl.GetVersion()
	if err != nil {
		return 0, fmt.Errorf("unable to get driver version: %w", err)
	}
	version, err := ParseDriverVersion(raw)
	if err != nil {
		return 0, err
	}
	if version < MinDriverVersion {
		return version, fmt.Errorf("unsupported driver version %.2f, at least %.2f is required", version, MinDriverVersion)
	}
	return version, nil
}
