package configuration

import (
	"errors"
	"fmt"

	"github.com/markusressel/nvfancontrol/internal/ui"
	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if config.PollingRate <= 0 {
		return fmt.Errorf("pollingRate must be positive, got %s", config.PollingRate)
	}
	if config.GracePeriod < 0 {
		return fmt.Errorf("gracePeriod must not be negative, got %s", config.GracePeriod)
	}
	if config.UtilizationThreshold < 0 || config.UtilizationThreshold > 100 {
		return fmt.Errorf("utilizationThreshold must be within [0, 100], got %d", config.UtilizationThreshold)
	}
	if config.FlickerMaxTemp <= 0 {
		return fmt.Errorf("flickerMaxTemp must be positive, got %d", config.FlickerMaxTemp)
	}
	if config.TempRollingWindowSize <= 0 {
		return fmt.Errorf("tempRollingWindowSize must be positive, got %d", config.TempRollingWindowSize)
	}
	if _, err := config.GetLimits(); err != nil {
		return err
	}

	err := validateBackend(config)
	if err != nil {
		return err
	}
	err = validateServers(config)
	if err != nil {
		return err
	}
	return validateGpus(config)
}

func validateBackend(config *Configuration) error {
	switch config.Backend.Type {
	case BackendNvml:
		return nil
	case BackendFile:
		if len(config.Backend.Path) <= 0 {
			return errors.New("backend: path is required for the file backend")
		}
		return nil
	}
	return fmt.Errorf("backend: unknown type '%s', use one of: %s | %s", config.Backend.Type, BackendNvml, BackendFile)
}

func validatePort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s: invalid port %d", name, port)
	}
	return nil
}

func validateServers(config *Configuration) error {
	var ports []int
	check := func(name string, enabled bool, port int) error {
		if !enabled {
			return nil
		}
		if err := validatePort(name, port); err != nil {
			return err
		}
		if slices.Contains(ports, port) {
			return fmt.Errorf("%s: port %d is already in use by another server", name, port)
		}
		ports = append(ports, port)
		return nil
	}

	if err := check("statusServer", config.StatusServer.Enabled, config.StatusServer.Port); err != nil {
		return err
	}
	if err := check("api", config.Api.Enabled, config.Api.Port); err != nil {
		return err
	}
	return check("statistics", config.Statistics.Enabled, config.Statistics.Port)
}

func validateGpus(config *Configuration) error {
	limits, err := config.GetLimits()
	if err != nil {
		return err
	}

	var ids []int
	for i := range config.Gpu {
		gpuConfig := &config.Gpu[i]

		if gpuConfig.ID < 0 {
			return fmt.Errorf("gpu %d: invalid id, must be >= 0", gpuConfig.ID)
		}
		if slices.Contains(ids, gpuConfig.ID) {
			return fmt.Errorf("duplicate gpu id detected: %d", gpuConfig.ID)
		}
		ids = append(ids, gpuConfig.ID)

		if !gpuConfig.Enabled.Get() {
			ui.Debug("GPU %d is disabled, skipping validation of its curve", gpuConfig.ID)
			continue
		}

		curve, err := gpuConfig.Curve()
		if err != nil {
			return err
		}
		if _, err = gpuConfig.FlickerRange(curve, limits, config.FlickerMaxTemp); err != nil {
			return err
		}
	}

	return nil
}
