package gpu

import (
	"errors"
	"fmt"
)

const (
	// UtilizationGraphics is the utilization domain of the graphics engine
	UtilizationGraphics = "graphics"
	// UtilizationMemory is the utilization domain of the memory controller
	UtilizationMemory = "memory"
	// UtilizationVideo is the utilization domain of the video engine
	UtilizationVideo = "video"
)

var (
	ErrInvalidGpu    = errors.New("invalid gpu")
	ErrInvalidCooler = errors.New("invalid cooler")
)

// ControlState describes who is in charge of the fan speed of a GPU
type ControlState int

const (
	// Auto lets the driver (or the onboard firmware) control the fans
	Auto ControlState = iota
	// Manual means the fans are driven by this program
	Manual
)

func (s ControlState) String() string {
	switch s {
	case Auto:
		return "Auto"
	case Manual:
		return "Manual"
	}
	return fmt.Sprintf("ControlState(%d)", int(s))
}

// Control is the driver surface used to observe and drive the fans of one or more GPUs.
// All indices are zero-based.
type Control interface {
	// GetTemp returns the core temperature of the given GPU in °C
	GetTemp(gpu int) (int, error)
	GetCtrlStatus(gpu int) (ControlState, error)
	SetCtrlType(gpu int, state ControlState) error
	// GetFanspeed returns the current speed of a cooler in percent
	GetFanspeed(gpu int, cooler int) (int, error)
	// SetFanspeed sets the target speed of a cooler in percent
	SetFanspeed(gpu int, cooler int, speed int) error
	GetFanspeedRpm(gpu int, cooler int) (int, error)
	// GetUtilization returns the load of the GPU in percent per utilization domain.
	// Domains the GPU does not report are missing from the result.
	GetUtilization(gpu int) (map[string]int, error)
	GpuCount() (int, error)
	GpuCoolers(gpu int) ([]int, error)
	GetAdapter(gpu int) (string, error)
	// GetVersion returns the driver version
	GetVersion() (string, error)
	Close() error
}

// CheckGpu returns ErrInvalidGpu if gpu is not a valid index for the given control
func CheckGpu(ctrl Control, gpu int) error {
	count, err := ctrl.GpuCount()
	if err != nil {
		return err
	}
	if gpu < 0 || gpu >= count {
		return fmt.Errorf("%w: %d (found %d gpus)", ErrInvalidGpu, gpu, count)
	}
	return nil
}
