//go:build !disable_nvml

package nvidia

import (
	"errors"
	"fmt"
	"sync"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/markusressel/nvfancontrol/internal/ui"
)

const IsNvmlSupported = true

type device struct {
	handle nvml.Device
	raw    rawDevice // needed for getFanSpeedRpm()
}

// Control implements gpu.Control on top of NVML
type Control struct {
	mu      sync.Mutex
	devices []device
	closed  bool
}

var (
	active   *Control
	activeMu sync.Mutex
)

// helper function to turn an nvml return code into a go error
// (also handles success by returning nil)
func nvError(ret nvml.Return) error {
	if ret == nvml.SUCCESS {
		return nil
	}
	return errors.New(nvml.ErrorString(ret))
}

// New initializes NVML and collects handles for all GPUs
func New() (gpu.Control, error) {
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("unable to initialize NVML: %w", nvError(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		_ = nvml.Shutdown()
		return nil, fmt.Errorf("unable to get GPU count: %w", nvError(ret))
	}

	initRpmFunctions()

	c := &Control{}
	for i := 0; i < count; i++ {
		handle, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			_ = nvml.Shutdown()
			return nil, fmt.Errorf("unable to get handle for GPU %d: %w", i, nvError(ret))
		}
		raw := getRawDeviceHandleByIndex(i)
		if raw == nil {
			ui.Debug("Reading fan RPM is not supported by the driver for GPU %d", i)
		}
		c.devices = append(c.devices, device{handle: handle, raw: raw})
	}

	activeMu.Lock()
	active = c
	activeMu.Unlock()
	return c, nil
}

func (c *Control) device(id int) (device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return device{}, errors.New("NVML has been shut down")
	}
	if id < 0 || id >= len(c.devices) {
		return device{}, fmt.Errorf("%w: %d", gpu.ErrInvalidGpu, id)
	}
	return c.devices[id], nil
}

func (c *Control) fanCount(d device, id int) (int, error) {
	count, ret := d.handle.GetNumFans()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("unable to get number of coolers of GPU %d: %w", id, nvError(ret))
	}
	return count, nil
}

func (c *Control) cooler(id int, cooler int) (device, error) {
	d, err := c.device(id)
	if err != nil {
		return d, err
	}
	count, err := c.fanCount(d, id)
	if err != nil {
		return d, err
	}
	if cooler < 0 || cooler >= count {
		return d, fmt.Errorf("%w: %d (GPU %d has %d coolers)", gpu.ErrInvalidCooler, cooler, id, count)
	}
	return d, nil
}

func (c *Control) GetTemp(id int) (int, error) {
	d, err := c.device(id)
	if err != nil {
		return 0, err
	}
	temp, ret := d.handle.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("unable to get temperature of GPU %d: %w", id, nvError(ret))
	}
	return int(temp), nil
}

// GetCtrlStatus reports Manual if any cooler of the GPU uses the manual fan policy
func (c *Control) GetCtrlStatus(id int) (gpu.ControlState, error) {
	d, err := c.device(id)
	if err != nil {
		return gpu.Auto, err
	}
	count, err := c.fanCount(d, id)
	if err != nil {
		return gpu.Auto, err
	}
	for fan := 0; fan < count; fan++ {
		policy, ret := d.handle.GetFanControlPolicy_v2(fan)
		if ret != nvml.SUCCESS {
			return gpu.Auto, fmt.Errorf("unable to get fan control policy of GPU %d: %w", id, nvError(ret))
		}
		if policy == nvml.FAN_POLICY_MANUAL {
			return gpu.Manual, nil
		}
	}
	return gpu.Auto, nil
}

func (c *Control) SetCtrlType(id int, state gpu.ControlState) error {
	d, err := c.device(id)
	if err != nil {
		return err
	}
	count, err := c.fanCount(d, id)
	if err != nil {
		return err
	}
	for fan := 0; fan < count; fan++ {
		var ret nvml.Return
		switch state {
		case gpu.Auto:
			ret = nvml.DeviceSetDefaultFanSpeed_v2(d.handle, fan)
		case gpu.Manual:
			ret = d.handle.SetFanControlPolicy(fan, nvml.FAN_POLICY_MANUAL)
		default:
			return fmt.Errorf("unknown control state %s", state)
		}
		if ret != nvml.SUCCESS {
			return fmt.Errorf("unable to set control state of GPU %d to %s: %w", id, state, nvError(ret))
		}
	}
	return nil
}

func (c *Control) GetFanspeed(id int, cooler int) (int, error) {
	d, err := c.cooler(id, cooler)
	if err != nil {
		return 0, err
	}
	speed, ret := d.handle.GetFanSpeed_v2(cooler)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("unable to get speed of cooler %d of GPU %d: %w", cooler, id, nvError(ret))
	}
	return int(speed), nil
}

func (c *Control) SetFanspeed(id int, cooler int, speed int) error {
	d, err := c.cooler(id, cooler)
	if err != nil {
		return err
	}
	ui.Debug("Setting speed of cooler %d of GPU %d to %d%%", cooler, id, speed)
	ret := d.handle.SetFanSpeed_v2(cooler, min(max(speed, gpu.MinSpeedValue), gpu.MaxSpeedValue))
	if ret != nvml.SUCCESS {
		return fmt.Errorf("unable to set speed of cooler %d of GPU %d: %w", cooler, id, nvError(ret))
	}
	return nil
}

func (c *Control) GetFanspeedRpm(id int, cooler int) (int, error) {
	d, err := c.cooler(id, cooler)
	if err != nil {
		return 0, err
	}
	rpm, ret := getFanSpeedRpm(d.raw, cooler)
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("unable to get RPM of cooler %d of GPU %d: %w", cooler, id, nvError(ret))
	}
	return rpm, nil
}

// GetUtilization reports "graphics" and "memory" and, if available, "video" as the
// higher of encoder and decoder load
func (c *Control) GetUtilization(id int) (map[string]int, error) {
	d, err := c.device(id)
	if err != nil {
		return nil, err
	}
	rates, ret := d.handle.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("unable to get utilization of GPU %d: %w", id, nvError(ret))
	}
	result := map[string]int{
		gpu.UtilizationGraphics: int(rates.Gpu),
		gpu.UtilizationMemory:   int(rates.Memory),
	}

	encoder, _, retEnc := d.handle.GetEncoderUtilization()
	decoder, _, retDec := d.handle.GetDecoderUtilization()
	if retEnc == nvml.SUCCESS || retDec == nvml.SUCCESS {
		result[gpu.UtilizationVideo] = int(max(encoder, decoder))
	}
	return result, nil
}

func (c *Control) GpuCount() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.devices), nil
}

func (c *Control) GpuCoolers(id int) ([]int, error) {
	d, err := c.device(id)
	if err != nil {
		return nil, err
	}
	count, err := c.fanCount(d, id)
	if err != nil {
		return nil, err
	}
	result := make([]int, count)
	for i := range result {
		result[i] = i
	}
	return result, nil
}

func (c *Control) GetAdapter(id int) (string, error) {
	d, err := c.device(id)
	if err != nil {
		return "", err
	}
	name, ret := d.handle.GetName()
	if ret != nvml.SUCCESS {
		return "", fmt.Errorf("unable to get name of GPU %d: %w", id, nvError(ret))
	}
	return name, nil
}

func (c *Control) GetVersion() (string, error) {
	version, ret := nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		return "", fmt.Errorf("unable to get driver version: %w", nvError(ret))
	}
	return version, nil
}

// Close shuts down NVML, it is safe to call it more than once
func (c *Control) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.devices = nil
	return nvError(nvml.Shutdown())
}

// CleanupAtExit shuts down NVML if it is still initialized.
// To be called at the end of main().
func CleanupAtExit() {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		// ignore the error, can't do anything about it anyway
		_ = active.Close()
		active = nil
	}
}
