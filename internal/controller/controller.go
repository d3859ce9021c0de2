package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/nvfancontrol/internal/curves"
	"github.com/markusressel/nvfancontrol/internal/flicker"
	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/markusressel/nvfancontrol/internal/status"
	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/markusressel/nvfancontrol/internal/util"
)

var ErrNoCoolers = errors.New("no coolers found")

type GpuController interface {
	Run(ctx context.Context) error
	// UpdateFanSpeed runs a single control step
	UpdateFanSpeed() error
	// Reset hands fan control back to the driver, unless in monitor only mode
	Reset() error
	GetGpu() int
	GetCurve() *curves.FanspeedCurve
	GetStatistics() Statistics
}

// Params are the process level controls of a GpuController
type Params struct {
	Gpu int
	// Force controls the fan even if the driver is already running it in Auto mode
	Force bool
	// MonitorOnly never changes any fan settings
	MonitorOnly bool

	PollingRate time.Duration
	// GracePeriod is the time the fan keeps running at the minimum curve speed after
	// the temperature dropped below the curve
	GracePeriod time.Duration
	// UtilizationThreshold is the graphics load (%) above which the fan is never turned off
	UtilizationThreshold int
	// TempRollingWindowSize is the number of temperatures averaged in status snapshots
	TempRollingWindowSize int

	// StatusFile is replaced with the latest snapshot on every tick, if set
	StatusFile string
	// StatusOutput receives the latest snapshot as a JSON line on every tick, if set
	StatusOutput io.Writer

	// Clock returns the current time, defaults to time.Now
	Clock func() time.Time
}

// Statistics are counters of a GpuController since its creation
type Statistics struct {
	Ticks              uint64
	TickErrors         uint64
	GraceHolds         uint64
	FlickerCorrections uint64
}

type gpuController struct {
	ctrl   gpu.Control
	params Params
	curve  *curves.FanspeedCurve
	fix    *flicker.Fix
	store  *status.Store

	// last time the curve requested the fan to be running, nil if it should be off
	onTime *time.Time

	tempWindow     *rolling.PointPolicy
	tempWindowInit bool

	resetOnce sync.Once

	ticks              atomic.Uint64
	tickErrors         atomic.Uint64
	graceHolds         atomic.Uint64
	flickerCorrections atomic.Uint64
}

// NewGpuController creates a controller for a single GPU. rng may be nil if the fans
// of the GPU don't need flicker compensation, store may be nil if no status snapshots
// are needed.
func NewGpuController(
	ctrl gpu.Control,
	curve *curves.FanspeedCurve,
	rng *flicker.Range,
	store *status.Store,
	params Params,
) (GpuController, error) {
	if err := gpu.CheckGpu(ctrl, params.Gpu); err != nil {
		return nil, err
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	if params.TempRollingWindowSize <= 0 {
		params.TempRollingWindowSize = 1
	}

	c := &gpuController{
		ctrl:       ctrl,
		params:     params,
		curve:      curve,
		store:      store,
		tempWindow: util.CreateRollingWindow(params.TempRollingWindowSize),
	}

	if rng != nil {
		previousSpeed, err := c.currentSpeed()
		if err != nil {
			ui.Warning("Unable to read current speed of GPU %d, assuming %d%%: %v", params.Gpu, rng.Start, err)
			previousSpeed = rng.Start
		}
		c.fix = flicker.NewFix(*rng, previousSpeed)
	}

	return c, nil
}

func (c *gpuController) GetGpu() int {
	return c.params.Gpu
}

func (c *gpuController) GetCurve() *curves.FanspeedCurve {
	return c.curve
}

func (c *gpuController) GetStatistics() Statistics {
	return Statistics{
		Ticks:              c.ticks.Load(),
		TickErrors:         c.tickErrors.Load(),
		GraceHolds:         c.graceHolds.Load(),
		FlickerCorrections: c.flickerCorrections.Load(),
	}
}

// Run calls UpdateFanSpeed once per polling interval until ctx is done.
// Errors of a single step are logged, the next step starts from fresh readings.
func (c *gpuController) Run(ctx context.Context) error {
	if c.params.MonitorOnly {
		ui.Info("Starting monitor for GPU %d", c.params.Gpu)
	} else {
		ui.Info("Starting controller loop for GPU %d", c.params.Gpu)
	}

	tick := time.NewTicker(c.params.PollingRate)
	defer tick.Stop()

	for {
		c.tick()

		select {
		case <-ctx.Done():
			ui.Debug("Stopping controller loop for GPU %d", c.params.Gpu)
			if err := c.Reset(); err != nil {
				ui.Error("Unable to restore automatic fan control of GPU %d: %v", c.params.Gpu, err)
			}
			return nil
		case <-tick.C:
		}
	}
}

func (c *gpuController) tick() {
	c.ticks.Add(1)

	err := c.UpdateFanSpeed()
	if err != nil {
		c.tickErrors.Add(1)
		ui.Error("Error in controller of GPU %d: %v", c.params.Gpu, err)
	}

	snapshot, err := c.collectSnapshot()
	if err != nil {
		ui.Warning("Unable to collect status of GPU %d: %v", c.params.Gpu, err)
		return
	}
	ui.Debug("%s", snapshot)
	c.publish(snapshot)
}

func (c *gpuController) publish(snapshot status.Snapshot) {
	if c.store != nil {
		c.store.Set(snapshot)
	}
	if c.params.StatusOutput != nil {
		if err := status.Print(c.params.StatusOutput, snapshot); err != nil {
			ui.Warning("Unable to print status: %v", err)
		}
	}
	if len(c.params.StatusFile) > 0 {
		if err := status.WriteFile(c.params.StatusFile, snapshot); err != nil {
			ui.Warning("Unable to write status file %s: %v", c.params.StatusFile, err)
		}
	}
}

func (c *gpuController) UpdateFanSpeed() error {
	if c.params.MonitorOnly {
		return nil
	}
	id := c.params.Gpu

	temp, err := c.ctrl.GetTemp(id)
	if err != nil {
		return err
	}
	state, err := c.ctrl.GetCtrlStatus(id)
	if err != nil {
		return err
	}
	coolers, err := c.coolers()
	if err != nil {
		return err
	}
	// the first cooler represents the whole GPU
	rpm, err := c.ctrl.GetFanspeedRpm(id, coolers[0])
	if err != nil {
		return err
	}

	if rpm > 0 && state == gpu.Auto && !c.params.Force {
		ui.Debug("Fan of GPU %d is enabled on auto control, doing nothing", id)
		return nil
	}

	target, defined := c.curve.SpeedY(temp)
	now := c.params.Clock()

	switch {
	case defined && c.fix == nil:
		c.onTime = &now
		return c.setSpeed(state, coolers, target)

	case defined:
		c.onTime = &now
		fixed := c.fix.FixSpeed(rpm, target)
		if fixed != target {
			c.flickerCorrections.Add(1)
		}
		return c.setSpeed(state, coolers, fixed)

	case c.fix != nil:
		// never turn off a fan with a flicker range, restarting it is what causes the flicker
		return c.setSpeed(state, coolers, c.fix.FixSpeed(rpm, c.fix.Minimum()))

	case c.onTime != nil:
		elapsed := now.Sub(*c.onTime)
		ui.Debug("%d seconds elapsed since fan of GPU %d was last on", int(elapsed.Seconds()), id)

		load, known := c.graphicsLoad()
		if elapsed < c.params.GracePeriod || (known && load > c.params.UtilizationThreshold) {
			c.graceHolds.Add(1)
			return c.setSpeed(state, coolers, c.curve.MinSpeed())
		}
		ui.Debug("Grace period of GPU %d expired, turning fan off", id)
		c.onTime = nil
		return c.setAuto(state)

	default:
		return c.setAuto(state)
	}
}

// graphicsLoad returns the graphics utilization, known is false if it is unavailable
func (c *gpuController) graphicsLoad() (load int, known bool) {
	utilization, err := c.ctrl.GetUtilization(c.params.Gpu)
	if err != nil {
		ui.Debug("Unable to get utilization of GPU %d: %v", c.params.Gpu, err)
		return -1, false
	}
	load, known = utilization[gpu.UtilizationGraphics]
	if !known {
		return -1, false
	}
	return load, true
}

func (c *gpuController) coolers() ([]int, error) {
	coolers, err := c.ctrl.GpuCoolers(c.params.Gpu)
	if err != nil {
		return nil, err
	}
	if len(coolers) == 0 {
		return nil, fmt.Errorf("%w for GPU %d", ErrNoCoolers, c.params.Gpu)
	}
	return coolers, nil
}

func (c *gpuController) currentSpeed() (int, error) {
	coolers, err := c.coolers()
	if err != nil {
		return 0, err
	}
	return c.ctrl.GetFanspeed(c.params.Gpu, coolers[0])
}

func (c *gpuController) setSpeed(state gpu.ControlState, coolers []int, speed int) error {
	id := c.params.Gpu
	if state != gpu.Manual {
		if err := c.ctrl.SetCtrlType(id, gpu.Manual); err != nil {
			return fmt.Errorf("unable to take control of the fans of GPU %d: %w", id, err)
		}
	}
	for _, cooler := range coolers {
		if err := c.ctrl.SetFanspeed(id, cooler, speed); err != nil {
			return fmt.Errorf("unable to set speed of cooler %d of GPU %d to %d%%: %w", cooler, id, speed, err)
		}
	}
	return nil
}

func (c *gpuController) setAuto(state gpu.ControlState) error {
	if state == gpu.Auto {
		return nil
	}
	ui.Debug("Switching GPU %d to automatic fan control", c.params.Gpu)
	return c.ctrl.SetCtrlType(c.params.Gpu, gpu.Auto)
}

func (c *gpuController) Reset() (err error) {
	if c.params.MonitorOnly {
		return nil
	}
	c.resetOnce.Do(func() {
		ui.Debug("Resetting fan control of GPU %d", c.params.Gpu)
		err = c.ctrl.SetCtrlType(c.params.Gpu, gpu.Auto)
	})
	return err
}

func (c *gpuController) collectSnapshot() (status.Snapshot, error) {
	id := c.params.Gpu
	snapshot := status.Snapshot{
		Timestamp: c.params.Clock().Unix(),
		Gpu:       id,
		Load:      -1,
	}

	temp, err := c.ctrl.GetTemp(id)
	if err != nil {
		return snapshot, err
	}
	snapshot.Temperature = temp
	if !c.tempWindowInit {
		util.FillWindow(c.tempWindow, c.params.TempRollingWindowSize, float64(temp))
		c.tempWindowInit = true
	} else {
		c.tempWindow.Append(float64(temp))
	}
	snapshot.TemperatureAvg = util.GetWindowAvg(c.tempWindow)

	coolers, err := c.coolers()
	if err != nil {
		return snapshot, err
	}
	snapshot.Speed = make([]int, len(coolers))
	snapshot.Rpm = make([]int, len(coolers))
	for i, cooler := range coolers {
		if snapshot.Speed[i], err = c.ctrl.GetFanspeed(id, cooler); err != nil {
			return snapshot, err
		}
		if snapshot.Rpm[i], err = c.ctrl.GetFanspeedRpm(id, cooler); err != nil {
			return snapshot, err
		}
	}

	snapshot.Load, _ = c.graphicsLoad()

	state, err := c.ctrl.GetCtrlStatus(id)
	if err != nil {
		snapshot.Mode = "ERR"
	} else {
		snapshot.Mode = state.String()
	}
	return snapshot, nil
}
