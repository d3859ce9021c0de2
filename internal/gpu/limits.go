package gpu

import (
	"fmt"

	"github.com/markusressel/nvfancontrol/internal/util"
)

const (
	MinSpeedValue = 0
	MaxSpeedValue = 100
)

// Limits are global lower and upper bounds for fan speeds in percent
type Limits struct {
	Low  int `json:"low" yaml:"low"`
	High int `json:"high" yaml:"high"`
}

// NewLimits validates the given bounds
func NewLimits(low, high int) (*Limits, error) {
	if low < MinSpeedValue || low > MaxSpeedValue || high < MinSpeedValue || high > MaxSpeedValue {
		return nil, fmt.Errorf("limits [%d, %d] must be within [%d, %d]", low, high, MinSpeedValue, MaxSpeedValue)
	}
	if low > high {
		return nil, fmt.Errorf("lower limit %d is greater than upper limit %d", low, high)
	}
	return &Limits{Low: low, High: high}, nil
}

// Clamp restricts speed to [Low, High]
func (l Limits) Clamp(speed int) int {
	return util.Coerce(speed, l.Low, l.High)
}

func (l Limits) String() string {
	return fmt.Sprintf("[%d, %d]", l.Low, l.High)
}

type limitedControl struct {
	Control
	limits Limits
}

// NewLimitedControl wraps ctrl so that every speed is clamped to the given limits
// before it is sent to the driver. If limits is nil, ctrl is returned as is.
func NewLimitedControl(ctrl Control, limits *Limits) Control {
	if limits == nil {
		return ctrl
	}
	return &limitedControl{
		Control: ctrl,
		limits:  *limits,
	}
}

func (c *limitedControl) SetFanspeed(gpu int, cooler int, speed int) error {
	return c.Control.SetFanspeed(gpu, cooler, c.limits.Clamp(speed))
}
