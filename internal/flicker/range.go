package flicker

import (
	"fmt"

	"github.com/markusressel/nvfancontrol/internal/curves"
	"github.com/markusressel/nvfancontrol/internal/gpu"
)

// DefaultMaxTemp is the highest temperature a flicker range may allow.
// Within the range speed adjustments are not instant, so the temperature
// might temporarily rise higher than the curve intends.
const DefaultMaxTemp = 75

const maxTempReason = "below the limit speed adjustments are not instant, so the temperature might temporarily rise higher"

type RangeErrorKind int

const (
	MinimumNotPositive RangeErrorKind = iota
	MinimumNotBelowStart
	OutsideLimits
	TempTooHigh
	StartUnreachable
)

// RangeError describes why a flicker range was rejected
type RangeError struct {
	Kind    RangeErrorKind
	Message string
}

func (e *RangeError) Error() string {
	return e.Message
}

// Range is a validated speed interval [Minimum, Start] in which a fan tends to flicker
type Range struct {
	// Minimum is the lowest speed the fan is still spinning at reliably
	Minimum int
	// Start is the speed below which the fan starts flickering
	Start int
}

// NewRange validates the given speed interval against the curve and optional global limits,
// using DefaultMaxTemp as the temperature ceiling.
func NewRange(minimum, start uint16, curve *curves.FanspeedCurve, limits *gpu.Limits) (*Range, error) {
	return NewRangeWithMaxTemp(minimum, start, curve, limits, DefaultMaxTemp)
}

// NewRangeWithMaxTemp validates the given speed interval.
// The temperature at which the curve requests the upper end of the range must not exceed maxTemp.
func NewRangeWithMaxTemp(minimum, start uint16, curve *curves.FanspeedCurve, limits *gpu.Limits, maxTemp int) (*Range, error) {
	m, s := int(minimum), int(start)

	if m < 1 {
		return nil, &RangeError{
			Kind:    MinimumNotPositive,
			Message: "fanflicker: `minimum` must be greater than zero",
		}
	}
	if m >= s {
		return nil, &RangeError{
			Kind:    MinimumNotBelowStart,
			Message: fmt.Sprintf("fanflicker: `minimum` (%d) not less than `starts` (%d)", m, s),
		}
	}
	if limits != nil && (m < limits.Low || s > limits.High) {
		return nil, &RangeError{
			Kind: OutsideLimits,
			Message: fmt.Sprintf("fanflicker range [%d, %d] not within general fan limits [%d, %d]",
				m, s, limits.Low, limits.High),
		}
	}

	temp, ok := curve.TempX(s)
	if !ok {
		return nil, &RangeError{
			Kind: StartUnreachable,
			Message: fmt.Sprintf("fanflicker: upper fanspeed limit of %d is unreachable with the given points, "+
				"so the safe temperature limit of %d°C can not be guaranteed: %s", s, maxTemp, maxTempReason),
		}
	}
	if temp > maxTemp {
		return nil, &RangeError{
			Kind: TempTooHigh,
			Message: fmt.Sprintf("fanflicker: upper fanspeed limit of %d allows a temperature of %d°C "+
				"which exceeds the safe limit of %d°C: %s", s, temp, maxTemp, maxTempReason),
		}
	}

	return &Range{
		Minimum: m,
		Start:   s,
	}, nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Minimum, r.Start)
}
