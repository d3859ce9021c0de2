package curves

import (
	"errors"

	"github.com/markusressel/nvfancontrol/internal/util"
)

var (
	ErrInsufficientPoints = errors.New("not enough data points")
	ErrNotMonotonic       = errors.New("not monotonically increasing")
)

// Point maps a temperature (°C) to a fan speed (%)
type Point struct {
	Temp  uint16 `json:"temp" yaml:"temp" mapstructure:"temp"`
	Speed uint16 `json:"speed" yaml:"speed" mapstructure:"speed"`
}

// FanspeedCurve is an immutable, piecewise-linear temperature (x) to fan speed (y) mapping.
//
//	   ^
//	   |                             (3) +--------------->
//	f  |                                /
//	a  |                               /
//	n  |                           _.-+
//	s  |                     (2) +`
//	p  |
//	e  |                  +------o
//	e  |                 /
//	d  |                /
//	   |          (1) +
//	   +--------------------------------------------------->
//	                      temperature (°C)
//
// SpeedY is undefined below the first point (1). At a discontinuity (2) the
// larger value is used. Above the last point (3) the maximum speed is returned.
// TempX is undefined below the first and above the last speed.
type FanspeedCurve struct {
	points []Point
}

// NewFanspeedCurve validates the given points and creates a curve from them.
// Points must be non-decreasing in both temperature and speed.
func NewFanspeedCurve(points []Point) (*FanspeedCurve, error) {
	if len(points) <= 1 {
		return nil, ErrInsufficientPoints
	}
	for i := 1; i < len(points); i++ {
		p0, p1 := points[i-1], points[i]
		if p0.Temp > p1.Temp || p0.Speed > p1.Speed {
			return nil, ErrNotMonotonic
		}
	}
	return &FanspeedCurve{
		points: RemoveRedundantPoints(points),
	}, nil
}

// Points returns a copy of the (reduced) points of this curve
func (c *FanspeedCurve) Points() []Point {
	result := make([]Point, len(c.points))
	copy(result, c.points)
	return result
}

// MinSpeed is the lowest speed this curve ever requests
func (c *FanspeedCurve) MinSpeed() int {
	return int(c.first().Speed)
}

// MaxSpeed is the highest speed this curve ever requests
func (c *FanspeedCurve) MaxSpeed() int {
	return int(c.last().Speed)
}

// MinTemp is the lowest temperature with a defined speed
func (c *FanspeedCurve) MinTemp() int {
	return int(c.first().Temp)
}

// MaxTemp is the temperature from which on the maximum speed is used
func (c *FanspeedCurve) MaxTemp() int {
	return int(c.last().Temp)
}

// SpeedY returns the fan speed for the given temperature.
// ok is false if temp is below the first point of the curve.
func (c *FanspeedCurve) SpeedY(temp int) (speed int, ok bool) {
	last := c.last()
	// >= also prevents dx == 0 if the last two points share their temperature
	if temp >= int(last.Temp) {
		return int(last.Speed), true
	}
	if temp < int(c.first().Temp) {
		return 0, false
	}

	// iterating backwards guarantees dx > 0: the end of a vertical segment
	// always matches the start of the following one first
	for i := len(c.points) - 1; i > 0; i-- {
		p0, p1 := c.points[i-1], c.points[i]
		if temp >= int(p0.Temp) && temp <= int(p1.Temp) {
			if p0.Temp == p1.Temp {
				panic("vertical segment selected for interpolation")
			}
			return util.InterpolateLinear(temp, int(p0.Temp), int(p1.Temp), int(p0.Speed), int(p1.Speed)), true
		}
	}

	panic("temperature within curve bounds but no segment matched")
}

// TempX returns the temperature at which the given fan speed is requested.
// ok is false if speed is outside the speed range of the curve.
func (c *FanspeedCurve) TempX(speed int) (temp int, ok bool) {
	last := c.last()
	if speed == int(last.Speed) {
		return int(last.Temp), true
	}

	for i := len(c.points) - 1; i > 0; i-- {
		p0, p1 := c.points[i-1], c.points[i]
		if speed >= int(p0.Speed) && speed <= int(p1.Speed) {
			if p0.Speed == p1.Speed {
				panic("horizontal segment selected for interpolation")
			}
			return util.InterpolateLinear(speed, int(p0.Speed), int(p1.Speed), int(p0.Temp), int(p1.Temp)), true
		}
	}

	return 0, false
}

func (c *FanspeedCurve) first() Point {
	return c.points[0]
}

func (c *FanspeedCurve) last() Point {
	return c.points[len(c.points)-1]
}

// RemoveRedundantPoints removes the middle point of every three consecutive points
// that share either their temperature or their speed. Triples are taken from the
// original input, removals do not cause a re-scan.
func RemoveRedundantPoints(points []Point) []Point {
	redundant := make([]bool, len(points))
	for i := 1; i+1 < len(points); i++ {
		a, b, c := points[i-1], points[i], points[i+1]
		sameTemp := a.Temp == b.Temp && a.Temp == c.Temp
		sameSpeed := a.Speed == b.Speed && a.Speed == c.Speed
		if sameTemp || sameSpeed {
			redundant[i] = true
		}
	}

	result := make([]Point, 0, len(points))
	for i, p := range points {
		if !redundant[i] {
			result = append(result, p)
		}
	}
	return result
}
