package configuration

import (
	"fmt"

	"github.com/markusressel/nvfancontrol/internal/curves"
	"github.com/markusressel/nvfancontrol/internal/flicker"
	"github.com/markusressel/nvfancontrol/internal/gpu"
)

// CurvePoints are the (temperature, speed) points of a fan speed curve
type CurvePoints []curves.Point

type GpuConfig struct {
	ID      int             `json:"id" yaml:"id"`
	Enabled DefaultTrueBool `json:"enabled" yaml:"enabled"`
	Points  CurvePoints     `json:"points" yaml:"points"`
	// FanFlicker is the optional flicker range [minimum, start] in percent
	FanFlicker []uint16 `json:"fanflicker,omitempty" yaml:"fanflicker,omitempty"`
}

// DefaultPoints is the curve used when no configuration file exists
var DefaultPoints = CurvePoints{
	{Temp: 41, Speed: 20},
	{Temp: 49, Speed: 30},
	{Temp: 57, Speed: 45},
	{Temp: 66, Speed: 55},
	{Temp: 75, Speed: 63},
	{Temp: 78, Speed: 72},
	{Temp: 80, Speed: 80},
}

func DefaultGpuConfigs() []GpuConfig {
	points := make(CurvePoints, len(DefaultPoints))
	copy(points, DefaultPoints)
	return []GpuConfig{
		{
			ID:     0,
			Points: points,
		},
	}
}

// Curve creates the fan speed curve of this GPU
func (g *GpuConfig) Curve() (*curves.FanspeedCurve, error) {
	curve, err := curves.NewFanspeedCurve(g.Points)
	if err != nil {
		return nil, fmt.Errorf("gpu %d: invalid curve: %w", g.ID, err)
	}
	return curve, nil
}

// FlickerRange validates the configured flicker range against the given curve.
// The result is nil if no flicker range is configured.
func (g *GpuConfig) FlickerRange(curve *curves.FanspeedCurve, limits *gpu.Limits, maxTemp int) (*flicker.Range, error) {
	if len(g.FanFlicker) == 0 {
		return nil, nil
	}
	if len(g.FanFlicker) != 2 {
		return nil, fmt.Errorf("gpu %d: fanflicker must consist of exactly two values [minimum, start], got %v", g.ID, g.FanFlicker)
	}
	rng, err := flicker.NewRangeWithMaxTemp(g.FanFlicker[0], g.FanFlicker[1], curve, limits, maxTemp)
	if err != nil {
		return nil, fmt.Errorf("gpu %d: %w", g.ID, err)
	}
	return rng, nil
}
