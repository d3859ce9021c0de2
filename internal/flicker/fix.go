package flicker

import (
	"fmt"

	"github.com/markusressel/nvfancontrol/internal/ui"
)

const (
	// maximum speed increase per adjustment within the flicker range
	increment = 2
	// maximum speed decrease per adjustment within the flicker range
	decrement = 1
)

// Position of a speed relative to the flicker range
type Position int

const (
	Below Position = iota
	InRange
	Above
)

func (p Position) String() string {
	switch p {
	case Below:
		return "Below"
	case InRange:
		return "InRange"
	case Above:
		return "Above"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Direction of a requested speed change
type Direction int

const (
	Increase Direction = iota
	// Decrease also covers an unchanged speed
	Decrease
)

func (d Direction) String() string {
	if d == Increase {
		return "increase"
	}
	return "decrease"
}

// Fix keeps track of the previously set speed and smooths
// speed transitions through the flicker range of a fan.
type Fix struct {
	rng           Range
	previousSpeed int
}

func NewFix(rng Range, previousSpeed int) *Fix {
	ui.Debug("FanFlickerFix: setting previous speed to %d%%", previousSpeed)
	return &Fix{
		rng:           rng,
		previousSpeed: previousSpeed,
	}
}

// Minimum returns the lowest speed this fix will ever set on a spinning fan
func (f *Fix) Minimum() int {
	return f.rng.Minimum
}

// Range returns the flicker range of this fix
func (f *Fix) Range() Range {
	return f.rng
}

// PreviousSpeed returns the last speed returned by FixSpeed
func (f *Fix) PreviousSpeed() int {
	return f.previousSpeed
}

func (f *Fix) position(speed int) Position {
	switch {
	case speed < f.rng.Minimum:
		return Below
	case speed > f.rng.Start:
		return Above
	default:
		return InRange
	}
}

// FixSpeed checks whether the requested speed might cause the fan to flicker and adjusts it
// if necessary, taking the previously set speed into account. It only has an effect when
// requested is at or below the upper end of the flicker range, or when the fan is not spinning.
func (f *Fix) FixSpeed(currentRpm int, requested int) int {
	start := f.rng.Start
	minimum := f.rng.Minimum

	// the fan stopped, kick it back above the flicker range
	if currentRpm == 0 {
		f.previousSpeed = start
		ui.Debug("FanFlickerFix: flickering detected (RPM: 0), setting %d%%", f.previousSpeed)
		return f.previousSpeed
	}

	prev := f.previousSpeed
	from := f.position(prev)
	to := f.position(requested)
	dir := Decrease
	if requested > prev {
		dir = Increase
	}

	var newSpeed int
	switch {
	case to == Above:
		// only the flicker range is of interest
		newSpeed = requested

	case from == Below:
		// should not happen since RPM == 0 is handled above
		newSpeed = start

	case from == Above && dir == Increase,
		from == InRange && to == Below && dir == Increase:
		panic(fmt.Sprintf("FanFlickerFix: impossible speed change from %s (%d) to %s (%d) as %s",
			from, prev, to, requested, dir))

	case from == Above && to == InRange && dir == Decrease,
		from == Above && to == Below && dir == Decrease:
		// jumping down into (or through) the flicker range
		newSpeed = start

	case from == InRange && to == InRange && dir == Increase:
		// increasing also causes flickering, so slow down the speedup
		newSpeed = min(prev+increment, requested)

	case from == InRange && to == InRange && dir == Decrease:
		newSpeed = max(prev-decrement, requested)

	case from == InRange && to == Below && dir == Decrease:
		newSpeed = max(prev-decrement, minimum)

	default:
		panic(fmt.Sprintf("FanFlickerFix: unhandled speed change from %s to %s as %s", from, to, dir))
	}

	action := "setting"
	if newSpeed == prev {
		action = "staying at"
	}
	ui.Debug("FanFlickerFix %s: requested change from %s (%d) to %s (%d) (%s), %s %d%%",
		f.rng, from, prev, to, requested, dir, action, newSpeed)

	f.previousSpeed = newSpeed
	return newSpeed
}
