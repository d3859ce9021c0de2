package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	assert.Equal(t, 20, Coerce(5, 20, 80))
	assert.Equal(t, 80, Coerce(95, 20, 80))
	assert.Equal(t, 42, Coerce(42, 20, 80))
	assert.Equal(t, 0.5, Coerce(0.5, 0.0, 1.0))
}

func TestInterpolateLinear(t *testing.T) {
	// GIVEN
	expectedInputOutput := map[int]int{
		5:   0,
		30:  5,
		55:  10,
		80:  15,
		105: 20,
	}

	for input, output := range expectedInputOutput {
		// WHEN
		result := InterpolateLinear(input, 5, 105, 0, 20)

		// THEN
		assert.Equal(t, output, result)
	}
}

func TestInterpolateLinear_Truncates(t *testing.T) {
	// 57% of the way from 0 to 100 must not end up at 56 due to float rounding
	assert.Equal(t, 57, InterpolateLinear(57, 0, 100, 0, 100))
	// 1/3 of 10 is truncated
	assert.Equal(t, 3, InterpolateLinear(1, 0, 3, 0, 10))
}
