package gpu_test

import (
	"testing"

	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/markusressel/nvfancontrol/internal/testingutils"
	"github.com/stretchr/testify/assert"
)

func TestParseDriverVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"550.54.14", 550.54},
		{"352.09", 352.09},
		{"390", 390},
		{" 470.256.02\n", 470.256},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			// WHEN
			result, err := gpu.ParseDriverVersion(tt.input)

			// THEN
			assert.NoError(t, err)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestParseDriverVersion_Invalid(t *testing.T) {
	// WHEN
	_, err := gpu.ParseDriverVersion("unknown")

	// THEN
	assert.ErrorContains(t, err, "unable to parse driver version 'unknown'")
}

func TestCheckDriverVersion(t *testing.T) {
	// GIVEN
	ctrl := testingutils.NewMockControl(40, 1)

	// WHEN
	version, err := gpu.CheckDriverVersion(ctrl)

	// THEN
	assert.NoError(t, err)
	assert.InDelta(t, 550.54, version, 0.0001)
}

func TestCheckDriverVersion_TooOld(t *testing.T) {
	// GIVEN
	ctrl := testingutils.NewMockControl(40, 1)
	ctrl.Version = "340.108"

	// WHEN
	_, err := gpu.CheckDriverVersion(ctrl)

	// THEN
	assert.ErrorContains(t, err, "unsupported driver version 340.11")
}
