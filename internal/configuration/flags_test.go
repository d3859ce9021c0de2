package configuration

import (
	"testing"

	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/stretchr/testify/assert"
)

func TestParseLimits(t *testing.T) {
	limits, err := ParseLimits("20,80")
	assert.NoError(t, err)
	assert.Equal(t, []int{20, 80}, limits)

	limits, err = ParseLimits(" 0 , 100 ")
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 100}, limits)
}

func TestParseLimits_Disabled(t *testing.T) {
	limits, err := ParseLimits("0")

	assert.NoError(t, err)
	assert.Empty(t, limits)
}

func TestParseLimits_Invalid(t *testing.T) {
	for _, value := range []string{"", "20", "20,80,90", "a,80", "80,20", "-1,50", "20,101"} {
		_, err := ParseLimits(value)
		assert.Error(t, err, value)
	}
}

func TestParseFlickerRange(t *testing.T) {
	rng, err := ParseFlickerRange("20,40")
	assert.NoError(t, err)
	assert.Equal(t, []uint16{20, 40}, rng)

	_, err = ParseFlickerRange("20")
	assert.Error(t, err)
	_, err = ParseFlickerRange("20,-40")
	assert.Error(t, err)
	_, err = ParseFlickerRange("20,70000")
	assert.Error(t, err)
}

func TestGetLimits(t *testing.T) {
	config := Configuration{Limits: []int{20, 80}}
	limits, err := config.GetLimits()
	assert.NoError(t, err)
	assert.Equal(t, &gpu.Limits{Low: 20, High: 80}, limits)

	config = Configuration{Limits: []int{}}
	limits, err = config.GetLimits()
	assert.NoError(t, err)
	assert.Nil(t, limits)

	config = Configuration{Limits: []int{20}}
	_, err = config.GetLimits()
	assert.Error(t, err)
}
