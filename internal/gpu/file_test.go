package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func createFileControl(t *testing.T) *FileControl {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "version"), "550.54.14\n")
	writeFile(t, filepath.Join(dir, "gpu0", "name"), "NVIDIA GeForce GTX 1080\n")
	writeFile(t, filepath.Join(dir, "gpu0", "temp"), "57\n")
	writeFile(t, filepath.Join(dir, "gpu0", "fan0_speed"), "40\n")
	writeFile(t, filepath.Join(dir, "gpu0", "fan0_rpm"), "1200\n")
	writeFile(t, filepath.Join(dir, "gpu0", "fan1_speed"), "41\n")
	writeFile(t, filepath.Join(dir, "gpu0", "utilization_graphics"), "30\n")
	writeFile(t, filepath.Join(dir, "gpu0", "utilization_memory"), "12\n")
	writeFile(t, filepath.Join(dir, "gpu1", "temp"), "35\n")

	ctrl, err := NewFileControl(dir)
	require.NoError(t, err)
	return ctrl
}

func TestNewFileControl_Missing(t *testing.T) {
	_, err := NewFileControl(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFileControl_Read(t *testing.T) {
	// GIVEN
	ctrl := createFileControl(t)

	// WHEN
	temp, err := ctrl.GetTemp(0)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 57, temp)

	speed, err := ctrl.GetFanspeed(0, 1)
	assert.NoError(t, err)
	assert.Equal(t, 41, speed)

	rpm, err := ctrl.GetFanspeedRpm(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1200, rpm)

	// missing rpm file
	rpm, err = ctrl.GetFanspeedRpm(0, 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, rpm)

	adapter, err := ctrl.GetAdapter(0)
	assert.NoError(t, err)
	assert.Equal(t, "NVIDIA GeForce GTX 1080", adapter)

	version, err := ctrl.GetVersion()
	assert.NoError(t, err)
	assert.Equal(t, "550.54.14", version)
}

func TestFileControl_Enumeration(t *testing.T) {
	ctrl := createFileControl(t)

	count, err := ctrl.GpuCount()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	coolers, err := ctrl.GpuCoolers(0)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, coolers)

	coolers, err = ctrl.GpuCoolers(1)
	assert.NoError(t, err)
	assert.Empty(t, coolers)
}

func TestFileControl_Utilization(t *testing.T) {
	ctrl := createFileControl(t)

	utilization, err := ctrl.GetUtilization(0)

	assert.NoError(t, err)
	assert.Equal(t, map[string]int{UtilizationGraphics: 30, UtilizationMemory: 12}, utilization)

	utilization, err = ctrl.GetUtilization(1)
	assert.NoError(t, err)
	assert.Empty(t, utilization)
}

func TestFileControl_InvalidIds(t *testing.T) {
	ctrl := createFileControl(t)

	_, err := ctrl.GetTemp(2)
	assert.ErrorIs(t, err, ErrInvalidGpu)

	_, err = ctrl.GetFanspeed(0, 2)
	assert.ErrorIs(t, err, ErrInvalidCooler)

	err = ctrl.SetFanspeed(0, 5, 50)
	assert.ErrorIs(t, err, ErrInvalidCooler)
}

func TestFileControl_SetFanspeed(t *testing.T) {
	// GIVEN
	ctrl := createFileControl(t)
	state, err := ctrl.GetCtrlStatus(0)
	require.NoError(t, err)
	require.Equal(t, Auto, state)

	// WHEN
	err = ctrl.SetFanspeed(0, 0, 63)

	// THEN
	assert.NoError(t, err)
	speed, err := ctrl.GetFanspeed(0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 63, speed)
	state, err = ctrl.GetCtrlStatus(0)
	assert.NoError(t, err)
	assert.Equal(t, Manual, state)
}

func TestFileControl_SetFanspeed_OutOfRange(t *testing.T) {
	ctrl := createFileControl(t)

	assert.Error(t, ctrl.SetFanspeed(0, 0, 101))
	assert.Error(t, ctrl.SetFanspeed(0, 0, -1))
}

func TestFileControl_SetCtrlType(t *testing.T) {
	// GIVEN
	ctrl := createFileControl(t)

	// WHEN
	err := ctrl.SetCtrlType(0, Manual)
	require.NoError(t, err)
	err = ctrl.SetCtrlType(0, Auto)

	// THEN
	assert.NoError(t, err)
	state, err := ctrl.GetCtrlStatus(0)
	assert.NoError(t, err)
	assert.Equal(t, Auto, state)
}
