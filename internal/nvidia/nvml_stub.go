//go:build disable_nvml

package nvidia

import (
	"errors"

	"github.com/markusressel/nvfancontrol/internal/gpu"
)

const IsNvmlSupported = false

// New always fails, nvfancontrol was built without NVML support
func New() (gpu.Control, error) {
	return nil, errors.New("this version of nvfancontrol was built without NVIDIA (nvml) support")
}

// CleanupAtExit does nothing if nvfancontrol was compiled without NVML support
func CleanupAtExit() {
}
