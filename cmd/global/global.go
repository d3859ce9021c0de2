package global

import (
	"github.com/markusressel/nvfancontrol/internal/configuration"
)

var (
	CfgFile string
	NoColor bool
	NoStyle bool
	Verbose bool

	// GpuId is the index of the GPU to work with
	GpuId int
)

// LoadConfiguration reads and validates the configuration file selected by the root command
func LoadConfiguration() (path string, err error) {
	path, err = configuration.ReadConfigFile()
	if err != nil {
		return path, err
	}
	return path, configuration.Validate()
}
