package gpu

import (
	"fmt"

	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/internal"
	"github.com/markusressel/nvfancontrol/internal/configuration"
	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/spf13/cobra"
)

var coolerId int

var Command = &cobra.Command{
	Use:              "gpu",
	Short:            "GPU related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().IntVarP(
		&coolerId,
		"cooler", "i",
		-1,
		"Cooler index, all coolers of the GPU if omitted",
	)
}

// openControl opens the configured backend, the caller has to close it
func openControl() (gpu.Control, error) {
	if _, err := configuration.ReadConfigFile(); err != nil {
		return nil, err
	}
	return internal.OpenControl(configuration.CurrentConfig.Backend)
}

// selectedCoolers returns the cooler given by flag, or all coolers of the selected GPU
func selectedCoolers(ctrl gpu.Control) ([]int, error) {
	if err := gpu.CheckGpu(ctrl, global.GpuId); err != nil {
		return nil, err
	}
	coolers, err := ctrl.GpuCoolers(global.GpuId)
	if err != nil {
		return nil, err
	}
	if coolerId < 0 {
		return coolers, nil
	}
	for _, cooler := range coolers {
		if cooler == coolerId {
			return []int{cooler}, nil
		}
	}
	return nil, fmt.Errorf("%w: %d of gpu %d", gpu.ErrInvalidCooler, coolerId, global.GpuId)
}
