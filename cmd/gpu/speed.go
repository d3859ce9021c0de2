package gpu

import (
	"fmt"
	"strconv"

	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var speedCmd = &cobra.Command{
	Use:   "speed [PERCENT]",
	Short: "Get/Set the current speed of the coolers of a GPU in percent ([0..100])",
	Long:  `Setting a speed switches the GPU to manual fan control, use "gpu mode auto" to revert.`,
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		ctrl, err := openControl()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		coolers, err := selectedCoolers(ctrl)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			speed, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			if speed < gpu.MinSpeedValue || speed > gpu.MaxSpeedValue {
				return fmt.Errorf("speed %d is not within [%d, %d]", speed, gpu.MinSpeedValue, gpu.MaxSpeedValue)
			}
			if err = ctrl.SetCtrlType(global.GpuId, gpu.Manual); err != nil {
				return err
			}
			for _, cooler := range coolers {
				if err = ctrl.SetFanspeed(global.GpuId, cooler, speed); err != nil {
					return err
				}
			}
			return nil
		}

		for _, cooler := range coolers {
			speed, err := ctrl.GetFanspeed(global.GpuId, cooler)
			if err != nil {
				return err
			}
			rpm, err := ctrl.GetFanspeedRpm(global.GpuId, cooler)
			if err != nil {
				return err
			}
			fmt.Printf("%d: %d%% (%d RPM)\n", cooler, speed, rpm)
		}
		return nil
	},
}

func init() {
	Command.AddCommand(speedCmd)
}
