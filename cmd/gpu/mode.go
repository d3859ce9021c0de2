package gpu

import (
	"fmt"
	"strings"

	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode [auto|manual]",
	Short: "Get/Set the current fan control mode of a GPU",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		ctrl, err := openControl()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		if len(args) > 0 {
			var state gpu.ControlState
			switch strings.ToLower(args[0]) {
			case "auto":
				state = gpu.Auto
			case "manual":
				state = gpu.Manual
			default:
				return fmt.Errorf("unknown mode: %s, must be one of: 'auto', 'manual'", args[0])
			}
			if err = ctrl.SetCtrlType(global.GpuId, state); err != nil {
				return err
			}
		}

		state, err := ctrl.GetCtrlStatus(global.GpuId)
		if err != nil {
			return err
		}
		switch state {
		case gpu.Auto:
			fmt.Printf("Automatic control by the driver (%s)\n", state)
		case gpu.Manual:
			fmt.Printf("Manual control, gives nvfancontrol control (%s)\n", state)
		default:
			fmt.Printf("Unknown (%s)\n", state)
		}
		return nil
	},
}

func init() {
	Command.AddCommand(modeCmd)
}
