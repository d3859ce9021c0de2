package gpu

import (
	"fmt"

	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var tempCmd = &cobra.Command{
	Use:   "temp",
	Short: "Get the current temperature of a GPU in °C",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		ctrl, err := openControl()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		temp, err := ctrl.GetTemp(global.GpuId)
		if err != nil {
			return err
		}
		fmt.Printf("%d\n", temp)
		return nil
	},
}

func init() {
	Command.AddCommand(tempCmd)
}
