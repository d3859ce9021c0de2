package cmd

import (
	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/spf13/cobra"
)

const version = "0.7.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nvfancontrol",
	Long:  `All software has versions. This is nvfancontrol's`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Printfln("%s", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
