package config

import (
	"os"

	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/internal/configuration"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the effective configuration as YAML",
	Long:  `Prints the configuration including all default values, as used by the daemon.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		if _, err := global.LoadConfiguration(); err != nil {
			return err
		}

		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(configuration.CurrentConfig)
	},
}

func init() {
	Command.AddCommand(showCmd)
}
