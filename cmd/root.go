package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/nvfancontrol/cmd/config"
	"github.com/markusressel/nvfancontrol/cmd/curve"
	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/cmd/gpu"
	"github.com/markusressel/nvfancontrol/internal"
	"github.com/markusressel/nvfancontrol/internal/configuration"
	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	limits      string
	force       bool
	monitorOnly bool
	fanFlicker  string
	jsonPort    int
	printStatus bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nvfancontrol",
	Short: "A daemon to control the fans of NVIDIA GPUs.",
	Long: `nvfancontrol is a simple daemon that controls the fans
of NVIDIA graphics cards based on a custom temperature curve.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupUi()
	},
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		printHeader()

		_, err := configuration.ReadConfigFile()
		if err != nil {
			ui.ErrorAndNotify("Config Error", "%v", err)
			os.Exit(1)
		}
		if err = applyFlags(cmd, &configuration.CurrentConfig); err != nil {
			ui.ErrorAndNotify("Config Error", "%v", err)
			os.Exit(1)
		}
		if err = configuration.Validate(); err != nil {
			ui.ErrorAndNotify("Config Validation Error", "%v", err)
			os.Exit(1)
		}

		internal.RunDaemon(global.GpuId)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is nvfancontrol.toml in ., $HOME, $XDG_CONFIG_HOME or /etc/nvfancontrol)")
	rootCmd.PersistentFlags().IntVarP(&global.GpuId, "gpu", "g", 0, "Index of the GPU to control")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	addDaemonFlags(rootCmd.Flags())

	rootCmd.AddCommand(config.Command)
	rootCmd.AddCommand(curve.Command)
	rootCmd.AddCommand(gpu.Command)
}

func addDaemonFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&limits, "limits", "l", "", "Lower and upper fan speed limits in percent as LOW,HIGH, 0 to disable")
	flags.BoolVarP(&force, "force", "f", false, "Always use the custom curve, even if the driver already controls the fans")
	flags.BoolVarP(&monitorOnly, "monitor-only", "m", false, "Only monitor the GPU, never change any fan settings")
	flags.StringVarP(&fanFlicker, "fanflicker", "t", "", "Speed range MINIMUM,START in which the fans tend to flicker")
	flags.IntVarP(&jsonPort, "json-port", "j", 0, "Enable the status server on the given port")
	flags.BoolVarP(&printStatus, "print", "p", false, "Print the status as JSON to stdout on every update")
}

// applyFlags overrides the configuration with all explicitly given flags
func applyFlags(cmd *cobra.Command, config *configuration.Configuration) error {
	flags := cmd.Flags()
	if flags.Changed("limits") {
		parsed, err := configuration.ParseLimits(limits)
		if err != nil {
			return err
		}
		config.Limits = parsed
	}
	if flags.Changed("force") {
		config.Force = force
	}
	if flags.Changed("monitor-only") {
		config.MonitorOnly = monitorOnly
	}
	if flags.Changed("fanflicker") {
		parsed, err := configuration.ParseFlickerRange(fanFlicker)
		if err != nil {
			return err
		}
		gpuConfig, err := config.FindGpu(global.GpuId)
		if err != nil {
			return err
		}
		gpuConfig.FanFlicker = parsed
	}
	if flags.Changed("json-port") {
		config.StatusServer.Enabled = true
		config.StatusServer.Port = jsonPort
	}
	if flags.Changed("print") {
		config.PrintStatus = printStatus
	}
	return nil
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("nv", pterm.NewStyle(pterm.FgLightGreen)),
		pterm.NewLettersFromStringWithStyle("fan", pterm.NewStyle(pterm.FgWhite)),
	).Render()
	if err != nil {
		fmt.Println("nvfancontrol")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
