package gpu

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all GPUs and their coolers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := openControl()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		version, err := ctrl.GetVersion()
		if err != nil {
			return err
		}
		ui.Printfln("Driver version: %s", version)

		count, err := ctrl.GpuCount()
		if err != nil {
			return err
		}

		var rows [][]string
		for id := 0; id < count; id++ {
			adapter, err := ctrl.GetAdapter(id)
			if err != nil {
				return err
			}
			coolers, err := ctrl.GpuCoolers(id)
			if err != nil {
				return err
			}
			temp := "N/A"
			if value, err := ctrl.GetTemp(id); err == nil {
				temp = strconv.Itoa(value)
			}
			mode := "N/A"
			if state, err := ctrl.GetCtrlStatus(id); err == nil {
				mode = state.String()
			}

			coolerIds := make([]string, len(coolers))
			for i, cooler := range coolers {
				coolerIds[i] = strconv.Itoa(cooler)
			}
			rows = append(rows, []string{
				strconv.Itoa(id), adapter, strings.Join(coolerIds, ", "), temp, mode,
			})
		}

		tab := table.Table{
			Headers: []string{"GPU", "Adapter", "Coolers", "Temp (°C)", "Mode"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			return tableErr
		}
		fmt.Print(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}
