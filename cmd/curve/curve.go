package curve

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/nvfancontrol/cmd/global"
	"github.com/markusressel/nvfancontrol/internal/configuration"
	"github.com/markusressel/nvfancontrol/internal/curves"
	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var Command = &cobra.Command{
	Use:   "curve",
	Short: "Print the fan speed curve of a GPU to console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := global.LoadConfiguration(); err != nil {
			return err
		}

		gpuConfig, err := configuration.CurrentConfig.FindGpu(global.GpuId)
		if err != nil {
			return err
		}
		curve, err := gpuConfig.Curve()
		if err != nil {
			return err
		}
		limits, err := configuration.CurrentConfig.GetLimits()
		if err != nil {
			return err
		}
		rng, err := gpuConfig.FlickerRange(curve, limits, configuration.CurrentConfig.FlickerMaxTemp)
		if err != nil {
			return err
		}

		ui.Printfln("GPU %d", gpuConfig.ID)
		if rng != nil {
			ui.Printfln("Fanflicker range: %s", rng)
		}
		if limits != nil {
			ui.Printfln("Limits: %s", limits)
		}

		var buf bytes.Buffer
		if err := renderCurve(&buf, curve, !global.NoColor); err != nil {
			return err
		}
		ui.Printfln("%s", buf.String())

		return nil
	},
}

// renderCurve writes a table of the curve points followed by a graph of the whole curve
func renderCurve(w io.Writer, curve *curves.FanspeedCurve, color bool) error {
	var rows [][]string
	for _, point := range curve.Points() {
		rows = append(rows, []string{strconv.Itoa(int(point.Temp)), strconv.Itoa(int(point.Speed))})
	}
	tab := table.Table{
		Headers: []string{"Temperature (°C)", "Speed (%)"},
		Rows:    rows,
	}
	err := tab.WriteTable(w, &table.Config{
		ShowIndex:       false,
		Color:           color,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return err
	}

	caption := fmt.Sprintf("Speed (%%) from %d°C to %d°C", curve.MinTemp(), curve.MaxTemp())
	graph := asciigraph.Plot(graphValues(curve), asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
	_, err = fmt.Fprintf(w, "\n%s\n", graph)
	return err
}

// graphValues evaluates the curve for every temperature between its first and last point
func graphValues(curve *curves.FanspeedCurve) []float64 {
	values := make([]float64, 0, curve.MaxTemp()-curve.MinTemp()+1)
	for temp := curve.MinTemp(); temp <= curve.MaxTemp(); temp++ {
		speed, _ := curve.SpeedY(temp)
		values = append(values, float64(speed))
	}
	return values
}
