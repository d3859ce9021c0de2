package ui

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
)

func ExamplePrintfln() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Printfln("Using GPU %d", 0)
	// Output:
	// Using GPU 0
}

func ExampleDebug() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()
	SetDebugEnabled(true)
	defer SetDebugEnabled(false)

	Debug("Temp: %d; Mode: %s", 45, "Manual")
	// Output:
	// DEBUG: Temp: 45; Mode: Manual
}

func ExampleInfo() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Info("Trying to prevent fan flickering in range [%d, %d]", 20, 40)
	// Output:
	// INFO: Trying to prevent fan flickering in range [20, 40]
}

func ExampleWarning() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Warning("No configuration file found, using default curve for GPU %d", 0)
	// Output:
	// WARNING: No configuration file found, using default curve for GPU 0
}

func ExampleError() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	Error("Error in controller for GPU %d: %v", 1, errors.New("driver hiccup"))
	// Output:
	// ERROR: Error in controller for GPU 1: driver hiccup
}
