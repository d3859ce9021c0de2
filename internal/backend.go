package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/markusressel/nvfancontrol/internal/api"
	"github.com/markusressel/nvfancontrol/internal/configuration"
	"github.com/markusressel/nvfancontrol/internal/controller"
	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/markusressel/nvfancontrol/internal/nvidia"
	"github.com/markusressel/nvfancontrol/internal/statistics"
	"github.com/markusressel/nvfancontrol/internal/status"
	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v4/process"
)

const shutdownTimeout = 5 * time.Second

// OpenControl opens the GPU backend selected in the given configuration
func OpenControl(config configuration.BackendConfig) (gpu.Control, error) {
	switch config.Type {
	case configuration.BackendNvml, "":
		return nvidia.New()
	case configuration.BackendFile:
		return gpu.NewFileControl(config.Path)
	}
	return nil, fmt.Errorf("unknown backend type: %s", config.Type)
}

// Daemon holds everything needed to control the fans of a single GPU
type Daemon struct {
	ctrl       gpu.Control
	controller controller.GpuController
	store      *status.Store
	config     *configuration.Configuration

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// NewDaemon validates the setup of the given GPU and creates its controller.
// On error the control is left open, it is owned by the caller.
func NewDaemon(ctrl gpu.Control, config *configuration.Configuration, gpuId int) (*Daemon, error) {
	version, err := gpu.CheckDriverVersion(ctrl)
	if err != nil {
		return nil, err
	}
	ui.Info("Using NVIDIA driver version %.2f", version)

	limits, err := config.GetLimits()
	if err != nil {
		return nil, err
	}
	gpuConfig, err := config.FindGpu(gpuId)
	if err != nil {
		return nil, err
	}
	curve, err := gpuConfig.Curve()
	if err != nil {
		return nil, err
	}
	rng, err := gpuConfig.FlickerRange(curve, limits, config.FlickerMaxTemp)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		ui.Info("Using fanflicker range %s for GPU %d", rng, gpuId)
	}
	if limits != nil {
		ui.Info("Limiting fan speeds of GPU %d to %s", gpuId, limits)
	}

	store := status.NewStore()
	params := controller.Params{
		Gpu:                   gpuId,
		Force:                 config.Force,
		MonitorOnly:           config.MonitorOnly,
		PollingRate:           config.PollingRate,
		GracePeriod:           config.GracePeriod,
		UtilizationThreshold:  config.UtilizationThreshold,
		TempRollingWindowSize: config.TempRollingWindowSize,
		StatusFile:            config.StatusFile,
	}
	if config.PrintStatus {
		params.StatusOutput = os.Stdout
	}

	limited := gpu.NewLimitedControl(ctrl, limits)
	contr, err := controller.NewGpuController(limited, curve, rng, store, params)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		ctrl:       ctrl,
		controller: contr,
		store:      store,
		config:     config,
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}, nil
}

// Run blocks until ctx is done or one of the actors fails
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controllers := []controller.GpuController{d.controller}
	statistics.Register(d.registerer, statistics.NewGpuCollector(d.store))
	statistics.Register(d.registerer, statistics.NewControllerCollector(controllers))
	statistics.Register(d.registerer, statistics.NewCurveCollector(controllers, d.store))

	var g run.Group
	{
		if d.config.Statistics.Enabled {
			// === Prometheus Exporter
			webserver := api.CreateWebserver()
			webserver.GET("/metrics/", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
				Gatherer: d.gatherer,
			}))
			addr := fmt.Sprintf(":%d", d.config.Statistics.Port)
			addServer(&g, "statistics server", webserver, addr, nil)
		}
	}
	{
		if d.config.Api.Enabled {
			// === REST API
			service := api.NewService(d.store, controllers, d.registerer, d.gatherer)
			addr := fmt.Sprintf("%s:%d", d.config.Api.Host, d.config.Api.Port)
			addServer(&g, "api", service.CreateRestService(), addr, service.CloseClients)
		}
	}
	{
		if d.config.StatusServer.Enabled {
			// === status server
			server, err := status.Listen(d.store, d.config.StatusServer.Host, d.config.StatusServer.Port)
			if err != nil {
				return err
			}
			g.Add(func() error {
				return server.Serve()
			}, func(err error) {
				_ = server.Close()
			})
		}
	}
	{
		// === fan controller
		g.Add(func() error {
			err := d.controller.Run(ctx)
			ui.Info("Controller for GPU %d stopped.", d.controller.GetGpu())
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Something went wrong: %v", err)
			}
			cancel()
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		stop := make(chan struct{})

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received SIGTERM signal, exiting...")
			case <-stop:
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			close(stop)
			cancel()
		})
	}

	return g.Run()
}

// addServer adds an actor serving webserver on addr to the group
func addServer(g *run.Group, name string, webserver *echo.Echo, addr string, beforeShutdown func()) {
	g.Add(func() error {
		ui.Info("Starting %s on %s", name, addr)
		err := webserver.Start(addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("cannot start %s: %w", name, err)
	}, func(err error) {
		ui.Info("Stopping %s...", name)
		if beforeShutdown != nil {
			beforeShutdown()
		}
		timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer timeoutCancel()
		if err := webserver.Shutdown(timeoutCtx); err != nil {
			ui.Warning("Error stopping %s: %v", name, err)
		}
	})
}

// RunDaemon controls the fans of the given GPU until the process is terminated
func RunDaemon(gpuId int) {
	config := &configuration.CurrentConfig

	if !config.MonitorOnly && config.Backend.Type != configuration.BackendFile {
		owner, err := getProcessOwner()
		if err != nil {
			ui.Fatal("Error checking process owner: %v", err)
		}
		if owner != "root" {
			ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run nvfancontrol as root")
		}
	}

	ctrl, err := OpenControl(config.Backend)
	if err != nil {
		ui.Fatal("Unable to initialize GPU backend: %v", err)
	}

	daemon, err := NewDaemon(ctrl, config, gpuId)
	if err != nil {
		_ = ctrl.Close()
		ui.ErrorAndNotify("nvfancontrol", "%v", err)
		os.Exit(1)
	}

	err = daemon.Run(context.Background())
	if closeErr := ctrl.Close(); closeErr != nil {
		ui.Warning("Error closing GPU backend: %v", closeErr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ui.Info("Done.")
}

func getProcessOwner() (string, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return "", err
	}
	return proc.Username()
}
