package statistics

import (
	"strconv"

	"github.com/markusressel/nvfancontrol/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type ControllerCollector struct {
	controllers []controller.GpuController

	ticks              *prometheus.Desc
	tickErrors         *prometheus.Desc
	graceHolds         *prometheus.Desc
	flickerCorrections *prometheus.Desc
}

func NewControllerCollector(controllers []controller.GpuController) *ControllerCollector {
	return &ControllerCollector{
		controllers: controllers,
		ticks: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "ticks_total"),
			"Number of control steps of this controller",
			[]string{"gpu"}, nil,
		),
		tickErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "tick_errors_total"),
			"Number of control steps which were abandoned due to an error",
			[]string{"gpu"}, nil,
		),
		graceHolds: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "grace_holds_total"),
			"Number of control steps which kept the fan running below the curve",
			[]string{"gpu"}, nil,
		),
		flickerCorrections: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "flicker_corrections_total"),
			"Number of speeds adjusted to prevent the fan from flickering",
			[]string{"gpu"}, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.ticks
	ch <- collector.tickErrors
	ch <- collector.graceHolds
	ch <- collector.flickerCorrections
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, contr := range collector.controllers {
		gpuId := strconv.Itoa(contr.GetGpu())
		stats := contr.GetStatistics()
		ch <- prometheus.MustNewConstMetric(collector.ticks, prometheus.CounterValue, float64(stats.Ticks), gpuId)
		ch <- prometheus.MustNewConstMetric(collector.tickErrors, prometheus.CounterValue, float64(stats.TickErrors), gpuId)
		ch <- prometheus.MustNewConstMetric(collector.graceHolds, prometheus.CounterValue, float64(stats.GraceHolds), gpuId)
		ch <- prometheus.MustNewConstMetric(collector.flickerCorrections, prometheus.CounterValue, float64(stats.FlickerCorrections), gpuId)
	}
}
