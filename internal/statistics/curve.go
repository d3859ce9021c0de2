package statistics

import (
	"strconv"

	"github.com/markusressel/nvfancontrol/internal/controller"
	"github.com/markusressel/nvfancontrol/internal/status"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemCurve = "curve"

// CurveCollector exposes the speed the curve of a controller requests at the latest temperature
type CurveCollector struct {
	controllers []controller.GpuController
	store       *status.Store
	value       *prometheus.Desc
}

func NewCurveCollector(controllers []controller.GpuController, store *status.Store) *CurveCollector {
	return &CurveCollector{
		controllers: controllers,
		store:       store,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemCurve, "value"),
			"Speed in percent requested by the curve at the current temperature",
			[]string{"gpu"}, nil,
		),
	}
}

func (collector *CurveCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
}

// Collect implements required collect function for all prometheus collectors
func (collector *CurveCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot, ok := collector.store.Get()
	if !ok {
		return
	}
	for _, contr := range collector.controllers {
		if contr.GetGpu() != snapshot.Gpu {
			continue
		}
		value, defined := contr.GetCurve().SpeedY(snapshot.Temperature)
		if !defined {
			value = 0
		}
		ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, float64(value), strconv.Itoa(contr.GetGpu()))
	}
}
