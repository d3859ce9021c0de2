package statistics

import (
	"strconv"

	"github.com/markusressel/nvfancontrol/internal/gpu"
	"github.com/markusressel/nvfancontrol/internal/status"
	"github.com/prometheus/client_golang/prometheus"
)

const gpuSubsystem = "gpu"

// GpuCollector exposes the latest status snapshot, it never talks to the driver itself
type GpuCollector struct {
	store *status.Store

	temperature    *prometheus.Desc
	temperatureAvg *prometheus.Desc
	speed          *prometheus.Desc
	rpm            *prometheus.Desc
	load           *prometheus.Desc
	manual         *prometheus.Desc
}

func NewGpuCollector(store *status.Store) *GpuCollector {
	return &GpuCollector{
		store: store,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, gpuSubsystem, "temperature"),
			"Current temperature of the GPU in °C",
			[]string{"gpu"}, nil,
		),
		temperatureAvg: prometheus.NewDesc(prometheus.BuildFQName(namespace, gpuSubsystem, "temperature_avg"),
			"Rolling average of the temperature of the GPU in °C",
			[]string{"gpu"}, nil,
		),
		speed: prometheus.NewDesc(prometheus.BuildFQName(namespace, gpuSubsystem, "fan_speed"),
			"Current speed of the cooler in percent",
			[]string{"gpu", "cooler"}, nil,
		),
		rpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, gpuSubsystem, "fan_rpm"),
			"Current RPM value of the cooler",
			[]string{"gpu", "cooler"}, nil,
		),
		load: prometheus.NewDesc(prometheus.BuildFQName(namespace, gpuSubsystem, "load"),
			"Graphics utilization of the GPU in percent",
			[]string{"gpu"}, nil,
		),
		manual: prometheus.NewDesc(prometheus.BuildFQName(namespace, gpuSubsystem, "manual_mode"),
			"1 if the fans are controlled by nvfancontrol, 0 if by the driver",
			[]string{"gpu"}, nil,
		),
	}
}

func (collector *GpuCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
	ch <- collector.temperatureAvg
	ch <- collector.speed
	ch <- collector.rpm
	ch <- collector.load
	ch <- collector.manual
}

// Collect implements required collect function for all prometheus collectors
func (collector *GpuCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot, ok := collector.store.Get()
	if !ok {
		return
	}
	gpuId := strconv.Itoa(snapshot.Gpu)

	ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, float64(snapshot.Temperature), gpuId)
	ch <- prometheus.MustNewConstMetric(collector.temperatureAvg, prometheus.GaugeValue, snapshot.TemperatureAvg, gpuId)
	for i, speed := range snapshot.Speed {
		ch <- prometheus.MustNewConstMetric(collector.speed, prometheus.GaugeValue, float64(speed), gpuId, strconv.Itoa(i))
	}
	for i, rpm := range snapshot.Rpm {
		ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, float64(rpm), gpuId, strconv.Itoa(i))
	}
	if snapshot.Load >= 0 {
		ch <- prometheus.MustNewConstMetric(collector.load, prometheus.GaugeValue, float64(snapshot.Load), gpuId)
	}

	manual := 0.0
	if snapshot.Mode == gpu.Manual.String() {
		manual = 1
	}
	ch <- prometheus.MustNewConstMetric(collector.manual, prometheus.GaugeValue, manual, gpuId)
}
