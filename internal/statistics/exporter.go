package statistics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "nvfancontrol"
)

func Register(registerer prometheus.Registerer, collector prometheus.Collector) {
	registerer.MustRegister(collector)
}
