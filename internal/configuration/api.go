package configuration

type ApiConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
}

// StatusServerConfig configures the plain TCP server answering every connection
// with a single JSON line containing the latest status snapshot
type StatusServerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

const (
	BackendNvml = "nvml"
	BackendFile = "file"
)

// BackendConfig selects the driver used to control the GPU fans
type BackendConfig struct {
	// Type is one of "nvml" or "file"
	Type string `json:"type" yaml:"type"`
	// Path is the base directory of the "file" backend
	Path string `json:"path" yaml:"path"`
}
