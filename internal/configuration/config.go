package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	ConfigName = "nvfancontrol"
	// LegacyExtension is the extension of the plain text two column configuration format
	LegacyExtension = ".conf"
)

var supportedExtensions = []string{".toml", ".yaml", ".yml", ".json", LegacyExtension}

type Configuration struct {
	PollingRate time.Duration `json:"pollingRate" yaml:"pollingRate"`
	// Limits are the global lower and upper fan speed bounds in percent, empty to disable
	Limits      []int `json:"limits" yaml:"limits"`
	Force       bool  `json:"force" yaml:"force"`
	MonitorOnly bool  `json:"monitorOnly" yaml:"monitorOnly"`

	GracePeriod           time.Duration `json:"gracePeriod" yaml:"gracePeriod"`
	UtilizationThreshold  int           `json:"utilizationThreshold" yaml:"utilizationThreshold"`
	FlickerMaxTemp        int           `json:"flickerMaxTemp" yaml:"flickerMaxTemp"`
	TempRollingWindowSize int           `json:"tempRollingWindowSize" yaml:"tempRollingWindowSize"`

	StatusFile  string `json:"statusFile" yaml:"statusFile"`
	PrintStatus bool   `json:"printStatus" yaml:"printStatus"`

	Backend      BackendConfig      `json:"backend" yaml:"backend"`
	StatusServer StatusServerConfig `json:"statusServer" yaml:"statusServer"`
	Api          ApiConfig          `json:"api" yaml:"api"`
	Statistics   StatisticsConfig   `json:"statistics" yaml:"statistics"`

	Gpu []GpuConfig `json:"gpu" yaml:"gpu"`
}

var CurrentConfig Configuration

var configFile string

// InitConfig prepares viper, cfgFile may be empty to search the default locations.
func InitConfig(cfgFile string) {
	configFile = cfgFile
	viper.SetConfigName(ConfigName)
	viper.SetEnvPrefix(ConfigName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("PollingRate", 2*time.Second)
	viper.SetDefault("Limits", []int{20, 80})
	viper.SetDefault("Force", false)
	viper.SetDefault("MonitorOnly", false)
	viper.SetDefault("GracePeriod", 240*time.Second)
	viper.SetDefault("UtilizationThreshold", 25)
	viper.SetDefault("FlickerMaxTemp", 75)
	viper.SetDefault("TempRollingWindowSize", 10)
	viper.SetDefault("StatusFile", "")
	viper.SetDefault("PrintStatus", false)

	viper.SetDefault("Backend.Type", BackendNvml)
	viper.SetDefault("Backend.Path", "")

	viper.SetDefault("StatusServer.Enabled", false)
	viper.SetDefault("StatusServer.Host", "localhost")
	viper.SetDefault("StatusServer.Port", 12125)

	viper.SetDefault("Api.Enabled", false)
	viper.SetDefault("Api.Host", "localhost")
	viper.SetDefault("Api.Port", 9001)

	viper.SetDefault("Statistics.Enabled", false)
	viper.SetDefault("Statistics.Port", 9000)
}

// configDirs returns the directories searched for a configuration file, in order
func configDirs() []string {
	dirs := []string{"."}
	if home, err := homedir.Dir(); err == nil {
		dirs = append(dirs, home)
	} else {
		ui.Warning("Couldn't detect home directory: %v", err)
	}
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && len(xdg) > 0 {
		dirs = append(dirs, xdg)
	}
	return append(dirs, filepath.Join("/etc", ConfigName))
}

// DetectConfigFile returns the path of the configuration file to use,
// or an empty string if there is none.
func DetectConfigFile() string {
	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return configFile
		}
		return path
	}

	for _, dir := range configDirs() {
		for _, ext := range supportedExtensions {
			path := filepath.Join(dir, ConfigName+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// ReadConfigFile reads the detected configuration file into CurrentConfig.
// If no file can be found the built-in default curve is used for GPU 0.
// A file which is neither valid structured configuration nor looks like the
// legacy plain text format is an error.
func ReadConfigFile() (path string, err error) {
	path = DetectConfigFile()
	if path == "" {
		ui.Warning("No configuration file found, using the default curve")
		if err = LoadConfig(); err != nil {
			return "", err
		}
		CurrentConfig.Gpu = DefaultGpuConfigs()
		return "", nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return path, fmt.Errorf("could not open file: %w", err)
	}

	viper.SetConfigFile(path)
	if filepath.Ext(path) == LegacyExtension {
		viper.SetConfigType("toml")
	}

	if readErr := viper.ReadInConfig(); readErr != nil {
		// structured parsing failed, try the legacy format instead
		if !MightBeLegacy(string(content)) {
			return path, fmt.Errorf("config parsing failed: %w", readErr)
		}
		gpus, err := ParseLegacy(string(content))
		if err != nil {
			return path, err
		}
		ui.Info("Using legacy configuration file at: %s", path)
		if err = LoadConfig(); err != nil {
			return path, err
		}
		CurrentConfig.Gpu = gpus
		return path, nil
	}

	// this is only populated _after_ ReadInConfig()
	ui.Info("Using configuration file at: %s", viper.ConfigFileUsed())
	return path, LoadConfig()
}

// LoadConfig decodes the current viper state into CurrentConfig
func LoadConfig() error {
	var config Configuration
	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			CurvePointsHookFunc(),
			DefaultTrueBoolHookFunc(),
		),
	))
	if err != nil {
		return fmt.Errorf("unable to decode configuration: %w", err)
	}
	CurrentConfig = config
	return nil
}

// FindGpu returns the configuration of the given GPU if it exists and is enabled
func (c *Configuration) FindGpu(id int) (*GpuConfig, error) {
	for i := range c.Gpu {
		if c.Gpu[i].ID == id {
			if !c.Gpu[i].Enabled.Get() {
				break
			}
			return &c.Gpu[i], nil
		}
	}
	return nil, fmt.Errorf("no enabled configuration for GPU %d", id)
}
