package gpu

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/markusressel/nvfancontrol/internal/ui"
	"github.com/markusressel/nvfancontrol/internal/util"
)

var (
	gpuDirPattern     = regexp.MustCompile(`^gpu(\d+)$`)
	coolerFilePattern = regexp.MustCompile(`^fan(\d+)_speed$`)
)

// FileControl is a Control backed by plain files, mostly useful for testing
// without NVIDIA hardware. The expected layout below the base path is:
//
//	version                      driver version string
//	gpu<N>/name                  adapter name
//	gpu<N>/temp                  temperature in °C
//	gpu<N>/mode                  0 (Auto) or 1 (Manual)
//	gpu<N>/fan<C>_speed          speed in percent
//	gpu<N>/fan<C>_rpm            speed in RPM (optional, 0 if missing)
//	gpu<N>/utilization_<domain>  load in percent (optional)
type FileControl struct {
	Path string
}

func NewFileControl(path string) (*FileControl, error) {
	expanded, err := util.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		return nil, fmt.Errorf("file backend: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("file backend: %s is not a directory", expanded)
	}
	return &FileControl{Path: expanded}, nil
}

func (c *FileControl) gpuPath(gpu int, name string) (string, error) {
	dir := filepath.Join(c.Path, fmt.Sprintf("gpu%d", gpu))
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("%w: %d", ErrInvalidGpu, gpu)
	}
	return filepath.Join(dir, name), nil
}

func (c *FileControl) coolerPath(gpu int, cooler int, suffix string) (string, error) {
	path, err := c.gpuPath(gpu, fmt.Sprintf("fan%d_speed", cooler))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %d of gpu %d", ErrInvalidCooler, cooler, gpu)
	}
	return c.gpuPath(gpu, fmt.Sprintf("fan%d_%s", cooler, suffix))
}

func (c *FileControl) readInt(path string) (int, error) {
	value, err := util.ReadIntFromFile(path)
	if err != nil {
		return 0, fmt.Errorf("file backend: unable to read %s: %w", path, err)
	}
	return value, nil
}

func (c *FileControl) GetTemp(gpu int) (int, error) {
	path, err := c.gpuPath(gpu, "temp")
	if err != nil {
		return 0, err
	}
	return c.readInt(path)
}

func (c *FileControl) GetCtrlStatus(gpu int) (ControlState, error) {
	path, err := c.gpuPath(gpu, "mode")
	if err != nil {
		return Auto, err
	}
	value, err := util.ReadIntFromFile(path)
	if os.IsNotExist(err) {
		return Auto, nil
	}
	if err != nil {
		return Auto, fmt.Errorf("file backend: unable to read %s: %w", path, err)
	}
	switch ControlState(value) {
	case Auto, Manual:
		return ControlState(value), nil
	}
	return Auto, fmt.Errorf("file backend: unknown control state %d in %s", value, path)
}

func (c *FileControl) SetCtrlType(gpu int, state ControlState) error {
	path, err := c.gpuPath(gpu, "mode")
	if err != nil {
		return err
	}
	ui.Debug("Setting control state of gpu %d to %s", gpu, state)
	return util.WriteIntToFileAtomic(int(state), path)
}

func (c *FileControl) GetFanspeed(gpu int, cooler int) (int, error) {
	path, err := c.coolerPath(gpu, cooler, "speed")
	if err != nil {
		return 0, err
	}
	return c.readInt(path)
}

// SetFanspeed writes the speed and switches the GPU to Manual, like the driver does
func (c *FileControl) SetFanspeed(gpu int, cooler int, speed int) error {
	path, err := c.coolerPath(gpu, cooler, "speed")
	if err != nil {
		return err
	}
	if speed < MinSpeedValue || speed > MaxSpeedValue {
		return fmt.Errorf("speed %d out of range [%d, %d]", speed, MinSpeedValue, MaxSpeedValue)
	}
	if err = util.WriteIntToFileAtomic(speed, path); err != nil {
		return err
	}
	return c.SetCtrlType(gpu, Manual)
}

func (c *FileControl) GetFanspeedRpm(gpu int, cooler int) (int, error) {
	path, err := c.coolerPath(gpu, cooler, "rpm")
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}
	return c.readInt(path)
}

func (c *FileControl) GetUtilization(gpu int) (map[string]int, error) {
	dir, err := c.gpuPath(gpu, "")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	result := map[string]int{}
	for _, entry := range entries {
		domain, found := strings.CutPrefix(entry.Name(), "utilization_")
		if !found || entry.IsDir() {
			continue
		}
		value, err := c.readInt(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		result[domain] = value
	}
	return result, nil
}

func (c *FileControl) GpuCount() (int, error) {
	entries, err := os.ReadDir(c.Path)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() && gpuDirPattern.MatchString(entry.Name()) {
			count++
		}
	}
	return count, nil
}

func (c *FileControl) GpuCoolers(gpu int) ([]int, error) {
	dir, err := c.gpuPath(gpu, "")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var result []int
	for _, entry := range entries {
		match := coolerFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		result = append(result, id)
	}
	sort.Ints(result)
	return result, nil
}

func (c *FileControl) GetAdapter(gpu int) (string, error) {
	path, err := c.gpuPath(gpu, "name")
	if err != nil {
		return "", err
	}
	return util.ReadStringFromFile(path)
}

func (c *FileControl) GetVersion() (string, error) {
	return util.ReadStringFromFile(filepath.Join(c.Path, "version"))
}

func (c *FileControl) Close() error {
	return nil
}
