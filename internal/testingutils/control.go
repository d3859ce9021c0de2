package testingutils

import (
	"fmt"
	"sync"

	"github.com/markusressel/nvfancontrol/internal/gpu"
)

// MockGpu is the state of a single GPU of a MockControl
type MockGpu struct {
	Adapter     string
	Temp        int
	State       gpu.ControlState
	Speeds      []int
	Rpms        []int
	Utilization map[string]int
}

// MockControl is an in-memory gpu.Control. Errors can be injected per operation
// and all commands are recorded.
type MockControl struct {
	mu sync.Mutex

	Version string
	Gpus    []*MockGpu

	TempErr        error
	CtrlStatusErr  error
	SetCtrlTypeErr error
	SetSpeedErr    error
	RpmErr         error
	UtilizationErr error

	// RpmFollowsSpeed makes every SetFanspeed also set the RPM to speed * 30
	RpmFollowsSpeed bool

	SpeedCommands []int
	CtrlCommands  []gpu.ControlState
	Closed        bool
}

// NewMockControl creates a mock with a single GPU with the given temperature and cooler count
func NewMockControl(temp int, coolers int) *MockControl {
	return &MockControl{
		Version: "550.54.14",
		Gpus: []*MockGpu{
			{
				Adapter:     "NVIDIA GeForce GTX 1080",
				Temp:        temp,
				State:       gpu.Auto,
				Speeds:      make([]int, coolers),
				Rpms:        make([]int, coolers),
				Utilization: map[string]int{gpu.UtilizationGraphics: 0, gpu.UtilizationMemory: 0},
			},
		},
	}
}

func (m *MockControl) getGpu(id int) (*MockGpu, error) {
	if id < 0 || id >= len(m.Gpus) {
		return nil, fmt.Errorf("%w: %d", gpu.ErrInvalidGpu, id)
	}
	return m.Gpus[id], nil
}

func (m *MockControl) getCooler(id int, cooler int) (*MockGpu, error) {
	g, err := m.getGpu(id)
	if err != nil {
		return nil, err
	}
	if cooler < 0 || cooler >= len(g.Speeds) {
		return nil, fmt.Errorf("%w: %d", gpu.ErrInvalidCooler, cooler)
	}
	return g, nil
}

// SetTemp changes the temperature of the given GPU
func (m *MockControl) SetTemp(id int, temp int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gpus[id].Temp = temp
}

// SetRpm changes the RPM of all coolers of the given GPU
func (m *MockControl) SetRpm(id int, rpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Gpus[id].Rpms {
		m.Gpus[id].Rpms[i] = rpm
	}
}

// SetUtilization changes a utilization domain of the given GPU, a negative load removes it
func (m *MockControl) SetUtilization(id int, domain string, load int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if load < 0 {
		delete(m.Gpus[id].Utilization, domain)
		return
	}
	m.Gpus[id].Utilization[domain] = load
}

// SetState changes the control state of the given GPU without recording a command
func (m *MockControl) SetState(id int, state gpu.ControlState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gpus[id].State = state
}

// LastSpeed returns the last commanded speed, or -1 if none was commanded
func (m *MockControl) LastSpeed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SpeedCommands) == 0 {
		return -1
	}
	return m.SpeedCommands[len(m.SpeedCommands)-1]
}

// State returns the current control state of the given GPU
func (m *MockControl) State(id int) gpu.ControlState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Gpus[id].State
}

func (m *MockControl) GetTemp(id int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TempErr != nil {
		return 0, m.TempErr
	}
	g, err := m.getGpu(id)
	if err != nil {
		return 0, err
	}
	return g.Temp, nil
}

func (m *MockControl) GetCtrlStatus(id int) (gpu.ControlState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CtrlStatusErr != nil {
		return gpu.Auto, m.CtrlStatusErr
	}
	g, err := m.getGpu(id)
	if err != nil {
		return gpu.Auto, err
	}
	return g.State, nil
}

func (m *MockControl) SetCtrlType(id int, state gpu.ControlState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetCtrlTypeErr != nil {
		return m.SetCtrlTypeErr
	}
	g, err := m.getGpu(id)
	if err != nil {
		return err
	}
	g.State = state
	m.CtrlCommands = append(m.CtrlCommands, state)
	return nil
}

func (m *MockControl) GetFanspeed(id int, cooler int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.getCooler(id, cooler)
	if err != nil {
		return 0, err
	}
	return g.Speeds[cooler], nil
}

func (m *MockControl) SetFanspeed(id int, cooler int, speed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetSpeedErr != nil {
		return m.SetSpeedErr
	}
	g, err := m.getCooler(id, cooler)
	if err != nil {
		return err
	}
	g.Speeds[cooler] = speed
	g.State = gpu.Manual
	if m.RpmFollowsSpeed {
		g.Rpms[cooler] = speed * 30
	}
	m.SpeedCommands = append(m.SpeedCommands, speed)
	return nil
}

func (m *MockControl) GetFanspeedRpm(id int, cooler int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RpmErr != nil {
		return 0, m.RpmErr
	}
	g, err := m.getCooler(id, cooler)
	if err != nil {
		return 0, err
	}
	return g.Rpms[cooler], nil
}

func (m *MockControl) GetUtilization(id int) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UtilizationErr != nil {
		return nil, m.UtilizationErr
	}
	g, err := m.getGpu(id)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int, len(g.Utilization))
	for k, v := range g.Utilization {
		result[k] = v
	}
	return result, nil
}

func (m *MockControl) GpuCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Gpus), nil
}

func (m *MockControl) GpuCoolers(id int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.getGpu(id)
	if err != nil {
		return nil, err
	}
	result := make([]int, len(g.Speeds))
	for i := range result {
		result[i] = i
	}
	return result, nil
}

func (m *MockControl) GetAdapter(id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.getGpu(id)
	if err != nil {
		return "", err
	}
	return g.Adapter, nil
}

func (m *MockControl) GetVersion() (string, error) {
	return m.Version, nil
}

func (m *MockControl) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
