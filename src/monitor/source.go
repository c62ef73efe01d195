package monitor

import (
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
)

// Source reads the host sensors.
type Source interface {
	// Temperatures returns the sensor readings in degrees Celsius.
	Temperatures() (map[string]float64, error)

	// CPU returns the CPU usage in percent.
	CPU() (float64, error)

	// Memory returns the used memory in percent.
	Memory() (float64, error)

	// Load returns the one-minute load average.
	Load() (float64, error)
}

// HostSource reads the sensors of the local host.
type HostSource struct{}

// Temperatures implements the Source interface. Sensor keys are lowercased
// and spaces replaced by underscores.
func (HostSource) Temperatures() (map[string]float64, error) {
	stats, err := host.SensorsTemperatures()
	res := make(map[string]float64, len(stats))
	for _, s := range stats {
		key := strings.ToLower(strings.Replace(s.SensorKey, " ", "_", -1))
		res[key] = s.Temperature
	}
	// Partial readings come with a warning error.
	if err != nil && len(res) == 0 {
		return nil, err
	}
	return res, nil
}

// CPU implements the Source interface.
func (HostSource) CPU() (float64, error) {
	p, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	return p[0], nil
}

// Memory implements the Source interface.
func (HostSource) Memory() (float64, error) {
	m, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return m.UsedPercent, nil
}

// Load implements the Source interface.
func (HostSource) Load() (float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}
