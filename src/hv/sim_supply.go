package hv

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Default operating voltages of SimSupply.
const (
	DefaultStandbyVoltage  = 100.0
	DefaultShoulderVoltage = 800.0
	DefaultPeakVoltage     = 1800.0
)

// SimSupply is a software HV supply. Ramps are instantaneous.
type SimSupply struct {
	sync.Mutex

	channels []Channel
	levels   map[string]float64
	limit    float64
	current  float64
}

// NewSimSupply ...
func NewSimSupply(channels int) *SimSupply {
	s := &SimSupply{
		levels: map[string]float64{
			"standby":  DefaultStandbyVoltage,
			"shoulder": DefaultShoulderVoltage,
			"peak":     DefaultPeakVoltage,
		},
		limit: 2000,
	}
	s.reset(channels)
	return s
}

func (s *SimSupply) reset(n int) {
	s.channels = make([]Channel, n)
	for i := range s.channels {
		s.channels[i].Index = i
	}
}

// Configure implements the Driver interface.
func (s *SimSupply) Configure(channels int) error {
	s.Lock()
	defer s.Unlock()
	if channels <= 0 {
		return fmt.Errorf("invalid number of channels %d", channels)
	}
	s.reset(channels)
	return nil
}

// TurnOn implements the Driver interface.
func (s *SimSupply) TurnOn() error {
	s.Lock()
	defer s.Unlock()
	for i := range s.channels {
		if s.channels[i].Tripped {
			return fmt.Errorf("channel %d is tripped", i)
		}
	}
	for i := range s.channels {
		s.channels[i].On = true
	}
	return s.ramp(s.levels["standby"])
}

// TurnOff implements the Driver interface.
func (s *SimSupply) TurnOff() error {
	s.Lock()
	defer s.Unlock()
	for i := range s.channels {
		ch := &s.channels[i]
		ch.On = false
		ch.VSet, ch.VMon, ch.IMon = 0, 0, 0
	}
	return nil
}

// Standby implements the Driver interface.
func (s *SimSupply) Standby() error {
	return s.rampTo("standby")
}

// Shoulder implements the Driver interface.
func (s *SimSupply) Shoulder() error {
	return s.rampTo("shoulder")
}

// Peak implements the Driver interface.
func (s *SimSupply) Peak() error {
	return s.rampTo("peak")
}

// Recover implements the Driver interface.
func (s *SimSupply) Recover() error {
	s.Lock()
	defer s.Unlock()
	for i := range s.channels {
		s.channels[i] = Channel{Index: i}
	}
	return nil
}

// Apply implements the Driver interface. Keys are "standby", "shoulder",
// "peak" (level voltages), "limit" (maximum voltage), "voltage" (all
// channels), "ch<N>.voltage" and "ch<N>.trip" (1 trips the channel).
func (s *SimSupply) Apply(key, value string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("invalid value %q for %s", value, key)
	}

	s.Lock()
	defer s.Unlock()

	switch key {
	case "standby", "shoulder", "peak":
		if f > s.limit {
			return fmt.Errorf("%s voltage %v above limit %v", key, f, s.limit)
		}
		s.levels[key] = f
		return nil
	case "limit":
		s.limit = f
		return nil
	case "voltage":
		return s.ramp(f)
	}

	if strings.HasPrefix(key, "ch") {
		parts := strings.SplitN(key[2:], ".", 2)
		i, err := strconv.Atoi(parts[0])
		if err != nil || i < 0 || i >= len(s.channels) || len(parts) != 2 {
			return fmt.Errorf("unknown key %s", key)
		}
		ch := &s.channels[i]
		switch parts[1] {
		case "voltage":
			if f > s.limit {
				return fmt.Errorf("voltage %v above limit %v", f, s.limit)
			}
			ch.VSet = f
			if ch.On {
				ch.VMon = f
			}
			return nil
		case "trip":
			ch.Tripped = f != 0
			if ch.Tripped {
				ch.VMon, ch.IMon = 0, 0
			}
			return nil
		}
	}
	return fmt.Errorf("unknown key %s", key)
}

// Monitor implements the Driver interface.
func (s *SimSupply) Monitor() ([]Channel, error) {
	s.Lock()
	defer s.Unlock()
	return append([]Channel(nil), s.channels...), nil
}

func (s *SimSupply) rampTo(lvl string) error {
	s.Lock()
	defer s.Unlock()
	return s.ramp(s.levels[lvl])
}

func (s *SimSupply) ramp(v float64) error {
	if v > s.limit {
		return fmt.Errorf("voltage %v above limit %v", v, s.limit)
	}
	for i := range s.channels {
		ch := &s.channels[i]
		if !ch.On {
			return fmt.Errorf("channel %d is off", i)
		}
		if ch.Tripped {
			return fmt.Errorf("channel %d is tripped", i)
		}
		ch.VSet = v
		ch.VMon = v
		ch.IMon = v * 1e-3
	}
	return nil
}
