package monitor

import (
	"sort"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/sirupsen/logrus"
)

// Variable names.
const (
	TempPrefix = "temp."
	AlarmVar   = "temp.alarm"
	CPUVar     = "sys.cpu"
	MemVar     = "sys.mem"
	LoadVar    = "sys.load"
)

// Monitor is the callback of a monitor node.
type Monitor struct {
	*callback.Callback

	source  Source
	sensors map[string]bool
	alarm   *vars.Var
	temps   map[string]*vars.Var
	sys     map[string]*vars.Var
}

var _ callback.Handler = (*Monitor)(nil)

// New returns a monitor node named name. When sensors is not empty only the
// listed sensors are published. alarm is the initial threshold.
func New(name string, source Source, sensors []string, alarm float64, logger *logrus.Entry) *Monitor {
	m := &Monitor{
		Callback: callback.New(nsm.NewNode(name, nsm.RunningS), logger),
		source:   source,
		alarm:    vars.NewFloat(AlarmVar, alarm, true),
		temps:    make(map[string]*vars.Var),
		sys: map[string]*vars.Var{
			CPUVar:  vars.NewFloat(CPUVar, 0, false),
			MemVar:  vars.NewFloat(MemVar, 0, false),
			LoadVar: vars.NewFloat(LoadVar, 0, false),
		},
	}
	if len(sensors) > 0 {
		m.sensors = make(map[string]bool, len(sensors))
		for _, s := range sensors {
			m.sensors[s] = true
		}
	}
	return m
}

// Init implements the callback.Handler interface. It publishes the
// variables and takes a first reading.
func (m *Monitor) Init(com *nsm.Communicator) error {
	if err := m.Callback.Init(com); err != nil {
		return err
	}
	m.Vars().Put(vars.WithLogging(m.alarm, m.Logger()))
	for _, v := range m.sys {
		m.Vars().Put(vars.WithLogging(v, m.Logger()))
	}
	m.Timeout()
	return nil
}

// Timeout implements the callback.Handler interface.
func (m *Monitor) Timeout() {
	m.readSystem()

	temps, err := m.source.Temperatures()
	if err != nil {
		m.Logger().WithError(err).Warn("Cannot read temperatures")
		return
	}

	names := make([]string, 0, len(temps))
	for name := range temps {
		if m.sensors == nil || m.sensors[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		key := TempPrefix + name
		v, ok := m.temps[key]
		if !ok {
			v = vars.NewFloat(key, temps[name], false)
			m.temps[key] = v
			m.Vars().Put(vars.WithLogging(v, m.Logger()))
			continue
		}
		v.Update(vars.FloatValue(key, temps[name]))
	}

	m.checkAlarm(names, temps)
}

func (m *Monitor) readSystem() {
	read := map[string]func() (float64, error){
		CPUVar:  m.source.CPU,
		MemVar:  m.source.Memory,
		LoadVar: m.source.Load,
	}
	for name, f := range read {
		val, err := f()
		if err != nil {
			m.Logger().WithError(err).WithField("var", name).Debug("Cannot read")
			continue
		}
		m.sys[name].Update(vars.FloatValue(name, val))
	}
}

func (m *Monitor) checkAlarm(names []string, temps map[string]float64) {
	v, _ := m.alarm.Get()
	threshold := v.Float

	hot := ""
	if threshold > 0 {
		for _, name := range names {
			if temps[name] > threshold {
				hot = name
				break
			}
		}
	}

	state := m.Node().State()
	switch {
	case hot != "" && state == nsm.RunningS:
		m.Logger().WithFields(logrus.Fields{
			"sensor":      hot,
			"temperature": temps[hot],
			"alarm":       threshold,
		}).Error("Temperature alarm")
		m.SetState(nsm.ErrorES)
	case hot == "" && state == nsm.ErrorES:
		m.Logger().Info("Temperature alarm cleared")
		m.SetState(nsm.RunningS)
	}
}
