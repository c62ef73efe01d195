package rc

import (
	"fmt"

	"github.com/b2slc/slowcontrol/src/dbconfig"
	"go.uber.org/atomic"
)

// Driver operates the readout hardware of a run-control node. obj is nil
// when no configuration database is attached.
type Driver interface {
	Boot(obj *dbconfig.Object) error
	Load(obj *dbconfig.Object) error
	Configure(obj *dbconfig.Object) error
	Start(expno, runno int) error
	Stop() error
	Pause() error
	Resume() error
	Recover() error
	Abort() error

	// Monitor is called periodically while RUNNING. An error moves the
	// node to ERROR.
	Monitor() error
}

// SimReadout is a software readout that counts events while running.
type SimReadout struct {
	running *atomic.Bool
	events  *atomic.Uint64
	rate    uint64

	expno int
	runno int
	err   error
}

// NewSimReadout returns a readout producing rate events per Monitor call.
func NewSimReadout(rate uint64) *SimReadout {
	return &SimReadout{
		running: atomic.NewBool(false),
		events:  atomic.NewUint64(0),
		rate:    rate,
	}
}

// Boot implements the Driver interface.
func (s *SimReadout) Boot(obj *dbconfig.Object) error {
	s.err = nil
	return nil
}

// Load implements the Driver interface. A "rate" int field overrides the
// event rate.
func (s *SimReadout) Load(obj *dbconfig.Object) error {
	if obj != nil && obj.HasValue("rate") {
		rate, err := obj.GetInt("rate")
		if err != nil {
			return err
		}
		if rate < 0 {
			return fmt.Errorf("negative rate %d", rate)
		}
		s.rate = uint64(rate)
	}
	return nil
}

// Configure implements the Driver interface.
func (s *SimReadout) Configure(obj *dbconfig.Object) error {
	return s.Load(obj)
}

// Start implements the Driver interface.
func (s *SimReadout) Start(expno, runno int) error {
	s.expno, s.runno = expno, runno
	s.events.Store(0)
	s.running.Store(true)
	return nil
}

// Stop implements the Driver interface.
func (s *SimReadout) Stop() error {
	s.running.Store(false)
	return nil
}

// Pause implements the Driver interface.
func (s *SimReadout) Pause() error {
	s.running.Store(false)
	return nil
}

// Resume implements the Driver interface.
func (s *SimReadout) Resume() error {
	s.running.Store(true)
	return nil
}

// Recover implements the Driver interface.
func (s *SimReadout) Recover() error {
	s.err = nil
	s.running.Store(false)
	return nil
}

// Abort implements the Driver interface.
func (s *SimReadout) Abort() error {
	s.running.Store(false)
	return nil
}

// Monitor implements the Driver interface.
func (s *SimReadout) Monitor() error {
	if s.err != nil {
		return s.err
	}
	if s.running.Load() {
		s.events.Add(s.rate)
	}
	return nil
}

// Fail makes the next Monitor calls return err until Recover or Boot.
func (s *SimReadout) Fail(err error) {
	s.err = err
}

// Events returns the number of events of the current run.
func (s *SimReadout) Events() uint64 {
	return s.events.Load()
}

// Run returns the experiment and run numbers of the last START.
func (s *SimReadout) Run() (int, int) {
	return s.expno, s.runno
}
