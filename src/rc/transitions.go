package rc

import "github.com/b2slc/slowcontrol/src/nsm"

type transitions struct{}

// Table is the run-control state-transition table.
var Table nsm.Transitions = transitions{}

// NextState implements nsm.Transitions.
func (transitions) NextState(c nsm.Command) nsm.State {
	switch c {
	case nsm.RCBoot, nsm.RCAbort:
		return nsm.NotReadyS
	case nsm.RCLoad, nsm.RCStop, nsm.RCRecover:
		return nsm.ReadyS
	case nsm.RCStart, nsm.RCResume:
		return nsm.RunningS
	case nsm.RCPause:
		return nsm.PausedS
	}
	return nsm.UnknownState
}

// NextTState implements nsm.Transitions.
func (transitions) NextTState(c nsm.Command, cur nsm.State) nsm.State {
	switch c {
	case nsm.RCBoot:
		return nsm.BootingTS
	case nsm.RCLoad:
		return nsm.LoadingTS
	case nsm.RCStart:
		return nsm.StartingTS
	case nsm.RCStop:
		return nsm.StoppingTS
	case nsm.RCPause:
		return nsm.PausingTS
	case nsm.RCResume:
		return nsm.ResumingTS
	case nsm.RCAbort:
		return nsm.AbortingTS
	case nsm.RCRecover:
		return nsm.RecoveringTS
	}
	return nsm.TransitionTS
}

// IsCommand reports whether c belongs to the run-control command set.
func IsCommand(c nsm.Command) bool {
	return c >= nsm.RCConfigure && c <= nsm.RCBoot
}

// valid reports whether c may run in state s. ABORT is always valid.
func valid(c nsm.Command, s nsm.State) bool {
	switch c {
	case nsm.RCAbort:
		return true
	case nsm.RCBoot, nsm.RCLoad:
		return s == nsm.NotReadyS
	case nsm.RCConfigure:
		return s == nsm.NotReadyS || s == nsm.ReadyS
	case nsm.RCStart:
		return s == nsm.ReadyS
	case nsm.RCStop:
		return s == nsm.RunningS || s == nsm.PausedS
	case nsm.RCPause:
		return s == nsm.RunningS
	case nsm.RCResume:
		return s == nsm.PausedS
	case nsm.RCRecover:
		return s.IsError()
	}
	return false
}
