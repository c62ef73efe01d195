package hv

import "github.com/b2slc/slowcontrol/src/nsm"

type transitions struct{}

// Table is the HV state-transition table.
var Table nsm.Transitions = transitions{}

// level orders the operating states.
func level(s nsm.State) int {
	switch s {
	case nsm.StandbyS:
		return 1
	case nsm.ShoulderS:
		return 2
	case nsm.PeakS:
		return 3
	}
	return 0
}

// NextState implements nsm.Transitions.
func (transitions) NextState(c nsm.Command) nsm.State {
	switch c {
	case nsm.HVTurnOn, nsm.HVStandby:
		return nsm.StandbyS
	case nsm.HVShoulder:
		return nsm.ShoulderS
	case nsm.HVPeak:
		return nsm.PeakS
	case nsm.HVTurnOff, nsm.HVRecover:
		return nsm.OffS
	}
	return nsm.UnknownState
}

// NextTState implements nsm.Transitions.
func (t transitions) NextTState(c nsm.Command, cur nsm.State) nsm.State {
	switch c {
	case nsm.HVTurnOn:
		return nsm.TurningOnTS
	case nsm.HVTurnOff:
		return nsm.TurningOffTS
	case nsm.HVRecover:
		return nsm.RecoveringTS
	case nsm.HVStandby, nsm.HVShoulder, nsm.HVPeak:
		from, to := level(cur), level(t.NextState(c))
		switch {
		case to > from:
			return nsm.RampingUpTS
		case to < from:
			return nsm.RampingDownTS
		}
	}
	return nsm.TransitionTS
}

// IsCommand reports whether c belongs to the HV command set.
func IsCommand(c nsm.Command) bool {
	return c >= nsm.HVConfigure && c <= nsm.HVApply
}
