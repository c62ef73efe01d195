package nsm

// State is the state of a slow-control node. Every state belongs to one
// category: stable off-like, stable on-like, transition or error.
type State uint16

// Stable states.
const (
	UnknownState State = 0
	OffS         State = 1
	NotReadyS    State = 2
	ReadyS       State = 3
	RunningS     State = 4
	PausedS      State = 5
	StandbyS     State = 11
	ShoulderS    State = 12
	PeakS        State = 13
)

// Transition states, held while a hardware action is in progress.
const (
	TransitionTS  State = 20
	TurningOnTS   State = 21
	TurningOffTS  State = 22
	RampingUpTS   State = 23
	RampingDownTS State = 24
	RecoveringTS  State = 25
	BootingTS     State = 26
	LoadingTS     State = 27
	StartingTS    State = 28
	StoppingTS    State = 29
	PausingTS     State = 30
	ResumingTS    State = 31
	AbortingTS    State = 32
)

// Error states.
const (
	ErrorES State = 40
	FatalES State = 41
	TripES  State = 42
)

type stateKind uint8

const (
	kindUnknown stateKind = iota
	kindOff
	kindOn
	kindTransition
	kindError
)

type stateInfo struct {
	label string
	kind  stateKind
}

var stateTable = map[State]stateInfo{
	UnknownState:  {"UNKNOWN", kindUnknown},
	OffS:          {"OFF", kindOff},
	NotReadyS:     {"NOTREADY", kindOff},
	ReadyS:        {"READY", kindOn},
	RunningS:      {"RUNNING", kindOn},
	PausedS:       {"PAUSED", kindOn},
	StandbyS:      {"STANDBY", kindOn},
	ShoulderS:     {"SHOULDER", kindOn},
	PeakS:         {"PEAK", kindOn},
	TransitionTS:  {"TRANSITION", kindTransition},
	TurningOnTS:   {"TURNINGON", kindTransition},
	TurningOffTS:  {"TURNINGOFF", kindTransition},
	RampingUpTS:   {"RAMPINGUP", kindTransition},
	RampingDownTS: {"RAMPINGDOWN", kindTransition},
	RecoveringTS:  {"RECOVERING", kindTransition},
	BootingTS:     {"BOOTING", kindTransition},
	LoadingTS:     {"LOADING", kindTransition},
	StartingTS:    {"STARTING", kindTransition},
	StoppingTS:    {"STOPPING", kindTransition},
	PausingTS:     {"PAUSING", kindTransition},
	ResumingTS:    {"RESUMING", kindTransition},
	AbortingTS:    {"ABORTING", kindTransition},
	ErrorES:       {"ERROR", kindError},
	FatalES:       {"FATAL", kindError},
	TripES:        {"TRIP", kindError},
}

var stateByLabel = func() map[string]State {
	m := make(map[string]State, len(stateTable))
	for s, info := range stateTable {
		m[info.label] = s
	}
	return m
}()

// StateFromLabel returns the State with the given label, or UnknownState.
func StateFromLabel(label string) State {
	if s, ok := stateByLabel[label]; ok {
		return s
	}
	return UnknownState
}

// Label returns the canonical upper-case label used on the wire.
func (s State) Label() string {
	if info, ok := stateTable[s]; ok {
		return info.label
	}
	return stateTable[UnknownState].label
}

// String ...
func (s State) String() string {
	return s.Label()
}

// IsOff reports whether s is a stable off-like state.
func (s State) IsOff() bool {
	return stateTable[s].kind == kindOff
}

// IsOn reports whether s is a stable on-like state.
func (s State) IsOn() bool {
	return stateTable[s].kind == kindOn
}

// IsTransition reports whether s is a transient state.
func (s State) IsTransition() bool {
	return stateTable[s].kind == kindTransition
}

// IsError reports whether s is an error state.
func (s State) IsError() bool {
	return stateTable[s].kind == kindError
}

// IsStable reports whether s is a stable off-like or on-like state.
func (s State) IsStable() bool {
	return s.IsOff() || s.IsOn()
}

// IsKnown reports whether s is a defined state other than UnknownState.
func (s State) IsKnown() bool {
	_, ok := stateTable[s]
	return ok && s != UnknownState
}
