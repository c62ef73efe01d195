package nsm

// Command is an integer-coded request type. The code travels in the frame
// header and the label in the frame body.
type Command uint16

// Generic commands understood by every node.
const (
	Unknown    Command = 0
	OK         Command = 1
	Error      Command = 2
	Fatal      Command = 3
	Log        Command = 4
	VGet       Command = 11
	VSet       Command = 12
	VReply     Command = 13
	VListGet   Command = 14
	StateCheck Command = 20
)

// High-voltage commands.
const (
	HVConfigure Command = 101
	HVStandby   Command = 102
	HVShoulder  Command = 103
	HVPeak      Command = 104
	HVRecover   Command = 105
	HVTurnOff   Command = 106
	HVTurnOn    Command = 107
	HVApply     Command = 108
)

// Run-control commands.
const (
	RCConfigure Command = 201
	RCLoad      Command = 202
	RCStart     Command = 203
	RCStop      Command = 204
	RCRecover   Command = 205
	RCResume    Command = 206
	RCPause     Command = 207
	RCAbort     Command = 208
	RCBoot      Command = 209
)

// System requests exchanged with the hub.
const (
	NSMRegister   Command = 0xF001
	NSMRegistered Command = 0xF002
	NSMNodeID     Command = 0xF003
	NSMNodeName   Command = 0xF004
)

var commandLabels = map[Command]string{
	Unknown:       "UNKNOWN",
	OK:            "OK",
	Error:         "ERROR",
	Fatal:         "FATAL",
	Log:           "LOG",
	VGet:          "VGET",
	VSet:          "VSET",
	VReply:        "VREPLY",
	VListGet:      "VLISTGET",
	StateCheck:    "STATECHECK",
	HVConfigure:   "HV_CONFIGURE",
	HVStandby:     "HV_STANDBY",
	HVShoulder:    "HV_SHOULDER",
	HVPeak:        "HV_PEAK",
	HVRecover:     "HV_RECOVER",
	HVTurnOff:     "HV_TURNOFF",
	HVTurnOn:      "HV_TURNON",
	HVApply:       "HV_APPLY",
	RCConfigure:   "RC_CONFIGURE",
	RCLoad:        "RC_LOAD",
	RCStart:       "RC_START",
	RCStop:        "RC_STOP",
	RCRecover:     "RC_RECOVER",
	RCResume:      "RC_RESUME",
	RCPause:       "RC_PAUSE",
	RCAbort:       "RC_ABORT",
	RCBoot:        "RC_BOOT",
	NSMRegister:   "NSM_REGISTER",
	NSMRegistered: "NSM_REGISTERED",
	NSMNodeID:     "NSM_NODEID",
	NSMNodeName:   "NSM_NODENAME",
}

var commandByLabel = func() map[string]Command {
	m := make(map[string]Command, len(commandLabels))
	for c, l := range commandLabels {
		m[l] = c
	}
	return m
}()

// CommandFromLabel returns the Command with the given label, or Unknown.
func CommandFromLabel(label string) Command {
	if c, ok := commandByLabel[label]; ok {
		return c
	}
	return Unknown
}

// Commands returns all the defined commands except Unknown.
func Commands() []Command {
	res := make([]Command, 0, len(commandLabels)-1)
	for c := range commandLabels {
		if c != Unknown {
			res = append(res, c)
		}
	}
	return res
}

// Label returns the canonical upper-case label used on the wire.
func (c Command) Label() string {
	if l, ok := commandLabels[c]; ok {
		return l
	}
	return commandLabels[Unknown]
}

// String ...
func (c Command) String() string {
	return c.Label()
}

// IsSystem reports whether c is a request handled by the hub itself.
func (c Command) IsSystem() bool {
	return c >= NSMRegister && c <= NSMNodeName
}

// Transitions is the state-transition table of one domain state machine.
type Transitions interface {
	// NextState is the stable state reached when the action of c succeeds.
	NextState(c Command) State

	// NextTState is the transient state entered when c is accepted while
	// the node is in state cur.
	NextTState(c Command, cur State) State
}
