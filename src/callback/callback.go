package callback

import (
	"fmt"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/olebedev/emitter"
	"github.com/sirupsen/logrus"
)

// Event topics emitted by a Callback.
const (
	// EventState carries (old nsm.State, new nsm.State).
	EventState = "state"

	// EventPeerState carries (peer string, nsm.State).
	EventPeerState = "peer"

	// EventVar carries the vars.Value written by a peer.
	EventVar = "var"
)

const (
	// DefaultTimeoutInterval is the period of the timeout hook.
	DefaultTimeoutInterval = 5 * time.Second

	eventCapacity = 32

	// StateVar is the read-only variable holding the state label.
	StateVar = "state"
)

// Callback is the base implementation of Handler. It handles the generic
// requests and nothing else.
type Callback struct {
	node     *nsm.Node
	com      *nsm.Communicator
	vars     *vars.Registry
	events   *emitter.Emitter
	interval time.Duration
	logger   *logrus.Entry
}

// New creates a Callback for node.
func New(node *nsm.Node, logger *logrus.Entry) *Callback {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	events := emitter.New(eventCapacity)
	// Events are delivered in order, and dropped when a listener lags.
	events.Use("*", emitter.Sync, emitter.Skip)

	return &Callback{
		node:     node,
		vars:     vars.NewRegistry(),
		events:   events,
		interval: DefaultTimeoutInterval,
		logger:   logger.WithField("node", node.Name()),
	}
}

// Node implements the Handler interface.
func (c *Callback) Node() *nsm.Node {
	return c.node
}

// Vars implements the Handler interface.
func (c *Callback) Vars() *vars.Registry {
	return c.vars
}

// Communicator returns the communicator attached by Init, or nil.
func (c *Callback) Communicator() *nsm.Communicator {
	return c.com
}

// Events returns the emitter of state and variable events.
func (c *Callback) Events() *emitter.Emitter {
	return c.events
}

// Logger ...
func (c *Callback) Logger() *logrus.Entry {
	return c.logger
}

// SetTimeoutInterval ...
func (c *Callback) SetTimeoutInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeoutInterval
	}
	c.interval = d
}

// TimeoutInterval implements the Handler interface.
func (c *Callback) TimeoutInterval() time.Duration {
	return c.interval
}

// Init implements the Handler interface. It attaches the communicator and
// publishes the state variable.
func (c *Callback) Init(com *nsm.Communicator) error {
	c.com = com
	c.vars.Put(vars.NewFunc(StateVar, vars.TextType, func() (vars.Value, error) {
		return vars.TextValue(StateVar, c.node.State().Label()), nil
	}, nil))
	c.logger.WithField("state", c.node.State()).Debug("Callback initialized")
	return nil
}

// Perform implements the Handler interface.
func (c *Callback) Perform(msg nsm.Message) bool {
	return c.PerformGeneric(msg)
}

// Timeout implements the Handler interface.
func (c *Callback) Timeout() {}

// Term implements the Handler interface.
func (c *Callback) Term() {
	c.events.Off("*")
}

// AddVar registers a named variable.
func (c *Callback) AddVar(h vars.Handler) error {
	return c.vars.Add(h)
}

// SetState changes the state of the node and emits EventState when it
// actually changed.
func (c *Callback) SetState(s nsm.State) {
	old := c.node.SetState(s)
	if old == s {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"from": old,
		"to":   s,
	}).Debug("State changed")
	c.events.Emit(EventState, old, s)
}

// Execute runs a state-changing command: the node enters transient, the
// action runs, and the node ends in target on success or in ERROR on
// failure. Exactly one reply is sent to the requester.
func (c *Callback) Execute(msg nsm.Message, transient, target nsm.State, action func() error) error {
	c.SetState(transient)

	err := c.safeRun(msg, action)
	if err != nil {
		c.SetState(nsm.ErrorES)
		c.logger.WithError(err).WithField("request", msg.Request()).Error("Command failed")
		c.ReplyError(msg, err.Error())
		return err
	}

	c.SetState(target)
	c.ReplyOK(msg)
	return nil
}

// safeRun recovers from a panicking hardware action so that the requester
// still gets its reply.
func (c *Callback) safeRun(msg nsm.Message, action func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.Errorf(common.HandlerErr, msg.Request(), "panic: %v", r)
		}
	}()
	if err = action(); err != nil {
		return common.NewError(common.HandlerErr, msg.Request(), err)
	}
	return nil
}

// Ignore drops a command that is not valid in the current state. Nothing is
// replied.
func (c *Callback) Ignore(msg nsm.Message) {
	c.logger.WithFields(logrus.Fields{
		"request": msg.Request(),
		"state":   c.node.State(),
		"from":    c.sender(msg),
	}).Warn("Command not valid in current state, ignored")
}

// ReplyOK acknowledges msg with the current state.
func (c *Callback) ReplyOK(msg nsm.Message) {
	if c.com == nil {
		return
	}
	if err := c.com.ReplyOK(msg); err != nil {
		c.logger.WithError(err).Warn("Cannot reply OK")
	}
}

// ReplyError reports the failure of msg.
func (c *Callback) ReplyError(msg nsm.Message, text string) {
	if c.com == nil {
		return
	}
	if err := c.com.ReplyError(msg, text); err != nil {
		c.logger.WithError(err).Warn("Cannot reply ERROR")
	}
}

// Reply sends resp back to the sender of msg.
func (c *Callback) Reply(msg nsm.Message, resp nsm.Message) {
	if c.com == nil {
		return
	}
	if err := c.com.Reply(msg, resp); err != nil {
		c.logger.WithError(err).WithField("request", resp.Request()).Warn("Cannot reply")
	}
}

// Send forwards msg to the named node.
func (c *Callback) Send(dest string, msg nsm.Message) error {
	if c.com == nil {
		return fmt.Errorf("node %s is not connected", c.node.Name())
	}
	return c.com.Send(dest, msg)
}

func (c *Callback) sender(msg nsm.Message) string {
	if c.com == nil {
		return fmt.Sprint(msg.Src())
	}
	if name := c.com.NodeName(msg.Src()); name != "" {
		return name
	}
	return fmt.Sprint(msg.Src())
}
