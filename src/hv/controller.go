package hv

import (
	"fmt"
	"strings"
	"sync"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/sirupsen/logrus"
)

// DefaultChannels is the number of channels configured at start-up.
const DefaultChannels = 4

// Controller is the callback of an HV node.
type Controller struct {
	*callback.Callback

	driver   Driver
	channels int

	monLock sync.Mutex
	mon     []Channel
}

var _ callback.Handler = (*Controller)(nil)

// NewController returns a controller for a node named name, driving d. The
// node starts OFF.
func NewController(name string, d Driver, channels int, logger *logrus.Entry) *Controller {
	if channels <= 0 {
		channels = DefaultChannels
	}
	return &Controller{
		Callback: callback.New(nsm.NewNode(name, nsm.OffS), logger),
		driver:   d,
		channels: channels,
	}
}

// Init implements the callback.Handler interface. It publishes the channel
// variables.
func (c *Controller) Init(com *nsm.Communicator) error {
	if err := c.Callback.Init(com); err != nil {
		return err
	}
	c.Vars().Put(vars.NewFunc("nch", vars.IntType, func() (vars.Value, error) {
		return vars.IntValue("nch", int32(c.channels)), nil
	}, nil))
	c.publishChannels()
	return nil
}

func (c *Controller) publishChannels() {
	for _, name := range c.Vars().Names() {
		if strings.HasPrefix(name, "ch") {
			c.Vars().Remove(name)
		}
	}
	for i := 0; i < c.channels; i++ {
		i := i
		c.Vars().Put(vars.WithLogging(vars.NewFunc(
			fmt.Sprintf("ch%d.vset", i),
			vars.FloatType,
			func() (vars.Value, error) {
				return vars.FloatValue(fmt.Sprintf("ch%d.vset", i), c.channel(i).VSet), nil
			},
			func(v vars.Value) error {
				return c.driver.Apply(fmt.Sprintf("ch%d.voltage", i), v.Format())
			},
		), c.Logger()))
		c.Vars().Put(vars.NewFunc(fmt.Sprintf("ch%d.vmon", i), vars.FloatType, func() (vars.Value, error) {
			return vars.FloatValue(fmt.Sprintf("ch%d.vmon", i), c.channel(i).VMon), nil
		}, nil))
		c.Vars().Put(vars.NewFunc(fmt.Sprintf("ch%d.imon", i), vars.FloatType, func() (vars.Value, error) {
			return vars.FloatValue(fmt.Sprintf("ch%d.imon", i), c.channel(i).IMon), nil
		}, nil))
	}
}

func (c *Controller) channel(i int) Channel {
	c.monLock.Lock()
	defer c.monLock.Unlock()
	if i < len(c.mon) {
		return c.mon[i]
	}
	return Channel{Index: i}
}

// Perform implements the callback.Handler interface.
func (c *Controller) Perform(msg nsm.Message) bool {
	if c.PerformGeneric(msg) {
		return true
	}

	cmd := msg.Command()
	if !IsCommand(cmd) {
		return false
	}

	state := c.Node().State()
	switch {
	case cmd == nsm.HVApply:
		c.apply(msg)
	case cmd == nsm.HVTurnOff:
		c.Execute(msg, Table.NextTState(cmd, state), Table.NextState(cmd), c.driver.TurnOff)
	case cmd == nsm.HVConfigure && state.IsOff():
		c.Execute(msg, nsm.TransitionTS, state, c.configure)
	case cmd == nsm.HVTurnOn && state.IsOff():
		c.Execute(msg, Table.NextTState(cmd, state), Table.NextState(cmd), c.driver.TurnOn)
	case cmd == nsm.HVStandby && state.IsOn():
		c.Execute(msg, Table.NextTState(cmd, state), Table.NextState(cmd), c.driver.Standby)
	case cmd == nsm.HVShoulder && state.IsOn():
		c.Execute(msg, Table.NextTState(cmd, state), Table.NextState(cmd), c.driver.Shoulder)
	case cmd == nsm.HVPeak && state.IsOn():
		c.Execute(msg, Table.NextTState(cmd, state), Table.NextState(cmd), c.driver.Peak)
	case cmd == nsm.HVRecover && state.IsError():
		c.Execute(msg, Table.NextTState(cmd, state), Table.NextState(cmd), c.driver.Recover)
	default:
		c.Ignore(msg)
	}
	return true
}

func (c *Controller) configure() error {
	if err := c.driver.Configure(c.channels); err != nil {
		return err
	}
	c.publishChannels()
	return nil
}

// apply sets the key=value pairs of the payload. The state is left alone.
func (c *Controller) apply(msg nsm.Message) {
	pairs, err := ParseApply(msg.Text())
	if err != nil {
		c.Logger().WithError(err).Warn("Malformed APPLY")
		c.ReplyError(msg, err.Error())
		return
	}
	for _, p := range pairs {
		if err := c.driver.Apply(p.Key, p.Value); err != nil {
			c.Logger().WithError(err).WithField("key", p.Key).Warn("APPLY refused")
			c.ReplyError(msg, err.Error())
			return
		}
		c.Logger().WithFields(logrus.Fields{
			"key":   p.Key,
			"value": p.Value,
		}).Info("APPLY")
	}
	c.ReplyOK(msg)
}

// Timeout implements the callback.Handler interface. It refreshes the
// channel read-back and moves the node to TRIP when a channel tripped while
// the supply was on.
func (c *Controller) Timeout() {
	mon, err := c.driver.Monitor()
	if err != nil {
		c.Logger().WithError(err).Warn("Monitor failed")
		return
	}

	c.monLock.Lock()
	c.mon = mon
	c.monLock.Unlock()

	state := c.Node().State()
	if !state.IsOn() {
		return
	}
	for _, ch := range mon {
		if ch.Tripped {
			c.Logger().WithField("channel", ch.Index).Error("Channel tripped")
			c.SetState(nsm.TripES)
			return
		}
	}
}

// Pair is one key=value assignment of an APPLY request.
type Pair struct {
	Key   string
	Value string
}

// ParseApply splits an APPLY payload into its assignments. Assignments are
// separated by newlines, semicolons or commas.
func ParseApply(s string) ([]Pair, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ';' || r == ','
	})
	var res []Pair
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return nil, fmt.Errorf("invalid assignment %q", f)
		}
		res = append(res, Pair{Key: strings.TrimSpace(kv[0]), Value: strings.TrimSpace(kv[1])})
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("empty APPLY")
	}
	return res, nil
}
