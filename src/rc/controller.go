package rc

import (
	"strings"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ConfPrefix prefixes the variables published from the configuration.
const ConfPrefix = "conf."

// DefaultConfig is the configuration loaded when a request names none.
const DefaultConfig = "default"

// Controller is the callback of a run-control node.
type Controller struct {
	*callback.Callback

	driver        Driver
	store         dbconfig.Store
	defaultConfig string

	config *atomic.String
	expno  *atomic.Int32
	runno  *atomic.Int32
}

var _ callback.Handler = (*Controller)(nil)

// NewController returns a controller for a node named name. The node starts
// NOTREADY. store may be nil.
func NewController(name string, d Driver, store dbconfig.Store, defaultConfig string, logger *logrus.Entry) *Controller {
	if defaultConfig == "" {
		defaultConfig = DefaultConfig
	}
	return &Controller{
		Callback:      callback.New(nsm.NewNode(name, nsm.NotReadyS), logger),
		driver:        d,
		store:         store,
		defaultConfig: defaultConfig,
		config:        atomic.NewString(""),
		expno:         atomic.NewInt32(0),
		runno:         atomic.NewInt32(0),
	}
}

// Init implements the callback.Handler interface.
func (c *Controller) Init(com *nsm.Communicator) error {
	if err := c.Callback.Init(com); err != nil {
		return err
	}
	c.Vars().Put(vars.NewFunc("config", vars.TextType, func() (vars.Value, error) {
		return vars.TextValue("config", c.config.Load()), nil
	}, nil))
	c.Vars().Put(vars.NewFunc("expno", vars.IntType, func() (vars.Value, error) {
		return vars.IntValue("expno", c.expno.Load()), nil
	}, nil))
	c.Vars().Put(vars.NewFunc("runno", vars.IntType, func() (vars.Value, error) {
		return vars.IntValue("runno", c.runno.Load()), nil
	}, nil))
	return nil
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
	if !valid(cmd, state) {
		c.Ignore(msg)
		return true
	}

	next, trans := Table.NextState(cmd), Table.NextTState(cmd, state)

	switch cmd {
	case nsm.RCBoot:
		c.Execute(msg, trans, next, func() error {
			obj, err := c.load(msg.Text())
			if err != nil {
				return err
			}
			return c.driver.Boot(obj)
		})
	case nsm.RCLoad:
		c.Execute(msg, trans, next, func() error {
			obj, err := c.load(msg.Text())
			if err != nil {
				return err
			}
			return c.driver.Load(obj)
		})
	case nsm.RCConfigure:
		c.Execute(msg, trans, state, func() error {
			obj, err := c.load(msg.Text())
			if err != nil {
				return err
			}
			return c.driver.Configure(obj)
		})
	case nsm.RCStart:
		if msg.NParams() < 2 {
			c.Logger().Warn("RC_START without expno and runno")
			c.ReplyError(msg, "RC_START needs expno and runno")
			return true
		}
		expno, runno := msg.Param(0), msg.Param(1)
		c.Execute(msg, trans, next, func() error {
			if err := c.driver.Start(int(expno), int(runno)); err != nil {
				return err
			}
			c.expno.Store(expno)
			c.runno.Store(runno)
			c.Logger().WithFields(logrus.Fields{
				"expno": expno,
				"runno": runno,
			}).Info("Run started")
			return nil
		})
	case nsm.RCStop:
		c.Execute(msg, trans, next, c.driver.Stop)
	case nsm.RCPause:
		c.Execute(msg, trans, next, c.driver.Pause)
	case nsm.RCResume:
		c.Execute(msg, trans, next, c.driver.Resume)
	case nsm.RCRecover:
		c.Execute(msg, trans, next, c.driver.Recover)
	case nsm.RCAbort:
		c.Execute(msg, trans, next, c.driver.Abort)
	}
	return true
}

// load fetches the named configuration and publishes its keys. It returns
// nil when no store is attached.
func (c *Controller) load(name string) (*dbconfig.Object, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.defaultConfig
	}
	if c.store == nil {
		c.config.Store(name)
		return nil, nil
	}

	obj, err := c.store.Get(c.Node().Name(), name)
	if err != nil {
		return nil, err
	}

	for _, n := range c.Vars().Names() {
		if strings.HasPrefix(n, ConfPrefix) {
			c.Vars().Remove(n)
		}
	}
	for key, f := range obj.Flatten() {
		c.Vars().Put(confVar(ConfPrefix+key, f))
	}
	c.config.Store(name)

	c.Logger().WithFields(logrus.Fields{
		"config": name,
		"keys":   len(obj.Fields),
	}).Debug("Configuration loaded")

	return obj, nil
}

func confVar(name string, f dbconfig.Field) vars.Handler {
	switch f.Type {
	case dbconfig.BoolField:
		v := int32(0)
		if f.Bool {
			v = 1
		}
		return vars.NewInt(name, v, false)
	case dbconfig.IntField:
		return vars.NewInt(name, int32(f.Int), false)
	case dbconfig.FloatField:
		return vars.NewFloat(name, f.Float, false)
	}
	return vars.NewText(name, f.Format(), false)
}

// Timeout implements the callback.Handler interface. A failing readout moves
// a running node to ERROR.
func (c *Controller) Timeout() {
	if c.Node().State() != nsm.RunningS {
		return
	}
	if err := c.driver.Monitor(); err != nil {
		c.Logger().WithError(common.NewError(common.HandlerErr, "monitor", err)).Error("Readout failed")
		c.SetState(nsm.ErrorES)
	}
}
