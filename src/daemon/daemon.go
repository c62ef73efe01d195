package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/publish"
	"github.com/b2slc/slowcontrol/src/service"
	"github.com/olebedev/emitter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// HandlerFactory builds the callback of the node. store is never nil.
type HandlerFactory func(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error)

// Daemon is a slow-control node daemon. Fields that are already set when
// Init is called are kept, which lets tests provide an in-memory transport
// or store.
type Daemon struct {
	Config       *config.Config
	Store        dbconfig.Store
	Transport    nsm.Transport
	Context      *nsm.Context
	Communicator *nsm.Communicator
	Handler      callback.Handler
	Service      *service.Service
	Publisher    *publish.Publisher

	factory HandlerFactory

	// loopLock is held while the callback runs, and by the status service
	// while it reads the node.
	loopLock sync.Mutex

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	logger *logrus.Entry
}

// NewDaemon ...
func NewDaemon(conf *config.Config, factory HandlerFactory) *Daemon {
	return &Daemon{
		Config:     conf,
		factory:    factory,
		shutdownCh: make(chan struct{}),
	}
}

func (d *Daemon) initStore() error {
	if d.Store != nil {
		return nil
	}

	if d.Config.DatabaseDir() == "" {
		d.Store = dbconfig.NewInmemStore()

		d.logger.Debug("created new in-mem config store")

		return nil
	}

	d.logger.WithField("path", d.Config.DatabaseDir()).Debug("Attempting to load or create config database")

	store, err := dbconfig.NewBadgerStore(d.Config.DatabaseDir())
	if err != nil {
		return err
	}
	d.Store = store

	return nil
}

func (d *Daemon) initHandler() error {
	h, err := d.factory(d.Config, d.Store, d.logger)
	if err != nil {
		return err
	}
	if s, ok := h.(interface{ SetTimeoutInterval(time.Duration) }); ok {
		s.SetTimeoutInterval(d.Config.Timeout())
	}
	d.Handler = h

	return nil
}

func (d *Daemon) initTransport() error {
	if d.Transport != nil {
		return nil
	}

	trans, err := nsm.NewTCPTransport(
		d.Config.HubAddr(),
		d.Config.Timeout(),
		d.logger.WithField("prefix", "nsm"),
	)
	if err != nil {
		return err
	}
	d.Transport = trans

	return nil
}

func (d *Daemon) initCommunicator() error {
	d.Context = nsm.NewContext(d.logger)

	com, err := d.Context.Connect(d.Handler.Node(), d.Transport)
	if err != nil {
		return err
	}
	d.Communicator = com

	if err := d.Handler.Init(com); err != nil {
		return fmt.Errorf("failed to initialize callback: %s", err)
	}

	return nil
}

func (d *Daemon) initService() error {
	if d.Config.Service.Listen == "" {
		return nil
	}

	h, ok := d.Handler.(service.Handler)
	if !ok {
		d.logger.Warn("Callback does not expose a status API")
		return nil
	}

	d.Service = service.NewService(d.Config.Service.Listen, d.Config.Service.MaxConns, h, d.logger)
	d.Service.ShareLock(&d.loopLock)

	return d.Service.Listen()
}

func (d *Daemon) initPublisher() error {
	if d.Config.MQTT.Broker == "" {
		return nil
	}

	src, ok := d.Handler.(interface{ Events() *emitter.Emitter })
	if !ok {
		d.logger.Warn("Callback does not emit events")
		return nil
	}

	pub, err := publish.NewMQTTPublisher(
		d.Config.MQTT.Broker,
		d.Config.MQTT.Topic,
		d.Config.NSM.NodeName,
		d.logger.WithField("prefix", "mqtt"),
	)
	if err != nil {
		return err
	}
	pub.Attach(src.Events())
	d.Publisher = pub

	return nil
}

// Init builds every part of the daemon.
func (d *Daemon) Init() error {
	if err := d.Config.Validate(); err != nil {
		return err
	}

	d.logger = d.Config.Logger()

	if err := d.initStore(); err != nil {
		return err
	}

	if err := d.initHandler(); err != nil {
		return err
	}

	if err := d.initTransport(); err != nil {
		return err
	}

	if err := d.initCommunicator(); err != nil {
		return err
	}

	if err := d.initService(); err != nil {
		return err
	}

	if err := d.initPublisher(); err != nil {
		return err
	}

	return nil
}

// Run runs the event loop, and the status service if any, until Shutdown or
// SIGINT/SIGTERM.
func (d *Daemon) Run() error {
	var g errgroup.Group

	g.Go(d.loop)

	if d.Service != nil {
		g.Go(d.Service.Serve)
	}

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			d.logger.WithField("signal", sig).Info("Shutting down")
			d.Shutdown()
		case <-d.shutdownCh:
		}
		return nil
	})

	return g.Wait()
}

// loop is the single-threaded event loop. It returns when the context is
// closed.
func (d *Daemon) loop() error {
	interval := d.Handler.TimeoutInterval()
	last := time.Now()

	d.logger.WithFields(logrus.Fields{
		"node":     d.Handler.Node().Name(),
		"state":    d.Handler.Node().State(),
		"interval": interval,
	}).Info("Event loop started")

	for {
		remaining := interval - time.Since(last)
		if remaining <= 0 {
			d.loopLock.Lock()
			d.Handler.Timeout()
			d.loopLock.Unlock()
			last = time.Now()
			continue
		}

		com, err := d.Context.Select(remaining)
		switch err {
		case nil:
			d.dispatch(com)
		case nsm.ErrSelectTimeout:
		case nsm.ErrContextClosed:
			d.logger.Debug("Event loop stopped")
			return nil
		default:
			return err
		}
	}
}

func (d *Daemon) dispatch(com *nsm.Communicator) {
	for {
		msg, ok := com.PopQueue()
		if !ok {
			return
		}
		d.loopLock.Lock()
		handled := d.Handler.Perform(msg)
		d.loopLock.Unlock()
		if !handled {
			d.logger.WithFields(logrus.Fields{
				"request": msg.Request(),
				"from":    com.NodeName(msg.Src()),
			}).Debug("Unhandled request")
		}
	}
}

// Shutdown stops the loop and releases every resource. It is safe to call
// more than once.
func (d *Daemon) Shutdown() {
	d.shutdownLock.Lock()
	defer d.shutdownLock.Unlock()

	if d.shutdown {
		return
	}
	d.shutdown = true
	close(d.shutdownCh)

	if d.logger != nil {
		d.logger.Debug("Shutdown")
	}

	if d.Context != nil {
		d.Context.Close()
	}
	if d.Service != nil {
		d.Service.Close()
	}
	if d.Handler != nil {
		d.Handler.Term()
	}
	if d.Publisher != nil {
		d.Publisher.Close()
	}
	if d.Store != nil {
		d.Store.Close()
	}
}
