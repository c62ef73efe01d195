package nsm

import (
	"errors"
	"sync"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSelectTimeout is returned by Select when no communicator had a
	// message ready before the timeout.
	ErrSelectTimeout = errors.New("select timeout")

	// ErrContextClosed is returned by Select after Close.
	ErrContextClosed = errors.New("context closed")
)

// Context is the process-wide registry of communicators. It is created once
// by the daemon and shared with the event loop and the callbacks.
type Context struct {
	mu       sync.Mutex
	comms    []*Communicator
	next     int
	closed   bool
	notifyCh chan struct{}
	closeCh  chan struct{}
	logger   *logrus.Entry
}

// NewContext ...
func NewContext(logger *logrus.Entry) *Context {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &Context{
		notifyCh: make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
		logger:   logger,
	}
}

// Connect registers node on trans and adds the resulting communicator to
// the registry.
func (c *Context) Connect(node *Node, trans Transport) (*Communicator, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrContextClosed
	}

	com, err := newCommunicator(c, node, trans)
	if err != nil {
		return nil, common.NewError(common.ConnectionErr, "connect "+node.Name(), err)
	}

	c.mu.Lock()
	c.comms = append(c.comms, com)
	c.mu.Unlock()

	go com.pump()

	com.logger.WithField("addr", trans.LocalAddr()).Debug("Communicator registered")

	return com, nil
}

// Communicators returns the registered communicators.
func (c *Context) Communicators() []*Communicator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Communicator(nil), c.comms...)
}

// Communicator returns the communicator of the named local node, or nil.
func (c *Context) Communicator(name string) *Communicator {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, com := range c.comms {
		if com.node.Name() == name {
			return com
		}
	}
	return nil
}

func (c *Context) remove(com *Communicator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.comms {
		if cur == com {
			c.comms = append(c.comms[:i], c.comms[i+1:]...)
			if c.next > i {
				c.next--
			}
			break
		}
	}
	// A queue may still hold messages of the removed communicator; wake
	// up Select so it notices the registry changed.
	c.notify()
}

func (c *Context) notify() {
	select {
	case c.notifyCh <- struct{}{}:
	default:
	}
}

// ready returns the next communicator with a queued message, scanning the
// registry round-robin so that no connection starves the others.
func (c *Context) ready() *Communicator {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.comms)
	for k := 0; k < n; k++ {
		i := (c.next + k) % n
		if c.comms[i].HasQueue() {
			c.next = (i + 1) % n
			return c.comms[i]
		}
	}
	return nil
}

// Select waits up to timeout for a communicator with a message ready and
// returns it. After the timeout it returns ErrSelectTimeout. A timeout <= 0
// waits until a message arrives or the context is closed.
func (c *Context) Select(timeout time.Duration) (*Communicator, error) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	for {
		if com := c.ready(); com != nil {
			return com, nil
		}
		select {
		case <-c.notifyCh:
		case <-timer:
			if com := c.ready(); com != nil {
				return com, nil
			}
			return nil, ErrSelectTimeout
		case <-c.closeCh:
			return nil, ErrContextClosed
		}
	}
}

// Send forwards m to the named node through the first communicator that
// can resolve it.
func (c *Context) Send(dest string, m Message) error {
	for _, com := range c.Communicators() {
		if id := com.NodeID(dest); id >= 0 {
			return com.SendTo(uint16(id), m)
		}
	}
	return common.NewError(common.NotFoundErr, "send "+m.Request()+" to "+dest, ErrUnknownNode)
}

// Close closes every communicator and wakes up Select.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	comms := append([]*Communicator(nil), c.comms...)
	close(c.closeCh)
	c.mu.Unlock()

	for _, com := range comms {
		com.Close()
	}
	return nil
}
