package nsm

import (
	"os"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	nodeCacheSize = 256

	// DefaultPeerStateTTL is how long a cached peer state is trusted.
	DefaultPeerStateTTL = 60 * time.Second
)

type nodeInfo struct {
	id  uint16
	pid int
}

// Communicator owns one transport connection on behalf of one local Node.
// It queues inbound messages until the event loop dispatches them, resolves
// peer names and keeps read-only copies of peer states.
type Communicator struct {
	ctx    *Context
	node   *Node
	trans  Transport
	id     uint16
	queue  *Queue
	nodes  *lru.Cache
	peers  *cache.Cache
	closed *atomic.Bool
	logger *logrus.Entry
}

func newCommunicator(ctx *Context, node *Node, trans Transport) (*Communicator, error) {
	id, err := trans.Register(node.Name(), os.Getpid())
	if err != nil {
		return nil, err
	}

	nodes, err := lru.New(nodeCacheSize)
	if err != nil {
		return nil, err
	}

	com := &Communicator{
		ctx:    ctx,
		node:   node,
		trans:  trans,
		id:     id,
		queue:  NewQueue(),
		nodes:  nodes,
		peers:  cache.New(DefaultPeerStateTTL, 2*DefaultPeerStateTTL),
		closed: atomic.NewBool(false),
		logger: ctx.logger.WithFields(logrus.Fields{
			"node": node.Name(),
			"id":   id,
		}),
	}

	return com, nil
}

// Node returns the local node this communicator speaks for.
func (c *Communicator) Node() *Node {
	return c.node
}

// ID returns the node id assigned by the hub.
func (c *Communicator) ID() uint16 {
	return c.id
}

// Transport ...
func (c *Communicator) Transport() Transport {
	return c.trans
}

// Send resolves the destination node and forwards m. It does not wait for
// a reply; replies arrive later as ordinary inbound messages.
func (c *Communicator) Send(dest string, m Message) error {
	info, err := c.lookup(dest)
	if err != nil {
		return common.NewError(common.NotFoundErr, "send "+m.Request()+" to "+dest, err)
	}
	return c.SendTo(info.id, m)
}

// SendTo forwards m to the node with the given id.
func (c *Communicator) SendTo(id uint16, m Message) error {
	if c.closed.Load() {
		return ErrTransportShutdown
	}
	err := c.trans.Send(m.WithDest(id).WithSource(c.id))
	if err != nil {
		c.logger.WithError(err).WithField("request", m.Request()).Debug("Send failed")
	}
	return err
}

// Reply sends resp back to the sender of req.
func (c *Communicator) Reply(req Message, resp Message) error {
	return c.SendTo(req.Src(), resp)
}

// ReplyOK acknowledges req. The payload carries the current state of the
// local node.
func (c *Communicator) ReplyOK(req Message) error {
	return c.Reply(req, NewCommandMessage(OK).WithText(c.node.State().Label()))
}

// ReplyError reports the failure of req with a descriptive text.
func (c *Communicator) ReplyError(req Message, text string) error {
	return c.Reply(req, NewCommandMessage(Error).WithText(text))
}

// NodeID returns the id of the named node, or -1 if it is unknown.
func (c *Communicator) NodeID(name string) int {
	info, err := c.lookup(name)
	if err != nil {
		return -1
	}
	return int(info.id)
}

// NodePID returns the process id of the named node, or -1 if it is unknown.
func (c *Communicator) NodePID(name string) int {
	info, err := c.lookup(name)
	if err != nil {
		return -1
	}
	return info.pid
}

// NodeName returns the name of the node with the given id, or "" if it is
// unknown.
func (c *Communicator) NodeName(id uint16) string {
	if id == c.id {
		return c.node.Name()
	}
	if v, ok := c.nodes.Get(id); ok {
		return v.(string)
	}
	name, err := c.trans.NodeName(id)
	if err != nil {
		return ""
	}
	c.nodes.Add(id, name)
	return name
}

// IsConnected reports whether the named node is currently registered. The
// answer always comes from the network, never from the cache.
func (c *Communicator) IsConnected(name string) bool {
	id, pid, err := c.trans.Lookup(name)
	if err != nil {
		c.nodes.Remove(name)
		return false
	}
	c.nodes.Add(name, nodeInfo{id: id, pid: pid})
	return true
}

func (c *Communicator) lookup(name string) (nodeInfo, error) {
	if v, ok := c.nodes.Get(name); ok {
		return v.(nodeInfo), nil
	}
	id, pid, err := c.trans.Lookup(name)
	if err != nil {
		return nodeInfo{}, err
	}
	info := nodeInfo{id: id, pid: pid}
	c.nodes.Add(name, info)
	return info, nil
}

// PushQueue appends m to the inbound queue.
func (c *Communicator) PushQueue(m Message) {
	c.queue.Push(m)
	c.ctx.notify()
}

// PopQueue removes the oldest queued message.
func (c *Communicator) PopQueue() (Message, bool) {
	return c.queue.Pop()
}

// HasQueue reports whether messages are waiting for dispatch.
func (c *Communicator) HasQueue() bool {
	return !c.queue.Empty()
}

// SetPeerState records the last known state of a peer node.
func (c *Communicator) SetPeerState(name string, s State) {
	c.peers.Set(name, s, cache.DefaultExpiration)
}

// PeerState returns the cached state of a peer node.
func (c *Communicator) PeerState(name string) (State, bool) {
	v, ok := c.peers.Get(name)
	if !ok {
		return UnknownState, false
	}
	return v.(State), true
}

// PeerStates returns a snapshot of all cached peer states.
func (c *Communicator) PeerStates() map[string]State {
	items := c.peers.Items()
	res := make(map[string]State, len(items))
	for k, item := range items {
		res[k] = item.Object.(State)
	}
	return res
}

// Close closes the transport. The communicator leaves its context once the
// inbound channel has drained.
func (c *Communicator) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.trans.Close()
}

// pump moves inbound messages into the queue until the transport closes.
func (c *Communicator) pump() {
	for m := range c.trans.Consumer() {
		c.PushQueue(m)
	}
	c.closed.Store(true)
	c.logger.Debug("Connection closed")
	c.ctx.remove(c)
}
