package nsm

import (
	"fmt"
	"sync"
	"time"
)

// InmemNetwork plays the role of the hub for InmemTransports, to allow nodes
// to be tested in-memory without going over a network.
type InmemNetwork struct {
	sync.RWMutex
	byName map[string]*InmemTransport
	byID   map[uint16]*InmemTransport
	nextID uint16
}

// NewInmemNetwork ...
func NewInmemNetwork() *InmemNetwork {
	return &InmemNetwork{
		byName: make(map[string]*InmemTransport),
		byID:   make(map[uint16]*InmemTransport),
	}
}

// NewTransport returns a new unregistered transport attached to the network.
func (n *InmemNetwork) NewTransport() *InmemTransport {
	return &InmemTransport{
		network:    n,
		consumerCh: make(chan Message, 64),
		id:         AnonymousID,
		timeout:    50 * time.Millisecond,
	}
}

func (n *InmemNetwork) register(t *InmemTransport, name string, pid int) (uint16, error) {
	n.Lock()
	defer n.Unlock()
	if _, ok := n.byName[name]; ok {
		return 0, fmt.Errorf("node %s already registered", name)
	}
	id := n.nextID
	n.nextID++
	n.byName[name] = t
	n.byID[id] = t
	t.name = name
	t.id = id
	t.pid = pid
	return id, nil
}

func (n *InmemNetwork) unregister(t *InmemTransport) {
	n.Lock()
	defer n.Unlock()
	if cur, ok := n.byName[t.name]; ok && cur == t {
		delete(n.byName, t.name)
		delete(n.byID, t.id)
	}
}

// InmemTransport implements the Transport interface over an InmemNetwork.
type InmemTransport struct {
	network    *InmemNetwork
	consumerCh chan Message
	name       string
	id         uint16
	pid        int
	timeout    time.Duration

	closeLock sync.Mutex
	closed    bool
}

// Register implements the Transport interface.
func (i *InmemTransport) Register(name string, pid int) (uint16, error) {
	return i.network.register(i, name, pid)
}

// Lookup implements the Transport interface.
func (i *InmemTransport) Lookup(name string) (uint16, int, error) {
	i.network.RLock()
	defer i.network.RUnlock()
	peer, ok := i.network.byName[name]
	if !ok {
		return 0, -1, ErrUnknownNode
	}
	return peer.id, peer.pid, nil
}

// NodeName implements the Transport interface.
func (i *InmemTransport) NodeName(id uint16) (string, error) {
	i.network.RLock()
	defer i.network.RUnlock()
	peer, ok := i.network.byID[id]
	if !ok {
		return "", ErrUnknownNode
	}
	return peer.name, nil
}

// Send implements the Transport interface.
func (i *InmemTransport) Send(m Message) error {
	i.network.RLock()
	peer, ok := i.network.byID[m.Dest()]
	i.network.RUnlock()

	if !ok {
		return fmt.Errorf("failed to connect to node id %d: %w", m.Dest(), ErrUnknownNode)
	}
	return peer.deliver(m.WithSource(i.id), i.timeout)
}

func (i *InmemTransport) deliver(m Message, timeout time.Duration) error {
	i.closeLock.Lock()
	defer i.closeLock.Unlock()
	if i.closed {
		return ErrTransportShutdown
	}
	select {
	case i.consumerCh <- m:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("send to %s timed out", i.name)
	}
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan Message {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return fmt.Sprintf("inmem:%d", i.id)
}

// Close is used to permanently disable the transport
func (i *InmemTransport) Close() error {
	i.network.unregister(i)
	i.closeLock.Lock()
	defer i.closeLock.Unlock()
	if !i.closed {
		i.closed = true
		close(i.consumerCh)
	}
	return nil
}
