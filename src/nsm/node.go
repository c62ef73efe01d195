package nsm

import (
	"fmt"

	"go.uber.org/atomic"
)

// Node is one addressable participant of the slow-control network. A
// process owns exactly one authoritative Node for itself; its state is only
// changed by the owning callback.
type Node struct {
	name  string
	host  string
	port  int
	state *atomic.Uint32
}

// NewNode creates a Node in the given initial state.
func NewNode(name string, initial State) *Node {
	return &Node{
		name:  name,
		state: atomic.NewUint32(uint32(initial)),
	}
}

// Name ...
func (n *Node) Name() string {
	return n.name
}

// State returns the current state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// SetState sets the state and returns the previous one.
func (n *Node) SetState(s State) State {
	return State(n.state.Swap(uint32(s)))
}

// SetAddress records the host and port the node is reachable at.
func (n *Node) SetAddress(host string, port int) {
	n.host = host
	n.port = port
}

// Host ...
func (n *Node) Host() string {
	return n.host
}

// Port ...
func (n *Node) Port() int {
	return n.port
}

// String ...
func (n *Node) String() string {
	return fmt.Sprintf("%s[%s]", n.name, n.State())
}
