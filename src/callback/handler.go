package callback

import (
	"time"

	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
)

// Handler is what the daemon event loop drives.
type Handler interface {
	// Node returns the node the handler speaks for.
	Node() *nsm.Node

	// Vars returns the named variables of the node.
	Vars() *vars.Registry

	// Init is called once the node is registered on the network, before
	// the first message is dispatched.
	Init(com *nsm.Communicator) error

	// Perform dispatches one inbound message and reports whether it was
	// handled.
	Perform(msg nsm.Message) bool

	// Timeout is called periodically, independently of inbound messages.
	Timeout()

	// TimeoutInterval is the period of Timeout.
	TimeoutInterval() time.Duration

	// Term is called once when the daemon stops.
	Term()
}

var _ Handler = (*Callback)(nil)
