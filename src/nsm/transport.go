package nsm

import "errors"

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")

	// ErrUnknownNode is returned when a node name or id cannot be resolved.
	ErrUnknownNode = errors.New("unknown node")
)

// Transport is one connection to the slow-control network. It carries
// messages between named nodes and resolves node names.
type Transport interface {
	// Register claims a node name for this connection and returns the node
	// id assigned to it.
	Register(name string, pid int) (uint16, error)

	// Lookup resolves a node name into its id and process id.
	Lookup(name string) (id uint16, pid int, err error)

	// NodeName resolves a node id into its name.
	NodeName(id uint16) (string, error)

	// Send delivers m to the node m.Dest(). It does not wait for a reply.
	Send(m Message) error

	// Consumer returns the channel of inbound messages. It is closed when
	// the connection is lost or the transport is closed.
	Consumer() <-chan Message

	// LocalAddr is used to return our local address
	LocalAddr() string

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
