// Package daemon runs one slow-control node: it builds the configuration
// database, the hub transport, the communicator and the node callback from a
// config.Config, then dispatches inbound messages to the callback in a
// single-threaded event loop.
//
// The loop waits on Context.Select for at most the time left until the next
// timeout hook, hands every queued message to Perform, and calls Timeout
// whenever the callback interval elapsed. The optional HTTP status service
// and MQTT publisher run beside the loop.
package daemon
