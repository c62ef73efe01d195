// Package nsm implements the messaging layer of the slow-control network.
//
// Every daemon owns one Node, identified by a unique name and carrying a
// State. Nodes exchange Messages: a request label (encoded as a Command when
// it is known), up to 64 integer parameters and a byte payload.
//
// Messages travel over a Transport. The TCP transport connects to the hub
// (cf hub package), which assigns node ids, resolves names and routes frames
// between nodes. The Inmem transport is used only for testing.
//
// Context
//
// A Context is the process-wide registry of Communicators. A Communicator
// wraps one Transport on behalf of one local Node: it queues inbound
// messages, caches name lookups and keeps read-only copies of peer states.
// The daemon event loop calls Context.Select to wait for the next
// communicator with a message ready:
//
//	com, err := ctx.Select(timeout)
//	if err == nsm.ErrSelectTimeout {
//		// periodic work
//	}
//	msg, _ := com.PopQueue()
//
// Wire format
//
// A frame is a 16-byte big-endian header followed by the label, the
// parameters and the payload. The label takes precedence over the header
// code when decoding so that domain-specific requests unknown to this
// package are still routed.
package nsm
