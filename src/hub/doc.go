// Package hub implements the name-resolution and routing daemon of the
// slow-control network.
//
// Nodes connect to the hub over TCP (cf nsm.TCPTransport) and register a
// unique name. The hub assigns each name a node id, which is kept across
// restarts in a JSON node table, answers name and id lookups and forwards
// every other frame to the connection registered under its destination id.
//
// The hub runs a single-threaded select loop on top of socket.Manager; no
// goroutine is spawned per connection.
package hub
