// Package client implements the request/reply side of the slow-control
// network for command-line tools.
//
// A Client registers a short-lived node, sends one request at a time to a
// named peer and waits for the first message that peer sends back. VGET,
// VSET and VLISTGET replies are decoded into vars.Value.
package client
