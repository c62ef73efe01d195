// Package socket multiplexes one listening TCP socket and its accepted client
// sockets with select(2).
//
// A Manager is polled from a single event loop and is not safe for concurrent
// use. Examine blocks until a watched descriptor is ready, accepts at most one
// pending connection per call, and records which descriptors were ready so
// that the caller can query them with Connected.
package socket
