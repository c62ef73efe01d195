// Package service implements the HTTP status API of a daemon.
//
//	GET /node        name, state and node id
//	GET /vars        readable named variables
//	GET /vars/<name> one variable
//	GET /peers       cached peer states
//
// Every response is JSON and allows cross-origin requests.
package service
