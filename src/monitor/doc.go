// Package monitor implements the temperature and system monitor node.
//
// The node has no state machine of its own. It starts RUNNING, publishes one
// read-only variable per temperature sensor ("temp.<sensor>") and the host
// load ("sys.cpu", "sys.mem", "sys.load"), and refreshes them on every
// timeout. When a temperature exceeds the writable "temp.alarm" threshold
// the node goes to ERROR, and back to RUNNING once every sensor is below it
// again. A threshold <= 0 disables the alarm.
package monitor
