// Package rc implements the run-control state machine of a readout node.
//
//	NOTREADY --LOAD--> READY --START--> RUNNING --PAUSE--> PAUSED
//	    ^                ^                 |                  |
//	    |                +------STOP-------+------STOP--------+
//	    +--ABORT (any state)
//
// BOOT and CONFIGURE leave the stable state unchanged. RECOVER brings an
// ERROR node back to READY. Commands that are not valid in the current state
// are ignored without reply.
//
// BOOT, LOAD and CONFIGURE read the node configuration from a dbconfig.Store
// and publish its keys as read-only "conf.<key>" variables before calling
// the Driver.
package rc
