// Package callback binds a Node to its command dispatch.
//
// Callback is the base every domain controller embeds. It owns the named
// variables of the node and handles the requests every node understands
// (VGET, VSET, VLISTGET, STATECHECK, LOG and the OK/ERROR replies of peers)
// in PerformGeneric. Domain callbacks (cf hv, rc, monitor) implement Handler
// and run their state-changing commands through Execute, which enters the
// transient state, runs the action and sends exactly one OK or ERROR reply.
//
// A command that is not valid in the current state is dropped with Ignore:
// the state is unchanged and no reply is sent.
package callback
