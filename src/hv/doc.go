// Package hv implements the high-voltage controller node.
//
// The node starts OFF. TURNON brings the supply to STANDBY; STANDBY,
// SHOULDER and PEAK move between the three operating levels while the
// supply is on. CONFIGURE and TURNON are only valid while off, RECOVER only
// in an error state. TURNOFF and APPLY are accepted in any state. Any other
// HV command is ignored without reply.
//
// The hardware is reached through a Driver. SimSupply is a software supply
// used by hvcontrold when no hardware is configured, and by the tests.
package hv
