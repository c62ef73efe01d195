// Package vars implements named variables: typed values a node exposes to
// its peers through the VGET, VSET and VLISTGET requests.
//
// A variable is anything implementing Handler. Var is the plain stored
// implementation, Func binds getter and setter closures, and WithLogging
// wraps any Handler to log reads and writes. Values travel as msgpack.
package vars
