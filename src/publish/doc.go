// Package publish forwards the events of a node callback to an MQTT broker.
//
// Topics, below the configured root:
//
//	<root>/<node>/state          {"node","state","from","time"}, retained
//	<root>/<node>/peers/<peer>   peer state label, retained
//	<root>/<node>/vars/<name>    value written by VSET, in text form
package publish
