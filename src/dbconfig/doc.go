// Package dbconfig holds the run configurations of the slow-control nodes.
//
// A configuration is an Object identified by (node, config). It carries
// typed scalar fields and named arrays of nested objects, and flattens to
// "key", "array[i].key" pairs for publication as named variables.
//
// Objects are kept in a Store. BadgerStore persists them in a badger
// database; InmemStore keeps them in memory. ParseYAML imports objects from
// YAML documents.
package dbconfig
