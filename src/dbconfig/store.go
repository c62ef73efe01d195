package dbconfig

import (
	"github.com/b2slc/slowcontrol/src/common"
)

// Store keeps configuration objects by (node, config).
type Store interface {
	// Get returns a copy of the object, or a NotFoundErr.
	Get(node, config string) (*Object, error)

	// Put stores obj under (obj.Node, obj.Config), replacing any previous
	// version.
	Put(obj *Object) error

	// List returns the sorted config names of node.
	List(node string) ([]string, error)

	Close() error
}

func notFound(node, config string) error {
	return common.Errorf(common.NotFoundErr, "get config", "no config %s for node %s", config, node)
}

func checkKey(obj *Object) error {
	if obj.Node == "" || obj.Config == "" {
		return common.Errorf(common.ConfigErr, "put config", "object %s has no node or config name", obj.Name)
	}
	return nil
}
