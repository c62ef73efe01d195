package dbconfig

import (
	"bytes"
	"fmt"
	"io"

	"github.com/b2slc/slowcontrol/src/common"
	"gopkg.in/yaml.v3"
)

/*
ParseYAML reads configuration objects from YAML documents, one object per
document:

	node: RC01
	config: default
	name: ropc
	values:
	  nch: 4
	  threshold: 1.5
	  enabled: true
	  board:
	    - vset: 100
	    - vset: 200

Scalars keep the type YAML resolves for them. A sequence of mappings becomes
an array of nested objects named after its key.
*/
func ParseYAML(data []byte) ([]*Object, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var res []*Object
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.NewError(common.ConfigErr, "parse yaml", err)
		}
		if len(doc.Content) == 0 {
			continue
		}
		obj, err := parseDocument(doc.Content[0])
		if err != nil {
			return nil, common.NewError(common.ConfigErr, "parse yaml", err)
		}
		res = append(res, obj)
	}
	return res, nil
}

func parseDocument(n *yaml.Node) (*Object, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: document is not a mapping", n.Line)
	}

	obj := NewObject("")
	var values *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "node":
			obj.Node = val.Value
		case "config":
			obj.Config = val.Value
		case "name":
			obj.Name = val.Value
		case "values":
			values = val
		default:
			return nil, fmt.Errorf("line %d: unknown key %s", n.Content[i].Line, key)
		}
	}
	if obj.Node == "" || obj.Config == "" {
		return nil, fmt.Errorf("line %d: node and config are required", n.Line)
	}
	if obj.Name == "" {
		obj.Name = obj.Node
	}
	if values != nil {
		if err := parseValues(obj, values); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func parseValues(obj *Object, n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: values of %s is not a mapping", n.Line, obj.Name)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			if err := setScalar(obj, key, val); err != nil {
				return err
			}
		case yaml.SequenceNode:
			for j, item := range val.Content {
				sub := NewObject(fmt.Sprintf("%s[%d]", key, j))
				if err := parseValues(sub, item); err != nil {
					return err
				}
				obj.AddObject(key, sub)
			}
		case yaml.MappingNode:
			sub := NewObject(key)
			if err := parseValues(sub, val); err != nil {
				return err
			}
			obj.AddObject(key, sub)
		default:
			return fmt.Errorf("line %d: unsupported value for %s", val.Line, key)
		}
	}
	return nil
}

func setScalar(obj *Object, key string, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %v", n.Line, err)
		}
		obj.SetBool(key, v)
	case "!!int":
		var v int64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %v", n.Line, err)
		}
		obj.SetInt(key, v)
	case "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %v", n.Line, err)
		}
		obj.SetFloat(key, v)
	default:
		obj.SetText(key, n.Value)
	}
	return nil
}
