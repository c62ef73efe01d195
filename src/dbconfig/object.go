package dbconfig

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/ugorji/go/codec"
)

// FieldType is the type of a scalar field.
type FieldType uint8

// Field types.
const (
	NoField FieldType = iota
	BoolField
	IntField
	FloatField
	TextField
)

// String ...
func (t FieldType) String() string {
	switch t {
	case BoolField:
		return "bool"
	case IntField:
		return "int"
	case FloatField:
		return "float"
	case TextField:
		return "text"
	}
	return "none"
}

// Field is a typed scalar.
type Field struct {
	Type  FieldType `json:"type"`
	Bool  bool      `json:"bool,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Text  string    `json:"text,omitempty"`
}

// Format returns the field in text form.
func (f Field) Format() string {
	switch f.Type {
	case BoolField:
		return strconv.FormatBool(f.Bool)
	case IntField:
		return strconv.FormatInt(f.Int, 10)
	case FloatField:
		return strconv.FormatFloat(f.Float, 'g', -1, 64)
	case TextField:
		return f.Text
	}
	return ""
}

// Object is a configuration object.
type Object struct {
	Node    string               `json:"node,omitempty"`
	Config  string               `json:"config,omitempty"`
	Name    string               `json:"name"`
	Fields  map[string]Field     `json:"fields,omitempty"`
	Objects map[string][]*Object `json:"objects,omitempty"`
}

// NewObject ...
func NewObject(name string) *Object {
	return &Object{
		Name:    name,
		Fields:  make(map[string]Field),
		Objects: make(map[string][]*Object),
	}
}

// SetBool ...
func (o *Object) SetBool(name string, v bool) {
	o.Fields[name] = Field{Type: BoolField, Bool: v}
}

// SetInt ...
func (o *Object) SetInt(name string, v int64) {
	o.Fields[name] = Field{Type: IntField, Int: v}
}

// SetFloat ...
func (o *Object) SetFloat(name string, v float64) {
	o.Fields[name] = Field{Type: FloatField, Float: v}
}

// SetText ...
func (o *Object) SetText(name string, v string) {
	o.Fields[name] = Field{Type: TextField, Text: v}
}

// AddObject appends obj to the array called name.
func (o *Object) AddObject(name string, obj *Object) {
	o.Objects[name] = append(o.Objects[name], obj)
}

func (o *Object) field(name string, t FieldType) (Field, error) {
	f, ok := o.Fields[name]
	if !ok {
		return Field{}, common.Errorf(common.NotFoundErr, o.Name, "no field %s", name)
	}
	if f.Type != t {
		return Field{}, fmt.Errorf("%s.%s is %s, not %s", o.Name, name, f.Type, t)
	}
	return f, nil
}

// GetBool ...
func (o *Object) GetBool(name string) (bool, error) {
	f, err := o.field(name, BoolField)
	return f.Bool, err
}

// GetInt ...
func (o *Object) GetInt(name string) (int64, error) {
	f, err := o.field(name, IntField)
	return f.Int, err
}

// GetFloat returns a float field. Int fields are converted.
func (o *Object) GetFloat(name string) (float64, error) {
	if f, ok := o.Fields[name]; ok && f.Type == IntField {
		return float64(f.Int), nil
	}
	f, err := o.field(name, FloatField)
	return f.Float, err
}

// GetText ...
func (o *Object) GetText(name string) (string, error) {
	f, err := o.field(name, TextField)
	return f.Text, err
}

// HasValue reports whether a scalar field called name exists.
func (o *Object) HasValue(name string) bool {
	_, ok := o.Fields[name]
	return ok
}

// HasObject reports whether an array called name exists.
func (o *Object) HasObject(name string) bool {
	_, ok := o.Objects[name]
	return ok
}

// NObjects returns the length of the array called name.
func (o *Object) NObjects(name string) int {
	return len(o.Objects[name])
}

// Object returns element i of the array called name.
func (o *Object) Object(name string, i int) (*Object, error) {
	arr := o.Objects[name]
	if i < 0 || i >= len(arr) {
		return nil, common.Errorf(common.NotFoundErr, o.Name, "no object %s[%d]", name, i)
	}
	return arr[i], nil
}

// Flatten returns every scalar of the object tree, nested ones keyed as
// "array[i].field".
func (o *Object) Flatten() map[string]Field {
	res := make(map[string]Field)
	o.flatten("", res)
	return res
}

func (o *Object) flatten(prefix string, res map[string]Field) {
	for k, f := range o.Fields {
		res[prefix+k] = f
	}
	for k, arr := range o.Objects {
		for i, sub := range arr {
			sub.flatten(fmt.Sprintf("%s%s[%d].", prefix, k, i), res)
		}
	}
}

// Keys returns the sorted keys of Flatten.
func (o *Object) Keys() []string {
	flat := o.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newJSONHandle() *codec.JsonHandle {
	h := new(codec.JsonHandle)
	h.Canonical = true
	return h
}

// Marshal encodes the object in JSON.
func (o *Object) Marshal() ([]byte, error) {
	var b []byte
	enc := codec.NewEncoderBytes(&b, newJSONHandle())
	if err := enc.Encode(o); err != nil {
		return nil, err
	}
	return b, nil
}

// Unmarshal decodes a JSON object into o.
func (o *Object) Unmarshal(data []byte) error {
	dec := codec.NewDecoderBytes(data, newJSONHandle())
	if err := dec.Decode(o); err != nil {
		return err
	}
	o.init()
	return nil
}

func (o *Object) init() {
	if o.Fields == nil {
		o.Fields = make(map[string]Field)
	}
	if o.Objects == nil {
		o.Objects = make(map[string][]*Object)
	}
	for _, arr := range o.Objects {
		for _, sub := range arr {
			sub.init()
		}
	}
}

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	c := NewObject(o.Name)
	c.Node, c.Config = o.Node, o.Config
	for k, f := range o.Fields {
		c.Fields[k] = f
	}
	for k, arr := range o.Objects {
		for _, sub := range arr {
			c.Objects[k] = append(c.Objects[k], sub.Clone())
		}
	}
	return c
}
