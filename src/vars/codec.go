package vars

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// wireValue is the msgpack form of a Value. Only the field matching Type is
// meaningful.
type wireValue struct {
	Name  string  `codec:"name"`
	Type  string  `codec:"type"`
	Int   int32   `codec:"int,omitempty"`
	Float float64 `codec:"float,omitempty"`
	Text  string  `codec:"text,omitempty"`
}

func toWire(v Value) wireValue {
	return wireValue{
		Name:  v.Name,
		Type:  v.Type.String(),
		Int:   v.Int,
		Float: v.Float,
		Text:  v.Text,
	}
}

func fromWire(w wireValue) (Value, error) {
	t := TypeFromLabel(w.Type)
	if t == InvalidType {
		return Value{}, ErrTypeMismatch
	}
	v := Value{Name: w.Name, Type: t}
	switch t {
	case IntType:
		v.Int = w.Int
	case FloatType:
		v.Float = w.Float
	case TextType:
		v.Text = w.Text
	}
	return v, nil
}

func newHandle() *codec.MsgpackHandle {
	mh := new(codec.MsgpackHandle)
	mh.WriteExt = true
	return mh
}

// Encode serializes v with msgpack.
func Encode(v Value) ([]byte, error) {
	var b bytes.Buffer
	enc := codec.NewEncoder(&b, newHandle())
	if err := enc.Encode(toWire(v)); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Decode parses a msgpack Value.
func Decode(data []byte) (Value, error) {
	var w wireValue
	dec := codec.NewDecoderBytes(data, newHandle())
	if err := dec.Decode(&w); err != nil {
		return Value{}, err
	}
	return fromWire(w)
}

// EncodeList serializes a list of values with msgpack.
func EncodeList(vals []Value) ([]byte, error) {
	ws := make([]wireValue, len(vals))
	for i, v := range vals {
		ws[i] = toWire(v)
	}
	var b bytes.Buffer
	enc := codec.NewEncoder(&b, newHandle())
	if err := enc.Encode(ws); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// DecodeList parses a msgpack list of values.
func DecodeList(data []byte) ([]Value, error) {
	var ws []wireValue
	dec := codec.NewDecoderBytes(data, newHandle())
	if err := dec.Decode(&ws); err != nil {
		return nil, err
	}
	res := make([]Value, 0, len(ws))
	for _, w := range ws {
		v, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}
