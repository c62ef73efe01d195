package vars

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the type of a named variable.
type Type uint8

// Variable types.
const (
	InvalidType Type = iota
	IntType
	FloatType
	TextType
)

var typeLabels = map[Type]string{
	InvalidType: "invalid",
	IntType:     "int",
	FloatType:   "float",
	TextType:    "text",
}

// TypeFromLabel parses "int", "float" or "text".
func TypeFromLabel(l string) Type {
	for t, label := range typeLabels {
		if label == strings.ToLower(l) {
			return t
		}
	}
	return InvalidType
}

// String ...
func (t Type) String() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return typeLabels[InvalidType]
}

// Value is the content of a named variable at one point in time.
type Value struct {
	Name  string
	Type  Type
	Int   int32
	Float float64
	Text  string
}

// IntValue ...
func IntValue(name string, v int32) Value {
	return Value{Name: name, Type: IntType, Int: v}
}

// FloatValue ...
func FloatValue(name string, v float64) Value {
	return Value{Name: name, Type: FloatType, Float: v}
}

// TextValue ...
func TextValue(name string, v string) Value {
	return Value{Name: name, Type: TextType, Text: v}
}

// ParseValue builds a Value of type typ from its text form.
func ParseValue(name string, typ Type, s string) (Value, error) {
	switch typ {
	case IntType:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
		if err != nil {
			return Value{}, err
		}
		return IntValue(name, int32(i)), nil
	case FloatType:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(name, f), nil
	case TextType:
		return TextValue(name, s), nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrTypeMismatch, typ)
}

// Interface returns the value as an int32, float64 or string.
func (v Value) Interface() interface{} {
	switch v.Type {
	case IntType:
		return v.Int
	case FloatType:
		return v.Float
	case TextType:
		return v.Text
	}
	return nil
}

// Format returns the value in text form, without the name.
func (v Value) Format() string {
	switch v.Type {
	case IntType:
		return strconv.FormatInt(int64(v.Int), 10)
	case FloatType:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TextType:
		return v.Text
	}
	return ""
}

// String ...
func (v Value) String() string {
	return fmt.Sprintf("%s(%s)=%s", v.Name, v.Type, v.Format())
}
