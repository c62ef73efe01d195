package vars

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when no variable has the requested name.
	ErrNotFound = errors.New("no such variable")

	// ErrReadOnly is returned by Set on variables that cannot be written.
	ErrReadOnly = errors.New("variable is read-only")

	// ErrWriteOnly is returned by Get on variables that cannot be read.
	ErrWriteOnly = errors.New("variable is write-only")

	// ErrTypeMismatch is returned when a value does not have the type of
	// the variable.
	ErrTypeMismatch = errors.New("type mismatch")
)

// Handler gives access to one named variable.
type Handler interface {
	Name() string
	Type() Type
	Readable() bool
	Writable() bool

	// Get returns the current value.
	Get() (Value, error)

	// Set replaces the value. The value must have the type of the variable;
	// its name is ignored.
	Set(v Value) error
}

// Var is a stored variable. Its owner updates it with Update regardless of
// whether peers may write it.
type Var struct {
	sync.Mutex
	val      Value
	writable bool
}

func newVar(val Value, writable bool) *Var {
	return &Var{val: val, writable: writable}
}

// NewInt ...
func NewInt(name string, v int32, writable bool) *Var {
	return newVar(IntValue(name, v), writable)
}

// NewFloat ...
func NewFloat(name string, v float64, writable bool) *Var {
	return newVar(FloatValue(name, v), writable)
}

// NewText ...
func NewText(name string, v string, writable bool) *Var {
	return newVar(TextValue(name, v), writable)
}

// Name implements the Handler interface.
func (v *Var) Name() string { return v.val.Name }

// Type implements the Handler interface.
func (v *Var) Type() Type { return v.val.Type }

// Readable implements the Handler interface.
func (v *Var) Readable() bool { return true }

// Writable implements the Handler interface.
func (v *Var) Writable() bool { return v.writable }

// Get implements the Handler interface.
func (v *Var) Get() (Value, error) {
	v.Lock()
	defer v.Unlock()
	return v.val, nil
}

// Set implements the Handler interface.
func (v *Var) Set(val Value) error {
	if !v.writable {
		return ErrReadOnly
	}
	return v.Update(val)
}

// Update replaces the value without checking writability.
func (v *Var) Update(val Value) error {
	v.Lock()
	defer v.Unlock()
	if val.Type != v.val.Type {
		return ErrTypeMismatch
	}
	val.Name = v.val.Name
	v.val = val
	return nil
}

// Func is a variable backed by closures. A nil getter makes it write-only,
// a nil setter read-only.
type Func struct {
	name string
	typ  Type
	get  func() (Value, error)
	set  func(Value) error
}

// NewFunc ...
func NewFunc(name string, typ Type, get func() (Value, error), set func(Value) error) *Func {
	return &Func{name: name, typ: typ, get: get, set: set}
}

// Name implements the Handler interface.
func (f *Func) Name() string { return f.name }

// Type implements the Handler interface.
func (f *Func) Type() Type { return f.typ }

// Readable implements the Handler interface.
func (f *Func) Readable() bool { return f.get != nil }

// Writable implements the Handler interface.
func (f *Func) Writable() bool { return f.set != nil }

// Get implements the Handler interface.
func (f *Func) Get() (Value, error) {
	if f.get == nil {
		return Value{}, ErrWriteOnly
	}
	v, err := f.get()
	if err != nil {
		return Value{}, err
	}
	if v.Type != f.typ {
		return Value{}, ErrTypeMismatch
	}
	v.Name = f.name
	return v, nil
}

// Set implements the Handler interface.
func (f *Func) Set(v Value) error {
	if f.set == nil {
		return ErrReadOnly
	}
	if v.Type != f.typ {
		return ErrTypeMismatch
	}
	v.Name = f.name
	return f.set(v)
}
