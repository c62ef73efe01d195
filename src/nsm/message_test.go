package nsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Immutable(t *testing.T) {
	params := []int32{1, 2, 3}
	m := NewMessage("VSET", params...)
	params[0] = 100

	assert.Equal(t, int32(1), m.Param(0))

	p := m.Params()
	p[1] = 200
	assert.Equal(t, int32(2), m.Param(1))

	data := []byte("abc")
	m2 := m.WithData(data)
	data[0] = 'x'
	assert.Equal(t, "abc", m2.Text())
	assert.Equal(t, 0, m.Len())

	d := m2.Data()
	d[0] = 'y'
	assert.Equal(t, "abc", m2.Text())
}

func TestMessage_Defaults(t *testing.T) {
	m := NewMessage("LOG")
	assert.Equal(t, AnonymousID, m.Src())
	assert.Equal(t, int32(0), m.Param(5))
	assert.Equal(t, int32(0), m.Param(-1))
	assert.Equal(t, "", m.Text())

	m = m.WithData([]byte{'h', 'i', 0, 'x'})
	assert.Equal(t, "hi", m.Text())
	assert.Equal(t, 4, m.Len())
}

func TestCommand_Labels(t *testing.T) {
	for _, c := range Commands() {
		assert.Equal(t, c, CommandFromLabel(c.Label()), c.Label())
	}
	assert.Equal(t, Unknown, CommandFromLabel("NOPE"))
	assert.Equal(t, "UNKNOWN", Command(9999).Label())
	assert.True(t, NSMNodeID.IsSystem())
	assert.False(t, RCStart.IsSystem())
}

func TestState_Categories(t *testing.T) {
	cases := []struct {
		state      State
		off, on    bool
		transition bool
		err        bool
	}{
		{OffS, true, false, false, false},
		{NotReadyS, true, false, false, false},
		{ReadyS, false, true, false, false},
		{PeakS, false, true, false, false},
		{RampingUpTS, false, false, true, false},
		{LoadingTS, false, false, true, false},
		{ErrorES, false, false, false, true},
		{TripES, false, false, false, true},
		{UnknownState, false, false, false, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.off, c.state.IsOff(), c.state.Label())
		assert.Equal(t, c.on, c.state.IsOn(), c.state.Label())
		assert.Equal(t, c.transition, c.state.IsTransition(), c.state.Label())
		assert.Equal(t, c.err, c.state.IsError(), c.state.Label())
		assert.Equal(t, c.state, StateFromLabel(c.state.Label()))
	}
	assert.False(t, UnknownState.IsKnown())
	assert.True(t, RunningS.IsKnown())
	assert.Equal(t, UnknownState, StateFromLabel("BOGUS"))
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue()
	assert.True(t, q.Empty())

	for i := int32(0); i < 5; i++ {
		q.Push(NewMessage("LOG", i))
	}
	assert.Equal(t, 5, q.Len())

	for i := int32(0); i < 5; i++ {
		m, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, m.Param(0))
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestNode_SetState(t *testing.T) {
	n := NewNode("HVCTL", OffS)
	prev := n.SetState(TurningOnTS)
	assert.Equal(t, OffS, prev)
	assert.Equal(t, TurningOnTS, n.State())
	assert.Equal(t, "HVCTL[TURNINGON]", n.String())
}
