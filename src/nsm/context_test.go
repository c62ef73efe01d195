package nsm

import (
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, network *InmemNetwork, names ...string) (*Context, []*Communicator) {
	ctx := NewContext(common.NewTestEntry(t, common.TestLogLevel))
	comms := []*Communicator{}
	for _, name := range names {
		com, err := ctx.Connect(NewNode(name, NotReadyS), network.NewTransport())
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		comms = append(comms, com)
	}
	return ctx, comms
}

func TestContext_SelectTimeout(t *testing.T) {
	ctx, _ := newTestContext(t, NewInmemNetwork(), "A")
	defer ctx.Close()

	start := time.Now()
	com, err := ctx.Select(50 * time.Millisecond)
	assert.Nil(t, com)
	assert.Equal(t, ErrSelectTimeout, err)
	assert.True(t, time.Since(start) >= 50*time.Millisecond)
}

func TestContext_SendReceive(t *testing.T) {
	network := NewInmemNetwork()
	ctxA, comsA := newTestContext(t, network, "A")
	defer ctxA.Close()
	ctxB, comsB := newTestContext(t, network, "B")
	defer ctxB.Close()

	err := comsA[0].Send("B", NewCommandMessage(RCLoad, 1).WithText("default"))
	require.NoError(t, err)

	com, err := ctxB.Select(time.Second)
	require.NoError(t, err)
	assert.Equal(t, comsB[0], com)

	m, ok := com.PopQueue()
	require.True(t, ok)
	assert.Equal(t, RCLoad, m.Command())
	assert.Equal(t, "default", m.Text())
	assert.Equal(t, comsA[0].ID(), m.Src())
	assert.Equal(t, "A", com.NodeName(m.Src()))

	// Reply goes back to the sender with the current state in the payload
	require.NoError(t, com.ReplyOK(m))

	com, err = ctxA.Select(time.Second)
	require.NoError(t, err)
	resp, _ := com.PopQueue()
	assert.Equal(t, OK, resp.Command())
	assert.Equal(t, "NOTREADY", resp.Text())
}

func TestContext_SelectBlocksUntilMessage(t *testing.T) {
	network := NewInmemNetwork()
	ctx, _ := newTestContext(t, network, "A")
	defer ctx.Close()
	ctxB, comsB := newTestContext(t, network, "B")
	defer ctxB.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		comsB[0].Send("A", NewCommandMessage(StateCheck))
	}()

	com, err := ctx.Select(0)
	require.NoError(t, err)
	m, _ := com.PopQueue()
	assert.Equal(t, StateCheck, m.Command())
}

func TestContext_SelectClosed(t *testing.T) {
	ctx, _ := newTestContext(t, NewInmemNetwork(), "A")

	go func() {
		time.Sleep(20 * time.Millisecond)
		ctx.Close()
	}()

	_, err := ctx.Select(-1)
	assert.Equal(t, ErrContextClosed, err)
}

func TestContext_RoundRobin(t *testing.T) {
	network := NewInmemNetwork()
	ctx, comms := newTestContext(t, network, "A", "B")
	defer ctx.Close()
	sender, senders := newTestContext(t, network, "S")
	defer sender.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, senders[0].Send("A", NewCommandMessage(Log)))
		require.NoError(t, senders[0].Send("B", NewCommandMessage(Log)))
	}
	time.Sleep(50 * time.Millisecond)

	seen := []*Communicator{}
	for i := 0; i < 4; i++ {
		com, err := ctx.Select(time.Second)
		require.NoError(t, err)
		com.PopQueue()
		seen = append(seen, com)
	}
	assert.NotEqual(t, seen[0], seen[1])
	assert.NotEqual(t, seen[2], seen[3])
	assert.ElementsMatch(t, []*Communicator{comms[0], comms[1], comms[0], comms[1]}, seen)
}

func TestCommunicator_Lookup(t *testing.T) {
	network := NewInmemNetwork()
	ctx, comms := newTestContext(t, network, "A", "B")
	defer ctx.Close()

	a := comms[0]
	assert.Equal(t, int(comms[1].ID()), a.NodeID("B"))
	assert.Equal(t, -1, a.NodeID("C"))
	assert.Equal(t, -1, a.NodePID("C"))
	assert.True(t, a.IsConnected("B"))
	assert.False(t, a.IsConnected("C"))

	err := a.Send("C", NewCommandMessage(Log))
	assert.True(t, common.IsKind(err, common.NotFoundErr))

	err = ctx.Send("C", NewCommandMessage(Log))
	assert.True(t, common.IsKind(err, common.NotFoundErr))
}

func TestCommunicator_DuplicateName(t *testing.T) {
	network := NewInmemNetwork()
	ctx, _ := newTestContext(t, network, "A")
	defer ctx.Close()

	_, err := ctx.Connect(NewNode("A", OffS), network.NewTransport())
	assert.True(t, common.IsKind(err, common.ConnectionErr))
	assert.Len(t, ctx.Communicators(), 1)
}

func TestCommunicator_PeerStates(t *testing.T) {
	ctx, comms := newTestContext(t, NewInmemNetwork(), "A")
	defer ctx.Close()

	com := comms[0]
	_, ok := com.PeerState("HV")
	assert.False(t, ok)

	com.SetPeerState("HV", PeakS)
	com.SetPeerState("RC", RunningS)

	s, ok := com.PeerState("HV")
	assert.True(t, ok)
	assert.Equal(t, PeakS, s)
	assert.Equal(t, map[string]State{"HV": PeakS, "RC": RunningS}, com.PeerStates())
}

func TestCommunicator_RemovedOnClose(t *testing.T) {
	ctx, comms := newTestContext(t, NewInmemNetwork(), "A", "B")
	defer ctx.Close()

	require.NoError(t, comms[0].Close())
	assert.Equal(t, ErrTransportShutdown, comms[0].SendTo(comms[1].ID(), NewCommandMessage(Log)))

	deadline := time.Now().Add(time.Second)
	for len(ctx.Communicators()) != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, []*Communicator{comms[1]}, ctx.Communicators())
	assert.Nil(t, ctx.Communicator("A"))
	assert.Equal(t, comms[1], ctx.Communicator("B"))
}
