package client

import (
	"sync"
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/hv"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve dispatches the messages received by the bench node until stop is
// closed.
func serve(b *callback.Bench, stop chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-stop:
			return
		default:
		}
		com, err := b.Ctx.Select(20 * time.Millisecond)
		if err == nsm.ErrContextClosed {
			return
		}
		if err != nil {
			continue
		}
		for {
			m, ok := com.PopQueue()
			if !ok {
				break
			}
			b.Handler.Perform(m)
		}
	}
}

func newTestClient(t *testing.T, h callback.Handler, timeout time.Duration) (*Client, func()) {
	b := callback.NewBench(t, h)

	c, err := New(b.Network.NewTransport(), NodeName("test"), timeout, common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	stop := make(chan struct{})
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go serve(b, stop, wg)

	return c, func() {
		close(stop)
		wg.Wait()
		c.Close()
		b.Close()
	}
}

func TestNodeName(t *testing.T) {
	a := NodeName("nsmctl")
	b := NodeName("nsmctl")
	assert.Len(t, a, len("nsmctl-")+8)
	assert.NotEqual(t, a, b)
}

func TestClient_Vars(t *testing.T) {
	cb := callback.New(nsm.NewNode("NODE", nsm.ReadyS), common.NewTestEntry(t, common.TestLogLevel))
	require.NoError(t, cb.AddVar(vars.NewInt("count", 3, true)))
	require.NoError(t, cb.AddVar(vars.NewText("label", "daq", false)))

	c, cleanup := newTestClient(t, cb, time.Second)
	defer cleanup()

	st, err := c.State("NODE")
	require.NoError(t, err)
	assert.Equal(t, nsm.ReadyS, st)

	v, err := c.Get("NODE", "count")
	require.NoError(t, err)
	assert.Equal(t, vars.IntValue("count", 3), v)

	v, err = c.Set("NODE", vars.IntValue("count", 7))
	require.NoError(t, err)
	assert.Equal(t, int32(7), v.Int)

	_, err = c.Set("NODE", vars.TextValue("label", "other"))
	assert.Error(t, err)

	_, err = c.Get("NODE", "missing")
	assert.True(t, common.IsKind(err, common.NotFoundErr))

	list, err := c.List("NODE")
	require.NoError(t, err)
	names := []string{}
	for _, v := range list {
		names = append(names, v.Name)
	}
	assert.Contains(t, names, "count")
	assert.Contains(t, names, "label")
	assert.Contains(t, names, callback.StateVar)
}

func TestClient_Command(t *testing.T) {
	ctl := hv.NewController("HV", hv.NewSimSupply(2), 2, common.NewTestEntry(t, common.TestLogLevel))

	c, cleanup := newTestClient(t, ctl, time.Second)
	defer cleanup()

	st, err := c.Command("HV", nsm.NewCommandMessage(nsm.HVTurnOn))
	require.NoError(t, err)
	assert.Equal(t, nsm.StandbyS, st)

	st, err = c.Command("HV", nsm.NewCommandMessage(nsm.HVPeak))
	require.NoError(t, err)
	assert.Equal(t, nsm.PeakS, st)

	v, err := c.Get("HV", "nch")
	require.NoError(t, err)
	assert.Equal(t, int32(2), v.Int)
}

func TestClient_Errors(t *testing.T) {
	cb := callback.New(nsm.NewNode("NODE", nsm.ReadyS), common.NewTestEntry(t, common.TestLogLevel))

	c, cleanup := newTestClient(t, cb, 100*time.Millisecond)
	defer cleanup()

	_, err := c.State("NOBODY")
	assert.True(t, common.IsKind(err, common.NotFoundErr))

	// A plain callback does not answer run-control commands
	_, err = c.Command("NODE", nsm.NewCommandMessage(nsm.RCStart, 1, 2))
	assert.True(t, common.IsKind(err, common.TimeoutErr))
}
