package rc

import (
	"errors"
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replyWait = 100 * time.Millisecond

func testStore(t *testing.T) dbconfig.Store {
	s := dbconfig.NewInmemStore()

	obj := dbconfig.NewObject("ropc")
	obj.Node, obj.Config = "RC01", "default"
	obj.SetInt("rate", 10)
	obj.SetText("label", "copper")
	obj.SetBool("trigger", true)
	sub := dbconfig.NewObject("board")
	sub.SetFloat("threshold", 0.5)
	obj.AddObject("board", sub)
	require.NoError(t, s.Put(obj))

	return s
}

func newTestController(t *testing.T, d Driver, store dbconfig.Store) (*Controller, *callback.Bench) {
	c := NewController("RC01", d, store, "", common.NewTestEntry(t, common.TestLogLevel))
	return c, callback.NewBench(t, c)
}

// expect sends msg and checks the single reply and the resulting state.
func expect(t *testing.T, b *callback.Bench, msg nsm.Message, reply nsm.Command, state nsm.State) nsm.Message {
	t.Helper()
	assert.True(t, b.Request(msg))
	replies := b.Replies(replyWait)
	require.Len(t, replies, 1, msg.Request())
	assert.Equal(t, reply, replies[0].Command(), msg.Request())
	assert.Equal(t, state, b.Handler.Node().State(), msg.Request())
	return replies[0]
}

func expectIgnored(t *testing.T, b *callback.Bench, msg nsm.Message) {
	t.Helper()
	before := b.Handler.Node().State()
	assert.True(t, b.Request(msg))
	assert.Empty(t, b.Replies(replyWait), msg.Request())
	assert.Equal(t, before, b.Handler.Node().State(), msg.Request())
}

func TestController_RunCycle(t *testing.T) {
	sim := NewSimReadout(1)
	c, b := newTestController(t, sim, testStore(t))
	defer b.Close()

	assert.Equal(t, nsm.NotReadyS, c.Node().State())

	r := expect(t, b, nsm.NewCommandMessage(nsm.RCBoot), nsm.OK, nsm.NotReadyS)
	assert.Equal(t, "NOTREADY", r.Text())

	expect(t, b, nsm.NewCommandMessage(nsm.RCLoad).WithText("default"), nsm.OK, nsm.ReadyS)

	v, err := c.Vars().Get("conf.rate")
	require.NoError(t, err)
	assert.Equal(t, vars.IntValue("conf.rate", 10), v)
	v, err = c.Vars().Get("conf.board[0].threshold")
	require.NoError(t, err)
	assert.Equal(t, vars.FloatValue("conf.board[0].threshold", 0.5), v)
	v, err = c.Vars().Get("conf.trigger")
	require.NoError(t, err)
	assert.Equal(t, vars.IntValue("conf.trigger", 1), v)
	v, err = c.Vars().Get("config")
	require.NoError(t, err)
	assert.Equal(t, "default", v.Text)

	// configuration variables are read-only
	assert.Equal(t, vars.ErrReadOnly, c.Vars().Set(vars.IntValue("conf.rate", 1)))

	r = expect(t, b, nsm.NewCommandMessage(nsm.RCStart, 3, 42), nsm.OK, nsm.RunningS)
	assert.Equal(t, "RUNNING", r.Text())
	expno, runno := sim.Run()
	assert.Equal(t, 3, expno)
	assert.Equal(t, 42, runno)
	v, _ = c.Vars().Get("runno")
	assert.EqualValues(t, 42, v.Int)

	c.Timeout()
	c.Timeout()
	assert.EqualValues(t, 20, sim.Events())

	expect(t, b, nsm.NewCommandMessage(nsm.RCPause), nsm.OK, nsm.PausedS)
	expectIgnored(t, b, nsm.NewCommandMessage(nsm.RCStart, 3, 43))
	expectIgnored(t, b, nsm.NewCommandMessage(nsm.RCPause))

	c.Timeout()
	assert.EqualValues(t, 20, sim.Events())

	expect(t, b, nsm.NewCommandMessage(nsm.RCResume), nsm.OK, nsm.RunningS)
	expectIgnored(t, b, nsm.NewCommandMessage(nsm.RCConfigure))
	expect(t, b, nsm.NewCommandMessage(nsm.RCStop), nsm.OK, nsm.ReadyS)
	expect(t, b, nsm.NewCommandMessage(nsm.RCConfigure), nsm.OK, nsm.ReadyS)
	expect(t, b, nsm.NewCommandMessage(nsm.RCAbort), nsm.OK, nsm.NotReadyS)
}

func TestController_InvalidCommands(t *testing.T) {
	_, b := newTestController(t, NewSimReadout(1), testStore(t))
	defer b.Close()

	for _, cmd := range []nsm.Command{nsm.RCStart, nsm.RCStop, nsm.RCPause, nsm.RCResume, nsm.RCRecover} {
		expectIgnored(t, b, nsm.NewCommandMessage(cmd, 1, 1))
	}

	assert.False(t, b.Request(nsm.NewCommandMessage(nsm.HVTurnOn)))
}

func TestController_StartWithoutRunNumber(t *testing.T) {
	_, b := newTestController(t, NewSimReadout(1), testStore(t))
	defer b.Close()

	expect(t, b, nsm.NewCommandMessage(nsm.RCLoad), nsm.OK, nsm.ReadyS)
	r := expect(t, b, nsm.NewCommandMessage(nsm.RCStart, 3), nsm.Error, nsm.ReadyS)
	assert.Contains(t, r.Text(), "runno")
}

func TestController_MissingConfig(t *testing.T) {
	_, b := newTestController(t, NewSimReadout(1), testStore(t))
	defer b.Close()

	r := expect(t, b, nsm.NewCommandMessage(nsm.RCLoad).WithText("cosmic"), nsm.Error, nsm.ErrorES)
	assert.Contains(t, r.Text(), "cosmic")

	expectIgnored(t, b, nsm.NewCommandMessage(nsm.RCLoad))
	expect(t, b, nsm.NewCommandMessage(nsm.RCRecover), nsm.OK, nsm.ReadyS)
}

func TestController_AbortFromError(t *testing.T) {
	c, b := newTestController(t, NewSimReadout(1), nil)
	defer b.Close()

	c.SetState(nsm.ErrorES)
	expect(t, b, nsm.NewCommandMessage(nsm.RCAbort), nsm.OK, nsm.NotReadyS)
}

func TestController_MonitorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := NewMockDriver(ctrl)
	c, b := newTestController(t, d, nil)
	defer b.Close()

	gomock.InOrder(
		d.EXPECT().Load(nil).Return(nil),
		d.EXPECT().Start(1, 7).Return(nil),
		d.EXPECT().Monitor().Return(nil),
		d.EXPECT().Monitor().Return(errors.New("link down")),
		d.EXPECT().Recover().Return(nil),
	)

	expect(t, b, nsm.NewCommandMessage(nsm.RCLoad), nsm.OK, nsm.ReadyS)
	expect(t, b, nsm.NewCommandMessage(nsm.RCStart, 1, 7), nsm.OK, nsm.RunningS)

	c.Timeout()
	assert.Equal(t, nsm.RunningS, c.Node().State())
	c.Timeout()
	assert.Equal(t, nsm.ErrorES, c.Node().State())

	// not monitored outside RUNNING
	c.Timeout()

	expect(t, b, nsm.NewCommandMessage(nsm.RCRecover), nsm.OK, nsm.ReadyS)
}

func TestController_DriverFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	d := NewMockDriver(ctrl)
	c, b := newTestController(t, d, nil)
	defer b.Close()

	ch := c.Events().On(callback.EventState)

	d.EXPECT().Boot(nil).Return(errors.New("no firmware"))

	r := expect(t, b, nsm.NewCommandMessage(nsm.RCBoot), nsm.Error, nsm.ErrorES)
	assert.Contains(t, r.Text(), "no firmware")

	e := <-ch
	assert.Equal(t, nsm.BootingTS, e.Args[1])
	e = <-ch
	assert.Equal(t, nsm.ErrorES, e.Args[1])
}

func TestSimReadout_Load(t *testing.T) {
	s := NewSimReadout(1)

	obj := dbconfig.NewObject("x")
	obj.SetInt("rate", -1)
	assert.Error(t, s.Load(obj))

	obj.SetText("rate", "fast")
	assert.Error(t, s.Load(obj))

	obj.SetInt("rate", 5)
	require.NoError(t, s.Load(obj))
	require.NoError(t, s.Start(1, 1))
	require.NoError(t, s.Monitor())
	assert.EqualValues(t, 5, s.Events())

	s.Fail(errors.New("boom"))
	assert.Error(t, s.Monitor())
	require.NoError(t, s.Recover())
	assert.NoError(t, s.Monitor())
}

func TestTable(t *testing.T) {
	for cmd, want := range map[nsm.Command][2]nsm.State{
		nsm.RCBoot:    {nsm.BootingTS, nsm.NotReadyS},
		nsm.RCLoad:    {nsm.LoadingTS, nsm.ReadyS},
		nsm.RCStart:   {nsm.StartingTS, nsm.RunningS},
		nsm.RCStop:    {nsm.StoppingTS, nsm.ReadyS},
		nsm.RCPause:   {nsm.PausingTS, nsm.PausedS},
		nsm.RCResume:  {nsm.ResumingTS, nsm.RunningS},
		nsm.RCAbort:   {nsm.AbortingTS, nsm.NotReadyS},
		nsm.RCRecover: {nsm.RecoveringTS, nsm.ReadyS},
	} {
		assert.Equal(t, want[0], Table.NextTState(cmd, nsm.UnknownState), cmd.Label())
		assert.Equal(t, want[1], Table.NextState(cmd), cmd.Label())
	}
	assert.Equal(t, nsm.TransitionTS, Table.NextTState(nsm.RCConfigure, nsm.ReadyS))
}
