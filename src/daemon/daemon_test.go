package daemon

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/config"
	"github.com/b2slc/slowcontrol/src/dbconfig"
	"github.com/b2slc/slowcontrol/src/hv"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

type countingHandler struct {
	*hv.Controller
	timeouts *atomic.Int32
}

func (c *countingHandler) Timeout() {
	c.timeouts.Inc()
	c.Controller.Timeout()
}

func newTestDaemon(t *testing.T, network *nsm.InmemNetwork) (*Daemon, *countingHandler) {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.NSM.NodeName = "HV01"
	conf.TimeoutSec = 0.05

	var handler *countingHandler
	d := NewDaemon(conf, func(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
		handler = &countingHandler{
			Controller: hv.NewController(conf.NSM.NodeName, hv.NewSimSupply(2), 2, logger),
			timeouts:   atomic.NewInt32(0),
		}
		return handler, nil
	})
	d.Transport = network.NewTransport()

	require.NoError(t, d.Init())
	return d, handler
}

func TestDaemon_Run(t *testing.T) {
	network := nsm.NewInmemNetwork()
	d, h := newTestDaemon(t, network)

	done := make(chan error, 1)
	go func() {
		done <- d.Run()
	}()

	_, ok := d.Store.(*dbconfig.InmemStore)
	assert.True(t, ok)
	assert.Equal(t, 50*time.Millisecond, h.TimeoutInterval())

	ctx := nsm.NewContext(common.NewTestEntry(t, common.TestLogLevel))
	defer ctx.Close()
	client, err := ctx.Connect(nsm.NewNode("OPERATOR", nsm.UnknownState), network.NewTransport())
	require.NoError(t, err)

	require.NoError(t, client.Send("HV01", nsm.NewCommandMessage(nsm.HVTurnOn)))

	com, err := ctx.Select(time.Second)
	require.NoError(t, err)
	reply, ok := com.PopQueue()
	require.True(t, ok)
	assert.Equal(t, nsm.OK, reply.Command())
	assert.Equal(t, "STANDBY", reply.Text())

	// unhandled requests do not stop the loop
	require.NoError(t, client.Send("HV01", nsm.NewCommandMessage(nsm.RCStart)))
	require.NoError(t, client.Send("HV01", nsm.NewCommandMessage(nsm.StateCheck)))
	com, err = ctx.Select(time.Second)
	require.NoError(t, err)
	reply, _ = com.PopQueue()
	assert.Equal(t, "STANDBY", reply.Text())

	time.Sleep(200 * time.Millisecond)
	assert.True(t, h.timeouts.Load() >= 2, "timeouts: %d", h.timeouts.Load())

	d.Shutdown()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	// a second shutdown is harmless
	d.Shutdown()
}

func TestDaemon_InitErrors(t *testing.T) {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	d := NewDaemon(conf, nil)
	err := d.Init()
	assert.True(t, common.IsKind(err, common.ConfigErr))

	// no hub listening
	conf = config.NewTestConfig(t, common.TestLogLevel)
	conf.NSM.NodeName = "HV01"
	conf.NSM.Port = 1
	conf.TimeoutSec = 0.2
	d = NewDaemon(conf, func(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
		return hv.NewController(conf.NSM.NodeName, hv.NewSimSupply(1), 1, logger), nil
	})
	err = d.Init()
	assert.True(t, common.IsKind(err, common.ConnectionErr))
	d.Shutdown()
}

func TestDaemon_DuplicateNode(t *testing.T) {
	network := nsm.NewInmemNetwork()
	d, _ := newTestDaemon(t, network)
	defer d.Shutdown()

	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.NSM.NodeName = "HV01"
	other := NewDaemon(conf, func(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
		return hv.NewController(conf.NSM.NodeName, hv.NewSimSupply(1), 1, logger), nil
	})
	other.Transport = network.NewTransport()
	err := other.Init()
	assert.True(t, common.IsKind(err, common.ConnectionErr))
	other.Shutdown()
}

func TestDaemon_ServiceHoldsLoopLock(t *testing.T) {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.NSM.NodeName = "HV01"
	conf.Service.Listen = "127.0.0.1:0"
	d := NewDaemon(conf, func(conf *config.Config, store dbconfig.Store, logger *logrus.Entry) (callback.Handler, error) {
		return hv.NewController(conf.NSM.NodeName, hv.NewSimSupply(1), 1, logger), nil
	})
	d.Transport = nsm.NewInmemNetwork().NewTransport()
	require.NoError(t, d.Init())
	defer d.Shutdown()
	require.NotNil(t, d.Service)

	d.loopLock.Lock()
	done := make(chan int, 1)
	go func() {
		rec := httptest.NewRecorder()
		d.Service.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/node", nil))
		done <- rec.Code
	}()

	select {
	case <-done:
		d.loopLock.Unlock()
		t.Fatal("status read while the event loop held the node")
	case <-time.After(50 * time.Millisecond):
	}

	d.loopLock.Unlock()
	select {
	case code := <-done:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(time.Second):
		t.Fatal("status request did not complete")
	}
}
