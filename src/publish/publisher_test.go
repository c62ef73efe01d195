package publish

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token struct {
	err error
}

func (t *token) Wait() bool                     { return true }
func (t *token) WaitTimeout(time.Duration) bool { return true }
func (t *token) Error() error                   { return t.err }

func (t *token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type publication struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	sync.Mutex
	pubs         []publication
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.Lock()
	defer c.Unlock()
	c.pubs = append(c.pubs, publication{topic, retained, payload.([]byte)})
	return &token{err: c.err}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnected = true
}

func (c *fakeClient) publications() []publication {
	c.Lock()
	defer c.Unlock()
	return append([]publication(nil), c.pubs...)
}

func TestPublisher_State(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "slc", "HV01", common.NewTestEntry(t, common.TestLogLevel))

	require.NoError(t, p.PublishState(nsm.OffS, nsm.TurningOnTS))

	pubs := client.publications()
	require.Len(t, pubs, 1)
	assert.Equal(t, "slc/HV01/state", pubs[0].topic)
	assert.True(t, pubs[0].retained)

	var ev StateEvent
	require.NoError(t, json.Unmarshal(pubs[0].payload, &ev))
	assert.Equal(t, "HV01", ev.Node)
	assert.Equal(t, "TURNINGON", ev.State)
	assert.Equal(t, "OFF", ev.Old)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(pubs[0].payload, &raw))
	assert.Equal(t, "OFF", raw["old"])
	assert.NotContains(t, raw, "from")

	p.Close()
	assert.True(t, client.disconnected)
}

func TestPublisher_Error(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := NewPublisher(client, "slc", "HV01", common.NewTestEntry(t, common.TestLogLevel))

	err := p.PublishVar(vars.IntValue("nch", 4))
	assert.True(t, common.IsKind(err, common.ConnectionErr))
}

func TestPublisher_Attach(t *testing.T) {
	client := &fakeClient{}
	p := NewPublisher(client, "slc", "RC01", common.NewTestEntry(t, common.TestLogLevel))

	cb := callback.New(nsm.NewNode("RC01", nsm.NotReadyS), common.NewTestEntry(t, common.TestLogLevel))
	p.Attach(cb.Events())

	cb.SetState(nsm.ReadyS)
	cb.Events().Emit(callback.EventPeerState, "HV01", nsm.PeakS)
	cb.Events().Emit(callback.EventVar, vars.FloatValue("vset", 1500))

	cb.Term()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}

	topics := map[string][]byte{}
	for _, pub := range client.publications() {
		topics[pub.topic] = pub.payload
	}
	assert.Len(t, topics, 3)

	var state StateEvent
	require.NoError(t, json.Unmarshal(topics["slc/RC01/state"], &state))
	assert.Equal(t, "NOTREADY", state.Old)
	assert.Equal(t, "READY", state.State)

	var peer PeerEvent
	require.NoError(t, json.Unmarshal(topics["slc/RC01/peers/HV01"], &peer))
	assert.Equal(t, PeerEvent{Node: "RC01", Peer: "HV01", State: "PEAK", Time: peer.Time}, peer)

	var v VarEvent
	require.NoError(t, json.Unmarshal(topics["slc/RC01/vars/vset"], &v))
	assert.Equal(t, "vset", v.Name)
	assert.Equal(t, "float", v.Type)
	assert.Equal(t, "1500", v.Value)
}
