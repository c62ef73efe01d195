package publish

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/olebedev/emitter"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds the connection and every publication.
	DefaultTimeout = 5 * time.Second

	qos = 1
)

// Client is the part of mqtt.Client used by the Publisher.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// StateEvent is the payload of a state topic.
type StateEvent struct {
	Node  string    `json:"node"`
	Old   string    `json:"old"`
	State string    `json:"state"`
	Time  time.Time `json:"time"`
}

// PeerEvent is the payload of a peer topic.
type PeerEvent struct {
	Node  string    `json:"node"`
	Peer  string    `json:"peer"`
	State string    `json:"state"`
	Time  time.Time `json:"time"`
}

// VarEvent is the payload of a variable topic. Value is the text form of the
// variable.
type VarEvent struct {
	Node  string    `json:"node"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Value string    `json:"value"`
	Time  time.Time `json:"time"`
}

// Publisher publishes node events.
type Publisher struct {
	client  Client
	root    string
	node    string
	timeout time.Duration
	done    chan struct{}
	logger  *logrus.Entry
}

// NewMQTTPublisher connects to broker (tcp://host:port) and returns a
// publisher for the named node.
func NewMQTTPublisher(broker, root, node string, logger *logrus.Entry) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("slc-%s", node))
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(DefaultTimeout)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.WithError(err).Warn("MQTT connection lost")
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.WithField("broker", broker).Debug("MQTT connected")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(DefaultTimeout) {
		return nil, common.Errorf(common.TimeoutErr, "connect "+broker, "no answer within %v", DefaultTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, common.NewError(common.ConnectionErr, "connect "+broker, err)
	}

	return NewPublisher(client, root, node, logger), nil
}

// NewPublisher returns a publisher on an established client.
func NewPublisher(client Client, root, node string, logger *logrus.Entry) *Publisher {
	return &Publisher{
		client:  client,
		root:    root,
		node:    node,
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// Attach forwards the events of e until they are switched off.
func (p *Publisher) Attach(e *emitter.Emitter) {
	states := e.On(callback.EventState)
	peers := e.On(callback.EventPeerState)
	values := e.On(callback.EventVar)

	go func() {
		defer close(p.done)
		for states != nil || peers != nil || values != nil {
			select {
			case ev, ok := <-states:
				if !ok {
					states = nil
					continue
				}
				p.publishOrLog(p.PublishState(ev.Args[0].(nsm.State), ev.Args[1].(nsm.State)))
			case ev, ok := <-peers:
				if !ok {
					peers = nil
					continue
				}
				p.publishOrLog(p.PublishPeer(ev.Args[0].(string), ev.Args[1].(nsm.State)))
			case ev, ok := <-values:
				if !ok {
					values = nil
					continue
				}
				p.publishOrLog(p.PublishVar(ev.Args[0].(vars.Value)))
			}
		}
	}()
}

// Done is closed once the attached emitter switched its events off.
func (p *Publisher) Done() <-chan struct{} {
	return p.done
}

func (p *Publisher) publishOrLog(err error) {
	if err != nil {
		p.logger.WithError(err).Warn("MQTT publication failed")
	}
}

// StateTopic ...
func (p *Publisher) StateTopic() string {
	return fmt.Sprintf("%s/%s/state", p.root, p.node)
}

// PublishState publishes a state change of the node.
func (p *Publisher) PublishState(from, to nsm.State) error {
	return p.publishJSON(p.StateTopic(), true, StateEvent{
		Node:  p.node,
		Old:   from.Label(),
		State: to.Label(),
		Time:  time.Now().UTC(),
	})
}

// PublishPeer publishes the state of a peer as seen by the node.
func (p *Publisher) PublishPeer(peer string, s nsm.State) error {
	return p.publishJSON(fmt.Sprintf("%s/%s/peers/%s", p.root, p.node, peer), true, PeerEvent{
		Node:  p.node,
		Peer:  peer,
		State: s.Label(),
		Time:  time.Now().UTC(),
	})
}

// PublishVar publishes a value written to the node.
func (p *Publisher) PublishVar(v vars.Value) error {
	return p.publishJSON(fmt.Sprintf("%s/%s/vars/%s", p.root, p.node, v.Name), false, VarEvent{
		Node:  p.node,
		Name:  v.Name,
		Type:  v.Type.String(),
		Value: v.Format(),
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) publishJSON(topic string, retained bool, ev interface{}) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return common.NewError(common.ProtocolErr, "publish "+topic, err)
	}
	return p.publish(topic, retained, payload)
}

func (p *Publisher) publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(p.timeout) {
		return common.Errorf(common.TimeoutErr, "publish "+topic, "no acknowledgement within %v", p.timeout)
	}
	if err := token.Error(); err != nil {
		return common.NewError(common.ConnectionErr, "publish "+topic, err)
	}
	p.logger.WithField("topic", topic).Debug("Published")
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
