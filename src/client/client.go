package client

import (
	"time"

	"github.com/b2slc/slowcontrol/src/callback"
	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds the wait for a reply.
const DefaultTimeout = 5 * time.Second

// Client is a node that only sends requests and reads replies.
type Client struct {
	ctx     *nsm.Context
	com     *nsm.Communicator
	timeout time.Duration
	logger  *logrus.Entry
}

// NodeName returns a name that is unique for every call, so that several
// tools can be connected at the same time.
func NodeName(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// Dial connects to the hub at addr and registers a node named after prefix.
func Dial(addr, prefix string, timeout time.Duration, logger *logrus.Entry) (*Client, error) {
	trans, err := nsm.NewTCPTransport(addr, timeout, logger)
	if err != nil {
		return nil, err
	}
	c, err := New(trans, NodeName(prefix), timeout, logger)
	if err != nil {
		trans.Close()
		return nil, err
	}
	return c, nil
}

// New registers a node named name on trans.
func New(trans nsm.Transport, name string, timeout time.Duration, logger *logrus.Entry) (*Client, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx := nsm.NewContext(logger)
	com, err := ctx.Connect(nsm.NewNode(name, nsm.UnknownState), trans)
	if err != nil {
		ctx.Close()
		return nil, err
	}

	return &Client{
		ctx:     ctx,
		com:     com,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Name returns the name the client registered with.
func (c *Client) Name() string {
	return c.com.Node().Name()
}

// Request sends msg to node and returns the first message node sends back.
// Messages from other nodes are dropped.
func (c *Client) Request(node string, msg nsm.Message) (nsm.Message, error) {
	id := c.com.NodeID(node)
	if id < 0 {
		return nsm.Message{}, common.NewError(common.NotFoundErr, msg.Request()+" "+node, nsm.ErrUnknownNode)
	}
	if err := c.com.SendTo(uint16(id), msg); err != nil {
		return nsm.Message{}, err
	}

	deadline := time.Now().Add(c.timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nsm.Message{}, common.Errorf(common.TimeoutErr, msg.Request()+" "+node, "no reply within %v", c.timeout)
		}
		com, err := c.ctx.Select(remaining)
		if err == nsm.ErrSelectTimeout {
			continue
		}
		if err != nil {
			return nsm.Message{}, common.NewError(common.ConnectionErr, msg.Request()+" "+node, err)
		}
		for {
			m, ok := com.PopQueue()
			if !ok {
				break
			}
			if m.Src() == uint16(id) {
				return m, nil
			}
			c.logger.WithField("msg", m.String()).Debug("Dropping unrelated message")
		}
	}
}

// Command sends a state-changing request and returns the state node reports
// in its OK reply. An ERROR or FATAL reply becomes an error carrying the
// reply text.
func (c *Client) Command(node string, msg nsm.Message) (nsm.State, error) {
	resp, err := c.Request(node, msg)
	if err != nil {
		return nsm.UnknownState, err
	}
	switch resp.Command() {
	case nsm.OK:
		return nsm.StateFromLabel(resp.Text()), nil
	case nsm.Error, nsm.Fatal:
		return nsm.UnknownState, common.Errorf(common.HandlerErr, msg.Request()+" "+node, "%s: %s", resp.Request(), resp.Text())
	default:
		return nsm.UnknownState, common.Errorf(common.ProtocolErr, msg.Request()+" "+node, "unexpected reply %s", resp.Request())
	}
}

// State asks node for its current state.
func (c *Client) State(node string) (nsm.State, error) {
	return c.Command(node, nsm.NewCommandMessage(nsm.StateCheck))
}

// Get reads the named variable of node.
func (c *Client) Get(node, name string) (vars.Value, error) {
	resp, err := c.vrequest(node, nsm.NewCommandMessage(nsm.VGet).WithText(name))
	if err != nil {
		return vars.Value{}, err
	}
	return vars.Decode(resp.Data())
}

// Set writes v on node and returns the value node holds afterwards.
func (c *Client) Set(node string, v vars.Value) (vars.Value, error) {
	b, err := vars.Encode(v)
	if err != nil {
		return vars.Value{}, err
	}
	resp, err := c.vrequest(node, nsm.NewCommandMessage(nsm.VSet).WithData(b))
	if err != nil {
		return vars.Value{}, err
	}
	return vars.Decode(resp.Data())
}

// List returns every variable of node.
func (c *Client) List(node string) ([]vars.Value, error) {
	resp, err := c.vrequest(node, nsm.NewCommandMessage(nsm.VListGet))
	if err != nil {
		return nil, err
	}
	return vars.DecodeList(resp.Data())
}

func (c *Client) vrequest(node string, msg nsm.Message) (nsm.Message, error) {
	resp, err := c.Request(node, msg)
	if err != nil {
		return resp, err
	}
	if resp.Command() != nsm.VReply {
		return resp, common.Errorf(common.ProtocolErr, msg.Request()+" "+node, "unexpected reply %s", resp.Request())
	}
	if resp.Param(0) != callback.VReplySuccess {
		return resp, common.Errorf(common.NotFoundErr, msg.Request()+" "+node, "%s", resp.Text())
	}
	return resp, nil
}

// Close unregisters the client.
func (c *Client) Close() error {
	return c.ctx.Close()
}
