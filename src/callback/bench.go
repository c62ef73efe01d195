package callback

import (
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/nsm"
)

// BenchClient is the name of the peer node of a Bench.
const BenchClient = "CLIENT"

// Bench connects a Handler and a client node on an in-memory network, to
// exercise callbacks in tests.
type Bench struct {
	t testing.TB

	Network   *nsm.InmemNetwork
	Ctx       *nsm.Context
	Com       *nsm.Communicator
	ClientCtx *nsm.Context
	Client    *nsm.Communicator
	Handler   Handler
}

// NewBench registers h and a client node, and calls h.Init.
func NewBench(t testing.TB, h Handler) *Bench {
	network := nsm.NewInmemNetwork()

	ctx := nsm.NewContext(common.NewTestEntry(t, common.TestLogLevel))
	com, err := ctx.Connect(h.Node(), network.NewTransport())
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	clientCtx := nsm.NewContext(common.NewTestEntry(t, common.TestLogLevel))
	client, err := clientCtx.Connect(nsm.NewNode(BenchClient, nsm.UnknownState), network.NewTransport())
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if err := h.Init(com); err != nil {
		t.Fatalf("err: %v", err)
	}

	return &Bench{
		t:         t,
		Network:   network,
		Ctx:       ctx,
		Com:       com,
		ClientCtx: clientCtx,
		Client:    client,
		Handler:   h,
	}
}

// Request sends msg from the client to the handler node, dispatches it and
// returns what Perform returned.
func (b *Bench) Request(msg nsm.Message) bool {
	if err := b.Client.Send(b.Handler.Node().Name(), msg); err != nil {
		b.t.Fatalf("err: %v", err)
	}
	com, err := b.Ctx.Select(time.Second)
	if err != nil {
		b.t.Fatalf("err: %v", err)
	}
	m, ok := com.PopQueue()
	if !ok {
		b.t.Fatalf("empty queue")
	}
	return b.Handler.Perform(m)
}

// Replies collects the messages received by the client within wait.
func (b *Bench) Replies(wait time.Duration) []nsm.Message {
	res := []nsm.Message{}
	deadline := time.Now().Add(wait)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return res
		}
		com, err := b.ClientCtx.Select(remaining)
		if err != nil {
			return res
		}
		for {
			m, ok := com.PopQueue()
			if !ok {
				break
			}
			res = append(res, m)
		}
	}
}

// Close ...
func (b *Bench) Close() {
	b.Handler.Term()
	b.Ctx.Close()
	b.ClientCtx.Close()
}
