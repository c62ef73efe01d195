package nsm

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const bufSize = 64 * 1024

/*
TCPTransport is the client side of a connection to the hub. Frames are
written as they are sent; a dedicated reader routine decodes inbound frames
and either hands them to a waiting system request (replies from the hub,
matched by sequence number) or to the consumer channel.
*/
type TCPTransport struct {
	logger *logrus.Entry

	conn      net.Conn
	w         *bufio.Writer
	writeLock sync.Mutex

	consumeCh chan Message

	pending     map[uint16]chan Message
	pendingLock sync.Mutex
	seq         *atomic.Uint32

	id      *atomic.Uint32
	timeout time.Duration

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
}

// NewTCPTransport dials the hub at addr. The timeout applies to the dial
// and to system requests.
func NewTCPTransport(addr string, timeout time.Duration, logger *logrus.Entry) (*TCPTransport, error) {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, common.NewError(common.ConnectionErr, "dial "+addr, err)
	}

	trans := &TCPTransport{
		logger:     logger,
		conn:       conn,
		w:          bufio.NewWriterSize(conn, bufSize),
		consumeCh:  make(chan Message, 64),
		pending:    make(map[uint16]chan Message),
		seq:        atomic.NewUint32(0),
		id:         atomic.NewUint32(uint32(AnonymousID)),
		timeout:    timeout,
		shutdownCh: make(chan struct{}),
	}

	go trans.listen()

	return trans, nil
}

// Register implements the Transport interface.
func (t *TCPTransport) Register(name string, pid int) (uint16, error) {
	req := NewCommandMessage(NSMRegister, int32(pid)).WithText(name)
	resp, err := t.systemRequest(req)
	if err != nil {
		return 0, err
	}
	if resp.NParams() < 1 || resp.Param(0) < 0 {
		return 0, common.Errorf(common.ConnectionErr, "register", "hub refused node %s (%d)", name, resp.Param(0))
	}
	id := uint16(resp.Param(0))
	t.id.Store(uint32(id))
	return id, nil
}

// Lookup implements the Transport interface.
func (t *TCPTransport) Lookup(name string) (uint16, int, error) {
	resp, err := t.systemRequest(NewCommandMessage(NSMNodeID).WithText(name))
	if err != nil {
		return 0, -1, err
	}
	if resp.Param(0) < 0 {
		return 0, -1, ErrUnknownNode
	}
	return uint16(resp.Param(0)), int(resp.Param(1)), nil
}

// NodeName implements the Transport interface.
func (t *TCPTransport) NodeName(id uint16) (string, error) {
	resp, err := t.systemRequest(NewCommandMessage(NSMNodeName, int32(id)))
	if err != nil {
		return "", err
	}
	if resp.Len() == 0 {
		return "", ErrUnknownNode
	}
	return resp.Text(), nil
}

// Send implements the Transport interface.
func (t *TCPTransport) Send(m Message) error {
	if m.Seq() == 0 {
		m = m.WithSeq(t.nextSeq())
	}
	return t.write(m.WithSource(uint16(t.id.Load())))
}

// Consumer implements the Transport interface.
func (t *TCPTransport) Consumer() <-chan Message {
	return t.consumeCh
}

// LocalAddr implements the Transport interface.
func (t *TCPTransport) LocalAddr() string {
	return t.conn.LocalAddr().String()
}

// IsShutdown is used to check if the transport is shutdown.
func (t *TCPTransport) IsShutdown() bool {
	select {
	case <-t.shutdownCh:
		return true
	default:
		return false
	}
}

// Close is used to stop the transport.
func (t *TCPTransport) Close() error {
	t.shutdownLock.Lock()
	defer t.shutdownLock.Unlock()

	if !t.shutdown {
		close(t.shutdownCh)
		t.conn.Close()
		t.shutdown = true
	}
	return nil
}

func (t *TCPTransport) nextSeq() uint16 {
	for {
		s := uint16(t.seq.Inc())
		if s != 0 {
			return s
		}
	}
}

func (t *TCPTransport) write(m Message) error {
	if t.IsShutdown() {
		return ErrTransportShutdown
	}

	t.writeLock.Lock()
	defer t.writeLock.Unlock()

	if t.timeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	}
	if err := WriteMessage(t.w, m); err != nil {
		return common.NewError(common.ConnectionErr, "send "+m.Request(), err)
	}
	if err := t.w.Flush(); err != nil {
		return common.NewError(common.ConnectionErr, "send "+m.Request(), err)
	}
	return nil
}

// systemRequest sends a request to the hub and waits for its reply.
func (t *TCPTransport) systemRequest(req Message) (Message, error) {
	seq := t.nextSeq()
	respCh := make(chan Message, 1)

	t.pendingLock.Lock()
	t.pending[seq] = respCh
	t.pendingLock.Unlock()

	defer func() {
		t.pendingLock.Lock()
		delete(t.pending, seq)
		t.pendingLock.Unlock()
	}()

	if err := t.write(req.WithSeq(seq).WithDest(HubID).WithSource(uint16(t.id.Load()))); err != nil {
		return Message{}, err
	}

	var timeout <-chan time.Time
	if t.timeout > 0 {
		timer := time.NewTimer(t.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case resp := <-respCh:
		return resp, nil
	case <-timeout:
		return Message{}, common.Errorf(common.TimeoutErr, req.Request(), "no reply from hub within %v", t.timeout)
	case <-t.shutdownCh:
		return Message{}, ErrTransportShutdown
	}
}

// listen decodes inbound frames until the connection is closed.
func (t *TCPTransport) listen() {
	defer close(t.consumeCh)

	r := bufio.NewReaderSize(t.conn, bufSize)
	for {
		m, err := ReadMessage(r)
		if err != nil {
			if t.IsShutdown() {
				return
			}
			if err == io.EOF {
				t.logger.Warn("Hub closed the connection")
			} else {
				t.logger.WithError(frameError("read", err)).Error("Failed to decode incoming frame")
			}
			t.Close()
			return
		}

		if m.Src() == HubID && m.Command().IsSystem() {
			t.pendingLock.Lock()
			ch, ok := t.pending[m.Seq()]
			t.pendingLock.Unlock()
			if ok {
				ch <- m
			} else {
				t.logger.WithField("msg", m.String()).Debug("Dropping unexpected system reply")
			}
			continue
		}

		select {
		case t.consumeCh <- m:
		case <-t.shutdownCh:
			return
		}
	}
}

// String ...
func (t *TCPTransport) String() string {
	return fmt.Sprintf("tcp(%s->%s)", t.conn.LocalAddr(), t.conn.RemoteAddr())
}
