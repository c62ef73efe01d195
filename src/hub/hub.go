package hub

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/socket"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Reply codes of a refused NSM_REGISTER.
const (
	RegisterDuplicate  = -1
	RegisterEmptyName  = -2
	RegisterTwice      = -3
	RegisterTableFull  = -4
	RegisterPersistErr = -5
)

const (
	readSize = 64 * 1024

	// maxFrame bounds the buffered size of a frame that is still incomplete.
	maxFrame = nsm.HeaderSize + 255 + 4*nsm.MaxParams + nsm.MaxPayload

	pollInterval = 200 * time.Millisecond
)

type client struct {
	fd         int
	buf        []byte
	name       string
	id         uint16
	pid        int
	registered bool
}

// Hub accepts node connections and routes frames between them.
type Hub struct {
	mgr   *socket.Manager
	port  int
	table *JSONNodeTable

	ids    map[string]uint16
	nextID uint16

	clients map[int]*client
	byID    map[uint16]*client
	byName  map[string]*client

	rbuf []byte

	running  *atomic.Bool
	shutdown *atomic.Bool
	doneCh   chan struct{}

	logger *logrus.Entry
}

// NewHub listens on host:port. When dataDir is not empty, node ids are
// loaded from and saved to the JSON node table in dataDir.
func NewHub(host string, port int, dataDir string, logger *logrus.Entry) (*Hub, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	fd, err := socket.Listen(host, port)
	if err != nil {
		return nil, err
	}
	boundPort, err := socket.Port(fd)
	if err != nil {
		return nil, err
	}

	mgr := socket.NewManager(fd, logger.WithField("prefix", "socket"))
	mgr.SetTimeout(pollInterval)

	h := &Hub{
		mgr:      mgr,
		port:     boundPort,
		ids:      make(map[string]uint16),
		clients:  make(map[int]*client),
		byID:     make(map[uint16]*client),
		byName:   make(map[string]*client),
		rbuf:     make([]byte, readSize),
		running:  atomic.NewBool(false),
		shutdown: atomic.NewBool(false),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}

	if dataDir != "" {
		h.table = NewJSONNodeTable(dataDir)
		entries, err := h.table.Entries()
		if err != nil {
			mgr.Close()
			return nil, common.NewError(common.ConfigErr, "load "+h.table.Path(), err)
		}
		for _, e := range entries {
			h.ids[e.Name] = e.ID
			if e.ID >= h.nextID {
				h.nextID = e.ID + 1
			}
		}
		logger.WithField("nodes", len(entries)).Debug("Loaded node table")
	}

	return h, nil
}

// Port returns the port the hub listens on.
func (h *Hub) Port() int {
	return h.port
}

// Addr returns the loopback address of the hub, for local clients.
func (h *Hub) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", h.port)
}

// Run is the select loop. It returns after Shutdown.
func (h *Hub) Run() {
	h.running.Store(true)
	defer close(h.doneCh)
	defer h.mgr.Close()

	h.logger.WithField("port", h.port).Info("Hub listening")

	for !h.shutdown.Load() {
		switch h.mgr.Examine() {
		case socket.NewConnection:
			fd := h.mgr.Accepted()
			h.clients[fd] = &client{fd: fd, id: nsm.AnonymousID, pid: -1}
		case socket.DataReady:
			for fd, c := range h.clients {
				if h.mgr.Connected(fd, false) {
					h.read(c)
				}
			}
		}
	}
}

// Shutdown stops the loop and closes every connection.
func (h *Hub) Shutdown() {
	if h.shutdown.Swap(true) {
		return
	}
	if h.running.Load() {
		<-h.doneCh
		return
	}
	h.mgr.Close()
}

func (h *Hub) read(c *client) {
	n, err := socket.Read(c.fd, h.rbuf)
	if err != nil || n == 0 {
		if err != nil {
			h.logger.WithError(err).WithField("node", c.name).Debug("Read failed")
		}
		h.drop(c)
		return
	}
	c.buf = append(c.buf, h.rbuf[:n]...)

	for len(c.buf) >= nsm.HeaderSize {
		size := nsm.FrameSize(c.buf)
		if size > maxFrame {
			h.logger.WithFields(logrus.Fields{
				"node": c.name,
				"size": size,
			}).Error("Oversized frame")
			h.drop(c)
			return
		}
		if len(c.buf) < size {
			return
		}

		m, err := nsm.ReadMessage(bytes.NewReader(c.buf[:size]))
		c.buf = append(c.buf[:0], c.buf[size:]...)
		if err != nil {
			h.logger.WithError(err).WithField("node", c.name).Error("Bad frame")
			h.drop(c)
			return
		}

		h.dispatch(c, m)
		if _, ok := h.clients[c.fd]; !ok {
			return
		}
	}
}

func (h *Hub) dispatch(c *client, m nsm.Message) {
	switch m.Command() {
	case nsm.NSMRegister:
		h.register(c, m)
	case nsm.NSMNodeID:
		id, pid := int32(-1), int32(-1)
		if peer, ok := h.byName[m.Text()]; ok {
			id, pid = int32(peer.id), int32(peer.pid)
		}
		h.reply(c, m, nsm.NewCommandMessage(nsm.NSMNodeID, id, pid).WithText(m.Text()))
	case nsm.NSMNodeName:
		resp := nsm.NewCommandMessage(nsm.NSMNodeName, m.Param(0))
		if peer, ok := h.byID[uint16(m.Param(0))]; ok {
			resp = resp.WithText(peer.name)
		}
		h.reply(c, m, resp)
	case nsm.NSMRegistered:
		h.logger.WithField("node", c.name).Warn("Unexpected NSM_REGISTERED from client")
	default:
		h.route(c, m)
	}
}

func (h *Hub) register(c *client, m nsm.Message) {
	name := m.Text()
	code := int32(0)

	switch {
	case c.registered:
		code = RegisterTwice
	case name == "":
		code = RegisterEmptyName
	default:
		if _, ok := h.byName[name]; ok {
			code = RegisterDuplicate
		}
	}

	var id uint16
	if code == 0 {
		var err error
		id, err = h.assign(name)
		switch {
		case err == errTableFull:
			code = RegisterTableFull
		case err != nil:
			h.logger.WithError(err).Error("Failed to persist node table")
			code = RegisterPersistErr
		}
	}

	if code != 0 {
		h.logger.WithFields(logrus.Fields{
			"node": name,
			"code": code,
		}).Warn("Refused registration")
		h.reply(c, m, nsm.NewCommandMessage(nsm.NSMRegistered, code).WithText(name))
		return
	}

	c.name = name
	c.id = id
	c.pid = int(m.Param(0))
	c.registered = true
	h.byID[id] = c
	h.byName[name] = c

	h.logger.WithFields(logrus.Fields{
		"node": name,
		"id":   id,
		"pid":  c.pid,
	}).Info("Node registered")

	h.reply(c, m, nsm.NewCommandMessage(nsm.NSMRegistered, int32(id)).WithText(name))
}

var errTableFull = errors.New("node table full")

func (h *Hub) assign(name string) (uint16, error) {
	if id, ok := h.ids[name]; ok {
		return id, nil
	}
	if h.nextID >= nsm.AnonymousID {
		return 0, errTableFull
	}
	id := h.nextID
	h.nextID++
	h.ids[name] = id

	if h.table == nil {
		return id, nil
	}
	entries := make([]NodeEntry, 0, len(h.ids))
	for n, i := range h.ids {
		entries = append(entries, NodeEntry{Name: n, ID: i})
	}
	if err := h.table.Write(entries); err != nil {
		return 0, err
	}
	return id, nil
}

func (h *Hub) route(c *client, m nsm.Message) {
	if !c.registered {
		h.logger.WithField("request", m.Request()).Warn("Dropping frame from unregistered connection")
		return
	}
	dest, ok := h.byID[m.Dest()]
	if !ok {
		h.logger.WithFields(logrus.Fields{
			"from":    c.name,
			"dest":    m.Dest(),
			"request": m.Request(),
		}).Warn("Dropping frame to unknown node")
		return
	}
	h.write(dest, m.WithSource(c.id))
}

func (h *Hub) reply(c *client, req nsm.Message, resp nsm.Message) {
	h.write(c, resp.WithSeq(req.Seq()).WithSource(nsm.HubID).WithDest(c.id))
}

func (h *Hub) write(c *client, m nsm.Message) {
	b, err := nsm.EncodeMessage(m)
	if err != nil {
		h.logger.WithError(err).WithField("request", m.Request()).Error("Cannot encode frame")
		return
	}
	if err := socket.WriteAll(c.fd, b); err != nil {
		h.logger.WithError(err).WithField("node", c.name).Warn("Write failed")
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c.fd]; !ok {
		return
	}
	delete(h.clients, c.fd)
	if c.registered {
		delete(h.byID, c.id)
		delete(h.byName, c.name)
		h.logger.WithFields(logrus.Fields{
			"node": c.name,
			"id":   c.id,
		}).Info("Node disconnected")
	}
	h.mgr.Remove(c.fd)
}
