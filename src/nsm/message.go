package nsm

import (
	"fmt"
	"strings"
)

// MaxParams is the maximum number of integer parameters of a Message.
const MaxParams = 64

// MaxPayload is the maximum size of the byte payload of a Message.
const MaxPayload = 4 << 20

// Reserved node ids.
const (
	// HubID is the id of the hub itself. System requests are addressed to it
	// and system replies come from it.
	HubID uint16 = 0xFFFF

	// AnonymousID is the source id of frames sent by unregistered clients.
	AnonymousID uint16 = 0xFFFE
)

// Message is an addressed request or reply. It is immutable: the With*
// methods return modified copies and the accessors never expose internal
// slices.
type Message struct {
	request string
	seq     uint16
	src     uint16
	dest    uint16
	params  []int32
	data    []byte
}

// NewMessage creates a Message for the named request. Params beyond
// MaxParams are dropped.
func NewMessage(request string, params ...int32) Message {
	if len(params) > MaxParams {
		params = params[:MaxParams]
	}
	m := Message{
		request: request,
		src:     AnonymousID,
	}
	if len(params) > 0 {
		m.params = append([]int32(nil), params...)
	}
	return m
}

// NewCommandMessage creates a Message for a known Command.
func NewCommandMessage(cmd Command, params ...int32) Message {
	return NewMessage(cmd.Label(), params...)
}

// WithData returns a copy of m carrying the given payload.
func (m Message) WithData(data []byte) Message {
	if len(data) == 0 {
		m.data = nil
		return m
	}
	m.data = append([]byte(nil), data...)
	return m
}

// WithText returns a copy of m carrying the given text payload.
func (m Message) WithText(text string) Message {
	return m.WithData([]byte(text))
}

// WithSource returns a copy of m with the given source node id.
func (m Message) WithSource(id uint16) Message {
	m.src = id
	return m
}

// WithDest returns a copy of m with the given destination node id.
func (m Message) WithDest(id uint16) Message {
	m.dest = id
	return m
}

// WithSeq returns a copy of m with the given sequence number.
func (m Message) WithSeq(seq uint16) Message {
	m.seq = seq
	return m
}

// Request returns the request label.
func (m Message) Request() string {
	return m.request
}

// Command decodes the request label. Unrecognized labels map to Unknown.
func (m Message) Command() Command {
	return CommandFromLabel(m.request)
}

// Seq ...
func (m Message) Seq() uint16 {
	return m.seq
}

// Src returns the id of the node that sent the message.
func (m Message) Src() uint16 {
	return m.src
}

// Dest returns the id of the node the message is addressed to.
func (m Message) Dest() uint16 {
	return m.dest
}

// NParams returns the number of integer parameters.
func (m Message) NParams() int {
	return len(m.params)
}

// Param returns the i-th parameter, or 0 when there is no such parameter.
func (m Message) Param(i int) int32 {
	if i < 0 || i >= len(m.params) {
		return 0
	}
	return m.params[i]
}

// Params returns a copy of the parameter list.
func (m Message) Params() []int32 {
	return append([]int32(nil), m.params...)
}

// Len returns the payload length.
func (m Message) Len() int {
	return len(m.data)
}

// Data returns a copy of the payload.
func (m Message) Data() []byte {
	return append([]byte(nil), m.data...)
}

// Text returns the payload as a string, cut at the first NUL byte.
func (m Message) Text() string {
	s := string(m.data)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

// String ...
func (m Message) String() string {
	return fmt.Sprintf("%s(src=%d dest=%d seq=%d pars=%v len=%d)",
		m.request, m.src, m.dest, m.seq, m.params, len(m.data))
}
