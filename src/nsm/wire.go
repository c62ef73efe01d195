package nsm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/b2slc/slowcontrol/src/common"
)

// HeaderSize is the size of the fixed frame header.
const HeaderSize = 16

const maxLabel = 255

/*
A frame is a fixed header followed by the request label, the parameters and
the payload. All integers are big-endian.

	0      2      4      6      8    9       10     12          16
	| req  | seq  | src  | dest | npar | nlabel | opt  |    len    |
*/
type header struct {
	req    uint16
	seq    uint16
	src    uint16
	dest   uint16
	npar   uint8
	nlabel uint8
	opt    uint16
	len    uint32
}

func (h *header) encode(b []byte) {
	binary.BigEndian.PutUint16(b[0:], h.req)
	binary.BigEndian.PutUint16(b[2:], h.seq)
	binary.BigEndian.PutUint16(b[4:], h.src)
	binary.BigEndian.PutUint16(b[6:], h.dest)
	b[8] = h.npar
	b[9] = h.nlabel
	binary.BigEndian.PutUint16(b[10:], h.opt)
	binary.BigEndian.PutUint32(b[12:], h.len)
}

func (h *header) decode(b []byte) {
	h.req = binary.BigEndian.Uint16(b[0:])
	h.seq = binary.BigEndian.Uint16(b[2:])
	h.src = binary.BigEndian.Uint16(b[4:])
	h.dest = binary.BigEndian.Uint16(b[6:])
	h.npar = b[8]
	h.nlabel = b[9]
	h.opt = binary.BigEndian.Uint16(b[10:])
	h.len = binary.BigEndian.Uint32(b[12:])
}

// EncodeMessage serializes m into a single frame.
func EncodeMessage(m Message) ([]byte, error) {
	if len(m.request) > maxLabel {
		return nil, common.Errorf(common.ProtocolErr, "encode", "request label too long (%d)", len(m.request))
	}
	if len(m.params) > MaxParams {
		return nil, common.Errorf(common.ProtocolErr, "encode", "too many parameters (%d)", len(m.params))
	}
	if len(m.data) > MaxPayload {
		return nil, common.Errorf(common.ProtocolErr, "encode", "payload too large (%d)", len(m.data))
	}

	h := header{
		req:    uint16(CommandFromLabel(m.request)),
		seq:    m.seq,
		src:    m.src,
		dest:   m.dest,
		npar:   uint8(len(m.params)),
		nlabel: uint8(len(m.request)),
		len:    uint32(len(m.data)),
	}

	size := HeaderSize + len(m.request) + 4*len(m.params) + len(m.data)
	buf := make([]byte, size)
	h.encode(buf)
	p := HeaderSize
	p += copy(buf[p:], m.request)
	for _, v := range m.params {
		binary.BigEndian.PutUint32(buf[p:], uint32(v))
		p += 4
	}
	copy(buf[p:], m.data)
	return buf, nil
}

// WriteMessage writes m as one frame.
func WriteMessage(w io.Writer, m Message) error {
	buf, err := EncodeMessage(m)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadMessage reads one frame. io.EOF is returned untouched when the stream
// ends cleanly between two frames.
func ReadMessage(r io.Reader) (Message, error) {
	var hb [HeaderSize]byte
	if _, err := io.ReadFull(r, hb[:]); err != nil {
		return Message{}, err
	}
	var h header
	h.decode(hb[:])

	if int(h.npar) > MaxParams {
		return Message{}, common.Errorf(common.ProtocolErr, "decode", "too many parameters (%d)", h.npar)
	}
	if h.len > MaxPayload {
		return Message{}, common.Errorf(common.ProtocolErr, "decode", "payload too large (%d)", h.len)
	}

	body := make([]byte, int(h.nlabel)+4*int(h.npar)+int(h.len))
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Message{}, err
	}

	m := Message{
		seq:  h.seq,
		src:  h.src,
		dest: h.dest,
	}
	p := int(h.nlabel)
	if h.nlabel > 0 {
		m.request = string(body[:p])
	} else {
		m.request = Command(h.req).Label()
	}
	if h.npar > 0 {
		m.params = make([]int32, h.npar)
		for i := range m.params {
			m.params[i] = int32(binary.BigEndian.Uint32(body[p:]))
			p += 4
		}
	}
	if h.len > 0 {
		m.data = body[p:]
	}
	return m, nil
}

// FrameSize returns the total size of the frame starting with the header b,
// which must hold at least HeaderSize bytes.
func FrameSize(b []byte) int {
	var h header
	h.decode(b)
	return HeaderSize + int(h.nlabel) + 4*int(h.npar) + int(h.len)
}

// frameError formats a frame-level failure for logs.
func frameError(op string, err error) error {
	return common.NewError(common.ProtocolErr, op, fmt.Errorf("bad frame: %v", err))
}
