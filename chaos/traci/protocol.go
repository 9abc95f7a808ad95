// TraCI wire codec: length-prefixed messages containing commands, each
// command carrying typed values. All integers are big-endian; strings
// are a 4-byte length followed by UTF-8 bytes.

package traci

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Command identifiers (TraCI protocol).
const (
	cmdGetVersion    = 0x00
	cmdClose         = 0x7F
	cmdGetLaneVar    = 0xA3
	cmdSetLaneVar    = 0xC3
	cmdGetVehicleVar = 0xA4

	// A get command's result arrives under the command ID + 0x10.
	responseOffset = 0x10
)

// Variable identifiers.
const (
	varIDList          = 0x00
	varLaneAllowed     = 0x34
	varSpeed           = 0x40
	varMaxSpeed        = 0x41
	varCO2Emission     = 0x60
	varAccumulatedWait = 0x87
)

// Value type identifiers.
const (
	typeUByte      = 0x07
	typeByte       = 0x08
	typeInteger    = 0x09
	typeDouble     = 0x0B
	typeString     = 0x0C
	typeStringList = 0x0E
)

// Status result codes.
const (
	statusOK             = 0x00
	statusNotImplemented = 0x01
	statusError          = 0xFF
)

// packer serializes typed values into a command payload.
type packer struct {
	buf bytes.Buffer
}

func (p *packer) writeUByte(v byte) {
	p.buf.WriteByte(v)
}

func (p *packer) writeInt(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	p.buf.Write(b[:])
}

func (p *packer) writeDouble(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	p.buf.Write(b[:])
}

func (p *packer) writeString(s string) {
	p.writeInt(int32(len(s)))
	p.buf.WriteString(s)
}

func (p *packer) writeStringList(ss []string) {
	p.writeInt(int32(len(ss)))
	for _, s := range ss {
		p.writeString(s)
	}
}

func (p *packer) bytes() []byte {
	return p.buf.Bytes()
}

// unpacker deserializes typed values from a received message body.
type unpacker struct {
	r *bytes.Reader
}

func newUnpacker(b []byte) *unpacker {
	return &unpacker{r: bytes.NewReader(b)}
}

func (u *unpacker) remaining() int {
	return u.r.Len()
}

func (u *unpacker) readUByte() (byte, error) {
	return u.r.ReadByte()
}

func (u *unpacker) readInt() (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(u.r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func (u *unpacker) readDouble() (float64, error) {
	var b [8]byte
	if _, err := io.ReadFull(u.r, b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

func (u *unpacker) readString() (string, error) {
	n, err := u.readInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > u.r.Len() {
		return "", fmt.Errorf("string length %d exceeds remaining %d bytes", n, u.r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(u.r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func (u *unpacker) readStringList() ([]string, error) {
	n, err := u.readInt()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		s, err := u.readString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// frameCommand wraps a command payload with the TraCI command header.
// Commands longer than 255 bytes use the extended header: a zero length
// byte followed by a 4-byte length that includes the 5 header bytes.
func frameCommand(id byte, payload []byte) []byte {
	short := len(payload) + 2
	if short <= 0xFF {
		out := make([]byte, 0, short)
		out = append(out, byte(short), id)
		return append(out, payload...)
	}
	ext := len(payload) + 6
	out := make([]byte, 0, ext)
	out = append(out, 0)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(ext))
	out = append(out, b[:]...)
	out = append(out, id)
	return append(out, payload...)
}

// readCommandHeader consumes a command header and returns its ID. The
// length field is consumed but not otherwise used; callers parse the
// payload field by field.
func readCommandHeader(u *unpacker) (byte, error) {
	n, err := u.readUByte()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		if _, err := u.readInt(); err != nil {
			return 0, err
		}
	}
	return u.readUByte()
}

// writeMessage frames one or more commands into a single TraCI message
// and writes it out. The 4-byte message length includes itself.
func writeMessage(w io.Writer, commands ...[]byte) error {
	total := 4
	for _, c := range commands {
		total += len(c)
	}
	buf := make([]byte, 4, total)
	binary.BigEndian.PutUint32(buf, uint32(total))
	for _, c := range commands {
		buf = append(buf, c...)
	}
	_, err := w.Write(buf)
	return err
}

// readMessage reads one TraCI message and returns an unpacker over its
// body (the bytes after the length prefix).
func readMessage(r io.Reader) (*unpacker, error) {
	var lb [4]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return nil, err
	}
	total := binary.BigEndian.Uint32(lb[:])
	if total < 4 {
		return nil, fmt.Errorf("message length %d below header size", total)
	}
	body := make([]byte, total-4)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return newUnpacker(body), nil
}

// readStatus consumes a status response and checks it acknowledges the
// given command with RTYPE_OK.
func readStatus(u *unpacker, wantCmd byte) error {
	id, err := readCommandHeader(u)
	if err != nil {
		return fmt.Errorf("reading status header: %w", err)
	}
	if id != wantCmd {
		return fmt.Errorf("status for command 0x%02X, expected 0x%02X", id, wantCmd)
	}
	result, err := u.readUByte()
	if err != nil {
		return err
	}
	desc, err := u.readString()
	if err != nil {
		return err
	}
	switch result {
	case statusOK:
		return nil
	case statusNotImplemented:
		return fmt.Errorf("command 0x%02X not implemented by engine: %s", wantCmd, desc)
	default:
		return fmt.Errorf("command 0x%02X failed: %s", wantCmd, desc)
	}
}
