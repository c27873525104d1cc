package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"time"
	"unicode/utf8"

	"postboard/internal/crypto"
	"postboard/internal/domain"
)

// DefaultMaxEnvelopeSize bounds the encoded size of a single envelope.
const DefaultMaxEnvelopeSize = 64 * 1024

// ErrFraming is returned when the peer sends bytes that do not fit the
// framing rules. The stream cannot be resynchronized after it.
var ErrFraming = errors.New("wire: framing error")

// Conn is a framed postboard connection.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	timeout         time.Duration
	maxEnvelopeSize int
}

// Option configures a Conn.
type Option func(*Conn)

// WithTimeout sets the per-operation read/write deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Conn) { c.timeout = d }
}

// WithMaxEnvelopeSize overrides DefaultMaxEnvelopeSize.
func WithMaxEnvelopeSize(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.maxEnvelopeSize = n
		}
	}
}

// NewConn wraps conn.
func NewConn(conn net.Conn, opts ...Option) *Conn {
	c := &Conn{
		conn:            conn,
		r:               bufio.NewReader(conn),
		w:               bufio.NewWriter(conn),
		maxEnvelopeSize: DefaultMaxEnvelopeSize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close closes the underlying connection without flushing.
func (c *Conn) Close() error { return c.conn.Close() }

// Flush writes any buffered data to the peer.
func (c *Conn) Flush() error {
	if err := c.writeDeadline(); err != nil {
		return err
	}
	return c.w.Flush()
}

// WriteCount writes a uint32.
func (c *Conn) WriteCount(n uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return c.write(b[:])
}

// ReadCount reads a uint32.
func (c *Conn) ReadCount() (uint32, error) {
	var b [4]byte
	if err := c.read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// WriteBool writes a single boolean byte.
func (c *Conn) WriteBool(v bool) error {
	b := []byte{0}
	if v {
		b[0] = 1
	}
	return c.write(b)
}

// ReadBool reads a single boolean byte.
func (c *Conn) ReadBool() (bool, error) {
	var b [1]byte
	if err := c.read(b[:]); err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bad boolean byte 0x%02x", ErrFraming, b[0])
	}
}

// WriteString writes a length-prefixed UTF-8 string.
func (c *Conn) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("wire: string of %d bytes is too long", len(s))
	}
	if !utf8.ValidString(s) {
		return errors.New("wire: string is not valid UTF-8")
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(s)))
	if err := c.write(hdr[:]); err != nil {
		return err
	}
	return c.write([]byte(s))
}

// ReadString reads a length-prefixed UTF-8 string.
func (c *Conn) ReadString() (string, error) {
	var hdr [2]byte
	if err := c.read(hdr[:]); err != nil {
		return "", err
	}
	b := make([]byte, binary.BigEndian.Uint16(hdr[:]))
	if err := c.read(b); err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: string is not valid UTF-8", ErrFraming)
	}
	return string(b), nil
}

// WriteEnvelope writes a length-prefixed signed post.
func (c *Conn) WriteEnvelope(sp domain.SignedPost) error {
	b, err := crypto.MarshalEnvelope(sp)
	if err != nil {
		return err
	}
	if len(b) > c.maxEnvelopeSize {
		return fmt.Errorf("wire: envelope of %d bytes exceeds limit %d", len(b), c.maxEnvelopeSize)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
	if err := c.write(hdr[:]); err != nil {
		return err
	}
	return c.write(b)
}

// ReadEnvelope reads a length-prefixed signed post.
func (c *Conn) ReadEnvelope() (domain.SignedPost, error) {
	var hdr [4]byte
	if err := c.read(hdr[:]); err != nil {
		return domain.SignedPost{}, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 || n > uint32(c.maxEnvelopeSize) {
		return domain.SignedPost{}, fmt.Errorf("%w: envelope length %d", ErrFraming, n)
	}
	b := make([]byte, n)
	if err := c.read(b); err != nil {
		return domain.SignedPost{}, err
	}
	sp, err := crypto.UnmarshalEnvelope(b)
	if err != nil {
		return domain.SignedPost{}, fmt.Errorf("%w: %v", ErrFraming, err)
	}
	return sp, nil
}

func (c *Conn) read(b []byte) error {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return err
		}
	}
	if _, err := io.ReadFull(c.r, b); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated frame", ErrFraming)
		}
		return err
	}
	return nil
}

func (c *Conn) write(b []byte) error {
	if err := c.writeDeadline(); err != nil {
		return err
	}
	_, err := c.w.Write(b)
	return err
}

func (c *Conn) writeDeadline() error {
	if c.timeout <= 0 {
		return nil
	}
	return c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
}
