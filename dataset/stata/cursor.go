package stata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// cursor reads sequentially from an offset of an io.ReaderAt. The first
// error is sticky: later reads return zero values and err keeps it.
type cursor struct {
	r     *bufio.Reader
	order binary.ByteOrder
	off   int64
	err   error
	buf   [8]byte
}

func newCursor(ra io.ReaderAt, off, size int64, order binary.ByteOrder) *cursor {
	return &cursor{
		r:     bufio.NewReaderSize(io.NewSectionReader(ra, off, size-off), 64<<10),
		order: order,
		off:   off,
	}
}

func (c *cursor) full(p []byte) {
	if c.err != nil {
		clear(p)
		return
	}
	n, err := io.ReadFull(c.r, p)
	c.off += int64(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		c.err = fmt.Errorf("offset %d: %w", c.off, err)
	}
}

func (c *cursor) bytes(n int) []byte {
	p := make([]byte, n)
	c.full(p)
	return p
}

func (c *cursor) skip(n int64) {
	if c.err != nil {
		return
	}
	m, err := c.r.Discard(int(n))
	c.off += int64(m)
	if err != nil {
		c.err = fmt.Errorf("offset %d: %w", c.off, io.ErrUnexpectedEOF)
	}
}

func (c *cursor) u8() uint8 {
	c.full(c.buf[:1])
	return c.buf[0]
}

func (c *cursor) u16() uint16 {
	c.full(c.buf[:2])
	return c.order.Uint16(c.buf[:2])
}

func (c *cursor) u32() uint32 {
	c.full(c.buf[:4])
	return c.order.Uint32(c.buf[:4])
}

func (c *cursor) u64() uint64 {
	c.full(c.buf[:8])
	return c.order.Uint64(c.buf[:8])
}

// uint reads an unsigned integer of width 1, 2, 4 or 8 bytes.
func (c *cursor) uint(width int) uint64 {
	switch width {
	case 1:
		return uint64(c.u8())
	case 2:
		return uint64(c.u16())
	case 4:
		return uint64(c.u32())
	default:
		return c.u64()
	}
}

// expect consumes tag and fails if the input does not match it.
func (c *cursor) expect(tag string) {
	got := c.bytes(len(tag))
	if c.err == nil && string(got) != tag {
		c.err = fmt.Errorf("offset %d: expected %q, found %q", c.off-int64(len(tag)), tag, got)
	}
}

// cstring reads a fixed-width NUL-padded field.
func (c *cursor) cstring(width int) []byte {
	return trimNUL(c.bytes(width))
}

func trimNUL(p []byte) []byte {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		return p[:i]
	}
	return p
}

// uintN decodes an unsigned integer of arbitrary width (1..8 bytes).
func uintN(p []byte, bigEndian bool) uint64 {
	var v uint64
	if bigEndian {
		for _, b := range p {
			v = v<<8 | uint64(b)
		}
		return v
	}
	for i := len(p) - 1; i >= 0; i-- {
		v = v<<8 | uint64(p[i])
	}
	return v
}
