package journaldreader

import (
	"encoding/binary"
	"fmt"
)

// isAligned8 reports whether offset is a multiple of 8, the alignment
// every object in the arena must begin on.
func isAligned8(offset uint64) bool {
	return offset&7 == 0
}

// align8 rounds offset up to the next multiple of 8.
func align8(offset uint64) uint64 {
	return (offset + 7) &^ 7
}

// cursor is a forward-only reader over a borrowed byte slice. It never
// copies the underlying buffer; readExact hands back sub-slices of it.
type cursor struct {
	buf []byte
	pos uint64
}

func newCursor(buf []byte, pos uint64) *cursor {
	return &cursor{buf: buf, pos: pos}
}

func (c *cursor) offset() uint64 {
	return c.pos
}

func (c *cursor) readExact(n uint64) ([]byte, error) {
	if n > uint64(len(c.buf)) || c.pos > uint64(len(c.buf))-n {
		return nil, newDecodeError(ErrTruncated, c.pos, "short read")
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readU8() (uint8, error) {
	b, err := c.readExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU32LE() (uint32, error) {
	b, err := c.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readU64LE() (uint64, error) {
	b, err := c.readExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readU128LE reads 16 bytes and interprets them as a little-endian 128-bit
// integer returned as (low64, high64).
func (c *cursor) readU128LE() (lo uint64, hi uint64, err error) {
	b, err := c.readExact(16)
	if err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16]), nil
}

// readU128BE reads 16 bytes and interprets them as a big-endian 128-bit
// integer returned as (high64, low64), the journal header's canonical
// form for file/machine/boot/seqnum identifiers.
func (c *cursor) readU128BE() (hi uint64, lo uint64, err error) {
	b, err := c.readExact(16)
	if err != nil {
		return 0, 0, err
	}
	return binary.BigEndian.Uint64(b[0:8]), binary.BigEndian.Uint64(b[8:16]), nil
}

// ID128 is an opaque 128-bit identifier (file, machine, boot, or sequence
// number ID) as stored in the journal header: big-endian byte order, so
// the high half is the first 8 bytes on disk.
type ID128 struct {
	Hi, Lo uint64
}

func (id ID128) String() string {
	return formatHex128(id.Hi, id.Lo)
}

func formatHex128(hi, lo uint64) string {
	return fmt.Sprintf("%016x%016x", hi, lo)
}
