// SPDX-License-Identifier: LGPL-2.1-or-later
package journaldreader

import "fmt"

const (
	dataObjectSize       = 64 // common header + 6 trailing u64 fields
	fieldObjectSize      = 40 // common header + 3 trailing u64 fields
	entryObjectSize      = 64 // common header + seqnum/realtime/monotonic + boot_id(16) + xor_hash
	entryArrayObjectSize = 24 // common header + next_entry_array_offset
	hashTableItemBase    = 48 // matches the reference's (and the format's) bucket-count divisor
	tagObjectSize        = 64 // common header + seqnum/epoch + 32-byte tag
)

// DecodeAt decodes the single object at offset in buf. It requires offset
// to be 8-byte aligned and within bounds; it reads only as much of buf as
// the decoded variant's declared size calls for.
func DecodeAt(buf []byte, offset uint64) (Object, error) {
	if !isAligned8(offset) {
		return nil, newDecodeError(ErrInvalidOffset, offset, "offset is not 8-byte aligned")
	}
	if offset+objectHeaderSize > uint64(len(buf)) {
		return nil, newDecodeError(ErrTruncated, offset, "buffer too short for an object header")
	}

	c := newCursor(buf, offset)
	hdr, err := decodeObjectHeader(c)
	if err != nil {
		return nil, err
	}
	if hdr.Size < objectHeaderSize {
		return nil, newDecodeError(ErrInvalidSize, offset, "size smaller than the common header")
	}
	if offset+hdr.Size > uint64(len(buf)) {
		return nil, newDecodeError(ErrTruncated, offset, "object extends past the end of the buffer")
	}

	switch hdr.Type {
	case ObjectUnused:
		return nil, newDecodeError(ErrUnusedObject, offset, "")
	case ObjectData:
		return decodeData(c, hdr, offset)
	case ObjectField:
		return decodeField(c, hdr, offset)
	case ObjectEntry:
		return decodeEntry(c, hdr, offset)
	case ObjectDataHashTable, ObjectFieldHashTable:
		return decodeHashTable(c, hdr, offset)
	case ObjectEntryArray:
		return decodeEntryArray(c, hdr, offset)
	case ObjectTag:
		return decodeTag(c, hdr, offset)
	default:
		return nil, newDecodeError(ErrUnknownObject, offset, fmt.Sprintf("type tag %d", uint8(hdr.Type)))
	}
}

func decodeObjectHeader(c *cursor) (ObjectHeader, error) {
	typ, err := c.readU8()
	if err != nil {
		return ObjectHeader{}, err
	}
	flags, err := c.readU8()
	if err != nil {
		return ObjectHeader{}, err
	}
	reserved, err := c.readExact(6)
	if err != nil {
		return ObjectHeader{}, err
	}
	size, err := c.readU64LE()
	if err != nil {
		return ObjectHeader{}, err
	}
	var r [6]byte
	copy(r[:], reserved)
	return ObjectHeader{Type: ObjectType(typ), Flags: flags, Reserved: r, Size: size}, nil
}

func decodeData(c *cursor, hdr ObjectHeader, offset uint64) (Object, error) {
	if hdr.Size < dataObjectSize {
		return nil, newDecodeError(ErrInvalidSize, offset, "data object smaller than its fixed prefix")
	}
	hash, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	nextHash, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	nextField, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	entryOffset, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	entryArrayOffset, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	nEntries, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	payload, err := c.readExact(hdr.Size - dataObjectSize)
	if err != nil {
		return nil, err
	}
	return DataObject{
		Header:           hdr,
		Hash:             hash,
		NextHashOffset:   nextHash,
		NextFieldOffset:  nextField,
		EntryOffset:      entryOffset,
		EntryArrayOffset: entryArrayOffset,
		NEntries:         nEntries,
		Payload:          payload,
	}, nil
}

func decodeField(c *cursor, hdr ObjectHeader, offset uint64) (Object, error) {
	if hdr.Size < fieldObjectSize {
		return nil, newDecodeError(ErrInvalidSize, offset, "field object smaller than its fixed prefix")
	}
	hash, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	nextHash, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	headData, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	payload, err := c.readExact(hdr.Size - fieldObjectSize)
	if err != nil {
		return nil, err
	}
	return FieldObject{
		Header:         hdr,
		Hash:           hash,
		NextHashOffset: nextHash,
		HeadDataOffset: headData,
		Payload:        payload,
	}, nil
}

// decodeEntry replicates the reference decoder's item-count arithmetic
// exactly: it computes a raw count from (size-48)/16 and then loops with
// an exclusive start at 1, which nets out to one fewer item than the raw
// count — equal to the geometrically correct (size-64)/16, since the
// fixed prefix after the common header is 48 bytes. See DESIGN.md.
func decodeEntry(c *cursor, hdr ObjectHeader, offset uint64) (Object, error) {
	if hdr.Size < entryObjectSize {
		return nil, newDecodeError(ErrInvalidSize, offset, "entry object smaller than its fixed prefix")
	}
	seqnum, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	realtime, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	monotonic, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	bootLo, bootHi, err := c.readU128LE()
	if err != nil {
		return nil, err
	}
	xorHash, err := c.readU64LE()
	if err != nil {
		return nil, err
	}

	rawCount := (hdr.Size - 48) / 16
	items := make([]EntryItem, 0, rawCount)
	for i := uint64(1); i < rawCount; i++ {
		objOffset, err := c.readU64LE()
		if err != nil {
			return nil, err
		}
		hash, err := c.readU64LE()
		if err != nil {
			return nil, err
		}
		items = append(items, EntryItem{ObjectOffset: objOffset, Hash: hash})
	}

	return EntryObject{
		Header:    hdr,
		Seqnum:    seqnum,
		Realtime:  realtime,
		Monotonic: monotonic,
		BootID:    ID128{Hi: bootHi, Lo: bootLo},
		XorHash:   xorHash,
		Items:     items,
	}, nil
}

func decodeHashTable(c *cursor, hdr ObjectHeader, offset uint64) (Object, error) {
	if hdr.Size < hashTableItemBase {
		return nil, newDecodeError(ErrInvalidSize, offset, "hash table object smaller than its fixed prefix")
	}
	count := (hdr.Size - hashTableItemBase) / 16
	items := make([]HashItem, 0, count)
	for i := uint64(0); i < count; i++ {
		head, err := c.readU64LE()
		if err != nil {
			return nil, err
		}
		tail, err := c.readU64LE()
		if err != nil {
			return nil, err
		}
		items = append(items, HashItem{HeadOffset: head, TailOffset: tail})
	}
	return HashTableObject{Header: hdr, Items: items}, nil
}

// decodeEntryArray preserves the reference's over-allocating capacity
// formula (size-20)/8 rather than the geometrically correct (size-24)/8;
// harmless, since zero-valued items are skipped before being appended.
func decodeEntryArray(c *cursor, hdr ObjectHeader, offset uint64) (Object, error) {
	if hdr.Size < entryArrayObjectSize {
		return nil, newDecodeError(ErrInvalidSize, offset, "entry array object smaller than its fixed prefix")
	}
	next, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	count := (hdr.Size - 20) / 8
	items := make([]uint64, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := c.readU64LE()
		if err != nil {
			return nil, err
		}
		if item == 0 {
			continue
		}
		items = append(items, item)
	}
	return EntryArrayObject{Header: hdr, NextEntryArrayOffset: next, Items: items}, nil
}

func decodeTag(c *cursor, hdr ObjectHeader, offset uint64) (Object, error) {
	if hdr.Size < tagObjectSize {
		return nil, newDecodeError(ErrInvalidSize, offset, "tag object smaller than its fixed prefix")
	}
	seqnum, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	epoch, err := c.readU64LE()
	if err != nil {
		return nil, err
	}
	tagBytes, err := c.readExact(tagLength)
	if err != nil {
		return nil, err
	}
	var tag [tagLength]byte
	copy(tag[:], tagBytes)
	return TagObject{Header: hdr, Seqnum: seqnum, Epoch: epoch, Tag: tag}, nil
}
