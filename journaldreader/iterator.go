// SPDX-License-Identifier: LGPL-2.1-or-later
package journaldreader

import (
	"strings"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("journaldreader")

// Journal is the top-level decoded view of one journal file. It never
// takes ownership of buf; the caller (typically a memory map) must keep
// it alive for as long as the Journal and anything derived from it are
// in use.
type Journal struct {
	buf    []byte
	Header JournalHeader
}

// Open decodes and validates the journal header at the start of buf.
func Open(buf []byte) (*Journal, error) {
	hdr, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	return &Journal{buf: buf, Header: hdr}, nil
}

// ObjectHeaderIter walks the common 16-byte object headers of the arena
// in file order, without decoding each variant's payload.
type ObjectHeaderIter struct {
	j          *Journal
	nextOffset uint64
	done       bool
}

// ObjectHeaders returns an iterator over every object header in the
// arena, starting at the field hash table's object header (the reference
// implementation's own starting point). The walk only moves forward, so it
// reaches the data hash table and every object written after the field
// hash table; objects placed before the field hash table are not visited.
func (j *Journal) ObjectHeaders() *ObjectHeaderIter {
	start := j.Header.FieldHashTableOffset - objectHeaderSize
	return &ObjectHeaderIter{j: j, nextOffset: start}
}

// Next returns the next header, or false once the walk has terminated.
func (it *ObjectHeaderIter) Next() (ObjectHeader, bool) {
	if it.done {
		return ObjectHeader{}, false
	}
	c := newCursor(it.j.buf, it.nextOffset)
	hdr, err := decodeObjectHeader(c)
	if err != nil {
		it.done = true
		log.Debugw("object header walk terminated", "offset", it.nextOffset, "err", err)
		return ObjectHeader{}, false
	}
	it.nextOffset = align8(it.nextOffset + hdr.Size)
	return hdr, true
}

// ObjectIter walks every fully decoded object in the arena in file order.
type ObjectIter struct {
	j          *Journal
	nextOffset uint64
	done       bool
}

// Objects returns an iterator over every fully decoded object in the
// arena, from the same starting offset as ObjectHeaders.
func (j *Journal) Objects() *ObjectIter {
	start := j.Header.FieldHashTableOffset - objectHeaderSize
	return &ObjectIter{j: j, nextOffset: start}
}

func (it *ObjectIter) Next() (Object, bool) {
	if it.done {
		return nil, false
	}
	obj, err := DecodeAt(it.j.buf, it.nextOffset)
	if err != nil {
		it.done = true
		log.Debugw("object walk terminated", "offset", it.nextOffset, "err", err)
		return nil, false
	}
	it.nextOffset = align8(it.nextOffset + obj.ObjectHeader().Size)
	return obj, true
}

// EntryArrayIter follows the next_entry_array_offset chain from the
// journal header's entry_array_offset, stopping at a zero offset.
type EntryArrayIter struct {
	j       *Journal
	current uint64
}

func (j *Journal) EntryArrays() *EntryArrayIter {
	return &EntryArrayIter{j: j, current: j.Header.EntryArrayOffset}
}

func (it *EntryArrayIter) Next() (EntryArrayObject, bool) {
	if it.current == 0 {
		return EntryArrayObject{}, false
	}
	obj, err := DecodeAt(it.j.buf, it.current)
	if err != nil {
		it.current = 0
		log.Debugw("entry array walk terminated", "offset", it.current, "err", err)
		return EntryArrayObject{}, false
	}
	ea, ok := obj.(EntryArrayObject)
	if !ok {
		it.current = 0
		return EntryArrayObject{}, false
	}
	it.current = ea.NextEntryArrayOffset
	return ea, true
}

// EntryIter walks every log entry in sequence order by first flattening
// the entry-array chain into an offset queue, then decoding each entry
// in turn. Buffering the offsets up front (sized from n_objects) mirrors
// the reference; each step then decodes one entry with DecodeAt.
type EntryIter struct {
	j       *Journal
	offsets []uint64
	pos     int
}

func (j *Journal) Entries() *EntryIter {
	offsets := make([]uint64, 0, j.Header.NObjects)
	eas := j.EntryArrays()
	for ea, ok := eas.Next(); ok; ea, ok = eas.Next() {
		offsets = append(offsets, ea.Items...)
	}
	return &EntryIter{j: j, offsets: offsets}
}

func (it *EntryIter) Next() (EntryObject, bool) {
	if it.pos >= len(it.offsets) {
		return EntryObject{}, false
	}
	offset := it.offsets[it.pos]
	it.pos++
	obj, err := DecodeAt(it.j.buf, offset)
	if err != nil {
		log.Debugw("entry decode failed mid-walk", "offset", offset, "err", err)
		return EntryObject{}, false
	}
	e, ok := obj.(EntryObject)
	if !ok {
		return EntryObject{}, false
	}
	return e, true
}

// Verify enumerates every object and recomputes its stored hash. With
// deep set to false it checks only Data objects, matching the reference
// behavior; with deep set to true it additionally checks Field payload
// hashes and each Entry's xor_hash.
func (j *Journal) Verify(deep bool) bool {
	objs := j.Objects()
	for obj, ok := objs.Next(); ok; obj, ok = objs.Next() {
		switch o := obj.(type) {
		case DataObject:
			if o.Hash != o.ComputedHash() {
				return false
			}
		case FieldObject:
			if deep && o.Hash != o.ComputedHash() {
				return false
			}
		case EntryObject:
			if deep && o.XorHash != o.ComputedXorHash() {
				return false
			}
		}
	}
	return true
}

// GetData scans an entry's items for a Data object whose payload begins
// with key, returning the remainder of the payload (including the
// leading '=' separator, as the reference leaves it) on a match.
func (e EntryObject) GetData(buf []byte, key string) (string, bool) {
	kb := []byte(key)
	for _, item := range e.Items {
		obj, err := DecodeAt(buf, item.ObjectOffset)
		if err != nil {
			continue
		}
		d, ok := obj.(DataObject)
		if !ok || len(d.Payload) < len(kb) {
			continue
		}
		if string(d.Payload[:len(kb)]) == key {
			return string(d.Payload[len(kb):]), true
		}
	}
	return "", false
}

// Value is a convenience over GetData that strips the leading '='.
func (e EntryObject) Value(buf []byte, key string) (string, bool) {
	v, ok := e.GetData(buf, key)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(v, "="), true
}
