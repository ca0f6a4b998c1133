// SPDX-License-Identifier: LGPL-2.1-or-later
package journaldreader

import "fmt"

// ObjectType is the one-byte type tag every arena object begins with.
type ObjectType uint8

const (
	ObjectUnused         ObjectType = 0
	ObjectData           ObjectType = 1
	ObjectField          ObjectType = 2
	ObjectEntry          ObjectType = 3
	ObjectDataHashTable  ObjectType = 4
	ObjectFieldHashTable ObjectType = 5
	ObjectEntryArray     ObjectType = 6
	ObjectTag            ObjectType = 7
)

func (t ObjectType) String() string {
	switch t {
	case ObjectUnused:
		return "unused"
	case ObjectData:
		return "data"
	case ObjectField:
		return "field"
	case ObjectEntry:
		return "entry"
	case ObjectDataHashTable:
		return "data hash table"
	case ObjectFieldHashTable:
		return "field hash table"
	case ObjectEntryArray:
		return "entry array"
	case ObjectTag:
		return "tag"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Compression flag bits carried in ObjectHeader.Flags. XZ and LZ4 are the
// original format's two compression bits; ZSTD is a later addition some
// journal writers already set.
const (
	ObjectCompressedXZ   uint8 = 1 << 0
	ObjectCompressedLZ4  uint8 = 1 << 1
	ObjectCompressedZSTD uint8 = 1 << 2
	objectCompressedMask uint8 = ObjectCompressedXZ | ObjectCompressedLZ4 | ObjectCompressedZSTD
)

const objectHeaderSize = 16

// ObjectHeader is the common 16-byte prefix of every arena object.
type ObjectHeader struct {
	Type     ObjectType
	Flags    uint8
	Reserved [6]byte
	Size     uint64
}

// IsCompressed reports whether any compression flag bit is set.
func (h ObjectHeader) IsCompressed() bool {
	return h.Flags&objectCompressedMask != 0
}

// Object is the sum type of every arena object variant. Each concrete
// type embeds the common ObjectHeader under the field name Header.
type Object interface {
	ObjectHeader() ObjectHeader
}

// DataObject carries one key=value payload referenced by one or more
// entries.
type DataObject struct {
	Header           ObjectHeader
	Hash             uint64
	NextHashOffset   uint64
	NextFieldOffset  uint64
	EntryOffset      uint64
	EntryArrayOffset uint64
	NEntries         uint64
	Payload          []byte
}

func (d DataObject) ObjectHeader() ObjectHeader { return d.Header }

// IsTrusted reports whether the payload was set by the journal daemon
// itself rather than an application (its first byte is '_').
func (d DataObject) IsTrusted() bool {
	return len(d.Payload) > 0 && d.Payload[0] == '_'
}

// ComputedHash recomputes rhash64 over the payload; compare against Hash
// to verify the stored value.
func (d DataObject) ComputedHash() uint64 {
	return rhash64(d.Payload)
}

// FieldObject heads the list of all Data objects sharing one field name.
type FieldObject struct {
	Header         ObjectHeader
	Hash           uint64
	NextHashOffset uint64
	HeadDataOffset uint64
	Payload        []byte
}

func (f FieldObject) ObjectHeader() ObjectHeader { return f.Header }

func (f FieldObject) ComputedHash() uint64 {
	return rhash64(f.Payload)
}

// EntryItem is one (object_offset, hash) pair inside an Entry. Resolving
// object_offset to the referenced Data object is left to the caller via
// DecodeAt: the decoder never dereferences it eagerly.
type EntryItem struct {
	ObjectOffset uint64
	Hash         uint64
}

// EntryObject is one log record: a fixed set of timestamps plus a list of
// items pointing at the Data objects that make up its fields.
type EntryObject struct {
	Header    ObjectHeader
	Seqnum    uint64
	Realtime  uint64
	Monotonic uint64
	BootID    ID128
	XorHash   uint64
	Items     []EntryItem
}

func (e EntryObject) ObjectHeader() ObjectHeader { return e.Header }

// ComputedXorHash XORs together the hash of every item this decode
// emitted. Per the documented off-by-one (see decode.go), this may be one
// fewer item than (Header.Size-48)/16 suggests; the relation in spec §8
// item 5 holds over the emitted items, not the arithmetic count.
func (e EntryObject) ComputedXorHash() uint64 {
	var x uint64
	for _, item := range e.Items {
		x ^= item.Hash
	}
	return x
}

// HashItem is one bucket of a data or field hash table.
type HashItem struct {
	HeadOffset uint64
	TailOffset uint64
}

// HashTableObject is an open-addressed bucket array keyed by payload
// hash. Read-only here; the library never resolves buckets for lookup,
// it only decodes them for completeness (objects()/object_headers()).
type HashTableObject struct {
	Header ObjectHeader
	Items  []HashItem
}

func (h HashTableObject) ObjectHeader() ObjectHeader { return h.Header }

// EntryArrayObject is one node of the linked list whose items are entry
// offsets in sequence order.
type EntryArrayObject struct {
	Header               ObjectHeader
	NextEntryArrayOffset uint64
	Items                []uint64
}

func (a EntryArrayObject) ObjectHeader() ObjectHeader { return a.Header }

const tagLength = 256 / 8

// TagObject seals the journal with an HMAC-SHA-256 tag. The tag is
// decoded but never cryptographically verified (out of scope, spec §1).
type TagObject struct {
	Header ObjectHeader
	Seqnum uint64
	Epoch  uint64
	Tag    [tagLength]byte
}

func (t TagObject) ObjectHeader() ObjectHeader { return t.Header }
