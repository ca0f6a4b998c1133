package journaldreader

import (
	"encoding/binary"
)

// journalFixture is a small, fully self-consistent journal file built by
// hand for the test suite: one data hash table, one field hash table, two
// Data objects ("MESSAGE" and "_HOSTNAME"), one Field object, one Entry
// referencing both Data objects, and one EntryArray pointing at the entry.
// No real user-1000.journal/system.journal binaries ship alongside this
// module, so the scenario-shaped assertions in decode/iterator/journal
// tests run against this fixture instead.
type journalFixture struct {
	buf []byte

	dataHashTableOffset  uint64
	fieldHashTableOffset uint64 // object header offset, not the header-field value
	messageOffset        uint64
	hostnameOffset       uint64
	fieldOffset          uint64
	entryOffset          uint64
	entryArrayOffset     uint64

	entryBootIDHi uint64
	entryBootIDLo uint64

	messagePayload  []byte
	hostnamePayload []byte
}

func appendObjectHeader(buf []byte, typ ObjectType, flags uint8, size uint64) []byte {
	buf = append(buf, byte(typ), flags)
	buf = append(buf, make([]byte, 6)...)
	var sz [8]byte
	binary.LittleEndian.PutUint64(sz[:], size)
	return append(buf, sz[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// padTo8 pads buf with zero bytes up to the next 8-byte boundary, the same
// rounding the object iterators apply (align8) to an object's declared size
// when they advance to the next object.
func padTo8(buf []byte) []byte {
	for len(buf)%8 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func buildJournalFixture() journalFixture {
	const (
		dataHashTableOffset  = 288
		fieldHashTableOffset = 240
		messageOffset        = 336
		hostnameOffset       = 424
		fieldOffset          = 512
		entryOffset          = 560
		entryArrayOffset     = 656

		// Distinguishable hi/lo halves so a hi/lo swap or an endianness
		// mix-up shows up as a wrong value rather than silently passing.
		entryBootIDHi = 0x0102030405060708
		entryBootIDLo = 0x1112131415161718
	)

	messagePayload := []byte("MESSAGE=hello world")
	hostnamePayload := []byte("_HOSTNAME=testhost")
	fieldPayload := []byte("MESSAGE")

	messageHash := rhash64(messagePayload)
	hostnameHash := rhash64(hostnamePayload)
	fieldHash := rhash64(fieldPayload)

	buf := make([]byte, 0, 688)

	// Header, filled in after the arena is known (TailObjectOffset etc.)
	buf = append(buf, make([]byte, 240)...)

	// Field hash table first, where the object walk starts: zero buckets,
	// but the object's declared size still reserves its footprint in the
	// file so the next object's offset lines up.
	buf = appendObjectHeader(buf, ObjectFieldHashTable, 0, 48)
	buf = append(buf, make([]byte, 32)...)

	// Data hash table: same shape as the field hash table.
	buf = appendObjectHeader(buf, ObjectDataHashTable, 0, 48)
	buf = append(buf, make([]byte, 32)...)

	// Data object: MESSAGE=hello world
	buf = appendObjectHeader(buf, ObjectData, 0, dataObjectSize+uint64(len(messagePayload)))
	buf = appendU64(buf, messageHash) // hash
	buf = appendU64(buf, 0)           // next_hash_offset
	buf = appendU64(buf, 0)           // next_field_offset
	buf = appendU64(buf, entryOffset) // entry_offset
	buf = appendU64(buf, 0)           // entry_array_offset
	buf = appendU64(buf, 1)           // n_entries
	buf = append(buf, messagePayload...)
	buf = padTo8(buf)

	// Data object: _HOSTNAME=testhost
	buf = appendObjectHeader(buf, ObjectData, 0, dataObjectSize+uint64(len(hostnamePayload)))
	buf = appendU64(buf, hostnameHash)
	buf = appendU64(buf, 0)
	buf = appendU64(buf, 0)
	buf = appendU64(buf, entryOffset)
	buf = appendU64(buf, 0)
	buf = appendU64(buf, 1)
	buf = append(buf, hostnamePayload...)
	buf = padTo8(buf)

	// Field object: MESSAGE
	buf = appendObjectHeader(buf, ObjectField, 0, fieldObjectSize+uint64(len(fieldPayload)))
	buf = appendU64(buf, fieldHash)
	buf = appendU64(buf, 0)
	buf = appendU64(buf, messageOffset)
	buf = append(buf, fieldPayload...)
	buf = padTo8(buf)

	// Entry: two items, referencing the Data objects above.
	buf = appendObjectHeader(buf, ObjectEntry, 0, 96)
	buf = appendU64(buf, 1)                 // seqnum
	buf = appendU64(buf, 1700000000000000)  // realtime (us)
	buf = appendU64(buf, 123456789)         // monotonic
	// boot_id is little-endian: the low 64 bits are written first.
	buf = appendU64(buf, entryBootIDLo)
	buf = appendU64(buf, entryBootIDHi)
	buf = appendU64(buf, messageHash^hostnameHash)
	buf = appendU64(buf, messageOffset)
	buf = appendU64(buf, messageHash)
	buf = appendU64(buf, hostnameOffset)
	buf = appendU64(buf, hostnameHash)

	// EntryArray: one item, the entry above.
	buf = appendObjectHeader(buf, ObjectEntryArray, 0, 32)
	buf = appendU64(buf, 0) // next_entry_array_offset
	buf = appendU64(buf, entryOffset)
	buf = padTo8(buf)

	hdr := make([]byte, 240)
	copy(hdr[0:8], journalSignature)
	binary.LittleEndian.PutUint32(hdr[8:12], 0)  // compatible_flags
	binary.LittleEndian.PutUint32(hdr[12:16], 0) // incompatible_flags
	hdr[16] = byte(StateOffline)
	// hdr[17:24] reserved, already zero

	putBE128 := func(off int, hi, lo uint64) {
		binary.BigEndian.PutUint64(hdr[off:off+8], hi)
		binary.BigEndian.PutUint64(hdr[off+8:off+16], lo)
	}
	putBE128(24, 0x1111111111111111, 0x2222222222222222) // file_id
	putBE128(40, 0x3333333333333333, 0x4444444444444444) // machine_id
	putBE128(56, 0xaaaaaaaaaaaaaaaa, 0xbbbbbbbbbbbbbbbb)  // boot_id
	putBE128(72, 0x5555555555555555, 0x6666666666666666) // seqnum_id

	vals := []uint64{
		240,                               // header_size
		uint64(len(buf)) - 240,            // arena_size
		dataHashTableOffset + objectHeaderSize, // data_hash_table_offset (content, not header)
		0,                                 // data_hash_table_size
		fieldHashTableOffset + objectHeaderSize, // field_hash_table_offset (content, not header)
		0,                                 // field_hash_table_size
		entryArrayOffset,                  // tail_object_offset
		7,                                 // n_objects
		1,                                 // n_entries
		1,                                 // tail_entry_seqnum
		1,                                 // head_entry_seqnum
		entryArrayOffset,                  // entry_array_offset
		1700000000000000,                  // head_entry_realtime
		1700000000000000,                  // tail_entry_realtime
		123456789,                         // tail_entry_monotonic
		2,                                 // n_data
		1,                                 // n_fields
		0,                                 // n_tags
		1,                                 // n_entry_arrays
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(hdr[88+i*8:96+i*8], v)
	}

	copy(buf[0:240], hdr)

	return journalFixture{
		buf:                  buf,
		dataHashTableOffset:  dataHashTableOffset,
		fieldHashTableOffset: fieldHashTableOffset,
		messageOffset:        messageOffset,
		hostnameOffset:       hostnameOffset,
		fieldOffset:          fieldOffset,
		entryOffset:          entryOffset,
		entryArrayOffset:     entryArrayOffset,
		entryBootIDHi:        entryBootIDHi,
		entryBootIDLo:        entryBootIDLo,
		messagePayload:       messagePayload,
		hostnamePayload:      hostnamePayload,
	}
}
