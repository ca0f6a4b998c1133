// SPDX-License-Identifier: LGPL-2.1-or-later
package journaldreader

import "fmt"

const (
	journalSignature  = "LPKSHHRH"
	journalHeaderSize = 240 // minimum; header_size may declare more for forward-compatible fields
)

// State is the journal's online/offline/archived tag, stored as a single
// byte at a fixed offset in the header.
type State uint8

const (
	StateOffline State = 0
	StateOnline  State = 1
	StateArchived State = 2
	// StateMax is substituted for any byte value outside 0..2. The format
	// reserves room to grow this enum; an unrecognized value is reported
	// through this sentinel rather than rejected.
	StateMax State = 3
)

func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateOnline:
		return "online"
	case StateArchived:
		return "archived"
	default:
		return "max"
	}
}

func stateFromByte(b uint8) State {
	switch b {
	case 0:
		return StateOffline
	case 1:
		return StateOnline
	case 2:
		return StateArchived
	default:
		return StateMax
	}
}

// JournalHeader is the 240-byte fixed prefix of a journal file.
type JournalHeader struct {
	CompatibleFlags   uint32
	IncompatibleFlags uint32
	State             State

	FileID    ID128
	MachineID ID128
	BootID    ID128
	SeqnumID  ID128

	HeaderSize           uint64
	ArenaSize            uint64
	DataHashTableOffset  uint64
	DataHashTableSize    uint64
	FieldHashTableOffset uint64
	FieldHashTableSize   uint64
	TailObjectOffset     uint64
	NObjects             uint64
	NEntries             uint64
	TailEntrySeqnum      uint64
	HeadEntrySeqnum      uint64
	EntryArrayOffset     uint64
	HeadEntryRealtime    uint64
	TailEntryRealtime    uint64
	TailEntryMonotonic   uint64
	NData                uint64
	NFields              uint64
	NTags                uint64
	NEntryArrays         uint64
}

// decodeHeader parses and validates the fixed header at the start of buf.
func decodeHeader(buf []byte) (JournalHeader, error) {
	if len(buf) < journalHeaderSize {
		return JournalHeader{}, newDecodeError(ErrInvalidHeader, 0, "buffer shorter than the minimum header size")
	}

	c := newCursor(buf, 0)
	sig, err := c.readExact(8)
	if err != nil {
		return JournalHeader{}, err
	}
	if string(sig) != journalSignature {
		return JournalHeader{}, newDecodeError(ErrInvalidHeader, 0, fmt.Sprintf("signature mismatch: %q", sig))
	}

	compat, err := c.readU32LE()
	if err != nil {
		return JournalHeader{}, err
	}
	incompat, err := c.readU32LE()
	if err != nil {
		return JournalHeader{}, err
	}
	stateByte, err := c.readU8()
	if err != nil {
		return JournalHeader{}, err
	}
	if _, err := c.readExact(7); err != nil {
		return JournalHeader{}, err
	}

	fileHi, fileLo, err := c.readU128BE()
	if err != nil {
		return JournalHeader{}, err
	}
	machHi, machLo, err := c.readU128BE()
	if err != nil {
		return JournalHeader{}, err
	}
	bootHi, bootLo, err := c.readU128BE()
	if err != nil {
		return JournalHeader{}, err
	}
	seqHi, seqLo, err := c.readU128BE()
	if err != nil {
		return JournalHeader{}, err
	}

	var vals [19]uint64
	for i := range vals {
		v, err := c.readU64LE()
		if err != nil {
			return JournalHeader{}, err
		}
		vals[i] = v
	}

	hdr := JournalHeader{
		CompatibleFlags:      compat,
		IncompatibleFlags:    incompat,
		State:                stateFromByte(stateByte),
		FileID:               ID128{Hi: fileHi, Lo: fileLo},
		MachineID:            ID128{Hi: machHi, Lo: machLo},
		BootID:               ID128{Hi: bootHi, Lo: bootLo},
		SeqnumID:             ID128{Hi: seqHi, Lo: seqLo},
		HeaderSize:           vals[0],
		ArenaSize:            vals[1],
		DataHashTableOffset:  vals[2],
		DataHashTableSize:    vals[3],
		FieldHashTableOffset: vals[4],
		FieldHashTableSize:   vals[5],
		TailObjectOffset:     vals[6],
		NObjects:             vals[7],
		NEntries:             vals[8],
		TailEntrySeqnum:      vals[9],
		HeadEntrySeqnum:      vals[10],
		EntryArrayOffset:     vals[11],
		HeadEntryRealtime:    vals[12],
		TailEntryRealtime:    vals[13],
		TailEntryMonotonic:   vals[14],
		NData:                vals[15],
		NFields:              vals[16],
		NTags:                vals[17],
		NEntryArrays:         vals[18],
	}

	if hdr.HeaderSize < journalHeaderSize {
		return JournalHeader{}, newDecodeError(ErrInvalidHeader, 0, "header_size below the 240-byte minimum")
	}

	return hdr, nil
}

// String renders the header the way journalctl --header does: one
// "field: value" pair per line.
func (h JournalHeader) String() string {
	return fmt.Sprintf(
		"File ID: %s\n"+
			"Machine ID: %s\n"+
			"Boot ID: %s\n"+
			"Sequential Number ID: %s\n"+
			"State: %s\n"+
			"Compatible Flags: 0x%08x\n"+
			"Incompatible Flags: 0x%08x\n"+
			"Header size: %d\n"+
			"Arena size: %d\n"+
			"Data Hash Table Size: %d\n"+
			"Field Hash Table Size: %d\n"+
			"Objects: %d\n"+
			"Entries: %d\n"+
			"Entry Arrays: %d\n"+
			"Data Objects: %d\n"+
			"Field Objects: %d\n"+
			"Tag Objects: %d\n"+
			"Head entry seqnum: %d\n"+
			"Tail entry seqnum: %d\n"+
			"Head entry realtime: %d\n"+
			"Tail entry realtime: %d\n"+
			"Tail entry monotonic: %d\n",
		h.FileID, h.MachineID, h.BootID, h.SeqnumID, h.State,
		h.CompatibleFlags, h.IncompatibleFlags,
		h.HeaderSize, h.ArenaSize, h.DataHashTableSize, h.FieldHashTableSize,
		h.NObjects, h.NEntries, h.NEntryArrays, h.NData, h.NFields, h.NTags,
		h.HeadEntrySeqnum, h.TailEntrySeqnum,
		h.HeadEntryRealtime, h.TailEntryRealtime, h.TailEntryMonotonic,
	)
}
