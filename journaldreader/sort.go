// SPDX-License-Identifier: LGPL-2.1-or-later
package journaldreader

import (
	"os"
	"sort"

	mmap "github.com/edsrzf/mmap-go"
)

type journalSorter struct {
	filename        string
	seqnumID        ID128
	headEntrySeqnum uint64
}

// SortJournalFiles orders a set of journal file paths into chronological
// read order: grouped by seqnum_id, then by head_entry_seqnum within a
// group. Files that cannot be opened or whose header fails to decode are
// skipped rather than causing the whole sort to fail.
func SortJournalFiles(paths []string) []string {
	var files []journalSorter

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Debugw("skipping journal file", "path", path, "err", err)
			continue
		}
		info, err := f.Stat()
		if err != nil || info.Size() == 0 {
			f.Close()
			continue
		}
		data, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			f.Close()
			continue
		}
		hdr, err := decodeHeader(data)
		data.Unmap()
		f.Close()
		if err != nil {
			log.Debugw("skipping unreadable journal header", "path", path, "err", err)
			continue
		}
		files = append(files, journalSorter{filename: path, seqnumID: hdr.SeqnumID, headEntrySeqnum: hdr.HeadEntrySeqnum})
	}

	sort.Slice(files, func(i, j int) bool {
		if d := compareSeqnumID(files[i].seqnumID, files[j].seqnumID); d != 0 {
			return d < 0
		}
		return files[i].headEntrySeqnum < files[j].headEntrySeqnum
	})

	r := make([]string, 0, len(files))
	for _, f := range files {
		r = append(r, f.filename)
	}
	return r
}

func compareSeqnumID(a, b ID128) int {
	if a.Hi != b.Hi {
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	}
	if a.Lo != b.Lo {
		if a.Lo < b.Lo {
			return -1
		}
		return 1
	}
	return 0
}
