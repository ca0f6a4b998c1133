// SPDX-License-Identifier: LGPL-2.1-or-later
package journaldreader

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrXZUnsupported is returned by DecompressPayload for XZ-compressed
// payloads: the wire format allows the XZ flag bit, but no XZ library is
// wired into this module.
var ErrXZUnsupported = errors.New("journaldreader: XZ decompression is not supported")

const lz4MaxBufferSize = 128 * 1024 * 1024

// DecompressPayload returns the uncompressed bytes of a Data object's
// payload. Decoding never calls this automatically (DecodeAt hands back
// the raw, possibly still-compressed payload); callers opt in explicitly
// when they need the plaintext value.
func DecompressPayload(obj DataObject) ([]byte, error) {
	flags := obj.Header.Flags
	switch {
	case flags&ObjectCompressedXZ != 0:
		return nil, ErrXZUnsupported
	case flags&ObjectCompressedLZ4 != 0:
		return decompressLZ4(obj.Payload)
	case flags&ObjectCompressedZSTD != 0:
		return decompressZSTD(obj.Payload)
	default:
		return obj.Payload, nil
	}
}

func decompressZSTD(payload []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return decoder.DecodeAll(payload, nil)
}

// decompressLZ4 grows its output buffer geometrically since the journal
// format stores no uncompressed-size field alongside an LZ4 payload.
func decompressLZ4(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	bufSize := len(payload) * 4
	for bufSize <= lz4MaxBufferSize {
		dst := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < lz4MaxBufferSize {
				bufSize *= 2
				continue
			}
			return nil, err
		}
		return dst[:n], nil
	}
	return nil, fmt.Errorf("journaldreader: lz4 payload exceeds %d byte decompression limit", lz4MaxBufferSize)
}
