package container

import (
	"fmt"

	"github.com/arloliu/ziso/compress"
	"github.com/arloliu/ziso/errs"
)

// blockCodec applies a compress.Codec to individual blocks, adding the two
// format-level behaviors the codec itself knows nothing about: the raw
// fallback on the write side and alignment-padding tolerance on the read
// side.
type blockCodec struct {
	codec compress.Codec
}

// compressBlock compresses raw and decides how the block is stored.
//
// The block is kept compressed only when the codec succeeds AND produces
// output that is non-empty, strictly smaller than the input, and no larger
// than capacity. In every other case the block is stored raw; a codec
// failure on one block is not an encode failure, it just costs the
// compression for that block. A raw block that itself exceeds capacity
// cannot be represented and returns errs.ErrBlockTooLarge.
//
// The returned slice aliases either the codec output or raw, so it is only
// valid until the next use of raw's backing buffer.
func (bc blockCodec) compressBlock(raw []byte, capacity int) (stored []byte, isRaw bool, err error) {
	compressed, cerr := bc.codec.Compress(raw)
	if cerr == nil && len(compressed) > 0 && len(compressed) < len(raw) && len(compressed) <= capacity {
		return compressed, false, nil
	}

	if len(raw) > capacity {
		return nil, false, fmt.Errorf("%w: %d bytes exceeds capacity %d", errs.ErrBlockTooLarge, len(raw), capacity)
	}

	return raw, true, nil
}

// decompressBlock recovers the uncompressed block from its stored bytes.
//
// Because payloads are aligned to 1<<shift boundaries, stored may carry up
// to maxPad trailing zero bytes that belong to the next block's padding,
// not to this block's data. Raw blocks are handled by slicing them back to
// expectedSize. Compressed blocks are retried with one trailing zero
// shaved off per attempt, since block codecs reject input with bytes past
// the end of the compressed stream.
func (bc blockCodec) decompressBlock(stored []byte, isRaw bool, expectedSize, maxPad int) ([]byte, error) {
	if isRaw {
		if len(stored) < expectedSize || len(stored) > expectedSize+maxPad {
			return nil, fmt.Errorf("%w: raw block is %d bytes, want %d", errs.ErrCorruptBlock, len(stored), expectedSize)
		}

		return stored[:expectedSize], nil
	}

	data, err := bc.codec.Decompress(stored)
	for trimmed := 0; err != nil && trimmed < maxPad; trimmed++ {
		if len(stored) == 0 || stored[len(stored)-1] != 0 {
			break
		}

		stored = stored[:len(stored)-1]
		data, err = bc.codec.Decompress(stored)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecompressionFailed, err)
	}

	if len(data) != expectedSize {
		return nil, fmt.Errorf("%w: decompressed to %d bytes, want %d", errs.ErrCorruptBlock, len(data), expectedSize)
	}

	return data, nil
}
