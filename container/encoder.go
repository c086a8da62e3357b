package container

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/ziso/compress"
	"github.com/arloliu/ziso/errs"
	"github.com/arloliu/ziso/format"
	"github.com/arloliu/ziso/internal/pool"
	"github.com/arloliu/ziso/section"
)

// zeroPad feeds alignment padding writes. Padding never exceeds
// 1<<section.MaxShift - 1 bytes per block.
var zeroPad [1 << section.MaxShift]byte

// Encoder writes a block-compressed container from a raw image stream.
//
// The destination must be seekable: the block index is written as a
// placeholder first and rewritten once the last block's offset is known.
// Everything else is produced in a single forward pass, so the source only
// needs to be an io.Reader.
//
// An Encoder is single-use and NOT safe for concurrent use. Create one
// encoder per container.
type Encoder struct {
	dst io.WriteSeeker

	blockSize   uint32
	compression format.CompressionType
	level       int
	minShift    uint8
	codec       compress.Codec
	bc          blockCodec
	progress    ProgressFunc

	done bool
}

// NewEncoder creates an Encoder writing to dst.
//
// Parameters:
//   - dst: Seekable destination the container is written to
//   - opts: Optional configuration, see EncoderOption
//
// Returns:
//   - *Encoder: Configured encoder
//   - error: ErrNilWriter or an option validation error
func NewEncoder(dst io.WriteSeeker, opts ...EncoderOption) (*Encoder, error) {
	if dst == nil {
		return nil, errs.ErrNilWriter
	}

	e := &Encoder{
		dst:         dst,
		blockSize:   section.DefaultBlockSize,
		compression: format.CompressionLZ4,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.codec == nil {
		codec, err := compress.CreateCodec(e.compression, e.level)
		if err != nil {
			return nil, err
		}
		e.codec = codec
	}

	e.bc = blockCodec{codec: e.codec}

	return e, nil
}

// Encode reads exactly imageSize bytes from src and writes the complete
// container: header, block index, compressed block payloads and alignment
// padding. The image size must be known up front because it determines the
// index length and the address shift, both of which live in the metadata
// written before the first block.
//
// Each block is compressed independently and stored raw when compression
// does not shrink it. Block offsets are aligned to 1<<shift boundaries with
// zero padding, where the shift is the smallest value that keeps every
// offset addressable (see WithShift to force wider alignment).
//
// Parameters:
//   - src: Image byte stream, must deliver imageSize bytes
//   - imageSize: Exact uncompressed image size in bytes
//
// Returns:
//   - EncodeStats: Block counts, byte counts and the image checksum
//   - error: ErrInvalidImageSize, ErrImageTooLarge, ErrEncoderFinished,
//     or a wrapped read/write/compression failure
func (e *Encoder) Encode(src io.Reader, imageSize int64) (EncodeStats, error) {
	var stats EncodeStats

	if e.done {
		return stats, errs.ErrEncoderFinished
	}
	e.done = true

	if src == nil {
		return stats, errs.ErrNilReader
	}
	if imageSize < 0 {
		return stats, fmt.Errorf("%w: %d", errs.ErrInvalidImageSize, imageSize)
	}

	numBlocks := section.BlockCount(uint64(imageSize), e.blockSize)
	metadataSize := section.HeaderSize + numBlocks*section.IndexEntrySize

	shift, err := section.SelectShift(uint64(imageSize), metadataSize)
	if err != nil {
		return stats, err
	}
	if shift < e.minShift {
		shift = e.minShift
	}

	hdr := section.NewHeader(uint64(imageSize), e.blockSize, shift)
	if _, err := e.dst.Write(hdr.Bytes()); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	// Block offsets are unknown until each previous block is compressed, so
	// a zeroed index reserves the space and is rewritten at the end.
	index := make(section.Index, numBlocks)
	if _, err := e.dst.Write(index.Bytes()); err != nil {
		return stats, fmt.Errorf("write index placeholder: %w", err)
	}

	bb := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(bb)

	digest := xxhash.New()
	pos := hdr.MetadataSize()
	dataBlocks := hdr.DataBlocks()

	var consumed int64
	for i := uint32(0); i < dataBlocks; i++ {
		raw := bb.Block(int(hdr.BlockLen(i)))
		if _, err := io.ReadFull(src, raw); err != nil {
			return stats, fmt.Errorf("read image block %d: %w", i, err)
		}
		_, _ = digest.Write(raw)
		consumed += int64(len(raw))

		stored, isRaw, err := e.bc.compressBlock(raw, int(e.blockSize))
		if err != nil {
			return stats, fmt.Errorf("compress block %d: %w", i, err)
		}

		aligned, shifted := section.EncodeOffset(pos, shift)
		entry, err := section.NewIndexEntry(shifted, isRaw)
		if err != nil {
			return stats, fmt.Errorf("index block %d: %w", i, err)
		}
		index[i] = entry

		// Pad up to the offset the index entry promises, then write the
		// block at it.
		if pad := aligned - pos; pad > 0 {
			if _, err := e.dst.Write(zeroPad[:pad]); err != nil {
				return stats, fmt.Errorf("pad block %d: %w", i, err)
			}
		}
		if _, err := e.dst.Write(stored); err != nil {
			return stats, fmt.Errorf("write block %d: %w", i, err)
		}
		pos = aligned + uint64(len(stored))

		if isRaw {
			stats.BlocksRaw++
		}
		if e.progress != nil {
			e.progress(consumed, imageSize, int64(pos-hdr.MetadataSize())) //nolint: gosec
		}
	}

	// The sentinel entry marks the end of the last block. Padding the stream
	// up to its aligned offset keeps the last block's stored range physically
	// readable.
	aligned, shifted := section.EncodeOffset(pos, shift)
	sentinel, err := section.NewIndexEntry(shifted, false)
	if err != nil {
		return stats, fmt.Errorf("index sentinel: %w", err)
	}
	index[numBlocks-1] = sentinel

	if pad := aligned - pos; pad > 0 {
		if _, err := e.dst.Write(zeroPad[:pad]); err != nil {
			return stats, fmt.Errorf("pad container end: %w", err)
		}
	}

	if _, err := e.dst.Seek(section.IndexOffset, io.SeekStart); err != nil {
		return stats, fmt.Errorf("seek block index: %w", err)
	}
	if _, err := e.dst.Write(index.Bytes()); err != nil {
		return stats, fmt.Errorf("rewrite block index: %w", err)
	}

	stats.BlocksTotal = dataBlocks
	stats.ImageBytes = consumed
	stats.ContainerBytes = int64(aligned) //nolint: gosec
	stats.Checksum = digest.Sum64()

	return stats, nil
}
