package container

import (
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/ziso/compress"
	"github.com/arloliu/ziso/errs"
	"github.com/arloliu/ziso/format"
	"github.com/arloliu/ziso/internal/pool"
	"github.com/arloliu/ziso/section"
)

// readMetadata positions src at the stream start and reads the header and
// the complete block index, validating both before any block is touched.
func readMetadata(src io.ReadSeeker) (section.Header, section.Index, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return section.Header{}, nil, fmt.Errorf("seek container start: %w", err)
	}

	var buf [section.HeaderSize]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return section.Header{}, nil, fmt.Errorf("%w: stream shorter than %d bytes", errs.ErrInvalidHeaderSize, section.HeaderSize)
		}

		return section.Header{}, nil, fmt.Errorf("read header: %w", err)
	}

	hdr, err := section.ParseHeader(buf[:])
	if err != nil {
		return section.Header{}, nil, err
	}

	index, err := section.ReadIndex(src, hdr.NumBlocks())
	if err != nil {
		return section.Header{}, nil, err
	}

	if err := index.Validate(hdr.Shift, hdr.MetadataSize()); err != nil {
		return section.Header{}, nil, err
	}

	return hdr, index, nil
}

// Decoder reconstructs the raw image from a block-compressed container.
//
// The source must be seekable; blocks are located through the index rather
// than read back to back, since alignment padding may sit between them.
//
// A Decoder is NOT safe for concurrent use. Decode may be called again on
// the same source, each call re-reads the container from the start.
type Decoder struct {
	src io.ReadSeeker

	compression format.CompressionType
	codec       compress.Codec
	bc          blockCodec
	progress    ProgressFunc
}

// NewDecoder creates a Decoder reading from src.
//
// Parameters:
//   - src: Seekable source containing a complete container
//   - opts: Optional configuration, see DecoderOption
//
// Returns:
//   - *Decoder: Configured decoder
//   - error: ErrNilReader or an option validation error
func NewDecoder(src io.ReadSeeker, opts ...DecoderOption) (*Decoder, error) {
	if src == nil {
		return nil, errs.ErrNilReader
	}

	d := &Decoder{
		src:         src,
		compression: format.CompressionLZ4,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.codec == nil {
		codec, err := compress.CreateCodec(d.compression, 0)
		if err != nil {
			return nil, err
		}
		d.codec = codec
	}

	d.bc = blockCodec{codec: d.codec}

	return d, nil
}

// Decode reads the container and writes the reconstructed image to dst.
//
// The header and the full index are validated before the first block is
// decoded, so structurally broken containers fail fast instead of after a
// partial write. Per-block corruption still surfaces mid-stream; dst may
// have received earlier blocks by then.
//
// Parameters:
//   - dst: Destination for the uncompressed image bytes
//
// Returns:
//   - DecodeStats: Block counts, byte count and the image checksum
//   - error: A header validation error, ErrCorruptIndex, ErrCorruptBlock,
//     ErrDecompressionFailed, or a wrapped read/write failure
func (d *Decoder) Decode(dst io.Writer) (DecodeStats, error) {
	var stats DecodeStats

	if dst == nil {
		return stats, errs.ErrNilWriter
	}

	hdr, index, err := readMetadata(d.src)
	if err != nil {
		return stats, err
	}

	bb := pool.GetBlockBuffer()
	defer pool.PutBlockBuffer(bb)

	digest := xxhash.New()
	imageSize := int64(hdr.UncompressedSize) //nolint: gosec
	maxPad := (int64(1) << hdr.Shift) - 1
	maxStored := int64(hdr.BlockSize) + maxPad
	dataBlocks := hdr.DataBlocks()

	var produced int64
	for i := uint32(0); i < dataBlocks; i++ {
		storedLen := index.StoredLen(int(i), hdr.Shift)
		if storedLen <= 0 || storedLen > maxStored {
			return stats, fmt.Errorf("%w: block %d stored length %d outside (0, %d]", errs.ErrCorruptIndex, i, storedLen, maxStored)
		}

		if _, err := d.src.Seek(int64(index[i].Offset(hdr.Shift)), io.SeekStart); err != nil { //nolint: gosec
			return stats, fmt.Errorf("seek block %d: %w", i, err)
		}

		stored := bb.Block(int(storedLen))
		if _, err := io.ReadFull(d.src, stored); err != nil {
			return stats, fmt.Errorf("read block %d: %w", i, err)
		}

		raw, err := d.bc.decompressBlock(stored, index[i].IsRaw(), int(hdr.BlockLen(i)), int(maxPad))
		if err != nil {
			return stats, fmt.Errorf("block %d: %w", i, err)
		}

		if _, err := dst.Write(raw); err != nil {
			return stats, fmt.Errorf("write image block %d: %w", i, err)
		}
		_, _ = digest.Write(raw)
		produced += int64(len(raw))

		if index[i].IsRaw() {
			stats.BlocksRaw++
		}
		if d.progress != nil {
			d.progress(produced, imageSize, produced)
		}
	}

	stats.BlocksTotal = dataBlocks
	stats.ImageBytes = produced
	stats.Checksum = digest.Sum64()

	return stats, nil
}
