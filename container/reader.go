package container

import (
	"fmt"
	"io"

	"github.com/boljen/go-bitmap"

	"github.com/arloliu/ziso/compress"
	"github.com/arloliu/ziso/errs"
	"github.com/arloliu/ziso/format"
	"github.com/arloliu/ziso/internal/pool"
	"github.com/arloliu/ziso/section"
)

// Reader serves random-access reads of the decoded image without
// decompressing the whole container. The header and index are read once at
// construction; each read then decompresses only the blocks it touches.
//
// Reader implements io.ReaderAt over the image bytes, with one deviation
// from that interface's contract: it is NOT safe for concurrent calls,
// because it shares one seek position and a single-block cache. Guard it
// with a mutex or create one Reader per goroutine.
//
// The cache holds the most recently decoded block, which makes sequential
// and block-local access patterns decompress each block once.
type Reader struct {
	src io.ReadSeeker

	compression format.CompressionType
	codec       compress.Codec
	bc          blockCodec

	hdr   section.Header
	index section.Index
	size  int64

	scratch  *pool.BlockBuffer
	cache    []byte
	cacheIdx int64
}

// NewReader creates a Reader over a complete container. The header and the
// full block index are read and validated immediately.
//
// Parameters:
//   - src: Seekable source containing a complete container
//   - opts: Optional configuration, see ReaderOption
//
// Returns:
//   - *Reader: Ready reader positioned for random access
//   - error: ErrNilReader, an option validation error, or a header/index
//     validation error
func NewReader(src io.ReadSeeker, opts ...ReaderOption) (*Reader, error) {
	if src == nil {
		return nil, errs.ErrNilReader
	}

	r := &Reader{
		src:         src,
		compression: format.CompressionLZ4,
		cacheIdx:    -1,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.codec == nil {
		codec, err := compress.CreateCodec(r.compression, 0)
		if err != nil {
			return nil, err
		}
		r.codec = codec
	}
	r.bc = blockCodec{codec: r.codec}

	hdr, index, err := readMetadata(src)
	if err != nil {
		return nil, err
	}

	r.hdr = hdr
	r.index = index
	r.size = int64(hdr.UncompressedSize) //nolint: gosec
	r.scratch = pool.NewBlockBuffer(int(hdr.BlockSize))

	return r, nil
}

// Size returns the uncompressed image size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// BlockSize returns the uncompressed block size in bytes.
func (r *Reader) BlockSize() uint32 {
	return r.hdr.BlockSize
}

// NumBlocks returns the number of data blocks in the container. The
// trailing sentinel index entry is not counted.
func (r *Reader) NumBlocks() uint32 {
	return r.hdr.DataBlocks()
}

// Header returns a copy of the container header.
func (r *Reader) Header() section.Header {
	return r.hdr
}

// RawBitmap returns a bitmap with one bit per data block, set when the
// block is stored raw instead of compressed.
func (r *Reader) RawBitmap() bitmap.Bitmap {
	return r.index.RawBitmap()
}

// ReadAt reads len(p) image bytes starting at byte offset off. It returns
// io.EOF when the range extends past the image end, with n reporting the
// bytes read up to the end. Offsets map to blocks internally; a read
// spanning several blocks decompresses each of them once.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", errs.ErrReadOutOfRange, off)
	}

	blockSize := int64(r.hdr.BlockSize)

	n := 0
	for n < len(p) {
		if off >= r.size {
			return n, io.EOF
		}

		bi := off / blockSize
		block, err := r.block(bi)
		if err != nil {
			return n, err
		}

		c := copy(p[n:], block[off-bi*blockSize:])
		n += c
		off += int64(c)
	}

	return n, nil
}

// ReadBlock returns a copy of data block i. The final block may be shorter
// than BlockSize when the image size is not a block multiple.
//
// Parameters:
//   - i: Data block index, 0 through NumBlocks()-1
//
// Returns:
//   - []byte: Uncompressed block contents, owned by the caller
//   - error: ErrReadOutOfRange, ErrCorruptIndex, ErrCorruptBlock,
//     ErrDecompressionFailed, or a wrapped read failure
func (r *Reader) ReadBlock(i uint32) ([]byte, error) {
	if i >= r.hdr.DataBlocks() {
		return nil, fmt.Errorf("%w: block %d of %d", errs.ErrReadOutOfRange, i, r.hdr.DataBlocks())
	}

	block, err := r.block(int64(i))
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(block))
	copy(out, block)

	return out, nil
}

// block returns data block i decoded, serving it from the one-block cache
// when possible. The returned slice is the cache itself; callers must copy
// anything they keep past the next call.
func (r *Reader) block(i int64) ([]byte, error) {
	if i == r.cacheIdx {
		return r.cache, nil
	}

	maxPad := (int64(1) << r.hdr.Shift) - 1
	storedLen := r.index.StoredLen(int(i), r.hdr.Shift)
	if storedLen <= 0 || storedLen > int64(r.hdr.BlockSize)+maxPad {
		return nil, fmt.Errorf("%w: block %d stored length %d outside (0, %d]", errs.ErrCorruptIndex, i, storedLen, int64(r.hdr.BlockSize)+maxPad)
	}

	if _, err := r.src.Seek(int64(r.index[i].Offset(r.hdr.Shift)), io.SeekStart); err != nil { //nolint: gosec
		return nil, fmt.Errorf("seek block %d: %w", i, err)
	}

	stored := r.scratch.Block(int(storedLen))
	if _, err := io.ReadFull(r.src, stored); err != nil {
		return nil, fmt.Errorf("read block %d: %w", i, err)
	}

	raw, err := r.bc.decompressBlock(stored, r.index[i].IsRaw(), int(r.hdr.BlockLen(uint32(i))), int(maxPad)) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", i, err)
	}

	// decompressBlock may return a view into scratch, so the cache keeps its
	// own copy.
	r.cache = append(r.cache[:0], raw...)
	r.cacheIdx = i

	return r.cache, nil
}
