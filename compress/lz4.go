package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4HCCompressorPool pools lz4.CompressorHC instances for reuse.
// The level is set per use; the hash tables inside are level-independent.
var lz4HCCompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{}
	},
}

// lz4hcLevels maps the upper half of the 1-12 scale onto the nine HC levels.
var lz4hcLevels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// LZ4Compressor is the fast-mode LZ4 block codec and the interchange standard
// for the container format.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new fast-mode LZ4 compressor.
//
// Fast mode has no level knob; callers wanting a tighter ratio at the same
// block format use NewLZ4HCCompressor instead.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
//
// Uses a pooled lz4.Compressor for better performance.
//
// Returns an empty slice when the input is incompressible; callers treat that
// the same as output not smaller than the input.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses the input data using LZ4 block decompression.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return lz4Decompress(data)
}

// LZ4HCCompressor is the high-compression LZ4 block codec. Its output stays
// decodable by any LZ4 block decoder; only the encoder side differs.
type LZ4HCCompressor struct {
	level lz4.CompressionLevel
}

var _ Codec = (*LZ4HCCompressor)(nil)

// NewLZ4HCCompressor creates an LZ4 high-compression codec.
//
// Parameters:
//   - level: Compression level on the 1-12 scale; values above 9 clamp to the
//     top HC level, 0 selects the default
func NewLZ4HCCompressor(level int) LZ4HCCompressor {
	if level <= 0 {
		level = DefaultLevel
	}
	if level > len(lz4hcLevels) {
		level = len(lz4hcLevels)
	}

	return LZ4HCCompressor{level: lz4hcLevels[level-1]}
}

// Compress compresses the input data using LZ4 high-compression mode.
//
// Uses a pooled lz4.CompressorHC for better performance.
func (c LZ4HCCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4HCCompressorPool.Get().(*lz4.CompressorHC)
	defer lz4HCCompressorPool.Put(lc)

	lc.Level = c.level
	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses the input data using LZ4 block decompression.
func (c LZ4HCCompressor) Decompress(data []byte) ([]byte, error) {
	return lz4Decompress(data)
}

// lz4Decompress is shared by the fast and HC codecs; both emit the same block
// format.
//
// The uncompressed size is not stored in an LZ4 block, so this uses an
// adaptive buffer sizing strategy:
//  1. Start with a buffer 4x the compressed size (common expansion ratio)
//  2. On ErrInvalidSourceShortBuffer, double the buffer size (up to maxSize)
//  3. Return an error once the buffer exceeds reasonable limits
func lz4Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024 // 128MB safety limit

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2 // Double buffer size and retry
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	// Buffer exceeded maxSize - likely corrupted data or unreasonable compression ratio
	return nil, lz4.ErrInvalidSourceShortBuffer
}
