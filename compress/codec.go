package compress

import (
	"fmt"

	"github.com/arloliu/ziso/errs"
	"github.com/arloliu/ziso/format"
)

// DefaultLevel is the compression level used when the caller passes level 0.
// It matches the command-line default: the hardest setting on the 1-12 scale.
const DefaultLevel = 12

// MaxLevel is the top of the user-facing compression level scale.
const MaxLevel = 12

// Compressor compresses single block payloads.
//
// The container encoder calls Compress with at most one block size worth of
// bytes. The codec decides nothing about storage: output that fails to shrink
// the input is discarded by the caller in favor of raw storage.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses single block payloads.
//
// Separate from Compressor because decode paths only ever need this half;
// a decoder can be handed a Decompressor without dragging in encoder state.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// The input must have been produced by the matching Compress. The
	// decompressor validates the data format and returns an error if the data
	// is corrupted or uses an incompatible format.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the specified
// compression type and level.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, LZ4 or LZ4HC)
//   - level: Compression level on the 1-12 scale; 0 selects DefaultLevel
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: ErrInvalidCompressionType or ErrInvalidCompressionLevel
func CreateCodec(compressionType format.CompressionType, level int) (Codec, error) {
	if level < 0 || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d is outside 1-%d", errs.ErrInvalidCompressionLevel, level, MaxLevel)
	}
	if level == 0 {
		level = DefaultLevel
	}

	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(level), nil
	case format.CompressionS2:
		return NewS2Compressor(level), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionLZ4HC:
		return NewLZ4HCCompressor(level), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompressionType, compressionType)
	}
}
