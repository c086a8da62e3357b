package compress

import "github.com/klauspost/compress/s2"

// S2Compressor provides S2 block compression: balanced speed and ratio.
// Like Zstd, S2 blocks are library-local, not interchange format.
type S2Compressor struct {
	level int
}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
//
// Parameters:
//   - level: Compression level on the 1-12 scale; 0 selects the default.
//     Levels 1-4 use the standard encoder, 5-8 the better encoder, and 9-12
//     the best encoder.
func NewS2Compressor(level int) S2Compressor {
	if level <= 0 {
		level = DefaultLevel
	}

	return S2Compressor{level: level}
}

// Compress compresses the input data using S2 compression.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	switch {
	case c.level <= 4:
		return s2.Encode(nil, data), nil
	case c.level <= 8:
		return s2.EncodeBetter(nil, data), nil
	default:
		return s2.EncodeBest(nil, data), nil
	}
}

// Decompress decompresses the input data using S2 decompression.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
