//go:build nobuild

package compress

import (
	"github.com/valyala/gozstd"
)

// nativeLevel buckets the shared 1-12 scale onto native zstd levels.
func (c ZstdCompressor) nativeLevel() int {
	switch {
	case c.level <= 3:
		return 1
	case c.level <= 6:
		return 3
	case c.level <= 9:
		return 9
	default:
		return 19
	}
}

// Compress compresses the input data using Zstandard compression.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, c.nativeLevel()), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
