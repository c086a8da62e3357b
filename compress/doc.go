// Package compress provides the block compression codecs used by the ziso
// container format.
//
// Compression is applied one block at a time: the container encoder hands a
// codec at most one block size worth of bytes and stores whatever comes back,
// falling back to raw storage when the codec cannot shrink the block. The
// codecs here know nothing about blocks, offsets or the raw fallback; they
// are plain byte-to-byte transforms.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
// **LZ4** (format.CompressionLZ4)
//
// The interchange standard for the container format: every third-party ZSO
// reader decodes LZ4 blocks. Very fast compression and decompression,
// moderate ratio. The level knob has no effect in fast mode.
//
// **LZ4HC** (format.CompressionLZ4HC)
//
// LZ4 high-compression mode. Blocks remain decodable by any LZ4 decoder, but
// the tighter packing is slower to produce. Levels 1-12 map onto the nine HC
// levels, clamping at the top.
//
// **Zstandard** (format.CompressionZstd)
//
// Best ratio of the set, moderate speed. Containers written with Zstd blocks
// are only readable by this library; use it when the same toolchain controls
// both ends. Levels 1-12 map onto the four encoder speed tiers.
//
// **S2** (format.CompressionS2)
//
// Balanced speed and ratio, also library-local. Levels 1-12 select between
// the standard, better and best encoding paths.
//
// **NoOp** (format.CompressionNone)
//
// Returns its input unchanged. Every block then takes the raw-storage
// fallback, producing a valid container with no compression at all, which is
// useful for benchmarking container overhead and for incompressible images.
//
// # Compression Levels
//
// CreateCodec accepts the 1-12 level scale of the command-line tool, where 1
// is fastest and 12 compresses hardest. Level 0 selects each codec's default
// (the hardest setting). Codecs with fewer native levels bucket the scale.
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use. Internal compressor
// state is pooled per call, never shared across goroutines.
package compress
