package container

import (
	"fmt"

	"github.com/arloliu/ziso/compress"
	"github.com/arloliu/ziso/errs"
	"github.com/arloliu/ziso/format"
	"github.com/arloliu/ziso/section"
)

// EncoderOption configures an Encoder at construction time.
// Options are validated eagerly, so an invalid value surfaces from
// NewEncoder rather than from the first Encode call.
type EncoderOption func(*Encoder) error

// WithBlockSize sets the uncompressed block size in bytes.
//
// Smaller blocks seek faster and compress worse; larger blocks do the
// opposite. The value must be at least section.MinBlockSize (512).
// Defaults to section.DefaultBlockSize (2048), the CD-ROM sector size.
func WithBlockSize(size uint32) EncoderOption {
	return func(e *Encoder) error {
		if size < section.MinBlockSize {
			return fmt.Errorf("%w: %d (minimum %d)", errs.ErrBlockSizeTooSmall, size, section.MinBlockSize)
		}

		e.blockSize = size

		return nil
	}
}

// WithCompression selects the compression algorithm. Defaults to LZ4, the
// interchange standard; containers written with any other algorithm can only
// be read by peers configured for it, because the format does not record the
// codec.
func WithCompression(typ format.CompressionType) EncoderOption {
	return func(e *Encoder) error {
		e.compression = typ

		return nil
	}
}

// WithCompressionLevel sets the effort level, 1 (fastest) to 12 (smallest).
// Zero selects the codec default. How levels map onto a given algorithm is
// described in the compress package.
func WithCompressionLevel(level int) EncoderOption {
	return func(e *Encoder) error {
		if level < 0 || level > compress.MaxLevel {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompressionLevel, level)
		}

		e.level = level

		return nil
	}
}

// WithCodec supplies a fully constructed codec, overriding WithCompression
// and WithCompressionLevel. Useful for codecs outside the built-in set.
func WithCodec(codec compress.Codec) EncoderOption {
	return func(e *Encoder) error {
		if codec == nil {
			return fmt.Errorf("%w: nil codec", errs.ErrInvalidCompressionType)
		}

		e.codec = codec

		return nil
	}
}

// WithShift forces at least the given alignment shift instead of the
// smallest one that can address the container. Wider alignment trades
// padding bytes for address range; containers written with a
// larger-than-necessary shift are still valid. The encoder escalates
// beyond the forced value if the image demands it.
func WithShift(shift uint8) EncoderOption {
	return func(e *Encoder) error {
		if shift > section.MaxShift {
			return fmt.Errorf("%w: %d (maximum %d)", errs.ErrShiftOutOfRange, shift, section.MaxShift)
		}

		e.minShift = shift

		return nil
	}
}

// WithProgress registers a callback invoked after every encoded block.
func WithProgress(fn ProgressFunc) EncoderOption {
	return func(e *Encoder) error {
		e.progress = fn

		return nil
	}
}

// DecoderOption configures a Decoder at construction time.
type DecoderOption func(*Decoder) error

// WithDecoderCompression selects the algorithm used to decompress blocks.
// It must match the algorithm the container was written with. Defaults to
// LZ4.
func WithDecoderCompression(typ format.CompressionType) DecoderOption {
	return func(d *Decoder) error {
		d.compression = typ

		return nil
	}
}

// WithDecoderCodec supplies a fully constructed codec, overriding
// WithDecoderCompression.
func WithDecoderCodec(codec compress.Codec) DecoderOption {
	return func(d *Decoder) error {
		if codec == nil {
			return fmt.Errorf("%w: nil codec", errs.ErrInvalidCompressionType)
		}

		d.codec = codec

		return nil
	}
}

// WithDecoderProgress registers a callback invoked after every decoded block.
func WithDecoderProgress(fn ProgressFunc) DecoderOption {
	return func(d *Decoder) error {
		d.progress = fn

		return nil
	}
}

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*Reader) error

// WithReaderCompression selects the algorithm used to decompress blocks.
// It must match the algorithm the container was written with. Defaults to
// LZ4.
func WithReaderCompression(typ format.CompressionType) ReaderOption {
	return func(r *Reader) error {
		r.compression = typ

		return nil
	}
}

// WithReaderCodec supplies a fully constructed codec, overriding
// WithReaderCompression.
func WithReaderCodec(codec compress.Codec) ReaderOption {
	return func(r *Reader) error {
		if codec == nil {
			return fmt.Errorf("%w: nil codec", errs.ErrInvalidCompressionType)
		}

		r.codec = codec

		return nil
	}
}
