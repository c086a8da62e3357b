// Package errs defines the sentinel errors shared across the ziso packages.
//
// Callers match these with errors.Is; most call sites wrap them with
// additional context using fmt.Errorf and the %w verb.
package errs

import "errors"

var (
	// ErrInvalidMagic is returned when a stream does not start with the ZISO magic tag.
	ErrInvalidMagic = errors.New("invalid magic tag")

	// ErrInvalidHeaderSize is returned when the header cannot be read in full.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrBlockSizeTooSmall is returned when the block size is below the format minimum of 512 bytes.
	ErrBlockSizeTooSmall = errors.New("block size too small")

	// ErrShiftOutOfRange is returned when the address shift exceeds the supported range of 0-4.
	ErrShiftOutOfRange = errors.New("address shift out of range")

	// ErrImageTooLarge is returned when no supported shift can address every
	// block offset of the container. Images above the shift-4 horizon
	// (32 GiB including metadata) cannot be encoded.
	ErrImageTooLarge = errors.New("image too large for 31-bit shifted addressing")

	// ErrOffsetOverflow is returned when a shifted block offset does not fit in
	// the 31 usable bits of an index entry. The shift chosen at encode time
	// guarantees this cannot happen for valid inputs, so it signals an internal
	// invariant violation rather than a user error.
	ErrOffsetOverflow = errors.New("block offset overflows index entry")

	// ErrBlockTooLarge is returned when a block stored raw would exceed the
	// per-block capacity.
	ErrBlockTooLarge = errors.New("raw block exceeds block capacity")

	// ErrCorruptIndex is returned when index entries are non-monotonic,
	// overlap the metadata region, or imply implausible stored lengths.
	ErrCorruptIndex = errors.New("corrupt block index")

	// ErrCorruptBlock is returned when a stored block cannot be reconstructed
	// to its expected uncompressed size.
	ErrCorruptBlock = errors.New("corrupt block data")

	// ErrDecompressionFailed is returned when the block decompressor rejects
	// stored block data.
	ErrDecompressionFailed = errors.New("block decompression failed")

	// ErrInvalidCompressionType is returned when an unknown compression type is requested.
	ErrInvalidCompressionType = errors.New("invalid compression type")

	// ErrInvalidCompressionLevel is returned when the compression level is outside the 1-12 scale.
	ErrInvalidCompressionLevel = errors.New("invalid compression level")

	// ErrInvalidImageSize is returned when an encode pass is given a negative image size.
	ErrInvalidImageSize = errors.New("invalid image size")

	// ErrNilWriter is returned when an encoder is constructed without an output stream.
	ErrNilWriter = errors.New("nil output stream")

	// ErrEncoderFinished is returned when Encode is called on an encoder that
	// already produced a container. Encoders are single-use.
	ErrEncoderFinished = errors.New("encoder already finished")

	// ErrNilReader is returned when a decoder or reader is constructed without an input stream.
	ErrNilReader = errors.New("nil input stream")

	// ErrReadOutOfRange is returned when a random-access read starts beyond the image end.
	ErrReadOutOfRange = errors.New("read offset out of range")
)
