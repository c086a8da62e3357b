package section

import (
	"encoding/binary"

	"github.com/arloliu/ziso/errs"
)

// Header represents the fixed-size header section at the start of the container.
type Header struct {
	// UncompressedSize is the total size of the original image in bytes.
	UncompressedSize uint64 // byte offset 4-11
	// BlockSize is the size of one uncompressed block in bytes, at least MinBlockSize.
	BlockSize uint32 // byte offset 12-15
	// Shift is the power-of-two alignment exponent applied to every stored
	// block offset so it fits the 31-bit offset field of an index entry.
	Shift uint8 // byte offset 16
}

// NewHeader creates a Header for an image of the given size.
func NewHeader(uncompressedSize uint64, blockSize uint32, shift uint8) *Header {
	return &Header{
		UncompressedSize: uncompressedSize,
		BlockSize:        blockSize,
		Shift:            shift,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 24 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic, or a field validation error
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if string(data[0:4]) != Magic {
		return errs.ErrInvalidMagic
	}

	h.UncompressedSize = binary.LittleEndian.Uint64(data[4:12])
	h.BlockSize = binary.LittleEndian.Uint32(data[12:16])
	h.Shift = data[16]

	return h.Validate()
}

// Bytes serializes the Header into a byte slice.
// Bytes 17-23 are reserved and written as zero.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], Magic)
	binary.LittleEndian.PutUint64(b[4:12], h.UncompressedSize)
	binary.LittleEndian.PutUint32(b[12:16], h.BlockSize)
	b[16] = h.Shift

	return b
}

// Validate checks the header fields against the format limits.
//
// Returns:
//   - error: ErrBlockSizeTooSmall, ErrShiftOutOfRange, or ErrImageTooLarge
func (h *Header) Validate() error {
	if h.BlockSize < MinBlockSize {
		return errs.ErrBlockSizeTooSmall
	}
	if h.Shift > MaxShift {
		return errs.ErrShiftOutOfRange
	}
	if h.UncompressedSize > MaxImageSize {
		return errs.ErrImageTooLarge
	}

	return nil
}

// NumBlocks returns the number of index entries: one per data block plus the
// trailing sentinel. An empty image still carries the sentinel.
func (h *Header) NumBlocks() uint32 {
	return uint32(BlockCount(h.UncompressedSize, h.BlockSize)) //nolint: gosec
}

// DataBlocks returns the number of data blocks, excluding the sentinel entry.
func (h *Header) DataBlocks() uint32 {
	return h.NumBlocks() - 1
}

// IndexSize returns the byte length of the block index.
func (h *Header) IndexSize() uint32 {
	return h.NumBlocks() * IndexEntrySize
}

// MetadataSize returns the combined byte length of the header and the block
// index, which is the offset where block payloads may begin.
func (h *Header) MetadataSize() uint64 {
	return HeaderSize + uint64(h.IndexSize())
}

// BlockLen returns the uncompressed length of data block i. Every block is
// exactly BlockSize bytes except the final one, which holds the remainder.
func (h *Header) BlockLen(i uint32) uint32 {
	start := uint64(i) * uint64(h.BlockSize)
	remain := h.UncompressedSize - start
	if remain > uint64(h.BlockSize) {
		return h.BlockSize
	}

	return uint32(remain)
}

// BlockCount computes the index entry count for an image: ceil(size/blockSize)
// data blocks plus one sentinel. Computed in uint64 so implausible header
// values cannot overflow before validation rejects them.
func BlockCount(size uint64, blockSize uint32) uint64 {
	if size == 0 {
		return 1
	}

	return (size-1)/uint64(blockSize) + 2
}

// ParseHeader parses a Header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least 24 bytes)
//
// Returns:
//   - Header: Parsed header struct
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic, or a field validation error
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
