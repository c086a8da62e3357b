package section

// Magic is the 4-byte tag at offset 0 of every container.
const Magic = "ZISO"

// Offsets and section sizes in the container file.
const (
	HeaderSize     = 0x18       // fixed header size in bytes
	IndexEntrySize = 4          // fixed index entry size in bytes
	IndexOffset    = HeaderSize // byte offset where the block index starts
)

// Block size and shift limits.
const (
	MinBlockSize     = 512  // smallest block size the format allows
	DefaultBlockSize = 2048 // block size used when the caller does not pick one
	MaxShift         = 4    // largest supported address shift

	// MaxImageSize is the largest uncompressed size the format can hold: the
	// container byte horizon at MaxShift. Headers claiming more are implausible.
	MaxImageSize = uint64(1) << (31 + MaxShift)
)

// Index entry bit layout.
const (
	RawBlockMask     = 0x80000000 // bit 31 marks a block stored raw (uncompressed)
	OffsetMask       = 0x7FFFFFFF // bits 0-30 hold the shifted offset
	MaxShiftedOffset = OffsetMask // largest offset representable after shifting
)
