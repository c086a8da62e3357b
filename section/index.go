package section

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/boljen/go-bitmap"

	"github.com/arloliu/ziso/errs"
)

// IndexEntry is one 32-bit block index value: a 31-bit shifted byte offset in
// bits 0-30 and the raw-storage flag in bit 31.
type IndexEntry uint32

// NewIndexEntry packs a shifted offset and the raw-storage flag into an index
// entry.
//
// Parameters:
//   - shifted: Block offset already right-shifted by the container shift
//   - isRaw: Whether the block is stored raw (uncompressed)
//
// Returns:
//   - IndexEntry: Packed entry
//   - error: ErrOffsetOverflow if the shifted offset exceeds 31 bits
func NewIndexEntry(shifted uint64, isRaw bool) (IndexEntry, error) {
	if shifted > MaxShiftedOffset {
		return 0, fmt.Errorf("%w: shifted offset %d exceeds %d", errs.ErrOffsetOverflow, shifted, uint64(MaxShiftedOffset))
	}

	entry := IndexEntry(shifted)
	if isRaw {
		entry |= RawBlockMask
	}

	return entry, nil
}

// Offset returns the aligned byte offset this entry addresses.
func (e IndexEntry) Offset(shift uint8) uint64 {
	return uint64(e&OffsetMask) << shift
}

// IsRaw reports whether the block is stored raw (uncompressed).
func (e IndexEntry) IsRaw() bool {
	return e&RawBlockMask != 0
}

// EncodeOffset converts a byte offset into its shifted index form, rounding
// the offset up to the next 2^shift boundary when shifting would truncate it.
// Rounding up, never down, guarantees block data is never overlapped by the
// alignment; the writer must zero-pad the stream up to the aligned offset.
//
// Parameters:
//   - offset: Byte offset where the writer currently stands
//   - shift: Container address shift
//
// Returns:
//   - uint64: Aligned byte offset the block data must actually start at
//   - uint64: Shifted offset for NewIndexEntry
func EncodeOffset(offset uint64, shift uint8) (uint64, uint64) {
	shifted := offset >> shift
	aligned := shifted << shift
	if aligned < offset {
		shifted++
		aligned = shifted << shift
	}

	return aligned, shifted
}

// Index is the materialized block index of one container: one entry per data
// block plus the trailing sentinel.
type Index []IndexEntry

// ReadIndex reads count index entries from r.
func ReadIndex(r io.Reader, count uint32) (Index, error) {
	buf := make([]byte, int(count)*IndexEntrySize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read block index: %w", err)
	}

	index := make(Index, count)
	for i := range index {
		index[i] = IndexEntry(binary.LittleEndian.Uint32(buf[i*IndexEntrySize:]))
	}

	return index, nil
}

// Bytes serializes the index into a byte slice.
func (x Index) Bytes() []byte {
	b := make([]byte, len(x)*IndexEntrySize)
	for i, entry := range x {
		binary.LittleEndian.PutUint32(b[i*IndexEntrySize:], uint32(entry))
	}

	return b
}

// Validate checks that decoded entry offsets are non-decreasing and that the
// first entry does not overlap the metadata region.
//
// Parameters:
//   - shift: Container address shift
//   - minOffset: Lowest legal offset for the first entry (header plus index size)
//
// Returns:
//   - error: ErrCorruptIndex describing the first offending entry
func (x Index) Validate(shift uint8, minOffset uint64) error {
	prev := minOffset
	for i, entry := range x {
		offset := entry.Offset(shift)
		if offset < prev {
			if i == 0 {
				return fmt.Errorf("%w: entry 0 offset %d overlaps metadata ending at %d", errs.ErrCorruptIndex, offset, minOffset)
			}

			return fmt.Errorf("%w: entry %d offset %d precedes entry %d offset %d", errs.ErrCorruptIndex, i, offset, i-1, prev)
		}
		prev = offset
	}

	return nil
}

// StoredLen returns the stored byte length of data block i, computed as the
// offset delta to the next entry. The length includes any alignment padding
// that follows the block's payload.
func (x Index) StoredLen(i int, shift uint8) int64 {
	return int64(x[i+1].Offset(shift)) - int64(x[i].Offset(shift)) //nolint: gosec
}

// RawBitmap returns a bitmap with one bit per data block, set when the block
// is stored raw. The sentinel entry carries no block and is excluded.
func (x Index) RawBitmap() bitmap.Bitmap {
	if len(x) == 0 {
		return bitmap.New(0)
	}

	bm := bitmap.New(len(x) - 1)
	for i, entry := range x[:len(x)-1] {
		if entry.IsRaw() {
			bm.Set(i, true)
		}
	}

	return bm
}
