package section

import (
	"fmt"

	"github.com/arloliu/ziso/errs"
)

// SelectShift returns the smallest address shift able to represent every
// stored block offset of a container holding an image of the given size.
//
// An index entry keeps 31 offset bits, so a shift s can address
// (1 << 31) << s container bytes. Offsets reach up to the end of the stored
// data, which the format bounds by the metadata size plus the image size
// (blocks never grow past raw storage). The shift escalates as that total
// crosses 2 GiB, 4 GiB, 8 GiB and 16 GiB; a total exactly at a boundary
// stays at the smaller shift.
//
// Parameters:
//   - uncompressedSize: Total image size in bytes
//   - metadataSize: Combined header and index size in bytes
//
// Returns:
//   - uint8: Smallest sufficient shift in 0-4
//   - error: ErrImageTooLarge when even the largest shift cannot address the container
func SelectShift(uncompressedSize, metadataSize uint64) (uint8, error) {
	for shift := uint8(0); shift <= MaxShift; shift++ {
		capacity := uint64(1) << (31 + shift)
		if metadataSize <= capacity && uncompressedSize <= capacity-metadataSize {
			return shift, nil
		}
	}

	return 0, fmt.Errorf("%w: %d image bytes plus %d metadata bytes exceed the shift-%d horizon",
		errs.ErrImageTooLarge, uncompressedSize, metadataSize, MaxShift)
}
