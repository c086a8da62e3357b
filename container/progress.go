package container

// ProgressFunc receives progress updates at block granularity.
//
// done and total are image byte counts: done grows from 0 to total as blocks
// are consumed (Encoder) or produced (Decoder). written is the number of
// container payload bytes emitted so far; during decoding it mirrors done.
// Callbacks run on the calling goroutine between blocks, so a slow callback
// slows the operation itself.
//
// The library never renders progress. Formatting is the caller's job.
type ProgressFunc func(done, total, written int64)

// EncodeStats summarizes a completed Encode call.
type EncodeStats struct {
	// BlocksTotal is the number of data blocks written, excluding the
	// end-of-data sentinel index entry.
	BlocksTotal uint32

	// BlocksRaw counts blocks stored uncompressed because compression
	// failed to shrink them.
	BlocksRaw uint32

	// ImageBytes is the number of image bytes consumed from the source.
	ImageBytes int64

	// ContainerBytes is the total size of the written container,
	// including header, index, payloads and alignment padding.
	ContainerBytes int64

	// Checksum is the XXH64 digest of the image bytes. Comparing it with
	// DecodeStats.Checksum after a decode verifies a round trip.
	Checksum uint64
}

// Ratio returns the container size as a fraction of the image size.
// Values below 1.0 mean the container is smaller than the image.
// Returns 0 when the image is empty.
func (s EncodeStats) Ratio() float64 {
	if s.ImageBytes == 0 {
		return 0
	}

	return float64(s.ContainerBytes) / float64(s.ImageBytes)
}

// SpaceSavings returns the saved space as a percentage of the image size.
// A 40% saving means the container is 60% of the image. Negative values
// are possible for incompressible images, where alignment padding and
// metadata make the container slightly larger.
func (s EncodeStats) SpaceSavings() float64 {
	if s.ImageBytes == 0 {
		return 0
	}

	return (1 - s.Ratio()) * 100
}

// DecodeStats summarizes a completed Decode call.
type DecodeStats struct {
	// BlocksTotal is the number of data blocks decoded, excluding the
	// end-of-data sentinel index entry.
	BlocksTotal uint32

	// BlocksRaw counts blocks that were stored uncompressed.
	BlocksRaw uint32

	// ImageBytes is the number of image bytes written to the destination.
	ImageBytes int64

	// Checksum is the XXH64 digest of the decoded image bytes.
	Checksum uint64
}
