// Package ziso reads and writes ZISO (ZSO) block-compressed disc image
// containers with random access to the uncompressed data.
//
// A container splits the original image into fixed-size blocks, compresses
// each block independently and records where every block landed in a 32-bit
// index. Keeping blocks independent is what makes the format seekable: any
// byte of the image can be served by decompressing just the block that holds
// it, which is how emulators read compressed disc images in place.
//
// # Core Features
//
//   - Block-level compression with per-block raw fallback, so containers
//     never blow up on incompressible data
//   - Random access through Reader, an io.ReaderAt over the image bytes
//   - Pluggable block codecs (LZ4, LZ4HC, Zstd, S2) with LZ4 as the
//     interchange standard other ZISO tools understand
//   - Images up to 32 GiB through power-of-two offset alignment
//   - XXH64 checksums of the image bytes on both encode and decode
//
// # Basic Usage
//
// Compressing an image file:
//
//	src, _ := os.Open("game.iso")
//	info, _ := src.Stat()
//	dst, _ := os.Create("game.zso")
//
//	enc, _ := ziso.NewEncoder(dst)
//	stats, err := enc.Encode(src, info.Size())
//	fmt.Printf("%.1f%% saved\n", stats.SpaceSavings())
//
// Decompressing it back:
//
//	src, _ := os.Open("game.zso")
//	dst, _ := os.Create("game.iso")
//
//	dec, _ := ziso.NewDecoder(src)
//	stats, err := dec.Decode(dst)
//
// In-memory equivalents for small images:
//
//	cont, _, _ := ziso.CompressBytes(image)
//	image2, _, _ := ziso.DecompressBytes(cont)
//
// # Random Access
//
// Reader decodes only the blocks a read touches:
//
//	f, _ := os.Open("game.zso")
//	r, _ := ziso.NewReader(f)
//
//	sector := make([]byte, 2048)
//	_, err := r.ReadAt(sector, 0x8000) // ISO 9660 volume descriptor
//
// # Package Structure
//
// This package provides top-level wrappers around the container package,
// which holds Encoder, Decoder, Reader and their options. The compress
// package supplies the block codecs and the section package the low-level
// header and index layout, for tools that need to inspect containers
// structurally.
package ziso

import (
	"bytes"
	"io"

	"github.com/xaionaro-go/bytesextra"

	"github.com/arloliu/ziso/container"
	"github.com/arloliu/ziso/section"
)

// NewEncoder creates an encoder that writes a container to dst.
//
// The destination must be seekable because the block index is rewritten
// after the last block. Defaults: LZ4 compression, 2048 byte blocks.
//
// Parameters:
//   - dst: Seekable destination for the container
//   - opts: Optional configuration (see container.EncoderOption)
//
// Returns:
//   - *container.Encoder: The created encoder.
//   - error: An error if the configuration is invalid.
//
// Available options:
//   - container.WithBlockSize(bytes)
//   - container.WithCompression(format.CompressionLZ4|LZ4HC|Zstd|S2|None)
//   - container.WithCompressionLevel(1..12)
//   - container.WithCodec(codec)
//   - container.WithShift(0..4)
//   - container.WithProgress(fn)
//
// Example:
//
//	enc, err := ziso.NewEncoder(dst,
//	    container.WithCompression(format.CompressionLZ4HC),
//	    container.WithCompressionLevel(9),
//	)
func NewEncoder(dst io.WriteSeeker, opts ...container.EncoderOption) (*container.Encoder, error) {
	return container.NewEncoder(dst, opts...)
}

// NewDecoder creates a decoder that reads a container from src.
//
// The source must be seekable; blocks are located through the index. The
// configured compression must match the one the container was written with,
// LZ4 by default.
//
// Parameters:
//   - src: Seekable source containing a complete container
//   - opts: Optional configuration (see container.DecoderOption)
//
// Returns:
//   - *container.Decoder: The created decoder.
//   - error: An error if the configuration is invalid.
func NewDecoder(src io.ReadSeeker, opts ...container.DecoderOption) (*container.Decoder, error) {
	return container.NewDecoder(src, opts...)
}

// NewReader opens a container for random access to the uncompressed image.
//
// The header and block index are read and validated immediately; reads then
// decompress only the blocks they touch. Reader implements io.ReaderAt.
//
// Parameters:
//   - src: Seekable source containing a complete container
//   - opts: Optional configuration (see container.ReaderOption)
//
// Returns:
//   - *container.Reader: The created reader.
//   - error: An error if the stream is not a valid container.
//
// Example:
//
//	r, err := ziso.NewReader(f)
//	block, err := r.ReadBlock(0)
func NewReader(src io.ReadSeeker, opts ...container.ReaderOption) (*container.Reader, error) {
	return container.NewReader(src, opts...)
}

// CompressBytes encodes an in-memory image into a new container byte slice.
//
// Convenience wrapper for images that comfortably fit in memory; use
// NewEncoder with files for anything large.
//
// Parameters:
//   - image: Uncompressed image bytes
//   - opts: Optional configuration (see container.EncoderOption)
//
// Returns:
//   - []byte: The complete container.
//   - container.EncodeStats: Block counts, byte counts and image checksum.
//   - error: An error if encoding fails.
func CompressBytes(image []byte, opts ...container.EncoderOption) ([]byte, container.EncodeStats, error) {
	// Sized for the worst case at the smallest legal block size, which upper
	// bounds every configurable block size.
	buf := make([]byte, MaxContainerSize(int64(len(image)), section.MinBlockSize))

	enc, err := container.NewEncoder(bytesextra.NewReadWriteSeeker(buf), opts...)
	if err != nil {
		return nil, container.EncodeStats{}, err
	}

	stats, err := enc.Encode(bytes.NewReader(image), int64(len(image)))
	if err != nil {
		return nil, container.EncodeStats{}, err
	}

	return buf[:stats.ContainerBytes], stats, nil
}

// DecompressBytes decodes an in-memory container back into image bytes.
//
// Parameters:
//   - cont: Complete container bytes
//   - opts: Optional configuration (see container.DecoderOption)
//
// Returns:
//   - []byte: The uncompressed image.
//   - container.DecodeStats: Block counts, byte count and image checksum.
//   - error: An error if the container is invalid or corrupt.
func DecompressBytes(cont []byte, opts ...container.DecoderOption) ([]byte, container.DecodeStats, error) {
	dec, err := container.NewDecoder(bytes.NewReader(cont), opts...)
	if err != nil {
		return nil, container.DecodeStats{}, err
	}

	var out bytes.Buffer
	stats, err := dec.Decode(&out)
	if err != nil {
		return nil, container.DecodeStats{}, err
	}

	return out.Bytes(), stats, nil
}

// Sniff reports whether the stream starts with the container magic tag.
//
// Tools use this to pick compress or decompress mode from the input itself
// instead of trusting file extensions. A false result only means the stream
// is not a container; it says nothing about what the stream is.
func Sniff(r io.ReaderAt) bool {
	var magic [4]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return false
	}

	return string(magic[:]) == section.Magic
}

// MaxContainerSize returns an upper bound on the container size for an image
// of imageSize bytes at the given block size: metadata plus every block
// stored raw plus maximal alignment padding. Useful for pre-allocating
// in-memory destinations; real containers are normally far smaller.
func MaxContainerSize(imageSize int64, blockSize uint32) int64 {
	if imageSize < 0 {
		return 0
	}
	if blockSize < section.MinBlockSize {
		blockSize = section.MinBlockSize
	}

	blocks := int64(section.BlockCount(uint64(imageSize), blockSize)) //nolint: gosec
	pad := int64(1) << section.MaxShift

	return section.HeaderSize + blocks*section.IndexEntrySize + imageSize + blocks*pad + pad
}
