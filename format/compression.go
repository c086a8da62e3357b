// Package format defines the enum types shared by the ziso packages.
package format

import (
	"fmt"
	"strings"
)

// CompressionType identifies the block compression codec used by an encoder
// or expected by a decoder. The container format itself does not record the
// codec; both sides must agree out of band. LZ4 is the interchange standard,
// every other choice produces a container only this library reads back.
type CompressionType uint8

const (
	CompressionNone  CompressionType = 0x1 // CompressionNone stores every block raw.
	CompressionZstd  CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2    CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4   CompressionType = 0x4 // CompressionLZ4 represents LZ4 fast compression.
	CompressionLZ4HC CompressionType = 0x5 // CompressionLZ4HC represents LZ4 high-compression mode.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionLZ4HC:
		return "LZ4HC"
	default:
		return "Unknown"
	}
}

// ParseCompressionType converts a user-facing method name into a
// CompressionType. Matching is case-insensitive.
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(s) {
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "lz4hc":
		return CompressionLZ4HC, nil
	default:
		return 0, fmt.Errorf("unknown compression type: %q", s)
	}
}
