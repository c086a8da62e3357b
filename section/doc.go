// Package section defines the low-level binary structures and constants of the
// ZISO container format.
//
// This package provides the foundational types that define the physical layout
// of a container. It handles binary serialization/deserialization of the header
// and the block index, ensuring a consistent byte-level representation across
// platforms. All integers are little-endian.
//
// # Container Structure
//
// A container consists of a fixed-size header, a block index, and the stored
// block payloads:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ Header (24 bytes, fixed)                                     │
//	│  - Magic "ZISO" (4 bytes)                                    │
//	│  - UncompressedSize (8 bytes)                                │
//	│  - BlockSize (4 bytes)                                       │
//	│  - Shift (1 byte), reserved zero bytes up to offset 0x18     │
//	├──────────────────────────────────────────────────────────────┤
//	│ Block index (4 bytes × blocksNumber)                         │
//	│  one IndexEntry per data block plus one sentinel entry       │
//	├──────────────────────────────────────────────────────────────┤
//	│ Stored block payloads, each starting at the 2^shift-aligned  │
//	│ offset its index entry encodes, zero-padded between blocks   │
//	└──────────────────────────────────────────────────────────────┘
//
// # Index Entries
//
// An IndexEntry packs a 64-bit byte offset and a raw-storage flag into 32
// bits: the offset is right-shifted by the header's Shift (offsets are kept
// 2^shift-aligned so the shift is lossless), and bit 31 marks blocks stored
// raw. The sentinel entry addresses the end of the last block's stored bytes
// so that stored lengths can be computed as offset deltas.
//
// # Address Shift
//
// SelectShift picks the smallest shift in 0-4 whose 31-bit address space can
// reach every offset in the container. Shift 0 covers containers up to 2 GiB;
// each increment doubles the horizon at the cost of wider alignment padding.
package section
