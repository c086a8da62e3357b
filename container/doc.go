// Package container implements encoding, decoding and random access for the
// ZISO block-compressed disc image format.
//
// The three entry points cover the three access patterns:
//
//   - Encoder turns a raw image stream into a container (one pass, sequential).
//   - Decoder turns a container back into the raw image (one pass, sequential).
//   - Reader serves random-access reads of the decoded image without
//     decompressing the whole container, which is the reason the format
//     exists: emulators fetch individual blocks on demand.
//
// Block compression is delegated to a compress.Codec chosen by configuration.
// The format does not record the codec, so both sides must agree out of band;
// LZ4 is the interchange default. Whatever the codec does, the container
// falls back to storing a block raw whenever compression fails to shrink it,
// so a container is never meaningfully larger than its image.
//
// Encoding writes a placeholder index first and rewrites it after the last
// block, because a block's offset is only known once every previous block's
// compressed size is known. The output stream therefore must be seekable.
package container
