package container

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ziso/errs"
	"github.com/arloliu/ziso/format"
	"github.com/arloliu/ziso/section"
)

// buildContainer assembles container bytes by hand, bypassing the encoder so
// tests can produce structurally broken streams.
func buildContainer(hdr *section.Header, index section.Index, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write(hdr.Bytes())
	buf.Write(index.Bytes())
	buf.Write(payload)

	return buf.Bytes()
}

func TestNewDecoder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     io.ReadSeeker
		opts    []DecoderOption
		wantErr error
	}{
		{
			name:    "nil source",
			src:     nil,
			wantErr: errs.ErrNilReader,
		},
		{
			name:    "nil codec",
			src:     bytes.NewReader(nil),
			opts:    []DecoderOption{WithDecoderCodec(nil)},
			wantErr: errs.ErrInvalidCompressionType,
		},
		{
			name:    "unknown compression type",
			src:     bytes.NewReader(nil),
			opts:    []DecoderOption{WithDecoderCompression(format.CompressionType(0x7F))},
			wantErr: errs.ErrInvalidCompressionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(tt.src, tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecoder_AllCodecs_RoundTrip(t *testing.T) {
	img := makeImage(7168)

	types := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionLZ4HC,
	}

	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			cont, encStats := encodeToBuf(t, img, WithCompression(typ))
			got, decStats := decodeToBytes(t, cont, WithDecoderCompression(typ))

			require.Equal(t, img, got)
			require.Equal(t, encStats.Checksum, decStats.Checksum)
			require.Equal(t, encStats.BlocksRaw, decStats.BlocksRaw)
		})
	}
}

func TestDecoder_LZ4HCContainersDecodeAsLZ4(t *testing.T) {
	img := makeImage(7168)

	cont, _ := encodeToBuf(t, img, WithCompression(format.CompressionLZ4HC))
	got, _ := decodeToBytes(t, cont)

	require.Equal(t, img, got)
}

func TestDecoder_EmptyImage(t *testing.T) {
	cont, encStats := encodeToBuf(t, nil)
	require.Equal(t, uint32(0), encStats.BlocksTotal)

	got, decStats := decodeToBytes(t, cont)
	require.Empty(t, got)
	require.Equal(t, uint32(0), decStats.BlocksTotal)
	require.Equal(t, int64(0), decStats.ImageBytes)
	require.Equal(t, encStats.Checksum, decStats.Checksum)
}

func TestDecoder_PaddingTolerance(t *testing.T) {
	// At shift 4 every stored block may carry up to 15 trailing zero bytes of
	// alignment padding that the block codec must not see.
	img := makeImage(10240)

	types := []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionLZ4HC,
	}

	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			cont, _ := encodeToBuf(t, img, WithCompression(typ), WithShift(4))
			got, _ := decodeToBytes(t, cont, WithDecoderCompression(typ))

			require.Equal(t, img, got)
		})
	}
}

func TestDecoder_WrongCodec(t *testing.T) {
	img := makeImage(4096)
	cont, _ := encodeToBuf(t, img, WithCompression(format.CompressionZstd))

	dec, err := NewDecoder(bytes.NewReader(cont))
	require.NoError(t, err)

	_, err = dec.Decode(io.Discard)
	require.Error(t, err)
}

func TestDecoder_CorruptContainers(t *testing.T) {
	valid, _ := encodeToBuf(t, makeImage(4096))

	badMagic := append([]byte{}, valid...)
	badMagic[0] = 'X'

	// A 3000 byte image holds two blocks; growing the header size by one byte
	// makes the final block one byte short of its expected length.
	sizeTampered, _ := encodeToBuf(t, makeImage(3000), WithCompression(format.CompressionNone))
	binary.LittleEndian.PutUint64(sizeTampered[4:12], 3001)

	truncated, _ := encodeToBuf(t, makeImage(3000), WithCompression(format.CompressionNone))
	truncated = truncated[:len(truncated)-5]

	tests := []struct {
		name    string
		cont    []byte
		wantErr error
	}{
		{
			name:    "bad magic",
			cont:    badMagic,
			wantErr: errs.ErrInvalidMagic,
		},
		{
			name:    "stream shorter than header",
			cont:    valid[:10],
			wantErr: errs.ErrInvalidHeaderSize,
		},
		{
			name:    "block size below minimum",
			cont:    buildContainer(section.NewHeader(4096, 256, 0), nil, nil),
			wantErr: errs.ErrBlockSizeTooSmall,
		},
		{
			name:    "shift above maximum",
			cont:    buildContainer(section.NewHeader(4096, 2048, 5), nil, nil),
			wantErr: errs.ErrShiftOutOfRange,
		},
		{
			name:    "index truncated",
			cont:    buildContainer(section.NewHeader(4096, 2048, 0), section.Index{36, 52}, nil),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "first offset overlaps metadata",
			cont:    buildContainer(section.NewHeader(2048, 2048, 0), section.Index{24, 2080}, nil),
			wantErr: errs.ErrCorruptIndex,
		},
		{
			name:    "offsets decrease",
			cont:    buildContainer(section.NewHeader(4096, 2048, 0), section.Index{36, 2100, 2090}, nil),
			wantErr: errs.ErrCorruptIndex,
		},
		{
			name:    "zero stored length",
			cont:    buildContainer(section.NewHeader(2048, 2048, 0), section.Index{32, 32}, nil),
			wantErr: errs.ErrCorruptIndex,
		},
		{
			name:    "stored length over block capacity",
			cont:    buildContainer(section.NewHeader(2048, 2048, 0), section.Index{32, 2081}, nil),
			wantErr: errs.ErrCorruptIndex,
		},
		{
			name:    "payload truncated",
			cont:    truncated,
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "image size tampered",
			cont:    sizeTampered,
			wantErr: errs.ErrCorruptBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := NewDecoder(bytes.NewReader(tt.cont), WithDecoderCompression(format.CompressionNone))
			require.NoError(t, err)

			_, err = dec.Decode(io.Discard)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecoder_Reuse(t *testing.T) {
	img := makeImage(5000)
	cont, _ := encodeToBuf(t, img)

	dec, err := NewDecoder(bytes.NewReader(cont))
	require.NoError(t, err)

	var first, second bytes.Buffer
	_, err = dec.Decode(&first)
	require.NoError(t, err)
	_, err = dec.Decode(&second)
	require.NoError(t, err)

	require.Equal(t, img, first.Bytes())
	require.Equal(t, img, second.Bytes())
}

func TestDecoder_Progress(t *testing.T) {
	img := makeImage(10000)
	cont, _ := encodeToBuf(t, img)

	type sample struct{ done, total, written int64 }
	var samples []sample

	dec, err := NewDecoder(bytes.NewReader(cont), WithDecoderProgress(func(done, total, written int64) {
		samples = append(samples, sample{done, total, written})
	}))
	require.NoError(t, err)

	stats, err := dec.Decode(io.Discard)
	require.NoError(t, err)

	require.Len(t, samples, int(stats.BlocksTotal))
	last := samples[len(samples)-1]
	require.Equal(t, int64(len(img)), last.done)
	require.Equal(t, int64(len(img)), last.total)
}
