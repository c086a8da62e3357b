package container

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ziso/errs"
)

// stubCodec lets tests dictate exactly what the codec produces.
type stubCodec struct {
	compress   func(data []byte) ([]byte, error)
	decompress func(data []byte) ([]byte, error)
}

func (c stubCodec) Compress(data []byte) ([]byte, error)   { return c.compress(data) }
func (c stubCodec) Decompress(data []byte) ([]byte, error) { return c.decompress(data) }

func fixedOutputCodec(out []byte) stubCodec {
	return stubCodec{
		compress:   func([]byte) ([]byte, error) { return out, nil },
		decompress: func([]byte) ([]byte, error) { return out, nil },
	}
}

func TestBlockCodec_CompressBlock(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 100)

	tests := []struct {
		name     string
		codec    stubCodec
		capacity int
		wantRaw  bool
		wantErr  error
	}{
		{
			name:     "smaller output stays compressed",
			codec:    fixedOutputCodec(make([]byte, 40)),
			capacity: 100,
			wantRaw:  false,
		},
		{
			name:     "equal size output falls back to raw",
			codec:    fixedOutputCodec(make([]byte, 100)),
			capacity: 100,
			wantRaw:  true,
		},
		{
			name:     "larger output falls back to raw",
			codec:    fixedOutputCodec(make([]byte, 150)),
			capacity: 200,
			wantRaw:  true,
		},
		{
			name:     "empty output falls back to raw",
			codec:    fixedOutputCodec(nil),
			capacity: 100,
			wantRaw:  true,
		},
		{
			name: "codec failure falls back to raw",
			codec: stubCodec{
				compress: func([]byte) ([]byte, error) { return nil, errors.New("boom") },
			},
			capacity: 100,
			wantRaw:  true,
		},
		{
			name:     "block over capacity cannot be stored",
			codec:    fixedOutputCodec(make([]byte, 50)),
			capacity: 40,
			wantErr:  errs.ErrBlockTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := blockCodec{codec: tt.codec}

			stored, isRaw, err := bc.compressBlock(raw, tt.capacity)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantRaw, isRaw)
			if isRaw {
				require.Equal(t, raw, stored)
			} else {
				require.Less(t, len(stored), len(raw))
			}
		})
	}
}

func TestBlockCodec_CompressBlock_RawFitsCapacityExactly(t *testing.T) {
	raw := bytes.Repeat([]byte{0xCD}, 64)
	bc := blockCodec{codec: fixedOutputCodec(make([]byte, 64))}

	stored, isRaw, err := bc.compressBlock(raw, 64)
	require.NoError(t, err)
	require.True(t, isRaw)
	require.Equal(t, raw, stored)
}

// strictCodec only accepts the exact payload it was built around, standing in
// for real block codecs that reject trailing bytes after the compressed
// stream.
func strictCodec(payload, plain []byte) stubCodec {
	return stubCodec{
		decompress: func(data []byte) ([]byte, error) {
			if !bytes.Equal(data, payload) {
				return nil, errors.New("trailing garbage")
			}

			return plain, nil
		},
	}
}

func TestBlockCodec_DecompressBlock(t *testing.T) {
	plain := bytes.Repeat([]byte{0x11, 0x22}, 50)
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	tests := []struct {
		name    string
		stored  []byte
		isRaw   bool
		maxPad  int
		wantErr error
	}{
		{
			name:   "exact compressed payload",
			stored: payload,
			maxPad: 15,
		},
		{
			name:   "compressed payload with alignment padding",
			stored: append(append([]byte{}, payload...), 0, 0, 0),
			maxPad: 15,
		},
		{
			name:    "padding beyond the alignment bound",
			stored:  append(append([]byte{}, payload...), 0, 0, 0),
			maxPad:  2,
			wantErr: errs.ErrDecompressionFailed,
		},
		{
			name:    "trailing garbage is not padding",
			stored:  append(append([]byte{}, payload...), 0x7F),
			maxPad:  15,
			wantErr: errs.ErrDecompressionFailed,
		},
		{
			name:    "zero padding tolerance is strict",
			stored:  append(append([]byte{}, payload...), 0),
			maxPad:  0,
			wantErr: errs.ErrDecompressionFailed,
		},
		{
			name:   "raw block exact",
			stored: plain,
			isRaw:  true,
			maxPad: 15,
		},
		{
			name:   "raw block with alignment padding",
			stored: append(append([]byte{}, plain...), make([]byte, 15)...),
			isRaw:  true,
			maxPad: 15,
		},
		{
			name:    "raw block shorter than the block length",
			stored:  plain[:99],
			isRaw:   true,
			maxPad:  15,
			wantErr: errs.ErrCorruptBlock,
		},
		{
			name:    "raw block padded past the alignment bound",
			stored:  append(append([]byte{}, plain...), make([]byte, 16)...),
			isRaw:   true,
			maxPad:  15,
			wantErr: errs.ErrCorruptBlock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bc := blockCodec{codec: strictCodec(payload, plain)}

			got, err := bc.decompressBlock(tt.stored, tt.isRaw, len(plain), tt.maxPad)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, plain, got)
		})
	}
}

func TestBlockCodec_DecompressBlock_WrongSize(t *testing.T) {
	short := make([]byte, 80)
	bc := blockCodec{codec: fixedOutputCodec(short)}

	_, err := bc.decompressBlock([]byte{1, 2, 3}, false, 100, 15)
	require.ErrorIs(t, err, errs.ErrCorruptBlock)
}
