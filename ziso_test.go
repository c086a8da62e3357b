package ziso

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ziso/container"
	"github.com/arloliu/ziso/format"
)

func testImage(n int) []byte {
	img := make([]byte, n)
	for i := range img {
		img[i] = byte(i / 7)
	}

	return img
}

func TestCompressBytes_RoundTrip(t *testing.T) {
	for _, size := range []int{0, 100, 4096, 10000} {
		img := testImage(size)

		cont, encStats, err := CompressBytes(img)
		require.NoError(t, err)
		require.Equal(t, int64(size), encStats.ImageBytes)

		got, decStats, err := DecompressBytes(cont)
		require.NoError(t, err)
		require.Equal(t, img, got)
		require.Equal(t, encStats.Checksum, decStats.Checksum)
	}
}

func TestCompressBytes_Options(t *testing.T) {
	img := testImage(20000)

	cont, _, err := CompressBytes(img,
		container.WithCompression(format.CompressionZstd),
		container.WithCompressionLevel(3),
		container.WithBlockSize(512),
	)
	require.NoError(t, err)

	got, _, err := DecompressBytes(cont, container.WithDecoderCompression(format.CompressionZstd))
	require.NoError(t, err)
	require.Equal(t, img, got)
}

func TestDecompressBytes_Invalid(t *testing.T) {
	_, _, err := DecompressBytes([]byte("definitely not a container"))
	require.Error(t, err)
}

func TestSniff(t *testing.T) {
	cont, _, err := CompressBytes(testImage(1000))
	require.NoError(t, err)

	require.True(t, Sniff(bytes.NewReader(cont)))
	require.False(t, Sniff(bytes.NewReader(testImage(1000))))
	require.False(t, Sniff(bytes.NewReader([]byte("ZI"))))
	require.False(t, Sniff(bytes.NewReader(nil)))
}

func TestMaxContainerSize_Bounds(t *testing.T) {
	// Raw storage at maximal alignment is the worst case the bound must cover.
	for _, size := range []int{0, 1, 511, 512, 100000} {
		img := testImage(size)

		cont, stats, err := CompressBytes(img,
			container.WithCompression(format.CompressionNone),
			container.WithBlockSize(512),
			container.WithShift(4),
		)
		require.NoError(t, err)
		require.Equal(t, int64(len(cont)), stats.ContainerBytes)
		require.LessOrEqual(t, stats.ContainerBytes, MaxContainerSize(int64(size), 512), "size %d", size)
	}

	require.Zero(t, MaxContainerSize(-1, 2048))
}

func TestFileRoundTrip(t *testing.T) {
	img := testImage(50000)
	dir := t.TempDir()
	zsoPath := filepath.Join(dir, "image.zso")

	dst, err := os.Create(zsoPath)
	require.NoError(t, err)

	enc, err := NewEncoder(dst, container.WithCompression(format.CompressionLZ4HC))
	require.NoError(t, err)

	_, err = enc.Encode(bytes.NewReader(img), int64(len(img)))
	require.NoError(t, err)
	require.NoError(t, dst.Close())

	src, err := os.Open(zsoPath)
	require.NoError(t, err)
	defer src.Close()

	require.True(t, Sniff(src))

	dec, err := NewDecoder(src)
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = dec.Decode(&out)
	require.NoError(t, err)
	require.Equal(t, img, out.Bytes())

	r, err := NewReader(src)
	require.NoError(t, err)

	tail := make([]byte, 100)
	_, err = r.ReadAt(tail, int64(len(img)-100))
	require.NoError(t, err)
	require.Equal(t, img[len(img)-100:], tail)
}
