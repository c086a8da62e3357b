// Command ziso compresses and decompresses ZISO (ZSO) disc images.
//
// Run with a bare file argument to pick the direction automatically: inputs
// that already carry the container magic are decompressed, everything else
// is compressed.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/arloliu/ziso"
	"github.com/arloliu/ziso/container"
	"github.com/arloliu/ziso/format"
)

func main() {
	app := &cli.App{
		Name:      "ziso",
		Usage:     "compress and decompress ZISO (ZSO) disc images",
		UsageText: "ziso [global options] FILE\n   ziso command [options] FILE",
		Flags:     append(codecFlags(), outputFlags()...),
		Action:    autoAction,
		Commands: []*cli.Command{
			{
				Name:      "compress",
				Aliases:   []string{"c"},
				Usage:     "compress an image into a container",
				ArgsUsage: "FILE",
				Flags:     append(codecFlags(), outputFlags()...),
				Action:    compressAction,
			},
			{
				Name:      "decompress",
				Aliases:   []string{"d"},
				Usage:     "decompress a container back into the image",
				ArgsUsage: "FILE",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Value: "lz4", Usage: "codec the container was written with"},
				}, outputFlags()...),
				Action: decompressAction,
			},
			{
				Name:      "info",
				Usage:     "print container metadata and block statistics",
				ArgsUsage: "FILE",
				Action:    infoAction,
			},
			{
				Name:      "verify",
				Usage:     "decode a container discarding the output to check integrity",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Value: "lz4", Usage: "codec the container was written with"},
					&cli.StringFlag{Name: "digest", Usage: "expected XXH64 image digest, hex"},
					&cli.StringFlag{Name: "reference", Usage: "raw image file to compare digests against"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress progress output"},
				},
				Action: verifyAction,
			},
			{
				Name:      "batch",
				Usage:     "process many files listed in a CSV manifest",
				ArgsUsage: "MANIFEST",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 1, Usage: "number of files processed concurrently"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "replace existing output files"},
					&cli.BoolFlag{Name: "keep", Aliases: []string{"k"}, Usage: "keep partial output files on failure"},
				},
				Action: batchAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ziso: %v\n", err)
		os.Exit(1)
	}
}

func codecFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Value: "lz4", Usage: "compression codec: lz4, lz4hc, zstd, s2 or none"},
		&cli.IntFlag{Name: "level", Aliases: []string{"c"}, Usage: "compression level, 1 (fastest) to 12 (smallest); 0 selects the codec default"},
		&cli.UintFlag{Name: "block-size", Aliases: []string{"b"}, Value: 2048, Usage: "uncompressed block size in bytes, at least 512"},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output path (default: input with swapped extension)"},
		&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "replace an existing output file"},
		&cli.BoolFlag{Name: "keep", Aliases: []string{"k"}, Usage: "keep the partial output file on failure"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress progress output"},
	}
}

func singleArg(ctx *cli.Context) (string, error) {
	if ctx.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one input file, got %d", ctx.Args().Len())
	}

	return ctx.Args().First(), nil
}

// autoAction dispatches bare invocations by sniffing the input for the
// container magic.
func autoAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return cli.ShowAppHelp(ctx)
	}

	in, err := singleArg(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	isContainer := ziso.Sniff(f)
	f.Close()

	if isContainer {
		return decompressAction(ctx)
	}

	return compressAction(ctx)
}

func compressAction(ctx *cli.Context) error {
	in, err := singleArg(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	isContainer := ziso.Sniff(f)
	f.Close()
	if isContainer {
		return fmt.Errorf("%s is already a container (use decompress)", in)
	}

	method, err := format.ParseCompressionType(ctx.String("method"))
	if err != nil {
		return err
	}

	out := ctx.String("output")
	if out == "" {
		out = replaceExt(in, ".zso")
	}
	if out == in {
		return fmt.Errorf("input and output are the same file: %s", in)
	}

	blockSize := ctx.Uint("block-size")
	opts := []container.EncoderOption{
		container.WithCompression(method),
		container.WithCompressionLevel(ctx.Int("level")),
		container.WithBlockSize(uint32(blockSize)), //nolint: gosec
	}

	return compressFile(in, out, ctx.Bool("force"), ctx.Bool("keep"), ctx.Bool("quiet"), opts...)
}

func compressFile(in, out string, force, keep, quiet bool, opts ...container.EncoderOption) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	srcInfo, err := src.Stat()
	if err != nil {
		return err
	}

	dst, err := createOutput(out, force)
	if err != nil {
		return err
	}

	if !quiet {
		opts = append(opts, container.WithProgress(newProgressPrinter("compress", true)))
	}

	enc, err := ziso.NewEncoder(dst, opts...)
	if err != nil {
		return discardOutput(dst, out, keep, err)
	}

	stats, err := enc.Encode(src, srcInfo.Size())
	if err != nil {
		return discardOutput(dst, out, keep, err)
	}
	if !quiet {
		finishProgressLine()
	}

	if err := dst.Close(); err != nil {
		return discardOutput(nil, out, keep, err)
	}

	fmt.Printf("%s: %d blocks (%d raw), %d -> %d bytes, %.1f%% saved\n",
		out, stats.BlocksTotal, stats.BlocksRaw, stats.ImageBytes, stats.ContainerBytes, stats.SpaceSavings())

	return nil
}

func decompressAction(ctx *cli.Context) error {
	in, err := singleArg(ctx)
	if err != nil {
		return err
	}

	method, err := format.ParseCompressionType(ctx.String("method"))
	if err != nil {
		return err
	}

	out := ctx.String("output")
	if out == "" {
		out = replaceExt(in, ".iso")
	}
	if out == in {
		return fmt.Errorf("input and output are the same file: %s", in)
	}

	opts := []container.DecoderOption{container.WithDecoderCompression(method)}

	return decompressFile(in, out, ctx.Bool("force"), ctx.Bool("keep"), ctx.Bool("quiet"), opts...)
}

func decompressFile(in, out string, force, keep, quiet bool, opts ...container.DecoderOption) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := createOutput(out, force)
	if err != nil {
		return err
	}

	if !quiet {
		opts = append(opts, container.WithDecoderProgress(newProgressPrinter("decompress", false)))
	}

	dec, err := ziso.NewDecoder(src, opts...)
	if err != nil {
		return discardOutput(dst, out, keep, err)
	}

	stats, err := dec.Decode(dst)
	if err != nil {
		return discardOutput(dst, out, keep, err)
	}
	if !quiet {
		finishProgressLine()
	}

	if err := dst.Close(); err != nil {
		return discardOutput(nil, out, keep, err)
	}

	fmt.Printf("%s: %d blocks (%d raw), %d bytes, xxh64 %016x\n",
		out, stats.BlocksTotal, stats.BlocksRaw, stats.ImageBytes, stats.Checksum)

	return nil
}

func infoAction(ctx *cli.Context) error {
	in, err := singleArg(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	r, err := ziso.NewReader(f)
	if err != nil {
		return err
	}

	hdr := r.Header()
	rawBlocks := 0
	bm := r.RawBitmap()
	for i := 0; i < int(r.NumBlocks()); i++ {
		if bm.Get(i) {
			rawBlocks++
		}
	}

	fmt.Printf("file:            %s\n", in)
	fmt.Printf("container size:  %d bytes\n", fi.Size())
	fmt.Printf("image size:      %d bytes\n", hdr.UncompressedSize)
	fmt.Printf("block size:      %d bytes\n", hdr.BlockSize)
	fmt.Printf("address shift:   %d (%d byte alignment)\n", hdr.Shift, 1<<hdr.Shift)
	fmt.Printf("blocks:          %d (%d stored raw)\n", r.NumBlocks(), rawBlocks)
	if hdr.UncompressedSize > 0 {
		fmt.Printf("ratio:           %.1f%%\n", float64(fi.Size())/float64(hdr.UncompressedSize)*100)
	}

	return nil
}

func verifyAction(ctx *cli.Context) error {
	in, err := singleArg(ctx)
	if err != nil {
		return err
	}

	method, err := format.ParseCompressionType(ctx.String("method"))
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := []container.DecoderOption{container.WithDecoderCompression(method)}
	if !ctx.Bool("quiet") {
		opts = append(opts, container.WithDecoderProgress(newProgressPrinter("verify", false)))
	}

	dec, err := ziso.NewDecoder(f, opts...)
	if err != nil {
		return err
	}

	stats, err := dec.Decode(io.Discard)
	if err != nil {
		return fmt.Errorf("%s is corrupt: %w", in, err)
	}
	if !ctx.Bool("quiet") {
		finishProgressLine()
	}

	if want := ctx.String("digest"); want != "" {
		expected, err := strconv.ParseUint(strings.TrimPrefix(want, "0x"), 16, 64)
		if err != nil {
			return fmt.Errorf("invalid digest %q: %w", want, err)
		}
		if stats.Checksum != expected {
			return fmt.Errorf("digest mismatch: got %016x, want %016x", stats.Checksum, expected)
		}
	}

	if ref := ctx.String("reference"); ref != "" {
		expected, err := fileDigest(ref)
		if err != nil {
			return err
		}
		if stats.Checksum != expected {
			return fmt.Errorf("digest mismatch against %s: got %016x, want %016x", ref, stats.Checksum, expected)
		}
	}

	fmt.Printf("%s: OK, %d blocks, %d bytes, xxh64 %016x\n", in, stats.BlocksTotal, stats.ImageBytes, stats.Checksum)

	return nil
}

// fileDigest computes the XXH64 digest of a file's contents.
func fileDigest(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, err
	}

	return digest.Sum64(), nil
}

// createOutput creates the output file, refusing to replace an existing one
// unless forced.
func createOutput(path string, force bool) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("cowardly refusing to replace %s (use --force)", path)
	}

	return f, err
}

// discardOutput closes and deletes a partial output file unless the user
// asked to keep it, funneling cleanup failures in with the original error.
func discardOutput(f *os.File, path string, keep bool, err error) error {
	if f != nil {
		if cerr := f.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}
	if !keep {
		if rerr := os.Remove(path); rerr != nil {
			err = multierror.Append(err, rerr)
		}
	}

	return err
}

// replaceExt swaps the file extension, appending when there is none.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
