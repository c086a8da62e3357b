package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/arloliu/ziso"
	"github.com/arloliu/ziso/container"
	"github.com/arloliu/ziso/format"
)

// batchJob is one manifest row. Blank fields fall back to the same defaults
// the single-file commands use.
type batchJob struct {
	Input     string `csv:"input"`
	Output    string `csv:"output"`
	Method    string `csv:"method"`
	Level     int    `csv:"level"`
	BlockSize uint32 `csv:"block_size"`
}

func batchAction(ctx *cli.Context) error {
	manifest, err := singleArg(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(manifest)
	if err != nil {
		return err
	}
	defer f.Close()

	var jobs []*batchJob
	if err := gocsv.UnmarshalFile(f, &jobs); err != nil {
		return fmt.Errorf("parse manifest %s: %w", manifest, err)
	}

	workers := ctx.Int("parallel")
	if workers < 1 {
		workers = 1
	}
	force := ctx.Bool("force")
	keep := ctx.Bool("keep")

	jobCh := make(chan *batchJob)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var result error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := runBatchJob(job, force, keep); err != nil {
					mu.Lock()
					result = multierror.Append(result, fmt.Errorf("%s: %w", job.Input, err))
					mu.Unlock()
				}
			}
		}()
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	return result
}

// runBatchJob processes one manifest row, picking the direction by sniffing
// the input. Progress is suppressed because jobs may run interleaved.
func runBatchJob(job *batchJob, force, keep bool) error {
	method := job.Method
	if method == "" {
		method = "lz4"
	}

	typ, err := format.ParseCompressionType(method)
	if err != nil {
		return err
	}

	f, err := os.Open(job.Input)
	if err != nil {
		return err
	}
	isContainer := ziso.Sniff(f)
	f.Close()

	out := job.Output
	if isContainer {
		if out == "" {
			out = replaceExt(job.Input, ".iso")
		}

		return decompressFile(job.Input, out, force, keep, true,
			container.WithDecoderCompression(typ))
	}

	if out == "" {
		out = replaceExt(job.Input, ".zso")
	}

	opts := []container.EncoderOption{
		container.WithCompression(typ),
		container.WithCompressionLevel(job.Level),
	}
	if job.BlockSize > 0 {
		opts = append(opts, container.WithBlockSize(job.BlockSize))
	}

	return compressFile(job.Input, out, force, keep, true, opts...)
}
