package goder

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// outputBufferSize is the per-file write buffer. JSONL output is
// typically several times larger than the DER input, so a generous
// buffer keeps syscalls rare.
const outputBufferSize = 4 << 20

// FileResult reports the outcome of decoding one input file.
type FileResult struct {
	Path    string // input file
	Output  string // output file, empty when decoding never started
	Records int
	Err     error
}

// Run decodes every file from source into outputDir, which is created
// if absent. Files are processed in parallel, bounded by the
// configured concurrency; within one file records stay in input
// order. Output files are named <input-file-name>.jsonl.
//
// Per-file failures land in the returned results, not in the error;
// the error covers setup problems (listing inputs, creating the
// output directory) and context cancellation. Results are sorted by
// input path.
func (d *Decoder) Run(ctx context.Context, source Source, outputDir string) ([]FileResult, error) {
	if source == nil {
		return nil, ErrNoSources
	}

	files, err := source.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("list input files: %w", err)
	}
	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, ErrNoInputs
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logger := componentLogger(d.cfg.logger, "run")
	if logger != nil {
		logger.LogAttrs(ctx, slog.LevelInfo, "parallel decoding",
			slog.Int("files", len(files)),
			slog.Int("concurrency", d.cfg.concurrency))
	}

	results := make(chan FileResult, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.cfg.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			results <- d.decodeFile(path, outputDir)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []FileResult
	for r := range results {
		out = append(out, r)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slices.SortFunc(out, func(a, b FileResult) int {
		return strings.Compare(a.Path, b.Path)
	})

	if logger != nil {
		total := 0
		for _, r := range out {
			total += r.Records
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "decoding complete",
			slog.Int("files", len(out)),
			slog.Int("records", total))
	}

	return out, nil
}

// decodeFile decodes one input file into outputDir. An empty input
// still produces a (zero-byte) output file.
func (d *Decoder) decodeFile(inPath, outputDir string) FileResult {
	res := FileResult{Path: inPath}

	data, err := readInput(inPath)
	if err != nil {
		res.Err = err
		return res
	}

	res.Output = filepath.Join(outputDir, filepath.Base(inPath)+".jsonl")
	out, err := os.Create(res.Output)
	if err != nil {
		res.Err = fmt.Errorf("create output file: %w", err)
		return res
	}

	w := bufio.NewWriterSize(out, outputBufferSize)
	n, err := d.DecodeStream(data, w)
	res.Records = n
	if err == nil {
		err = w.Flush()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		res.Err = fmt.Errorf("write output: %w", err)
	}
	return res
}

// readInput loads an input file, transparently decompressing gzip
// members when the file carries a .gz extension.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".gz") {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip input %s: %w", path, err)
		}
		defer zr.Close()
		plain, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip input %s: %w", path, err)
		}
		return plain, nil
	}

	return data, nil
}

func isAutoRoot(rootType string) bool {
	return rootType == "" || strings.EqualFold(rootType, "auto")
}
