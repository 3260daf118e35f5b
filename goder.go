// Package goder converts files of concatenated ASN.1 DER records into
// JSON Lines, driven by an ASN.1 text schema. Leaf values are emitted
// as lowercase hex strings of the raw content octets; primitives are
// never interpreted.
package goder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/golangsnmp/goder/internal/emit"
	"github.com/golangsnmp/goder/schema"
)

// ErrNoSources is returned when Run is called with a nil source.
var ErrNoSources = errors.New("no input sources provided")

// ErrNoInputs is returned when a source yields no input files.
var ErrNoInputs = errors.New("no input files found")

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-record iteration logging.
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// Option configures New and NewFromFile.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	rootType    string
	concurrency int
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithRootType sets the schema type each record is decoded as.
// "auto" (any case) or the empty string enables automatic record
// classification. The default is auto.
func WithRootType(name string) Option {
	return func(c *config) { c.rootType = name }
}

// WithConcurrency bounds the number of files decoded in parallel by
// Run. Values below 1 fall back to runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", component))
}

// Decoder converts DER record streams to JSON Lines. It is immutable
// after construction and safe for concurrent use across files.
type Decoder struct {
	dict *schema.Dictionary
	emit *emit.Decoder
	cfg  config
}

// New parses ASN.1 schema text and builds a Decoder.
//
// Example:
//
//	dec, err := goder.New(schemaText,
//	    goder.WithRootType("CallEventRecord"),
//	    goder.WithLogger(slog.Default()),
//	)
func New(schemaText []byte, opts ...Option) (*Decoder, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = runtime.NumCPU()
	}

	dict, err := schema.Parse(schemaText, componentLogger(cfg.logger, "extract"))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	return &Decoder{
		dict: dict,
		emit: emit.New(dict, componentLogger(cfg.logger, "emit")),
		cfg:  cfg,
	}, nil
}

// NewFromFile reads the schema file at path and builds a Decoder.
func NewFromFile(path string, opts ...Option) (*Decoder, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", path, err)
	}
	return New(text, opts...)
}

// Dictionary returns the parsed type dictionary.
func (d *Decoder) Dictionary() *schema.Dictionary {
	return d.dict
}

// RootType returns the configured root type name ("" means auto).
func (d *Decoder) RootType() string {
	return d.cfg.rootType
}

// KnowsRootType reports whether the configured root type is usable:
// either auto mode or a type present in the dictionary.
func (d *Decoder) KnowsRootType() bool {
	if isAutoRoot(d.cfg.rootType) {
		return true
	}
	return d.dict.Knows(d.cfg.rootType)
}

// DecodeStream decodes concatenated DER records from data into w, one
// JSON line per record, and returns the number of records written.
// Safe to call concurrently with distinct w.
func (d *Decoder) DecodeStream(data []byte, w io.Writer) (int, error) {
	return d.emit.NewStream(w).DecodeAll(data, d.cfg.rootType)
}
