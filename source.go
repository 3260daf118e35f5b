package goder

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Source enumerates DER input files.
type Source interface {
	// ListFiles returns the input file paths known to this source.
	ListFiles() ([]string, error)
}

// SourceOption configures a source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions map[string]struct{} // normalized, nil means all files
}

// WithExtensions restricts a source to files with the given
// extensions. Values are normalized by trimming whitespace, stripping
// a leading dot, and lowercasing; empty values are dropped.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		set := make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			if norm := NormalizeExtension(ext); norm != "" {
				set[norm] = struct{}{}
			}
		}
		if len(set) > 0 {
			c.extensions = set
		}
	}
}

// NormalizeExtension trims whitespace, strips one leading dot, and
// lowercases an extension filter value.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// SplitExtensions parses a comma-separated extension filter into
// normalized values, dropping empties.
func SplitExtensions(csv string) []string {
	var exts []string
	for _, part := range strings.Split(csv, ",") {
		if norm := NormalizeExtension(part); norm != "" {
			exts = append(exts, norm)
		}
	}
	return exts
}

func (c *sourceConfig) includes(path string) bool {
	if c.extensions == nil {
		return true
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	_, ok := c.extensions[strings.ToLower(ext[1:])]
	return ok
}

// --- Files Source (explicit paths) ---

type filesSource struct {
	paths []string
}

// Files creates a Source over explicit file paths. Extension filters
// do not apply; a named file is always included.
func Files(paths ...string) Source {
	return &filesSource{paths: slices.Clone(paths)}
}

func (s *filesSource) ListFiles() ([]string, error) {
	return slices.Clone(s.paths), nil
}

// --- Dir Source (single directory) ---

type dirSource struct {
	path   string
	config sourceConfig
}

// Dir creates a Source over the files of a single directory (no
// recursion).
func Dir(path string, opts ...SourceOption) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	var cfg sourceConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &dirSource{path: path, config: cfg}, nil
}

func (s *dirSource) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.path, entry.Name())
		if s.config.includes(path) {
			files = append(files, path)
		}
	}
	return files, nil
}

// --- DirTree Source (recursive directory) ---

type treeSource struct {
	root   string
	config sourceConfig
}

// DirTree creates a Source that walks a directory tree recursively.
// Symbolic links are not followed.
func DirTree(root string, opts ...SourceOption) (Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: root, Err: os.ErrInvalid}
	}
	var cfg sourceConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &treeSource{root: root, config: cfg}, nil
}

func (s *treeSource) ListFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if s.config.includes(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
}

// Multi combines multiple sources into one.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) ListFiles() ([]string, error) {
	var files []string
	for _, src := range s.sources {
		f, err := src.ListFiles()
		if err != nil {
			return nil, err
		}
		files = append(files, f...)
	}
	return files, nil
}

// Paths builds a Source from mixed file and directory paths the way
// the CLI accepts them: files are taken as-is, directories are walked
// recursively with the extension filter applied.
func Paths(paths []string, opts ...SourceOption) (Source, error) {
	var sources []Source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			src, err := DirTree(p, opts...)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		} else {
			sources = append(sources, Files(p))
		}
	}
	return Multi(sources...), nil
}
