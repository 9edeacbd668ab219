package declari

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Inflector maps template names to file paths.
type Inflector interface {
	SourcePath(name string) (string, error)
	// CompiledPath returns the artifact path of name. inheritance lists
	// the templates the artifact was assembled from.
	CompiledPath(name string, inheritance []string) (string, error)
}

// StandardInflector resolves "stream:path" names against a set of
// named directories. Names without a stream use the default one.
type StandardInflector struct {
	streams            map[string]string
	compileDir         string
	allowRelativePaths bool
}

var _ Inflector = (*StandardInflector)(nil)

func NewStandardInflector(sourceDir, compileDir string) *StandardInflector {
	return &StandardInflector{
		streams:    map[string]string{DefaultStream: sourceDir},
		compileDir: compileDir,
	}
}

// NewInflectorFromConfig builds a StandardInflector with every stream
// listed in cfg.
func NewInflectorFromConfig(cfg *Config) (*StandardInflector, error) {
	inf := NewStandardInflector(cfg.SourceDir, cfg.CompileDir)
	inf.SetAllowRelativePaths(cfg.AllowRelativePaths)
	for name, dir := range cfg.Streams {
		if err := inf.AddStream(name, dir); err != nil {
			return nil, err
		}
	}
	return inf, nil
}

func (i *StandardInflector) SetAllowRelativePaths(v bool) {
	i.allowRelativePaths = v
}

func (i *StandardInflector) AllowRelativePaths() bool {
	return i.allowRelativePaths
}

func (i *StandardInflector) CompileDir() string {
	return i.compileDir
}

func (i *StandardInflector) AddStream(name, dir string) error {
	if _, ok := i.streams[name]; ok {
		return fmt.Errorf("the stream name '%s' is already in use: %w", name, ErrInvalidConfig)
	}
	i.streams[name] = dir
	return nil
}

func (i *StandardInflector) HasStream(name string) bool {
	_, ok := i.streams[name]
	return ok
}

func (i *StandardInflector) Stream(name string) (string, error) {
	dir, ok := i.streams[name]
	if !ok {
		return "", fmt.Errorf("stream '%s': %w", name, ErrUnknownStream)
	}
	return dir, nil
}

func (i *StandardInflector) RemoveStream(name string) error {
	if _, ok := i.streams[name]; !ok {
		return fmt.Errorf("stream '%s': %w", name, ErrUnknownStream)
	}
	delete(i.streams, name)
	return nil
}

func (i *StandardInflector) SourcePath(name string) (string, error) {
	stream, path := DefaultStream, name
	if s, p, ok := strings.Cut(name, ":"); ok {
		stream, path = s, p
	}
	dir, ok := i.streams[stream]
	if !ok {
		return "", fmt.Errorf("cannot load '%s': stream '%s': %w", path, stream, ErrUnknownStream)
	}
	if !i.allowRelativePaths && isRelative(path) {
		return "", fmt.Errorf("cannot load '%s': %w", path, ErrRelativePath)
	}
	return filepath.Join(dir, filepath.FromSlash(path)), nil
}

func isRelative(path string) bool {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// CompiledPath flattens each name into a single path segment. The
// inheritance list is sorted so that the same set of templates always
// maps to the same directory.
func (i *StandardInflector) CompiledPath(name string, inheritance []string) (string, error) {
	list := slices.Clone(inheritance)
	slices.Sort(list)
	parts := make([]string, 0, len(list)+2)
	parts = append(parts, i.compileDir)
	for _, item := range list {
		parts = append(parts, flattenName(item))
	}
	parts = append(parts, flattenName(name)+".php")
	return filepath.Join(parts...), nil
}

var nameFlattener = strings.NewReplacer("/", "_", ":", "_", "\\", "_")

func flattenName(name string) string {
	return nameFlattener.Replace(name)
}
