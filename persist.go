package declari

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

const (
	dependencyMarker = "declari:dependencies "
	// DynamicSuffix is appended to the artifact path to form the path
	// of the dynamic block file.
	DynamicSuffix = ".dyn"
	lz4Magic      = "DLZ4"
	// an LZ4 block never decompresses to more than this many times its
	// own size
	maxLZ4Ratio = 255
)

// Artifact is the result of linking a compilation unit.
type Artifact struct {
	// Template is the name of the compiled template
	Template string
	// Path is where the artifact is written
	Path          string
	Output        string
	Dependencies  []string
	DynamicBlocks []string
}

// Content returns the artifact text with the dependency header.
func (a *Artifact) Content() string {
	if len(a.Dependencies) == 0 {
		return a.Output
	}
	deps, _ := json.Marshal(a.Dependencies)
	var sb strings.Builder
	sb.WriteString("<?php /* ")
	sb.WriteString(dependencyMarker)
	sb.Write(deps)
	sb.WriteString(" */ ?>")
	sb.WriteString(a.Output)
	return sb.String()
}

// ReadDependencies extracts the dependency list from the header of an
// artifact written by WriteArtifact.
func ReadDependencies(content []byte) ([]string, error) {
	prefix := []byte("<?php /* " + dependencyMarker)
	if !bytes.HasPrefix(content, prefix) {
		return nil, nil
	}
	rest := content[len(prefix):]
	end := bytes.Index(rest, []byte(" */ ?>"))
	if end < 0 {
		return nil, fmt.Errorf("unterminated dependency header")
	}
	var deps []string
	if err := json.Unmarshal(rest[:end], &deps); err != nil {
		return nil, fmt.Errorf("invalid dependency header: %w", err)
	}
	return deps, nil
}

// WriteArtifact writes the artifact and, when it has dynamic blocks,
// the dynamic block file next to it. Both files are written through a
// temporary file and renamed, so readers never see a partial artifact.
func WriteArtifact(a *Artifact, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
		return fmt.Errorf("cannot create the directory for '%s': %w", a.Path, err)
	}

	dynPath := a.Path + DynamicSuffix
	if len(a.DynamicBlocks) > 0 {
		data, err := EncodeDynamicBlocks(a.DynamicBlocks, compress)
		if err != nil {
			return err
		}
		if err := writeFileAtomic(dynPath, data); err != nil {
			return err
		}
	} else if err := os.Remove(dynPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot remove stale '%s': %w", dynPath, err)
	}

	return writeFileAtomic(a.Path, []byte(a.Content()))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot write '%s': %w", path, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("cannot write '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("cannot write '%s': %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("cannot write '%s': %w", path, err)
	}
	return nil
}

// EncodeDynamicBlocks serializes dynamic blocks as a JSON array,
// optionally compressed as an LZ4 block.
func EncodeDynamicBlocks(blocks []string, compress bool) ([]byte, error) {
	data, err := json.Marshal(blocks)
	if err != nil {
		return nil, fmt.Errorf("cannot encode dynamic blocks: %w", err)
	}
	if !compress {
		return data, nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot compress dynamic blocks: %w", err)
	}
	if written == 0 {
		// incompressible
		return data, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(lz4Magic) + 4 + written)
	buf.WriteString(lz4Magic)
	buf.Write(binary.BigEndian.AppendUint32(nil, uint32(len(data))))
	buf.Write(compressed[:written])
	return buf.Bytes(), nil
}

// DecodeDynamicBlocks reverses EncodeDynamicBlocks.
func DecodeDynamicBlocks(data []byte) ([]string, error) {
	if bytes.HasPrefix(data, []byte(lz4Magic)) {
		rest := data[len(lz4Magic):]
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: truncated dynamic block file", ErrCorruptArtifact)
		}
		size := uint64(binary.BigEndian.Uint32(rest))
		block := rest[4:]
		if size > uint64(len(block))*maxLZ4Ratio {
			return nil, fmt.Errorf("%w: %d compressed bytes cannot hold %d bytes of dynamic blocks", ErrCorruptArtifact, len(block), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(block, out)
		if err != nil {
			return nil, fmt.Errorf("cannot decompress dynamic blocks: %w", err)
		}
		data = out[:n]
	}
	var blocks []string
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("cannot decode dynamic blocks: %w", err)
	}
	return blocks, nil
}
