// Package loader reads configuration sources into nested maps.
//
// Sources are TOML files and prefixed environment variables. Each loader
// produces a map[string]any keyed by section, which callers merge with
// DeepMerge in priority order.
package loader

import (
	"io/fs"
	"os"
)

// Loader is implemented by every configuration source.
type Loader interface {
	// Load reads the source. A missing source yields nil, nil.
	Load() (map[string]any, error)
}

// FileSystem is the file access a loader needs. Tests substitute
// fstest.MapFS through FSAdapter.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the host file system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FSAdapter exposes an fs.FS as a FileSystem.
type FSAdapter struct {
	FS fs.FS
}

// ReadFile implements FileSystem.
func (a FSAdapter) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(a.FS, path)
}

// DeepMerge merges src into dst and returns dst. Nested maps merge
// recursively; any other src value replaces the dst value.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, sv := range src {
		sm, srcIsMap := sv.(map[string]any)
		dm, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = DeepMerge(dm, sm)
			continue
		}
		if srcIsMap {
			dst[k] = Clone(sm)
			continue
		}
		dst[k] = sv
	}
	return dst
}

// Clone returns a deep copy of m.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return Clone(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
