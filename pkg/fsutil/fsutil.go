// Package fsutil reads Markdown sources and writes rendered output.
// Reads return a Stamp so callers can tell whether a file really changed; writes go
// through a temp file and rename so a browser or server never sees a half-written page.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
)

// Stamp identifies one version of a file's content.
type Stamp struct {
	Path    string
	ModTime time.Time
	Size    int64
	Hash    [32]byte
}

// Matches reports whether content hashes to the stamp.
func (s Stamp) Matches(content []byte) bool {
	return sha256.Sum256(content) == s.Hash
}

// IsZero reports whether the stamp was never set.
func (s Stamp) IsZero() bool {
	return s.Path == "" && s.Size == 0 && s.ModTime.IsZero()
}

// ReadFile reads a regular file and stamps its content.
func ReadFile(ctx context.Context, path string) ([]byte, Stamp, error) {
	if err := ctx.Err(); err != nil {
		return nil, Stamp{}, fmt.Errorf("read file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, Stamp{}, classify(path, err)
	}
	if stat.IsDir() {
		return nil, Stamp{}, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, Stamp{}, classify(path, err)
	}

	return content, Stamp{
		Path:    path,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

// Changed reports whether the file's modification time or size differ from prev.
// A deleted file counts as changed. Content is not read, so an edit that keeps both
// the same goes unnoticed; callers that need certainty compare with Stamp.Matches.
func Changed(ctx context.Context, prev Stamp) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check changed: %w", err)
	}

	stat, err := os.Stat(prev.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", prev.Path, err)
	}

	return !stat.ModTime().Equal(prev.ModTime) || stat.Size() != prev.Size, nil
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Mode().IsRegular()
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}
