package fs_service

import (
	"context"

	"github.com/supervise-dev/bridge/internal/schema"
)

// FSService is the filesystem operation set. Paths are opaque strings
// interpreted by the host OS; the service performs no normalization or
// confinement. OS errors propagate to the caller unmodified except where an
// option explicitly requests suppression.
type FSService interface {
	// Exists reports whether path names anything. It never fails: any access
	// error resolves to false (lenient compatibility contract).
	Exists(ctx context.Context, path string) bool

	// Mkdir creates a directory. Without recursive it fails when intermediate
	// segments are missing; with recursive it is idempotent and reports the
	// first directory actually created.
	Mkdir(ctx context.Context, path string, opts schema.MkdirOptions) (schema.MkdirResult, error)

	// ReadDir lists a directory in OS-native order. The encoding option is
	// validated for compatibility but has no effect: names are always UTF-8.
	ReadDir(ctx context.Context, path string, opts schema.ReadDirOptions) ([]schema.DirEntry, error)

	// ReadFile reads a whole file. Without an encoding the result is tagged
	// binary (base64); with one it is tagged text in that encoding. The flag
	// option is validated for compatibility but has no effect on a whole-file
	// read.
	ReadFile(ctx context.Context, path string, opts schema.ReadFileOptions) (schema.FileContent, error)

	// WriteFile writes content to a file, truncating by default. Binary
	// content is decoded to the exact original bytes before writing.
	WriteFile(ctx context.Context, path string, data schema.FileContent, opts schema.WriteFileOptions) error

	// Stat returns the full metadata record. A missing path always raises
	// NotFound regardless of caller options.
	Stat(ctx context.Context, path string, opts schema.StatOptions) (schema.Stat, error)

	// FileSize returns stat(path).size.
	FileSize(ctx context.Context, path string) (int64, error)

	// Delete removes a path. recursive removes directories with contents;
	// force suppresses not-found errors.
	Delete(ctx context.Context, path string, opts schema.DeleteOptions) error

	// Rename moves a file or directory.
	Rename(ctx context.Context, oldPath, newPath string) error
}
