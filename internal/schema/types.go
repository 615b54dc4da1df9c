package schema

import (
	"encoding/base64"
	"fmt"
)

// Content kind tags for FileContent.
const (
	ContentText   = "text"
	ContentBinary = "binary"
)

// FileContent is the tagged union carrying file data across the wire.
// Binary payloads are always base64-encoded strings; raw bytes never travel
// as a native binary frame in either direction.
type FileContent struct {
	Type string `json:"type" mapstructure:"type"`
	Data string `json:"data" mapstructure:"data"`
}

func TextContent(s string) FileContent {
	return FileContent{Type: ContentText, Data: s}
}

func BinaryContent(b []byte) FileContent {
	return FileContent{Type: ContentBinary, Data: base64.StdEncoding.EncodeToString(b)}
}

// Bytes decodes the content to the exact original byte sequence.
func (c FileContent) Bytes() ([]byte, error) {
	switch c.Type {
	case ContentText:
		return []byte(c.Data), nil
	case ContentBinary:
		decoded, err := base64.StdEncoding.DecodeString(c.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 in binary content: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", c.Type)
	}
}

// DirEntry is a directory entry enriched with type predicates. The predicates
// describe the entry itself: a symlink reports isSymbolicLink without
// following the target.
type DirEntry struct {
	Name           string `json:"name"`
	IsFile         bool   `json:"isFile"`
	IsDirectory    bool   `json:"isDirectory"`
	IsSymbolicLink bool   `json:"isSymbolicLink"`
}

// Stat is the fixed-shape numeric metadata record. Every timestamp is carried
// twice: millisecond epoch and ISO-8601 string, agreeing to the millisecond.
type Stat struct {
	Dev     uint64 `json:"dev"`
	Ino     uint64 `json:"ino"`
	Mode    uint32 `json:"mode"`
	Nlink   uint64 `json:"nlink"`
	UID     uint32 `json:"uid"`
	GID     uint32 `json:"gid"`
	Rdev    uint64 `json:"rdev"`
	Size    int64  `json:"size"`
	Blksize int64  `json:"blksize"`
	Blocks  int64  `json:"blocks"`

	AtimeMs     int64 `json:"atimeMs"`
	MtimeMs     int64 `json:"mtimeMs"`
	CtimeMs     int64 `json:"ctimeMs"`
	BirthtimeMs int64 `json:"birthtimeMs"`

	Atime     string `json:"atime"`
	Mtime     string `json:"mtime"`
	Ctime     string `json:"ctime"`
	Birthtime string `json:"birthtime"`

	IsFile         bool `json:"isFile"`
	IsDirectory    bool `json:"isDirectory"`
	IsSymbolicLink bool `json:"isSymbolicLink"`
}

// ProcessResult is the terminal state of one spawned or exec'd process.
// ExitCode is nil only when the process was killed by a signal; Success is
// true exactly when ExitCode is 0.
type ProcessResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exitCode"`
	Success  bool   `json:"success"`
}

// ErrorEnvelope is the sole wire-level error shape.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// SuccessResult acknowledges a completed mutation with no other payload.
type SuccessResult struct {
	Success bool `json:"success"`
}

// MkdirResult reports the first directory the call created; Path is empty
// when a recursive mkdir found everything already in place.
type MkdirResult struct {
	Path string `json:"path,omitempty"`
}
