package fs_service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/schema"
)

func newTestService() *LocalFSService {
	return NewLocalFSService(log_service.NewNopLogService())
}

func TestLocalFSService_Exists(t *testing.T) {
	svc := newTestService()
	dir := t.TempDir()

	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file", path: file, want: true},
		{name: "existing directory", path: dir, want: true},
		{name: "missing path", path: filepath.Join(dir, "absent"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Exists(context.Background(), tt.path); got != tt.want {
				t.Errorf("Exists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocalFSService_Mkdir(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(dir string) string
		opts      schema.MkdirOptions
		wantPath  func(dir, path string) string
		wantErrIs error
	}{
		{
			name:     "plain mkdir returns the path",
			setup:    func(dir string) string { return filepath.Join(dir, "a") },
			opts:     schema.MkdirOptions{},
			wantPath: func(dir, path string) string { return path },
		},
		{
			name:      "plain mkdir fails without parent",
			setup:     func(dir string) string { return filepath.Join(dir, "a", "b") },
			opts:      schema.MkdirOptions{},
			wantErrIs: fs.ErrNotExist,
		},
		{
			name:  "recursive mkdir reports first created segment",
			setup: func(dir string) string { return filepath.Join(dir, "a", "b", "c") },
			opts:  schema.MkdirOptions{Recursive: true},
			wantPath: func(dir, path string) string {
				return filepath.Join(dir, "a")
			},
		},
		{
			name: "recursive mkdir on existing dir reports nothing created",
			setup: func(dir string) string {
				path := filepath.Join(dir, "a")
				if err := os.Mkdir(path, 0755); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return path
			},
			opts:     schema.MkdirOptions{Recursive: true},
			wantPath: func(dir, path string) string { return "" },
		},
		{
			name: "plain mkdir on existing dir fails",
			setup: func(dir string) string {
				path := filepath.Join(dir, "a")
				if err := os.Mkdir(path, 0755); err != nil {
					t.Fatalf("setup: %v", err)
				}
				return path
			},
			opts:      schema.MkdirOptions{},
			wantErrIs: fs.ErrExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			dir := t.TempDir()
			path := tt.setup(dir)

			result, err := svc.Mkdir(context.Background(), path, tt.opts)

			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("Mkdir() error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Mkdir() error = %v", err)
			}
			if want := tt.wantPath(dir, path); result.Path != want {
				t.Errorf("Mkdir() created = %q, want %q", result.Path, want)
			}
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				t.Errorf("Mkdir() did not create directory at %s", path)
			}
		})
	}
}

func TestLocalFSService_ReadDir(t *testing.T) {
	svc := newTestService()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "file.txt"), filepath.Join(dir, "link")); err != nil {
		t.Fatalf("setup: %v", err)
	}

	entries, err := svc.ReadDir(context.Background(), dir, schema.ReadDirOptions{})
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	byName := map[string]schema.DirEntry{}
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	if entry := byName["file.txt"]; !entry.IsFile || entry.IsDirectory || entry.IsSymbolicLink {
		t.Errorf("file.txt predicates = %+v, want file", entry)
	}
	if entry := byName["sub"]; !entry.IsDirectory || entry.IsFile {
		t.Errorf("sub predicates = %+v, want directory", entry)
	}
	// Symlinks report themselves, not their target.
	if entry := byName["link"]; !entry.IsSymbolicLink || entry.IsFile {
		t.Errorf("link predicates = %+v, want symlink", entry)
	}

	if _, err := svc.ReadDir(context.Background(), filepath.Join(dir, "absent"), schema.ReadDirOptions{}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadDir() on missing dir error = %v, want ErrNotExist", err)
	}
}

func TestLocalFSService_ReadFile(t *testing.T) {
	raw := []byte{0x00, 0x68, 0x69, 0xFF}

	tests := []struct {
		name     string
		encoding string
		wantType string
		wantData string
	}{
		{
			name:     "no encoding returns binary content",
			encoding: "",
			wantType: schema.ContentBinary,
			wantData: base64.StdEncoding.EncodeToString(raw),
		},
		{
			name:     "base64 encoding returns text",
			encoding: "base64",
			wantType: schema.ContentText,
			wantData: base64.StdEncoding.EncodeToString(raw),
		},
		{
			name:     "hex encoding returns text",
			encoding: "hex",
			wantType: schema.ContentText,
			wantData: hex.EncodeToString(raw),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			path := filepath.Join(t.TempDir(), "data.bin")
			if err := os.WriteFile(path, raw, 0644); err != nil {
				t.Fatalf("setup: %v", err)
			}

			content, err := svc.ReadFile(context.Background(), path, schema.ReadFileOptions{Encoding: tt.encoding})
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if content.Type != tt.wantType {
				t.Errorf("ReadFile() type = %q, want %q", content.Type, tt.wantType)
			}
			if content.Data != tt.wantData {
				t.Errorf("ReadFile() data = %q, want %q", content.Data, tt.wantData)
			}
		})
	}

	t.Run("utf8 round trips text", func(t *testing.T) {
		svc := newTestService()
		path := filepath.Join(t.TempDir(), "text.txt")
		if err := os.WriteFile(path, []byte("héllo"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		content, err := svc.ReadFile(context.Background(), path, schema.ReadFileOptions{Encoding: "utf8"})
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if content.Data != "héllo" {
			t.Errorf("ReadFile() data = %q, want %q", content.Data, "héllo")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.ReadFile(context.Background(), filepath.Join(t.TempDir(), "absent"), schema.ReadFileOptions{})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile() error = %v, want ErrNotExist", err)
		}
	})

	t.Run("unsupported encoding", func(t *testing.T) {
		svc := newTestService()
		path := filepath.Join(t.TempDir(), "x")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, err := svc.ReadFile(context.Background(), path, schema.ReadFileOptions{Encoding: "latin1"})
		if !errors.Is(err, ErrUnsupportedEncoding) {
			t.Errorf("ReadFile() error = %v, want ErrUnsupportedEncoding", err)
		}
	})
}

func TestLocalFSService_WriteFile(t *testing.T) {
	raw := []byte{0x01, 0x02, 0xFE}

	tests := []struct {
		name string
		data schema.FileContent
		opts schema.WriteFileOptions
		want []byte
	}{
		{
			name: "text content verbatim",
			data: schema.TextContent("hello"),
			want: []byte("hello"),
		},
		{
			name: "binary content decodes base64",
			data: schema.BinaryContent(raw),
			want: raw,
		},
		{
			name: "text content with base64 encoding",
			data: schema.TextContent(base64.StdEncoding.EncodeToString(raw)),
			opts: schema.WriteFileOptions{Encoding: "base64"},
			want: raw,
		},
		{
			name: "text content with hex encoding",
			data: schema.TextContent(hex.EncodeToString(raw)),
			opts: schema.WriteFileOptions{Encoding: "hex"},
			want: raw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			path := filepath.Join(t.TempDir(), "out")

			if err := svc.WriteFile(context.Background(), path, tt.data, tt.opts); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("WriteFile() wrote %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("append flag appends", func(t *testing.T) {
		svc := newTestService()
		path := filepath.Join(t.TempDir(), "log.txt")
		if err := svc.WriteFile(context.Background(), path, schema.TextContent("one"), schema.WriteFileOptions{}); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := svc.WriteFile(context.Background(), path, schema.TextContent("two"), schema.WriteFileOptions{Flag: "a"}); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "onetwo" {
			t.Errorf("append wrote %q, want %q", got, "onetwo")
		}
	})

	t.Run("exclusive flag fails on existing file", func(t *testing.T) {
		svc := newTestService()
		path := filepath.Join(t.TempDir(), "once.txt")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		err := svc.WriteFile(context.Background(), path, schema.TextContent("y"), schema.WriteFileOptions{Flag: "wx"})
		if !errors.Is(err, fs.ErrExist) {
			t.Errorf("WriteFile() error = %v, want ErrExist", err)
		}
	})

	t.Run("unknown flag rejected", func(t *testing.T) {
		svc := newTestService()
		path := filepath.Join(t.TempDir(), "f")
		err := svc.WriteFile(context.Background(), path, schema.TextContent("x"), schema.WriteFileOptions{Flag: "rw"})
		if !errors.Is(err, ErrUnsupportedFlag) {
			t.Errorf("WriteFile() error = %v, want ErrUnsupportedFlag", err)
		}
	})
}

func TestLocalFSService_Stat(t *testing.T) {
	svc := newTestService()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.txt")
	payload := []byte("twelve bytes")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	stat, err := svc.Stat(context.Background(), path, schema.StatOptions{})
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}

	if stat.Size != int64(len(payload)) {
		t.Errorf("Stat() size = %d, want %d", stat.Size, len(payload))
	}
	if !stat.IsFile || stat.IsDirectory || stat.IsSymbolicLink {
		t.Errorf("Stat() predicates = file:%v dir:%v link:%v, want file", stat.IsFile, stat.IsDirectory, stat.IsSymbolicLink)
	}
	if stat.Ino == 0 {
		t.Error("Stat() ino = 0, want nonzero")
	}
	if stat.Nlink == 0 {
		t.Error("Stat() nlink = 0, want nonzero")
	}
	if stat.Mode&0o777 != 0o644 {
		t.Errorf("Stat() permission bits = %o, want 644", stat.Mode&0o777)
	}

	// Both timestamp encodings must agree to the millisecond.
	for _, pair := range []struct {
		name string
		ms   int64
		iso  string
	}{
		{"atime", stat.AtimeMs, stat.Atime},
		{"mtime", stat.MtimeMs, stat.Mtime},
		{"ctime", stat.CtimeMs, stat.Ctime},
		{"birthtime", stat.BirthtimeMs, stat.Birthtime},
	} {
		parsed, err := time.Parse("2006-01-02T15:04:05.000Z07:00", pair.iso)
		if err != nil {
			t.Errorf("Stat() %s = %q not parseable: %v", pair.name, pair.iso, err)
			continue
		}
		if parsed.UnixMilli() != pair.ms {
			t.Errorf("Stat() %s iso %q (%d) != ms %d", pair.name, pair.iso, parsed.UnixMilli(), pair.ms)
		}
	}

	dirStat, err := svc.Stat(context.Background(), dir, schema.StatOptions{})
	if err != nil {
		t.Fatalf("Stat() on dir error = %v", err)
	}
	if !dirStat.IsDirectory {
		t.Error("Stat() on dir: IsDirectory = false")
	}

	if _, err := svc.Stat(context.Background(), filepath.Join(dir, "absent"), schema.StatOptions{}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat() on missing path error = %v, want ErrNotExist", err)
	}
}

func TestLocalFSService_FileSize(t *testing.T) {
	svc := newTestService()
	path := filepath.Join(t.TempDir(), "sized")
	if err := os.WriteFile(path, make([]byte, 4096), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	size, err := svc.FileSize(context.Background(), path)
	if err != nil {
		t.Fatalf("FileSize() error = %v", err)
	}
	if size != 4096 {
		t.Errorf("FileSize() = %d, want 4096", size)
	}

	if _, err := svc.FileSize(context.Background(), path+".absent"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("FileSize() on missing path error = %v, want ErrNotExist", err)
	}
}

func TestLocalFSService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(dir string) string
		opts      schema.DeleteOptions
		wantErrIs error
	}{
		{
			name: "delete file",
			setup: func(dir string) string {
				path := filepath.Join(dir, "f")
				os.WriteFile(path, []byte("x"), 0644)
				return path
			},
		},
		{
			name: "delete empty directory",
			setup: func(dir string) string {
				path := filepath.Join(dir, "d")
				os.Mkdir(path, 0755)
				return path
			},
		},
		{
			name: "non-recursive delete of populated dir fails",
			setup: func(dir string) string {
				path := filepath.Join(dir, "d")
				os.MkdirAll(filepath.Join(path, "inner"), 0755)
				return path
			},
			wantErrIs: fs.ErrExist,
		},
		{
			name: "recursive delete of tree",
			setup: func(dir string) string {
				path := filepath.Join(dir, "d")
				os.MkdirAll(filepath.Join(path, "inner"), 0755)
				os.WriteFile(filepath.Join(path, "inner", "f"), []byte("x"), 0644)
				return path
			},
			opts: schema.DeleteOptions{Recursive: true},
		},
		{
			name:      "missing path fails",
			setup:     func(dir string) string { return filepath.Join(dir, "absent") },
			wantErrIs: fs.ErrNotExist,
		},
		{
			name:  "missing path with force succeeds",
			setup: func(dir string) string { return filepath.Join(dir, "absent") },
			opts:  schema.DeleteOptions{Force: true},
		},
		{
			name:  "missing path with recursive force succeeds",
			setup: func(dir string) string { return filepath.Join(dir, "absent") },
			opts:  schema.DeleteOptions{Recursive: true, Force: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			dir := t.TempDir()
			path := tt.setup(dir)

			err := svc.Delete(context.Background(), path, tt.opts)

			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("Delete() error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, statErr := os.Lstat(path); !errors.Is(statErr, fs.ErrNotExist) {
				t.Errorf("Delete() left path behind: %v", statErr)
			}
		})
	}
}

func TestLocalFSService_Rename(t *testing.T) {
	svc := newTestService()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old")
	newPath := filepath.Join(dir, "new")
	if err := os.WriteFile(oldPath, []byte("payload"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := svc.Rename(context.Background(), oldPath, newPath); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	if _, err := os.Stat(oldPath); !errors.Is(err, fs.ErrNotExist) {
		t.Error("Rename() left the old path behind")
	}
	got, err := os.ReadFile(newPath)
	if err != nil || string(got) != "payload" {
		t.Errorf("Rename() target read = %q, %v", got, err)
	}

	if err := svc.Rename(context.Background(), filepath.Join(dir, "absent"), newPath); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Rename() on missing source error = %v, want ErrNotExist", err)
	}
}
