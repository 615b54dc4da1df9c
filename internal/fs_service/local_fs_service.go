package fs_service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/schema"

	"golang.org/x/sys/unix"
)

const (
	defaultDirMode  = 0o777
	defaultFileMode = 0o666
)

// LocalFSService executes the filesystem operation set against the host OS.
type LocalFSService struct {
	ls log_service.LogService
}

func NewLocalFSService(ls log_service.LogService) *LocalFSService {
	return &LocalFSService{ls: ls}
}

func (s *LocalFSService) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *LocalFSService) Mkdir(_ context.Context, path string, opts schema.MkdirOptions) (schema.MkdirResult, error) {
	mode := fs.FileMode(defaultDirMode)
	if opts.Mode != nil {
		mode = fs.FileMode(*opts.Mode)
	}

	if !opts.Recursive {
		if err := os.Mkdir(path, mode); err != nil {
			return schema.MkdirResult{}, err
		}
		return schema.MkdirResult{Path: path}, nil
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return schema.MkdirResult{}, nil
	}

	created := firstMissingDir(path)
	if err := os.MkdirAll(path, mode); err != nil {
		return schema.MkdirResult{}, err
	}

	s.ls.Debug(log_service.LogEvent{
		Message:  "Created directory",
		Metadata: map[string]any{"path": path, "recursive": true},
	})

	return schema.MkdirResult{Path: created}, nil
}

// firstMissingDir walks upward from path to the topmost segment that does not
// exist yet; that is the first directory MkdirAll will create.
func firstMissingDir(path string) string {
	current := filepath.Clean(path)
	for {
		parent := filepath.Dir(current)
		if parent == current {
			return current
		}
		if _, err := os.Stat(parent); err == nil {
			return current
		}
		current = parent
	}
}

func (s *LocalFSService) ReadDir(_ context.Context, path string, _ schema.ReadDirOptions) ([]schema.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	result := make([]schema.DirEntry, 0, len(entries))
	for _, entry := range entries {
		mode := entry.Type()
		result = append(result, schema.DirEntry{
			Name:           entry.Name(),
			IsFile:         mode.IsRegular(),
			IsDirectory:    mode.IsDir(),
			IsSymbolicLink: mode&fs.ModeSymlink != 0,
		})
	}
	return result, nil
}

func (s *LocalFSService) ReadFile(_ context.Context, path string, opts schema.ReadFileOptions) (schema.FileContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.FileContent{}, err
	}

	if opts.Encoding == "" {
		return schema.BinaryContent(data), nil
	}

	text, err := encodeBytes(data, opts.Encoding)
	if err != nil {
		return schema.FileContent{}, err
	}
	return schema.TextContent(text), nil
}

func (s *LocalFSService) WriteFile(_ context.Context, path string, data schema.FileContent, opts schema.WriteFileOptions) error {
	var payload []byte
	var err error
	switch data.Type {
	case schema.ContentText:
		payload, err = decodeText(data.Data, opts.Encoding)
	default:
		payload, err = data.Bytes()
	}
	if err != nil {
		return err
	}

	flags, err := openFlagBits(opts.Flag)
	if err != nil {
		return err
	}

	mode := fs.FileMode(defaultFileMode)
	if opts.Mode != nil {
		mode = fs.FileMode(*opts.Mode)
	}

	file, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return err
	}

	_, writeErr := file.Write(payload)
	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return closeErr
	}

	s.ls.Debug(log_service.LogEvent{
		Message:  "Wrote file",
		Metadata: map[string]any{"path": path, "bytes": len(payload)},
	})

	return nil
}

func (s *LocalFSService) Stat(_ context.Context, path string, _ schema.StatOptions) (schema.Stat, error) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx); err != nil {
		return schema.Stat{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}

	stat := schema.Stat{
		Dev:     unix.Mkdev(stx.Dev_major, stx.Dev_minor),
		Ino:     stx.Ino,
		Mode:    uint32(stx.Mode),
		Nlink:   uint64(stx.Nlink),
		UID:     stx.Uid,
		GID:     stx.Gid,
		Rdev:    unix.Mkdev(stx.Rdev_major, stx.Rdev_minor),
		Size:    int64(stx.Size),
		Blksize: int64(stx.Blksize),
		Blocks:  int64(stx.Blocks),
	}

	stat.AtimeMs, stat.Atime = statxTime(stx.Atime)
	stat.MtimeMs, stat.Mtime = statxTime(stx.Mtime)
	stat.CtimeMs, stat.Ctime = statxTime(stx.Ctime)
	if stx.Mask&unix.STATX_BTIME != 0 {
		stat.BirthtimeMs, stat.Birthtime = statxTime(stx.Btime)
	} else {
		// Filesystems without birth time support report ctime instead.
		stat.BirthtimeMs, stat.Birthtime = stat.CtimeMs, stat.Ctime
	}

	switch stx.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		stat.IsFile = true
	case unix.S_IFDIR:
		stat.IsDirectory = true
	case unix.S_IFLNK:
		stat.IsSymbolicLink = true
	}

	return stat, nil
}

// statxTime renders one timestamp in both wire forms, truncated to the same
// integer millisecond so the two encodings always agree.
func statxTime(ts unix.StatxTimestamp) (int64, string) {
	ms := ts.Sec*1000 + int64(ts.Nsec)/int64(time.Millisecond)
	iso := time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return ms, iso
}

func (s *LocalFSService) FileSize(ctx context.Context, path string) (int64, error) {
	stat, err := s.Stat(ctx, path, schema.StatOptions{})
	if err != nil {
		return 0, err
	}
	return stat.Size, nil
}

func (s *LocalFSService) Delete(_ context.Context, path string, opts schema.DeleteOptions) error {
	if opts.Recursive {
		// RemoveAll tolerates a missing path, so the not-found contract for
		// force=false needs an explicit check.
		if _, err := os.Lstat(path); err != nil {
			if opts.Force && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		return os.RemoveAll(path)
	}

	err := os.Remove(path)
	if err != nil && opts.Force && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil {
		s.ls.Debug(log_service.LogEvent{
			Message:  "Deleted path",
			Metadata: map[string]any{"path": path},
		})
	}
	return err
}

func (s *LocalFSService) Rename(_ context.Context, oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}
