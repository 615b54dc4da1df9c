package bridgelib

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supervise-dev/bridge/internal/communication"
	"github.com/supervise-dev/bridge/internal/schema"
)

// call performs one request/response exchange. Application errors come back
// as *CallError, transport failures as *TransportError, and a successful body
// is decoded into result when result is non-nil.
func (c *BridgeClient) call(ctx context.Context, op string, payload any, result any) error {
	resp, err := c.Comm.Send(ctx, c.ServerAddr, communication.Message{
		From:    c.From,
		Type:    op,
		Payload: payload,
	})
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.Code != communication.CodeOK {
		msg := strings.TrimSpace(string(resp.Body))
		var env schema.ErrorEnvelope
		if json.Unmarshal(resp.Body, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return &CallError{Op: op, Code: resp.Code, Message: msg}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, result); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response body: %w", err)}
	}
	return nil
}

// Exists reports whether path refers to any filesystem entry. It never fails
// on a missing path.
func (c *BridgeClient) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool
	if err := c.call(ctx, schema.OpExists, schema.ExistsRequest{Path: path}, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Mkdir creates a directory. With opts.Recursive it creates missing parents
// and returns the first directory actually created, or "" if everything was
// already in place.
func (c *BridgeClient) Mkdir(ctx context.Context, path string, opts schema.MkdirOptions) (string, error) {
	var result schema.MkdirResult
	req := schema.MkdirRequest{Path: path, Options: opts}
	if err := c.call(ctx, schema.OpMkdir, req, &result); err != nil {
		return "", err
	}
	return result.Path, nil
}

// ReadDir lists a directory with per-entry type predicates.
func (c *BridgeClient) ReadDir(ctx context.Context, path string) ([]schema.DirEntry, error) {
	var entries []schema.DirEntry
	req := schema.ReadDirRequest{Path: path, Options: schema.ReadDirOptions{WithFileTypes: true}}
	if err := c.call(ctx, schema.OpReadDir, req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadDirNames lists a directory as bare names.
func (c *BridgeClient) ReadDirNames(ctx context.Context, path string) ([]string, error) {
	var names []string
	req := schema.ReadDirRequest{Path: path}
	if err := c.call(ctx, schema.OpReadDir, req, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ReadFile fetches the exact bytes of a file.
func (c *BridgeClient) ReadFile(ctx context.Context, path string) ([]byte, error) {
	var content schema.FileContent
	req := schema.ReadFileRequest{Path: path}
	if err := c.call(ctx, schema.OpReadFile, req, &content); err != nil {
		return nil, err
	}
	data, err := content.Bytes()
	if err != nil {
		return nil, &TransportError{Op: schema.OpReadFile, Err: err}
	}
	return data, nil
}

// ReadFileText fetches a file decoded to a string using the given encoding
// ("utf8", "base64", "hex").
func (c *BridgeClient) ReadFileText(ctx context.Context, path, encoding string) (string, error) {
	var content schema.FileContent
	req := schema.ReadFileRequest{Path: path, Options: schema.ReadFileOptions{Encoding: encoding}}
	if err := c.call(ctx, schema.OpReadFile, req, &content); err != nil {
		return "", err
	}
	return content.Data, nil
}

// WriteFile writes data to path, creating or truncating per opts.Flag.
func (c *BridgeClient) WriteFile(ctx context.Context, path string, data []byte, opts schema.WriteFileOptions) error {
	req := schema.WriteFileRequest{Path: path, Data: schema.BinaryContent(data), Options: opts}
	return c.call(ctx, schema.OpWriteFile, req, nil)
}

// WriteFileText writes a text payload, interpreted per opts.Encoding.
func (c *BridgeClient) WriteFileText(ctx context.Context, path, text string, opts schema.WriteFileOptions) error {
	req := schema.WriteFileRequest{Path: path, Data: schema.TextContent(text), Options: opts}
	return c.call(ctx, schema.OpWriteFile, req, nil)
}

// Stat fetches the full metadata record for path.
func (c *BridgeClient) Stat(ctx context.Context, path string) (schema.Stat, error) {
	var stat schema.Stat
	if err := c.call(ctx, schema.OpStat, schema.StatRequest{Path: path}, &stat); err != nil {
		return schema.Stat{}, err
	}
	return stat, nil
}

// FileSize reports the byte size of path.
func (c *BridgeClient) FileSize(ctx context.Context, path string) (int64, error) {
	var size int64
	if err := c.call(ctx, schema.OpFileSize, schema.FileSizeRequest{Path: path}, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// Delete removes path. Recursive removes directory trees; Force suppresses
// the missing-path error.
func (c *BridgeClient) Delete(ctx context.Context, path string, opts schema.DeleteOptions) error {
	return c.call(ctx, schema.OpDelete, schema.DeleteRequest{Path: path, Options: opts}, nil)
}

// Rename moves oldPath to newPath.
func (c *BridgeClient) Rename(ctx context.Context, oldPath, newPath string) error {
	return c.call(ctx, schema.OpRename, schema.RenameRequest{OldPath: oldPath, NewPath: newPath}, nil)
}

// Spawn runs an argument vector without shell interpretation and returns its
// terminal state.
func (c *BridgeClient) Spawn(ctx context.Context, command []string, opts *SpawnOptions) (schema.ProcessResult, error) {
	req := schema.SpawnRequest{Command: command}
	if opts != nil {
		req.Cwd = opts.Cwd
		req.Env = opts.Env
		req.Stdio = opts.Stdio
		req.Input = opts.Input
		req.TimeoutMs = opts.TimeoutMs
	}
	var result schema.ProcessResult
	if err := c.call(ctx, schema.OpSpawn, req, &result); err != nil {
		return schema.ProcessResult{}, err
	}
	return result, nil
}

// Exec runs a shell command line via /bin/sh -c and returns its terminal
// state. A non-zero exit is a result, not an error.
func (c *BridgeClient) Exec(ctx context.Context, command string, opts *ExecOptions) (schema.ProcessResult, error) {
	req := schema.ExecRequest{Command: command}
	if opts != nil {
		req.Cwd = opts.Cwd
		req.Env = opts.Env
		req.TimeoutMs = opts.TimeoutMs
	}
	var result schema.ProcessResult
	if err := c.call(ctx, schema.OpExec, req, &result); err != nil {
		return schema.ProcessResult{}, err
	}
	return result, nil
}
