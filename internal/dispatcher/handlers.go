package dispatcher

import (
	"context"
	"fmt"

	"github.com/supervise-dev/bridge/internal/schema"
)

// buildProcedures wires every catalog operation to its service call. The
// catalog and this table must cover the same names; a mismatch is a
// programming error caught at construction.
func (d *Dispatcher) buildProcedures() map[string]procedure {
	invokers := map[string]invokeFunc{
		schema.OpExists: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.ExistsRequest)
			return d.fs.Exists(ctx, r.Path), nil
		},
		schema.OpMkdir: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.MkdirRequest)
			return d.fs.Mkdir(ctx, r.Path, r.Options)
		},
		schema.OpReadDir: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.ReadDirRequest)
			entries, err := d.fs.ReadDir(ctx, r.Path, r.Options)
			if err != nil {
				return nil, err
			}
			if r.Options.WithFileTypes {
				return entries, nil
			}
			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				names = append(names, entry.Name)
			}
			return names, nil
		},
		schema.OpReadFile: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.ReadFileRequest)
			return d.fs.ReadFile(ctx, r.Path, r.Options)
		},
		schema.OpWriteFile: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.WriteFileRequest)
			if err := d.fs.WriteFile(ctx, r.Path, r.Data, r.Options); err != nil {
				return nil, err
			}
			return schema.SuccessResult{Success: true}, nil
		},
		schema.OpStat: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.StatRequest)
			return d.fs.Stat(ctx, r.Path, r.Options)
		},
		schema.OpFileSize: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.FileSizeRequest)
			return d.fs.FileSize(ctx, r.Path)
		},
		schema.OpDelete: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.DeleteRequest)
			if err := d.fs.Delete(ctx, r.Path, r.Options); err != nil {
				return nil, err
			}
			return schema.SuccessResult{Success: true}, nil
		},
		schema.OpRename: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.RenameRequest)
			if err := d.fs.Rename(ctx, r.OldPath, r.NewPath); err != nil {
				return nil, err
			}
			return schema.SuccessResult{Success: true}, nil
		},
		schema.OpSpawn: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.SpawnRequest)
			return d.ps.Spawn(ctx, *r)
		},
		schema.OpExec: func(ctx context.Context, req any) (any, error) {
			r := req.(*schema.ExecRequest)
			return d.ps.Exec(ctx, *r)
		},
	}

	procedures := make(map[string]procedure, len(invokers))
	for name, invoke := range invokers {
		op, ok := schema.Lookup(name)
		if !ok {
			panic(fmt.Sprintf("no catalog entry for operation %q", name))
		}
		procedures[name] = procedure{op: op, invoke: invoke}
	}

	for _, name := range schema.Names() {
		if _, ok := procedures[name]; !ok {
			panic(fmt.Sprintf("no handler bound for operation %q", name))
		}
	}

	return procedures
}
