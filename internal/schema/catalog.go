package schema

import (
	"sort"
	"sync"

	"golang.org/x/exp/maps"
)

// Kind classifies an operation for the transport: queries carry no side
// effects and may be batched or cached; mutations must never be silently
// retried.
type Kind string

const (
	KindQuery    Kind = "query"
	KindMutation Kind = "mutation"
)

type FieldType string

const (
	TypeString     FieldType = "string"
	TypeBool       FieldType = "bool"
	TypeNumber     FieldType = "number"
	TypeObject     FieldType = "object"
	TypeStringList FieldType = "stringList"
	TypeStringMap  FieldType = "stringMap"
	TypeContent    FieldType = "content"
)

// Field declares one accepted input field. Path is dotted for nested option
// fields ("options.encoding"). Enum, when set, is the closed set of legal
// string values.
type Field struct {
	Path     string
	Type     FieldType
	Required bool
	Enum     []string
}

// Operation is one catalog entry: the single source of truth for an
// operation's name, side-effect classification, and accepted input shape.
type Operation struct {
	Name       string
	Kind       Kind
	Fields     []Field
	NewRequest func() any
}

var catalogOnce = sync.OnceValue(buildCatalog)

// Catalog returns the immutable operation registry, constructed once.
func Catalog() map[string]Operation {
	return catalogOnce()
}

// Lookup finds one operation by wire name.
func Lookup(name string) (Operation, bool) {
	op, ok := Catalog()[name]
	return op, ok
}

// Names lists every operation name in sorted order.
func Names() []string {
	names := maps.Keys(Catalog())
	sort.Strings(names)
	return names
}

func buildCatalog() map[string]Operation {
	ops := []Operation{
		{
			Name: OpExists,
			Kind: KindQuery,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
			},
			NewRequest: func() any { return &ExistsRequest{} },
		},
		{
			Name: OpMkdir,
			Kind: KindMutation,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
				{Path: "options", Type: TypeObject},
				{Path: "options.recursive", Type: TypeBool},
				{Path: "options.mode", Type: TypeNumber},
			},
			NewRequest: func() any { return &MkdirRequest{} },
		},
		{
			Name: OpReadDir,
			Kind: KindQuery,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
				{Path: "options", Type: TypeObject},
				{Path: "options.encoding", Type: TypeString, Enum: Encodings},
				{Path: "options.withFileTypes", Type: TypeBool},
			},
			NewRequest: func() any { return &ReadDirRequest{} },
		},
		{
			Name: OpReadFile,
			Kind: KindQuery,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
				{Path: "options", Type: TypeObject},
				{Path: "options.encoding", Type: TypeString, Enum: Encodings},
				{Path: "options.flag", Type: TypeString, Enum: OpenFlags},
			},
			NewRequest: func() any { return &ReadFileRequest{} },
		},
		{
			Name: OpWriteFile,
			Kind: KindMutation,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
				{Path: "data", Type: TypeContent, Required: true},
				{Path: "options", Type: TypeObject},
				{Path: "options.encoding", Type: TypeString, Enum: Encodings},
				{Path: "options.mode", Type: TypeNumber},
				{Path: "options.flag", Type: TypeString, Enum: OpenFlags},
			},
			NewRequest: func() any { return &WriteFileRequest{} },
		},
		{
			Name: OpStat,
			Kind: KindQuery,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
				{Path: "options", Type: TypeObject},
				{Path: "options.bigint", Type: TypeBool},
				{Path: "options.throwIfNoEntry", Type: TypeBool},
			},
			NewRequest: func() any { return &StatRequest{} },
		},
		{
			Name: OpFileSize,
			Kind: KindQuery,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
			},
			NewRequest: func() any { return &FileSizeRequest{} },
		},
		{
			Name: OpDelete,
			Kind: KindMutation,
			Fields: []Field{
				{Path: "path", Type: TypeString, Required: true},
				{Path: "options", Type: TypeObject},
				{Path: "options.recursive", Type: TypeBool},
				{Path: "options.force", Type: TypeBool},
			},
			NewRequest: func() any { return &DeleteRequest{} },
		},
		{
			Name: OpRename,
			Kind: KindMutation,
			Fields: []Field{
				{Path: "oldPath", Type: TypeString, Required: true},
				{Path: "newPath", Type: TypeString, Required: true},
			},
			NewRequest: func() any { return &RenameRequest{} },
		},
		{
			Name: OpSpawn,
			Kind: KindMutation,
			Fields: []Field{
				{Path: "command", Type: TypeStringList, Required: true},
				{Path: "cwd", Type: TypeString},
				{Path: "env", Type: TypeStringMap},
				{Path: "stdio", Type: TypeObject},
				{Path: "stdio.stdin", Type: TypeString, Enum: StdioModes},
				{Path: "stdio.stdout", Type: TypeString, Enum: StdioModes},
				{Path: "stdio.stderr", Type: TypeString, Enum: StdioModes},
				{Path: "input", Type: TypeString},
				{Path: "timeoutMs", Type: TypeNumber},
			},
			NewRequest: func() any { return &SpawnRequest{} },
		},
		{
			Name: OpExec,
			Kind: KindMutation,
			Fields: []Field{
				{Path: "command", Type: TypeString, Required: true},
				{Path: "cwd", Type: TypeString},
				{Path: "env", Type: TypeStringMap},
				{Path: "timeoutMs", Type: TypeNumber},
			},
			NewRequest: func() any { return &ExecRequest{} },
		},
	}

	catalog := make(map[string]Operation, len(ops))
	for _, op := range ops {
		catalog[op.Name] = op
	}
	return catalog
}
