package schema

// Operation name constants. The "fs." prefix marks filesystem operations,
// "process." marks process execution.
const (
	OpExists    = "fs.exists"
	OpMkdir     = "fs.mkdir"
	OpReadDir   = "fs.readdir"
	OpReadFile  = "fs.readFile"
	OpWriteFile = "fs.writeFile"
	OpStat      = "fs.stat"
	OpFileSize  = "fs.fileSize"
	OpDelete    = "fs.delete"
	OpRename    = "fs.rename"
	OpSpawn     = "process.spawn"
	OpExec      = "process.exec"
)

// Closed value sets referenced by the operation descriptors.
var (
	Encodings  = []string{"utf8", "utf-8", "base64", "hex"}
	StdioModes = []string{StdioPipe, StdioInherit, StdioIgnore}
	OpenFlags  = []string{"r", "r+", "w", "w+", "wx", "a", "a+", "ax"}
)

const (
	StdioPipe    = "pipe"
	StdioInherit = "inherit"
	StdioIgnore  = "ignore"
)

// --- Filesystem requests ---

type ExistsRequest struct {
	Path string `json:"path" mapstructure:"path"`
}

type MkdirOptions struct {
	Recursive bool    `json:"recursive,omitempty" mapstructure:"recursive"`
	Mode      *uint32 `json:"mode,omitempty" mapstructure:"mode"`
}

type MkdirRequest struct {
	Path    string       `json:"path" mapstructure:"path"`
	Options MkdirOptions `json:"options,omitempty" mapstructure:"options"`
}

type ReadDirOptions struct {
	Encoding      string `json:"encoding,omitempty" mapstructure:"encoding"`
	WithFileTypes bool   `json:"withFileTypes,omitempty" mapstructure:"withFileTypes"`
}

type ReadDirRequest struct {
	Path    string         `json:"path" mapstructure:"path"`
	Options ReadDirOptions `json:"options,omitempty" mapstructure:"options"`
}

type ReadFileOptions struct {
	Encoding string `json:"encoding,omitempty" mapstructure:"encoding"`
	Flag     string `json:"flag,omitempty" mapstructure:"flag"`
}

type ReadFileRequest struct {
	Path    string          `json:"path" mapstructure:"path"`
	Options ReadFileOptions `json:"options,omitempty" mapstructure:"options"`
}

type WriteFileOptions struct {
	Encoding string  `json:"encoding,omitempty" mapstructure:"encoding"`
	Mode     *uint32 `json:"mode,omitempty" mapstructure:"mode"`
	Flag     string  `json:"flag,omitempty" mapstructure:"flag"`
}

type WriteFileRequest struct {
	Path    string           `json:"path" mapstructure:"path"`
	Data    FileContent      `json:"data" mapstructure:"data"`
	Options WriteFileOptions `json:"options,omitempty" mapstructure:"options"`
}

type StatOptions struct {
	BigInt bool `json:"bigint,omitempty" mapstructure:"bigint"`
	// ThrowIfNoEntry is accepted for compatibility but forcibly overridden:
	// a missing path always raises NotFound so no empty result ever crosses
	// the wire.
	ThrowIfNoEntry *bool `json:"throwIfNoEntry,omitempty" mapstructure:"throwIfNoEntry"`
}

type StatRequest struct {
	Path    string      `json:"path" mapstructure:"path"`
	Options StatOptions `json:"options,omitempty" mapstructure:"options"`
}

type FileSizeRequest struct {
	Path string `json:"path" mapstructure:"path"`
}

type DeleteOptions struct {
	Recursive bool `json:"recursive,omitempty" mapstructure:"recursive"`
	Force     bool `json:"force,omitempty" mapstructure:"force"`
}

type DeleteRequest struct {
	Path    string        `json:"path" mapstructure:"path"`
	Options DeleteOptions `json:"options,omitempty" mapstructure:"options"`
}

type RenameRequest struct {
	OldPath string `json:"oldPath" mapstructure:"oldPath"`
	NewPath string `json:"newPath" mapstructure:"newPath"`
}

// --- Process requests ---

// StdioConfig selects per-stream handling for spawn. Empty fields default to
// "pipe".
type StdioConfig struct {
	Stdin  string `json:"stdin,omitempty" mapstructure:"stdin"`
	Stdout string `json:"stdout,omitempty" mapstructure:"stdout"`
	Stderr string `json:"stderr,omitempty" mapstructure:"stderr"`
}

type SpawnRequest struct {
	// Command is the argument vector: first element the executable, the rest
	// literal arguments. No shell interpretation.
	Command   []string          `json:"command" mapstructure:"command"`
	Cwd       string            `json:"cwd,omitempty" mapstructure:"cwd"`
	Env       map[string]string `json:"env,omitempty" mapstructure:"env"`
	Stdio     StdioConfig       `json:"stdio,omitempty" mapstructure:"stdio"`
	Input     string            `json:"input,omitempty" mapstructure:"input"`
	TimeoutMs int64             `json:"timeoutMs,omitempty" mapstructure:"timeoutMs"`
}

type ExecRequest struct {
	// Command is a single shell command line, interpreted by /bin/sh -c.
	Command   string            `json:"command" mapstructure:"command"`
	Cwd       string            `json:"cwd,omitempty" mapstructure:"cwd"`
	Env       map[string]string `json:"env,omitempty" mapstructure:"env"`
	TimeoutMs int64             `json:"timeoutMs,omitempty" mapstructure:"timeoutMs"`
}
