package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	bridgelib "github.com/supervise-dev/bridge/clients/library"
	"github.com/supervise-dev/bridge/internal/communication"
	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/schema"
)

const usage = `Usage: bridge [flags] <command> [args]

Commands:
  exists <path>              Check whether a path exists
  mkdir <path>               Create a directory (parents included)
  ls <path>                  List a directory with entry types
  cat <path>                 Print file contents to stdout
  write <path>               Write stdin to a file
  stat <path>                Show file metadata
  size <path>                Show file size
  rm <path>                  Delete a file or directory tree
  mv <old> <new>             Rename a path
  spawn <cmd> [args...]      Run a command without a shell
  exec <command line>        Run a shell command line

Flags:
`

func main() {
	serverAddr := flag.String("server", "localhost:8080", "server address")
	transport := flag.String("transport", "http", "transport type (http or grpc)")
	timeout := flag.Duration("timeout", 30*time.Second, "per-call timeout")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ls := log_service.NewNopLogService()
	var comm communication.Communicator
	if *transport == "grpc" {
		comm = communication.NewGRPCCommunicator("", ls)
	} else {
		comm = communication.NewHTTPCommunicator("", ls)
	}
	client := bridgelib.NewBridgeClient(*serverAddr, comm)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, client, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bridge: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *bridgelib.BridgeClient, command string, args []string) error {
	switch command {
	case "exists":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		exists, err := client.Exists(ctx, path)
		if err != nil {
			return err
		}
		fmt.Println(exists)
		return nil

	case "mkdir":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		created, err := client.Mkdir(ctx, path, schema.MkdirOptions{Recursive: true})
		if err != nil {
			return err
		}
		if created != "" {
			fmt.Printf("created %s\n", created)
		}
		return nil

	case "ls":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		entries, err := client.ReadDir(ctx, path)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf("%s %s\n", entryKind(entry), entry.Name)
		}
		return nil

	case "cat":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		data, err := client.ReadFile(ctx, path)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err

	case "write":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		return client.WriteFile(ctx, path, data, schema.WriteFileOptions{})

	case "stat":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		stat, err := client.Stat(ctx, path)
		if err != nil {
			return err
		}
		printStat(stat)
		return nil

	case "size":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		size, err := client.FileSize(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("%d (%s)\n", size, humanize.IBytes(uint64(size)))
		return nil

	case "rm":
		path, err := one(command, args)
		if err != nil {
			return err
		}
		return client.Delete(ctx, path, schema.DeleteOptions{Recursive: true})

	case "mv":
		if len(args) != 2 {
			return fmt.Errorf("mv requires exactly two arguments")
		}
		return client.Rename(ctx, args[0], args[1])

	case "spawn":
		if len(args) == 0 {
			return fmt.Errorf("spawn requires a command")
		}
		result, err := client.Spawn(ctx, args, nil)
		if err != nil {
			return err
		}
		return printResult(result)

	case "exec":
		if len(args) == 0 {
			return fmt.Errorf("exec requires a command line")
		}
		result, err := client.Exec(ctx, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		return printResult(result)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func one(command string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s requires exactly one argument", command)
	}
	return args[0], nil
}

func entryKind(entry schema.DirEntry) string {
	switch {
	case entry.IsDirectory:
		return "d"
	case entry.IsSymbolicLink:
		return "l"
	default:
		return "-"
	}
}

func printStat(stat schema.Stat) {
	kind := "file"
	switch {
	case stat.IsDirectory:
		kind = "directory"
	case stat.IsSymbolicLink:
		kind = "symlink"
	}
	fmt.Printf("type:     %s\n", kind)
	fmt.Printf("size:     %d (%s)\n", stat.Size, humanize.IBytes(uint64(stat.Size)))
	fmt.Printf("mode:     %o\n", stat.Mode)
	fmt.Printf("uid/gid:  %d/%d\n", stat.UID, stat.GID)
	fmt.Printf("modified: %s (%s)\n", stat.Mtime, humanize.Time(time.UnixMilli(stat.MtimeMs)))
	fmt.Printf("created:  %s\n", stat.Birthtime)
}

func printResult(result schema.ProcessResult) error {
	if result.Stdout != "" {
		fmt.Fprint(os.Stdout, result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if result.ExitCode == nil {
		return fmt.Errorf("process killed by signal")
	}
	if *result.ExitCode != 0 {
		return fmt.Errorf("process exited with code %d", *result.ExitCode)
	}
	return nil
}
