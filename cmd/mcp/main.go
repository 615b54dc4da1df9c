package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	bridgelib "github.com/supervise-dev/bridge/clients/library"
	"github.com/supervise-dev/bridge/internal/communication"
	"github.com/supervise-dev/bridge/internal/config"
	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/schema"
)

func main() {
	configPath := flag.String("config", "bridge-mcp.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Stdout carries the protocol; logs must stay on stderr.
	ls := log_service.NewNopLogService()
	var comm communication.Communicator
	if cfg.Communicator.Type == config.TransportGRPC {
		comm = communication.NewGRPCCommunicator("", ls)
	} else {
		comm = communication.NewHTTPCommunicator("", ls)
	}
	client := bridgelib.NewBridgeClient(cfg.Server.Address, comm)

	s := server.NewMCPServer(
		"bridge",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	addTools(s, client)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func addTools(s *server.MCPServer, client *bridgelib.BridgeClient) {
	s.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file from the bridge server"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path to read")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := client.ReadFileText(ctx, path, "utf8")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(content), nil
	})

	s.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Write a text file on the bridge server"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path to write")),
		mcp.WithString("content", mcp.Required(), mcp.Description("File content")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content, err := request.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := client.WriteFileText(ctx, path, content, schema.WriteFileOptions{}); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Wrote %s", path)), nil
	})

	s.AddTool(mcp.NewTool("list_directory",
		mcp.WithDescription("List a directory on the bridge server"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory path to list")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entries, err := client.ReadDir(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.AddTool(mcp.NewTool("stat",
		mcp.WithDescription("Show metadata for a path on the bridge server"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to inspect")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		stat, err := client.Stat(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.MarshalIndent(stat, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.AddTool(mcp.NewTool("delete",
		mcp.WithDescription("Delete a file or directory tree on the bridge server"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to delete")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := client.Delete(ctx, path, schema.DeleteOptions{Recursive: true}); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %s", path)), nil
	})

	s.AddTool(mcp.NewTool("run_command",
		mcp.WithDescription("Run a shell command line on the bridge server"),
		mcp.WithString("command", mcp.Required(), mcp.Description("Shell command line")),
		mcp.WithString("cwd", mcp.Description("Working directory")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		command, err := request.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cwd := request.GetString("cwd", "")
		result, err := client.Exec(ctx, command, &bridgelib.ExecOptions{Cwd: cwd})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}
