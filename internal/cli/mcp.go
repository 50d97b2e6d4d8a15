package cli

import (
	"context"
	"fmt"

	mcpadapter "github.com/aretw0/racketbot/pkg/adapters/mcp"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	Transport string // "stdio" or "sse"
	Addr      string // SSE listen address, defaults to the configured mcp.addr
	InProcess bool
}

// ServeMCP exposes conversations as MCP tools.
// With stdio, Stdout belongs to the protocol, so logs must stay on Stderr.
func (a *App) ServeMCP(ctx context.Context, opts MCPOptions) error {
	srv, closeStore, err := a.newMCPServer(opts.InProcess)
	if err != nil {
		return err
	}
	defer closeStore()

	switch opts.Transport {
	case "", "stdio":
		a.Logger.Info("Starting racketbot MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		addr := opts.Addr
		if addr == "" {
			addr = a.Config.MCP.Addr
		}
		return srv.ServeSSE(ctx, addr)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}

func (a *App) newMCPServer(inProcess bool) (*mcpadapter.Server, func() error, error) {
	noop := func() error { return nil }

	rec, err := a.newRecommender(inProcess)
	if err != nil {
		return nil, noop, err
	}
	engine, err := a.newEngine(rec)
	if err != nil {
		return nil, noop, err
	}
	sessions, closeStore, err := a.newSessions(storeMemory)
	if err != nil {
		return nil, noop, err
	}
	return mcpadapter.NewServer(engine, sessions, a.Logger), closeStore, nil
}
