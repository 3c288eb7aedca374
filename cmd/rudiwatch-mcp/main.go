package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	mcpadapter "rudiwatch/internal/adapters/mcp"
	"rudiwatch/internal/application"
	"rudiwatch/internal/bootstrap"
	"rudiwatch/internal/config"
	"rudiwatch/internal/logger"
	"rudiwatch/internal/ports"
)

func main() {
	projectFlag := flag.String("project", config.ProjectPath(), "path to the rudi project")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr
	p, err := bootstrap.Open(*projectFlag, bootstrap.LogStderr)
	if err != nil {
		log.Fatalf("rudiwatch-mcp: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Seed(ctx); err != nil {
		p.Log.Warn("initial build failed", logger.Err(err))
	}

	var events <-chan ports.FileEvent
	w := p.NewWatcher()
	if err := w.Start(); err != nil {
		p.Log.Error("rule folder is not watched", logger.Err(err))
	} else {
		defer w.Stop()
		events = w.Events()
	}

	mcpServer := server.NewMCPServer(
		"rudiwatch-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	loop := application.NewLoop()
	mcpadapter.RegisterReadTools(mcpServer, p.Session, loop)
	mcpadapter.RegisterWriteTools(mcpServer, p.Session, loop)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx, events, func(ev ports.FileEvent) {
			if err := p.Session.HandleEvent(gctx, ev); err != nil {
				p.Log.Warn("event not applied", logger.F("event", ev.Kind), logger.Err(err))
			}
		})
	})
	g.Go(func() error {
		defer cancel()
		return server.ServeStdio(mcpServer)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("rudiwatch-mcp: %v", err)
	}
}
