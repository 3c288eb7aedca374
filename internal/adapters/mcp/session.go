package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"rudiwatch/internal/domain"
)

// Session is the part of a project session the tools expose
type Session interface {
	Tree() *domain.Tree
	Memory() *domain.MemoryNode
	Usage() []domain.UsageChange
	RecentSnapshots() ([]domain.SnapshotEntry, error)
	Rebuild(ctx context.Context) error
	Save(name string) (string, error)
	Load(path string) error
	SetLevel(path domain.IdentityPath, level domain.LoggingLevel) error
	SetSubtreeLevel(path domain.IdentityPath, level domain.LoggingLevel) error
}

// Runner executes fn on the goroutine that owns the session.
// application.Loop implements it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// inLoop runs a handler body on the session goroutine
func inLoop(ctx context.Context, r Runner, fn func() (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	var (
		res *mcp.CallToolResult
		err error
	)
	if doErr := r.Do(ctx, func() { res, err = fn() }); doErr != nil {
		return toolError(doErr)
	}
	return res, err
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
