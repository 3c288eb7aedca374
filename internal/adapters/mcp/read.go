package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rudiwatch/internal/domain"
)

// RegisterReadTools adds all read-only session tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, sess Session, r Runner) {
	s.AddTool(ruleTreeTool(), ruleTreeHandler(sess, r))
	s.AddTool(memoryTreeTool(), memoryTreeHandler(sess, r))
	s.AddTool(listSnapshotsTool(), listSnapshotsHandler(sess, r))
	s.AddTool(fileUsageTool(), fileUsageHandler(sess, r))
}

// --- rule_tree ---

func ruleTreeTool() mcp.Tool {
	return mcp.NewTool("rule_tree",
		mcp.WithDescription("Display the current rule hierarchy with logging levels. Imports show the level derived from their rules."),
		mcp.WithString("path",
			mcp.Description("Identity path of the subtree to show (e.g. main/Greetings). Omit for the whole tree."),
		),
	)
}

func ruleTreeHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := domain.ParsePath(req.GetString("path", ""))

		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			tree := sess.Tree()
			if tree.Len() == 0 {
				return mcp.NewToolResultText("No rule model loaded."), nil
			}

			start := tree.Root()
			if len(path) > 0 {
				id, ok := tree.Find(path)
				if !ok {
					return toolError(fmt.Errorf("no node at %s", path))
				}
				start = id
			}

			var sb strings.Builder
			base := tree.Depth(start)
			tree.WalkFrom(start, func(id domain.NodeID) {
				renderNode(&sb, tree, id, tree.Depth(id)-base)
			})
			return mcp.NewToolResultText(sb.String()), nil
		})
	}
}

func renderNode(sb *strings.Builder, tree *domain.Tree, id domain.NodeID, depth int) {
	node := tree.Node(id)
	indent := strings.Repeat("  ", depth)
	if node.IsRule() {
		fmt.Fprintf(sb, "%s%s  %s  line %d\n", indent, node.Label, node.Level, node.Line)
		return
	}
	fmt.Fprintf(sb, "%s%s/  %s  %s\n", indent, node.Label, domain.Aggregate(tree, id), node.File)
}

// --- memory_tree ---

func memoryTreeTool() mcp.Tool {
	return mcp.NewTool("memory_tree",
		mcp.WithDescription("Display every remembered node with its stored attributes, including nodes no longer present in the rule model."),
	)
}

func memoryTreeHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(sess.Memory().String()), nil
		})
	}
}

// --- list_snapshots ---

func listSnapshotsTool() mcp.Tool {
	return mcp.NewTool("list_snapshots",
		mcp.WithDescription("List the most recently saved logging snapshots, newest first."),
	)
}

func listSnapshotsHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			entries, err := sess.RecentSnapshots()
			if err != nil {
				return toolError(err)
			}
			return formatEntries(entries, func(e domain.SnapshotEntry) string {
				return fmt.Sprintf("%s  %s", e.ModTime.Format("2006-01-02 15:04:05"), e.Path)
			})
		})
	}
}

// --- file_usage ---

func fileUsageTool() mcp.Tool {
	return mcp.NewTool("file_usage",
		mcp.WithDescription("List tracked files of the rule folder and how the current rule model uses them."),
		mcp.WithString("usage",
			mcp.Description("Only show one tag: main, wrapper, used, unused, folder or unknown"),
		),
	)
}

func fileUsageHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := req.GetString("usage", "")

		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			var entries []domain.UsageChange
			for _, e := range sess.Usage() {
				if filter == "" || e.Usage.String() == filter {
					entries = append(entries, e)
				}
			}
			return formatEntries(entries, func(e domain.UsageChange) string {
				return fmt.Sprintf("%-8s %s", e.Usage, e.Path)
			})
		})
	}
}

// --- helpers ---

func formatEntries[T any](entries []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entries) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}
