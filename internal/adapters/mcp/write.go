package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rudiwatch/internal/domain"
)

// RegisterWriteTools adds all session-changing tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, sess Session, r Runner) {
	s.AddTool(saveSnapshotTool(), saveSnapshotHandler(sess, r))
	s.AddTool(loadSnapshotTool(), loadSnapshotHandler(sess, r))
	s.AddTool(setLevelTool(), setLevelHandler(sess, r))
	s.AddTool(rebuildTool(), rebuildHandler(sess, r))
}

// --- save_snapshot ---

func saveSnapshotTool() mcp.Tool {
	return mcp.NewTool("save_snapshot",
		mcp.WithDescription("Save expansion and logging levels of every known rule into the snapshot folder."),
		mcp.WithString("name",
			mcp.Description("File name of the snapshot (e.g. debugging-greetings.yml)"),
			mcp.Required(),
		),
	)
}

func saveSnapshotHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("name", "")
		if name == "" {
			return toolError(fmt.Errorf("name is required"))
		}

		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			path, err := sess.Save(name)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText("Saved " + path), nil
		})
	}
}

// --- load_snapshot ---

func loadSnapshotTool() mcp.Tool {
	return mcp.NewTool("load_snapshot",
		mcp.WithDescription("Replace the remembered logging state with a saved snapshot and apply it to the rule tree."),
		mcp.WithString("path",
			mcp.Description("Path of the snapshot file, as listed by list_snapshots"),
			mcp.Required(),
		),
	)
}

func loadSnapshotHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return toolError(fmt.Errorf("path is required"))
		}

		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			if err := sess.Load(path); err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText("Loaded " + path), nil
		})
	}
}

// --- set_level ---

func setLevelTool() mcp.Tool {
	return mcp.NewTool("set_level",
		mcp.WithDescription("Set the logging level of a rule. On an import the level is set on every rule below it."),
		mcp.WithString("path",
			mcp.Description("Identity path of the node (e.g. main/Greetings/greet)"),
			mcp.Required(),
		),
		mcp.WithString("level",
			mcp.Description("One of never, ifTrue, ifFalse, always"),
			mcp.Required(),
		),
	)
}

func setLevelHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := domain.ParsePath(req.GetString("path", ""))
		if len(path) == 0 {
			return toolError(fmt.Errorf("path is required"))
		}
		level, err := domain.ParseLoggingLevel(req.GetString("level", ""))
		if err != nil {
			return toolError(err)
		}
		if level == domain.LevelPartly {
			return toolError(fmt.Errorf("level partly is derived and cannot be set"))
		}

		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			tree := sess.Tree()
			id, ok := tree.Find(path)
			if !ok {
				return toolError(fmt.Errorf("no node at %s", path))
			}

			if tree.Node(id).IsRule() {
				err = sess.SetLevel(path, level)
			} else {
				err = sess.SetSubtreeLevel(path, level)
			}
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s logs %s", path, level)), nil
		})
	}
}

// --- rebuild ---

func rebuildTool() mcp.Tool {
	return mcp.NewTool("rebuild",
		mcp.WithDescription("Reload the rule model from disk and rebuild the tree, keeping remembered attributes."),
	)
}

func rebuildHandler(sess Session, r Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return inLoop(ctx, r, func() (*mcp.CallToolResult, error) {
			if err := sess.Rebuild(ctx); err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("Rebuilt %d nodes", sess.Tree().Len())), nil
		})
	}
}
