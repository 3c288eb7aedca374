package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rudiwatch/internal/domain"
)

var treeVisibleOnly bool

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Display the rule hierarchy",
	Long: `Display the rule hierarchy of the project with logging levels.
Imports show the level derived from the rules below them.

Examples:
  rudiwatch-cli tree
  rudiwatch-cli tree Main/Dialogue`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := GetProject()
		if err := p.Seed(cmd.Context()); err != nil {
			return err
		}

		tree := p.Session.Tree()
		start := tree.Root()
		if len(args) == 1 {
			id, ok := tree.Find(domain.ParsePath(args[0]))
			if !ok {
				return fmt.Errorf("no node at %s", args[0])
			}
			start = id
		}

		printTree(cmd.OutOrStdout(), tree, start, treeVisibleOnly)
		return nil
	},
}

func printTree(w io.Writer, tree *domain.Tree, start domain.NodeID, visibleOnly bool) {
	base := tree.Depth(start)
	tree.WalkFrom(start, func(id domain.NodeID) {
		if visibleOnly && !visible(tree, start, id) {
			return
		}
		node := tree.Node(id)
		indent := strings.Repeat("  ", tree.Depth(id)-base)
		if node.IsRule() {
			fmt.Fprintf(w, "%s%s  %s  :%d\n", indent, node.Label, node.Level, node.Line)
		} else {
			fmt.Fprintf(w, "%s%s/  %s\n", indent, node.Label, domain.Aggregate(tree, id))
		}
	})
}

// visible reports whether every ancestor of id up to start is expanded
func visible(tree *domain.Tree, start, id domain.NodeID) bool {
	for cur := id; cur != start; {
		cur = tree.Parent(cur)
		if !tree.Node(cur).Expanded {
			return false
		}
	}
	return true
}

func init() {
	treeCmd.Flags().BoolVar(&treeVisibleOnly, "visible", false, "only show nodes below expanded imports")
	rootCmd.AddCommand(treeCmd)
}
