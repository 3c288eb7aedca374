package commands

import (
	"context"
	"fmt"

	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"
)

// BuildHierarchy converts a structural graph into a new presentation tree
// of the same shape. Every node starts collapsed except the root; rules
// carry their compiled logging level. The function never returns a
// partially built tree: on error the result is nil.
func BuildHierarchy(root *domain.Import) (*domain.Tree, error) {
	if root == nil {
		return nil, &application.StructuralError{Reason: "missing root import"}
	}

	tree := domain.NewTree(domain.PresentationNode{
		Label:    root.Name,
		Kind:     domain.KindImport,
		File:     root.File,
		Line:     root.Line,
		Expanded: true,
	})
	path := domain.IdentityPath{root.Name}
	for i, child := range root.Nodes {
		if err := addNode(tree, tree.Root(), child, path, i); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func addNode(tree *domain.Tree, parent domain.NodeID, node domain.StructuralNode, path domain.IdentityPath, index int) error {
	var pn domain.PresentationNode
	switch n := node.(type) {
	case *domain.Import:
		if n == nil {
			return inconsistent(path, index)
		}
		pn = domain.PresentationNode{
			Label: n.Name,
			Kind:  domain.KindImport,
			File:  n.File,
			Line:  n.Line,
		}
	case *domain.Rule:
		if n == nil {
			return inconsistent(path, index)
		}
		pn = domain.PresentationNode{
			Label:    n.Name,
			Kind:     domain.KindRule,
			Line:     n.Line,
			Level:    n.Level,
			HasLevel: true,
		}
	default:
		return inconsistent(path, index)
	}

	id := tree.Add(parent, pn)
	childPath := path.Child(pn.Label)
	for i, child := range node.Children() {
		if err := addNode(tree, id, child, childPath, i); err != nil {
			return err
		}
	}
	return nil
}

func inconsistent(path domain.IdentityPath, index int) error {
	return &application.StructuralError{
		Path:   path.String(),
		Reason: fmt.Sprintf("child %d is neither an import nor a rule", index),
	}
}

// BuildTreeResult holds a compiled model together with its fresh tree
type BuildTreeResult struct {
	Model      *domain.RuleModel
	Tree       *domain.Tree
	Duplicates []domain.IdentityPath
}

// BuildTreeCommand loads the latest rule model and builds its tree
type BuildTreeCommand struct {
	source ports.RuleModelSource
}

// NewBuildTreeCommand creates a new BuildTreeCommand
func NewBuildTreeCommand(source ports.RuleModelSource) *BuildTreeCommand {
	return &BuildTreeCommand{source: source}
}

// Execute runs the build tree command
func (c *BuildTreeCommand) Execute(ctx context.Context) (*BuildTreeResult, error) {
	model, err := c.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rule model: %w", err)
	}

	dups, err := application.ValidateRuleModel(model)
	if err != nil {
		return nil, err
	}

	tree, err := BuildHierarchy(model.Root)
	if err != nil {
		return nil, err
	}

	return &BuildTreeResult{Model: model, Tree: tree, Duplicates: dups}, nil
}
