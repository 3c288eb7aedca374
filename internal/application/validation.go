package application

import (
	"fmt"
	"path/filepath"
	"strings"

	"rudiwatch/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "snapshotName" -> "snapshot name")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"snapshotName": "snapshot name",
		"snapshotPath": "snapshot path",
		"nodePath":     "node path",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateSnapshotName checks that name is a plain file name that stays
// inside the snapshot directory and shows up in the recent list. Hidden
// names and .tmp files are left out of that list, so they are refused.
func ValidateSnapshotName(name string) error {
	if err := ValidateRequired("snapshotName", name); err != nil {
		return err
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return &ValidationError{
			Field:   "snapshotName",
			Message: fmt.Sprintf("must be a plain file name, got: %s", name),
		}
	}
	if strings.HasPrefix(name, ".") || strings.EqualFold(filepath.Ext(name), ".tmp") {
		return &ValidationError{
			Field:   "snapshotName",
			Message: fmt.Sprintf("must not be hidden or end in .tmp, got: %s", name),
		}
	}
	return nil
}

// ValidateRuleModel checks the structural graph handed over by the parser.
// Only *Import and *Rule can exist, so what remains to catch is missing
// nodes and labels. Duplicate sibling labels are reported separately as
// warnings because they only degrade reconciliation.
func ValidateRuleModel(model *domain.RuleModel) (duplicates []domain.IdentityPath, err error) {
	if model == nil || model.Root == nil {
		return nil, &StructuralError{Path: "", Reason: "missing root import"}
	}
	if model.Root.Name == "" {
		return nil, &StructuralError{Path: "", Reason: "root import has no label"}
	}
	err = validateChildren(model.Root, domain.IdentityPath{model.Root.Name}, &duplicates)
	return duplicates, err
}

func validateChildren(node domain.StructuralNode, path domain.IdentityPath, dups *[]domain.IdentityPath) error {
	seen := make(map[string]bool, len(node.Children()))
	for i, child := range node.Children() {
		if isNilNode(child) {
			return &StructuralError{
				Path:   path.String(),
				Reason: fmt.Sprintf("child %d is neither an import nor a rule", i),
			}
		}
		if child.Label() == "" {
			return &StructuralError{
				Path:   path.String(),
				Reason: fmt.Sprintf("child %d has no label", i),
			}
		}
		childPath := path.Child(child.Label())
		if seen[child.Label()] {
			*dups = append(*dups, childPath)
		}
		seen[child.Label()] = true
		if err := validateChildren(child, childPath, dups); err != nil {
			return err
		}
	}
	return nil
}

func isNilNode(n domain.StructuralNode) bool {
	switch v := n.(type) {
	case *domain.Import:
		return v == nil
	case *domain.Rule:
		return v == nil
	default:
		return true
	}
}
