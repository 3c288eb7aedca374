package domain

// NodeKind tags the two kinds of structural nodes
type NodeKind int

const (
	KindImport NodeKind = iota
	KindRule
)

// String returns the lowercase kind name
func (k NodeKind) String() string {
	if k == KindRule {
		return "rule"
	}
	return "import"
}

// StructuralNode is a node of the parser-produced Import/Rule graph.
// The set of implementations is closed: only *Import and *Rule satisfy it.
type StructuralNode interface {
	Label() string
	Kind() NodeKind
	Children() []StructuralNode
	structural()
}

// Import is a rule file pulled in by its parent import
type Import struct {
	Name  string
	File  string // absolute path of the imported file, empty if unresolved
	Line  int    // line of the import statement in the parent file
	Nodes []StructuralNode
}

// Rule is a single rule; rules may contain sub-rules
type Rule struct {
	Name  string
	Line  int
	Level LoggingLevel
	Nodes []StructuralNode
}

func (i *Import) Label() string              { return i.Name }
func (i *Import) Kind() NodeKind             { return KindImport }
func (i *Import) Children() []StructuralNode { return i.Nodes }
func (*Import) structural()                  {}

func (r *Rule) Label() string              { return r.Name }
func (r *Rule) Kind() NodeKind             { return KindRule }
func (r *Rule) Children() []StructuralNode { return r.Nodes }
func (*Rule) structural()                  {}

// RuleModel is one compile's output: the structural graph plus the files
// it refers to.
type RuleModel struct {
	Root        *Import
	MainFile    string
	WrapperFile string
	ImportFiles []string
}

// ReferencesFile reports whether path is one of the imported files
func (m *RuleModel) ReferencesFile(path string) bool {
	for _, f := range m.ImportFiles {
		if f == path {
			return true
		}
	}
	return false
}
