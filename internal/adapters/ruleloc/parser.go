// Package ruleloc reads the rule location file the rule compiler writes
// next to its output and turns it into the Import/Rule graph.
//
// The file is a single-key YAML mapping naming the main import:
//
//	Main:
//	  Greeting: 12          # rule defined on line 12
//	  Dialogue:             # imported file
//	    ImportWasInLine: 3
//	    Ask:
//	      RuleWasInLine: 8  # rule with sub-rules
//	      AskAgain: 14
//	  Broken: "error text"  # skipped
package ruleloc

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/logger"
)

const (
	importLineKey = "ImportWasInLine"
	ruleLineKey   = "RuleWasInLine"
)

// Resolver maps an import label to the file that defines it
type Resolver func(label string) (string, bool)

// Parser converts rule location documents into rule models
type Parser struct {
	resolve Resolver
	log     logger.Logger
}

// NewParser creates a parser. A nil resolver leaves import files empty.
func NewParser(resolve Resolver, log logger.Logger) *Parser {
	if resolve == nil {
		resolve = func(string) (string, bool) { return "", false }
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Parser{resolve: resolve, log: log}
}

// Parse decodes data and builds the graph. The model's main file is the
// root import's file; imported files are listed in document order.
func (p *Parser) Parse(data []byte) (*domain.RuleModel, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &application.StructuralError{Reason: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, &application.StructuralError{Reason: "empty rule location file"}
	}

	top := doc.Content[0]
	if top.Kind != yaml.MappingNode || len(top.Content) < 2 {
		return nil, &application.StructuralError{Reason: "expected a mapping with the main file as its only key"}
	}
	if len(top.Content) > 2 {
		p.log.Warn("more than one main file, using the first", logger.F("main", top.Content[0].Value))
	}

	name, body := top.Content[0].Value, top.Content[1]
	if body.Kind != yaml.MappingNode {
		return nil, &application.StructuralError{Path: name, Reason: "main file is not a mapping"}
	}

	model := &domain.RuleModel{}
	root, err := p.parseImport(model, name, body, domain.IdentityPath{name})
	if err != nil {
		return nil, err
	}
	model.Root = root
	model.MainFile = root.File
	return model, nil
}

func (p *Parser) parseImport(model *domain.RuleModel, name string, body *yaml.Node, path domain.IdentityPath) (*domain.Import, error) {
	imp := &domain.Import{Name: name}
	if file, ok := p.resolve(name); ok {
		imp.File = file
		if len(path) > 1 {
			model.ImportFiles = append(model.ImportFiles, file)
		}
	} else {
		p.log.Debug("no source file for import", logger.F("import", name))
	}

	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		if key.Value == importLineKey {
			line, err := lineOf(val, path)
			if err != nil {
				return nil, err
			}
			imp.Line = line
			continue
		}
		child, err := p.parseNode(model, key.Value, val, path.Child(key.Value))
		if err != nil {
			return nil, err
		}
		if child != nil {
			imp.Nodes = append(imp.Nodes, child)
		}
	}
	return imp, nil
}

func (p *Parser) parseRule(model *domain.RuleModel, name string, body *yaml.Node, path domain.IdentityPath) (*domain.Rule, error) {
	rule := &domain.Rule{Name: name, Level: domain.LevelNever}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key, val := body.Content[i], body.Content[i+1]
		if key.Value == ruleLineKey {
			line, err := lineOf(val, path)
			if err != nil {
				return nil, err
			}
			rule.Line = line
			continue
		}
		child, err := p.parseNode(model, key.Value, val, path.Child(key.Value))
		if err != nil {
			return nil, err
		}
		if child != nil {
			rule.Nodes = append(rule.Nodes, child)
		}
	}
	return rule, nil
}

// parseNode returns nil for entries that carry no node
func (p *Parser) parseNode(model *domain.RuleModel, name string, val *yaml.Node, path domain.IdentityPath) (domain.StructuralNode, error) {
	switch val.Kind {
	case yaml.MappingNode:
		if hasKey(val, ruleLineKey) {
			return p.parseRule(model, name, val, path)
		}
		return p.parseImport(model, name, val, path)
	case yaml.ScalarNode:
		if val.Tag == "!!int" {
			line, err := lineOf(val, path)
			if err != nil {
				return nil, err
			}
			return &domain.Rule{Name: name, Line: line, Level: domain.LevelNever}, nil
		}
		if val.Tag != "!!null" {
			p.log.Warn("compiler reported a problem", logger.F("path", path.String()), logger.F("message", val.Value))
		}
		return nil, nil
	default:
		return nil, &application.StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("line %d: neither an import nor a rule", val.Line),
		}
	}
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

func lineOf(n *yaml.Node, path domain.IdentityPath) (int, error) {
	line, err := strconv.Atoi(n.Value)
	if n.Kind != yaml.ScalarNode || err != nil {
		return 0, &application.StructuralError{
			Path:   path.String(),
			Reason: fmt.Sprintf("line %d: expected a line number", n.Line),
		}
	}
	return line, nil
}
