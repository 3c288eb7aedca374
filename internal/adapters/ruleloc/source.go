package ruleloc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"rudiwatch/internal/adapters/filesystem"
	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/logger"
	"rudiwatch/internal/ports"
)

// Source implements ports.RuleModelSource over a rule location file
type Source struct {
	path    string
	wrapper string
	parser  *Parser
}

var _ ports.RuleModelSource = (*Source)(nil)

// NewSource reads the rule location file at path and resolves import
// labels through repo. wrapper may be empty.
func NewSource(path, wrapper string, repo *filesystem.Repository, log logger.Logger) *Source {
	return &Source{
		path:    path,
		wrapper: wrapper,
		parser:  NewParser(repo.FindSource, log),
	}
}

// Load reads and parses the file from scratch
func (s *Source) Load(ctx context.Context) (*domain.RuleModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("rule location file %s: %w", s.path, application.ErrNotFound)
	}
	if err != nil {
		return nil, &application.IOError{Op: "read", Path: s.path, Err: err}
	}

	model, err := s.parser.Parse(data)
	if err != nil {
		return nil, err
	}
	model.WrapperFile = s.wrapper
	return model, nil
}
