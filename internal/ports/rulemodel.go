package ports

import (
	"context"

	"rudiwatch/internal/domain"
)

// RuleModelSource hands out the latest compiled Import/Rule graph. Every
// call returns a freshly built graph; nothing is shared between calls.
type RuleModelSource interface {
	Load(ctx context.Context) (*domain.RuleModel, error)
}
