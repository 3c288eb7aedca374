package ports

import "rudiwatch/internal/domain"

// Notifier receives the outcome of rebuilds and usage reclassification
type Notifier interface {
	RebuildCompleted(tree *domain.Tree)
	FileUsageChanged(path string, usage domain.Usage)
}

// NopNotifier ignores every notification
type NopNotifier struct{}

func (NopNotifier) RebuildCompleted(*domain.Tree)         {}
func (NopNotifier) FileUsageChanged(string, domain.Usage) {}
