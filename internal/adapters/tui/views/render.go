package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"rudiwatch/internal/adapters/tui/styles"
)

// ViewBuilder assembles a screen top to bottom
type ViewBuilder struct {
	b strings.Builder
}

func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

// Title and Subtitle are followed by an empty line
func (v *ViewBuilder) Title(s string) *ViewBuilder {
	return v.Raw(styles.Title.Render(s) + "\n\n")
}

func (v *ViewBuilder) Subtitle(s string) *ViewBuilder {
	return v.Raw(styles.Subtitle.Render(s) + "\n\n")
}

func (v *ViewBuilder) Line(s string) *ViewBuilder {
	return v.Raw(s + "\n")
}

func (v *ViewBuilder) BlankLine() *ViewBuilder {
	return v.Raw("\n")
}

func (v *ViewBuilder) Muted(s string) *ViewBuilder {
	return v.Line(styles.MutedText.Render(s))
}

// Message writes the status line of a view, if there is one
func (v *ViewBuilder) Message(msg string, isErr bool) *ViewBuilder {
	if msg == "" {
		return v
	}
	return v.Raw(renderMessage(msg, isErr) + "\n\n")
}

// Help writes "key desc" pairs for the bindings on one line
func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return v.Raw(strings.Join(parts, styles.HelpSeparator.String()))
}

func (v *ViewBuilder) Raw(s string) *ViewBuilder {
	v.b.WriteString(s)
	return v
}

func (v *ViewBuilder) String() string {
	return styles.App.Render(v.b.String())
}

func renderMessage(msg string, isErr bool) string {
	if isErr {
		return styles.ErrorMsg.Render(msg)
	}
	return styles.Success.Render(msg)
}
