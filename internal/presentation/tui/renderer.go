package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/render"
	"github.com/sohail300/pipeline/pkg/submit"
)

// NewRenderer returns a function that renders markdown using glamour.
// When plain is true, markdown is returned unchanged (e.g. output is not a terminal).
func NewRenderer(plain bool) func(string) (string, error) {
	if plain {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// DialogMarkdown is the submission dialog as markdown.
func DialogMarkdown(d submit.Dialog) string {
	return d.Markdown()
}

// NodeCardMarkdown describes a rendered node: header, fields with their
// current values, then input and output handles.
func NodeCardMarkdown(v render.NodeView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s `%s`\n\n", v.Title, v.ID)
	if v.Description != "" {
		fmt.Fprintf(&b, "_%s_\n\n", v.Description)
	}

	if len(v.Fields) > 0 {
		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, f := range v.Fields {
			label := f.Label
			if label == "" {
				label = f.Name
			}
			fmt.Fprintf(&b, "| %s | %s |\n", label, controlText(f.Control))
		}
		b.WriteString("\n")
	}

	if len(v.Variables) > 0 {
		fmt.Fprintf(&b, "**Variables:** %s\n\n", strings.Join(v.Variables, ", "))
	}

	writeHandles(&b, "Inputs", v.Targets())
	writeHandles(&b, "Outputs", v.Sources())
	return b.String()
}

func writeHandles(b *strings.Builder, title string, hs []render.HandleView) {
	if len(hs) == 0 {
		return
	}
	names := make([]string, 0, len(hs))
	for _, h := range hs {
		names = append(names, fmt.Sprintf("`%s`", h.ID))
	}
	fmt.Fprintf(b, "**%s:** %s\n\n", title, strings.Join(names, " "))
}

func controlText(c *render.Control) string {
	if c == nil {
		return "_(no control)_"
	}
	switch c.Kind {
	case nodetype.FieldCheckbox:
		if c.Checked {
			return "[x]"
		}
		return "[ ]"
	case nodetype.FieldSelect:
		for _, o := range c.Options {
			if o.Value == fmt.Sprint(c.Value) {
				return o.Label
			}
		}
	case nodetype.FieldTextarea:
		return strings.ReplaceAll(fmt.Sprint(c.Value), "\n", "<br>")
	}
	s := fmt.Sprint(c.Value)
	if s == "" && c.Placeholder != "" {
		return "_" + c.Placeholder + "_"
	}
	return s
}
