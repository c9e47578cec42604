// Package placeholder extracts {{name}} variables from template text and
// derives the template node's display size from its content.
package placeholder

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var pattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_$][a-zA-Z0-9_$]*)\s*\}\}`)

// Extract returns the unique placeholder names in order of first appearance.
// Malformed placeholders are not matched.
func Extract(text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	vars := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		vars = append(vars, name)
	}
	return vars
}

// Sizing bounds, in pixels.
const (
	MinWidth  = 220
	MaxWidth  = 500
	MinHeight = 100
)

// Size is the auto-fit footprint of a template node.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Measure computes the node size for text with varCount extracted variables.
// It grows with text length, line count and variable count.
func Measure(text string, varCount int) Size {
	width := MinWidth + 2*utf8.RuneCountInString(text)
	if width > MaxWidth {
		width = MaxWidth
	}
	height := 80 + 20*Lines(text) + 8*varCount
	if height < MinHeight {
		height = MinHeight
	}
	return Size{Width: width, Height: height}
}

// Lines returns the number of newline-delimited segments, at least one.
func Lines(text string) int {
	return strings.Count(text, "\n") + 1
}

// Rows is the textarea height in rows for text.
func Rows(text string) int {
	return max(3, Lines(text))
}
