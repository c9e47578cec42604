package placeholder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sohail300/pipeline/pkg/placeholder"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"Single", "{{input}}", []string{"input"}},
		{"Whitespace Inside Braces", "Hello {{ name }}!", []string{"name"}},
		{"First Seen Order", "{{b}} then {{a}} then {{b}}", []string{"b", "a"}},
		{"Dedup", "{{x}} ... {{x}}", []string{"x"}},
		{"Dollar And Underscore", "{{$ctx}} {{_tmp1}}", []string{"$ctx", "_tmp1"}},
		{"Leading Digit Rejected", "{{1abc}}", nil},
		{"Unmatched Braces", "{{open and }} {close}}", nil},
		{"Invalid Characters", "{{first-name}} {{a.b}}", nil},
		{"Nested Braces", "{{{inner}}}", []string{"inner"}},
		{"Multiline", "line {{one}}\nline {{two}}", []string{"one", "two"}},
		{"Empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, placeholder.Extract(tt.text))
		})
	}
}

func TestExtract_Stable(t *testing.T) {
	text := "{{a}} {{b}}"
	first := placeholder.Extract(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, placeholder.Extract(text))
	}
	assert.Equal(t, []string{"a", "b"}, first)

	// Appending a new placeholder never reorders existing ones.
	assert.Equal(t, []string{"a", "b", "c"}, placeholder.Extract(text+" {{c}} {{a}}"))
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		vars  int
		width int
		high  int
	}{
		{"Empty", "", 0, 220, 100},
		{"Default Text", "{{input}}", 1, 238, 108},
		{"Clamped Width", string(make([]byte, 400)), 0, 500, 100},
		{"Three Lines", "a\nb\nc", 0, 230, 140},
		{"Vars Add Height", "a\nb", 5, 226, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placeholder.Measure(tt.text, tt.vars)
			assert.Equal(t, tt.width, got.Width)
			assert.Equal(t, tt.high, got.Height)
		})
	}
}

func TestMeasure_Monotonic(t *testing.T) {
	a := "{{a}}"
	prev := placeholder.Measure(a, len(placeholder.Extract(a)))
	for _, suffix := range []string{"x", "yy", "{{b}}", "zzzzzzzzzz", "\nmore"} {
		a += suffix
		next := placeholder.Measure(a, len(placeholder.Extract(a)))
		assert.GreaterOrEqual(t, next.Width, prev.Width)
		assert.GreaterOrEqual(t, next.Height, prev.Height)
		prev = next
	}
}

func TestRows(t *testing.T) {
	assert.Equal(t, 3, placeholder.Rows("one line"))
	assert.Equal(t, 5, placeholder.Rows("1\n2\n3\n4\n5"))
}
