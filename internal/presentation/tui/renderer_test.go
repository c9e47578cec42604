package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/render"
	"github.com/sohail300/pipeline/pkg/submit"
)

func TestNodeCardMarkdown(t *testing.T) {
	cfg, ok := nodetype.Builtin().Lookup(domain.TypeDelay, "delay-1")
	require.True(t, ok)
	n := render.NewBaseNode("delay-1", domain.NewInitialData("delay-1", domain.TypeDelay), cfg, nil)

	md := NodeCardMarkdown(n.View())
	assert.Contains(t, md, "### Delay `delay-1`")
	assert.Contains(t, md, "| Duration | 1000 |")
	assert.Contains(t, md, "| Unit | Milliseconds |")
	assert.Contains(t, md, "| Blocking | [x] |")
	assert.Contains(t, md, "**Inputs:** `delay-1-trigger`")
	assert.Contains(t, md, "**Outputs:** `delay-1-output`")
}

func TestNodeCardMarkdown_Template(t *testing.T) {
	cfg, _ := nodetype.Builtin().Lookup(domain.TypeText, "text-1")
	n := render.NewTemplateNode("text-1", nil, cfg, nil)
	n.SetText("{{a}}\n{{b}}")

	md := NodeCardMarkdown(n.View())
	assert.Contains(t, md, "**Variables:** a, b")
	assert.Contains(t, md, "{{a}}<br>{{b}}")
	assert.Contains(t, md, "**Inputs:** `a` `b`")
}

func TestNewRenderer_Plain(t *testing.T) {
	r := NewRenderer(true)
	d := submit.SuccessDialog(domain.ParseResult{NumNodes: 1, IsDAG: true}, nil)
	out, err := r(DialogMarkdown(d))
	require.NoError(t, err)
	assert.Contains(t, out, "Pipeline Analysis")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Greater(t, buf.Len(), 0)
}
