package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
	"github.com/sohail300/pipeline/pkg/render"
)

type fieldEvent struct {
	node, field string
	value       any
}

func recorder(events *[]fieldEvent) render.FieldChangeFunc {
	return func(node, field string, value any) {
		*events = append(*events, fieldEvent{node, field, value})
	}
}

func lookup(t *testing.T, nodeType, id string) nodetype.Config {
	t.Helper()
	cfg, ok := nodetype.Builtin().Lookup(nodeType, id)
	require.True(t, ok)
	return cfg
}

func TestBaseNode_Seeding(t *testing.T) {
	cfg := lookup(t, domain.TypeDelay, "delay-1")

	t.Run("Defaults When Absent", func(t *testing.T) {
		n := render.NewBaseNode("delay-1", domain.NewInitialData("delay-1", domain.TypeDelay), cfg, nil)
		assert.Equal(t, map[string]any{"duration": 1000, "unit": "ms", "blocking": true}, n.Values())
	})

	t.Run("Data Wins Over Default", func(t *testing.T) {
		data := domain.NewInitialData("delay-1", domain.TypeDelay)
		require.NoError(t, data.Set("unit", "s"))
		require.NoError(t, data.Set("blocking", false))

		n := render.NewBaseNode("delay-1", data, cfg, nil)
		v, _ := n.Value("unit")
		assert.Equal(t, "s", v)
		v, _ = n.Value("blocking")
		assert.Equal(t, false, v, "a present false is not replaced by the default")
	})

	t.Run("Empty Without Default", func(t *testing.T) {
		api := lookup(t, domain.TypeAPI, "api-1")
		n := render.NewBaseNode("api-1", domain.NewInitialData("api-1", domain.TypeAPI), api, nil)
		v, ok := n.Value("url")
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("Name Derived From ID", func(t *testing.T) {
		in := lookup(t, domain.TypeInput, "customInput-4")
		n := render.NewBaseNode("customInput-4", domain.NewInitialData("customInput-4", domain.TypeInput), in, nil)
		v, _ := n.Value("inputName")
		assert.Equal(t, "input_4", v)
	})
}

func TestBaseNode_SetField(t *testing.T) {
	var events []fieldEvent
	cfg := lookup(t, domain.TypeLLM, "llm-1")
	n := render.NewBaseNode("llm-1", domain.NewInitialData("llm-1", domain.TypeLLM), cfg, recorder(&events))

	require.NoError(t, n.SetField("model", "Claude"))
	v, _ := n.Value("model")
	assert.Equal(t, "Claude", v)
	assert.Equal(t, []fieldEvent{{"llm-1", "model", "Claude"}}, events)

	err := n.SetField("temperature", 0.2)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	assert.Len(t, events, 1)
}

func TestBaseNode_SetFieldWithoutCallback(t *testing.T) {
	cfg := lookup(t, domain.TypeLLM, "llm-1")
	n := render.NewBaseNode("llm-1", nil, cfg, nil)

	require.NoError(t, n.SetField("model", "Llama"))
	v, _ := n.Value("model")
	assert.Equal(t, "Llama", v)
}

func TestBaseNode_View(t *testing.T) {
	var events []fieldEvent
	cfg := lookup(t, domain.TypeConditional, "conditional-1")
	n := render.NewBaseNode("conditional-1", domain.NewInitialData("conditional-1", domain.TypeConditional), cfg, recorder(&events))

	v := n.View()
	assert.Equal(t, "Conditional", v.Title)
	assert.Equal(t, "Branch based on condition", v.Description)
	assert.Equal(t, "#ec4899", v.Style.BorderColor)
	assert.Equal(t, render.MinNodeWidth, v.MinWidth)

	require.Len(t, v.Fields, 2)
	assert.Equal(t, "condition", v.Fields[0].Name)
	assert.Equal(t, "value", v.Fields[1].Name)

	targets, sources := v.Targets(), v.Sources()
	require.Len(t, targets, 1)
	require.Len(t, sources, 2)
	assert.Equal(t, "conditional-1-input", targets[0].ID)
	assert.Equal(t, render.SideLeft, targets[0].Side)
	assert.Equal(t, 0.5, targets[0].Top, "no hint means evenly spaced")
	assert.Equal(t, "conditional-1-true", sources[0].ID)
	assert.Equal(t, 0.35, sources[0].Top)
	assert.Equal(t, render.SideRight, sources[1].Side)

	// Controls write back through the node.
	v.Fields[1].Control.Change("42")
	got, _ := n.Value("value")
	assert.Equal(t, "42", got)
	assert.Equal(t, []fieldEvent{{"conditional-1", "value", "42"}}, events)
}

func TestBaseNode_UnknownFieldTypeKeepsLabel(t *testing.T) {
	cfg := nodetype.Config{
		Title:  "Custom",
		Fields: []nodetype.Field{{Name: "color", Label: "Color", Type: "color"}},
	}
	n := render.NewBaseNode("custom-1", domain.NewInitialData("custom-1", "custom"), cfg, nil)

	v := n.View()
	require.Len(t, v.Fields, 1)
	assert.Equal(t, "Color", v.Fields[0].Label)
	assert.Nil(t, v.Fields[0].Control)
}
