package render

import (
	"fmt"

	"github.com/sohail300/pipeline/pkg/nodetype"
)

const defaultTextareaRows = 3

// Control is a rendered input control bound to a change callback.
type Control struct {
	Kind        nodetype.FieldType `json:"kind"`
	Value       any                `json:"value"`
	Checked     bool               `json:"checked,omitempty"`
	Placeholder string             `json:"placeholder,omitempty"`
	Options     []nodetype.Option  `json:"options,omitempty"`
	Min         *float64           `json:"min,omitempty"`
	Max         *float64           `json:"max,omitempty"`
	Step        *float64           `json:"step,omitempty"`
	Rows        int                `json:"rows,omitempty"`

	onChange func(any)
}

// Change reports a raw value from the control. Nothing is validated.
func (c *Control) Change(raw any) {
	if c.onChange != nil {
		c.onChange(raw)
	}
}

// Toggle reports the inverse of the current checked state.
func (c *Control) Toggle() {
	c.Change(!c.Checked)
}

// RenderField builds the control for f showing current.
// It returns nil for field types it does not know.
func RenderField(f nodetype.Field, current any, onChange func(any)) *Control {
	c := &Control{
		Kind:        f.Type,
		Value:       current,
		Placeholder: f.Placeholder,
		onChange:    onChange,
	}
	switch f.Type {
	case nodetype.FieldText:
		c.Value = display(current)
	case nodetype.FieldTextarea:
		c.Value = display(current)
		c.Rows = f.Rows
		if c.Rows == 0 {
			c.Rows = defaultTextareaRows
		}
	case nodetype.FieldSelect:
		c.Value = display(current)
		c.Options = append([]nodetype.Option(nil), f.Options...)
		c.Placeholder = ""
	case nodetype.FieldNumber:
		c.Min, c.Max, c.Step = f.Min, f.Max, f.Step
	case nodetype.FieldCheckbox:
		b, _ := current.(bool)
		c.Checked = b
		c.Value = b
		c.Placeholder = ""
	default:
		return nil
	}
	return c
}

func display(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}
