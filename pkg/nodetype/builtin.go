package nodetype

import "github.com/sohail300/pipeline/pkg/domain"

func options(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

func target(id, label string, top float64) Handle {
	return Handle{ID: id, Kind: domain.HandleTarget, Label: label, Top: top}
}

func source(id, label string, top float64) Handle {
	return Handle{ID: id, Kind: domain.HandleSource, Label: label, Top: top}
}

var inputConfig = Config{
	Title:     "Input",
	Icon:      "download",
	IconColor: "#10b981",
	Fields: []Field{
		{
			Name:          "inputName",
			Label:         "Name",
			Type:          FieldText,
			DefaultFromID: &IDDefault{Replace: domain.TypeInput + "-", With: "input_"},
			Placeholder:   "Enter input name",
		},
		{
			Name:    "inputType",
			Label:   "Type",
			Type:    FieldSelect,
			Default: "Text",
			Options: options("Text", "Text", "File", "File"),
		},
	},
	Handles: []Handle{source("value", "Output", 0)},
	Style: Style{
		BorderColor: "#10b981",
		Background:  "linear-gradient(135deg, #f0fdf4 0%, #ffffff 100%)",
	},
}

var outputConfig = Config{
	Title:     "Output",
	Icon:      "upload",
	IconColor: "#3b82f6",
	Fields: []Field{
		{
			Name:          "outputName",
			Label:         "Name",
			Type:          FieldText,
			DefaultFromID: &IDDefault{Replace: domain.TypeOutput + "-", With: "output_"},
			Placeholder:   "Enter output name",
		},
		{
			Name:    "outputType",
			Label:   "Type",
			Type:    FieldSelect,
			Default: "Text",
			Options: options("Text", "Text", "Image", "Image"),
		},
	},
	Handles: []Handle{target("value", "Input", 0)},
	Style: Style{
		BorderColor: "#3b82f6",
		Background:  "linear-gradient(135deg, #eff6ff 0%, #ffffff 100%)",
	},
}

var llmConfig = Config{
	Title:       "LLM",
	Icon:        "brain",
	IconColor:   "#8b5cf6",
	Description: "Large Language Model",
	Fields: []Field{
		{
			Name:    "model",
			Label:   "Model",
			Type:    FieldSelect,
			Default: "GPT-3.5",
			Options: options("GPT-3.5", "GPT-3.5", "GPT-4", "GPT-4", "Claude", "Claude", "Llama", "Llama"),
		},
	},
	Handles: []Handle{
		target("system", "System", 0.33),
		target("prompt", "Prompt", 0.66),
		source("response", "Response", 0),
	},
	Style: Style{
		BorderColor: "#8b5cf6",
		Background:  "linear-gradient(135deg, #f5f3ff 0%, #ffffff 100%)",
	},
}

// textConfig only carries the template node's chrome.
// Its input handles are derived from the text at render time.
var textConfig = Config{
	Title:     "Text",
	Icon:      "file-text",
	IconColor: "#f59e0b",
	Fields: []Field{
		{
			Name:        "text",
			Label:       "Text",
			Type:        FieldTextarea,
			Default:     "{{input}}",
			Placeholder: "Enter text with {{variables}}",
		},
	},
	Handles: []Handle{source("output", "Output", 0)},
	Style: Style{
		BorderColor: "#f59e0b",
		Background:  "linear-gradient(135deg, #fffbeb 0%, #ffffff 100%)",
	},
}

var transformConfig = Config{
	Title:       "Transform",
	Icon:        "refresh-cw",
	IconColor:   "#06b6d4",
	Description: "Transform and process data",
	Fields: []Field{
		{
			Name:    "operation",
			Label:   "Operation",
			Type:    FieldSelect,
			Default: "uppercase",
			Options: options(
				"uppercase", "Uppercase",
				"lowercase", "Lowercase",
				"trim", "Trim",
				"reverse", "Reverse",
				"length", "Get Length",
			),
		},
	},
	Handles: []Handle{
		target("input", "Input", 0),
		source("output", "Output", 0),
	},
	Style: Style{
		BorderColor: "#06b6d4",
		Background:  "linear-gradient(135deg, #ecfeff 0%, #ffffff 100%)",
	},
}

var conditionalConfig = Config{
	Title:       "Conditional",
	Icon:        "git-branch",
	IconColor:   "#ec4899",
	Description: "Branch based on condition",
	Fields: []Field{
		{
			Name:    "condition",
			Label:   "Condition",
			Type:    FieldSelect,
			Default: "equals",
			Options: options(
				"equals", "Equals",
				"not_equals", "Not Equals",
				"contains", "Contains",
				"greater_than", "Greater Than",
				"less_than", "Less Than",
			),
		},
		{
			Name:        "value",
			Label:       "Compare Value",
			Type:        FieldText,
			Placeholder: "Enter value to compare",
		},
	},
	Handles: []Handle{
		target("input", "Input", 0),
		source("true", "True", 0.35),
		source("false", "False", 0.65),
	},
	Style: Style{
		BorderColor: "#ec4899",
		Background:  "linear-gradient(135deg, #fdf2f8 0%, #ffffff 100%)",
	},
}

var apiConfig = Config{
	Title:       "API Call",
	Icon:        "globe",
	IconColor:   "#14b8a6",
	Description: "Make HTTP requests",
	Fields: []Field{
		{
			Name:    "method",
			Label:   "Method",
			Type:    FieldSelect,
			Default: "GET",
			Options: options("GET", "GET", "POST", "POST", "PUT", "PUT", "DELETE", "DELETE"),
		},
		{
			Name:        "url",
			Label:       "URL",
			Type:        FieldText,
			Placeholder: "https://api.example.com/endpoint",
		},
	},
	Handles: []Handle{
		target("body", "Body", 0.40),
		target("headers", "Headers", 0.70),
		source("response", "Response", 0),
	},
	Style: Style{
		BorderColor: "#14b8a6",
		Background:  "linear-gradient(135deg, #f0fdfa 0%, #ffffff 100%)",
	},
}

var databaseConfig = Config{
	Title:       "Database",
	Icon:        "database",
	IconColor:   "#f97316",
	Description: "Store and retrieve data",
	Fields: []Field{
		{
			Name:    "operation",
			Label:   "Operation",
			Type:    FieldSelect,
			Default: "read",
			Options: options("read", "Read", "write", "Write", "update", "Update", "delete", "Delete"),
		},
		{
			Name:        "table",
			Label:       "Table/Collection",
			Type:        FieldText,
			Placeholder: "Enter table name",
		},
		{
			Name:        "key",
			Label:       "Key",
			Type:        FieldText,
			Placeholder: "Primary key or ID",
		},
	},
	Handles: []Handle{
		target("data", "Data", 0),
		source("result", "Result", 0),
	},
	Style: Style{
		BorderColor: "#f97316",
		Background:  "linear-gradient(135deg, #fff7ed 0%, #ffffff 100%)",
	},
}

var delayConfig = Config{
	Title:       "Delay",
	Icon:        "clock",
	IconColor:   "#84cc16",
	Description: "Add time delay",
	Fields: []Field{
		{
			Name:        "duration",
			Label:       "Duration",
			Type:        FieldNumber,
			Default:     1000,
			Placeholder: "Milliseconds",
			Min:         ptr(0),
			Step:        ptr(100),
		},
		{
			Name:    "unit",
			Label:   "Unit",
			Type:    FieldSelect,
			Default: "ms",
			Options: options("ms", "Milliseconds", "s", "Seconds", "m", "Minutes"),
		},
		{
			Name:    "blocking",
			Label:   "Blocking",
			Type:    FieldCheckbox,
			Default: true,
		},
	},
	Handles: []Handle{
		target("trigger", "Trigger", 0),
		source("output", "Output", 0),
	},
	Style: Style{
		BorderColor: "#84cc16",
		Background:  "linear-gradient(135deg, #f7fee7 0%, #ffffff 100%)",
	},
}

// Builtin returns a registry with the nine standard node types in toolbar order.
func Builtin() *Registry {
	r := NewRegistry()
	for _, e := range []Entry{
		{Type: domain.TypeInput, Label: "Input", Config: inputConfig},
		{Type: domain.TypeLLM, Label: "LLM", Config: llmConfig},
		{Type: domain.TypeOutput, Label: "Output", Config: outputConfig},
		{Type: domain.TypeText, Label: "Text", Config: textConfig, Template: true},
		{Type: domain.TypeTransform, Label: "Transform", Config: transformConfig},
		{Type: domain.TypeConditional, Label: "Conditional", Config: conditionalConfig},
		{Type: domain.TypeAPI, Label: "API Call", Config: apiConfig},
		{Type: domain.TypeDatabase, Label: "Database", Config: databaseConfig},
		{Type: domain.TypeDelay, Label: "Delay", Config: delayConfig},
	} {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}
