/*
Package pipeline is the headless core of a drag-and-drop pipeline editor.

Users drop typed processing nodes (input, output, LLM, text template,
transform, conditional, API call, database, delay) onto a canvas, wire their
handles together and submit the graph to an external validation service,
which answers with node and edge counts and whether the graph is a DAG.

# Concept

Every node kind except one is pure data: a nodetype.Config lists the title,
fields and handles, and a single generic renderer draws any of them. The text
node is the exception. Its input handles are the {{placeholders}} found in its
text, so typing a new placeholder adds a connectable handle and existing
edges survive edits that keep their placeholder.

The graph itself lives in a ports.GraphStore. The Editor never keeps a second
copy of it; renderers only hold the per-field values being edited.

# Usage

	ed, err := pipeline.New(pipeline.WithValidatorURL("http://localhost:8000"))
	if err != nil {
		log.Fatal(err)
	}
	defer ed.Close()

	ctx := context.Background()
	node, _ := ed.Drop(ctx, canvas.DropEvent{
		ClientX: 100, ClientY: 100,
		Data:    canvas.StartDrag(domain.TypeText),
	})
	_ = ed.SetText(node.ID, "Summarize {{document}} for {{audience}}")

	view, _ := ed.View(node.ID)
	fmt.Println(view.Variables) // [document audience]

	dialog := ed.Submit(ctx)
	fmt.Println(dialog.Title)

# Adapters

The memory adapter is the default store. The redis adapter can replace its
id allocator so several editor processes hand out distinct node ids. The
pipeline CLI exposes the editor over HTTP (chi) and MCP (mcp-go).
*/
package pipeline
