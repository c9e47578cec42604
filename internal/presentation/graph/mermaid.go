package graph

import (
	"fmt"
	"strings"

	"github.com/sohail300/pipeline/pkg/domain"
	"github.com/sohail300/pipeline/pkg/nodetype"
)

// GraphOverlay contains UI state to visualize on the graph.
type GraphOverlay struct {
	// Registry supplies titles and per-type colors. Optional.
	Registry *nodetype.Registry
	// Highlight marks nodes, typically the current selection.
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart of the canvas graph, left to right.
// It applies semantic styling:
// - Input: [/Parallelogram/]
// - Output: [\Parallelogram\]
// - Conditional: {Rhombus}
// - Text (template): [[Subroutine]]
// - Default: [Rectangle]
// Edges are labeled with their handle names when they are not the node's only handle.
func GenerateMermaid(nodes []domain.NodeRecord, edges []domain.EdgeRecord, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	var reg *nodetype.Registry
	if overlay != nil {
		reg = overlay.Registry
	}

	types := make(map[string]bool)
	var order []string
	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.TypeInput:
			opener, closer = "[/", "/]"
		case domain.TypeOutput:
			opener, closer = "[\\", "\\]"
		case domain.TypeConditional:
			opener, closer = "{", "}"
		case domain.TypeText:
			opener, closer = "[[", "]]"
		}

		label := node.ID
		if reg != nil {
			if e, ok := reg.Entry(node.Type); ok {
				label = fmt.Sprintf("%s <br/> %s", e.Config.Title, node.ID)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))

		if !types[node.Type] {
			types[node.Type] = true
			order = append(order, node.Type)
		}
	}

	for _, e := range edges {
		arrow := "-->"
		src, dst := handleName(e.Source, e.SourceHandle), handleName(e.Target, e.TargetHandle)
		if src != "" || dst != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(strings.Trim(src+" → "+dst, " →")))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target)))
	}

	if reg != nil && len(order) > 0 {
		sb.WriteString("\n    %% Type Styles\n")
		for _, t := range order {
			class := "type_" + sanitizeMermaidID(t)
			sb.WriteString(fmt.Sprintf("    classDef %s stroke:%s,stroke-width:2px,color:#000;\n", class, reg.MinimapColor(t)))
		}
		for _, node := range nodes {
			sb.WriteString(fmt.Sprintf("    class %s type_%s;\n", sanitizeMermaidID(node.ID), sanitizeMermaidID(node.Type)))
		}
	}

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.Highlight {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlight;\n", safeID))
			}
		}
	}

	return sb.String()
}

// handleName strips the "{nodeID}-" prefix of generic handles.
// Template handles are already bare.
func handleName(nodeID, handle string) string {
	return strings.TrimPrefix(handle, nodeID+"-")
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
