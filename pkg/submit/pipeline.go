package submit

import "github.com/sohail300/pipeline/pkg/domain"

// PipelineNode is a node as the validator receives it.
type PipelineNode struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Position domain.Position `json:"position"`
	Data     map[string]any  `json:"data"`
}

// PipelineEdge is an edge as the validator receives it.
type PipelineEdge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
}

// Pipeline is the request body of POST /pipelines/parse.
type Pipeline struct {
	Nodes []PipelineNode `json:"nodes"`
	Edges []PipelineEdge `json:"edges"`
}

// BuildPipeline projects store records onto the wire shape.
// UI-only state such as selection and measured size is left out.
func BuildPipeline(nodes []domain.NodeRecord, edges []domain.EdgeRecord) Pipeline {
	p := Pipeline{
		Nodes: make([]PipelineNode, 0, len(nodes)),
		Edges: make([]PipelineEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		data := map[string]any{}
		if n.Data != nil {
			data = n.Data.Map()
		}
		p.Nodes = append(p.Nodes, PipelineNode{ID: n.ID, Type: n.Type, Position: n.Position, Data: data})
	}
	for _, e := range edges {
		p.Edges = append(p.Edges, PipelineEdge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}
	return p
}
