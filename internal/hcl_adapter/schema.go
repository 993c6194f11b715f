package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Pipelines []*Pipeline `hcl:"pipeline,block"`
	Nodes     []*Node     `hcl:"node,block"`
	Edges     []*Edge     `hcl:"edge,block"`
	Remain    hcl.Body    `hcl:",remain"`
}

// Pipeline holds document-level settings.
type Pipeline struct {
	Name  string `hcl:"name,optional"`
	Start string `hcl:"start,optional"`
}

// Node is the HCL form of a pipeline node.
type Node struct {
	ID     string         `hcl:"id,label"`
	Type   string         `hcl:"type"`
	Title  string         `hcl:"title,optional"`
	X      float64        `hcl:"x,optional"`
	Y      float64        `hcl:"y,optional"`
	Config hcl.Expression `hcl:"config,optional"`
}

// Edge is the HCL form of a pipeline edge. ID defaults to "from->to".
type Edge struct {
	ID   string `hcl:"id,optional"`
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
