package dag

import (
	"container/heap"

	"github.com/specialistvlad/forgegrid/internal/node"
)

// Plan is the result of planning a run: the nodes to execute in order and
// the set of node identifiers the run covers.
type Plan struct {
	// Nodes holds the full node records in run order.
	Nodes []node.Node
	// Reachable holds the identifiers of every node reachable from the start
	// node, the start node included.
	Reachable map[string]struct{}
}

// Contains reports whether the node with the given id is part of this run.
func (p *Plan) Contains(id string) bool {
	_, ok := p.Reachable[id]
	return ok
}

// IDs returns the node identifiers in run order.
func (p *Plan) IDs() []string {
	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// graph is an index-based adjacency view of a sanitized pipeline. Node
// indexes are positions in the caller's node list, which is what the
// tie-break rule orders by.
type graph struct {
	nodes      []node.Node
	index      map[string]int
	dependents [][]int
}

func newGraph(nodes []node.Node, edges []node.Edge) *graph {
	g := &graph{
		nodes:      nodes,
		index:      make(map[string]int, len(nodes)),
		dependents: make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := g.index[n.ID]; !dup {
			g.index[n.ID] = i
		}
	}
	for _, e := range Sanitize(nodes, edges) {
		from, to := g.index[e.Source], g.index[e.Target]
		g.dependents[from] = append(g.dependents[from], to)
	}
	return g
}

// reachableFrom walks outgoing edges from start and marks every visited node.
func (g *graph) reachableFrom(start int) []bool {
	reached := make([]bool, len(g.nodes))
	reached[start] = true
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.dependents[cur] {
			if !reached[next] {
				reached[next] = true
				stack = append(stack, next)
			}
		}
	}
	return reached
}

// order runs Kahn's algorithm over the nodes flagged in include. The ready
// set is a min-heap on node index, so every time it grows the earliest
// defined node is the next to run. It returns the order and whether every
// included node was placed.
func (g *graph) order(include []bool) ([]int, bool) {
	indeg := make([]int, len(g.nodes))
	total := 0
	for from, tos := range g.dependents {
		if !include[from] {
			continue
		}
		total++
		for _, to := range tos {
			if include[to] {
				indeg[to]++
			}
		}
	}

	ready := &indexHeap{}
	for i := range g.nodes {
		if include[i] && indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, total)
	for ready.Len() > 0 {
		cur := heap.Pop(ready).(int)
		out = append(out, cur)
		for _, next := range g.dependents[cur] {
			if !include[next] {
				continue
			}
			indeg[next]--
			if indeg[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}
	return out, len(out) == total
}

// BuildPlan computes the run order for a pipeline started at startID.
//
// Edges are sanitized first. Only nodes reachable from startID by following
// edges forward take part in the run; a node that merely feeds into the
// reachable set from outside is excluded. The reachable nodes are then
// ordered topologically, breaking ties by position in nodes.
//
// BuildPlan fails with ErrInvalidStartNode when startID is not a node and
// with ErrCyclicGraph when the reachable nodes contain a cycle. Both are
// returned as *PlanError.
func BuildPlan(nodes []node.Node, edges []node.Edge, startID string) (*Plan, error) {
	g := newGraph(nodes, edges)

	start, ok := g.index[startID]
	if !ok {
		return nil, &PlanError{Kind: ErrInvalidStartNode, NodeIDs: []string{startID}}
	}

	reached := g.reachableFrom(start)
	ordered, complete := g.order(reached)
	if !complete {
		placed := make([]bool, len(g.nodes))
		for _, i := range ordered {
			placed[i] = true
		}
		var stuck []string
		for i, r := range reached {
			if r && !placed[i] {
				stuck = append(stuck, g.nodes[i].ID)
			}
		}
		return nil, &PlanError{Kind: ErrCyclicGraph, NodeIDs: stuck}
	}

	plan := &Plan{
		Nodes:     make([]node.Node, 0, len(ordered)),
		Reachable: make(map[string]struct{}, len(ordered)),
	}
	for _, i := range ordered {
		plan.Nodes = append(plan.Nodes, g.nodes[i])
		plan.Reachable[g.nodes[i].ID] = struct{}{}
	}
	return plan, nil
}

// Roots returns the nodes without incoming sanitized edges, in node order.
// They are the natural start points of a canvas.
func Roots(nodes []node.Node, edges []node.Edge) []node.Node {
	hasIncoming := make(map[string]struct{}, len(nodes))
	for _, e := range Sanitize(nodes, edges) {
		hasIncoming[e.Target] = struct{}{}
	}
	var roots []node.Node
	for _, n := range nodes {
		if _, ok := hasIncoming[n.ID]; !ok {
			roots = append(roots, n)
		}
	}
	return roots
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
