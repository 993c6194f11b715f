package dag

import "github.com/specialistvlad/forgegrid/internal/node"

// Sanitize normalizes edges against the current node set. It drops edges
// whose source or target is not a node, drops self-loops, and collapses
// duplicate source→target pairs onto their first occurrence. Input order is
// otherwise preserved. Sanitize never fails and is idempotent.
func Sanitize(nodes []node.Node, edges []node.Edge) []node.Edge {
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.ID] = struct{}{}
	}

	seen := make(map[[2]string]struct{}, len(edges))
	cleaned := make([]node.Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := present[e.Source]; !ok {
			continue
		}
		if _, ok := present[e.Target]; !ok {
			continue
		}
		if e.Source == e.Target {
			continue
		}
		if _, dup := seen[e.Key()]; dup {
			continue
		}
		seen[e.Key()] = struct{}{}
		cleaned = append(cleaned, e)
	}
	return cleaned
}
