// Package dag toposorts manifest declarations by their dependencies.
// The layout engine resolves nested value types against structs it has
// already analyzed, so declaration order matters; sorting here means
// manifest authors do not have to hand-order their structs.
package dag

// NodeID indexes a declaration in manifest order.
type NodeID uint32

// Graph is a dependency graph over declaration indices. An edge runs
// from a dependency to each declaration that needs it.
type Graph struct {
	edges [][]NodeID
	indeg []int
}

// New returns an empty graph over n declarations.
func New(n int) *Graph {
	return &Graph{
		edges: make([][]NodeID, n),
		indeg: make([]int, n),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.edges) }

// AddEdge records that to depends on from. Parallel edges are allowed,
// the sort counts them.
func (g *Graph) AddEdge(from, to NodeID) {
	g.edges[from] = append(g.edges[from], to)
	g.indeg[to]++
}
