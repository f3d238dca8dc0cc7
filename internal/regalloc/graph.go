package regalloc

import "slices"

// Graph is an undirected interference graph over virtual registers.
// Edges are stored symmetrically: AddEdge is the only insertion
// primitive and it writes both directions, so the adjacency sets
// cannot drift apart.
type Graph struct {
	adj map[VReg]map[VReg]struct{}
}

// NewGraph creates an empty interference graph.
func NewGraph() *Graph {
	return &Graph{adj: make(map[VReg]map[VReg]struct{})}
}

// AddNode ensures reg is present in the graph, initially without edges.
func (g *Graph) AddNode(reg VReg) {
	if _, ok := g.adj[reg]; !ok {
		g.adj[reg] = make(map[VReg]struct{})
	}
}

// AddEdge records interference between a and b. Both registers are
// added to the graph; self edges are ignored.
func (g *Graph) AddEdge(a, b VReg) {
	g.AddNode(a)
	g.AddNode(b)
	if a == b {
		return
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
}

// HasEdge reports whether a and b interfere.
func (g *Graph) HasEdge(a, b VReg) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Degree returns the number of registers interfering with reg.
func (g *Graph) Degree(reg VReg) int {
	return len(g.adj[reg])
}

// Neighbors returns the registers interfering with reg, sorted by id.
func (g *Graph) Neighbors(reg VReg) []VReg {
	set := g.adj[reg]
	if len(set) == 0 {
		return nil
	}
	out := make([]VReg, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Nodes returns every register in the graph, sorted by id.
func (g *Graph) Nodes() []VReg {
	out := make([]VReg, 0, len(g.adj))
	for r := range g.adj {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of registers in the graph.
func (g *Graph) Len() int {
	return len(g.adj)
}
