package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo is the result of a Kahn sort over a Graph.
type Topo struct {
	Order  []NodeID // dependency order, cycle members excluded
	Cyclic bool
	Cycles []NodeID // nodes in or behind a cycle, in declaration order
}

// Toposort runs Kahn's algorithm. Ready nodes are emitted smallest ID
// first, so independent declarations keep their manifest order. Nodes
// whose dependencies never resolve land in Cycles instead of Order.
func (g *Graph) Toposort() *Topo {
	n := g.Len()
	indeg := make([]int, n)
	copy(indeg, g.indeg)

	topo := &Topo{Order: make([]NodeID, 0, n)}

	current := make([]NodeID, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			current = append(current, mustNodeID(i))
		}
	}
	slices.Sort(current)

	for len(current) > 0 {
		next := make([]NodeID, 0)
		for _, id := range current {
			topo.Order = append(topo.Order, id)
			for _, to := range g.edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != n {
		topo.Cyclic = true
		for i := 0; i < n; i++ {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustNodeID(i))
			}
		}
	}
	return topo
}

func mustNodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}
