// Package network answers connectivity questions about a layout, such as
// which pieces form one contiguous track and whether that track closes on
// itself. It reads connection maps and never changes them.
package network

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"track-planner/internal/piece"
)

// Network is an undirected graph with one node per placed piece and an edge
// wherever two pieces share at least one connection.
type Network struct {
	g     *simple.UndirectedGraph
	ids   []string
	index map[string]int64
	links map[[2]string]bool // canonical port pairs, for loop counting
}

// Build creates a network from the connection maps of pieces. Entries that
// point at pieces outside the slice are ignored.
func Build(pieces []*piece.Placed) *Network {
	n := &Network{
		g:     simple.NewUndirectedGraph(),
		index: make(map[string]int64, len(pieces)),
		links: make(map[[2]string]bool),
	}
	for i, p := range pieces {
		n.ids = append(n.ids, p.ID)
		n.index[p.ID] = int64(i)
		n.g.AddNode(simple.Node(i))
	}
	for _, p := range pieces {
		from := n.index[p.ID]
		for _, portID := range p.OccupiedPorts() {
			remote, ok := p.ConnectedTo(portID)
			if !ok {
				continue
			}
			to, ok := n.index[remote.PieceID]
			if !ok {
				continue
			}
			n.links[pairKey(piece.Ref{PieceID: p.ID, PortID: portID}, remote)] = true
			if from != to && !n.g.HasEdgeBetween(from, to) {
				n.g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
			}
		}
	}
	return n
}

func pairKey(a, b piece.Ref) [2]string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return [2]string{x, y}
}

// Links returns the number of distinct port-to-port connections.
func (n *Network) Links() int {
	return len(n.links)
}

// Degree returns how many distinct pieces the piece is connected to.
func (n *Network) Degree(id string) int {
	i, ok := n.index[id]
	if !ok {
		return 0
	}
	return n.g.From(i).Len()
}

// Groups returns the connected groups of pieces. Members keep layout order and
// groups are ordered by their first member.
func (n *Network) Groups() [][]string {
	comps := topo.ConnectedComponents(n.g)
	out := make([][]string, 0, len(comps))
	for _, comp := range comps {
		out = append(out, n.names(comp))
	}
	sort.Slice(out, func(i, j int) bool { return n.index[out[i][0]] < n.index[out[j][0]] })
	return out
}

func (n *Network) names(nodes []graph.Node) []string {
	idx := make([]int, 0, len(nodes))
	for _, node := range nodes {
		idx = append(idx, int(node.ID()))
	}
	sort.Ints(idx)
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, n.ids[i])
	}
	return names
}

// Route returns the pieces on a shortest path from one piece to another,
// both ends included. The second result is false when no path exists.
func (n *Network) Route(fromID, toID string) ([]string, bool) {
	from, ok := n.index[fromID]
	if !ok {
		return nil, false
	}
	to, ok := n.index[toID]
	if !ok {
		return nil, false
	}
	if from == to {
		return []string{fromID}, true
	}
	shortest := path.DijkstraFrom(simple.Node(from), n.g)
	nodes, _ := shortest.To(to)
	if len(nodes) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, n.ids[node.ID()])
	}
	return out, true
}

// Loops returns the groups whose track closes on itself at least once: a
// group of k pieces with k or more connections.
func (n *Network) Loops() [][]string {
	var out [][]string
	for _, group := range n.Groups() {
		members := make(map[string]bool, len(group))
		for _, id := range group {
			members[id] = true
		}
		links := 0
		for key := range n.links {
			if ref, ok := piece.ParseRef(key[0]); ok && members[ref.PieceID] {
				links++
			}
		}
		if links >= len(group) {
			out = append(out, group)
		}
	}
	return out
}

// HasLoop reports whether any group closes on itself.
func (n *Network) HasLoop() bool {
	return len(n.Loops()) > 0
}
