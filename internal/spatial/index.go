// Package spatial indexes open port positions so that snap and coincidence
// queries only look at pieces near the point of interest.
package spatial

import (
	"math"
	"sort"

	"github.com/peterstace/simplefeatures/rtree"

	"track-planner/internal/piece"
	"track-planner/pkg/geometry"
)

// PortIndex is an R-tree over the world positions of open ports. It is a
// snapshot: any move or (dis)connection makes it stale.
type PortIndex struct {
	tree   *rtree.RTree
	owners []int // Record id -> position of the owning piece in pieces
	pieces []*piece.Placed
}

// Build indexes every open port of pieces.
func Build(pieces []*piece.Placed) *PortIndex {
	ix := &PortIndex{pieces: pieces}
	var items []rtree.BulkItem
	for pi, p := range pieces {
		for _, port := range p.Definition.Ports {
			if !p.IsOpen(port.ID) {
				continue
			}
			pos := p.WorldPosition(port)
			items = append(items, rtree.BulkItem{
				Box:      toBox(geometry.RectAround(pos, 0)),
				RecordID: len(ix.owners),
			})
			ix.owners = append(ix.owners, pi)
		}
	}
	if len(items) == 0 {
		ix.tree = &rtree.RTree{}
	} else {
		ix.tree = rtree.BulkLoad(items)
	}
	return ix
}

// Len returns the number of indexed ports.
func (ix *PortIndex) Len() int {
	return len(ix.owners)
}

// CandidatePieces returns, in their original order, the pieces that have an
// open port inside the square of half-size radius around any of centers. The
// result is a superset of the pieces a radius search can match.
func (ix *PortIndex) CandidatePieces(centers []geometry.Vec2, radius float64) []*piece.Placed {
	hit := make(map[int]bool)
	for _, c := range centers {
		ix.search(c, radius, func(pieceIndex int) { hit[pieceIndex] = true })
	}
	idx := make([]int, 0, len(hit))
	for i := range hit {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]*piece.Placed, 0, len(idx))
	for _, i := range idx {
		out = append(out, ix.pieces[i])
	}
	return out
}

func (ix *PortIndex) search(center geometry.Vec2, radius float64, fn func(pieceIndex int)) {
	// Pad so ports exactly on the radius survive float rounding of the box edges.
	pad := radius + 1e-9*math.Max(1, math.Abs(radius))
	box := toBox(geometry.RectAround(center, pad))
	_ = ix.tree.RangeSearch(box, func(recordID int) error {
		fn(ix.owners[recordID])
		return nil
	})
}

func toBox(r geometry.Rect) rtree.Box {
	return rtree.Box{MinX: r.X, MinY: r.Y, MaxX: r.X + r.Width, MaxY: r.Y + r.Height}
}
