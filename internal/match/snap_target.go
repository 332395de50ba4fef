// Package match finds ports that can be joined: the nearest snap target for a
// dragged port, and every coincident open port pair around a placed piece.
//
// Direction compatibility and positional proximity are separate predicates.
// Directions must be exact opposites; only distance carries a tolerance.
package match

import (
	"track-planner/internal/piece"
	"track-planner/pkg/geometry"
)

// DraggedPort is the world pose of the port being dragged toward the layout.
type DraggedPort struct {
	Position  geometry.Vec2
	Direction geometry.Direction
}

// Target is an open port a dragged port can snap to.
type Target struct {
	PieceID  string
	Port     piece.Port
	Distance float64
}

// Ref returns the target as a piece/port reference.
func (t Target) Ref() piece.Ref {
	return piece.Ref{PieceID: t.PieceID, PortID: t.Port.ID}
}

// FindSnapTarget returns the nearest open port on any piece other than
// draggedPieceID that faces exactly opposite the dragged port and lies within
// radius. Equidistant candidates resolve to the first one found in piece and
// port order. The second result is false when nothing qualifies.
func FindSnapTarget(dragged DraggedPort, pieces []*piece.Placed, draggedPieceID string, radius float64) (Target, bool) {
	want := dragged.Direction.Opposite()

	var best Target
	found := false
	for _, p := range pieces {
		if p.ID == draggedPieceID {
			continue
		}
		steps := p.RotationSteps()
		for _, port := range p.Definition.Ports {
			if !p.IsOpen(port.ID) {
				continue
			}
			if port.Direction.Rotate(steps) != want {
				continue
			}
			dist := dragged.Position.Distance(p.WorldPosition(port))
			if dist > radius {
				continue
			}
			if !found || dist < best.Distance {
				best = Target{PieceID: p.ID, Port: port, Distance: dist}
				found = true
			}
		}
	}
	return best, found
}
