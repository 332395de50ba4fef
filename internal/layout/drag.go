package layout

import (
	"fmt"

	"track-planner/internal/match"
	"track-planner/internal/piece"
	"track-planner/internal/snap"
	"track-planner/pkg/geometry"
)

// Drag describes a piece following the cursor before it is dropped.
type Drag struct {
	Definition  *piece.Definition
	PieceID     string        // Id of the piece being moved, empty for a new piece
	PortID      string        // Preferred port to snap with, empty for any
	Origin      geometry.Vec2 // World position of the piece origin under the cursor
	PreRotation float64       // Degrees, a multiple of 45
}

// NextPort returns the drag with the preferred port advanced to the next port
// of the definition, wrapping around. An empty or unknown port selects the
// first one.
func (d Drag) NextPort() Drag {
	ports := d.Definition.Ports
	if len(ports) == 0 {
		return d
	}
	i := d.Definition.PortIndex(d.PortID)
	d.PortID = ports[(i+1)%len(ports)].ID
	return d
}

// Rotate returns the drag turned by steps of 45°.
func (d Drag) Rotate(steps int) Drag {
	d.PreRotation = geometry.AddRotationSteps(d.PreRotation, steps)
	return d
}

// DraggedPort returns where port portID of the dragged piece currently sits.
func (d Drag) DraggedPort(portID string) (match.DraggedPort, bool) {
	port, ok := d.Definition.Port(portID)
	if !ok {
		return match.DraggedPort{}, false
	}
	return match.DraggedPort{
		Position:  d.Origin.Add(geometry.RotateAboutOrigin(port.Position, d.PreRotation)),
		Direction: port.Direction.Rotate(geometry.RotationSteps(d.PreRotation)),
	}, true
}

// candidatePorts returns the preferred port first, then the rest in
// definition order.
func (d Drag) candidatePorts() []string {
	var ids []string
	if _, ok := d.Definition.Port(d.PortID); ok {
		ids = append(ids, d.PortID)
	}
	for _, port := range d.Definition.Ports {
		if port.ID != d.PortID {
			ids = append(ids, port.ID)
		}
	}
	return ids
}

// Preview is the pose a drag would snap to if dropped now.
type Preview struct {
	PortID string       // Port of the dragged piece that snaps
	Target match.Target // Port it snaps to
	Pose   snap.Pose    // Pose of the dragged piece once snapped
}

// Preview finds the nearest snap among all ports of the dragged piece. The
// preferred port wins ties. Nothing is mutated. The second result is false
// when no port is within the snap radius of a compatible open port.
func (l *Layout) Preview(d Drag) (Preview, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var best Preview
	found := false
	for _, portID := range d.candidatePorts() {
		dragged, _ := d.DraggedPort(portID)
		t, ok := l.findSnapTarget(dragged, d.PieceID)
		if !ok || (found && t.Distance >= best.Target.Distance) {
			continue
		}
		target := piece.Find(l.pieces, t.PieceID)
		pose, err := snap.ComputeTransform(d.Definition, portID, target, t.Port.ID, d.PreRotation)
		if err != nil {
			continue
		}
		best = Preview{PortID: portID, Target: t, Pose: pose}
		found = true
	}
	return best, found
}

// Pickup is a piece lifted off the layout for moving. It remembers the pose
// and links the piece had so the move can be cancelled.
type Pickup struct {
	PieceID     string
	Pose        snap.Pose
	Connections map[string]piece.Ref // Local port id -> remote port
}

// PickUp disconnects the piece with the given id so it can be dragged. The
// piece stays in the layout and is excluded from its own snap search.
func (l *Layout) PickUp(id string) (*Pickup, error) {
	l.mu.Lock()
	p := piece.Find(l.pieces, id)
	if p == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("pick up %q: %w", id, ErrPieceNotFound)
	}
	pu := &Pickup{
		PieceID:     id,
		Pose:        snap.Pose{Position: p.Position, Rotation: p.Rotation},
		Connections: make(map[string]piece.Ref),
	}
	for _, portID := range p.OccupiedPorts() {
		if remote, ok := p.ConnectedTo(portID); ok {
			pu.Connections[portID] = remote
		}
	}
	events := l.disconnectAll(p)
	l.mu.Unlock()

	l.emitAll(events)
	return pu, nil
}

// Drag returns a drag request for the picked up piece starting at its
// original pose.
func (pu *Pickup) Drag(def *piece.Definition) Drag {
	return Drag{
		Definition:  def,
		PieceID:     pu.PieceID,
		Origin:      pu.Pose.Position,
		PreRotation: pu.Pose.Rotation,
	}
}

// Cancel puts a picked up piece back at its original pose and restores the
// links it had whose remote piece still exists with that port open. It
// returns the number of links restored.
func (l *Layout) Cancel(pu *Pickup) (int, error) {
	l.mu.Lock()
	p := piece.Find(l.pieces, pu.PieceID)
	if p == nil {
		l.mu.Unlock()
		return 0, fmt.Errorf("cancel %q: %w", pu.PieceID, ErrPieceNotFound)
	}
	pu.Pose.ApplyTo(p)

	var events []event
	for _, port := range p.Definition.Ports {
		remote, ok := pu.Connections[port.ID]
		if !ok || !p.IsOpen(port.ID) {
			continue
		}
		other := piece.Find(l.pieces, remote.PieceID)
		if other == nil || !other.IsOpen(remote.PortID) {
			continue
		}
		piece.Connect(p, port.ID, other, remote.PortID)
		events = append(events, event{EventConnected, Link{
			A: piece.Ref{PieceID: p.ID, PortID: port.ID},
			B: remote,
		}})
	}
	l.mu.Unlock()

	l.Emit(EventPieceMoved, p)
	l.emitAll(events)
	return len(events), nil
}

// Drop finishes a move at pose and joins every port that now lines up.
func (l *Layout) Drop(pu *Pickup, pose snap.Pose) ([]match.Coincidence, error) {
	l.mu.Lock()
	p := piece.Find(l.pieces, pu.PieceID)
	if p == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("drop %q: %w", pu.PieceID, ErrPieceNotFound)
	}
	pose.ApplyTo(p)
	found, events := l.scanAndConnect(p)
	l.mu.Unlock()

	l.Emit(EventPieceMoved, p)
	l.emitAll(events)
	return found, nil
}

// DropSnapped finishes a move so that port portID of the moved piece meets
// port targetPortID on the piece targetID.
func (l *Layout) DropSnapped(pu *Pickup, portID, targetID, targetPortID string, preRotation float64) ([]match.Coincidence, error) {
	l.mu.Lock()
	p := piece.Find(l.pieces, pu.PieceID)
	if p == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("drop %q: %w", pu.PieceID, ErrPieceNotFound)
	}
	target := piece.Find(l.pieces, targetID)
	if target == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("snap target %q: %w", targetID, ErrPieceNotFound)
	}
	pose, err := snap.ComputeTransform(p.Definition, portID, target, targetPortID, preRotation)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return l.Drop(pu, pose)
}
