// Package layout owns the placed pieces of a track plan and applies the snap,
// place, scan and connect sequence that keeps their connection maps in step
// with their geometry.
package layout

import (
	"errors"
	"fmt"
	"sync"

	"track-planner/internal/config"
	"track-planner/internal/match"
	"track-planner/internal/network"
	"track-planner/internal/piece"
	"track-planner/internal/snap"
	"track-planner/internal/spatial"
	"track-planner/pkg/geometry"
)

var (
	// ErrPieceNotFound is returned when no placed piece has the given id.
	ErrPieceNotFound = errors.New("piece not found")
	// ErrDuplicatePiece is returned when adding a piece whose id is taken.
	ErrDuplicatePiece = errors.New("duplicate piece id")
)

// Layout is the collection of placed pieces and their connections.
//
// Pieces returned by Get and Pieces are live. Queries read their current
// pose and connections every time.
type Layout struct {
	mu sync.Mutex

	snapRadius float64
	tolerance  float64

	pieces []*piece.Placed
	nextID int

	listeners map[EventType][]EventListener
}

// New creates an empty layout using the snap radius and coincidence
// tolerance from cfg.
func New(cfg config.Config) *Layout {
	return &Layout{
		snapRadius: cfg.SnapRadius,
		tolerance:  cfg.CoincidenceTolerance,
		listeners:  make(map[EventType][]EventListener),
	}
}

// Configure replaces the snap radius and coincidence tolerance. Existing
// connections are kept.
func (l *Layout) Configure(cfg config.Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snapRadius = cfg.SnapRadius
	l.tolerance = cfg.CoincidenceTolerance
}

// SnapRadius returns the distance within which a dragged port snaps.
func (l *Layout) SnapRadius() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapRadius
}

// Tolerance returns the distance within which two ports count as joined.
func (l *Layout) Tolerance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tolerance
}

// Len returns the number of placed pieces.
func (l *Layout) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pieces)
}

// Pieces returns the placed pieces in placement order.
func (l *Layout) Pieces() []*piece.Placed {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*piece.Placed, len(l.pieces))
	copy(out, l.pieces)
	return out
}

// Get returns the piece with the given id.
func (l *Layout) Get(id string) (*piece.Placed, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := piece.Find(l.pieces, id)
	return p, p != nil
}

// Network returns a connectivity snapshot of the layout.
func (l *Layout) Network() *network.Network {
	l.mu.Lock()
	defer l.mu.Unlock()
	return network.Build(l.pieces)
}

// Bounds returns the smallest rectangle holding every port of every piece,
// or false for an empty layout.
func (l *Layout) Bounds() (geometry.Rect, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var box geometry.Rect
	found := false
	for _, p := range l.pieces {
		var points []geometry.Vec2
		for _, wp := range p.WorldPorts() {
			points = append(points, wp.Position)
		}
		if len(points) == 0 {
			continue
		}
		pb := geometry.BoundingBox(points)
		if found {
			box = box.Union(pb)
		} else {
			box, found = pb, true
		}
	}
	return box, found
}

// Add inserts p as is. No coincidence scan is run; use Place for that.
func (l *Layout) Add(p *piece.Placed) error {
	l.mu.Lock()
	if err := l.insert(p); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()
	l.Emit(EventPieceAdded, p)
	return nil
}

// NewID returns an unused piece id derived from the definition name.
func (l *Layout) NewID(def *piece.Definition) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.newID(def)
}

// Place puts a new piece of definition def at pose, then joins every open
// port that lines up with an open port on another piece.
func (l *Layout) Place(def *piece.Definition, pose snap.Pose) (*piece.Placed, []match.Coincidence) {
	l.mu.Lock()
	p := piece.NewPlaced(l.newID(def), def, pose.Position, pose.Rotation)
	if err := l.insert(p); err != nil {
		// newID only returns ids no piece holds.
		panic(err)
	}
	found, events := l.scanAndConnect(p)
	l.mu.Unlock()

	l.Emit(EventPieceAdded, p)
	l.emitAll(events)
	return p, found
}

// PlaceSnapped places a new piece of definition def so that its port portID
// meets port targetPortID on the placed piece targetID, then scans for every
// other coincident pair. preRotation is the rotation already applied by the
// user before snapping.
func (l *Layout) PlaceSnapped(def *piece.Definition, portID, targetID, targetPortID string, preRotation float64) (*piece.Placed, []match.Coincidence, error) {
	l.mu.Lock()
	target := piece.Find(l.pieces, targetID)
	if target == nil {
		l.mu.Unlock()
		return nil, nil, fmt.Errorf("snap target %q: %w", targetID, ErrPieceNotFound)
	}
	pose, err := snap.ComputeTransform(def, portID, target, targetPortID, preRotation)
	if err != nil {
		l.mu.Unlock()
		return nil, nil, err
	}
	Logger().Debug("snap pose",
		"piece", def.Name, "port", portID,
		"target", targetID, "target_port", targetPortID,
		"x", pose.Position.X, "y", pose.Position.Y, "rotation", pose.Rotation)
	l.mu.Unlock()

	p, found := l.Place(def, pose)
	return p, found, nil
}

// Update moves the piece with the given id to pose. Connections are left as
// they are; pick a connected piece up first to move it.
func (l *Layout) Update(id string, pose snap.Pose) error {
	l.mu.Lock()
	p := piece.Find(l.pieces, id)
	if p == nil {
		l.mu.Unlock()
		return fmt.Errorf("update %q: %w", id, ErrPieceNotFound)
	}
	pose.ApplyTo(p)
	l.mu.Unlock()

	l.Emit(EventPieceMoved, p)
	return nil
}

// Remove deletes the piece with the given id, releasing every port on its
// neighbours that pointed at it.
func (l *Layout) Remove(id string) error {
	l.mu.Lock()
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("remove %q: %w", id, ErrPieceNotFound)
	}
	p := l.pieces[i]
	events := l.disconnectAll(p)
	l.pieces = append(l.pieces[:i], l.pieces[i+1:]...)
	if n := piece.ClearReferencesTo(l.pieces, id); n > 0 {
		Logger().Warn("cleared one-sided references to removed piece", "piece", id, "count", n)
	}
	l.mu.Unlock()

	l.emitAll(events)
	l.Emit(EventPieceRemoved, id)
	return nil
}

// Disconnect releases a single port of the piece with the given id.
func (l *Layout) Disconnect(id, portID string) error {
	l.mu.Lock()
	p := piece.Find(l.pieces, id)
	if p == nil {
		l.mu.Unlock()
		return fmt.Errorf("disconnect %q: %w", id, ErrPieceNotFound)
	}
	var events []event
	if remote, ok := piece.DisconnectPort(p, portID, l.pieces); ok {
		events = append(events, event{EventDisconnected, Link{
			A: piece.Ref{PieceID: id, PortID: portID},
			B: remote,
		}})
	}
	l.mu.Unlock()

	l.emitAll(events)
	return nil
}

// FindSnapTarget returns the nearest open port that the dragged port can snap
// to, ignoring the piece draggedPieceID.
func (l *Layout) FindSnapTarget(dragged match.DraggedPort, draggedPieceID string) (match.Target, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.findSnapTarget(dragged, draggedPieceID)
}

// ScanAndConnect joins every open port of the piece with the given id that
// lines up with an open port on another piece, and returns the pairs joined.
func (l *Layout) ScanAndConnect(id string) ([]match.Coincidence, error) {
	l.mu.Lock()
	p := piece.Find(l.pieces, id)
	if p == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("scan %q: %w", id, ErrPieceNotFound)
	}
	found, events := l.scanAndConnect(p)
	l.mu.Unlock()

	l.emitAll(events)
	return found, nil
}

func (l *Layout) insert(p *piece.Placed) error {
	if piece.Find(l.pieces, p.ID) != nil {
		return fmt.Errorf("add %q: %w", p.ID, ErrDuplicatePiece)
	}
	l.pieces = append(l.pieces, p)
	return nil
}

func (l *Layout) newID(def *piece.Definition) string {
	for {
		l.nextID++
		id := fmt.Sprintf("%s-%d", def.Name, l.nextID)
		if piece.Find(l.pieces, id) == nil {
			return id
		}
	}
}

func (l *Layout) indexOf(id string) int {
	for i, p := range l.pieces {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// portIndex indexes open ports as they are now. Pieces are live and may have
// been moved or (dis)connected directly, so it is rebuilt for every query.
func (l *Layout) portIndex() *spatial.PortIndex {
	return spatial.Build(l.pieces)
}

func (l *Layout) findSnapTarget(dragged match.DraggedPort, draggedPieceID string) (match.Target, bool) {
	candidates := l.portIndex().CandidatePieces([]geometry.Vec2{dragged.Position}, l.snapRadius)
	t, ok := match.FindSnapTarget(dragged, candidates, draggedPieceID, l.snapRadius)
	if ok {
		Logger().Debug("snap target", "piece", t.PieceID, "port", t.Port.ID, "distance", t.Distance)
	}
	return t, ok
}

// scanAndConnect must run after p has reached its final pose.
func (l *Layout) scanAndConnect(p *piece.Placed) ([]match.Coincidence, []event) {
	var centers []geometry.Vec2
	for _, wp := range p.WorldPorts() {
		if p.IsOpen(wp.Port.ID) {
			centers = append(centers, wp.Position)
		}
	}
	if len(centers) == 0 {
		return nil, nil
	}
	candidates := l.portIndex().CandidatePieces(centers, l.tolerance)

	var joined []match.Coincidence
	var events []event
	for _, c := range match.FindCoincident(p, candidates, l.tolerance) {
		other := piece.Find(l.pieces, c.OtherPieceID)
		// A port can only take one link; later pairs on a port joined
		// earlier in this pass are dropped.
		if !p.IsOpen(c.PortID) || !other.IsOpen(c.OtherPortID) {
			continue
		}
		piece.Connect(p, c.PortID, other, c.OtherPortID)
		Logger().Debug("connected",
			"piece", p.ID, "port", c.PortID,
			"other", c.OtherPieceID, "other_port", c.OtherPortID,
			"distance", c.Distance)
		joined = append(joined, c)
		events = append(events, event{EventConnected, Link{A: c.Local(p.ID), B: c.Other()}})
	}
	return joined, events
}

func (l *Layout) disconnectAll(p *piece.Placed) []event {
	var events []event
	for _, portID := range p.OccupiedPorts() {
		if remote, ok := p.ConnectedTo(portID); ok && piece.Find(l.pieces, remote.PieceID) == nil {
			Logger().Warn("connection to missing piece", "piece", p.ID, "port", portID, "remote", remote.PieceID)
		}
		remote, ok := piece.DisconnectPort(p, portID, l.pieces)
		if !ok {
			continue
		}
		Logger().Debug("disconnected", "piece", p.ID, "port", portID, "remote", remote.String())
		events = append(events, event{EventDisconnected, Link{
			A: piece.Ref{PieceID: p.ID, PortID: portID},
			B: remote,
		}})
	}
	return events
}
