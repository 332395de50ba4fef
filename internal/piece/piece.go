// Package piece provides the track piece model: catalog definitions with their
// ports, placed instances on the layout plane, and the connection maps that
// join placed ports together.
package piece

import (
	"sort"
	"strings"

	"track-planner/pkg/geometry"
)

// Kind identifies the family a piece definition belongs to.
type Kind string

const (
	KindStraight Kind = "straight"
	KindCurve    Kind = "curve"
	KindTurnout  Kind = "turnout"
	KindBridge   Kind = "bridge"
)

// Port is a connector point on a piece definition.
type Port struct {
	ID        string             `json:"id"`        // Unique within the definition, e.g. "A"
	Position  geometry.Vec2      `json:"position"`  // Relative to the piece origin
	Direction geometry.Direction `json:"direction"` // Facing direction with the piece unrotated
}

// Definition is an immutable catalog entry shared by every placed instance of
// the same shape.
type Definition struct {
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Ports   []Port `json:"ports"`
	Outline string `json:"outline,omitempty"` // SVG path data, not read by the engine
}

// Port returns the port with the given id.
func (d *Definition) Port(id string) (Port, bool) {
	for _, p := range d.Ports {
		if p.ID == id {
			return p, true
		}
	}
	return Port{}, false
}

// PortIndex returns the position of the port in the definition's port order, or -1.
func (d *Definition) PortIndex(id string) int {
	for i, p := range d.Ports {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Ref names a port on a placed piece. Its string form "<pieceID>:<portID>" is
// the value stored in connection maps.
type Ref struct {
	PieceID string
	PortID  string
}

func (r Ref) String() string {
	return r.PieceID + ":" + r.PortID
}

// ParseRef splits a connection map value into piece and port ids.
// Port ids never contain ':', so the last separator wins.
func ParseRef(s string) (Ref, bool) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Ref{}, false
	}
	return Ref{PieceID: s[:i], PortID: s[i+1:]}, true
}

// Placed is a piece instance on the layout plane.
//
// Position and Rotation are mutated in place by the layout while a piece is
// moved. The connection map is only changed through Connect, DisconnectPort and
// DisconnectPiece so that both sides of every link stay in step.
type Placed struct {
	ID         string        `json:"id"`
	Definition *Definition   `json:"-"`
	Position   geometry.Vec2 `json:"position"` // World position of the piece origin
	Rotation   float64       `json:"rotation"` // Degrees, a multiple of 45 in [0, 360)

	connections map[string]string // local port id -> "<pieceID>:<portID>"
}

// NewPlaced creates a placed piece with no connections.
func NewPlaced(id string, def *Definition, pos geometry.Vec2, rotation float64) *Placed {
	return &Placed{
		ID:          id,
		Definition:  def,
		Position:    pos,
		Rotation:    rotation,
		connections: make(map[string]string),
	}
}

// RotationSteps returns the piece rotation as a count of 45° steps.
func (p *Placed) RotationSteps() int {
	return geometry.RotationSteps(p.Rotation)
}

// WorldPosition returns where port sits on the layout plane.
func (p *Placed) WorldPosition(port Port) geometry.Vec2 {
	return p.Position.Add(geometry.RotateAboutOrigin(port.Position, p.Rotation))
}

// WorldDirection returns the way port faces on the layout plane.
func (p *Placed) WorldDirection(port Port) geometry.Direction {
	return port.Direction.Rotate(p.RotationSteps())
}

// WorldPort is a port pose derived from a placed piece. It is recomputed on
// every call and never cached.
type WorldPort struct {
	Port      Port
	Position  geometry.Vec2
	Direction geometry.Direction
}

// WorldPort returns the world pose of the port with the given id.
func (p *Placed) WorldPort(portID string) (WorldPort, bool) {
	port, ok := p.Definition.Port(portID)
	if !ok {
		return WorldPort{}, false
	}
	return WorldPort{
		Port:      port,
		Position:  p.WorldPosition(port),
		Direction: p.WorldDirection(port),
	}, true
}

// WorldPorts returns the world pose of every port in definition order.
func (p *Placed) WorldPorts() []WorldPort {
	out := make([]WorldPort, 0, len(p.Definition.Ports))
	for _, port := range p.Definition.Ports {
		out = append(out, WorldPort{
			Port:      port,
			Position:  p.WorldPosition(port),
			Direction: p.WorldDirection(port),
		})
	}
	return out
}

// IsOpen reports whether nothing is connected to the port.
func (p *Placed) IsOpen(portID string) bool {
	_, occupied := p.connections[portID]
	return !occupied
}

// Connection returns the raw "<pieceID>:<portID>" value stored for the port.
func (p *Placed) Connection(portID string) (string, bool) {
	v, ok := p.connections[portID]
	return v, ok
}

// ConnectedTo returns the remote port joined to portID.
func (p *Placed) ConnectedTo(portID string) (Ref, bool) {
	v, ok := p.connections[portID]
	if !ok {
		return Ref{}, false
	}
	return ParseRef(v)
}

// Connections returns a copy of the connection map.
func (p *Placed) Connections() map[string]string {
	out := make(map[string]string, len(p.connections))
	for k, v := range p.connections {
		out[k] = v
	}
	return out
}

// ConnectionCount returns the number of occupied ports.
func (p *Placed) ConnectionCount() int {
	return len(p.connections)
}

// OccupiedPorts returns the ids of connected ports in definition order.
// Entries for ids the definition does not know are appended last, sorted.
func (p *Placed) OccupiedPorts() []string {
	ids := make([]string, 0, len(p.connections))
	seen := make(map[string]bool, len(p.connections))
	for _, port := range p.Definition.Ports {
		if _, ok := p.connections[port.ID]; ok {
			ids = append(ids, port.ID)
			seen[port.ID] = true
		}
	}
	var extra []string
	for id := range p.connections {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

func (p *Placed) link(portID string, remote Ref) {
	if p.connections == nil {
		p.connections = make(map[string]string)
	}
	p.connections[portID] = remote.String()
}

func (p *Placed) unlink(portID string) {
	delete(p.connections, portID)
}
