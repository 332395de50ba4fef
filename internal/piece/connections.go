package piece

// Find returns the piece with the given id, or nil.
func Find(pieces []*Placed, id string) *Placed {
	for _, p := range pieces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Connect joins portA on a to portB on b, writing both connection maps.
// Prior occupancy is not checked; callers only connect open ports.
func Connect(a *Placed, portA string, b *Placed, portB string) {
	a.link(portA, Ref{PieceID: b.ID, PortID: portB})
	b.link(portB, Ref{PieceID: a.ID, PortID: portA})
}

// DisconnectPort removes the link on portID from both sides and returns the
// remote port it pointed at. It is a no-op when the port is open. When the
// remote piece is not in pieces only the local entry is removed.
//
// The remote entry is removed only if it points back at p's portID. A remote
// port already linked elsewhere keeps that link.
func DisconnectPort(p *Placed, portID string, pieces []*Placed) (Ref, bool) {
	value, ok := p.connections[portID]
	if !ok {
		return Ref{}, false
	}
	p.unlink(portID)

	remote, ok := ParseRef(value)
	if !ok {
		return Ref{}, true
	}
	if other := Find(pieces, remote.PieceID); other != nil {
		// Only clear the remote side if it still points back here.
		if back, ok := other.ConnectedTo(remote.PortID); ok && back == (Ref{PieceID: p.ID, PortID: portID}) {
			other.unlink(remote.PortID)
		}
	}
	return remote, true
}

// DisconnectPiece disconnects every occupied port on p and returns the remote
// ports that were released.
func DisconnectPiece(p *Placed, pieces []*Placed) []Ref {
	var released []Ref
	for _, portID := range p.OccupiedPorts() {
		if remote, ok := DisconnectPort(p, portID, pieces); ok {
			released = append(released, remote)
		}
	}
	return released
}

// ClearReferencesTo removes every entry in pieces that points at pieceID.
// It cleans up neighbours of a piece that is already gone from the layout.
func ClearReferencesTo(pieces []*Placed, pieceID string) int {
	cleared := 0
	for _, p := range pieces {
		for _, portID := range p.OccupiedPorts() {
			if remote, ok := p.ConnectedTo(portID); ok && remote.PieceID == pieceID {
				p.unlink(portID)
				cleared++
			}
		}
	}
	return cleared
}

// Dangling returns every connection entry whose mirror entry is missing or
// points elsewhere. An empty result means the maps are symmetric.
func Dangling(pieces []*Placed) []Ref {
	var out []Ref
	for _, p := range pieces {
		for _, portID := range p.OccupiedPorts() {
			local := Ref{PieceID: p.ID, PortID: portID}
			remote, ok := p.ConnectedTo(portID)
			if !ok {
				out = append(out, local)
				continue
			}
			other := Find(pieces, remote.PieceID)
			if other == nil {
				out = append(out, local)
				continue
			}
			if back, ok := other.ConnectedTo(remote.PortID); !ok || back != local {
				out = append(out, local)
			}
		}
	}
	return out
}
