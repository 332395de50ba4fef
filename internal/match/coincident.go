package match

import (
	"track-planner/internal/piece"
)

// Coincidence is an open port on the scanned piece that lines up with an open
// port on another piece.
type Coincidence struct {
	PortID       string  // Port on the scanned piece
	OtherPieceID string  // Piece owning the matching port
	OtherPortID  string  // Matching port
	Distance     float64 // Distance between the two world positions
}

// Local returns the scanned side of the pair.
func (c Coincidence) Local(pieceID string) piece.Ref {
	return piece.Ref{PieceID: pieceID, PortID: c.PortID}
}

// Other returns the remote side of the pair.
func (c Coincidence) Other() piece.Ref {
	return piece.Ref{PieceID: c.OtherPieceID, PortID: c.OtherPortID}
}

// FindCoincident returns every pair of open ports, one on p and one on any
// other piece in pieces, whose world positions are within tolerance and whose
// world directions are exact opposites.
//
// The result is a set. It is produced in a fixed order (p's ports, then
// pieces, then their ports) so identical inputs give identical output.
func FindCoincident(p *piece.Placed, pieces []*piece.Placed, tolerance float64) []Coincidence {
	var out []Coincidence
	for _, local := range p.WorldPorts() {
		if !p.IsOpen(local.Port.ID) {
			continue
		}
		want := local.Direction.Opposite()
		for _, other := range pieces {
			if other.ID == p.ID {
				continue
			}
			steps := other.RotationSteps()
			for _, port := range other.Definition.Ports {
				if !other.IsOpen(port.ID) {
					continue
				}
				if port.Direction.Rotate(steps) != want {
					continue
				}
				dist := local.Position.Distance(other.WorldPosition(port))
				if dist > tolerance {
					continue
				}
				out = append(out, Coincidence{
					PortID:       local.Port.ID,
					OtherPieceID: other.ID,
					OtherPortID:  port.ID,
					Distance:     dist,
				})
			}
		}
	}
	return out
}
