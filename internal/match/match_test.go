package match

import (
	"testing"

	"github.com/stretchr/testify/require"

	"track-planner/internal/catalog"
	"track-planner/internal/piece"
	"track-planner/internal/snap"
	"track-planner/pkg/geometry"
)

const tolerance = 0.5

var lib = func() *catalog.Library {
	l, err := catalog.NewStandardLibrary(catalog.DefaultDimensions())
	if err != nil {
		panic(err)
	}
	return l
}()

func straight(id string, x, y, rotation float64) *piece.Placed {
	return piece.NewPlaced(id, lib.MustGet(catalog.ShortStraight), geometry.NewVec2(x, y), rotation)
}

func draggedAt(t *testing.T, p *piece.Placed, portID string) DraggedPort {
	t.Helper()
	wp, ok := p.WorldPort(portID)
	require.True(t, ok)
	return DraggedPort{Position: wp.Position, Direction: wp.Direction.Opposite()}
}

// placeSnapped snaps a new piece's port onto target's port with no pre-rotation.
func placeSnapped(t *testing.T, id, name, portID string, target *piece.Placed, targetPortID string) *piece.Placed {
	t.Helper()
	def := lib.MustGet(name)
	pose, err := snap.ComputeTransform(def, portID, target, targetPortID, 0)
	require.NoError(t, err)
	return piece.NewPlaced(id, def, pose.Position, pose.Rotation)
}
