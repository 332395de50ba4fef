// Package snap solves the pose a piece must take so that one of its ports
// meets a port on an already placed piece.
package snap

import (
	"errors"
	"fmt"

	"track-planner/internal/piece"
	"track-planner/pkg/geometry"
)

// ErrPortNotFound is returned when a port id does not exist on its
// definition. Definitions are static, so this is a caller bug.
var ErrPortNotFound = errors.New("port not found")

// Pose is a world position and rotation for a piece origin.
type Pose struct {
	Position geometry.Vec2
	Rotation float64 // Degrees, a multiple of 45 in [0, 360)
}

// ApplyTo moves p to the pose.
func (ps Pose) ApplyTo(p *piece.Placed) {
	p.Position = ps.Position
	p.Rotation = ps.Rotation
}

// ComputeTransform returns the pose for a piece of definition def such that
// its port portID sits exactly on target's port targetPortID, facing the
// opposite way. preRotation is the rotation the user already applied to the
// dragged piece; the result keeps it and adds the fewest 45° steps needed.
func ComputeTransform(def *piece.Definition, portID string, target *piece.Placed, targetPortID string, preRotation float64) (Pose, error) {
	dragged, ok := def.Port(portID)
	if !ok {
		return Pose{}, fmt.Errorf("dragged %s port %q: %w", def.Name, portID, ErrPortNotFound)
	}
	targetPort, ok := target.Definition.Port(targetPortID)
	if !ok {
		return Pose{}, fmt.Errorf("target %s port %q: %w", target.ID, targetPortID, ErrPortNotFound)
	}

	targetPos := target.WorldPosition(targetPort)
	required := target.WorldDirection(targetPort).Opposite()
	current := dragged.Direction.Rotate(geometry.RotationSteps(preRotation))

	diff := geometry.DirectionToAngle(required) - geometry.DirectionToAngle(current)
	extra := geometry.AddRotationSteps(0, geometry.RotationSteps(diff))
	final := geometry.NormalizeAngle(preRotation + extra)

	offset := geometry.RotateAboutOrigin(dragged.Position, final)
	return Pose{
		Position: targetPos.Sub(offset),
		Rotation: final,
	}, nil
}
