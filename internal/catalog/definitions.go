// Package catalog provides the static piece definitions a layout is built from.
package catalog

import (
	"fmt"
	"math"

	"track-planner/internal/piece"
	"track-planner/pkg/geometry"
)

// Names of the standard definitions.
const (
	ShortStraight = "short-straight"
	LongStraight  = "long-straight"
	Curve45       = "curve-45"
	Turnout       = "turnout"
	Bridge        = "bridge"
)

// Dimensions holds the physical measurements the standard pieces are derived
// from. Units are millimetres.
type Dimensions struct {
	StraightLength float64 // Short straight, port to port
	CurveRadius    float64 // Centre line radius of curves and turnout branches
	CurveAngle     float64 // Degrees swept by one curve, a multiple of 45
	TrackWidth     float64 // Only used for outlines
}

// DefaultDimensions returns measurements matching the common toy track system.
func DefaultDimensions() Dimensions {
	return Dimensions{
		StraightLength: 54,
		CurveRadius:    143,
		CurveAngle:     45,
		TrackWidth:     10,
	}
}

// Validate checks that the dimensions can produce well-formed definitions.
func (d Dimensions) Validate() error {
	if d.StraightLength <= 0 {
		return fmt.Errorf("straight length must be positive, got %v", d.StraightLength)
	}
	if d.CurveRadius <= 0 {
		return fmt.Errorf("curve radius must be positive, got %v", d.CurveRadius)
	}
	if d.CurveAngle <= 0 || d.CurveAngle >= 360 || math.Mod(d.CurveAngle, geometry.StepDegrees) != 0 {
		return fmt.Errorf("curve angle must be a multiple of 45 in (0, 360), got %v", d.CurveAngle)
	}
	if d.TrackWidth <= 0 {
		return fmt.Errorf("track width must be positive, got %v", d.TrackWidth)
	}
	return nil
}

// NewStraight returns a straight of the given length centred on its origin,
// with port A at the top facing S and port B at the bottom facing N.
func NewStraight(name string, length, width float64) *piece.Definition {
	half := length / 2
	return &piece.Definition{
		Kind: piece.KindStraight,
		Name: name,
		Ports: []piece.Port{
			{ID: "A", Position: geometry.NewVec2(0, -half), Direction: geometry.South},
			{ID: "B", Position: geometry.NewVec2(0, half), Direction: geometry.North},
		},
		Outline: rectOutline(width, -half, half),
	}
}

// curveExit returns the exit port position and facing for a curve whose entry
// is at the origin facing S with its arc centre at (+radius, 0).
func curveExit(radius, angleDeg float64) (geometry.Vec2, geometry.Direction) {
	rad := angleDeg * math.Pi / 180
	pos := geometry.NewVec2(radius-radius*math.Cos(rad), radius*math.Sin(rad))
	steps := 4 - int(math.Round(angleDeg/geometry.StepDegrees))
	return pos, geometry.South.Rotate(steps)
}

// NewCurve returns a curve with entry A at the origin and exit B at the end of
// the arc.
func NewCurve(name string, radius, angleDeg, width float64) *piece.Definition {
	exit, facing := curveExit(radius, angleDeg)
	return &piece.Definition{
		Kind: piece.KindCurve,
		Name: name,
		Ports: []piece.Port{
			{ID: "A", Position: geometry.Vec2{}, Direction: geometry.South},
			{ID: "B", Position: exit, Direction: facing},
		},
		Outline: arcOutline(radius, angleDeg, width),
	}
}

// NewTurnout returns a turnout with entry A at the origin, straight exit B at
// straightLength facing N and branch exit C where a curve would end.
func NewTurnout(name string, straightLength, radius, angleDeg, width float64) *piece.Definition {
	branch, facing := curveExit(radius, angleDeg)
	return &piece.Definition{
		Kind: piece.KindTurnout,
		Name: name,
		Ports: []piece.Port{
			{ID: "A", Position: geometry.Vec2{}, Direction: geometry.South},
			{ID: "B", Position: geometry.NewVec2(0, straightLength), Direction: geometry.North},
			{ID: "C", Position: branch, Direction: facing},
		},
		Outline: rectOutline(width, 0, straightLength) + " " + arcOutline(radius, angleDeg, width),
	}
}

// NewBridge returns a bridge spanning length, built like a straight.
func NewBridge(name string, length, width float64) *piece.Definition {
	def := NewStraight(name, length, width)
	def.Kind = piece.KindBridge
	return def
}

// Standard returns the five standard definitions in catalog order.
func Standard(d Dimensions) []*piece.Definition {
	return []*piece.Definition{
		NewStraight(ShortStraight, d.StraightLength, d.TrackWidth),
		NewStraight(LongStraight, d.StraightLength*2, d.TrackWidth),
		NewCurve(Curve45, d.CurveRadius, d.CurveAngle, d.TrackWidth),
		NewTurnout(Turnout, d.StraightLength*2, d.CurveRadius, d.CurveAngle, d.TrackWidth),
		NewBridge(Bridge, d.StraightLength*5, d.TrackWidth),
	}
}

func rectOutline(width, top, bottom float64) string {
	hw := width / 2
	return fmt.Sprintf("M %g %g L %g %g L %g %g L %g %g Z",
		-hw, top, hw, top, hw, bottom, -hw, bottom)
}

// arcOutline draws a ring segment along the curve centre line, outer arc first.
func arcOutline(radius, angleDeg, width float64) string {
	hw := width / 2
	rad := angleDeg * math.Pi / 180
	inner, outer := radius-hw, radius+hw
	innerEndX, innerEndY := radius-inner*math.Cos(rad), inner*math.Sin(rad)
	outerEndX, outerEndY := radius-outer*math.Cos(rad), outer*math.Sin(rad)
	return fmt.Sprintf("M %g 0 A %g %g 0 0 0 %g %g L %g %g A %g %g 0 0 1 %g 0 Z",
		-hw, outer, outer, outerEndX, outerEndY, innerEndX, innerEndY, inner, inner, hw)
}
