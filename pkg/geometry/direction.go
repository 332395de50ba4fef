package geometry

import (
	"fmt"
	"math"
)

// Direction is one of the eight compass directions a port can face.
// The numeric value is the direction's angle divided by 45°, so East is 0 and
// angles grow clockwise in the Y-down plane.
type Direction int

const (
	East Direction = iota
	SouthEast
	South
	SouthWest
	West
	NorthWest
	North
	NorthEast
)

// StepDegrees is the angular size of one direction step.
const StepDegrees = 45.0

const directionCount = 8

// Directions lists every direction in compass order starting at North.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionNames = [directionCount]string{"E", "SE", "S", "SW", "W", "NW", "N", "NE"}

func (d Direction) String() string {
	if d < 0 || d >= directionCount {
		return "Unknown"
	}
	return directionNames[d]
}

// ParseDirection parses a compass abbreviation such as "N" or "SW".
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("invalid direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d < 0 || d >= directionCount {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DirectionToAngle returns the direction's angle in degrees: E=0, S=90, W=180, N=270.
func DirectionToAngle(d Direction) float64 {
	return float64(d) * StepDegrees
}

// AngleToDirection normalizes angle into [0, 360) and returns the nearest of
// the eight directions.
func AngleToDirection(angle float64) Direction {
	normalized := NormalizeAngle(angle)
	index := int(math.Round(normalized/StepDegrees)) % directionCount
	return Direction(index)
}

// Opposite returns the direction rotated by 180°.
func (d Direction) Opposite() Direction {
	return AngleToDirection(DirectionToAngle(d) + 180)
}

// Rotate returns the direction turned by steps multiples of 45°.
// Positive steps turn clockwise in the Y-down plane.
func (d Direction) Rotate(steps int) Direction {
	return AngleToDirection(DirectionToAngle(d) + float64(steps)*StepDegrees)
}

// IsCardinal reports whether d is N, E, S or W.
func (d Direction) IsCardinal() bool {
	switch d {
	case North, East, South, West:
		return true
	}
	return false
}

// IsIntercardinal reports whether d is NE, SE, SW or NW.
func (d Direction) IsIntercardinal() bool {
	switch d {
	case NorthEast, SouthEast, SouthWest, NorthWest:
		return true
	}
	return false
}

// NormalizeAngle maps any angle in degrees into [0, 360).
func NormalizeAngle(angle float64) float64 {
	normalized := math.Mod(math.Mod(angle, 360)+360, 360)
	if normalized == 360 {
		return 0
	}
	return normalized
}

// RotationSteps converts a rotation in degrees to the nearest whole number of
// 45° steps.
func RotationSteps(rotation float64) int {
	return int(math.Round(rotation / StepDegrees))
}

// AddRotationSteps turns rotation by steps multiples of 45° and normalizes the
// result into [0, 360).
func AddRotationSteps(rotation float64, steps int) float64 {
	return NormalizeAngle(rotation + float64(steps)*StepDegrees)
}
