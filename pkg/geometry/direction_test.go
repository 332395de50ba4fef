package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionAngles(t *testing.T) {
	want := map[Direction]float64{
		East: 0, SouthEast: 45, South: 90, SouthWest: 135,
		West: 180, NorthWest: 225, North: 270, NorthEast: 315,
	}
	for d, angle := range want {
		assert.Equal(t, angle, DirectionToAngle(d), d.String())
	}
}

func TestAngleToDirection(t *testing.T) {
	assert.Equal(t, East, AngleToDirection(0))
	assert.Equal(t, SouthEast, AngleToDirection(45))
	assert.Equal(t, South, AngleToDirection(90))
	assert.Equal(t, West, AngleToDirection(180))
	assert.Equal(t, North, AngleToDirection(270))

	t.Run("wrapping", func(t *testing.T) {
		assert.Equal(t, East, AngleToDirection(360))
		assert.Equal(t, North, AngleToDirection(-90))
		assert.Equal(t, SouthEast, AngleToDirection(765))
		assert.Equal(t, East, AngleToDirection(-720))
	})

	t.Run("nearest", func(t *testing.T) {
		assert.Equal(t, South, AngleToDirection(80))
		assert.Equal(t, East, AngleToDirection(350))
	})
}

func TestDirectionRoundTrip(t *testing.T) {
	for _, d := range Directions {
		assert.Equal(t, d, AngleToDirection(DirectionToAngle(d)), d.String())
	}
}

func TestOpposite(t *testing.T) {
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, SouthWest, NorthEast.Opposite())
	assert.Equal(t, West, East.Opposite())
	assert.Equal(t, NorthWest, SouthEast.Opposite())

	for _, d := range Directions {
		assert.Equal(t, d, d.Opposite().Opposite(), d.String())
		assert.NotEqual(t, d, d.Opposite(), d.String())
	}
}

func TestRotateDirection(t *testing.T) {
	assert.Equal(t, SouthEast, East.Rotate(1))
	assert.Equal(t, South, East.Rotate(2))
	assert.Equal(t, East, North.Rotate(2))
	assert.Equal(t, NorthWest, North.Rotate(-1))

	for _, d := range Directions {
		assert.Equal(t, d, d.Rotate(8), d.String())
		assert.Equal(t, d, d.Rotate(-16), d.String())
		assert.Equal(t, d.Opposite(), d.Rotate(4), d.String())
		for m := -9; m <= 9; m++ {
			for n := -9; n <= 9; n++ {
				assert.Equal(t, d.Rotate(m+n), d.Rotate(m).Rotate(n))
			}
		}
	}
}

func TestCardinalClassification(t *testing.T) {
	assert.True(t, North.IsCardinal())
	assert.False(t, NorthEast.IsCardinal())
	assert.True(t, NorthEast.IsIntercardinal())
	assert.False(t, North.IsIntercardinal())

	for _, d := range Directions {
		assert.NotEqual(t, d.IsCardinal(), d.IsIntercardinal(), d.String())
	}
}

func TestDirectionText(t *testing.T) {
	for _, d := range Directions {
		text, err := d.MarshalText()
		require.NoError(t, err)

		var parsed Direction
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, d, parsed)
	}

	_, err := ParseDirection("up")
	assert.Error(t, err)

	_, err = Direction(12).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Unknown", Direction(-1).String())
}

func TestRotationHelpers(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeAngle(360))
	assert.Equal(t, 315.0, NormalizeAngle(-45))
	assert.Equal(t, 2, RotationSteps(90))
	assert.Equal(t, -1, RotationSteps(-45))
	assert.Equal(t, 315.0, AddRotationSteps(0, -1))
	assert.Equal(t, 0.0, AddRotationSteps(315, 1))
	assert.Equal(t, 90.0, AddRotationSteps(180, 6))
}
