package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

// RemEuclid returns the non-negative remainder of a divided by b.
func RemEuclid(a, b float64) float64 {
	r := math.Mod(a, b)
	if r < 0 {
		r += math.Abs(b)
	}
	return r
}

// NormalizeOrZero returns the unit vector of v, or the zero vector when v has
// no length. cp.Vector.Normalize yields NaN for a zero vector.
func NormalizeOrZero(v cp.Vector) cp.Vector {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return cp.Vector{}
	}
	return v.Mult(1 / l)
}

// Rotate rotates v counter-clockwise by angle radians.
func Rotate(v cp.Vector, angle float64) cp.Vector {
	return v.Rotate(cp.ForAngle(angle))
}

// WrapAxis wraps v into [-size/2, size/2).
func WrapAxis(v, size float64) float64 {
	half := size / 2
	return RemEuclid(v+half, size) - half
}

// WrapPosition wraps each axis of pos into the room centered on the origin.
func WrapPosition(pos cp.Vector, width, height float64) cp.Vector {
	return cp.Vector{X: WrapAxis(pos.X, width), Y: WrapAxis(pos.Y, height)}
}

// RoomDiff returns the shortest displacement from start to end in a room
// that wraps at the given size.
func RoomDiff(end, start cp.Vector, width, height float64) cp.Vector {
	left := RemEuclid(end.X-start.X, width)
	right := RemEuclid(start.X-end.X, width)
	up := RemEuclid(end.Y-start.Y, height)
	down := RemEuclid(start.Y-end.Y, height)
	diff := cp.Vector{X: -right, Y: -down}
	if left < right {
		diff.X = left
	}
	if up < down {
		diff.Y = up
	}
	return diff
}

// ShortestRotation returns the signed smallest angle that takes from to to,
// in (-pi, pi].
func ShortestRotation(from, to float64) float64 {
	diff := RemEuclid(to, 2*math.Pi) - RemEuclid(from, 2*math.Pi)
	if diff > math.Pi {
		diff -= 2 * math.Pi
	} else if diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return diff
}

// SimpleRect returns the corners of a width x height rectangle centered at
// offset, wound clockwise.
func SimpleRect(width, height float64, offset cp.Vector) []cp.Vector {
	hw, hh := width/2, height/2
	return []cp.Vector{
		{X: -hw + offset.X, Y: -hh + offset.Y},
		{X: -hw + offset.X, Y: hh + offset.Y},
		{X: hw + offset.X, Y: hh + offset.Y},
		{X: hw + offset.X, Y: -hh + offset.Y},
	}
}

// RegularPolygon returns sides points on a circle of radius, starting at
// startDeg degrees and walking clockwise.
func RegularPolygon(sides int, startDeg, radius float64) []cp.Vector {
	points := make([]cp.Vector, 0, sides)
	angle := startDeg
	for i := 0; i < sides; i++ {
		rad := angle * math.Pi / 180
		points = append(points, cp.Vector{X: math.Cos(rad) * radius, Y: math.Sin(rad) * radius})
		angle -= 360 / float64(sides)
	}
	return points
}

// MirageOffsets returns the eight translations that tile a room of the given
// size around the origin room.
func MirageOffsets(width, height float64) []cp.Vector {
	offsets := make([]cp.Vector, 0, 8)
	for _, dx := range []float64{-width, 0, width} {
		for _, dy := range []float64{-height, 0, height} {
			if dx == 0 && dy == 0 {
				continue
			}
			offsets = append(offsets, cp.Vector{X: dx, Y: dy})
		}
	}
	return offsets
}
