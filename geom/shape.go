// Package geom holds the collision volumes used by the physics systems:
// circles and clockwise polygons, their triangulations, and Bounds, the
// ordered shape lists attached to bodies.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
)

type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapePolygon
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapePolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Placement is a world position and rotation supplied at query time.
type Placement struct {
	Pos cp.Vector
	Rot float64
}

// At is shorthand for an unrotated placement.
func At(x, y float64) Placement {
	return Placement{Pos: cp.Vector{X: x, Y: y}}
}

// Shape is either a circle or a polygon whose exterior points are listed in
// CLOCKWISE order. Shapes are values and are never mutated after
// construction; use WithOffset to derive a new one.
//
// Circle centers are offsets that do not rotate with the placement, so a
// circle offset by a mirage translation stays aligned with the room.
type Shape struct {
	kind   ShapeKind
	center cp.Vector
	radius float64
	points []cp.Vector
}

func Circle(center cp.Vector, radius float64) Shape {
	return Shape{kind: ShapeCircle, center: center, radius: radius}
}

func Polygon(points []cp.Vector) Shape {
	return Shape{kind: ShapePolygon, points: append([]cp.Vector(nil), points...)}
}

func (s Shape) Kind() ShapeKind {
	return s.kind
}

// WithOffset returns a copy of the shape translated by offset.
func (s Shape) WithOffset(offset cp.Vector) Shape {
	switch s.kind {
	case ShapeCircle:
		return Circle(s.center.Add(offset), s.radius)
	default:
		moved := make([]cp.Vector, len(s.points))
		for i, p := range s.points {
			moved[i] = p.Add(offset)
		}
		return Shape{kind: ShapePolygon, points: moved}
	}
}

// Outline returns points describing the shape's boundary in local space.
// Circles are approximated by a regular polygon.
func (s Shape) Outline() []cp.Vector {
	switch s.kind {
	case ShapeCircle:
		sides := int(math.Ceil(s.radius)) * 2
		if sides < 3 {
			sides = 3
		}
		points := common.RegularPolygon(sides, 0, s.radius)
		for i := range points {
			points[i] = points[i].Add(s.center)
		}
		return points
	default:
		return append([]cp.Vector(nil), s.points...)
	}
}

// Placed returns the polygon's points rotated and translated into world
// space. Circles return nil.
func (s Shape) Placed(p Placement) []cp.Vector {
	if s.kind != ShapePolygon {
		return nil
	}
	rot := cp.ForAngle(p.Rot)
	out := make([]cp.Vector, len(s.points))
	for i, pt := range s.points {
		out[i] = p.Pos.Add(pt.Rotate(rot))
	}
	return out
}

// anchor is the world-space point used as the shape's representative
// position: the circle center or the polygon centroid.
func (s Shape) anchor(p Placement) cp.Vector {
	if s.kind == ShapeCircle {
		return p.Pos.Add(s.center)
	}
	placed := s.Placed(p)
	var sum cp.Vector
	for _, pt := range placed {
		sum = sum.Add(pt)
	}
	if len(placed) == 0 {
		return p.Pos
	}
	return sum.Mult(1 / float64(len(placed)))
}

// AABB returns the world-space bounding box of the placed shape.
func (s Shape) AABB(p Placement) cp.BB {
	if s.kind == ShapeCircle {
		return cp.NewBBForCircle(p.Pos.Add(s.center), s.radius)
	}
	placed := s.Placed(p)
	bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
	for _, pt := range placed {
		bb = bb.Expand(pt)
	}
	return bb
}

// ClosestPoint returns the signed distance from point to the shape's border
// and the closest point on that border, in world space. The distance is
// positive outside the shape and negative inside.
func (s Shape) ClosestPoint(p Placement, point cp.Vector) (float64, cp.Vector) {
	switch s.kind {
	case ShapeCircle:
		center := p.Pos.Add(s.center)
		diff := point.Sub(center)
		signed := diff.Length() - s.radius
		return signed, center.Add(common.NormalizeOrZero(diff).Mult(s.radius))
	default:
		signed := math.MaxFloat64
		var closest cp.Vector
		placed := s.Placed(p)
		for _, line := range Lines(placed) {
			d, c := SignedDistanceToSegment(point, line)
			if math.Abs(d) < math.Abs(signed) {
				signed = d
				closest = c
			}
		}
		return signed, closest
	}
}

// BounceOff figures out how to push this shape out of other. It returns the
// displacement to apply to this shape's placement and the contact point, or
// ok=false when they do not touch.
//
// Only circles can bounce. A circle whose center is further than its radius
// from the other border is left alone, even when it sits deep inside the
// other shape.
func (s Shape) BounceOff(p Placement, other Shape, op Placement) (push, contact cp.Vector, ok bool) {
	switch s.kind {
	case ShapeCircle:
		center := p.Pos.Add(s.center)
		signed, cpt := other.ClosestPoint(op, center)
		if math.Abs(signed) > s.radius {
			return cp.Vector{}, cp.Vector{}, false
		}
		dir := common.NormalizeOrZero(center.Sub(cpt))
		return dir.Mult(s.radius - signed), cpt, true
	default:
		panic("geom: bounce off with a polygon subject is not implemented")
	}
}

// Overlaps reports whether two placed shapes intersect. Polygon
// triangulations are computed on the fly; Bounds keeps them cached.
func Overlaps(a Shape, ap Placement, b Shape, bp Placement) bool {
	return overlaps(newEntry(a), ap, newEntry(b), bp)
}

// entry pairs a shape with the data derived from it once at construction.
type entry struct {
	shape     Shape
	triangles []Triangle
}

func newEntry(s Shape) entry {
	e := entry{shape: s}
	if s.kind == ShapePolygon {
		e.triangles = Triangulate(s.points)
	}
	return e
}

func placedTriangles(tris []Triangle, p Placement) []Triangle {
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		out[i] = t.Rotated(p.Rot).Shifted(p.Pos)
	}
	return out
}

func circleHitsTriangles(center cp.Vector, radius float64, tris []Triangle, p Placement) bool {
	for _, t := range tris {
		if t.Rotated(p.Rot).Shifted(p.Pos).SignedDistanceToPoint(center) < radius {
			return true
		}
	}
	return false
}

func overlaps(a entry, ap Placement, b entry, bp Placement) bool {
	switch {
	case a.shape.kind == ShapeCircle && b.shape.kind == ShapeCircle:
		ca := ap.Pos.Add(a.shape.center)
		cb := bp.Pos.Add(b.shape.center)
		return ca.Distance(cb) < a.shape.radius+b.shape.radius
	case a.shape.kind == ShapeCircle:
		return circleHitsTriangles(ap.Pos.Add(a.shape.center), a.shape.radius, b.triangles, bp)
	case b.shape.kind == ShapeCircle:
		return circleHitsTriangles(bp.Pos.Add(b.shape.center), b.shape.radius, a.triangles, ap)
	default:
		ta := placedTriangles(a.triangles, ap)
		tb := placedTriangles(b.triangles, bp)
		for _, x := range ta {
			for _, y := range tb {
				if TrianglesCollide(x, y) {
					return true
				}
			}
		}
		return false
	}
}

// SignedDistanceToSegment returns the distance from pos to line, positive
// when pos is outside the line under the clockwise convention, along with
// the closest point.
func SignedDistanceToSegment(pos cp.Vector, line [2]cp.Vector) (float64, cp.Vector) {
	closest := line[0]
	if line[0] != line[1] {
		closest = pos.ClosestPointOnSegment(line[0], line[1])
	}
	d := line[1].Sub(line[0])
	normal := d.ReversePerp()
	side := line[0].Sub(pos).Dot(normal)
	return signum(side) * pos.Distance(closest), closest
}

// Lines returns the closed edge list of a point loop.
func Lines(points []cp.Vector) [][2]cp.Vector {
	lines := make([][2]cp.Vector, len(points))
	for i := range points {
		lines[i] = [2]cp.Vector{points[i], points[(i+1)%len(points)]}
	}
	return lines
}

// signum treats zero as positive.
func signum(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
