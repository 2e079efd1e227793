package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

type Triangle [3]cp.Vector

func (t Triangle) Rotated(angle float64) Triangle {
	if angle == 0 {
		return t
	}
	rot := cp.ForAngle(angle)
	return Triangle{t[0].Rotate(rot), t[1].Rotate(rot), t[2].Rotate(rot)}
}

func (t Triangle) Shifted(offset cp.Vector) Triangle {
	return Triangle{t[0].Add(offset), t[1].Add(offset), t[2].Add(offset)}
}

func (t Triangle) Area() float64 {
	return math.Abs(t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))) / 2
}

func (t Triangle) Lines() [3][2]cp.Vector {
	return [3][2]cp.Vector{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
}

// Contains reports whether pos lies inside or on the triangle, regardless of
// winding.
func (t Triangle) Contains(pos cp.Vector) bool {
	d0 := t[1].Sub(t[0]).Cross(pos.Sub(t[0]))
	d1 := t[2].Sub(t[1]).Cross(pos.Sub(t[1]))
	d2 := t[0].Sub(t[2]).Cross(pos.Sub(t[2]))
	hasNeg := d0 < 0 || d1 < 0 || d2 < 0
	hasPos := d0 > 0 || d1 > 0 || d2 > 0
	return !(hasNeg && hasPos)
}

// SignedDistanceToPoint is the largest distance from pos to any of the three
// edges, negated when pos is inside or on the triangle. It is a conservative
// measure: near a corner it exceeds the true border distance.
func (t Triangle) SignedDistanceToPoint(pos cp.Vector) float64 {
	var far float64
	for _, line := range t.Lines() {
		d, _ := SignedDistanceToSegment(pos, line)
		far = math.Max(far, math.Abs(d))
	}
	if t.Contains(pos) {
		return -far
	}
	return far
}

// TrianglesCollide looks for an edge of either triangle with the whole other
// triangle strictly on the far side of it. Without one the triangles collide,
// so a shared edge or a shared vertex counts as a collision.
func TrianglesCollide(a, b Triangle) bool {
	return !hasSeparatingEdge(a, b) && !hasSeparatingEdge(b, a)
}

func hasSeparatingEdge(t, other Triangle) bool {
	for i := range t {
		from, to, rest := t[i], t[(i+1)%3], t[(i+2)%3]
		edge := to.Sub(from)
		sum := 0.0
		for _, p := range other {
			sum += signOf(edge.Cross(p.Sub(from)))
		}
		if math.Abs(sum) != 3 {
			continue
		}
		if signOf(edge.Cross(rest.Sub(from)))*sum < 0 {
			return true
		}
	}
	return false
}

// signOf is -1, 0 or 1.
func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
