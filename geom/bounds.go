package geom

import (
	"github.com/jakecoffman/cp"
)

// Bounds is the ordered, non-empty list of shapes that make up a body's
// collision volume. Each polygon's triangulation is computed once when the
// Bounds is built.
type Bounds struct {
	entries []entry
}

func FromShape(s Shape) Bounds {
	return Bounds{entries: []entry{newEntry(s)}}
}

func FromShapes(shapes []Shape) Bounds {
	if len(shapes) == 0 {
		panic("geom: bounds need at least one shape")
	}
	entries := make([]entry, len(shapes))
	for i, s := range shapes {
		entries[i] = newEntry(s)
	}
	return Bounds{entries: entries}
}

// WithMirages appends a translated copy of every shape for each offset, so a
// body near a room edge also collides on the opposite side.
func (b Bounds) WithMirages(offsets []cp.Vector) Bounds {
	entries := make([]entry, 0, len(b.entries)*(len(offsets)+1))
	entries = append(entries, b.entries...)
	for _, off := range offsets {
		for _, e := range b.entries {
			moved := entry{shape: e.shape.WithOffset(off)}
			if e.triangles != nil {
				moved.triangles = make([]Triangle, len(e.triangles))
				for i, t := range e.triangles {
					moved.triangles[i] = t.Shifted(off)
				}
			}
			entries = append(entries, moved)
		}
	}
	return Bounds{entries: entries}
}

func (b Bounds) Len() int {
	return len(b.entries)
}

func (b Bounds) Shapes() []Shape {
	out := make([]Shape, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.shape
	}
	return out
}

// AABB returns the box around every placed shape.
func (b Bounds) AABB(p Placement) cp.BB {
	var bb cp.BB
	for i, e := range b.entries {
		if i == 0 {
			bb = e.shape.AABB(p)
			continue
		}
		bb = bb.Merge(e.shape.AABB(p))
	}
	return bb
}

// BounceOff returns the push for the first pair of shapes, in order, that
// touch. Later overlaps are not considered.
func (b Bounds) BounceOff(p Placement, other Bounds, op Placement) (push, contact cp.Vector, ok bool) {
	for _, mine := range b.entries {
		for _, theirs := range other.entries {
			if push, contact, ok = mine.shape.BounceOff(p, theirs.shape, op); ok {
				return push, contact, true
			}
		}
	}
	return cp.Vector{}, cp.Vector{}, false
}

func (b Bounds) OverlapsWith(p Placement, other Bounds, op Placement) bool {
	for _, mine := range b.entries {
		for _, theirs := range other.entries {
			if overlaps(mine, p, theirs, op) {
				return true
			}
		}
	}
	return false
}

// ContactPoint finds the first overlapping pair and returns the point on the
// other shape's border closest to this shape's anchor.
func (b Bounds) ContactPoint(p Placement, other Bounds, op Placement) (cp.Vector, bool) {
	for _, mine := range b.entries {
		for _, theirs := range other.entries {
			if !overlaps(mine, p, theirs, op) {
				continue
			}
			_, contact := theirs.shape.ClosestPoint(op, mine.shape.anchor(p))
			return contact, true
		}
	}
	return cp.Vector{}, false
}
