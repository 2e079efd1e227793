package component

import "github.com/jakecoffman/cp"

// Transform is the entity's pose relative to its Parent, or to the world
// when it has none.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

func (t *Transform) Pos() cp.Vector {
	return cp.Vector{X: t.X, Y: t.Y}
}

// GlobalTransform is the world pose derived from the Transform chain.
type GlobalTransform struct {
	X        float64
	Y        float64
	Rotation float64
}

func (t *GlobalTransform) Pos() cp.Vector {
	return cp.Vector{X: t.X, Y: t.Y}
}

// Parent links an entity's Transform to another entity's GlobalTransform.
type Parent struct {
	Entity uint64
}

var (
	TransformComponent       = NewComponent[Transform]()
	GlobalTransformComponent = NewComponent[GlobalTransform]()
	ParentComponent          = NewComponent[Parent]()
)
