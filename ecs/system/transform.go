package system

import (
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
)

// TransformSystem derives each GlobalTransform from the Transform and its
// Parent chain. A child's offset is rotated by its parent's world rotation.
type TransformSystem struct{}

func NewTransformSystem() *TransformSystem {
	return &TransformSystem{}
}

func (s *TransformSystem) Name() string { return "transform" }

func (s *TransformSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	done := make(map[ecs.Entity]bool)
	for _, e := range w.Query(component.TransformComponent.Kind()) {
		propagate(w, e, done, 0)
	}
}

const maxTransformDepth = 64

func propagate(w *ecs.World, e ecs.Entity, done map[ecs.Entity]bool, depth int) *component.GlobalTransform {
	if depth > maxTransformDepth {
		panic("transform: parent chain too deep or cyclic at entity " + e.String())
	}
	gt, hasGT := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	if done[e] {
		return gt
	}
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return gt
	}
	if !hasGT {
		gt = &component.GlobalTransform{}
		_ = ecs.Add(w, e, component.GlobalTransformComponent.Kind(), gt)
	}

	gt.X, gt.Y, gt.Rotation = tr.X, tr.Y, tr.Rotation
	if parent, ok := ecs.Get(w, e, component.ParentComponent.Kind()); ok {
		pe := ecs.Entity(parent.Entity)
		if pgt := propagate(w, pe, done, depth+1); pgt != nil && w.IsAlive(pe) {
			offset := common.Rotate(tr.Pos(), pgt.Rotation)
			gt.X = pgt.X + offset.X
			gt.Y = pgt.Y + offset.Y
			gt.Rotation = pgt.Rotation + tr.Rotation
		}
	}
	done[e] = true
	return gt
}
