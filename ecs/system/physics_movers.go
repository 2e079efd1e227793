package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/geom"
)

// pose pairs an entity's local Transform with its GlobalTransform. Writes go
// to the local transform and are mirrored into the global one straight away
// so later checks in the same tick see the new position.
type pose struct {
	tr        *component.Transform
	gt        *component.GlobalTransform
	offset    cp.Vector
	rotOffset float64
}

func poseOf(w *ecs.World, e ecs.Entity) (pose, bool) {
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return pose{}, false
	}
	p := pose{tr: tr}
	if gt, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind()); ok {
		p.gt = gt
		p.offset = gt.Pos().Sub(tr.Pos())
		p.rotOffset = gt.Rotation - tr.Rotation
	}
	return p, true
}

func (p *pose) global() cp.Vector {
	return p.tr.Pos().Add(p.offset)
}

func (p *pose) angle() float64 {
	return p.tr.Rotation + p.rotOffset
}

func (p *pose) placement() geom.Placement {
	return geom.Placement{Pos: p.global(), Rot: p.angle()}
}

func (p *pose) translate(d cp.Vector) {
	p.tr.X += d.X
	p.tr.Y += d.Y
	p.sync()
}

func (p *pose) rotate(a float64) {
	p.tr.Rotation += a
	p.sync()
}

// setGlobal moves the entity so its world pose becomes (pos, rot).
func (p *pose) setGlobal(pos cp.Vector, rot float64) {
	local := pos.Sub(p.offset)
	p.tr.X, p.tr.Y = local.X, local.Y
	p.tr.Rotation = rot - p.rotOffset
	p.sync()
}

func (p *pose) sync() {
	if p.gt == nil {
		return
	}
	p.gt.X = p.tr.X + p.offset.X
	p.gt.Y = p.tr.Y + p.offset.Y
	p.gt.Rotation = p.tr.Rotation + p.rotOffset
}

func integrate(w *ecs.World, e ecs.Entity, dt float64) {
	p, ok := poseOf(w, e)
	if !ok {
		return
	}
	if rot, ok := ecs.Get(w, e, component.DynoRotComponent.Kind()); ok {
		p.rotate(rot.Rot * dt)
	}
	if tran, ok := ecs.Get(w, e, component.DynoTranComponent.Kind()); ok {
		p.translate(tran.Vel.Mult(dt))
	}
}

// movers lists every body with a DynoTran or DynoRot, in id order.
func movers(w *ecs.World) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range w.Entities() {
		if ecs.Has(w, e, component.DynoTranComponent.Kind()) || ecs.Has(w, e, component.DynoRotComponent.Kind()) {
			out = append(out, e)
		}
	}
	return out
}

// moveTrivial integrates bodies that carry no collision role at all. Trigger
// providers are left where they are.
func (ps *PhysicsSystem) moveTrivial(w *ecs.World, dt float64) {
	for _, e := range movers(w) {
		if !initialized(w, e) ||
			ecs.Has(w, e, component.StaticTxComponent.Kind()) ||
			ecs.Has(w, e, component.StaticRxComponent.Kind()) ||
			ecs.Has(w, e, component.TriggerRxComponent.Kind()) ||
			ecs.Has(w, e, component.TriggerTxComponent.Kind()) {
			continue
		}
		integrate(w, e, dt)
	}
}

func (ps *PhysicsSystem) moveStaticProviders(w *ecs.World, dt float64) {
	for _, e := range movers(w) {
		if !initialized(w, e) || !ecs.Has(w, e, component.StaticTxComponent.Kind()) {
			continue
		}
		integrate(w, e, dt)
	}
}

// moveStuck carries every stuck receiver along with its provider.
func (ps *PhysicsSystem) moveStuck(w *ecs.World) {
	for _, e := range w.Query(component.StuckComponent.Kind(), component.StaticRxComponent.Kind(), component.DynoTranComponent.Kind()) {
		if !initialized(w, e) ||
			ecs.Has(w, e, component.DynoRotComponent.Kind()) ||
			ecs.Has(w, e, component.StaticTxComponent.Kind()) {
			continue
		}
		stuck, _ := ecs.Get(w, e, component.StuckComponent.Kind())
		parent := ecs.Entity(stuck.Parent)
		if !ecs.Has(w, parent, component.StaticTxComponent.Kind()) {
			continue
		}
		parentGT, ok := ecs.Get(w, parent, component.GlobalTransformComponent.Kind())
		if !ok {
			continue
		}
		p, ok := poseOf(w, e)
		if !ok {
			continue
		}

		dyno, _ := ecs.Get(w, e, component.DynoTranComponent.Kind())
		dyno.Vel = cp.Vector{}

		turned := parentGT.Rotation - stuck.ParentInitialAngle
		pos := parentGT.Pos().Add(common.Rotate(stuck.InitialOffset, turned))
		p.setGlobal(pos, stuck.MyInitialAngle+turned)

		if hook, ok := ecs.Get(w, e, component.ParticleHookComponent.Kind()); ok && hook.Spawn != nil {
			hook.Spawn(p.global())
		}
	}
}

func roomSize(w *ecs.World) (float64, float64) {
	if e, ok := w.First(component.RoomStateComponent.Kind()); ok {
		room, _ := ecs.Get(w, e, component.RoomStateComponent.Kind())
		return room.Size()
	}
	return component.DefaultRoomWidth, component.DefaultRoomHeight
}

// wrapRoom keeps RoomWrap bodies inside the room.
func wrapRoom(w *ecs.World) {
	width, height := roomSize(w)
	for _, e := range w.Query(component.RoomWrapComponent.Kind()) {
		p, ok := poseOf(w, e)
		if !ok {
			continue
		}
		pos := p.global()
		wrapped := common.WrapPosition(pos, width, height)
		if wrapped != pos {
			p.translate(wrapped.Sub(pos))
		}
	}
}

func placementOf(gt *component.GlobalTransform) geom.Placement {
	return geom.Placement{Pos: gt.Pos(), Rot: gt.Rotation}
}
