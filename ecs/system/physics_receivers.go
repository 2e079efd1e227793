package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
)

// receiver gathers what the sub-step loop needs for one body.
type receiver struct {
	e      ecs.Entity
	pose   pose
	tran   *component.DynoTran
	rot    *component.DynoRot
	static *component.StaticRx
	sensor *component.TriggerRx
	hook   *component.ParticleHook
	stuck  bool
}

// receivers lists every body with a static or trigger receiver role, in
// id order.
func receivers(w *ecs.World) []ecs.Entity {
	var out []ecs.Entity
	for _, e := range w.Entities() {
		if ecs.Has(w, e, component.StaticRxComponent.Kind()) || ecs.Has(w, e, component.TriggerRxComponent.Kind()) {
			out = append(out, e)
		}
	}
	return out
}

func (ps *PhysicsSystem) resolveReceivers(w *ecs.World, dt float64) {
	for _, e := range receivers(w) {
		if !initialized(w, e) || ecs.Has(w, e, component.StuckComponent.Kind()) {
			continue
		}
		r := receiver{e: e}
		r.tran, _ = ecs.Get(w, e, component.DynoTranComponent.Kind())
		r.rot, _ = ecs.Get(w, e, component.DynoRotComponent.Kind())
		if r.tran == nil && r.rot == nil {
			continue
		}
		var ok bool
		if r.pose, ok = poseOf(w, e); !ok {
			continue
		}
		r.static, _ = ecs.Get(w, e, component.StaticRxComponent.Kind())
		r.sensor, _ = ecs.Get(w, e, component.TriggerRxComponent.Kind())
		r.hook, _ = ecs.Get(w, e, component.ParticleHookComponent.Kind())

		ps.step(w, &r, dt)
	}
}

// step runs one receiver's tick: rotate in full, then translate in
// increments of at most MaxStep, checking collisions after each one.
func (ps *PhysicsSystem) step(w *ecs.World, r *receiver, dt float64) {
	if r.rot != nil {
		r.pose.rotate(r.rot.Rot * dt)
	}

	if r.tran == nil {
		if r.sensor != nil {
			ps.resolveTriggers(w, r)
		}
		return
	}

	moved := 0.0
	total := r.tran.Vel.Length() * dt
	for first := true; first || moved < total; first = false {
		dir := common.NormalizeOrZero(r.tran.Vel)
		mag := math.Min(r.tran.Vel.Length()*dt-moved, ps.cfg.MaxStep)
		r.pose.translate(dir.Mult(mag))
		ps.metrics.subStep()

		if r.static != nil {
			ps.resolveStatics(w, r)
		}
		if r.sensor != nil {
			ps.resolveTriggers(w, r)
		}
		if r.hook != nil && r.hook.Spawn != nil {
			r.hook.Spawn(r.pose.global())
		}

		moved += ps.cfg.MaxStep
		total = math.Min(total, r.tran.Vel.Length()*dt)
	}
}

// resolveStatics pushes the receiver out of every static provider it
// overlaps, recording each contact and applying the reaction policy.
func (ps *PhysicsSystem) resolveStatics(w *ecs.World, r *receiver) {
	for _, txEnt := range w.Query(component.StaticTxComponent.Kind(), component.GlobalTransformComponent.Kind()) {
		tx, _ := ecs.Get(w, txEnt, component.StaticTxComponent.Kind())
		txGT, _ := ecs.Get(w, txEnt, component.GlobalTransformComponent.Kind())
		txPlace := placementOf(txGT)
		myPlace := r.pose.placement()

		if !r.static.Bounds.AABB(myPlace).Intersects(tx.Bounds.AABB(txPlace)) {
			continue
		}
		push, contact, ok := r.static.Bounds.BounceOff(myPlace, tx.Bounds, txPlace)
		if !ok {
			continue
		}

		normal := common.NormalizeOrZero(push)
		perp := normal.Mult(r.tran.Vel.Dot(normal))
		id := ps.records.AddStatic(component.StaticCollisionRecord{
			Pos:      contact,
			RxPerp:   perp,
			RxPar:    r.tran.Vel.Sub(perp),
			TxEntity: uint64(txEnt),
			TxKind:   tx.Kind,
			RxEntity: uint64(r.e),
			RxKind:   r.static.Kind,
		})
		r.static.Collisions = append(r.static.Collisions, id)
		tx.Collisions = append(tx.Collisions, id)

		r.pose.translate(push)

		switch {
		case r.static.Kind.Mode == component.StaticRxStop:
			r.tran.Vel = cp.Vector{}
		case r.static.Kind.Mode == component.StaticRxGoAround:
			r.tran.Vel = r.tran.Vel.Add(push.ReversePerp().Mult(float64(r.static.Kind.Mult)))
		case tx.Kind == component.StaticTxNormal:
			r.tran.Vel = ps.bounce(r.tran.Vel, push)
		case tx.Kind == component.StaticTxSticky:
			r.tran.Vel = cp.Vector{}
			ps.stick(w, r, txEnt, myPlace.Rot, txPlace.Rot, r.pose.global().Sub(txPlace.Pos))
		}
		if r.stuck {
			return
		}
	}
}

// bounce reflects the part of vel along push, scaled by restitution, and
// damps the rest by a friction factor that grows the more head-on the hit.
func (ps *PhysicsSystem) bounce(vel, push cp.Vector) cp.Vector {
	normal := common.NormalizeOrZero(push)
	oldPerp := normal.Mult(vel.Dot(normal))
	oldPar := vel.Sub(oldPerp)

	newPerp := oldPerp.Mult(ps.cfg.Restitution)
	if newPerp.Dot(push) < 0 {
		newPerp = newPerp.Neg()
	}
	headOn := 1 + math.Abs(common.NormalizeOrZero(vel).Dot(normal))*ps.cfg.HeadOnFriction
	newPar := oldPar.Mult(1 - math.Min(ps.cfg.Friction*headOn, 1))
	return newPerp.Add(newPar)
}

func (ps *PhysicsSystem) stick(w *ecs.World, r *receiver, parent ecs.Entity, myAngle, parentAngle float64, offset cp.Vector) {
	stuck := &component.Stuck{
		Parent:             uint64(parent),
		MyInitialAngle:     myAngle,
		ParentInitialAngle: parentAngle,
		InitialOffset:      offset,
	}
	if err := ecs.Add(w, r.e, component.StuckComponent.Kind(), stuck); err != nil {
		panic("physics: attach stuck: " + err.Error())
	}
	r.stuck = true
	ps.metrics.stuck()
	w.Events().Push(ecs.Event{Type: ecs.EventStuck, Data: ecs.BodyEvent{Entity: r.e, Other: parent}})
	if ps.cfg.Verbose {
		log.Printf("physics: %v stuck to %v at offset (%.2f, %.2f)", r.e, parent, offset.X, offset.Y)
	}
}

// resolveTriggers records an overlap with every trigger provider other than
// the receiver itself. Each unordered pair is recorded once per tick, with
// one copy in each side's queue.
func (ps *PhysicsSystem) resolveTriggers(w *ecs.World, r *receiver) {
	myPlace := r.pose.placement()
	for _, txEnt := range w.Query(component.TriggerTxComponent.Kind(), component.GlobalTransformComponent.Kind()) {
		if txEnt == r.e {
			continue
		}
		pair := pairOf(r.e, txEnt)
		if _, done := ps.seenPairs[pair]; done {
			continue
		}
		tx, _ := ecs.Get(w, txEnt, component.TriggerTxComponent.Kind())
		txGT, _ := ecs.Get(w, txEnt, component.GlobalTransformComponent.Kind())
		txPlace := placementOf(txGT)

		if !r.sensor.Bounds.AABB(myPlace).Intersects(tx.Bounds.AABB(txPlace)) {
			continue
		}
		contact, ok := r.sensor.Bounds.ContactPoint(myPlace, tx.Bounds, txPlace)
		if !ok {
			continue
		}

		record := component.TriggerCollisionRecord{
			Pos:      contact,
			Role:     component.TriggerRoleRx,
			TxEntity: uint64(txEnt),
			TxKind:   tx.Kind,
			RxEntity: uint64(r.e),
			RxKind:   r.sensor.Kind,
		}
		r.sensor.Collisions = append(r.sensor.Collisions, ps.records.AddTrigger(record))
		record.Role = component.TriggerRoleTx
		tx.Collisions = append(tx.Collisions, ps.records.AddTrigger(record))
		ps.seenPairs[pair] = struct{}{}
	}
}
