package system

import (
	"slices"

	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
)

// PatrolSystem keeps every watcher in exactly one of PatrolActive or
// PatrolInactive, depending on whether anything it watches for is in view.
type PatrolSystem struct {
	fallbackDelta float64
}

func NewPatrolSystem() *PatrolSystem {
	return &PatrolSystem{fallbackDelta: DefaultPhysicsConfig().FixedDelta}
}

func (s *PatrolSystem) Name() string { return "patrol" }

func (s *PatrolSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := deltaSeconds(w, s.fallbackDelta)

	for _, e := range w.Query(component.PatrolWatchComponent.Kind()) {
		seen := Seen(w, e)
		active, isActive := ecs.Get(w, e, component.PatrolActiveComponent.Kind())

		if len(seen) == 0 {
			if isActive {
				ecs.Remove(w, e, component.PatrolActiveComponent.Kind())
				w.Events().Push(ecs.Event{Type: ecs.EventTargetLost, Data: ecs.BodyEvent{Entity: e, Other: ecs.Entity(active.Target)}})
			}
			if !ecs.Has(w, e, component.PatrolInactiveComponent.Kind()) {
				_ = ecs.Add(w, e, component.PatrolInactiveComponent.Kind(), &component.PatrolInactive{})
			}
			continue
		}

		ecs.Remove(w, e, component.PatrolInactiveComponent.Kind())
		if isActive && slices.Contains(seen, ecs.Entity(active.Target)) {
			active.TimeSeen += dt
			continue
		}
		if !isActive {
			active = &component.PatrolActive{}
			_ = ecs.Add(w, e, component.PatrolActiveComponent.Kind(), active)
		}
		active.Target = uint64(seen[0])
		active.TimeSeen = 0
		w.Events().Push(ecs.Event{Type: ecs.EventTargetSpotted, Data: ecs.BodyEvent{Entity: e, Other: seen[0]}})
	}
}

// Seen lists, in id order, the trigger providers of the watched kind whose
// bounds overlap the watcher's vision. It returns nil for anything that is
// not a placed watcher.
func Seen(w *ecs.World, watcher ecs.Entity) []ecs.Entity {
	watch, ok := ecs.Get(w, watcher, component.PatrolWatchComponent.Kind())
	if !ok {
		return nil
	}
	gt, ok := ecs.Get(w, watcher, component.GlobalTransformComponent.Kind())
	if !ok {
		return nil
	}
	myPlace := placementOf(gt)
	myBox := watch.Vision.AABB(myPlace)

	var out []ecs.Entity
	for _, e := range w.Query(component.TriggerTxComponent.Kind(), component.GlobalTransformComponent.Kind()) {
		if e == watcher {
			continue
		}
		if watch.Ignore != nil && w.HasComponent(e, watch.Ignore) {
			continue
		}
		tx, _ := ecs.Get(w, e, component.TriggerTxComponent.Kind())
		if tx.Kind != watch.Target {
			continue
		}
		txGT, _ := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
		txPlace := placementOf(txGT)
		if !myBox.Intersects(tx.Bounds.AABB(txPlace)) {
			continue
		}
		if watch.Vision.OverlapsWith(myPlace, tx.Bounds, txPlace) {
			out = append(out, e)
		}
	}
	return out
}
