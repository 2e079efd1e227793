package system

import (
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
)

// checkInvariants panics on role combinations the resolver cannot handle.
func checkInvariants(w *ecs.World) {
	staticTx := component.StaticTxComponent.Kind()
	staticRx := component.StaticRxComponent.Kind()
	triggerTx := component.TriggerTxComponent.Kind()
	triggerRx := component.TriggerRxComponent.Kind()

	if len(w.Query(staticTx, staticRx)) > 0 {
		panic("physics: an entity cannot be both a static provider and a static receiver")
	}
	if len(w.Query(staticTx, triggerTx)) > 0 || len(w.Query(staticTx, triggerRx)) > 0 {
		panic("physics: triggers on static providers are not supported")
	}
	for _, k := range []component.AnyKind{staticTx, staticRx, triggerTx, triggerRx} {
		for _, e := range w.Query(k) {
			if !ecs.Has(w, e, component.GlobalTransformComponent.Kind()) {
				panic("physics: entity " + e.String() + " has a collision role but no global transform")
			}
		}
	}
	for _, e := range w.Query(staticRx) {
		if !ecs.Has(w, e, component.DynoTranComponent.Kind()) {
			panic("physics: static receiver " + e.String() + " has no DynoTran")
		}
		if ecs.Has(w, e, component.DynoRotComponent.Kind()) {
			panic("physics: static receiver " + e.String() + " cannot have a DynoRot")
		}
	}
}
