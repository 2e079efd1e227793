package system

import (
	"log"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/prefabs"
)

// PhysicsConfig tunes the resolution engine.
type PhysicsConfig struct {
	// MaxStep is the longest distance a receiver moves between collision
	// checks.
	MaxStep float64
	// Restitution scales the velocity component along the push normal after
	// a normal bounce.
	Restitution float64
	// Friction damps the velocity component across the push normal.
	Friction float64
	// HeadOnFriction multiplies friction by up to 1+HeadOnFriction the more
	// directly a receiver hits.
	HeadOnFriction float64
	// FixedDelta is the tick length used when the world has no BulletTime.
	FixedDelta float64
	// CheckInvariants panics on invalid role combinations every tick.
	CheckInvariants bool
	Verbose         bool
}

func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		MaxStep:         2.0,
		Restitution:     0.2,
		Friction:        0.03,
		HeadOnFriction:  10,
		FixedDelta:      1.0 / 36,
		CheckInvariants: true,
	}
}

// LoadPhysicsConfig reads physics.yaml, filling anything it leaves out with
// the defaults.
func LoadPhysicsConfig() (PhysicsConfig, error) {
	spec, err := prefabs.LoadPhysicsSpec()
	if err != nil {
		return DefaultPhysicsConfig(), err
	}
	return PhysicsConfigFromSpec(spec), nil
}

func PhysicsConfigFromSpec(spec prefabs.PhysicsSpec) PhysicsConfig {
	cfg := DefaultPhysicsConfig()
	if spec.MaxStep > 0 {
		cfg.MaxStep = spec.MaxStep
	}
	if spec.Restitution != nil {
		cfg.Restitution = *spec.Restitution
	}
	if spec.Friction != nil {
		cfg.Friction = *spec.Friction
	}
	if spec.HeadOnFriction != nil {
		cfg.HeadOnFriction = *spec.HeadOnFriction
	}
	if spec.TickRate > 0 {
		cfg.FixedDelta = 1 / spec.TickRate
	}
	if spec.CheckInvariants != nil {
		cfg.CheckInvariants = *spec.CheckInvariants
	}
	cfg.Verbose = spec.Verbose
	return cfg
}

// PhysicsSystem moves every body and resolves its collisions, once per
// fixed tick. Records it produces live until the next Update.
type PhysicsSystem struct {
	cfg     PhysicsConfig
	metrics *PhysicsMetrics

	records   *component.CollisionRecords
	seenPairs map[triggerPair]struct{}
}

type triggerPair struct {
	lo, hi ecs.Entity
}

func pairOf(a, b ecs.Entity) triggerPair {
	if a > b {
		a, b = b, a
	}
	return triggerPair{lo: a, hi: b}
}

func NewPhysicsSystem(cfg PhysicsConfig) *PhysicsSystem {
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = DefaultPhysicsConfig().MaxStep
	}
	if !cfg.CheckInvariants {
		log.Printf("physics: invariant checks disabled")
	}
	return &PhysicsSystem{
		cfg:       cfg,
		seenPairs: make(map[triggerPair]struct{}),
	}
}

func (ps *PhysicsSystem) Name() string { return "physics" }

func (ps *PhysicsSystem) Config() PhysicsConfig {
	return ps.cfg
}

// SetConfig swaps the tuning between ticks.
func (ps *PhysicsSystem) SetConfig(cfg PhysicsConfig) {
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = DefaultPhysicsConfig().MaxStep
	}
	ps.cfg = cfg
}

// SetMetrics attaches m; nil detaches.
func (ps *PhysicsSystem) SetMetrics(m *PhysicsMetrics) {
	ps.metrics = m
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	start := time.Now()
	dt := ps.delta(w)

	ps.reset(w)
	if ps.cfg.CheckInvariants {
		checkInvariants(w)
	}

	// New bodies sit out this tick and are marked once everything has moved.
	fresh := uninitialized(w)

	ps.moveTrivial(w, dt)
	ps.moveStaticProviders(w, dt)
	ps.resolveReceivers(w, dt)
	ps.moveStuck(w)
	wrapRoom(w)

	for _, e := range fresh {
		_ = ecs.Add(w, e, component.PhysicsInitializedComponent.Kind(), &component.PhysicsInitialized{})
	}

	ps.metrics.observeTick(time.Since(start), ps.records)
}

func (ps *PhysicsSystem) delta(w *ecs.World) float64 {
	return deltaSeconds(w, ps.cfg.FixedDelta)
}

// Records returns the collision arena for the last tick.
func (ps *PhysicsSystem) Records() *component.CollisionRecords {
	return ps.records
}

// CollisionRecordsOf returns the arena on the world's collision root.
func CollisionRecordsOf(w *ecs.World) *component.CollisionRecords {
	e, ok := w.First(component.CollisionRootComponent.Kind())
	if !ok {
		return nil
	}
	records, _ := ecs.Get(w, e, component.CollisionRootComponent.Kind())
	return records
}

func (ps *PhysicsSystem) reset(w *ecs.World) {
	ecs.ForEach(w, component.StaticTxComponent.Kind(), func(_ ecs.Entity, tx *component.StaticTx) {
		tx.Collisions = nil
	})
	ecs.ForEach(w, component.StaticRxComponent.Kind(), func(_ ecs.Entity, rx *component.StaticRx) {
		rx.Collisions = nil
	})
	ecs.ForEach(w, component.TriggerTxComponent.Kind(), func(_ ecs.Entity, tx *component.TriggerTx) {
		tx.Collisions = nil
	})
	ecs.ForEach(w, component.TriggerRxComponent.Kind(), func(_ ecs.Entity, rx *component.TriggerRx) {
		rx.Collisions = nil
	})

	ps.records = CollisionRecordsOf(w)
	if ps.records == nil {
		root := ecs.CreateEntity(w)
		ps.records = &component.CollisionRecords{}
		if err := ecs.Add(w, root, component.CollisionRootComponent.Kind(), ps.records); err != nil {
			panic("physics: create collision root: " + err.Error())
		}
	}
	ps.records.Reset()
	clear(ps.seenPairs)
}

func uninitialized(w *ecs.World) []ecs.Entity {
	kinds := []component.AnyKind{
		component.DynoTranComponent.Kind(),
		component.DynoRotComponent.Kind(),
		component.StaticTxComponent.Kind(),
		component.StaticRxComponent.Kind(),
		component.TriggerTxComponent.Kind(),
		component.TriggerRxComponent.Kind(),
	}
	var out []ecs.Entity
	for _, e := range w.Entities() {
		if w.HasComponent(e, component.PhysicsInitializedComponent.Kind()) {
			continue
		}
		for _, k := range kinds {
			if w.HasComponent(e, k) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func initialized(w *ecs.World, e ecs.Entity) bool {
	return ecs.Has(w, e, component.PhysicsInitializedComponent.Kind())
}

// Release detaches a stuck body and launches it with vel. It reports false
// when e was not stuck.
func Release(w *ecs.World, e ecs.Entity, vel cp.Vector) bool {
	stuck, ok := ecs.Get(w, e, component.StuckComponent.Kind())
	if !ok {
		return false
	}
	parent := ecs.Entity(stuck.Parent)
	ecs.Remove(w, e, component.StuckComponent.Kind())

	dyno, ok := ecs.Get(w, e, component.DynoTranComponent.Kind())
	if !ok {
		dyno = &component.DynoTran{}
		_ = ecs.Add(w, e, component.DynoTranComponent.Kind(), dyno)
	}
	dyno.Vel = vel

	w.Events().Push(ecs.Event{Type: ecs.EventReleased, Data: ecs.BodyEvent{Entity: e, Other: parent}})
	return true
}
