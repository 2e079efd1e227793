package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/geom"
	"github.com/milk9111/stickyshot/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedTick installs a BulletTime that always reports dt seconds.
func fixedTick(t *testing.T, w *ecs.World, dt float64) {
	t.Helper()
	attach(t, w, ecs.CreateEntity(w), component.BulletTimeComponent.Kind(), &component.BulletTime{
		TimeFactor: component.BulletTimeNormal,
		LastDelta:  time.Duration(dt * float64(time.Second)),
	})
}

func TestTransformPropagation(t *testing.T) {
	w := ecs.NewWorld()
	parent := ecs.CreateEntity(w)
	attach(t, w, parent, component.TransformComponent.Kind(), &component.Transform{X: 10, Rotation: math.Pi / 2})

	child := ecs.CreateEntity(w)
	attach(t, w, child, component.TransformComponent.Kind(), &component.Transform{X: 5, Rotation: 0.25})
	attach(t, w, child, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(parent)})

	grandchild := ecs.CreateEntity(w)
	attach(t, w, grandchild, component.TransformComponent.Kind(), &component.Transform{X: 1})
	attach(t, w, grandchild, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(child)})

	NewTransformSystem().Update(w)

	pgt, ok := ecs.Get(w, parent, component.GlobalTransformComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, 10.0, pgt.X)

	cgt, ok := ecs.Get(w, child, component.GlobalTransformComponent.Kind())
	require.True(t, ok)
	assert.InDelta(t, 10.0, cgt.X, 1e-9)
	assert.InDelta(t, 5.0, cgt.Y, 1e-9)
	assert.InDelta(t, math.Pi/2+0.25, cgt.Rotation, 1e-9)

	ggt, ok := ecs.Get(w, grandchild, component.GlobalTransformComponent.Kind())
	require.True(t, ok)
	want := cp.Vector{X: 10, Y: 5}.Add(cp.Vector{X: 1}.Rotate(cp.ForAngle(math.Pi/2 + 0.25)))
	assert.InDelta(t, want.X, ggt.X, 1e-9)
	assert.InDelta(t, want.Y, ggt.Y, 1e-9)
}

func TestTransformMissingParentKeepsLocal(t *testing.T) {
	w := ecs.NewWorld()
	gone := ecs.CreateEntity(w)
	e := ecs.CreateEntity(w)
	attach(t, w, e, component.TransformComponent.Kind(), &component.Transform{X: 3, Y: 4})
	attach(t, w, e, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(gone)})
	ecs.DestroyEntity(w, gone)

	NewTransformSystem().Update(w)
	gt, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, cp.Vector{X: 3, Y: 4}, gt.Pos())
}

func TestTransformCyclePanics(t *testing.T) {
	w := ecs.NewWorld()
	a := ecs.CreateEntity(w)
	b := ecs.CreateEntity(w)
	attach(t, w, a, component.TransformComponent.Kind(), &component.Transform{})
	attach(t, w, b, component.TransformComponent.Kind(), &component.Transform{})
	attach(t, w, a, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(b)})
	attach(t, w, b, component.ParentComponent.Kind(), &component.Parent{Entity: uint64(a)})

	assert.Panics(t, func() { NewTransformSystem().Update(w) })
}

func TestFollow(t *testing.T) {
	cases := []struct {
		name      string
		me        cp.Vector
		target    cp.Vector
		vel       cp.Vector
		distRange []float64
		wantVel   cp.Vector
	}{
		{"accelerates_toward", cp.Vector{}, cp.Vector{X: 100}, cp.Vector{}, nil, cp.Vector{X: 6}},
		{"caps_speed", cp.Vector{}, cp.Vector{X: 100}, cp.Vector{X: 59}, nil, cp.Vector{X: 60}},
		{"shortest_way_round", cp.Vector{X: -300}, cp.Vector{X: 300}, cp.Vector{}, nil, cp.Vector{X: -6}},
		{"holds_in_range", cp.Vector{}, cp.Vector{X: 100}, cp.Vector{X: 1}, []float64{50, 200}, cp.Vector{X: 1}},
		{"backs_off_when_close", cp.Vector{}, cp.Vector{X: 30}, cp.Vector{}, []float64{50, 200}, cp.Vector{X: -6}},
		{"closes_in_when_far", cp.Vector{}, cp.Vector{Y: 150}, cp.Vector{}, []float64{50, 100}, cp.Vector{Y: 6}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			fixedTick(t, w, 0.1)

			target := body(t, w, c.target.X, c.target.Y)
			me := body(t, w, c.me.X, c.me.Y)
			follow := &component.Follow{Target: uint64(target), Accel: 60, MaxSpeed: 60, LookAtTarget: true}
			if c.distRange != nil {
				follow.SetAcceptableDistRange(c.distRange[0], c.distRange[1])
			}
			attach(t, w, me, component.FollowComponent.Kind(), follow)
			dyno := attach(t, w, me, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: c.vel})

			NewFollowSystem().Update(w)

			assert.InDelta(t, c.wantVel.X, dyno.Vel.X, 1e-9)
			assert.InDelta(t, c.wantVel.Y, dyno.Vel.Y, 1e-9)

			gt, _ := ecs.Get(w, me, component.GlobalTransformComponent.Kind())
			tr, _ := ecs.Get(w, me, component.TransformComponent.Kind())
			assert.Equal(t, gt.Rotation, tr.Rotation)
		})
	}
}

func TestFollowLooksAtTarget(t *testing.T) {
	cases := []struct {
		name    string
		target  cp.Vector
		start   float64
		wantRot float64
	}{
		{"quarter_turn", cp.Vector{Y: 40}, 0, math.Pi / 2},
		{"turns_through_zero", cp.Vector{X: 40}, 2*math.Pi - 0.1, 2 * math.Pi},
		{"turns_backwards", cp.Vector{Y: -40}, 0.2, -math.Pi / 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			fixedTick(t, w, 0.1)
			target := body(t, w, c.target.X, c.target.Y)
			me := body(t, w, 0, 0)
			tr, _ := ecs.Get(w, me, component.TransformComponent.Kind())
			gt, _ := ecs.Get(w, me, component.GlobalTransformComponent.Kind())
			tr.Rotation, gt.Rotation = c.start, c.start
			attach(t, w, me, component.FollowComponent.Kind(), &component.Follow{Target: uint64(target), LookAtTarget: true})
			attach(t, w, me, component.DynoTranComponent.Kind(), &component.DynoTran{})

			NewFollowSystem().Update(w)
			assert.InDelta(t, c.wantRot, gt.Rotation, 1e-9)
			assert.InDelta(t, c.wantRot, tr.Rotation, 1e-9)
		})
	}
}

func TestFollowMissingTargetIsSkipped(t *testing.T) {
	w := ecs.NewWorld()
	gone := ecs.CreateEntity(w)
	me := body(t, w, 0, 0)
	attach(t, w, me, component.FollowComponent.Kind(), &component.Follow{Target: uint64(gone), Accel: 60, MaxSpeed: 60})
	dyno := attach(t, w, me, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 3}})
	ecs.DestroyEntity(w, gone)

	assert.NotPanics(t, func() { NewFollowSystem().Update(w) })
	assert.Equal(t, cp.Vector{X: 3}, dyno.Vel)
}

func TestPatrolStateMachine(t *testing.T) {
	w := ecs.NewWorld()
	fixedTick(t, w, 0.5)

	watcher := body(t, w, 0, 0)
	attach(t, w, watcher, component.PatrolWatchComponent.Kind(), &component.PatrolWatch{
		Vision: geom.FromShapes([]geom.Shape{circle(50)}),
		Target: component.TriggerShip,
	})
	attach(t, w, watcher, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerShip, circle(5)))

	decoy := body(t, w, 10, 0)
	attach(t, w, decoy, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerPickup, circle(5)))

	ps := NewPatrolSystem()
	ps.Update(w)
	assert.True(t, ecs.Has(w, watcher, component.PatrolInactiveComponent.Kind()), "own provider and other kinds are not seen")
	assert.False(t, ecs.Has(w, watcher, component.PatrolActiveComponent.Kind()))

	ship := body(t, w, 30, 0)
	attach(t, w, ship, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerShip, circle(5)))

	ps.Update(w)
	active, ok := ecs.Get(w, watcher, component.PatrolActiveComponent.Kind())
	require.True(t, ok)
	assert.False(t, ecs.Has(w, watcher, component.PatrolInactiveComponent.Kind()))
	assert.Equal(t, uint64(ship), active.Target)
	assert.Equal(t, 0.0, active.TimeSeen)

	ps.Update(w)
	ps.Update(w)
	assert.InDelta(t, 1.0, active.TimeSeen, 1e-9)

	// A second ship does not steal the lock while the first is still seen.
	other := body(t, w, -30, 0)
	attach(t, w, other, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerShip, circle(5)))
	ps.Update(w)
	assert.Equal(t, uint64(ship), active.Target)
	assert.Equal(t, []ecs.Entity{ship, other}, Seen(w, watcher))

	gt, _ := ecs.Get(w, ship, component.GlobalTransformComponent.Kind())
	gt.X = 500
	ps.Update(w)
	assert.Equal(t, uint64(other), active.Target)
	assert.Equal(t, 0.0, active.TimeSeen)

	ecs.DestroyEntity(w, other)
	ps.Update(w)
	assert.False(t, ecs.Has(w, watcher, component.PatrolActiveComponent.Kind()))
	assert.True(t, ecs.Has(w, watcher, component.PatrolInactiveComponent.Kind()))

	var types []string
	for _, evt := range w.Events().Drain() {
		types = append(types, evt.Type)
	}
	assert.Equal(t, []string{ecs.EventTargetSpotted, ecs.EventTargetSpotted, ecs.EventTargetLost}, types)
}

func TestPatrolIgnoreTag(t *testing.T) {
	w := ecs.NewWorld()
	watcher := body(t, w, 0, 0)
	attach(t, w, watcher, component.PatrolWatchComponent.Kind(), &component.PatrolWatch{
		Vision: geom.FromShapes([]geom.Shape{circle(50)}),
		Target: component.TriggerEnemy,
		Ignore: component.RoomWrapComponent.Kind(),
	})

	hidden := body(t, w, 10, 0)
	attach(t, w, hidden, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerEnemy, circle(5)))
	attach(t, w, hidden, component.RoomWrapComponent.Kind(), &component.RoomWrap{})

	visible := body(t, w, -10, 0)
	attach(t, w, visible, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerEnemy, circle(5)))

	assert.Equal(t, []ecs.Entity{visible}, Seen(w, watcher))
	assert.Nil(t, Seen(w, visible))
}

func TestBulletScriptDestroysOnImpact(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	rs := NewReactionScriptSystem()

	wall := body(t, w, 10, 0)
	attach(t, w, wall, component.StaticTxComponent.Kind(), component.NewStaticTx(component.StaticTxNormal, circle(6)))

	bullet := body(t, w, 0, 0)
	attach(t, w, bullet, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxStop(), circle(4)))
	attach(t, w, bullet, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 100}})
	attach(t, w, bullet, component.ReactionScriptComponent.Kind(), &component.ReactionScript{Path: "bullet.tengo"})

	ps.Update(w)
	rs.Update(w)
	require.True(t, w.IsAlive(bullet))

	ps.Update(w)
	rs.Update(w)
	assert.False(t, w.IsAlive(bullet))
	assert.True(t, w.IsAlive(wall))
}

func TestBulletScriptKillsEnemy(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	rs := NewReactionScriptSystem()

	enemy := body(t, w, 6, 0)
	attach(t, w, enemy, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerEnemy, circle(6)))

	bullet := body(t, w, 0, 0)
	attach(t, w, bullet, component.TriggerRxComponent.Kind(), component.NewTriggerRx(component.TriggerShipBullet, circle(4)))
	attach(t, w, bullet, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 10}})
	attach(t, w, bullet, component.ReactionScriptComponent.Kind(), &component.ReactionScript{Path: "scripts/bullet.tengo"})

	ps.Update(w)
	ps.Update(w)
	rs.Update(w)

	assert.False(t, w.IsAlive(enemy))
	assert.False(t, w.IsAlive(bullet))
}

const steerScript = `
on_static := func(engine, record) {
	if record.role == "rx" && record.tx_kind == "sticky" && engine.is_stuck() {
		engine.release(0, 25)
		return
	}
	v := engine.get_velocity()
	engine.set_velocity([v[0], record.rx_par[1] + 7])
}

on_trigger := func(engine, record) {}
`

func writeScript(t *testing.T, name, src string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prefabs", "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefabs", "scripts", name), []byte(src), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestScriptEngineFunctions(t *testing.T) {
	writeScript(t, "steer.tengo", steerScript)

	run := func(t *testing.T, kind component.StaticTxKind) (ecs.Entity, *ecs.World) {
		w := ecs.NewWorld()
		ps := NewPhysicsSystem(testConfig(0.1))
		rs := NewReactionScriptSystem()
		rx, _ := headOn(t, w, kind, component.RxNormal())
		attach(t, w, rx, component.ReactionScriptComponent.Kind(), &component.ReactionScript{Path: "steer.tengo"})
		ps.Update(w)
		ps.Update(w)
		rs.Update(w)
		return rx, w
	}

	t.Run("set_velocity", func(t *testing.T) {
		rx, w := run(t, component.StaticTxNormal)
		dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
		assert.InDelta(t, -20.0, dyno.Vel.X, 1e-9)
		assert.InDelta(t, 7.0, dyno.Vel.Y, 1e-9)
	})
	t.Run("release", func(t *testing.T) {
		rx, w := run(t, component.StaticTxSticky)
		assert.False(t, ecs.Has(w, rx, component.StuckComponent.Kind()))
		dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
		assert.Equal(t, cp.Vector{Y: 25}, dyno.Vel)
	})
}

func TestBrokenScriptIsReportedOnce(t *testing.T) {
	writeScript(t, "broken.tengo", "on_static := func(engine, record) {}\n")

	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	rs := NewReactionScriptSystem()
	rx, _ := headOn(t, w, component.StaticTxNormal, component.RxNormal())
	attach(t, w, rx, component.ReactionScriptComponent.Kind(), &component.ReactionScript{Path: "broken.tengo"})

	ps.Update(w)
	ps.Update(w)
	assert.NotPanics(t, func() { rs.Update(w) })
	require.NotNil(t, rs.cache["broken.tengo"])
	assert.Error(t, rs.cache["broken.tengo"].err)

	rs.Invalidate("broken.tengo")
	assert.NotContains(t, rs.cache, "broken.tengo")
}

func TestPhysicsConfigFromSpec(t *testing.T) {
	zero, off := 0.0, false
	cfg := PhysicsConfigFromSpec(prefabs.PhysicsSpec{
		TickRate:        60,
		Restitution:     &zero,
		CheckInvariants: &off,
	})
	want := DefaultPhysicsConfig()
	want.FixedDelta = 1.0 / 60
	want.Restitution = 0
	want.CheckInvariants = false
	assert.Equal(t, want, cfg)

	assert.Equal(t, DefaultPhysicsConfig(), PhysicsConfigFromSpec(prefabs.PhysicsSpec{}))
}

func TestBulletTimeMeasuresRealTicks(t *testing.T) {
	now := time.Unix(100, 0)
	clock := func() time.Time { return now }

	w := ecs.NewWorld()
	s := NewBulletTimeSystem(clock)
	s.Update(w)
	bt := BulletTimeOf(w)
	require.NotNil(t, bt)
	assert.Equal(t, 0.0, bt.DeltaSeconds())

	now = now.Add(50 * time.Millisecond)
	s.Update(w)
	assert.InDelta(t, 0.05, deltaSeconds(w, 1), 1e-9)

	bt.SetSlow()
	now = now.Add(50 * time.Millisecond)
	s.Update(w)
	assert.InDelta(t, 0.01, deltaSeconds(w, 1), 1e-9)
	assert.True(t, bt.IsSlow())

	assert.Equal(t, 0.25, deltaSeconds(ecs.NewWorld(), 0.25))
}
