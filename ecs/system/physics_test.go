package system

import (
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/geom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dt float64) PhysicsConfig {
	cfg := DefaultPhysicsConfig()
	cfg.FixedDelta = dt
	return cfg
}

func body(t *testing.T, w *ecs.World, x, y float64) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	require.NoError(t, ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1}))
	require.NoError(t, ecs.Add(w, e, component.GlobalTransformComponent.Kind(), &component.GlobalTransform{X: x, Y: y}))
	return e
}

func attach[T any](t *testing.T, w *ecs.World, e ecs.Entity, kind component.ComponentKind[T], v *T) *T {
	t.Helper()
	require.NoError(t, ecs.Add(w, e, kind, v))
	return v
}

func globalPos(t *testing.T, w *ecs.World, e ecs.Entity) cp.Vector {
	t.Helper()
	gt, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	require.True(t, ok)
	return gt.Pos()
}

func circle(r float64) geom.Shape {
	return geom.Circle(cp.Vector{}, r)
}

// headOn builds a receiver of radius 6 at the origin moving at (100, 0)
// toward a provider of radius 6 at (10, 0).
func headOn(t *testing.T, w *ecs.World, txKind component.StaticTxKind, rxKind component.StaticRxKind) (rx, tx ecs.Entity) {
	tx = body(t, w, 10, 0)
	attach(t, w, tx, component.StaticTxComponent.Kind(), component.NewStaticTx(txKind, circle(6)))

	rx = body(t, w, 0, 0)
	attach(t, w, rx, component.StaticRxComponent.Kind(), component.NewStaticRx(rxKind, circle(6)))
	attach(t, w, rx, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 100}})
	return rx, tx
}

func TestNewBodiesSitOutOneTick(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	e := body(t, w, 0, 0)
	attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 10}})
	attach(t, w, e, component.DynoRotComponent.Kind(), &component.DynoRot{Rot: 1})

	ps.Update(w)
	assert.Equal(t, 0.0, globalPos(t, w, e).X)
	assert.True(t, ecs.Has(w, e, component.PhysicsInitializedComponent.Kind()))

	ps.Update(w)
	assert.InDelta(t, 1.0, globalPos(t, w, e).X, 1e-9)
	gt, _ := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	assert.InDelta(t, 0.1, gt.Rotation, 1e-9)
}

func TestHeadOnBounce(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	rx, tx := headOn(t, w, component.StaticTxNormal, component.RxNormal())

	ps.Update(w)
	ps.Update(w)

	pos := globalPos(t, w, rx)
	assert.InDelta(t, -2.0, pos.X, 1e-9)
	assert.InDelta(t, 0.0, pos.Y, 1e-9)
	assert.GreaterOrEqual(t, pos.Distance(globalPos(t, w, tx)), 12.0-1e-9)

	dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
	assert.LessOrEqual(t, dyno.Vel.X, 0.0)
	assert.InDelta(t, -20.0, dyno.Vel.X, 1e-9)

	records := ps.Records()
	require.Equal(t, 1, records.StaticLen())
	rec, ok := records.Static(0)
	require.True(t, ok)
	assert.Equal(t, uint64(rx), rec.RxEntity)
	assert.Equal(t, uint64(tx), rec.TxEntity)
	assert.InDelta(t, 100.0, rec.RxPerp.X, 1e-9)
	assert.InDelta(t, 0.0, rec.RxPar.Length(), 1e-9)
	assert.InDelta(t, 4.0, rec.Pos.X, 1e-9)

	rxRole, _ := ecs.Get(w, rx, component.StaticRxComponent.Kind())
	txRole, _ := ecs.Get(w, tx, component.StaticTxComponent.Kind())
	assert.Equal(t, []component.RecordID{0}, rxRole.Collisions)
	assert.Equal(t, []component.RecordID{0}, txRole.Collisions)
	assert.Same(t, records, CollisionRecordsOf(w))
}

func TestRecordsLastOneTick(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	rx, _ := headOn(t, w, component.StaticTxNormal, component.RxStop())

	ps.Update(w)
	ps.Update(w)
	require.Equal(t, 1, ps.Records().StaticLen())

	dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
	dyno.Vel = cp.Vector{X: -100}
	ps.Update(w)
	assert.Equal(t, 0, ps.Records().StaticLen())
	rxRole, _ := ecs.Get(w, rx, component.StaticRxComponent.Kind())
	assert.Empty(t, rxRole.Collisions)
}

func TestReactionPolicies(t *testing.T) {
	cases := []struct {
		name  string
		tx    component.StaticTxKind
		rx    component.StaticRxKind
		check func(t *testing.T, vel cp.Vector)
	}{
		{"stop", component.StaticTxNormal, component.RxStop(), func(t *testing.T, vel cp.Vector) {
			assert.Equal(t, cp.Vector{}, vel)
		}},
		{"stop_beats_sticky", component.StaticTxSticky, component.RxStop(), func(t *testing.T, vel cp.Vector) {
			assert.Equal(t, cp.Vector{}, vel)
		}},
		{"go_around", component.StaticTxNormal, component.RxGoAround(1), func(t *testing.T, vel cp.Vector) {
			assert.Greater(t, vel.Y, 0.0)
		}},
		{"go_around_doubled", component.StaticTxNormal, component.RxGoAround(2), func(t *testing.T, vel cp.Vector) {
			assert.Greater(t, vel.Y, 4.0)
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			ps := NewPhysicsSystem(testConfig(0.1))
			rx, tx := headOn(t, w, c.tx, c.rx)

			ps.Update(w)
			ps.Update(w)

			dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
			c.check(t, dyno.Vel)
			assert.GreaterOrEqual(t, globalPos(t, w, rx).Distance(globalPos(t, w, tx)), 12.0-1e-9)
			assert.False(t, ecs.Has(w, rx, component.StuckComponent.Kind()))
		})
	}
}

func TestSubSteppingPreventsTunnelling(t *testing.T) {
	run := func() (cp.Vector, cp.Vector) {
		w := ecs.NewWorld()
		ps := NewPhysicsSystem(testConfig(0.1))

		wall := body(t, w, 15, 0)
		attach(t, w, wall, component.StaticTxComponent.Kind(), component.NewStaticTx(component.StaticTxNormal, geom.Polygon(rectPoints(4, 40))))

		rx := body(t, w, 0, 0)
		attach(t, w, rx, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(2)))
		attach(t, w, rx, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 300}})

		ps.Update(w)
		ps.Update(w)
		dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
		return globalPos(t, w, rx), dyno.Vel
	}

	pos, vel := run()
	assert.InDelta(t, 11.0, pos.X, 1e-9)
	assert.InDelta(t, -60.0, vel.X, 1e-9)

	again, againVel := run()
	assert.Equal(t, pos, again)
	assert.Equal(t, vel, againVel)
}

func rectPoints(w, h float64) []cp.Vector {
	hw, hh := w/2, h/2
	return []cp.Vector{{X: -hw, Y: -hh}, {X: -hw, Y: hh}, {X: hw, Y: hh}, {X: hw, Y: -hh}}
}

func TestStickingAndRelease(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	rx, tx := headOn(t, w, component.StaticTxSticky, component.RxNormal())

	ps.Update(w)
	ps.Update(w)

	stuck, ok := ecs.Get(w, rx, component.StuckComponent.Kind())
	require.True(t, ok)
	assert.Equal(t, uint64(tx), stuck.Parent)
	assert.InDelta(t, -12.0, stuck.InitialOffset.X, 1e-9)
	dyno, _ := ecs.Get(w, rx, component.DynoTranComponent.Kind())
	assert.Equal(t, cp.Vector{}, dyno.Vel)
	assert.Equal(t, 1, ps.Records().StaticLen())

	events := w.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ecs.EventStuck, events[0].Type)
	assert.Equal(t, ecs.BodyEvent{Entity: rx, Other: tx}, events[0].Data)

	// Stuck bodies are not resolved, so no further records appear.
	ps.Update(w)
	assert.Equal(t, 0, ps.Records().StaticLen())
	assert.InDelta(t, -2.0, globalPos(t, w, rx).X, 1e-9)

	assert.True(t, Release(w, rx, cp.Vector{X: -50}))
	assert.False(t, Release(w, rx, cp.Vector{X: -50}))
	assert.False(t, ecs.Has(w, rx, component.StuckComponent.Kind()))
	dyno, _ = ecs.Get(w, rx, component.DynoTranComponent.Kind())
	assert.Equal(t, cp.Vector{X: -50}, dyno.Vel)

	events = w.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ecs.EventReleased, events[0].Type)

	ps.Update(w)
	assert.InDelta(t, -7.0, globalPos(t, w, rx).X, 1e-9)
}

func TestStuckBodyFollowsRotatingProvider(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	planet := body(t, w, 0, 0)
	attach(t, w, planet, component.StaticTxComponent.Kind(), component.NewStaticTx(component.StaticTxSticky, circle(5)))
	attach(t, w, planet, component.DynoRotComponent.Kind(), &component.DynoRot{Rot: math.Pi / 2})

	ship := body(t, w, 10, 0)
	attach(t, w, ship, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(1)))
	attach(t, w, ship, component.DynoTranComponent.Kind(), &component.DynoTran{})
	attach(t, w, ship, component.StuckComponent.Kind(), &component.Stuck{
		Parent:        uint64(planet),
		InitialOffset: cp.Vector{X: 10},
	})

	ps.Update(w)
	for i := 0; i < 10; i++ {
		ps.Update(w)
	}

	pos := globalPos(t, w, ship)
	assert.InDelta(t, 0.0, pos.X, 1e-6)
	assert.InDelta(t, 10.0, pos.Y, 1e-6)
	gt, _ := ecs.Get(w, ship, component.GlobalTransformComponent.Kind())
	assert.InDelta(t, math.Pi/2, gt.Rotation, 1e-6)
}

func TestStuckWithMissingParentIsSkipped(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	gone := ecs.CreateEntity(w)
	ship := body(t, w, 3, 4)
	attach(t, w, ship, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(1)))
	attach(t, w, ship, component.DynoTranComponent.Kind(), &component.DynoTran{})
	attach(t, w, ship, component.StuckComponent.Kind(), &component.Stuck{Parent: uint64(gone), InitialOffset: cp.Vector{X: 10}})
	ecs.DestroyEntity(w, gone)

	assert.NotPanics(t, func() {
		ps.Update(w)
		ps.Update(w)
	})
	assert.Equal(t, cp.Vector{X: 3, Y: 4}, globalPos(t, w, ship))
}

func TestTriggerPairsRecordedOnce(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	sensor := func(x float64, kind component.TriggerKind) ecs.Entity {
		e := body(t, w, x, 0)
		attach(t, w, e, component.TriggerTxComponent.Kind(), component.NewTriggerTx(kind, circle(4)))
		attach(t, w, e, component.TriggerRxComponent.Kind(), component.NewTriggerRx(kind, circle(4)))
		attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{})
		return e
	}
	a := sensor(0, component.TriggerShip)
	b := sensor(5, component.TriggerPickup)
	lonely := sensor(100, component.TriggerEnemy)

	ps.Update(w)
	ps.Update(w)

	records := ps.Records()
	require.Equal(t, 2, records.TriggerLen())
	rxCopy, _ := records.Trigger(0)
	txCopy, _ := records.Trigger(1)
	assert.Equal(t, component.TriggerRoleRx, rxCopy.Role)
	assert.Equal(t, component.TriggerRoleTx, txCopy.Role)
	for _, r := range []component.TriggerCollisionRecord{rxCopy, txCopy} {
		assert.Equal(t, uint64(a), r.RxEntity)
		assert.Equal(t, uint64(b), r.TxEntity)
		assert.Equal(t, component.TriggerShip, r.RxKind)
		assert.Equal(t, component.TriggerPickup, r.TxKind)
	}

	aRx, _ := ecs.Get(w, a, component.TriggerRxComponent.Kind())
	bTx, _ := ecs.Get(w, b, component.TriggerTxComponent.Kind())
	assert.Len(t, aRx.Collisions, 1)
	assert.Len(t, bTx.Collisions, 1)

	lonelyRx, _ := ecs.Get(w, lonely, component.TriggerRxComponent.Kind())
	assert.Empty(t, lonelyRx.Collisions, "a body never triggers itself")
}

func TestTriggersDoNotPush(t *testing.T) {
	cases := []struct {
		name    string
		txShape geom.Shape
		rxShape geom.Shape
		rxStart float64
		rxVel   float64
		wantX   float64
		records int
	}{
		{"rect_inside_circle", circle(10), geom.Polygon(rectPoints(4, 4)), 2, 10, 3, 2},
		// The circle reaches the rect's edge but is farther than its own
		// radius from every triangle's far edge.
		{"circle_grazing_rect", geom.Polygon(rectPoints(20, 20)), circle(3), 12, 0, 12, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			ps := NewPhysicsSystem(testConfig(0.1))

			tx := body(t, w, 0, 0)
			attach(t, w, tx, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerPickup, c.txShape))

			rx := body(t, w, c.rxStart, 0)
			attach(t, w, rx, component.TriggerRxComponent.Kind(), component.NewTriggerRx(component.TriggerShip, c.rxShape))
			attach(t, w, rx, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: c.rxVel}})

			ps.Update(w)
			ps.Update(w)

			assert.InDelta(t, c.wantX, globalPos(t, w, rx).X, 1e-9)
			assert.Equal(t, c.records, ps.Records().TriggerLen())
		})
	}
}

func TestSubSteppingIsDeterministic(t *testing.T) {
	cases := []struct {
		name     string
		maxStep  float64
		dt       float64
		ticks    int
		receiver bool
	}{
		{"plain_one_tick", 2, 0.1, 1, false},
		{"plain_split_ticks", 2, 0.025, 4, false},
		{"receiver_default_step", 2, 0.1, 1, true},
		{"receiver_fine_step", 0.5, 0.1, 1, true},
		{"receiver_coarse_step", 10, 0.1, 1, true},
		{"receiver_split_ticks", 2, 0.025, 4, true},
		{"receiver_fine_split_ticks", 0.3, 0.025, 4, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			cfg := testConfig(c.dt)
			cfg.MaxStep = c.maxStep
			ps := NewPhysicsSystem(cfg)

			e := body(t, w, 0, 0)
			attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 37, Y: 11}})
			if c.receiver {
				attach(t, w, e, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(2)))
			}

			// The first tick only marks the body.
			for i := 0; i < c.ticks+1; i++ {
				ps.Update(w)
			}

			pos := globalPos(t, w, e)
			assert.InDelta(t, 3.7, pos.X, 1e-9)
			assert.InDelta(t, 1.1, pos.Y, 1e-9)
			assert.Zero(t, ps.Records().StaticLen())
		})
	}
}

func TestRotatingSensorChecksOncePerTick(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	tx := body(t, w, 5, 0)
	attach(t, w, tx, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerPickup, circle(4)))

	rx := body(t, w, 0, 0)
	sensor := attach(t, w, rx, component.TriggerRxComponent.Kind(), component.NewTriggerRx(component.TriggerShip, geom.Polygon(rectPoints(6, 2))))
	attach(t, w, rx, component.DynoRotComponent.Kind(), &component.DynoRot{Rot: 1})

	ps.Update(w)
	require.Zero(t, ps.Records().TriggerLen())

	for tick := 1; tick <= 3; tick++ {
		ps.Update(w)
		assert.Equal(t, 2, ps.Records().TriggerLen(), "tick %d", tick)
		assert.Len(t, sensor.Collisions, 1, "tick %d", tick)
		gt, _ := ecs.Get(w, rx, component.GlobalTransformComponent.Kind())
		assert.InDelta(t, 0.1*float64(tick), gt.Rotation, 1e-9)
		assert.Equal(t, cp.Vector{}, gt.Pos())
	}
}

func TestStaticContactThroughMirage(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	tx := body(t, w, 318, 0)
	attach(t, w, tx, component.StaticTxComponent.Kind(), &component.StaticTx{
		Kind:   component.StaticTxNormal,
		Bounds: geom.FromShape(circle(10)).WithMirages(common.MirageOffsets(640, 360)),
	})

	rx := body(t, w, -301, 0)
	attach(t, w, rx, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(6)))
	dyno := attach(t, w, rx, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: -100}})

	ps.Update(w)
	ps.Update(w)

	// The mirage at -322 stops the receiver one unit into its first overlap.
	assert.InDelta(t, -306.0, globalPos(t, w, rx).X, 1e-9)
	assert.InDelta(t, 20.0, dyno.Vel.X, 1e-9)

	records := ps.Records()
	require.Equal(t, 1, records.StaticLen())
	rec, _ := records.Static(0)
	assert.Equal(t, uint64(tx), rec.TxEntity)
	assert.InDelta(t, -312.0, rec.Pos.X, 1e-9)
}

func TestTrivialMovers(t *testing.T) {
	cases := []struct {
		name  string
		roles func(t *testing.T, w *ecs.World, e ecs.Entity)
		moves bool
	}{
		{"no_roles", func(*testing.T, *ecs.World, ecs.Entity) {}, true},
		{"trigger_provider", func(t *testing.T, w *ecs.World, e ecs.Entity) {
			attach(t, w, e, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerPickup, circle(2)))
		}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			ps := NewPhysicsSystem(testConfig(0.1))

			e := body(t, w, 0, 0)
			attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 10}})
			attach(t, w, e, component.DynoRotComponent.Kind(), &component.DynoRot{Rot: 1})
			c.roles(t, w, e)

			ps.Update(w)
			ps.Update(w)

			wantX, wantRot := 0.0, 0.0
			if c.moves {
				wantX, wantRot = 1, 0.1
			}
			gt, _ := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
			assert.InDelta(t, wantX, gt.X, 1e-9)
			assert.InDelta(t, wantRot, gt.Rotation, 1e-9)
		})
	}
}

func TestRoomWrap(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))

	e := body(t, w, 319, -179)
	attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 20, Y: -20}})
	attach(t, w, e, component.RoomWrapComponent.Kind(), &component.RoomWrap{})

	ps.Update(w)
	ps.Update(w)

	pos := globalPos(t, w, e)
	assert.InDelta(t, -319.0, pos.X, 1e-9)
	assert.InDelta(t, 179.0, pos.Y, 1e-9)

	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	assert.Equal(t, pos, tr.Pos())
}

func TestRoomWrapUsesRoomState(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	room := ecs.CreateEntity(w)
	attach(t, w, room, component.RoomStateComponent.Kind(), &component.RoomState{Width: 100, Height: 100})

	e := body(t, w, 49, 0)
	attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 20}})
	attach(t, w, e, component.RoomWrapComponent.Kind(), &component.RoomWrap{})

	ps.Update(w)
	ps.Update(w)
	assert.InDelta(t, -49.0, globalPos(t, w, e).X, 1e-9)
}

func TestInvariantViolationsPanic(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, w *ecs.World)
		msg   string
	}{
		{
			name: "static_tx_and_rx",
			setup: func(t *testing.T, w *ecs.World) {
				e := body(t, w, 0, 0)
				attach(t, w, e, component.StaticTxComponent.Kind(), component.NewStaticTx(component.StaticTxNormal, circle(1)))
				attach(t, w, e, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(1)))
				attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{})
			},
			msg: "physics: an entity cannot be both a static provider and a static receiver",
		},
		{
			name: "trigger_on_static_provider",
			setup: func(t *testing.T, w *ecs.World) {
				e := body(t, w, 0, 0)
				attach(t, w, e, component.StaticTxComponent.Kind(), component.NewStaticTx(component.StaticTxNormal, circle(1)))
				attach(t, w, e, component.TriggerRxComponent.Kind(), component.NewTriggerRx(component.TriggerShip, circle(1)))
			},
			msg: "physics: triggers on static providers are not supported",
		},
		{
			name: "receiver_without_dyno_tran",
			setup: func(t *testing.T, w *ecs.World) {
				e := body(t, w, 0, 0)
				attach(t, w, e, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(1)))
			},
			msg: "physics: static receiver 1v0 has no DynoTran",
		},
		{
			name: "receiver_with_dyno_rot",
			setup: func(t *testing.T, w *ecs.World) {
				e := body(t, w, 0, 0)
				attach(t, w, e, component.StaticRxComponent.Kind(), component.NewStaticRx(component.RxNormal(), circle(1)))
				attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{})
				attach(t, w, e, component.DynoRotComponent.Kind(), &component.DynoRot{})
			},
			msg: "physics: static receiver 1v0 cannot have a DynoRot",
		},
		{
			name: "role_without_global_transform",
			setup: func(t *testing.T, w *ecs.World) {
				e := ecs.CreateEntity(w)
				attach(t, w, e, component.TriggerTxComponent.Kind(), component.NewTriggerTx(component.TriggerPickup, circle(1)))
			},
			msg: "physics: entity 1v0 has a collision role but no global transform",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			c.setup(t, w)
			ps := NewPhysicsSystem(testConfig(0.1))
			assert.PanicsWithValue(t, c.msg, func() { ps.Update(w) })

			prodCfg := testConfig(0.1)
			prodCfg.CheckInvariants = false
			if c.name == "receiver_without_dyno_tran" || c.name == "trigger_on_static_provider" {
				assert.NotPanics(t, func() { NewPhysicsSystem(prodCfg).Update(w) })
			}
		})
	}
}

func TestPhysicsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPhysicsMetrics(reg)

	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(0.1))
	ps.SetMetrics(m)
	headOn(t, w, component.StaticTxSticky, component.RxNormal())

	ps.Update(w)
	ps.Update(w)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.staticRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stuckTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.subSteps))

	m.ObserveSystem("physics", 0)
	n, err := testutil.GatherAndCount(reg, "stickyshot_system_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var nilMetrics *PhysicsMetrics
	assert.NotPanics(t, func() { nilMetrics.ObserveSystem("x", 0) })
}

func TestBulletTimeScalesDelta(t *testing.T) {
	w := ecs.NewWorld()
	ps := NewPhysicsSystem(testConfig(1))

	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	bts := NewBulletTimeSystem(clock)

	e := body(t, w, 0, 0)
	attach(t, w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: 10}})

	bts.Update(w)
	ps.Update(w)
	bt := BulletTimeOf(w)
	require.NotNil(t, bt)
	assert.Equal(t, time.Duration(0), bt.LastDelta)

	now = now.Add(100 * time.Millisecond)
	bts.Update(w)
	ps.Update(w)
	assert.InDelta(t, 1.0, globalPos(t, w, e).X, 1e-9)

	bt.SetSlow()
	assert.True(t, bt.IsSlow())
	now = now.Add(100 * time.Millisecond)
	bts.Update(w)
	ps.Update(w)
	assert.InDelta(t, 1.2, globalPos(t, w, e).X, 1e-9)
}
