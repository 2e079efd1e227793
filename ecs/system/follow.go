package system

import (
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
)

// FollowSystem accelerates followers toward their targets along the shortest
// path through the wrapping room.
type FollowSystem struct {
	fallbackDelta float64
}

func NewFollowSystem() *FollowSystem {
	return &FollowSystem{fallbackDelta: DefaultPhysicsConfig().FixedDelta}
}

func (s *FollowSystem) Name() string { return "follow" }

func (s *FollowSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := deltaSeconds(w, s.fallbackDelta)
	width, height := roomSize(w)

	ecs.ForEach2(w, component.FollowComponent.Kind(), component.DynoTranComponent.Kind(), func(e ecs.Entity, follow *component.Follow, dyno *component.DynoTran) {
		target := ecs.Entity(follow.Target)
		targetGT, ok := ecs.Get(w, target, component.GlobalTransformComponent.Kind())
		if !ok {
			return
		}
		p, ok := poseOf(w, e)
		if !ok || p.gt == nil {
			return
		}

		diff := common.RoomDiff(targetGT.Pos(), p.global(), width, height)
		distSq := diff.LengthSq()
		if follow.LookAtTarget {
			// Turn the short way so the angle stays continuous across ticks.
			p.rotate(common.ShortestRotation(p.angle(), diff.ToAngle()))
		}
		if follow.HasRange && distSq >= follow.MinDistSq && distSq <= follow.MaxDistSq {
			return
		}

		accel := common.NormalizeOrZero(diff).Mult(follow.Accel)
		if follow.HasRange && distSq < follow.MinDistSq {
			accel = accel.Neg()
		}
		dyno.Vel = dyno.Vel.Add(accel.Mult(dt)).Clamp(follow.MaxSpeed)
	})
}
