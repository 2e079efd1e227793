package system

import (
	"time"

	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
)

// Clock reports the current time. Production code passes time.Now.
type Clock func() time.Time

// BulletTimeSystem measures the real time between ticks and stores it on the
// BulletTime singleton, creating one at normal speed if the world has none.
type BulletTimeSystem struct {
	now  Clock
	last time.Time
}

func NewBulletTimeSystem(now Clock) *BulletTimeSystem {
	if now == nil {
		now = time.Now
	}
	return &BulletTimeSystem{now: now}
}

func (s *BulletTimeSystem) Name() string { return "bullet_time" }

func (s *BulletTimeSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	bt := BulletTimeOf(w)
	if bt == nil {
		bt = &component.BulletTime{TimeFactor: component.BulletTimeNormal}
		_ = ecs.Add(w, ecs.CreateEntity(w), component.BulletTimeComponent.Kind(), bt)
	}

	now := s.now()
	if s.last.IsZero() {
		bt.LastDelta = 0
	} else {
		bt.LastDelta = now.Sub(s.last)
	}
	s.last = now
}

// BulletTimeOf returns the world's BulletTime singleton, or nil.
func BulletTimeOf(w *ecs.World) *component.BulletTime {
	e, ok := w.First(component.BulletTimeComponent.Kind())
	if !ok {
		return nil
	}
	bt, _ := ecs.Get(w, e, component.BulletTimeComponent.Kind())
	return bt
}

// deltaSeconds is the scaled tick length, or fallback when the world has no
// BulletTime.
func deltaSeconds(w *ecs.World, fallback float64) float64 {
	if bt := BulletTimeOf(w); bt != nil {
		return bt.DeltaSeconds()
	}
	return fallback
}
