package ecs

import (
	"fmt"
	"time"
)

type System interface {
	Update(w *World)
}

// Observer is told how long each system took. Scheduler calls it after
// every system update when set.
type Observer func(system string, took time.Duration)

type Scheduler struct {
	systems  []System
	names    []string
	observer Observer
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, sys := range systems {
		s.Add(sys)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
	s.names = append(s.names, systemName(system))
}

// Observe installs fn as the timing observer. Pass nil to remove it.
func (s *Scheduler) Observe(fn Observer) {
	s.observer = fn
}

// Update runs every system in order against w. It also satisfies System so a
// scheduler can be nested in a World.
func (s *Scheduler) Update(w *World) {
	for i, system := range s.systems {
		if s.observer == nil {
			system.Update(w)
			continue
		}
		start := time.Now()
		system.Update(w)
		s.observer(s.names[i], time.Since(start))
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}

func systemName(system System) string {
	if named, ok := system.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", system)
}
