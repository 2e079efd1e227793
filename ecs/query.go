package ecs

import (
	"slices"

	"github.com/milk9111/stickyshot/ecs/component"
)

// Query returns the live entities that have every listed component, in
// ascending id order.
func (w *World) Query(kinds ...component.AnyKind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}

	stores := make([]store, 0, len(kinds))
	for _, k := range kinds {
		s, ok := w.stores[k.ID()]
		if !ok || s.len() == 0 {
			return nil
		}
		stores = append(stores, s)
	}

	// iterate the smallest set
	smallest := stores[0]
	for _, s := range stores[1:] {
		if s.len() < smallest.len() {
			smallest = s
		}
	}

	ids := smallest.ids()
	slices.Sort(ids)

	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		matched := true
		for _, s := range stores {
			if s != smallest && !s.has(id) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if e, ok := w.entities.current(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// First returns the lowest-id entity carrying kind.
func (w *World) First(kind component.AnyKind) (Entity, bool) {
	ents := w.Query(kind)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

func First(w *World, kind component.AnyKind) (Entity, bool) {
	return w.First(kind)
}
