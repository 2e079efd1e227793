package component

import "github.com/milk9111/stickyshot/geom"

// PatrolWatch looks for trigger providers of kind Target inside Vision.
// Candidates carrying the Ignore component, when set, are never seen.
type PatrolWatch struct {
	Vision geom.Bounds
	Target TriggerKind
	Ignore AnyKind
}

// PatrolActive is present while the watcher sees at least one target.
type PatrolActive struct {
	Target   uint64
	TimeSeen float64
}

// PatrolInactive is present while the watcher sees nothing.
type PatrolInactive struct{}

var (
	PatrolWatchComponent    = NewComponent[PatrolWatch]()
	PatrolActiveComponent   = NewComponent[PatrolActive]()
	PatrolInactiveComponent = NewComponent[PatrolInactive]()
)
