package component

import "github.com/jakecoffman/cp"

// DynoTran is translational velocity in units per second.
type DynoTran struct {
	Vel cp.Vector
}

// DynoRot is angular velocity in radians per second.
type DynoRot struct {
	Rot float64
}

// RoomWrap marks a body whose position wraps at the room edges.
type RoomWrap struct{}

// Stuck rigidly attaches a receiver to the static provider Parent. While
// present it replaces normal movement for the entity.
type Stuck struct {
	Parent             uint64
	MyInitialAngle     float64
	ParentInitialAngle float64
	InitialOffset      cp.Vector
}

// PhysicsInitialized is added after a body's first physics tick.
type PhysicsInitialized struct{}

// ParticleHook is called with the body's position after every movement step.
type ParticleHook struct {
	Spawn func(pos cp.Vector)
}

var (
	DynoTranComponent           = NewComponent[DynoTran]()
	DynoRotComponent            = NewComponent[DynoRot]()
	RoomWrapComponent           = NewComponent[RoomWrap]()
	StuckComponent              = NewComponent[Stuck]()
	PhysicsInitializedComponent = NewComponent[PhysicsInitialized]()
	ParticleHookComponent       = NewComponent[ParticleHook]()
)
