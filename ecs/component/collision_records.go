package component

import "github.com/jakecoffman/cp"

// RecordID indexes a record in the CollisionRecords arena. Static and
// trigger records are numbered separately.
type RecordID int

// StaticCollisionRecord describes one receiver being pushed out of one
// provider. RxPerp and RxPar are the receiver velocity before the reaction,
// split along the push normal.
type StaticCollisionRecord struct {
	Pos      cp.Vector
	RxPerp   cp.Vector
	RxPar    cp.Vector
	TxEntity uint64
	TxKind   StaticTxKind
	RxEntity uint64
	RxKind   StaticRxKind
}

type TriggerRole uint8

const (
	TriggerRoleTx TriggerRole = iota
	TriggerRoleRx
)

func (r TriggerRole) String() string {
	if r == TriggerRoleTx {
		return "tx"
	}
	return "rx"
}

// TriggerCollisionRecord is written twice per overlap, once for each side.
// Role says which side's queue holds this copy.
type TriggerCollisionRecord struct {
	Pos      cp.Vector
	Role     TriggerRole
	TxEntity uint64
	TxKind   TriggerKind
	RxEntity uint64
	RxKind   TriggerKind
}

// CollisionRecords holds every record produced during the current tick. It
// is reset at the start of each physics update; reaction systems read it
// after the update and never write to it.
type CollisionRecords struct {
	static  []StaticCollisionRecord
	trigger []TriggerCollisionRecord
}

func (c *CollisionRecords) Reset() {
	c.static = nil
	c.trigger = nil
}

func (c *CollisionRecords) AddStatic(r StaticCollisionRecord) RecordID {
	c.static = append(c.static, r)
	return RecordID(len(c.static) - 1)
}

func (c *CollisionRecords) AddTrigger(r TriggerCollisionRecord) RecordID {
	c.trigger = append(c.trigger, r)
	return RecordID(len(c.trigger) - 1)
}

func (c *CollisionRecords) Static(id RecordID) (StaticCollisionRecord, bool) {
	if c == nil || id < 0 || int(id) >= len(c.static) {
		return StaticCollisionRecord{}, false
	}
	return c.static[id], true
}

func (c *CollisionRecords) Trigger(id RecordID) (TriggerCollisionRecord, bool) {
	if c == nil || id < 0 || int(id) >= len(c.trigger) {
		return TriggerCollisionRecord{}, false
	}
	return c.trigger[id], true
}

func (c *CollisionRecords) StaticLen() int {
	if c == nil {
		return 0
	}
	return len(c.static)
}

func (c *CollisionRecords) TriggerLen() int {
	if c == nil {
		return 0
	}
	return len(c.trigger)
}

// Len is the total number of records this tick.
func (c *CollisionRecords) Len() int {
	return c.StaticLen() + c.TriggerLen()
}

var CollisionRootComponent = NewComponent[CollisionRecords]()
