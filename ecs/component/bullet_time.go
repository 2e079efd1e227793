package component

import "time"

const (
	BulletTimeNormal = 1.0
	BulletTimeSlow   = 0.2
)

// BulletTime is the singleton clock the physics systems step with. The last
// real tick length is scaled by TimeFactor.
type BulletTime struct {
	TimeFactor float64
	LastDelta  time.Duration
}

func (b *BulletTime) DeltaSeconds() float64 {
	if b == nil {
		return 0
	}
	return b.LastDelta.Seconds() * b.TimeFactor
}

func (b *BulletTime) SetNormal() { b.TimeFactor = BulletTimeNormal }

func (b *BulletTime) SetSlow() { b.TimeFactor = BulletTimeSlow }

func (b *BulletTime) IsSlow() bool { return b.TimeFactor < BulletTimeNormal }

var BulletTimeComponent = NewComponent[BulletTime]()
