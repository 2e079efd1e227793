package component

// Follow steers DynoTran toward Target, accelerating by Accel and capping
// speed at MaxSpeed. When HasRange is set the follower holds still while the
// squared distance is within [MinDistSq, MaxDistSq] and backs off when it
// is closer than that.
type Follow struct {
	Target       uint64
	Accel        float64
	MaxSpeed     float64
	HasRange     bool
	MinDistSq    float64
	MaxDistSq    float64
	LookAtTarget bool
}

func (f *Follow) SetAcceptableDistRange(min, max float64) {
	f.HasRange = true
	f.MinDistSq = min * min
	f.MaxDistSq = max * max
}

var FollowComponent = NewComponent[Follow]()
