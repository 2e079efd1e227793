package component

import (
	"fmt"

	"github.com/milk9111/stickyshot/geom"
)

// StaticTxKind picks how a static provider treats receivers that hit it.
type StaticTxKind uint8

const (
	StaticTxNormal StaticTxKind = iota
	StaticTxSticky
)

func (k StaticTxKind) String() string {
	switch k {
	case StaticTxNormal:
		return "normal"
	case StaticTxSticky:
		return "sticky"
	default:
		return fmt.Sprintf("StaticTxKind(%d)", uint8(k))
	}
}

func ParseStaticTxKind(s string) (StaticTxKind, error) {
	switch s {
	case "", "normal":
		return StaticTxNormal, nil
	case "sticky":
		return StaticTxSticky, nil
	default:
		return 0, fmt.Errorf("component: unknown static tx kind %q", s)
	}
}

type StaticRxMode uint8

const (
	StaticRxNormal StaticRxMode = iota
	StaticRxStop
	StaticRxGoAround
)

// StaticRxKind picks how a static receiver reacts to contact. Mult is the
// deflection strength for StaticRxGoAround.
type StaticRxKind struct {
	Mode StaticRxMode
	Mult int
}

func RxNormal() StaticRxKind { return StaticRxKind{Mode: StaticRxNormal} }

func RxStop() StaticRxKind { return StaticRxKind{Mode: StaticRxStop} }

func RxGoAround(mult int) StaticRxKind {
	return StaticRxKind{Mode: StaticRxGoAround, Mult: mult}
}

func (k StaticRxKind) String() string {
	switch k.Mode {
	case StaticRxNormal:
		return "normal"
	case StaticRxStop:
		return "stop"
	case StaticRxGoAround:
		return fmt.Sprintf("go_around(%d)", k.Mult)
	default:
		return fmt.Sprintf("StaticRxMode(%d)", uint8(k.Mode))
	}
}

func ParseStaticRxMode(s string) (StaticRxMode, error) {
	switch s {
	case "", "normal":
		return StaticRxNormal, nil
	case "stop":
		return StaticRxStop, nil
	case "go_around":
		return StaticRxGoAround, nil
	default:
		return 0, fmt.Errorf("component: unknown static rx mode %q", s)
	}
}

// TriggerKind tags what a sensor body is so watchers and reaction systems
// can tell bodies apart.
type TriggerKind uint8

const (
	TriggerShip TriggerKind = iota
	TriggerShipBullet
	TriggerEnemy
	TriggerPickup
)

var triggerKindNames = [...]string{"ship", "ship_bullet", "enemy", "pickup"}

func (k TriggerKind) String() string {
	if int(k) < len(triggerKindNames) {
		return triggerKindNames[k]
	}
	return fmt.Sprintf("TriggerKind(%d)", uint8(k))
}

func ParseTriggerKind(s string) (TriggerKind, error) {
	for i, name := range triggerKindNames {
		if name == s {
			return TriggerKind(i), nil
		}
	}
	return 0, fmt.Errorf("component: unknown trigger kind %q", s)
}

// StaticTx is an obstacle. Receivers that overlap it are pushed out.
type StaticTx struct {
	Kind       StaticTxKind
	Bounds     geom.Bounds
	Collisions []RecordID
}

// StaticRx is a body that gets pushed out of static providers.
type StaticRx struct {
	Kind       StaticRxKind
	Bounds     geom.Bounds
	Collisions []RecordID
}

// TriggerTx is a sensor that can be seen by trigger receivers and watchers.
type TriggerTx struct {
	Kind       TriggerKind
	Bounds     geom.Bounds
	Collisions []RecordID
}

// TriggerRx is a sensor that records overlaps with trigger providers.
type TriggerRx struct {
	Kind       TriggerKind
	Bounds     geom.Bounds
	Collisions []RecordID
}

func NewStaticTx(kind StaticTxKind, shapes ...geom.Shape) *StaticTx {
	return &StaticTx{Kind: kind, Bounds: geom.FromShapes(shapes)}
}

func NewStaticRx(kind StaticRxKind, shapes ...geom.Shape) *StaticRx {
	return &StaticRx{Kind: kind, Bounds: geom.FromShapes(shapes)}
}

func NewTriggerTx(kind TriggerKind, shapes ...geom.Shape) *TriggerTx {
	return &TriggerTx{Kind: kind, Bounds: geom.FromShapes(shapes)}
}

func NewTriggerRx(kind TriggerKind, shapes ...geom.Shape) *TriggerRx {
	return &TriggerRx{Kind: kind, Bounds: geom.FromShapes(shapes)}
}

var (
	StaticTxComponent  = NewComponent[StaticTx]()
	StaticRxComponent  = NewComponent[StaticRx]()
	TriggerTxComponent = NewComponent[TriggerTx]()
	TriggerRxComponent = NewComponent[TriggerRx]()
)
