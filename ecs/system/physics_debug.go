package system

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/geom"
	"golang.org/x/image/colornames"
)

const debugDotSize = 4

// PhysicsDebugSystem outlines every collision volume and marks this tick's
// contact points. It does nothing on Update.
type PhysicsDebugSystem struct {
	Enabled bool
}

func NewPhysicsDebugSystem() *PhysicsDebugSystem {
	return &PhysicsDebugSystem{Enabled: true}
}

func (s *PhysicsDebugSystem) Name() string { return "physics_debug" }

func (s *PhysicsDebugSystem) Update(*ecs.World) {}

func (s *PhysicsDebugSystem) Draw(w *ecs.World, screen *ebiten.Image, view ecs.View) {
	if s == nil || !s.Enabled || w == nil || screen == nil {
		return
	}
	d := &debugDrawer{screen: screen, view: view}
	bw, bh := screen.Bounds().Dx(), screen.Bounds().Dy()
	d.halfW, d.halfH = float64(bw)/2, float64(bh)/2

	ecs.ForEach2(w, component.StaticTxComponent.Kind(), component.GlobalTransformComponent.Kind(), func(_ ecs.Entity, tx *component.StaticTx, gt *component.GlobalTransform) {
		clr := colornames.Lightgrey
		if tx.Kind == component.StaticTxSticky {
			clr = colornames.Gold
		}
		d.bounds(tx.Bounds, placementOf(gt), clr)
	})
	ecs.ForEach2(w, component.StaticRxComponent.Kind(), component.GlobalTransformComponent.Kind(), func(e ecs.Entity, rx *component.StaticRx, gt *component.GlobalTransform) {
		clr := colornames.Lime
		if ecs.Has(w, e, component.StuckComponent.Kind()) {
			clr = colornames.Orange
		}
		d.bounds(rx.Bounds, placementOf(gt), clr)
	})
	ecs.ForEach2(w, component.TriggerTxComponent.Kind(), component.GlobalTransformComponent.Kind(), func(_ ecs.Entity, tx *component.TriggerTx, gt *component.GlobalTransform) {
		d.bounds(tx.Bounds, placementOf(gt), colornames.Deepskyblue)
	})
	ecs.ForEach2(w, component.TriggerRxComponent.Kind(), component.GlobalTransformComponent.Kind(), func(_ ecs.Entity, rx *component.TriggerRx, gt *component.GlobalTransform) {
		d.bounds(rx.Bounds, placementOf(gt), colornames.Violet)
	})
	ecs.ForEach2(w, component.PatrolWatchComponent.Kind(), component.GlobalTransformComponent.Kind(), func(e ecs.Entity, watch *component.PatrolWatch, gt *component.GlobalTransform) {
		clr := colornames.Dimgray
		if ecs.Has(w, e, component.PatrolActiveComponent.Kind()) {
			clr = colornames.Crimson
		}
		d.bounds(watch.Vision, placementOf(gt), clr)
	})

	records := CollisionRecordsOf(w)
	for i := 0; i < records.StaticLen(); i++ {
		r, _ := records.Static(component.RecordID(i))
		d.dot(r.Pos, colornames.Red)
	}
	for i := 0; i < records.TriggerLen(); i++ {
		r, _ := records.Trigger(component.RecordID(i))
		d.dot(r.Pos, colornames.Yellow)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("static: %d  trigger: %d", records.StaticLen(), records.TriggerLen()), 10, 10)
}

type debugDrawer struct {
	screen       *ebiten.Image
	view         ecs.View
	halfW, halfH float64
}

func (d *debugDrawer) bounds(b geom.Bounds, p geom.Placement, clr color.Color) {
	rot := cp.ForAngle(p.Rot)
	for _, s := range b.Shapes() {
		outline := s.Outline()
		if s.Kind() == geom.ShapeCircle {
			for i := range outline {
				outline[i] = p.Pos.Add(outline[i])
			}
		} else {
			for i := range outline {
				outline[i] = p.Pos.Add(outline[i].Rotate(rot))
			}
		}
		for _, line := range geom.Lines(outline) {
			d.line(line[0], line[1], clr)
		}
	}
}

func (d *debugDrawer) dot(pos cp.Vector, clr color.Color) {
	half := float64(debugDotSize) / 2
	d.line(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, clr)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, clr)
}

func (d *debugDrawer) line(a, b cp.Vector, clr color.Color) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, clr, true)
}

// toScreen maps world space (y up, view centered) to screen pixels.
func (d *debugDrawer) toScreen(v cp.Vector) (float32, float32) {
	x := (v.X-d.view.X)*d.view.Zoom + d.halfW
	y := d.halfH - (v.Y-d.view.Y)*d.view.Zoom
	return float32(x), float32(y)
}
