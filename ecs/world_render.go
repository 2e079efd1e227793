package ecs

import "github.com/hajimehoshi/ebiten/v2"

// View is the camera used when drawing: world point (X, Y) lands at the
// center of the screen, scaled by Zoom.
type View struct {
	X, Y float64
	Zoom float64
}

// RenderSystem draws ECS entities each frame.
type RenderSystem interface {
	Draw(w *World, screen *ebiten.Image, view View)
}

// Draw calls every render-capable system, including those nested inside a
// Scheduler.
func (w *World) Draw(screen *ebiten.Image, view View) {
	if w == nil || screen == nil {
		return
	}
	if view.Zoom == 0 {
		view.Zoom = 1
	}
	for _, s := range w.systems {
		drawSystem(w, s, screen, view)
	}
}

func drawSystem(w *World, s System, screen *ebiten.Image, view View) {
	switch sys := s.(type) {
	case RenderSystem:
		sys.Draw(w, screen, view)
	case *Scheduler:
		for _, inner := range sys.systems {
			drawSystem(w, inner, screen, view)
		}
	}
}
