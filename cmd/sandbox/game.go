package main

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/ecs/entity"
	"github.com/milk9111/stickyshot/ecs/system"
	"github.com/milk9111/stickyshot/prefabs"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	launchSpeed = 140.0
	bulletSpeed = 220.0
)

type Options struct {
	Debug       bool
	Prod        bool
	MetricsAddr string
	Watch       bool
}

type Game struct {
	frames int
	opts   Options

	world      *ecs.World
	scheduler  *ecs.Scheduler
	physics    *system.PhysicsSystem
	reactions  *system.ReactionScriptSystem
	debugDraw  *system.PhysicsDebugSystem
	metrics    *metricsServer
	watcher    *prefabs.Watcher
	background color.Color
	view       ecs.View
	ship       ecs.Entity
	slowMo     bool
}

func NewGame(opts Options) (*Game, error) {
	cfg, err := system.LoadPhysicsConfig()
	if err != nil {
		log.Printf("sandbox: %v, using defaults", err)
	}
	if opts.Prod {
		cfg.CheckInvariants = false
	}
	ebiten.SetTPS(int(1/cfg.FixedDelta + 0.5))

	sandbox, err := prefabs.LoadSandboxSpec()
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:       opts,
		world:      ecs.NewWorld(),
		physics:    system.NewPhysicsSystem(cfg),
		reactions:  system.NewReactionScriptSystem(),
		debugDraw:  system.NewPhysicsDebugSystem(),
		background: colornames.Black,
	}
	if sandbox.Background != nil {
		g.background = sandbox.Background.Color
	}
	g.reactions.Verbose = opts.Debug

	room := &component.RoomState{Width: sandbox.Room.Width, Height: sandbox.Room.Height}
	if err := ecs.Add(g.world, ecs.CreateEntity(g.world), component.RoomStateComponent.Kind(), room); err != nil {
		return nil, err
	}
	width, _ := room.Size()
	g.view = ecs.View{Zoom: baseWidth / width}

	g.scheduler = ecs.NewScheduler(
		system.NewBulletTimeSystem(time.Now),
		system.NewTransformSystem(),
		system.NewFollowSystem(),
		system.NewPatrolSystem(),
		g.physics,
		g.reactions,
		g.debugDraw,
	)
	g.world.AddSystem(g.scheduler)

	var observers []ecs.Observer
	if opts.MetricsAddr != "" {
		g.metrics = startMetrics(opts.MetricsAddr)
		g.physics.SetMetrics(g.metrics.physics)
		observers = append(observers, g.metrics.physics.ObserveSystem)
	}
	if opts.Debug {
		observers = append(observers, logSlowSystem(cfg.FixedDelta))
	}
	if len(observers) > 0 {
		g.scheduler.Observe(func(name string, took time.Duration) {
			for _, o := range observers {
				o(name, took)
			}
		})
	}

	for _, s := range sandbox.Spawns {
		e, err := entity.Spawn(g.world, s)
		if err != nil {
			return nil, fmt.Errorf("sandbox: spawn %q: %w", s.Name, err)
		}
		if s.Name == "ship" {
			g.ship = e
		}
	}
	bt := &component.BulletTime{TimeFactor: component.BulletTimeNormal}
	if sandbox.SlowMo {
		bt.SetSlow()
	}
	g.slowMo = sandbox.SlowMo
	if err := ecs.Add(g.world, ecs.CreateEntity(g.world), component.BulletTimeComponent.Kind(), bt); err != nil {
		return nil, err
	}

	if opts.Watch {
		g.watcher = startWatcher()
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.metrics.close()
}

func (g *Game) Update() error {
	g.frames++

	g.pollReloads()
	g.handleInput()
	g.world.Update()

	for _, evt := range g.world.Events().Drain() {
		if g.opts.Debug {
			log.Printf("sandbox: %s %+v", evt.Type, evt.Data)
		}
	}
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debugDraw.Enabled = !g.debugDraw.Enabled
	}
	if bt := g.bulletTime(); bt != nil {
		if g.slowMo || ebiten.IsKeyPressed(ebiten.KeyShift) {
			bt.SetSlow()
		} else {
			bt.SetNormal()
		}
	}

	if !g.world.IsAlive(g.ship) {
		return
	}
	gt, ok := ecs.Get(g.world, g.ship, component.GlobalTransformComponent.Kind())
	if !ok {
		return
	}
	aim := g.aimFrom(gt.Pos())

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		system.Release(g.world, g.ship, aim.Mult(launchSpeed))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.fire(gt.Pos(), aim)
	}
}

func (g *Game) fire(from, dir cp.Vector) {
	var inherited cp.Vector
	if dyno, ok := ecs.Get(g.world, g.ship, component.DynoTranComponent.Kind()); ok {
		inherited = dyno.Vel
	}
	start := from.Add(dir.Mult(12))
	bullet, err := entity.Spawn(g.world, prefabs.SpawnSpec{Prefab: "bullet.yaml", X: start.X, Y: start.Y, Rotation: dir.ToAngle()})
	if err != nil {
		log.Printf("sandbox: fire: %v", err)
		return
	}
	if dyno, ok := ecs.Get(g.world, bullet, component.DynoTranComponent.Kind()); ok {
		dyno.Vel = inherited.Add(dir.Mult(bulletSpeed))
	}
}

// aimFrom returns the unit vector from pos to the cursor.
func (g *Game) aimFrom(pos cp.Vector) cp.Vector {
	mx, my := ebiten.CursorPosition()
	cursor := cp.Vector{
		X: (float64(mx)-baseWidth/2)/g.view.Zoom + g.view.X,
		Y: (baseHeight/2-float64(my))/g.view.Zoom + g.view.Y,
	}
	width, height := g.roomSize()
	return common.NormalizeOrZero(common.RoomDiff(cursor, pos, width, height))
}

func (g *Game) roomSize() (float64, float64) {
	e, ok := g.world.First(component.RoomStateComponent.Kind())
	if !ok {
		return component.DefaultRoomWidth, component.DefaultRoomHeight
	}
	room, _ := ecs.Get(g.world, e, component.RoomStateComponent.Kind())
	return room.Size()
}

func (g *Game) bulletTime() *component.BulletTime {
	return system.BulletTimeOf(g.world)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)
	g.world.Draw(screen, g.view)

	slow := ""
	if bt := g.bulletTime(); bt != nil && bt.IsSlow() {
		slow = "  [slow]"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS: %.1f  FPS: %.1f%s", ebiten.ActualTPS(), ebiten.ActualFPS(), slow), 10, baseHeight-20)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
