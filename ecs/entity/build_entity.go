package entity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/common"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/geom"
	"github.com/milk9111/stickyshot/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":       addTransform,
	"dyno_tran":       addDynoTran,
	"dyno_rot":        addDynoRot,
	"room_wrap":       addRoomWrap,
	"static_tx":       addStaticTx,
	"static_rx":       addStaticRx,
	"trigger_tx":      addTriggerTx,
	"trigger_rx":      addTriggerRx,
	"follow":          addFollow,
	"patrol_watch":    addPatrolWatch,
	"reaction_script": addReactionScript,
}

// transform goes first so every later builder can rely on a pose.
var componentBuildOrder = []string{
	"transform",
	"dyno_tran",
	"dyno_rot",
	"room_wrap",
	"static_tx",
	"static_rx",
	"trigger_tx",
	"trigger_rx",
	"follow",
	"patrol_watch",
	"reaction_script",
}

// tagKinds are the components a patrol may name as its ignore tag.
var tagKinds = map[string]component.AnyKind{
	"room_wrap":  component.RoomWrapComponent.Kind(),
	"stuck":      component.StuckComponent.Kind(),
	"dyno_tran":  component.DynoTranComponent.Kind(),
	"static_rx":  component.StaticRxComponent.Kind(),
	"trigger_rx": component.TriggerRxComponent.Kind(),
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildFromSpec(w, prefabPath, spec)
}

// BuildFromSpec creates an entity from an already decoded prefab. Every
// entity gets a Transform and a matching GlobalTransform even when the
// prefab leaves them out.
func BuildFromSpec(w *ecs.World, prefabPath string, spec entityPrefabSpec) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}
	if _, ok := remaining["transform"]; !ok {
		remaining["transform"] = map[string]any{}
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, names[0])
	}

	if spec.Name != "" {
		_ = ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name})
	}
	return e, nil
}

// Spawn builds s.Prefab and places it at the spawn's pose, naming it after
// the spawn when one is given.
func Spawn(w *ecs.World, s prefabs.SpawnSpec) (ecs.Entity, error) {
	e, err := BuildEntity(w, s.Prefab)
	if err != nil {
		return 0, err
	}
	if err := SetEntityTransform(w, e, s.X, s.Y, s.Rotation); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	if s.Name != "" {
		_ = ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: s.Name})
	}
	return e, nil
}

// FindByName returns the lowest-id entity named name.
func FindByName(w *ecs.World, name string) (ecs.Entity, bool) {
	for _, e := range w.Query(component.NameComponent.Kind()) {
		n, _ := ecs.Get(w, e, component.NameComponent.Kind())
		if n.Value == name {
			return e, true
		}
	}
	return 0, false
}

// SetEntityTransform moves a parentless entity, keeping its
// GlobalTransform in step.
func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), t); err != nil {
		return err
	}
	gt, ok := ecs.Get(w, e, component.GlobalTransformComponent.Kind())
	if !ok {
		gt = &component.GlobalTransform{}
	}
	gt.X, gt.Y, gt.Rotation = x, y, rotation
	return ecs.Add(w, e, component.GlobalTransformComponent.Kind(), gt)
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.GlobalTransformComponent.Kind(), &component.GlobalTransform{
		X:        spec.X,
		Y:        spec.Y,
		Rotation: spec.Rotation,
	})
}

type dynoTranSpec = prefabs.DynoTranComponentSpec

func addDynoTran(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[dynoTranSpec](raw)
	if err != nil {
		return fmt.Errorf("decode dyno_tran spec: %w", err)
	}
	return ecs.Add(w, e, component.DynoTranComponent.Kind(), &component.DynoTran{Vel: cp.Vector{X: spec.VX, Y: spec.VY}})
}

type dynoRotSpec = prefabs.DynoRotComponentSpec

func addDynoRot(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[dynoRotSpec](raw)
	if err != nil {
		return fmt.Errorf("decode dyno_rot spec: %w", err)
	}
	return ecs.Add(w, e, component.DynoRotComponent.Kind(), &component.DynoRot{Rot: spec.Rot})
}

func addRoomWrap(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.RoomWrapComponent.Kind(), &component.RoomWrap{})
}

func addStaticTx(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.StaticTxComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode static_tx spec: %w", err)
	}
	kind, err := component.ParseStaticTxKind(spec.Kind)
	if err != nil {
		return err
	}
	bounds, err := buildBounds(w, spec.Shapes, spec.Mirages)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.StaticTxComponent.Kind(), &component.StaticTx{Kind: kind, Bounds: bounds})
}

func addStaticRx(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.StaticRxComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode static_rx spec: %w", err)
	}
	mode, err := component.ParseStaticRxMode(spec.Kind)
	if err != nil {
		return err
	}
	bounds, err := buildBounds(w, spec.Shapes, spec.Mirages)
	if err != nil {
		return err
	}
	if mode == component.StaticRxGoAround && spec.Mult == 0 {
		spec.Mult = 1
	}
	return ecs.Add(w, e, component.StaticRxComponent.Kind(), &component.StaticRx{
		Kind:   component.StaticRxKind{Mode: mode, Mult: spec.Mult},
		Bounds: bounds,
	})
}

func addTriggerTx(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	kind, bounds, err := decodeTrigger(w, raw)
	if err != nil {
		return fmt.Errorf("trigger_tx: %w", err)
	}
	return ecs.Add(w, e, component.TriggerTxComponent.Kind(), &component.TriggerTx{Kind: kind, Bounds: bounds})
}

func addTriggerRx(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	kind, bounds, err := decodeTrigger(w, raw)
	if err != nil {
		return fmt.Errorf("trigger_rx: %w", err)
	}
	return ecs.Add(w, e, component.TriggerRxComponent.Kind(), &component.TriggerRx{Kind: kind, Bounds: bounds})
}

func decodeTrigger(w *ecs.World, raw any) (component.TriggerKind, geom.Bounds, error) {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TriggerComponentSpec](raw)
	if err != nil {
		return 0, geom.Bounds{}, fmt.Errorf("decode spec: %w", err)
	}
	kind, err := component.ParseTriggerKind(spec.Kind)
	if err != nil {
		return 0, geom.Bounds{}, err
	}
	bounds, err := buildBounds(w, spec.Shapes, spec.Mirages)
	return kind, bounds, err
}

type followSpec = prefabs.FollowComponentSpec

func addFollow(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[followSpec](raw)
	if err != nil {
		return fmt.Errorf("decode follow spec: %w", err)
	}
	target, ok := FindByName(w, spec.TargetName)
	if !ok {
		return fmt.Errorf("follow target %q not found", spec.TargetName)
	}
	follow := &component.Follow{
		Target:       uint64(target),
		Accel:        spec.Accel,
		MaxSpeed:     spec.MaxSpeed,
		LookAtTarget: spec.LookAtTarget,
	}
	if spec.MinDist != nil || spec.MaxDist != nil {
		minDist, maxDist := 0.0, 1e9
		if spec.MinDist != nil {
			minDist = *spec.MinDist
		}
		if spec.MaxDist != nil {
			maxDist = *spec.MaxDist
		}
		follow.SetAcceptableDistRange(minDist, maxDist)
	}
	return ecs.Add(w, e, component.FollowComponent.Kind(), follow)
}

type patrolWatchSpec = prefabs.PatrolWatchComponentSpec

func addPatrolWatch(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[patrolWatchSpec](raw)
	if err != nil {
		return fmt.Errorf("decode patrol_watch spec: %w", err)
	}
	target, err := component.ParseTriggerKind(spec.Target)
	if err != nil {
		return err
	}
	vision, err := buildBounds(w, spec.Shapes, false)
	if err != nil {
		return err
	}
	watch := &component.PatrolWatch{Vision: vision, Target: target}
	if tag := strings.TrimSpace(spec.Ignore); tag != "" {
		kind, ok := tagKinds[tag]
		if !ok {
			return fmt.Errorf("unknown ignore tag %q", tag)
		}
		watch.Ignore = kind
	}
	if err := ecs.Add(w, e, component.PatrolWatchComponent.Kind(), watch); err != nil {
		return err
	}
	return ecs.Add(w, e, component.PatrolInactiveComponent.Kind(), &component.PatrolInactive{})
}

func addReactionScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ReactionScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode reaction_script spec: %w", err)
	}
	if strings.TrimSpace(spec.Path) == "" {
		return fmt.Errorf("reaction_script needs a path")
	}
	return ecs.Add(w, e, component.ReactionScriptComponent.Kind(), &component.ReactionScript{Path: spec.Path})
}

// buildBounds turns shape specs into Bounds, adding the eight room mirages
// when asked so bodies collide across the wrap seam.
func buildBounds(w *ecs.World, specs []prefabs.ShapeSpec, mirages bool) (geom.Bounds, error) {
	if len(specs) == 0 {
		return geom.Bounds{}, fmt.Errorf("no shapes")
	}
	shapes := make([]geom.Shape, 0, len(specs))
	for i, s := range specs {
		shape, err := buildShape(s)
		if err != nil {
			return geom.Bounds{}, fmt.Errorf("shape %d: %w", i, err)
		}
		shapes = append(shapes, shape)
	}
	bounds := geom.FromShapes(shapes)
	if mirages {
		bounds = bounds.WithMirages(roomOf(w).MirageOffsets())
	}
	return bounds, nil
}

func buildShape(s prefabs.ShapeSpec) (geom.Shape, error) {
	offset := cp.Vector{X: s.OffsetX, Y: s.OffsetY}
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "circle":
		if s.Radius <= 0 {
			return geom.Shape{}, fmt.Errorf("circle radius must be positive")
		}
		return geom.Circle(offset, s.Radius), nil
	case "rect":
		if s.Width <= 0 || s.Height <= 0 {
			return geom.Shape{}, fmt.Errorf("rect needs a positive width and height")
		}
		return geom.Polygon(common.SimpleRect(s.Width, s.Height, offset)), nil
	case "polygon":
		if len(s.Points) < 3 {
			return geom.Shape{}, fmt.Errorf("polygon needs at least three points, got %d", len(s.Points))
		}
		points := make([]cp.Vector, 0, len(s.Points))
		for _, p := range s.Points {
			points = append(points, cp.Vector{X: p.X + offset.X, Y: p.Y + offset.Y})
		}
		if geom.Area(points) == 0 {
			return geom.Shape{}, fmt.Errorf("polygon encloses no area")
		}
		return geom.Polygon(points), nil
	}
	return geom.Shape{}, fmt.Errorf("unknown shape type %q", s.Type)
}

func roomOf(w *ecs.World) *component.RoomState {
	e, ok := w.First(component.RoomStateComponent.Kind())
	if !ok {
		return nil
	}
	room, _ := ecs.Get(w, e, component.RoomStateComponent.Kind())
	return room
}
