package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/component"
	"github.com/milk9111/stickyshot/prefabs"
)

// A reaction script defines on_static(engine, record) and
// on_trigger(engine, record). The dispatcher below is appended to it.
const reactionDispatchScript = `
if __kind == "static" {
	on_static(__engine, __record)
} else if __kind == "trigger" {
	on_trigger(__engine, __record)
}
`

type reactionRuntime struct {
	compiled *tengo.Compiled
	err      error
}

// ReactionScriptSystem runs each entity's reaction script once for every
// collision record in its queues. It only reads records; changes scripts ask
// for are applied to components directly, and destruction waits until every
// script has run.
type ReactionScriptSystem struct {
	cache   map[string]*reactionRuntime
	doomed  []ecs.Entity
	Verbose bool
}

func NewReactionScriptSystem() *ReactionScriptSystem {
	return &ReactionScriptSystem{cache: map[string]*reactionRuntime{}}
}

func (s *ReactionScriptSystem) Name() string { return "reaction_script" }

// Invalidate drops the compiled copy of path so the next tick reloads it.
func (s *ReactionScriptSystem) Invalidate(path string) {
	delete(s.cache, path)
	delete(s.cache, prefabs.CleanScriptPath(path))
}

func (s *ReactionScriptSystem) InvalidateAll() {
	clear(s.cache)
}

func (s *ReactionScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	records := CollisionRecordsOf(w)
	if records.Len() == 0 {
		return
	}

	ecs.ForEach(w, component.ReactionScriptComponent.Kind(), func(e ecs.Entity, rs *component.ReactionScript) {
		if strings.TrimSpace(rs.Path) == "" {
			return
		}
		rt := s.runtime(rs.Path)
		if rt.err != nil {
			return
		}
		for _, rec := range recordsFor(w, e, records) {
			if err := s.run(w, e, rt, rec); err != nil {
				log.Printf("scripts: entity=%v %s: %v", e, rs.Path, err)
				return
			}
		}
	})

	for _, e := range s.doomed {
		ecs.DestroyEntity(w, e)
	}
	s.doomed = s.doomed[:0]
}

func (s *ReactionScriptSystem) runtime(path string) *reactionRuntime {
	if s.cache == nil {
		s.cache = map[string]*reactionRuntime{}
	}
	if rt, ok := s.cache[path]; ok {
		return rt
	}
	rt := &reactionRuntime{}
	rt.compiled, rt.err = compileReaction(path)
	if rt.err != nil {
		log.Printf("scripts: load %s: %v", path, rt.err)
	}
	s.cache[path] = rt
	return rt
}

func compileReaction(path string) (*tengo.Compiled, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}
	script := tengo.NewScript([]byte(string(src) + "\n" + reactionDispatchScript))
	_ = script.Add("__kind", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__record", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return script.Compile()
}

// reactionRecord is one collision as seen from the scripted entity.
type reactionRecord struct {
	kind   string
	values map[string]tengo.Object
}

// recordsFor collects e's records from all four role queues. A static record
// appears once per side, so an entity holding both sides of one contact is
// impossible.
func recordsFor(w *ecs.World, e ecs.Entity, records *component.CollisionRecords) []reactionRecord {
	var out []reactionRecord
	addStatic := func(ids []component.RecordID) {
		for _, id := range ids {
			r, ok := records.Static(id)
			if !ok {
				continue
			}
			role, other := "rx", ecs.Entity(r.TxEntity)
			if ecs.Entity(r.TxEntity) == e {
				role, other = "tx", ecs.Entity(r.RxEntity)
			}
			out = append(out, reactionRecord{kind: "static", values: map[string]tengo.Object{
				"kind":    &tengo.String{Value: "static"},
				"role":    &tengo.String{Value: role},
				"pos":     vecObject(r.Pos),
				"self":    &tengo.Int{Value: int64(e)},
				"other":   &tengo.Int{Value: int64(other)},
				"tx_kind": &tengo.String{Value: r.TxKind.String()},
				"rx_kind": &tengo.String{Value: r.RxKind.String()},
				"rx_perp": vecObject(r.RxPerp),
				"rx_par":  vecObject(r.RxPar),
			}})
		}
	}
	addTrigger := func(ids []component.RecordID) {
		for _, id := range ids {
			r, ok := records.Trigger(id)
			if !ok {
				continue
			}
			other := ecs.Entity(r.TxEntity)
			if r.Role == component.TriggerRoleTx {
				other = ecs.Entity(r.RxEntity)
			}
			out = append(out, reactionRecord{kind: "trigger", values: map[string]tengo.Object{
				"kind":    &tengo.String{Value: "trigger"},
				"role":    &tengo.String{Value: r.Role.String()},
				"pos":     vecObject(r.Pos),
				"self":    &tengo.Int{Value: int64(e)},
				"other":   &tengo.Int{Value: int64(other)},
				"tx_kind": &tengo.String{Value: r.TxKind.String()},
				"rx_kind": &tengo.String{Value: r.RxKind.String()},
			}})
		}
	}

	if rx, ok := ecs.Get(w, e, component.StaticRxComponent.Kind()); ok {
		addStatic(rx.Collisions)
	}
	if tx, ok := ecs.Get(w, e, component.StaticTxComponent.Kind()); ok {
		addStatic(tx.Collisions)
	}
	if rx, ok := ecs.Get(w, e, component.TriggerRxComponent.Kind()); ok {
		addTrigger(rx.Collisions)
	}
	if tx, ok := ecs.Get(w, e, component.TriggerTxComponent.Kind()); ok {
		addTrigger(tx.Collisions)
	}
	return out
}

func (s *ReactionScriptSystem) run(w *ecs.World, e ecs.Entity, rt *reactionRuntime, rec reactionRecord) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__kind", rec.kind); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", s.engine(w, e)); err != nil {
		return err
	}
	if err := rt.compiled.Set("__record", &tengo.ImmutableMap{Value: rec.values}); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (s *ReactionScriptSystem) engine(w *ecs.World, self ecs.Entity) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["get_velocity"] = &tengo.UserFunction{Name: "get_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		dyno, ok := ecs.Get(w, self, component.DynoTranComponent.Kind())
		if !ok {
			return vecObject(cp.Vector{}), nil
		}
		return vecObject(dyno.Vel), nil
	}}

	values["set_velocity"] = &tengo.UserFunction{Name: "set_velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		vel, ok := vecArgs(args)
		if !ok {
			return tengo.FalseValue, nil
		}
		dyno, ok := ecs.Get(w, self, component.DynoTranComponent.Kind())
		if !ok {
			return tengo.FalseValue, nil
		}
		dyno.Vel = vel
		return tengo.TrueValue, nil
	}}

	values["is_stuck"] = &tengo.UserFunction{Name: "is_stuck", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(ecs.Has(w, self, component.StuckComponent.Kind())), nil
	}}

	values["release"] = &tengo.UserFunction{Name: "release", Value: func(args ...tengo.Object) (tengo.Object, error) {
		vel, _ := vecArgs(args)
		return boolObject(Release(w, self, vel)), nil
	}}

	values["destroy"] = &tengo.UserFunction{Name: "destroy", Value: func(args ...tengo.Object) (tengo.Object, error) {
		target := self
		if len(args) > 0 {
			n, ok := objectToAny(args[0]).(int)
			if !ok {
				return tengo.FalseValue, nil
			}
			target = ecs.Entity(uint64(n))
		}
		if !w.IsAlive(target) {
			return tengo.FalseValue, nil
		}
		s.doomed = append(s.doomed, target)
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		if s.Verbose {
			log.Printf("scripts: entity=%v %s", self, strings.Join(parts, " "))
		}
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecObject(v cp.Vector) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

// vecArgs accepts either (x, y) or a single [x, y] array.
func vecArgs(args []tengo.Object) (cp.Vector, bool) {
	var raw []any
	switch len(args) {
	case 1:
		raw, _ = objectToAny(args[0]).([]any)
	case 2:
		raw = []any{objectToAny(args[0]), objectToAny(args[1])}
	}
	if len(raw) != 2 {
		return cp.Vector{}, false
	}
	x, okX := asFloat(raw[0])
	y, okY := asFloat(raw[1])
	return cp.Vector{X: x, Y: y}, okX && okY
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
