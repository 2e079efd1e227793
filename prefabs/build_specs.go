package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ShapeSpec is one collision shape. Type is "circle", "rect" or "polygon";
// polygon points are wound clockwise.
type ShapeSpec struct {
	Type    string      `yaml:"type"`
	Radius  float64     `yaml:"radius"`
	Width   float64     `yaml:"width"`
	Height  float64     `yaml:"height"`
	Points  []PointSpec `yaml:"points"`
	OffsetX float64     `yaml:"offset_x"`
	OffsetY float64     `yaml:"offset_y"`
}

type StaticTxComponentSpec struct {
	Kind    string      `yaml:"kind"`
	Mirages bool        `yaml:"mirages"`
	Shapes  []ShapeSpec `yaml:"shapes"`
}

type StaticRxComponentSpec struct {
	Kind    string      `yaml:"kind"`
	Mult    int         `yaml:"mult"`
	Mirages bool        `yaml:"mirages"`
	Shapes  []ShapeSpec `yaml:"shapes"`
}

type TriggerComponentSpec struct {
	Kind    string      `yaml:"kind"`
	Mirages bool        `yaml:"mirages"`
	Shapes  []ShapeSpec `yaml:"shapes"`
}

type DynoTranComponentSpec struct {
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
}

type DynoRotComponentSpec struct {
	Rot float64 `yaml:"rot"`
}

type FollowComponentSpec struct {
	TargetName   string   `yaml:"target_name"`
	Accel        float64  `yaml:"accel"`
	MaxSpeed     float64  `yaml:"max_speed"`
	MinDist      *float64 `yaml:"min_dist"`
	MaxDist      *float64 `yaml:"max_dist"`
	LookAtTarget bool     `yaml:"look_at_target"`
}

type PatrolWatchComponentSpec struct {
	Target string      `yaml:"target"`
	Ignore string      `yaml:"ignore"`
	Shapes []ShapeSpec `yaml:"shapes"`
}

type ReactionScriptComponentSpec struct {
	Path string `yaml:"path"`
}
