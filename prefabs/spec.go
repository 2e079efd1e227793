package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// PhysicsSpec is physics.yaml. Pointer fields distinguish an explicit zero
// from a missing key.
type PhysicsSpec struct {
	MaxStep         float64  `yaml:"max_step"`
	Restitution     *float64 `yaml:"restitution"`
	Friction        *float64 `yaml:"friction"`
	HeadOnFriction  *float64 `yaml:"head_on_friction"`
	TickRate        float64  `yaml:"tick_rate"`
	CheckInvariants *bool    `yaml:"check_invariants"`
	Verbose         bool     `yaml:"verbose"`
}

func LoadPhysicsSpec() (PhysicsSpec, error) {
	return LoadSpec[PhysicsSpec]("physics.yaml")
}

type RoomSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SpawnSpec struct {
	Name     string  `yaml:"name"`
	Prefab   string  `yaml:"prefab"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

// SandboxSpec is sandbox.yaml: the room and the bodies placed in it.
type SandboxSpec struct {
	Room       RoomSpec    `yaml:"room"`
	Background *YAMLColor  `yaml:"background"`
	SlowMo     bool        `yaml:"slow_mo"`
	Spawns     []SpawnSpec `yaml:"spawns"`
}

func LoadSandboxSpec() (*SandboxSpec, error) {
	data, err := Load("sandbox.yaml")
	if err != nil {
		return nil, fmt.Errorf("prefabs: load sandbox.yaml: %w", err)
	}
	var spec SandboxSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal sandbox.yaml: %w", err)
	}
	return &spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
