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

// SceneSpec is the yaml layout of a scene file.
type SceneSpec struct {
	Name      string     `yaml:"name"`
	Config    string     `yaml:"config"`
	Materials string     `yaml:"materials"`
	Nodes     []NodeSpec `yaml:"nodes"`
	Welds     []WeldSpec `yaml:"welds"`
}

func LoadSceneSpec(name string) (*SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func ParseSceneSpec(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal scene: %w", err)
	}
	return &spec, nil
}

type NodeSpec struct {
	Name            string     `yaml:"name"`
	CollideDisabled bool       `yaml:"collide_disabled"`
	Color           *YAMLColor `yaml:"color"`
	// Ignore lists node names this node never collides with.
	Ignore []string   `yaml:"ignore"`
	Parts  []PartSpec `yaml:"parts"`
}

type PartSpec struct {
	Name      string     `yaml:"name"`
	Materials []string   `yaml:"materials"`
	Bodies    []BodySpec `yaml:"bodies"`
}

// BodySpec holds one shape entry keyed by builder name, e.g. {circle: {radius: 8}}.
type BodySpec struct {
	Type          string         `yaml:"type"`
	Transform     TransformSpec  `yaml:"transform"`
	Velocity      VecSpec        `yaml:"velocity"`
	Density       float64        `yaml:"density"`
	Mass          float64        `yaml:"mass"`
	CollideType   uint32         `yaml:"collide_type"`
	CollideMask   uint32         `yaml:"collide_mask"`
	WakeOnCollide bool           `yaml:"wake_on_collide"`
	Shape         map[string]any `yaml:"shape"`
}

type TransformSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type VecSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// BodyRef addresses a body as node/part/index.
type BodyRef struct {
	Node  string `yaml:"node"`
	Part  string `yaml:"part"`
	Index int    `yaml:"index"`
}

func (r BodyRef) String() string {
	return fmt.Sprintf("%s/%s/%d", r.Node, r.Part, r.Index)
}

type WeldSpec struct {
	A BodyRef `yaml:"a"`
	B BodyRef `yaml:"b"`
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
