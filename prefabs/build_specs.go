package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/dynamics"
	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/scene"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownShape = errors.New("prefabs: unknown shape")
	ErrBadBodyRef   = errors.New("prefabs: bad body reference")
)

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

type CircleSpec struct {
	Radius float64 `yaml:"radius"`
	Offset VecSpec `yaml:"offset"`
}

type BoxSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Offset VecSpec `yaml:"offset"`
}

type CylinderSpec struct {
	Radius float64 `yaml:"radius"`
	Length float64 `yaml:"length"`
	Offset VecSpec `yaml:"offset"`
}

type SegmentSpec struct {
	A      VecSpec `yaml:"a"`
	B      VecSpec `yaml:"b"`
	Radius float64 `yaml:"radius"`
}

type TrimeshSpec struct {
	Vertices  []VecSpec `yaml:"vertices"`
	Triangles [][3]int  `yaml:"triangles"`
}

type shapeBuildFn func(raw any, def *dynamics.BodyDef) error

var shapeRegistry = map[string]shapeBuildFn{
	"circle":   buildCircle,
	"box":      buildBox,
	"cylinder": buildCylinder,
	"segment":  buildSegment,
	"trimesh":  buildTrimesh,
}

var bodyTypes = map[string]dynamics.BodyType{
	"":          dynamics.BodyDynamic,
	"dynamic":   dynamics.BodyDynamic,
	"kinematic": dynamics.BodyKinematic,
	"static":    dynamics.BodyStatic,
}

func vec(v VecSpec) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func buildCircle(raw any, def *dynamics.BodyDef) error {
	spec, err := DecodeComponentSpec[CircleSpec](raw)
	if err != nil {
		return err
	}
	def.Kind = dynamics.ShapeCircle
	def.Radius = spec.Radius
	def.Offset = vec(spec.Offset)
	return nil
}

func buildBox(raw any, def *dynamics.BodyDef) error {
	spec, err := DecodeComponentSpec[BoxSpec](raw)
	if err != nil {
		return err
	}
	def.Kind = dynamics.ShapeBox
	def.Width, def.Height = spec.Width, spec.Height
	def.Offset = vec(spec.Offset)
	return nil
}

func buildCylinder(raw any, def *dynamics.BodyDef) error {
	spec, err := DecodeComponentSpec[CylinderSpec](raw)
	if err != nil {
		return err
	}
	def.Kind = dynamics.ShapeCylinder
	def.Radius = spec.Radius
	def.Length = spec.Length
	def.Offset = vec(spec.Offset)
	return nil
}

func buildSegment(raw any, def *dynamics.BodyDef) error {
	spec, err := DecodeComponentSpec[SegmentSpec](raw)
	if err != nil {
		return err
	}
	def.Kind = dynamics.ShapeSegment
	def.A, def.B = vec(spec.A), vec(spec.B)
	def.Radius = spec.Radius
	return nil
}

func buildTrimesh(raw any, def *dynamics.BodyDef) error {
	spec, err := DecodeComponentSpec[TrimeshSpec](raw)
	if err != nil {
		return err
	}
	def.Kind = dynamics.ShapeTrimesh
	def.Vertices = make([]cp.Vector, len(spec.Vertices))
	for i, v := range spec.Vertices {
		def.Vertices[i] = vec(v)
	}
	def.Triangles = spec.Triangles
	return nil
}

// BodyDef converts a body entry. Exactly one shape key must be present.
func BodyDef(spec BodySpec) (dynamics.BodyDef, error) {
	def := dynamics.BodyDef{
		Position:      cp.Vector{X: spec.Transform.X, Y: spec.Transform.Y},
		Angle:         spec.Transform.Rotation,
		Velocity:      vec(spec.Velocity),
		Density:       spec.Density,
		Mass:          spec.Mass,
		CollideType:   spec.CollideType,
		CollideMask:   spec.CollideMask,
		WakeOnCollide: spec.WakeOnCollide,
	}

	typ, ok := bodyTypes[spec.Type]
	if !ok {
		return def, fmt.Errorf("prefabs: body type %q: %w", spec.Type, dynamics.ErrInvalidBody)
	}
	def.Type = typ

	if len(spec.Shape) != 1 {
		return def, fmt.Errorf("prefabs: body needs exactly one shape, got %d: %w", len(spec.Shape), ErrUnknownShape)
	}
	for name, raw := range spec.Shape {
		fn, ok := shapeRegistry[name]
		if !ok {
			return def, fmt.Errorf("prefabs: shape %q: %w", name, ErrUnknownShape)
		}
		if err := fn(raw, &def); err != nil {
			return def, fmt.Errorf("prefabs: shape %q: %w", name, err)
		}
	}
	return def, nil
}

// Built is the result of BuildScene.
type Built struct {
	Nodes  []*scene.Node
	Parts  []*dynamics.Part
	Welds  []*dynamics.Joint
	Colors map[scene.NodeID]color.Color

	parts map[string]*dynamics.Part
}

// PartByName returns the part built for node/part.
func (b *Built) PartByName(node, part string) *dynamics.Part {
	if b == nil {
		return nil
	}
	return b.parts[node+"/"+part]
}

func (b *Built) body(ref BodyRef) (*dynamics.RigidBody, error) {
	p := b.PartByName(ref.Node, ref.Part)
	if p == nil {
		return nil, fmt.Errorf("prefabs: %s: %w", ref, ErrBadBodyRef)
	}
	bodies := p.Bodies()
	if ref.Index < 0 || ref.Index >= len(bodies) {
		return nil, fmt.Errorf("prefabs: %s: %w", ref, ErrBadBodyRef)
	}
	return bodies[ref.Index], nil
}

// BuildScene creates nodes, parts, bodies and welds. Nothing built so far is
// rolled back on error; callers discard the scene.
func BuildScene(spec *SceneSpec, d *dynamics.Dynamics, lib *material.Library) (*Built, error) {
	if spec == nil || d == nil {
		return nil, fmt.Errorf("prefabs: build scene: nil input")
	}
	sc := d.Scene()
	out := &Built{
		Colors: map[scene.NodeID]color.Color{},
		parts:  map[string]*dynamics.Part{},
	}

	for _, ns := range spec.Nodes {
		node := sc.Create(ns.Name)
		node.CollideDisabled = ns.CollideDisabled
		if ns.Color != nil {
			out.Colors[node.ID()] = ns.Color.Color
		}
		if len(ns.Ignore) > 0 {
			node.AddComponent(NewIgnoreFilter(ns.Ignore...))
		}
		out.Nodes = append(out.Nodes, node)

		for _, ps := range ns.Parts {
			mats, err := lib.Lookup(ps.Materials...)
			if err != nil {
				return nil, fmt.Errorf("prefabs: %s/%s: %w", ns.Name, ps.Name, err)
			}
			part := d.NewPart(node, ps.Name, mats...)
			out.Parts = append(out.Parts, part)
			out.parts[ns.Name+"/"+ps.Name] = part

			for i, bs := range ps.Bodies {
				def, err := BodyDef(bs)
				if err != nil {
					return nil, fmt.Errorf("prefabs: %s/%s/%d: %w", ns.Name, ps.Name, i, err)
				}
				if _, err := part.AddBody(def); err != nil {
					return nil, fmt.Errorf("prefabs: %s/%s/%d: %w", ns.Name, ps.Name, i, err)
				}
			}
		}
	}

	for _, ws := range spec.Welds {
		a, err := out.body(ws.A)
		if err != nil {
			return nil, err
		}
		b, err := out.body(ws.B)
		if err != nil {
			return nil, err
		}
		j, err := d.AttachFixed(a, b)
		if err != nil {
			return nil, fmt.Errorf("prefabs: weld %s to %s: %w", ws.A, ws.B, err)
		}
		out.Welds = append(out.Welds, j)
	}
	return out, nil
}

// ApplyMaterials re-resolves every built part against lib. Parts whose
// material list is unchanged by name are still updated so that reloaded
// definitions take effect.
func ApplyMaterials(spec *SceneSpec, built *Built, lib *material.Library) error {
	if spec == nil || built == nil {
		return nil
	}
	var errs []error
	for _, ns := range spec.Nodes {
		for _, ps := range ns.Parts {
			part := built.PartByName(ns.Name, ps.Name)
			if part == nil || part.Destroyed() {
				continue
			}
			mats, err := lib.Lookup(ps.Materials...)
			if err != nil {
				errs = append(errs, fmt.Errorf("prefabs: %s/%s: %w", ns.Name, ps.Name, err))
				continue
			}
			part.SetMaterials(mats...)
		}
	}
	return errors.Join(errs...)
}

// ShapeNames returns the registered shape builders.
func ShapeNames() []string {
	out := make([]string, 0, len(shapeRegistry))
	for name := range shapeRegistry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
