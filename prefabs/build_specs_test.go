package prefabs

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/collide/dynamics"
	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/scene"
)

func newDynamics(t *testing.T) *dynamics.Dynamics {
	t.Helper()
	cfg, err := LoadConfig(ConfigFile)
	require.NoError(t, err)
	cfg.AutoDisable.Enabled = false
	d, err := dynamics.New(scene.New(), dynamics.WithConfig(cfg))
	require.NoError(t, err)
	return d
}

func loadLibrary(t *testing.T) *material.Library {
	t.Helper()
	lib, err := LoadLibrary(MaterialsFile, nil)
	require.NoError(t, err)
	return lib
}

func TestBodyDefShapes(t *testing.T) {
	tests := []struct {
		name  string
		spec  BodySpec
		check func(t *testing.T, def dynamics.BodyDef)
	}{
		{
			name: "circle",
			spec: BodySpec{Shape: map[string]any{"circle": map[string]any{"radius": 8, "offset": map[string]any{"x": 1}}}},
			check: func(t *testing.T, def dynamics.BodyDef) {
				assert.Equal(t, dynamics.ShapeCircle, def.Kind)
				assert.Equal(t, 8.0, def.Radius)
				assert.Equal(t, cp.Vector{X: 1}, def.Offset)
			},
		},
		{
			name: "box",
			spec: BodySpec{Type: "kinematic", Shape: map[string]any{"box": map[string]any{"width": 4, "height": 2, "offset": map[string]any{"y": 3}}}},
			check: func(t *testing.T, def dynamics.BodyDef) {
				assert.Equal(t, dynamics.ShapeBox, def.Kind)
				assert.Equal(t, dynamics.BodyKinematic, def.Type)
				assert.Equal(t, 4.0, def.Width)
				assert.Equal(t, 2.0, def.Height)
				assert.Equal(t, cp.Vector{Y: 3}, def.Offset)
			},
		},
		{
			name: "cylinder",
			spec: BodySpec{Mass: 3, Shape: map[string]any{"cylinder": map[string]any{"radius": 14, "length": 8}}},
			check: func(t *testing.T, def dynamics.BodyDef) {
				assert.Equal(t, dynamics.ShapeCylinder, def.Kind)
				assert.Equal(t, 14.0, def.Radius)
				assert.Equal(t, 8.0, def.Length)
				assert.Equal(t, 3.0, def.Mass)
			},
		},
		{
			name: "segment",
			spec: BodySpec{Type: "static", Shape: map[string]any{"segment": map[string]any{
				"a": map[string]any{"x": 0, "y": 0}, "b": map[string]any{"x": 10, "y": 0}, "radius": 2,
			}}},
			check: func(t *testing.T, def dynamics.BodyDef) {
				assert.Equal(t, dynamics.ShapeSegment, def.Kind)
				assert.Equal(t, dynamics.BodyStatic, def.Type)
				assert.Equal(t, cp.Vector{X: 10}, def.B)
			},
		},
		{
			name: "trimesh",
			spec: BodySpec{Type: "static", Shape: map[string]any{"trimesh": map[string]any{
				"vertices":  []any{map[string]any{"x": 0, "y": 0}, map[string]any{"x": 1, "y": 0}, map[string]any{"x": 0, "y": 1}},
				"triangles": []any{[]any{0, 1, 2}},
			}}},
			check: func(t *testing.T, def dynamics.BodyDef) {
				assert.Equal(t, dynamics.ShapeTrimesh, def.Kind)
				assert.Len(t, def.Vertices, 3)
				assert.Equal(t, [][3]int{{0, 1, 2}}, def.Triangles)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := BodyDef(tt.spec)
			require.NoError(t, err)
			tt.check(t, def)
		})
	}
}

func TestBodyDefRejects(t *testing.T) {
	tests := []struct {
		name string
		spec BodySpec
		want error
	}{
		{"no shape", BodySpec{}, ErrUnknownShape},
		{"two shapes", BodySpec{Shape: map[string]any{"circle": nil, "box": nil}}, ErrUnknownShape},
		{"unknown shape", BodySpec{Shape: map[string]any{"capsule": nil}}, ErrUnknownShape},
		{"unknown type", BodySpec{Type: "floating", Shape: map[string]any{"circle": nil}}, dynamics.ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BodyDef(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestShapeNames(t *testing.T) {
	assert.Equal(t, []string{"box", "circle", "cylinder", "segment", "trimesh"}, ShapeNames())
}

func TestBuildSandboxScene(t *testing.T) {
	spec, err := LoadSceneSpec(SceneFile)
	require.NoError(t, err)
	assert.Equal(t, "sandbox", spec.Name)

	d := newDynamics(t)
	built, err := BuildScene(spec, d, loadLibrary(t))
	require.NoError(t, err)

	assert.Len(t, built.Nodes, len(spec.Nodes))
	assert.Len(t, built.Welds, 2)
	assert.Len(t, built.Colors, len(spec.Nodes))

	wheels := built.PartByName("cart", "wheels")
	require.NotNil(t, wheels)
	assert.Len(t, wheels.Bodies(), 2)
	assert.Equal(t, dynamics.ShapeCylinder, wheels.Bodies()[0].Kind())

	slope := built.PartByName("ramp", "slope")
	require.NotNil(t, slope)
	assert.True(t, slope.Bodies()[0].IsTrimesh())
	assert.Equal(t, 1, d.Cache().Len())

	for i := 0; i < 10; i++ {
		d.Step()
	}
}

func TestBuildSceneErrors(t *testing.T) {
	ball := NodeSpec{Name: "ball", Parts: []PartSpec{{
		Name:      "body",
		Materials: []string{"rubber"},
		Bodies:    []BodySpec{{Shape: map[string]any{"circle": map[string]any{"radius": 4}}}},
	}}}

	t.Run("unknown material", func(t *testing.T) {
		spec := &SceneSpec{Nodes: []NodeSpec{{Name: "n", Parts: []PartSpec{{Name: "p", Materials: []string{"plasma"}}}}}}
		_, err := BuildScene(spec, newDynamics(t), loadLibrary(t))
		assert.ErrorIs(t, err, material.ErrUnknownMaterial)
	})

	t.Run("bad body", func(t *testing.T) {
		spec := &SceneSpec{Nodes: []NodeSpec{{Name: "n", Parts: []PartSpec{{
			Name:   "p",
			Bodies: []BodySpec{{Shape: map[string]any{"circle": map[string]any{"radius": -1}}}},
		}}}}}
		_, err := BuildScene(spec, newDynamics(t), loadLibrary(t))
		assert.ErrorIs(t, err, dynamics.ErrInvalidBody)
	})

	t.Run("weld index out of range", func(t *testing.T) {
		spec := &SceneSpec{
			Nodes: []NodeSpec{ball},
			Welds: []WeldSpec{{A: BodyRef{Node: "ball", Part: "body"}, B: BodyRef{Node: "ball", Part: "body", Index: 3}}},
		}
		_, err := BuildScene(spec, newDynamics(t), loadLibrary(t))
		assert.ErrorIs(t, err, ErrBadBodyRef)
	})

	t.Run("weld to missing part", func(t *testing.T) {
		spec := &SceneSpec{
			Nodes: []NodeSpec{ball},
			Welds: []WeldSpec{{A: BodyRef{Node: "ball", Part: "body"}, B: BodyRef{Node: "cart", Part: "wheels"}}},
		}
		_, err := BuildScene(spec, newDynamics(t), loadLibrary(t))
		assert.ErrorIs(t, err, ErrBadBodyRef)
	})
}

const lavaScene = `
nodes:
  - name: lava
    parts:
      - name: pool
        materials: [lava]
        bodies:
          - type: static
            transform: {x: 0, y: 0}
            shape:
              box: {width: 100, height: 20}
  - name: crate
    parts:
      - name: body
        materials: [wood]
        bodies:
          - transform: {x: 0, y: 0}
            shape:
              box: {width: 10, height: 10}
`

func TestLavaScriptFiresOnConnect(t *testing.T) {
	spec, err := ParseSceneSpec([]byte(lavaScene))
	require.NoError(t, err)

	d := newDynamics(t)
	built, err := BuildScene(spec, d, loadLibrary(t))
	require.NoError(t, err)

	d.Step()

	lava := built.PartByName("lava", "pool")
	crate := built.PartByName("crate", "body")
	assert.True(t, d.AreColliding(lava.Node().ID(), lava.ID(), crate.Node().ID(), crate.ID()))

	msgs := d.Scene().Drain()
	require.Len(t, msgs, 2)
	assert.Equal(t, "ignite", msgs[0].Name)
	assert.Equal(t, crate.Node().ID(), msgs[0].To)
	assert.Equal(t, "lava", msgs[0].Args["source"])
	assert.Equal(t, "burning:crate", msgs[1].Name)
	assert.Equal(t, lava.Node().ID(), msgs[1].To)
}

func circleAt(x float64) BodySpec {
	return BodySpec{
		Transform: TransformSpec{X: x},
		Shape:     map[string]any{"circle": map[string]any{"radius": 5}},
	}
}

func TestIgnoreFilterSkipsNamedNodes(t *testing.T) {
	spec := &SceneSpec{Nodes: []NodeSpec{
		{Name: "cart", Ignore: []string{"cart"}, Parts: []PartSpec{
			{Name: "a", Materials: []string{"metal"}, Bodies: []BodySpec{circleAt(0)}},
			{Name: "b", Materials: []string{"metal"}, Bodies: []BodySpec{circleAt(3)}},
		}},
		{Name: "rock", Parts: []PartSpec{
			{Name: "c", Materials: []string{"stone"}, Bodies: []BodySpec{circleAt(6)}},
		}},
	}}

	d := newDynamics(t)
	built, err := BuildScene(spec, d, loadLibrary(t))
	require.NoError(t, err)
	d.Step()

	a := built.PartByName("cart", "a")
	b := built.PartByName("cart", "b")
	c := built.PartByName("rock", "c")
	assert.False(t, a.IsCollidingWith(b.Node().ID(), b.ID()))
	assert.True(t, a.IsCollidingWith(c.Node().ID(), c.ID()))
	assert.True(t, b.IsCollidingWith(c.Node().ID()))

	f := NewIgnoreFilter("rock")
	assert.False(t, f.PreFilterCollision(a.Bodies()[0], c.Bodies()[0]))
	assert.True(t, f.PreFilterCollision(c.Bodies()[0], a.Bodies()[0]))
}

func TestApplyMaterialsSwapsParts(t *testing.T) {
	spec, err := ParseSceneSpec([]byte(lavaScene))
	require.NoError(t, err)

	d := newDynamics(t)
	lib := loadLibrary(t)
	built, err := BuildScene(spec, d, lib)
	require.NoError(t, err)
	d.Step()
	d.Scene().Drain()

	spec.Nodes[1].Parts[0].Materials = []string{"ice"}
	require.NoError(t, ApplyMaterials(spec, built, lib))

	crate := built.PartByName("crate", "body")
	require.Len(t, crate.Materials(), 1)
	assert.Equal(t, "ice", crate.Materials()[0].Name)
	// Both sides are re-applied and each queues the shared pair once.
	assert.Equal(t, 2, d.Registry().PendingResets())

	d.Step()
	names := []string{}
	for _, m := range d.Scene().Drain() {
		names = append(names, m.Name)
	}
	// Reset disconnects with the old materials, then reconnects.
	assert.Equal(t, []string{"cooled", "ignite", "burning:crate"}, names)

	spec.Nodes[1].Parts[0].Materials = []string{"plasma"}
	assert.ErrorIs(t, ApplyMaterials(spec, built, lib), material.ErrUnknownMaterial)
}
