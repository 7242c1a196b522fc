package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/dynamics"
	"github.com/milk9111/collide/scene"
)

// debugDrawer renders cp shapes tinted by their node color.
type debugDrawer struct {
	screen *ebiten.Image
	colors map[scene.NodeID]color.Color
}

func (w *World) DebugDraw(screen *ebiten.Image) {
	if w == nil || w.dyn == nil || screen == nil {
		return
	}
	dd := &debugDrawer{screen: screen, colors: w.built.Colors}
	cp.DrawSpace(w.dyn.Space(), dd)
	// Trimeshes live in the collision cache, not the space.
	for _, rb := range w.dyn.Bodies() {
		if !rb.IsTrimesh() {
			continue
		}
		for _, g := range rb.Geoms() {
			cp.DrawShape(g, dd)
		}
	}
	for _, col := range w.dyn.Collisions() {
		if col.ContactCount() == 0 {
			continue
		}
		p, n := col.Position(), col.Normal()
		dd.DrawDot(4, p, dd.CollisionPointColor(), nil)
		dd.DrawSegment(p, p.Add(n.Mult(12)), dd.CollisionPointColor(), nil)
	}
}

func (d *debugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(fill)
	vector.StrokeCircle(d.screen, float32(pos.X), float32(pos.Y), float32(radius), 1, c, true)
	ax := pos.X + math.Cos(angle)*radius
	ay := pos.Y + math.Sin(angle)*radius
	vector.StrokeLine(d.screen, float32(pos.X), float32(pos.Y), float32(ax), float32(ay), 1, c, true)
}

func (d *debugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, fcolorToRGBA(fill), true)
}

func (d *debugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	width := float32(math.Max(1, 2*radius))
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, fcolorToRGBA(fill), true)
}

func (d *debugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count == 0 {
		return
	}
	c := fcolorToRGBA(fill)
	for i := 0; i < count; i++ {
		a, b := verts[i], verts[(i+1)%count]
		vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, c, true)
	}
}

func (d *debugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	vector.DrawFilledCircle(d.screen, float32(pos.X), float32(pos.Y), float32(size/2), fcolorToRGBA(fill), true)
}

func (d *debugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *debugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1.0, B: 0.2, A: 1.0}
}

func (d *debugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	rb, _ := shape.UserData.(*dynamics.RigidBody)
	if rb == nil || rb.Part() == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if !rb.Enabled() {
		return cp.FColor{R: 0.4, G: 0.4, B: 0.4, A: 1}
	}
	if c, ok := d.colors[rb.Part().Node().ID()]; ok {
		r, g, b, a := c.RGBA()
		return cp.FColor{R: float32(r) / 0xffff, G: float32(g) / 0xffff, B: float32(b) / 0xffff, A: float32(a) / 0xffff}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1.0}
}

func (d *debugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1.0}
}

func (d *debugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1.0, G: 0.1, B: 0.1, A: 1.0}
}

func (d *debugDrawer) Data() interface{} {
	return nil
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		return uint8(math.Max(0, math.Min(1, float64(v))) * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
