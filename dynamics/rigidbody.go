package dynamics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// ErrInvalidBody is returned for body definitions that cannot be built.
var ErrInvalidBody = errors.New("dynamics: invalid body")

// ErrInternal marks unreachable enum cases.
var ErrInternal = errors.New("dynamics: internal error")

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	ShapeCylinder
	ShapeSegment
	ShapeTrimesh
)

var shapeKindNames = map[ShapeKind]string{
	ShapeCircle:   "circle",
	ShapeBox:      "box",
	ShapeCylinder: "cylinder",
	ShapeSegment:  "segment",
	ShapeTrimesh:  "trimesh",
}

func (k ShapeKind) String() string {
	if s, ok := shapeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ShapeKind(%d)", int(k))
}

// ParseShapeKind maps a shape name to its kind.
func ParseShapeKind(s string) (ShapeKind, error) {
	for k, name := range shapeKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("shape %q: %w", s, ErrInvalidBody)
}

type BodyType int

const (
	BodyDynamic BodyType = iota
	BodyKinematic
	BodyStatic
)

// CylinderSegments is the number of ring circles approximating a cylinder;
// one more circle fills the center.
const CylinderSegments = 8

// DefaultCollideType is the category of bodies that do not set one.
const DefaultCollideType uint32 = 1

// BodyDef describes a RigidBody. Zero CollideType and CollideMask mean
// DefaultCollideType and "collide with everything".
type BodyDef struct {
	Kind ShapeKind
	Type BodyType

	// Circle and cylinder radius, segment thickness.
	Radius float64
	// Box size.
	Width, Height float64
	// Cylinder tread width; sets the ring circle radius.
	Length float64
	// Segment end points in body space.
	A, B cp.Vector
	// Trimesh geometry in body space.
	Vertices  []cp.Vector
	Triangles [][3]int

	Offset   cp.Vector
	Density  float64
	Mass     float64
	Position cp.Vector
	Angle    float64
	Velocity cp.Vector

	CollideType   uint32
	CollideMask   uint32
	WakeOnCollide bool
}

// BodyID identifies a RigidBody within its Dynamics.
type BodyID uint64

// CollideFunc may adjust c.Surface. Returning false vetoes contact joints for
// the pair this step; the collision itself is unaffected.
type CollideFunc func(c *Contact, self, other *RigidBody) bool

// RigidBody is one physics body and its geometry. It belongs to exactly one Part.
type RigidBody struct {
	id    BodyID
	part  *Part
	kind  ShapeKind
	typ   BodyType
	body  *cp.Body
	geoms []*cp.Shape
	mass  float64

	collideType   uint32
	collideMask   uint32
	wakeOnCollide bool

	enabled   bool
	idle      float64
	callbacks []CollideFunc
	joints    map[*Joint]struct{}
	destroyed bool

	UserData any
}

func (rb *RigidBody) ID() BodyID         { return rb.id }
func (rb *RigidBody) Part() *Part        { return rb.part }
func (rb *RigidBody) Kind() ShapeKind    { return rb.kind }
func (rb *RigidBody) Type() BodyType     { return rb.typ }
func (rb *RigidBody) Body() *cp.Body     { return rb.body }
func (rb *RigidBody) Geoms() []*cp.Shape { return rb.geoms }
func (rb *RigidBody) Mass() float64      { return rb.mass }
func (rb *RigidBody) Destroyed() bool    { return rb.destroyed }

func (rb *RigidBody) IsStatic() bool  { return rb.typ == BodyStatic }
func (rb *RigidBody) IsTrimesh() bool { return rb.kind == ShapeTrimesh }

// Enabled reports whether the body is integrated. Static and kinematic bodies
// are always enabled.
func (rb *RigidBody) Enabled() bool {
	return rb.typ != BodyDynamic || rb.enabled
}

func (rb *RigidBody) sleeping() bool {
	return rb.typ == BodyDynamic && !rb.enabled
}

func (rb *RigidBody) Position() cp.Vector {
	return rb.body.Position()
}

func (rb *RigidBody) Velocity() cp.Vector {
	return rb.body.Velocity()
}

// SetPosition teleports a non-static body and wakes it.
func (rb *RigidBody) SetPosition(p cp.Vector) {
	if rb.typ == BodyStatic {
		return
	}
	rb.body.SetPosition(p)
	for _, g := range rb.geoms {
		g.CacheBB()
	}
	rb.Wake()
}

// SetVelocity sets the linear velocity and wakes the body.
func (rb *RigidBody) SetVelocity(v cp.Vector) {
	if rb.typ == BodyStatic {
		return
	}
	rb.Wake()
	rb.body.SetVelocityVector(v)
}

func (rb *RigidBody) CollideType() uint32 { return rb.collideType }
func (rb *RigidBody) CollideMask() uint32 { return rb.collideMask }

// SetCollideFilter replaces category and mask bits.
func (rb *RigidBody) SetCollideFilter(typ, mask uint32) {
	rb.collideType, rb.collideMask = typ, mask
}

func (rb *RigidBody) WakeOnCollide() bool        { return rb.wakeOnCollide }
func (rb *RigidBody) SetWakeOnCollide(wake bool) { rb.wakeOnCollide = wake }

// AddCollideCallback registers fn for every contact this body takes part in.
func (rb *RigidBody) AddCollideCallback(fn CollideFunc) {
	if fn != nil {
		rb.callbacks = append(rb.callbacks, fn)
	}
}

// Joints returns the live joints attached to the body.
func (rb *RigidBody) Joints() []*Joint {
	out := make([]*Joint, 0, len(rb.joints))
	for j := range rb.joints {
		out = append(out, j)
	}
	return out
}

func (rb *RigidBody) accepts(other *RigidBody) bool {
	return rb.collideType&other.collideMask != 0 && other.collideType&rb.collideMask != 0
}

// Destroy removes the body from the world and kills its joints.
func (rb *RigidBody) Destroy() {
	if rb == nil || rb.destroyed {
		return
	}
	rb.part.dyn.destroyBody(rb)
}

func bodyOf(shape *cp.Shape) *RigidBody {
	if shape == nil {
		return nil
	}
	rb, _ := shape.UserData.(*RigidBody)
	return rb
}

// massFor derives mass and moment from the primitive and its density.
func massFor(def BodyDef) (mass, moment float64, err error) {
	density := def.Density
	if density <= 0 {
		density = 1
	}
	var area float64
	var unit func(m float64) float64
	switch def.Kind {
	case ShapeCircle:
		area = cp.AreaForCircle(0, def.Radius)
		unit = func(m float64) float64 { return cp.MomentForCircle(m, 0, def.Radius, def.Offset) }
	case ShapeBox:
		area = def.Width * def.Height
		unit = func(m float64) float64 { return cp.MomentForBox2(m, boxBB(def)) }
	case ShapeCylinder:
		area = cp.AreaForCircle(0, def.Radius)
		unit = func(m float64) float64 { return cp.MomentForCircle(m, 0, def.Radius, def.Offset) }
	case ShapeSegment:
		area = cp.AreaForSegment(def.A, def.B, def.Radius)
		unit = func(m float64) float64 { return cp.MomentForSegment(m, def.A, def.B, def.Radius) }
	case ShapeTrimesh:
		return 0, 0, fmt.Errorf("trimesh has no mass: %w", ErrInvalidBody)
	default:
		return 0, 0, fmt.Errorf("mass for %v: %w", def.Kind, ErrInternal)
	}
	mass = def.Mass
	if mass <= 0 {
		mass = density * area
	}
	if mass <= 0 || math.IsNaN(mass) {
		return 0, 0, fmt.Errorf("%v with non-positive mass: %w", def.Kind, ErrInvalidBody)
	}
	return mass, unit(mass), nil
}

func validate(def BodyDef) error {
	switch def.Kind {
	case ShapeCircle, ShapeCylinder:
		if def.Radius <= 0 {
			return fmt.Errorf("%v radius %v: %w", def.Kind, def.Radius, ErrInvalidBody)
		}
	case ShapeBox:
		if def.Width <= 0 || def.Height <= 0 {
			return fmt.Errorf("box %vx%v: %w", def.Width, def.Height, ErrInvalidBody)
		}
	case ShapeSegment:
		if def.A == def.B {
			return fmt.Errorf("degenerate segment: %w", ErrInvalidBody)
		}
	case ShapeTrimesh:
		if def.Type != BodyStatic {
			return fmt.Errorf("trimesh must be static: %w", ErrInvalidBody)
		}
		if len(def.Triangles) == 0 {
			return fmt.Errorf("trimesh without triangles: %w", ErrInvalidBody)
		}
		for _, tri := range def.Triangles {
			for _, idx := range tri {
				if idx < 0 || idx >= len(def.Vertices) {
					return fmt.Errorf("trimesh index %d out of range: %w", idx, ErrInvalidBody)
				}
			}
		}
	default:
		return fmt.Errorf("validate %v: %w", def.Kind, ErrInternal)
	}
	return nil
}

// boxBB is the box's extent in body space, centered on its offset.
func boxBB(def BodyDef) cp.BB {
	return cp.NewBBForExtents(def.Offset, def.Width/2, def.Height/2)
}

func buildGeoms(body *cp.Body, def BodyDef) ([]*cp.Shape, error) {
	switch def.Kind {
	case ShapeCircle:
		return []*cp.Shape{cp.NewCircle(body, def.Radius, def.Offset)}, nil
	case ShapeBox:
		return []*cp.Shape{cp.NewBox2(body, boxBB(def), 0)}, nil
	case ShapeCylinder:
		return cylinderGeoms(body, def.Radius, def.Length, def.Offset), nil
	case ShapeSegment:
		return []*cp.Shape{cp.NewSegment(body, def.A, def.B, def.Radius)}, nil
	case ShapeTrimesh:
		out := make([]*cp.Shape, 0, len(def.Triangles))
		for _, tri := range def.Triangles {
			verts := []cp.Vector{def.Vertices[tri[0]], def.Vertices[tri[1]], def.Vertices[tri[2]]}
			out = append(out, cp.NewPolyShape(body, 3, verts, cp.NewTransformIdentity(), 0))
		}
		return out, nil
	}
	return nil, fmt.Errorf("geometry for %v: %w", def.Kind, ErrInternal)
}

// cylinderGeoms approximates a wheel with CylinderSegments circles on a ring
// plus one center circle. The outer extent equals radius exactly.
func cylinderGeoms(body *cp.Body, radius, length float64, offset cp.Vector) []*cp.Shape {
	sub := radius / 2
	if length > 0 {
		sub = math.Min(length/2, sub)
	}
	ring := radius - sub
	shapes := make([]*cp.Shape, 0, CylinderSegments+1)
	for i := 0; i < CylinderSegments; i++ {
		angle := 2 * math.Pi * float64(i) / CylinderSegments
		shapes = append(shapes, cp.NewCircle(body, sub, offset.Add(cp.ForAngle(angle).Mult(ring))))
	}
	return append(shapes, cp.NewCircle(body, ring, offset))
}
