package dynamics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// JointFeedback receives the force and torque a contact joint applied during
// the last solve.
type JointFeedback struct {
	F1, F2 cp.Vector
	T1, T2 float64
}

// contactJoint is a soft non-penetration constraint with Coulomb friction.
// It lives for one step.
type contactJoint struct {
	a, b *cp.Body
	// inverse mass and moment; zero for bodies the joint must not move
	ma, ia   float64
	mb, ib   float64
	point    cp.Vector
	normal   cp.Vector
	depth    float64
	surface  Surface
	feedback *JointFeedback

	r1, r2       cp.Vector
	tangent      cp.Vector
	normalMass   float64
	tangentMass  float64
	softness     float64
	targetVel    float64
	jnAcc, jtAcc float64
	dt           float64
}

func newContactJoint(rbA, rbB *RigidBody, c *Contact, fb *JointFeedback) *cp.Constraint {
	a, b := rbA.body, rbB.body
	j := &contactJoint{
		a:        a,
		b:        b,
		point:    c.Position,
		normal:   c.Normal,
		depth:    c.Depth,
		surface:  c.Surface,
		feedback: fb,
	}
	if movable(rbA) {
		j.ma, j.ia = inverseMass(a)
	}
	if movable(rbB) {
		j.mb, j.ib = inverseMass(b)
	}
	constraint := cp.NewConstraint(j, a, b)
	if fb != nil {
		constraint.PostSolve = func(*cp.Constraint, *cp.Space) { j.writeFeedback() }
	}
	return constraint
}

func inverseMass(body *cp.Body) (float64, float64) {
	if body.GetType() != cp.BODY_DYNAMIC {
		return 0, 0
	}
	return 1 / body.Mass(), 1 / body.Moment()
}

func centerOf(body *cp.Body) cp.Vector {
	return body.LocalToWorld(body.CenterOfGravity())
}

func (j *contactJoint) PreStep(dt float64) {
	j.dt = dt
	j.r1 = j.point.Sub(centerOf(j.a))
	j.r2 = j.point.Sub(centerOf(j.b))
	j.tangent = j.normal.Perp()

	m1, i1 := j.ma, j.ia
	m2, i2 := j.mb, j.ib
	rn1, rn2 := j.r1.Cross(j.normal), j.r2.Cross(j.normal)
	rt1, rt2 := j.r1.Cross(j.tangent), j.r2.Cross(j.tangent)
	kn := m1 + m2 + i1*rn1*rn1 + i2*rn2*rn2
	kt := m1 + m2 + i1*rt1*rt1 + i2*rt2*rt2

	j.softness = j.surface.CFM / dt
	j.normalMass = kn + j.softness
	j.tangentMass = kt

	vn := j.relativeVelocity().Dot(j.normal)
	j.targetVel = j.surface.ERP * j.depth / dt
	if j.surface.Bounce > 0 && -vn > j.surface.BounceVelocity {
		j.targetVel = math.Max(j.targetVel, -vn*j.surface.Bounce)
	}
	j.jnAcc, j.jtAcc = 0, 0
}

func (j *contactJoint) ApplyCachedImpulse(dtCoef float64) {}

func (j *contactJoint) ApplyImpulse(dt float64) {
	if j.normalMass <= 0 {
		return
	}
	vr := j.relativeVelocity()

	jn := (j.targetVel - vr.Dot(j.normal) - j.softness*j.jnAcc) / j.normalMass
	old := j.jnAcc
	j.jnAcc = math.Max(old+jn, 0)
	jn = j.jnAcc - old

	var jt float64
	if j.tangentMass > 0 {
		jt = -vr.Dot(j.tangent) / j.tangentMass
		limit := j.surface.Friction * j.jnAcc
		oldT := j.jtAcc
		j.jtAcc = cp.Clamp(oldT+jt, -limit, limit)
		jt = j.jtAcc - oldT
	}

	impulse := j.normal.Mult(jn).Add(j.tangent.Mult(jt))
	applyImpulse(j.a, j.ma, j.ia, j.r1, impulse.Neg())
	applyImpulse(j.b, j.mb, j.ib, j.r2, impulse)
}

func (j *contactJoint) GetImpulse() float64 {
	return math.Abs(j.jnAcc)
}

func (j *contactJoint) relativeVelocity() cp.Vector {
	return j.b.VelocityAtWorldPoint(j.point).Sub(j.a.VelocityAtWorldPoint(j.point))
}

func (j *contactJoint) writeFeedback() {
	if j.feedback == nil || j.dt <= 0 {
		return
	}
	force := j.normal.Mult(j.jnAcc).Add(j.tangent.Mult(j.jtAcc)).Mult(1 / j.dt)
	j.feedback.F1 = force.Neg()
	j.feedback.F2 = force
	j.feedback.T1 = j.r1.Cross(force.Neg())
	j.feedback.T2 = j.r2.Cross(force)
}

func applyImpulse(body *cp.Body, m, i float64, r, impulse cp.Vector) {
	if m == 0 {
		return
	}
	body.SetVelocityVector(body.Velocity().Add(impulse.Mult(m)))
	body.SetAngularVelocity(body.AngularVelocity() + i*r.Cross(impulse))
}
