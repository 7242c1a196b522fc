package material

import (
	"github.com/google/uuid"
)

// Material is one entry of a part's material list. Entries with a Match list
// apply only against partners carrying one of the named materials.
type Material struct {
	Name  string
	Match []string

	Collide           bool
	Physical          bool
	IgnoreNodeCollide bool
	ComplexSound      bool

	Friction  float64
	Bounce    float64
	Stiffness float64
	Damping   float64

	ConnectSound *SoundSpec
	ImpactSound  *SoundSpec
	SkidSound    *SoundSpec
	RollSound    *SoundSpec

	OnConnect    []Action
	OnDisconnect []Action
}

// Default is used when no entry of a part's list applies.
func Default() *Material {
	return &Material{
		Name:      "default",
		Collide:   true,
		Physical:  true,
		Friction:  0.6,
		Bounce:    0.1,
		Stiffness: 1,
		Damping:   1,
	}
}

// SoundSpec describes a clip and how loud it gets at the target impulse.
type SoundSpec struct {
	Clip          string  `yaml:"clip"`
	TargetImpulse float64 `yaml:"target_impulse"`
	Volume        float64 `yaml:"volume"`
}

// Sound is a per-collision instance of a SoundSpec holding its voice. Timing
// used for throttling lives with the part, not here.
type Sound struct {
	SoundSpec

	Voice   uuid.UUID
	Playing bool
}

func newSound(spec *SoundSpec) *Sound {
	if spec == nil || spec.Clip == "" {
		return nil
	}
	return &Sound{SoundSpec: *spec}
}

// Context is the resolved view of one side of a collision pair. Sound slots are
// mutable and owned by the collision the context was resolved for.
type Context struct {
	Material *Material

	Collide           bool
	Physical          bool
	IgnoreNodeCollide bool
	ComplexSound      bool

	Friction  float64
	Bounce    float64
	Stiffness float64
	Damping   float64

	OnConnect    []Action
	OnDisconnect []Action

	ConnectSound *Sound
	ImpactSound  *Sound
	SkidSound    *Sound
	RollSound    *Sound
}

// Resolve picks the first entry of self applying against other and expands it
// into a fresh Context. A nil fallback means Default().
func Resolve(self, other []*Material, fallback *Material) *Context {
	partner := make(map[string]struct{}, len(other))
	for _, m := range other {
		if m != nil {
			partner[m.Name] = struct{}{}
		}
	}
	chosen := fallback
	for _, m := range self {
		if m != nil && m.applies(partner) {
			chosen = m
			break
		}
	}
	if chosen == nil {
		chosen = Default()
	}
	return chosen.context()
}

func (m *Material) applies(partner map[string]struct{}) bool {
	if len(m.Match) == 0 {
		return true
	}
	for _, name := range m.Match {
		if _, ok := partner[name]; ok {
			return true
		}
	}
	return false
}

func (m *Material) context() *Context {
	return &Context{
		Material:          m,
		Collide:           m.Collide,
		Physical:          m.Physical,
		IgnoreNodeCollide: m.IgnoreNodeCollide,
		ComplexSound:      m.ComplexSound,
		Friction:          m.Friction,
		Bounce:            m.Bounce,
		Stiffness:         m.Stiffness,
		Damping:           m.Damping,
		OnConnect:         m.OnConnect,
		OnDisconnect:      m.OnDisconnect,
		ConnectSound:      newSound(m.ConnectSound),
		ImpactSound:       newSound(m.ImpactSound),
		SkidSound:         newSound(m.SkidSound),
		RollSound:         newSound(m.RollSound),
	}
}

// Names returns the material names of a list, in order.
func Names(list []*Material) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		if m != nil {
			out = append(out, m.Name)
		}
	}
	return out
}
