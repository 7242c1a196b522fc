package material

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/milk9111/collide/common"
	"gopkg.in/yaml.v3"
)

// ErrUnknownMaterial is returned when a name is not in the library.
var ErrUnknownMaterial = errors.New("material: unknown material")

// LibrarySpec is the yaml layout of a material library file.
type LibrarySpec struct {
	Default   *MaterialSpec  `yaml:"default"`
	Materials []MaterialSpec `yaml:"materials"`
}

type MaterialSpec struct {
	Name              string       `yaml:"name"`
	Match             []string     `yaml:"match"`
	Collide           *bool        `yaml:"collide"`
	Physical          *bool        `yaml:"physical"`
	IgnoreNodeCollide bool         `yaml:"ignore_node_collide"`
	ComplexSound      bool         `yaml:"complex_sound"`
	Friction          *float64     `yaml:"friction"`
	Bounce            *float64     `yaml:"bounce"`
	Stiffness         *float64     `yaml:"stiffness"`
	Damping           *float64     `yaml:"damping"`
	ConnectSound      *SoundSpec   `yaml:"connect_sound"`
	ImpactSound       *SoundSpec   `yaml:"impact_sound"`
	SkidSound         *SoundSpec   `yaml:"skid_sound"`
	RollSound         *SoundSpec   `yaml:"roll_sound"`
	OnConnect         []ActionSpec `yaml:"on_connect"`
	OnDisconnect      []ActionSpec `yaml:"on_disconnect"`
}

// ActionSpec holds exactly one of Send or Script.
type ActionSpec struct {
	Send   *SendSpec `yaml:"send"`
	Script string    `yaml:"script"`
}

type SendSpec struct {
	Target  string         `yaml:"target"`
	Message string         `yaml:"message"`
	Args    map[string]any `yaml:"args"`
}

// ScriptLoader returns the source of a named script.
type ScriptLoader func(name string) ([]byte, error)

// Library holds every material variant by name, in file order.
type Library struct {
	def      *Material
	variants map[string][]*Material
	logger   common.Logger
}

// NewLibrary returns an empty library using Default() as fallback.
func NewLibrary(logger common.Logger) *Library {
	if logger == nil {
		logger = common.NopLogger{}
	}
	return &Library{def: Default(), variants: map[string][]*Material{}, logger: logger}
}

// Parse decodes a library file. Scripts are resolved through load.
func Parse(data []byte, load ScriptLoader, logger common.Logger) (*Library, error) {
	var spec LibrarySpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("material: unmarshal library: %w", err)
	}
	return Build(spec, load, logger)
}

// Build compiles a decoded library spec.
func Build(spec LibrarySpec, load ScriptLoader, logger common.Logger) (*Library, error) {
	lib := NewLibrary(logger)
	if spec.Default != nil {
		d, err := buildMaterial(*spec.Default, Default(), load)
		if err != nil {
			return nil, err
		}
		d.Name = "default"
		lib.def = d
	}
	for _, ms := range spec.Materials {
		if strings.TrimSpace(ms.Name) == "" {
			return nil, fmt.Errorf("material: entry without name")
		}
		m, err := buildMaterial(ms, lib.def, load)
		if err != nil {
			return nil, err
		}
		lib.Add(m)
	}
	lib.logger.Debugf("material: built %d variants of %d materials", len(spec.Materials), len(lib.variants))
	return lib, nil
}

// Add appends a variant.
func (l *Library) Add(m *Material) {
	if l == nil || m == nil {
		return
	}
	l.variants[m.Name] = append(l.variants[m.Name], m)
}

// Default returns the fallback material.
func (l *Library) Default() *Material {
	if l == nil {
		return Default()
	}
	return l.def
}

// Has reports whether name is defined.
func (l *Library) Has(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.variants[name]
	return ok
}

// Lookup expands names into their variants, preserving order.
func (l *Library) Lookup(names ...string) ([]*Material, error) {
	var out []*Material
	for _, name := range names {
		vs, ok := l.variants[name]
		if !ok {
			return nil, fmt.Errorf("lookup %q: %w", name, ErrUnknownMaterial)
		}
		out = append(out, vs...)
	}
	return out, nil
}

// Names returns the sorted material names.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.variants))
	for name := range l.variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve resolves self against other using the library fallback.
func (l *Library) Resolve(self, other []*Material) *Context {
	return Resolve(self, other, l.Default())
}

func buildMaterial(spec MaterialSpec, base *Material, load ScriptLoader) (*Material, error) {
	m := &Material{
		Name:              spec.Name,
		Match:             spec.Match,
		Collide:           boolOr(spec.Collide, base.Collide),
		Physical:          boolOr(spec.Physical, base.Physical),
		IgnoreNodeCollide: spec.IgnoreNodeCollide,
		ComplexSound:      spec.ComplexSound,
		Friction:          floatOr(spec.Friction, base.Friction),
		Bounce:            floatOr(spec.Bounce, base.Bounce),
		Stiffness:         floatOr(spec.Stiffness, base.Stiffness),
		Damping:           floatOr(spec.Damping, base.Damping),
		ConnectSound:      spec.ConnectSound,
		ImpactSound:       spec.ImpactSound,
		SkidSound:         spec.SkidSound,
		RollSound:         spec.RollSound,
	}
	var err error
	if m.OnConnect, err = buildActions(spec.Name, EventConnect, spec.OnConnect, load); err != nil {
		return nil, err
	}
	if m.OnDisconnect, err = buildActions(spec.Name, EventDisconnect, spec.OnDisconnect, load); err != nil {
		return nil, err
	}
	return m, nil
}

func buildActions(owner, event string, specs []ActionSpec, load ScriptLoader) ([]Action, error) {
	var out []Action
	for i, as := range specs {
		switch {
		case as.Send != nil:
			out = append(out, &SendAction{
				Target:  Target(as.Send.Target),
				Message: as.Send.Message,
				Args:    as.Send.Args,
			})
		case as.Script != "":
			if load == nil {
				return nil, fmt.Errorf("material: %s %s[%d]: no script loader", owner, event, i)
			}
			src, err := load(as.Script)
			if err != nil {
				return nil, fmt.Errorf("material: %s load script %s: %w", owner, as.Script, err)
			}
			sa, err := CompileScript(as.Script, event, src)
			if err != nil {
				return nil, err
			}
			out = append(out, sa)
		default:
			return nil, fmt.Errorf("material: %s %s[%d]: empty action", owner, event, i)
		}
	}
	return out, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
