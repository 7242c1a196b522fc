package material

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/collide/scene"
)

// Event names exposed to scripts through the `event` global.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// ScriptAction runs a compiled tengo script. The script sees `event`, `self`,
// `other` (undefined when the partner is gone) and `send(target, message[, args])`.
type ScriptAction struct {
	Name     string
	Event    string
	compiled *tengo.Compiled

	// Bound for the duration of one Execute.
	sc          *scene.Scene
	self, other *scene.Node
}

// CompileScript compiles src for the given event.
func CompileScript(name, event string, src []byte) (*ScriptAction, error) {
	a := &ScriptAction{Name: name, Event: event}

	script := tengo.NewScript(src)
	_ = script.Add("event", event)
	_ = script.Add("self", map[string]any{})
	_ = script.Add("other", map[string]any{})
	_ = script.Add("send", &tengo.UserFunction{Name: "send", Value: a.sendFunc})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("material: compile %s: %w", name, err)
	}
	a.compiled = compiled
	return a, nil
}

func (a *ScriptAction) Execute(self, other *scene.Node, sc *scene.Scene) error {
	if a == nil || a.compiled == nil {
		return fmt.Errorf("material: nil script action")
	}
	a.sc, a.self, a.other = sc, self, other
	defer func() { a.sc, a.self, a.other = nil, nil, nil }()

	if err := a.compiled.Set("self", nodeObject(self)); err != nil {
		return err
	}
	if err := a.compiled.Set("other", nodeObject(other)); err != nil {
		return err
	}
	if err := a.compiled.Run(); err != nil {
		return fmt.Errorf("material: run %s: %w", a.Name, err)
	}
	return nil
}

func (a *ScriptAction) String() string {
	return "script(" + a.Name + ")"
}

func (a *ScriptAction) sendFunc(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 2 || a.sc == nil || a.self == nil {
		return tengo.FalseValue, nil
	}
	target := Target(strings.TrimSpace(objectAsString(args[0])))
	var payload map[string]any
	if len(args) > 2 {
		if m, ok := objectToAny(args[2]).(map[string]any); ok {
			payload = m
		}
	}
	if err := send(a.sc, a.self, a.other, target, objectAsString(args[1]), payload); err != nil {
		return tengo.FalseValue, err
	}
	return tengo.TrueValue, nil
}

func nodeObject(n *scene.Node) tengo.Object {
	if n == nil {
		return tengo.UndefinedValue
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id":   &tengo.Int{Value: int64(n.ID())},
		"name": &tengo.String{Value: n.Name()},
	}}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
