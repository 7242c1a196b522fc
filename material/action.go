package material

import (
	"fmt"
	"strings"

	"github.com/milk9111/collide/scene"
)

// Action is a scripted side effect run when a collision connects or disconnects.
// other is nil when the partner node no longer exists.
type Action interface {
	Execute(self, other *scene.Node, sc *scene.Scene) error
}

// Target names the node a SendAction addresses.
type Target string

const (
	TargetSelf  Target = "self"
	TargetOther Target = "other"
)

// SendAction posts a message to self or to the partner node.
type SendAction struct {
	Target  Target
	Message string
	Args    map[string]any
}

func (a *SendAction) Execute(self, other *scene.Node, sc *scene.Scene) error {
	if a == nil || sc == nil || self == nil {
		return nil
	}
	return send(sc, self, other, a.Target, a.Message, a.Args)
}

func (a *SendAction) String() string {
	return fmt.Sprintf("send(%s, %s)", a.Target, a.Message)
}

func send(sc *scene.Scene, self, other *scene.Node, target Target, message string, args map[string]any) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("material: send with empty message")
	}
	var to *scene.Node
	switch target {
	case TargetSelf, "":
		to = self
	case TargetOther:
		to = other
	default:
		return fmt.Errorf("material: unknown send target %q", target)
	}
	if to == nil {
		return nil
	}
	sc.Send(scene.Message{From: self.ID(), To: to.ID(), Name: message, Args: args})
	return nil
}

// ActionFunc adapts a function to Action.
type ActionFunc func(self, other *scene.Node, sc *scene.Scene) error

func (f ActionFunc) Execute(self, other *scene.Node, sc *scene.Scene) error {
	return f(self, other, sc)
}
