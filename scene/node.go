package scene

// Node is a named member of a Scene. Nodes own components; the collision
// subsystem attaches its Parts here and looks up optional hooks by interface.
type Node struct {
	id    NodeID
	name  string
	scene *Scene

	// CollideDisabled turns off collision response for every part of the node
	// unless a material opts out of node-level enforcement.
	CollideDisabled bool

	components []any
}

func (n *Node) ID() NodeID {
	if n == nil {
		return 0
	}
	return n.id
}

func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.name
}

// Scene returns the owning scene.
func (n *Node) Scene() *Scene {
	if n == nil {
		return nil
	}
	return n.scene
}

// AddComponent attaches c to the node.
func (n *Node) AddComponent(c any) {
	if n == nil || c == nil {
		return
	}
	n.components = append(n.components, c)
}

// RemoveComponent detaches c. It reports whether c was attached.
func (n *Node) RemoveComponent(c any) bool {
	if n == nil {
		return false
	}
	for i, existing := range n.components {
		if existing == c {
			n.components = append(n.components[:i], n.components[i+1:]...)
			return true
		}
	}
	return false
}

// Components returns the attached components in insertion order.
func (n *Node) Components() []any {
	if n == nil {
		return nil
	}
	return n.components
}

// Component returns the first component of n assignable to T.
func Component[T any](n *Node) (T, bool) {
	var zero T
	if n == nil {
		return zero, false
	}
	for _, c := range n.components {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	return zero, false
}

// ComponentsOf returns every component of n assignable to T.
func ComponentsOf[T any](n *Node) []T {
	if n == nil {
		return nil
	}
	var out []T
	for _, c := range n.components {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
