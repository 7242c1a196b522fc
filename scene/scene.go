package scene

import (
	"errors"
	"fmt"
)

// ErrDeadNode is returned when a handle no longer names a live node.
var ErrDeadNode = errors.New("scene: dead node")

// DestroyFunc is called while the node is still resolvable.
type DestroyFunc func(n *Node)

// Scene owns nodes and the message mailbox.
type Scene struct {
	store     nodeStore
	nodes     SparseSet[*Node]
	mailbox   Mailbox
	onDestroy []DestroyFunc
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Create allocates a new node.
func (s *Scene) Create(name string) *Node {
	id := s.store.create()
	n := &Node{id: id, name: name, scene: s}
	s.nodes.Set(int(id.index()), n)
	return n
}

// Destroy notifies destroy listeners and then invalidates the handle.
// It reports whether id named a live node.
func (s *Scene) Destroy(id NodeID) bool {
	n := s.Node(id)
	if n == nil {
		return false
	}
	for _, fn := range s.onDestroy {
		fn(n)
	}
	s.nodes.Remove(int(id.index()))
	s.store.destroy(id)
	return true
}

// Node resolves a handle. It returns nil for destroyed nodes.
func (s *Scene) Node(id NodeID) *Node {
	if s == nil || !s.store.isAlive(id) {
		return nil
	}
	n, _ := s.nodes.Get(int(id.index()))
	return n
}

// MustNode resolves a handle or returns ErrDeadNode.
func (s *Scene) MustNode(id NodeID) (*Node, error) {
	n := s.Node(id)
	if n == nil {
		return nil, fmt.Errorf("resolve %s: %w", id, ErrDeadNode)
	}
	return n, nil
}

// Alive reports whether id names a live node.
func (s *Scene) Alive(id NodeID) bool {
	return s != nil && s.store.isAlive(id)
}

// Find returns the first live node with the given name.
func (s *Scene) Find(name string) *Node {
	if s == nil {
		return nil
	}
	for _, n := range s.nodes.Values() {
		if n.name == name {
			return n
		}
	}
	return nil
}

// Nodes returns the live nodes. The slice is owned by the scene.
func (s *Scene) Nodes() []*Node {
	if s == nil {
		return nil
	}
	return s.nodes.Values()
}

// Len returns the number of live nodes.
func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return s.store.count()
}

// OnDestroy registers fn to run for every destroyed node.
func (s *Scene) OnDestroy(fn DestroyFunc) {
	if s == nil || fn == nil {
		return
	}
	s.onDestroy = append(s.onDestroy, fn)
}

// Send queues a message.
func (s *Scene) Send(msg Message) {
	if s == nil {
		return
	}
	s.mailbox.Push(msg)
}

// Drain returns and clears all queued messages.
func (s *Scene) Drain() []Message {
	if s == nil {
		return nil
	}
	return s.mailbox.Drain()
}

// Pending returns the number of queued messages.
func (s *Scene) Pending() int {
	if s == nil {
		return 0
	}
	return s.mailbox.Len()
}
