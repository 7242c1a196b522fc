package dynamics

import (
	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/scene"
)

// CollisionEvent is a scripted action waiting for the end of the sweep. Nodes
// are held by id and resolved when the event runs.
type CollisionEvent struct {
	Self      scene.NodeID
	Other     scene.NodeID
	Action    material.Action
	Collision *Collision
}

type eventQueue struct {
	events []CollisionEvent
}

func (q *eventQueue) push(self, other scene.NodeID, actions []material.Action, col *Collision) {
	for _, a := range actions {
		if a == nil {
			continue
		}
		q.events = append(q.events, CollisionEvent{Self: self, Other: other, Action: a, Collision: col})
	}
}

func (q *eventQueue) len() int {
	return len(q.events)
}

// flush runs and clears the queue. Events whose own node died are dropped; a
// dead partner is passed as nil. Actions queued while flushing run in the
// same flush.
func (q *eventQueue) flush(sc *scene.Scene, log common.Logger) int {
	ran := 0
	for i := 0; i < len(q.events); i++ {
		ev := q.events[i]
		self := sc.Node(ev.Self)
		if self == nil {
			log.Debugf("collision event for dead node %s dropped", ev.Self)
			continue
		}
		other := sc.Node(ev.Other)
		if err := ev.Action.Execute(self, other, sc); err != nil {
			log.Warnf("collision action on %s: %v", ev.Self, err)
		}
		ran++
	}
	clear(q.events)
	q.events = q.events[:0]
	return ran
}
