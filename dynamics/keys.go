package dynamics

import (
	"fmt"

	"github.com/milk9111/collide/scene"
)

// PartID identifies a Part within its Dynamics.
type PartID uint32

// PartKey is the stable identity of one side of a collision.
type PartKey struct {
	Node scene.NodeID
	Part PartID
}

// Less orders keys lexicographically on (node, part).
func (k PartKey) Less(o PartKey) bool {
	if k.Node != o.Node {
		return k.Node < o.Node
	}
	return k.Part < o.Part
}

func (k PartKey) String() string {
	return fmt.Sprintf("%s/%d", k.Node, k.Part)
}

// PairKey is an unordered pair of parts in canonical order: Src sorts first.
type PairKey struct {
	Src PartKey
	Dst PartKey
}

// Canonical orders a and b. swapped reports whether b became Src.
func Canonical(a, b PartKey) (key PairKey, swapped bool) {
	if b.Less(a) {
		return PairKey{Src: b, Dst: a}, true
	}
	return PairKey{Src: a, Dst: b}, false
}

// Less orders pair keys by Src then Dst.
func (k PairKey) Less(o PairKey) bool {
	if k.Src != o.Src {
		return k.Src.Less(o.Src)
	}
	return k.Dst.Less(o.Dst)
}

func (k PairKey) String() string {
	return k.Src.String() + "<->" + k.Dst.String()
}
