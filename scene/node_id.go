package scene

import "strconv"

// NodeID is a generation-checked handle. A handle outlives the node it names;
// Scene.Node returns nil once the slot has been recycled.
type NodeID uint64

type nodeIndex uint32
type generation uint32

const nodeIndexBits = 32

func makeNodeID(idx nodeIndex, gen generation) NodeID {
	return NodeID(uint64(gen)<<nodeIndexBits | uint64(idx))
}

func (id NodeID) index() nodeIndex {
	return nodeIndex(uint32(id))
}

func (id NodeID) generation() generation {
	return generation(uint32(uint64(id) >> nodeIndexBits))
}

func (id NodeID) String() string {
	return strconv.FormatUint(uint64(id.index()), 10) + "v" + strconv.FormatUint(uint64(id.generation()), 10)
}

// Valid reports whether id was ever handed out by a Scene.
func (id NodeID) Valid() bool {
	return id.index() > 0
}
