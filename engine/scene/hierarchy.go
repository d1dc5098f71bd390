package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a scene, node, mesh or material index points past its table.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNodeCycle is returned when a node is reachable from itself or has more than one parent.
	ErrNodeCycle = errors.New("node hierarchy is not a forest")
)

// ValidateHierarchy checks that every index in the node and scene tables is in range and that the
// nodes form a forest, so that traversal from any root terminates.
//
// Parameters:
//   - scenes: the scene table
//   - nodes: the node table
//   - meshCount: the length of the mesh table
//
// Returns:
//   - error: ErrIndexOutOfRange or ErrNodeCycle wrapped with the offending index, or nil
func ValidateHierarchy(scenes []Scene, nodes []Node, meshCount int) error {
	parent := make([]int, len(nodes))
	for i := range parent {
		parent[i] = -1
	}

	for i, n := range nodes {
		if n.Mesh != NoMesh && (n.Mesh < 0 || n.Mesh >= meshCount) {
			return fmt.Errorf("node %d mesh %d: %w", i, n.Mesh, ErrIndexOutOfRange)
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(nodes) {
				return fmt.Errorf("node %d child %d: %w", i, c, ErrIndexOutOfRange)
			}
			if c == i || parent[c] != -1 {
				return fmt.Errorf("node %d: %w", c, ErrNodeCycle)
			}
			parent[c] = i
		}
	}

	// with at most one parent per node, a cycle exists iff walking up from some node never reaches a root
	state := make([]uint8, len(nodes))
	for i := range nodes {
		var path []int
		n := i
		for n != -1 && state[n] == 0 {
			state[n] = 1
			path = append(path, n)
			n = parent[n]
		}
		if n != -1 && state[n] == 1 {
			return fmt.Errorf("node %d: %w", n, ErrNodeCycle)
		}
		for _, p := range path {
			state[p] = 2
		}
	}

	for si, s := range scenes {
		for _, r := range s.Nodes {
			if r < 0 || r >= len(nodes) {
				return fmt.Errorf("scene %d root %d: %w", si, r, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}
