// Package tree builds a hierarchical view of an indexed root from the
// rel paths of its file records, for file-tree browsing.
package tree

// Node represents a directory or file in the tree.
type Node struct {
	// Identity
	RelPath string `json:"rel_path"`
	Name    string `json:"name"`

	// Type
	IsDir bool `json:"is_dir"`

	// For files
	Size    int64  `json:"size,omitempty"`
	MtimeNs int64  `json:"mtime_ns,omitempty"`
	Ext     string `json:"ext,omitempty"`

	// For directories - aggregates of files underneath
	TotalSize int64 `json:"total_size,omitempty"`
	FileCount int   `json:"file_count,omitempty"`

	// Tree structure
	Children []*Node `json:"children,omitempty"`
	Parent   *Node   `json:"-"` // Exclude from JSON to avoid cycles
}

// AddChild adds a child node and sets this node as the child's parent.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// IsLeaf returns true if the node is a file or an empty directory.
func (n *Node) IsLeaf() bool {
	return !n.IsDir || len(n.Children) == 0
}

// Depth returns the depth of this node from the root (root = 0).
func (n *Node) Depth() int {
	depth := 0
	for current := n.Parent; current != nil; current = current.Parent {
		depth++
	}
	return depth
}

// Flatten returns this node and all descendants in display order.
func (n *Node) Flatten() []*Node {
	result := []*Node{n}
	for _, child := range n.Children {
		result = append(result, child.Flatten()...)
	}
	return result
}
