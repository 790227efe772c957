package tree

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

// BuildFromStore streams a root's records out of the store and assembles the
// tree. The root node's name is the base of the root's canonical path.
func BuildFromStore(s *store.Store, root *store.Root) (*Node, error) {
	var records []*store.FileRecord
	err := s.StreamByRoot(root.ID, func(rec *store.FileRecord) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Build(filepath.Base(root.CanonicalPath), records), nil
}

// Build constructs a tree from file records keyed by rel path. Intermediate
// directories missing from the record set are synthesized so every file has
// an ancestor chain. Children are sorted directories-first, then by name.
func Build(rootName string, records []*store.FileRecord) *Node {
	rootNode := &Node{RelPath: ".", Name: rootName, IsDir: true}
	nodes := map[string]*Node{".": rootNode}

	for _, rec := range records {
		if rec.RelPath == "." {
			continue
		}
		ensureAncestors(rec.RelPath, nodes)

		if rec.IsDir {
			// May already exist, synthesized for a deeper record.
			if _, ok := nodes[rec.RelPath]; ok {
				continue
			}
			dirNode := &Node{RelPath: rec.RelPath, Name: path.Base(rec.RelPath), IsDir: true}
			nodes[path.Dir(rec.RelPath)].AddChild(dirNode)
			nodes[rec.RelPath] = dirNode
			continue
		}

		fileNode := &Node{
			RelPath: rec.RelPath,
			Name:    path.Base(rec.RelPath),
			Size:    rec.Size,
			MtimeNs: rec.MtimeNs,
			Ext:     rec.Ext,
		}
		nodes[path.Dir(rec.RelPath)].AddChild(fileNode)
		nodes[rec.RelPath] = fileNode
	}

	aggregate(rootNode)
	sortChildren(rootNode)
	return rootNode
}

// ensureAncestors creates directory nodes for every missing segment between
// the root and relPath's parent.
func ensureAncestors(relPath string, nodes map[string]*Node) {
	parent := path.Dir(relPath)

	var toCreate []string
	for parent != "." && parent != "/" {
		if _, exists := nodes[parent]; !exists {
			toCreate = append(toCreate, parent)
		}
		parent = path.Dir(parent)
	}

	for i := len(toCreate) - 1; i >= 0; i-- {
		dirPath := toCreate[i]
		dirNode := &Node{RelPath: dirPath, Name: path.Base(dirPath), IsDir: true}
		nodes[path.Dir(dirPath)].AddChild(dirNode)
		nodes[dirPath] = dirNode
	}
}

// aggregate fills TotalSize and FileCount for directories.
func aggregate(node *Node) (size int64, count int) {
	if !node.IsDir {
		return node.Size, 1
	}
	for _, child := range node.Children {
		s, c := aggregate(child)
		size += s
		count += c
	}
	node.TotalSize = size
	node.FileCount = count
	return size, count
}

// sortChildren sorts recursively: directories before files, then by name.
func sortChildren(node *Node) {
	sort.Slice(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for _, child := range node.Children {
		sortChildren(child)
	}
}
