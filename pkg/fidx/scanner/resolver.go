package scanner

import (
	"path"
	"strings"

	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

// ResolveRename picks the single rename candidate for newRelPath from a set
// of hash-equal, referenced missing records, or nil when the match stays
// ambiguous. The rules run in order and stop at the first that narrows to
// exactly one survivor:
//
//  1. a lone candidate wins outright;
//  2. candidates in the same parent directory as the new path, if exactly one;
//  3. only when no candidate shares the parent: candidates sharing the new
//     path's extension, if exactly one.
//
// Anything still ambiguous is not a rename. A false link between unrelated
// equal-content files is worse than losing identity continuity.
func ResolveRename(newRelPath string, candidates []*store.FileRecord) *store.FileRecord {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	sameParent := filterSameParent(newRelPath, candidates)
	if len(sameParent) == 1 {
		return sameParent[0]
	}
	if len(sameParent) == 0 {
		sameExt := filterSameExt(newRelPath, candidates)
		if len(sameExt) == 1 {
			return sameExt[0]
		}
	}
	return nil
}

// filterSameParent keeps candidates whose parent directory (root-relative)
// equals the new path's parent.
func filterSameParent(newRelPath string, candidates []*store.FileRecord) []*store.FileRecord {
	parent := path.Dir(newRelPath)
	var out []*store.FileRecord
	for _, c := range candidates {
		if path.Dir(c.RelPath) == parent {
			out = append(out, c)
		}
	}
	return out
}

// filterSameExt keeps candidates sharing the new path's extension.
func filterSameExt(newRelPath string, candidates []*store.FileRecord) []*store.FileRecord {
	ext := strings.ToLower(path.Ext(newRelPath))
	var out []*store.FileRecord
	for _, c := range candidates {
		if strings.ToLower(path.Ext(c.RelPath)) == ext {
			out = append(out, c)
		}
	}
	return out
}
