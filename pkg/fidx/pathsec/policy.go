// Package pathsec confines filesystem paths to the configured index roots.
// Canonical paths are absolute, cleaned, and case-folded on platforms with
// case-insensitive filesystems. When symlink blocking is enabled, a path is
// rejected if it or any ancestor component is a symlink; this check runs
// before root confinement on purpose, so a link anywhere along the path is
// refused regardless of where its target resolves.
package pathsec

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jamesainslie/fidx/pkg/fidx/fsys"
)

// ErrOutOfBounds is returned when a path is not under any configured root.
var ErrOutOfBounds = errors.New("path escapes configured roots")

// ErrUnsafeSymlink is returned when a path or one of its ancestors is a
// symlink and symlink blocking is enabled.
var ErrUnsafeSymlink = errors.New("path traverses a symlink")

// Policy validates paths against a set of allowed roots.
type Policy struct {
	fs            fsys.FS
	roots         []string
	blockSymlinks bool
}

// New builds a policy for the given root paths. Roots are canonicalized;
// duplicates (after canonicalization) collapse to one.
func New(fs fsys.FS, roots []string, blockSymlinks bool) (*Policy, error) {
	p := &Policy{fs: fs, blockSymlinks: blockSymlinks}
	seen := make(map[string]bool)
	for _, r := range roots {
		canon, err := Canonicalize(r)
		if err != nil {
			return nil, fmt.Errorf("canonicalize root %q: %w", r, err)
		}
		if seen[canon] {
			continue
		}
		seen[canon] = true
		p.roots = append(p.roots, canon)
	}
	return p, nil
}

// Roots returns the canonical root paths in configuration order.
func (p *Policy) Roots() []string {
	return append([]string(nil), p.roots...)
}

// Canonicalize resolves path to its canonical form: absolute, cleaned, and
// case-folded where the platform filesystem is case-insensitive. It is purely
// lexical and never touches the filesystem beyond resolving the working
// directory.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return foldCase(filepath.Clean(abs)), nil
}

// Validate canonicalizes path, applies the symlink policy, and then requires
// the result to be a descendant of at least one configured root.
func (p *Policy) Validate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	if p.blockSymlinks {
		if err := p.checkSymlinks(abs); err != nil {
			return "", err
		}
	}

	canon := foldCase(abs)
	if _, ok := p.FindRoot(canon); !ok {
		return "", fmt.Errorf("%w: %s", ErrOutOfBounds, canon)
	}
	return canon, nil
}

// FindRoot returns the first configured root the canonical path falls under.
func (p *Policy) FindRoot(canon string) (string, bool) {
	for _, root := range p.roots {
		if isUnder(canon, root) {
			return root, true
		}
	}
	return "", false
}

// Rel returns the root-relative, slash-normalized path of canon.
func (p *Policy) Rel(root, canon string) (string, error) {
	rel, err := filepath.Rel(root, canon)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// checkSymlinks lstats the path and each ancestor, innermost first.
// A missing component is not an error here; existence is the caller's
// concern and a dangling segment cannot be a traversal vector.
func (p *Policy) checkSymlinks(abs string) error {
	for cur := abs; ; cur = filepath.Dir(cur) {
		st, err := p.fs.Lstat(cur)
		if err == nil && st.IsSymlink {
			return fmt.Errorf("%w: %s", ErrUnsafeSymlink, cur)
		}
		if cur == filepath.Dir(cur) {
			return nil
		}
	}
}

func isUnder(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

func foldCase(path string) string {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.ToLower(path)
	}
	return path
}
