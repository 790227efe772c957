package scanner

// ReferenceRegistry gates and propagates rename-identity tracking. It is
// owned by an external module; the scanner only asks whether anyone points at
// a file id and pushes path updates after a detected rename. Unreferenced
// files get the cheaper delete-plus-insert treatment instead of a rename
// link.
type ReferenceRegistry interface {
	IsReferenced(fileID string) bool
	UpdateCachedPath(fileID, newCanonicalPath string) error
}

// NullRegistry references nothing. With it, no rename is ever tracked.
type NullRegistry struct{}

// IsReferenced always reports false.
func (NullRegistry) IsReferenced(string) bool { return false }

// UpdateCachedPath is a no-op.
func (NullRegistry) UpdateCachedPath(string, string) error { return nil }
