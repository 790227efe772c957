package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jamesainslie/fidx/pkg/fidx/scanner"
	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

func candidate(relPath string) *store.FileRecord {
	return &store.FileRecord{FileID: "id-" + relPath, RelPath: relPath}
}

func TestResolveRenameNoCandidates(t *testing.T) {
	assert.Nil(t, scanner.ResolveRename("docs/new.txt", nil))
}

func TestResolveRenameSingleCandidateWins(t *testing.T) {
	only := candidate("archive/report.pdf")
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{only})
	assert.Same(t, only, got)
}

func TestResolveRenameSameParentWins(t *testing.T) {
	local := candidate("docs/old.txt")
	remote := candidate("archive/old.txt")
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{remote, local})
	assert.Same(t, local, got)
}

func TestResolveRenameMultipleSameParentAmbiguous(t *testing.T) {
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{
		candidate("docs/a.txt"),
		candidate("docs/b.txt"),
	})
	assert.Nil(t, got)
}

func TestResolveRenameExtensionBreaksTie(t *testing.T) {
	txt := candidate("archive/notes.txt")
	pdf := candidate("archive/notes.pdf")
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{pdf, txt})
	assert.Same(t, txt, got)
}

func TestResolveRenameExtensionRuleNeedsNoParentMatch(t *testing.T) {
	// Two candidates share the parent, one shares the extension. The parent
	// rule fires first, finds two, and the extension rule never runs.
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{
		candidate("docs/a.pdf"),
		candidate("docs/b.pdf"),
		candidate("archive/c.txt"),
	})
	assert.Nil(t, got)
}

func TestResolveRenameMultipleSameExtAmbiguous(t *testing.T) {
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{
		candidate("archive/a.txt"),
		candidate("backup/b.txt"),
	})
	assert.Nil(t, got)
}

func TestResolveRenameExtensionCaseInsensitive(t *testing.T) {
	upper := candidate("archive/REPORT.TXT")
	pdf := candidate("archive/other.pdf")
	got := scanner.ResolveRename("docs/new.txt", []*store.FileRecord{pdf, upper})
	assert.Same(t, upper, got)
}
