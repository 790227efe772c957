package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

func newAlias(fileID, oldPath, newPath string, at time.Time) *store.FileAlias {
	return &store.FileAlias{
		AliasID:          uuid.NewString(),
		FileID:           fileID,
		OldCanonicalPath: oldPath,
		NewCanonicalPath: newPath,
		CreatedAt:        at,
	}
}

func TestAliasesByFileOldestFirst(t *testing.T) {
	s := openStore(t)

	fileID := uuid.NewString()
	base := time.Now().Add(-time.Hour)
	second := newAlias(fileID, "/data/b.txt", "/data/c.txt", base.Add(time.Minute))
	first := newAlias(fileID, "/data/a.txt", "/data/b.txt", base)
	unrelated := newAlias(uuid.NewString(), "/data/x.txt", "/data/y.txt", base)

	for _, a := range []*store.FileAlias{second, first, unrelated} {
		if err := s.AppendAlias(a); err != nil {
			t.Fatalf("AppendAlias failed: %v", err)
		}
	}

	aliases, err := s.AliasesByFile(fileID)
	if err != nil {
		t.Fatalf("AliasesByFile failed: %v", err)
	}
	if len(aliases) != 2 {
		t.Fatalf("Expected 2 aliases, got %d", len(aliases))
	}
	if aliases[0].AliasID != first.AliasID || aliases[1].AliasID != second.AliasID {
		t.Errorf("Expected oldest-first order, got %s then %s", aliases[0].OldCanonicalPath, aliases[1].OldCanonicalPath)
	}
}

func TestResolvePathCurrentName(t *testing.T) {
	s := openStore(t)

	root, err := s.EnsureRoot("/data")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	rec := testRecord(root.ID, "live.txt")
	rec.CanonicalPath = "/data/live.txt"
	if err := s.PutFile(rec); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}

	got, err := s.ResolvePath("/data/live.txt")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if got.FileID != rec.FileID {
		t.Errorf("Expected file %s, got %s", rec.FileID, got.FileID)
	}
}

func TestResolvePathFollowsRenameChain(t *testing.T) {
	s := openStore(t)

	root, err := s.EnsureRoot("/data")
	if err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	rec := testRecord(root.ID, "c.txt")
	rec.CanonicalPath = "/data/c.txt"
	if err := s.PutFile(rec); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	chain := []*store.FileAlias{
		newAlias(rec.FileID, "/data/a.txt", "/data/b.txt", base),
		newAlias(rec.FileID, "/data/b.txt", "/data/c.txt", base.Add(time.Minute)),
	}
	for _, a := range chain {
		if err := s.AppendAlias(a); err != nil {
			t.Fatalf("AppendAlias failed: %v", err)
		}
	}

	// Any historical name along the chain lands on the live record.
	for _, path := range []string{"/data/a.txt", "/data/b.txt", "/data/c.txt"} {
		got, err := s.ResolvePath(path)
		if err != nil {
			t.Fatalf("ResolvePath(%s) failed: %v", path, err)
		}
		if got.FileID != rec.FileID {
			t.Errorf("ResolvePath(%s) = file %s, want %s", path, got.FileID, rec.FileID)
		}
		if got.CanonicalPath != "/data/c.txt" {
			t.Errorf("ResolvePath(%s) = path %s, want /data/c.txt", path, got.CanonicalPath)
		}
	}
}

func TestResolvePathUnknownReturnsNotFound(t *testing.T) {
	s := openStore(t)

	if _, err := s.EnsureRoot("/data"); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	_, err := s.ResolvePath("/data/never-indexed.txt")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestResolvePathSurvivesAliasCycle(t *testing.T) {
	s := openStore(t)

	if _, err := s.EnsureRoot("/data"); err != nil {
		t.Fatalf("EnsureRoot failed: %v", err)
	}
	fileID := uuid.NewString()
	base := time.Now()
	cycle := []*store.FileAlias{
		newAlias(fileID, "/data/a.txt", "/data/b.txt", base),
		newAlias(fileID, "/data/b.txt", "/data/a.txt", base.Add(time.Minute)),
	}
	for _, a := range cycle {
		if err := s.AppendAlias(a); err != nil {
			t.Fatalf("AppendAlias failed: %v", err)
		}
	}

	_, err := s.ResolvePath("/data/a.txt")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on cycle, got %v", err)
	}
}
