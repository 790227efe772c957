// Package scanner implements the directory diff engine. A scan walks one
// root, classifies every path as unchanged, updated, new, or missing against
// the stored records, runs rename detection over the new/missing sets, and
// writes the resulting add/update/rename/delete set through the store.
package scanner

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/fidx/pkg/fidx/fsys"
	"github.com/jamesainslie/fidx/pkg/fidx/hashing"
	"github.com/jamesainslie/fidx/pkg/fidx/logging"
	"github.com/jamesainslie/fidx/pkg/fidx/pathsec"
	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

// Deps is the immutable dependency bundle for a scanner. There is no ambient
// state; everything the engine touches comes in here.
type Deps struct {
	Store  *store.Store
	FS     fsys.FS
	Policy *pathsec.Policy
	Hasher *hashing.Hasher
	Refs   ReferenceRegistry

	// HashMaxSize is the routine-scan hashing threshold in bytes. Files at or
	// above it keep an absent content hash unless a rebuild forces hashing.
	HashMaxSize int64
}

// Scanner diffs one root at a time against the index. Scanning is
// synchronous and single-threaded per invocation; callers wanting a
// responsive service run it on their own goroutine.
type Scanner struct {
	deps Deps
	log  *logging.Logger
}

// New creates a scanner from its dependency bundle.
func New(deps Deps) *Scanner {
	if deps.Refs == nil {
		deps.Refs = NullRegistry{}
	}
	return &Scanner{
		deps: deps,
		log:  logging.Get("scanner"),
	}
}

// pendingFile is a walked path with no existing record, deferred until the
// rename pass has had a chance to claim it. osPath keeps the path as the walk
// reported it; canonical is case-folded and may not open on a case-sensitive
// volume.
type pendingFile struct {
	relPath   string
	canonical string
	osPath    string
	stat      fsys.FileStat
}

// scanState accumulates one root's walk before the rename and delete passes.
type scanState struct {
	root      *store.Root
	forceHash bool
	now       time.Time

	existing map[string]*store.FileRecord
	seen     map[string]bool
	pending  []pendingFile
	consumed map[string]bool

	stats store.RunStats
}

// ScanRoot diffs root against the index and applies the result. Per-path
// failures are logged and counted without aborting the walk; only a failing
// walk or store write surfaces as an error. Records missing from this pass
// and unclaimed by rename detection are hard-deleted: a transiently
// unreadable subtree is indistinguishable from a genuine deletion.
func (s *Scanner) ScanRoot(root *store.Root, forceHash bool) (store.RunStats, error) {
	started := time.Now()

	existing, err := s.deps.Store.FilesByRoot(root.ID)
	if err != nil {
		return store.RunStats{}, err
	}

	st := &scanState{
		root:      root,
		forceHash: forceHash,
		now:       started,
		existing:  existing,
		seen:      make(map[string]bool),
		consumed:  make(map[string]bool),
	}

	if err := s.walk(st); err != nil {
		return st.stats, err
	}
	if err := s.resolvePending(st); err != nil {
		return st.stats, err
	}
	if err := s.deleteMissing(st); err != nil {
		return st.stats, err
	}

	st.stats.Duration = time.Since(started)
	s.log.Info("root scanned",
		"root", root.CanonicalPath,
		"added", st.stats.Added,
		"updated", st.stats.Updated,
		"removed", st.stats.Removed,
		"errors", st.stats.Errors)
	return st.stats, nil
}

// walk traverses the root and classifies every visited path. New files land
// in st.pending; committing them before the rename pass would break move
// detection.
func (s *Scanner) walk(st *scanState) error {
	return s.deps.FS.Walk(st.root.CanonicalPath, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			s.pathError(st, p, walkErr)
			return nil
		}

		// Dot-prefixed files and directories are hidden from the index
		// outright. The rule is blanket and not configurable.
		name := d.Name()
		if strings.HasPrefix(name, ".") && p != st.root.CanonicalPath {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		canon, err := pathsec.Canonicalize(p)
		if err != nil {
			s.pathError(st, p, err)
			return nil
		}
		if canon == st.root.CanonicalPath {
			return nil
		}
		rel, err := s.deps.Policy.Rel(st.root.CanonicalPath, canon)
		if err != nil {
			s.pathError(st, p, err)
			return nil
		}

		if d.IsDir() {
			s.visitDir(st, rel, canon)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		s.visitFile(st, rel, canon, p)
		return nil
	})
}

func (s *Scanner) visitDir(st *scanState, rel, canon string) {
	st.seen[rel] = true
	if rec, ok := st.existing[rel]; ok {
		if rec.IsDir {
			rec.LastSeenAt = st.now
			if err := s.deps.Store.PutFile(rec); err != nil {
				s.pathError(st, canon, err)
			}
			return
		}
		// A directory now sits where a file was indexed. The file is gone;
		// delete its record so the file-id index entry goes with it.
		if err := s.deps.Store.DeleteFile(st.root.ID, rel); err != nil {
			s.pathError(st, canon, err)
			return
		}
		st.stats.Removed++
	}
	rec := &store.FileRecord{
		FileID:        uuid.NewString(),
		RootID:        st.root.ID,
		CanonicalPath: canon,
		RelPath:       rel,
		IsDir:         true,
		IndexedAt:     st.now,
		LastSeenAt:    st.now,
	}
	if err := s.deps.Store.PutFile(rec); err != nil {
		s.pathError(st, canon, err)
		return
	}
	st.stats.Added++
}

func (s *Scanner) visitFile(st *scanState, rel, canon, osPath string) {
	stat, err := s.deps.FS.Stat(osPath)
	if err != nil {
		s.pathError(st, osPath, err)
		return
	}
	st.seen[rel] = true
	st.stats.TotalSize += stat.Size

	rec, ok := st.existing[rel]
	if !ok || rec.IsDir {
		if ok {
			// A file now sits where a directory was indexed. Drop the
			// directory record and its file-id index entry first.
			if err := s.deps.Store.DeleteFile(st.root.ID, rel); err != nil {
				s.pathError(st, osPath, err)
				return
			}
			st.stats.Removed++
		}
		st.pending = append(st.pending, pendingFile{relPath: rel, canonical: canon, osPath: osPath, stat: stat})
		return
	}

	if !st.forceHash && rec.Size == stat.Size && rec.MtimeNs == stat.MtimeNs {
		// Cheap path: the record is current, only the sighting timestamp
		// moves.
		rec.LastSeenAt = st.now
		if err := s.deps.Store.PutFile(rec); err != nil {
			s.pathError(st, osPath, err)
		}
		return
	}

	digest, err := s.routineHash(osPath, stat, st.forceHash)
	if err != nil {
		s.pathError(st, osPath, err)
		digest = ""
	}
	rec.Size = stat.Size
	rec.MtimeNs = stat.MtimeNs
	rec.ContentHash = digest
	rec.Ext = extOf(rel)
	rec.LastSeenAt = st.now
	if err := s.deps.Store.PutFile(rec); err != nil {
		s.pathError(st, osPath, err)
		return
	}
	st.stats.Updated++
}

// resolvePending runs rename detection over the deferred new files, then
// inserts whatever remains as fresh identities.
func (s *Scanner) resolvePending(st *scanState) error {
	missingBySize := s.missingBySize(st)

	sort.Slice(st.pending, func(i, j int) bool {
		return st.pending[i].relPath < st.pending[j].relPath
	})

	for _, p := range st.pending {
		if p.stat.Offline {
			// Matching would require reading placeholder content and
			// forcing a download. Straight insert, no hash.
			s.insertNew(st, p, "")
			continue
		}

		digest := ""
		candidates := notConsumed(st, missingBySize[p.stat.Size])
		if len(candidates) > 0 {
			var err error
			digest, err = s.deps.Hasher.File(p.osPath, 0)
			if err != nil {
				s.pathError(st, p.osPath, err)
				s.insertNew(st, p, "")
				continue
			}
			if match := s.matchRename(st, p, digest, candidates); match {
				continue
			}
		}
		s.insertNew(st, p, s.persistableDigest(digest, p.stat, st.forceHash))
	}
	return nil
}

// matchRename attempts to claim one missing record for the pending file.
// Reports true when a rename was executed.
func (s *Scanner) matchRename(st *scanState, p pendingFile, digest string, candidates []*store.FileRecord) bool {
	var hashEqual []*store.FileRecord
	for _, c := range candidates {
		if c.ContentHash == digest {
			hashEqual = append(hashEqual, c)
		}
	}
	if len(hashEqual) == 0 {
		return false
	}

	// Identity tracking is reserved for referenced files. Unreferenced
	// duplicates fall through to delete-plus-insert.
	var referenced []*store.FileRecord
	for _, c := range hashEqual {
		if s.deps.Refs.IsReferenced(c.FileID) {
			referenced = append(referenced, c)
		}
	}
	survivor := ResolveRename(p.relPath, referenced)
	if survivor == nil {
		return false
	}

	oldRel, oldCanon := survivor.RelPath, survivor.CanonicalPath
	if err := s.deps.Store.DeleteFile(st.root.ID, oldRel); err != nil {
		s.pathError(st, oldCanon, err)
		return false
	}

	survivor.CanonicalPath = p.canonical
	survivor.RelPath = p.relPath
	survivor.Size = p.stat.Size
	survivor.MtimeNs = p.stat.MtimeNs
	survivor.ContentHash = digest
	survivor.Ext = extOf(p.relPath)
	survivor.LastSeenAt = st.now
	if err := s.deps.Store.PutFile(survivor); err != nil {
		s.pathError(st, p.canonical, err)
		return false
	}

	alias := &store.FileAlias{
		AliasID:          uuid.NewString(),
		FileID:           survivor.FileID,
		OldCanonicalPath: oldCanon,
		NewCanonicalPath: p.canonical,
		CreatedAt:        st.now,
	}
	if err := s.deps.Store.AppendAlias(alias); err != nil {
		s.pathError(st, p.canonical, err)
	}
	if err := s.deps.Refs.UpdateCachedPath(survivor.FileID, p.canonical); err != nil {
		s.pathError(st, p.canonical, err)
	}

	st.consumed[oldRel] = true
	st.stats.Updated++
	s.log.Debug("rename detected", "from", oldCanon, "to", p.canonical, "file_id", survivor.FileID)
	return true
}

func (s *Scanner) insertNew(st *scanState, p pendingFile, digest string) {
	rec := &store.FileRecord{
		FileID:        uuid.NewString(),
		RootID:        st.root.ID,
		CanonicalPath: p.canonical,
		RelPath:       p.relPath,
		Size:          p.stat.Size,
		MtimeNs:       p.stat.MtimeNs,
		ContentHash:   digest,
		Ext:           extOf(p.relPath),
		IndexedAt:     st.now,
		LastSeenAt:    st.now,
	}
	if digest == "" && !p.stat.Offline && (st.forceHash || p.stat.Size < s.deps.HashMaxSize) {
		d, err := s.routineHash(p.osPath, p.stat, st.forceHash)
		if err != nil {
			s.pathError(st, p.osPath, err)
		} else {
			rec.ContentHash = d
		}
	}
	if err := s.deps.Store.PutFile(rec); err != nil {
		s.pathError(st, p.canonical, err)
		return
	}
	st.stats.Added++
}

// deleteMissing hard-deletes every record not seen this pass and not claimed
// by rename detection. No tombstones.
func (s *Scanner) deleteMissing(st *scanState) error {
	var gone []string
	for rel := range st.existing {
		if !st.seen[rel] && !st.consumed[rel] {
			gone = append(gone, rel)
		}
	}
	sort.Strings(gone)
	for _, rel := range gone {
		if err := s.deps.Store.DeleteFile(st.root.ID, rel); err != nil {
			s.pathError(st, rel, err)
			continue
		}
		st.stats.Removed++
	}
	return nil
}

// missingBySize indexes missing records by size for rename candidate lookup.
// Hashless records cannot participate; neither can directories.
func (s *Scanner) missingBySize(st *scanState) map[int64][]*store.FileRecord {
	bySize := make(map[int64][]*store.FileRecord)
	for rel, rec := range st.existing {
		if st.seen[rel] || rec.IsDir || rec.ContentHash == "" {
			continue
		}
		bySize[rec.Size] = append(bySize[rec.Size], rec)
	}
	for _, recs := range bySize {
		sort.Slice(recs, func(i, j int) bool { return recs[i].RelPath < recs[j].RelPath })
	}
	return bySize
}

func notConsumed(st *scanState, recs []*store.FileRecord) []*store.FileRecord {
	var out []*store.FileRecord
	for _, r := range recs {
		if !st.consumed[r.RelPath] {
			out = append(out, r)
		}
	}
	return out
}

// routineHash applies the hashing policy: offline placeholders are never
// read, forced rebuilds hash unconditionally, routine scans hash only below
// the size threshold.
func (s *Scanner) routineHash(path string, stat fsys.FileStat, forceHash bool) (string, error) {
	if stat.Offline {
		return "", nil
	}
	if forceHash {
		return s.deps.Hasher.File(path, 0)
	}
	if stat.Size < s.deps.HashMaxSize {
		return s.deps.Hasher.File(path, s.deps.HashMaxSize)
	}
	return "", nil
}

// persistableDigest decides whether a digest computed for rename matching may
// be stored: only when the routine policy would have produced one anyway.
func (s *Scanner) persistableDigest(digest string, stat fsys.FileStat, forceHash bool) string {
	if digest == "" {
		return ""
	}
	if forceHash || stat.Size < s.deps.HashMaxSize {
		return digest
	}
	return ""
}

func (s *Scanner) pathError(st *scanState, path string, err error) {
	st.stats.Errors++
	s.log.Warn("scan error", "path", path, "error", err)
}

func extOf(relPath string) string {
	return strings.ToLower(path.Ext(relPath))
}
