// Package snapshot captures workspace files into content-addressed
// snapshots and materializes them into sandbox directories.
package snapshot

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
)

// blob is either held in memory or backed by a file on disk (extracted
// tool archives, which are too large to keep resident).
type blob struct {
	data []byte
	file string
}

// Store keeps the content behind every digest it has handed out.
// It is safe for concurrent use.
type Store struct {
	workspace string
	logger    logx.Logger

	mu    sync.RWMutex
	blobs map[domain.Digest]blob
}

// NewStore creates a store rooted at the workspace directory.
func NewStore(workspace string, logger logx.Logger) *Store {
	return &Store{
		workspace: workspace,
		logger:    logger.With("component", "snapshot"),
		blobs:     make(map[domain.Digest]blob),
	}
}

// Workspace returns the absolute workspace directory.
func (s *Store) Workspace() string {
	return s.workspace
}

// Put stores content and returns its entry.
func (s *Store) Put(rel string, data []byte, executable bool) domain.FileEntry {
	d := domain.ContentDigest(data)
	s.mu.Lock()
	if _, ok := s.blobs[d]; !ok {
		s.blobs[d] = blob{data: data}
	}
	s.mu.Unlock()
	return domain.FileEntry{Path: rel, Digest: d, Size: int64(len(data)), Executable: executable}
}

// Read returns the content for d.
func (s *Store) Read(d domain.Digest) ([]byte, error) {
	s.mu.RLock()
	b, ok := s.blobs[d]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown digest %s", d.Short())
	}
	if b.file != "" {
		return os.ReadFile(b.file)
	}
	return b.data, nil
}

// Capture expands include patterns under root (workspace-relative) and
// drops anything matched by exclude. Each exclude entry matches either a
// whole path segment or a doublestar pattern. Paths in the result are
// workspace-relative.
func (s *Store) Capture(root string, include, exclude []string) (domain.Snapshot, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return domain.Snapshot{}, errors.Wrapf(errors.ErrInvalidConfig, "bad glob %q", p)
		}
	}

	root = path.Clean(filepath.ToSlash(root))
	absRoot := filepath.Join(s.workspace, filepath.FromSlash(root))
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		s.logger.Debug("capture root missing", "root", root)
		return domain.Snapshot{}, nil
	}
	fsys := os.DirFS(absRoot)

	seen := make(map[string]struct{})
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return domain.Snapshot{}, errors.Wrapf(err, "expand %q under %s", pattern, root)
		}
		for _, m := range matches {
			if excluded(m, exclude) {
				continue
			}
			seen[m] = struct{}{}
		}
	}

	rels := make([]string, 0, len(seen))
	for m := range seen {
		rels = append(rels, m)
	}
	sort.Strings(rels)

	entries := make([]domain.FileEntry, 0, len(rels))
	for _, rel := range rels {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return domain.Snapshot{}, errors.Wrapf(err, "read %s", rel)
		}
		entries = append(entries, s.Put(path.Join(root, rel), data, false))
	}

	s.logger.Debug("captured sources", "root", root, "files", len(entries))
	return domain.NewSnapshotUnchecked(entries), nil
}

func excluded(rel string, exclude []string) bool {
	segments := strings.Split(rel, "/")
	for _, ex := range exclude {
		for _, seg := range segments {
			if seg == ex {
				return true
			}
		}
		if ok, _ := doublestar.Match(ex, rel); ok {
			return true
		}
	}
	return false
}

// CaptureDir snapshots every regular file under dir. Content stays on
// disk and is read on demand.
func (s *Store) CaptureDir(dir string) (domain.Snapshot, error) {
	var entries []domain.FileEntry
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		digest, err := hashFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		s.mu.Lock()
		if _, ok := s.blobs[digest]; !ok {
			s.blobs[digest] = blob{file: p}
		}
		s.mu.Unlock()
		entries = append(entries, domain.FileEntry{
			Path:       filepath.ToSlash(rel),
			Digest:     digest,
			Size:       info.Size(),
			Executable: info.Mode()&0o111 != 0,
		})
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, errors.Wrapf(err, "capture %s", dir)
	}
	return domain.NewSnapshotUnchecked(entries), nil
}

// Materialize writes every file of snap under dir.
func (s *Store) Materialize(snap domain.Snapshot, dir string) error {
	for _, e := range snap.Entries() {
		dst, err := safeJoin(dir, e.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.Wrapf(err, "materialize %s", e.Path)
		}
		if err := s.writeEntry(e, dst); err != nil {
			return errors.Wrapf(err, "materialize %s", e.Path)
		}
	}
	return nil
}

// CaptureOutputs re-reads declared output files from dir. Missing files
// are left out of the result.
func (s *Store) CaptureOutputs(dir string, paths []string) (domain.Snapshot, error) {
	entries := make([]domain.FileEntry, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, rel := range paths {
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		src, err := safeJoin(dir, rel)
		if err != nil {
			return domain.Snapshot{}, err
		}
		data, err := os.ReadFile(src)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Snapshot{}, errors.Wrapf(err, "capture output %s", rel)
		}
		entries = append(entries, s.Put(rel, data, false))
	}
	return domain.NewSnapshotUnchecked(entries), nil
}

// Write copies snap into root, overwriting files in place.
func (s *Store) Write(snap domain.Snapshot, root string) error {
	if root == "" {
		root = s.workspace
	}
	for _, e := range snap.Entries() {
		dst, err := safeJoin(root, e.Path)
		if err != nil {
			return err
		}
		if err := s.writeEntry(e, dst); err != nil {
			return errors.Wrapf(err, "write %s", e.Path)
		}
	}
	s.logger.Debug("wrote snapshot", "files", snap.Len(), "digest", snap.Digest().Short())
	return nil
}

func (s *Store) writeEntry(e domain.FileEntry, dst string) error {
	mode := os.FileMode(0o644)
	if e.Executable {
		mode = 0o755
	}

	s.mu.RLock()
	b, ok := s.blobs[e.Digest]
	s.mu.RUnlock()
	if !ok {
		return errors.Errorf("unknown digest %s", e.Digest.Short())
	}
	if b.file == "" {
		return os.WriteFile(dst, b.data, mode)
	}

	in, err := os.Open(b.file)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// safeJoin rejects snapshot paths that would escape base.
func safeJoin(base, rel string) (string, error) {
	clean := path.Clean(rel)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Errorf("path %q escapes %s", rel, base)
	}
	return filepath.Join(base, filepath.FromSlash(clean)), nil
}
