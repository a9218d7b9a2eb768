// internal/core/domain/snapshot.go
package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"

	"pybaseline/internal/platform/errors"
)

// Digest is a hex sha256 content reference.
type Digest string

// EmptyDigest is the digest of a snapshot with no files.
var EmptyDigest = NewSnapshotUnchecked(nil).Digest()

// ContentDigest hashes raw file content.
func ContentDigest(data []byte) Digest {
	sum := sha256.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

func (d Digest) String() string {
	return string(d)
}

// Short returns the first 12 hex characters, for logs.
func (d Digest) Short() string {
	if len(d) > 12 {
		return string(d[:12])
	}
	return string(d)
}

// FileEntry is one file of a snapshot. Path is slash-separated and
// relative to the snapshot root.
type FileEntry struct {
	Path       string
	Digest     Digest
	Size       int64
	Executable bool
}

// Snapshot is an immutable, path-sorted file set with an aggregate digest.
type Snapshot struct {
	entries []FileEntry
	digest  Digest
}

// NewSnapshot builds a snapshot from entries. Identical duplicates collapse;
// the same path with different content is a digest conflict.
func NewSnapshot(entries []FileEntry) (Snapshot, error) {
	byPath := make(map[string]FileEntry, len(entries))
	for _, e := range entries {
		if prev, ok := byPath[e.Path]; ok {
			if prev.Digest != e.Digest || prev.Executable != e.Executable {
				return Snapshot{}, errors.Wrapf(errors.ErrDigestConflict,
					"%s: %s vs %s", e.Path, prev.Digest.Short(), e.Digest.Short())
			}
			continue
		}
		byPath[e.Path] = e
	}
	out := make([]FileEntry, 0, len(byPath))
	for _, e := range byPath {
		out = append(out, e)
	}
	return NewSnapshotUnchecked(out), nil
}

// NewSnapshotUnchecked sorts entries and computes the digest without
// duplicate detection. Callers must pass unique paths.
func NewSnapshotUnchecked(entries []FileEntry) Snapshot {
	sorted := make([]FileEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return Snapshot{entries: sorted, digest: aggregate(sorted)}
}

// aggregate hashes the sorted entries with length-prefixed fields so that
// no two distinct file sets share an encoding.
func aggregate(entries []FileEntry) Digest {
	h := sha256.New()
	writeUint(h, uint64(len(entries)))
	for _, e := range entries {
		writeField(h, []byte(e.Path))
		writeField(h, []byte(e.Digest))
		if e.Executable {
			writeUint(h, 1)
		} else {
			writeUint(h, 0)
		}
	}
	return Digest(hex.EncodeToString(h.Sum(nil)))
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func writeField(h hash.Hash, data []byte) {
	writeUint(h, uint64(len(data)))
	h.Write(data)
}

// Digest returns the aggregate content reference.
func (s Snapshot) Digest() Digest {
	if s.digest == "" {
		return aggregate(nil)
	}
	return s.digest
}

// Entries returns a copy of the sorted entries.
func (s Snapshot) Entries() []FileEntry {
	out := make([]FileEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Files returns the sorted paths.
func (s Snapshot) Files() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Path
	}
	return out
}

func (s Snapshot) Len() int {
	return len(s.entries)
}

func (s Snapshot) IsEmpty() bool {
	return len(s.entries) == 0
}

// Lookup finds the entry for path.
func (s Snapshot) Lookup(path string) (FileEntry, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].Path >= path })
	if i < len(s.entries) && s.entries[i].Path == path {
		return s.entries[i], true
	}
	return FileEntry{}, false
}

// Changed lists paths of other whose content differs from s or that s lacks.
func (s Snapshot) Changed(other Snapshot) []string {
	var changed []string
	for _, e := range other.entries {
		prev, ok := s.Lookup(e.Path)
		if !ok || prev.Digest != e.Digest {
			changed = append(changed, e.Path)
		}
	}
	return changed
}

// MergeSnapshots is a set union keyed by path.
func MergeSnapshots(snaps ...Snapshot) (Snapshot, error) {
	var total int
	for _, s := range snaps {
		total += len(s.entries)
	}
	all := make([]FileEntry, 0, total)
	for _, s := range snaps {
		all = append(all, s.entries...)
	}
	merged, err := NewSnapshot(all)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "merge snapshots")
	}
	return merged, nil
}
