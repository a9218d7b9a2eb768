// internal/core/ports/store.go
package ports

import (
	"pybaseline/internal/core/domain"
)

// SourceStore captures workspace files into snapshots and writes them back.
type SourceStore interface {
	// Capture expands include globs under root, minus excludes.
	Capture(root string, include, exclude []string) (domain.Snapshot, error)
	// Write copies snapshot content into the workspace.
	Write(snap domain.Snapshot, root string) error
}
