// internal/core/ports/fetcher.go
package ports

import (
	"context"

	"pybaseline/internal/core/domain"
)

// DownloadedTool is an extracted tool release. Exe is relative to the
// snapshot root.
type DownloadedTool struct {
	Spec     domain.ToolSpec
	Snapshot domain.Snapshot
	Exe      string
}

// Fetcher makes a tool release available locally.
type Fetcher interface {
	Fetch(ctx context.Context, spec domain.ToolSpec, platform domain.Platform) (DownloadedTool, error)
}
