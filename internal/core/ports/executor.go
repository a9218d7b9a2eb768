// internal/core/ports/executor.go
package ports

import (
	"context"

	"pybaseline/internal/core/domain"
)

// Executor runs a single process over its input snapshot.
// A non-zero exit code is returned in the result, never as an error.
type Executor interface {
	Execute(ctx context.Context, proc domain.Process) (domain.ProcessResult, error)
}
