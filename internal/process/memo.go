package process

import (
	"context"
	"sync"

	"pybaseline/internal/core/domain"
	"pybaseline/internal/core/ports"
	"pybaseline/internal/platform/cache"
	"pybaseline/internal/platform/logx"
)

// Memo wraps an Executor so that identical processes run at most once per
// invocation. Concurrent callers with the same key share one execution.
// Failed executions are not remembered.
type Memo struct {
	next    ports.Executor
	results cache.Cache[domain.ProcessResult]
	logger  logx.Logger

	mu       sync.Mutex
	inflight map[string]*call
}

type call struct {
	done   chan struct{}
	result domain.ProcessResult
	err    error
}

var _ ports.Executor = (*Memo)(nil)

// NewMemo wraps next with an unbounded result table.
func NewMemo(next ports.Executor, logger logx.Logger) *Memo {
	return &Memo{
		next:     next,
		results:  cache.NewLRU[domain.ProcessResult](0),
		logger:   logger.With("component", "memo"),
		inflight: make(map[string]*call),
	}
}

// Execute returns the remembered result for proc or runs it.
func (m *Memo) Execute(ctx context.Context, proc domain.Process) (domain.ProcessResult, error) {
	key := proc.Key()

	m.mu.Lock()
	if res, ok := m.results.Get(key); ok {
		m.mu.Unlock()
		m.logger.Debug("memo hit", "description", proc.Description, "key", key[:12])
		return res, nil
	}
	if c, ok := m.inflight[key]; ok {
		m.mu.Unlock()
		select {
		case <-c.done:
			return c.result, c.err
		case <-ctx.Done():
			return domain.ProcessResult{}, ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	m.inflight[key] = c
	m.mu.Unlock()

	c.result, c.err = m.next.Execute(ctx, proc)

	m.mu.Lock()
	if c.err == nil {
		m.results.Set(key, c.result)
	}
	delete(m.inflight, key)
	m.mu.Unlock()
	close(c.done)

	return c.result, c.err
}

// Len reports how many results are remembered.
func (m *Memo) Len() int {
	return m.results.Len()
}
