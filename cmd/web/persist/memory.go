package persist

import (
	"context"
	"sync"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/validator"
)

func NewMemory() Persister {
	return &Memory{
		m: &sync.Map{},
	}
}

type Memory struct {
	m *sync.Map
}

// row carries the domain and recipient alongside the result. Recipients are raw hash bytes and can
// contain any byte value, so they can't be reconstructed from a flattened address key.
type row struct {
	domain    cache.Domain
	recipient cache.Recipient
	result    validator.Result
}

func (s *Memory) Store(ctx context.Context, d cache.Domain, r cache.Recipient, vr validator.Result) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.m.Store(string(r)+`@`+string(d), row{domain: d, recipient: r, result: vr})
	return nil
}

func (s *Memory) Range(_ context.Context, cb RangeFn) error {
	s.m.Range(func(_, value interface{}) bool {
		v, ok := value.(row)

		if !ok {
			return true // Ignoring non-recoverable problem
		}

		err := cb(v.domain, v.recipient, v.result)
		return err == nil
	})

	return nil
}

func (s *Memory) Close() error {
	return nil
}
