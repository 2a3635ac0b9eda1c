package persist

import (
	"context"
	"io"

	"github.com/mailvet/mailvet/cmd/web/cache"
	"github.com/mailvet/mailvet/validator"
)

type RangeFn func(d cache.Domain, r cache.Recipient, vr validator.Result) error

type Persister interface {
	// Store stores the parts and vr. The implementation decides what key to use, although it should use a similar one
	// use to restore data using the Range implementation
	Store(ctx context.Context, d cache.Domain, r cache.Recipient, vr validator.Result) error

	// Range reads all data back and invokes the callback, until all data is read back, or until the callback returns
	// a non-nil error. The implementation decides on the most optimal strategy.
	Range(ctx context.Context, cb RangeFn) error

	io.Closer
}
