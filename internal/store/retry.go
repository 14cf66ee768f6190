package store

import (
	"context"
	"time"

	"github.com/gantry-mcp/gantry/internal/item"
)

// RetryPolicy bounds automatic retries of transient store failures.
// Validation, not-found, and cycle errors are never retried; retrying
// would not change the outcome.
type RetryPolicy struct {
	// Attempts is the total number of tries including the first.
	Attempts int
	// BaseDelay is the first backoff interval; each retry doubles it.
	BaseDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
}

// DefaultRetryPolicy mirrors the small bounded retry budget from §7:
// three tries, exponential backoff from 100ms capped at 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// Delay returns the backoff before retry attempt n (0-based count of
// retries already performed).
func (p RetryPolicy) Delay(n int) time.Duration {
	d := p.BaseDelay << uint(n)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	return d
}

// sleep is a package-level var so tests can run without waiting.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retrying decorates a Store with transparent retry of transient
// failures. All other error kinds pass straight through.
type Retrying struct {
	inner  Store
	policy RetryPolicy
}

// WithRetry wraps inner with the given policy. A zero Attempts falls
// back to the default policy.
func WithRetry(inner Store, policy RetryPolicy) *Retrying {
	if policy.Attempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	return &Retrying{inner: inner, policy: policy}
}

// retry runs fn up to policy.Attempts times, backing off between
// transient failures. Exhaustion surfaces the last error, whose hint
// already tells the caller to retry later.
func retry[T any](ctx context.Context, p RetryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for n := 0; n < p.Attempts; n++ {
		if n > 0 {
			if err := sleep(ctx, p.Delay(n-1)); err != nil {
				return zero, lastErr
			}
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !item.IsKind(err, item.KindTransient) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

func (r *Retrying) Get(ctx context.Context, id string) (*item.WorkItem, error) {
	return retry(ctx, r.policy, func() (*item.WorkItem, error) {
		return r.inner.Get(ctx, id)
	})
}

func (r *Retrying) Create(ctx context.Context, parentID string, typ item.ItemType, fields CreateFields) (*item.WorkItem, error) {
	return retry(ctx, r.policy, func() (*item.WorkItem, error) {
		return r.inner.Create(ctx, parentID, typ, fields)
	})
}

func (r *Retrying) Update(ctx context.Context, id string, fields item.Fields) (*item.WorkItem, error) {
	return retry(ctx, r.policy, func() (*item.WorkItem, error) {
		return r.inner.Update(ctx, id, fields)
	})
}

func (r *Retrying) Delete(ctx context.Context, id string) error {
	_, err := retry(ctx, r.policy, func() (struct{}, error) {
		return struct{}{}, r.inner.Delete(ctx, id)
	})
	return err
}

func (r *Retrying) ListChildren(ctx context.Context, parentID string) ([]*item.WorkItem, error) {
	return retry(ctx, r.policy, func() ([]*item.WorkItem, error) {
		return r.inner.ListChildren(ctx, parentID)
	})
}

func (r *Retrying) ListAll(ctx context.Context) ([]*item.WorkItem, error) {
	return retry(ctx, r.policy, func() ([]*item.WorkItem, error) {
		return r.inner.ListAll(ctx)
	})
}

func (r *Retrying) AddEdge(ctx context.Context, fromID, toID string) (*item.DependencyEdge, error) {
	return retry(ctx, r.policy, func() (*item.DependencyEdge, error) {
		return r.inner.AddEdge(ctx, fromID, toID)
	})
}

func (r *Retrying) RemoveEdge(ctx context.Context, fromID, toID string) error {
	_, err := retry(ctx, r.policy, func() (struct{}, error) {
		return struct{}{}, r.inner.RemoveEdge(ctx, fromID, toID)
	})
	return err
}

func (r *Retrying) ListEdges(ctx context.Context) ([]item.DependencyEdge, error) {
	return retry(ctx, r.policy, func() ([]item.DependencyEdge, error) {
		return r.inner.ListEdges(ctx)
	})
}

func (r *Retrying) ListEdgesTo(ctx context.Context, toID string) ([]item.DependencyEdge, error) {
	return retry(ctx, r.policy, func() ([]item.DependencyEdge, error) {
		return r.inner.ListEdgesTo(ctx, toID)
	})
}
