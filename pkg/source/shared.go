package source

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Shared collapses concurrent fetches of one source into a single fetch
// whose result every caller receives. Nothing is cached between fetches.
type Shared struct {
	src   Source
	group singleflight.Group
}

// NewShared wraps src.
func NewShared(src Source) *Shared {
	return &Shared{src: src}
}

func (s *Shared) Name() string { return s.src.Name() }

// Fetch joins the fetch in flight, if any. The shared fetch does not inherit
// the cancellation of whichever caller started it; each caller stops waiting
// when its own ctx is done.
func (s *Shared) Fetch(ctx context.Context) (string, error) {
	ch := s.group.DoChan(s.src.Name(), func() (any, error) {
		return s.src.Fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", &Error{Source: s.Name(), Retryable: true, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
