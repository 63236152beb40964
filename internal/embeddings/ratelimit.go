package embeddings

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder wraps an Embedder with a token bucket that allows
// at most rpm upstream calls per minute.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder wraps inner. rpm <= 0 returns inner unchanged.
func NewRateLimitedEmbedder(inner Embedder, rpm int) Embedder {
	if rpm <= 0 {
		return inner
	}
	return &RateLimitedEmbedder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

func (r *RateLimitedEmbedder) Name() string    { return r.inner.Name() }
func (r *RateLimitedEmbedder) Dimensions() int { return r.inner.Dimensions() }

func (r *RateLimitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, texts)
}
