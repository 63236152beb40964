// Package mock provides a deterministic Embedder for tests.
package mock

import (
	"context"
	"math"
	"sync"
)

// Embedder produces normalised vectors from character positions, so texts
// sharing characters land near each other. Err, when set, is returned
// from every Embed call.
type Embedder struct {
	Dims int
	Err  error

	mu    sync.Mutex
	calls int
	texts []string
}

// NewEmbedder returns a mock embedder producing vectors of the given size.
func NewEmbedder(dims int) *Embedder {
	return &Embedder{Dims: dims}
}

func (m *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, texts...)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Vector(text, m.Dims)
	}
	return out, nil
}

func (m *Embedder) Dimensions() int { return m.Dims }
func (m *Embedder) Name() string    { return "mock" }

// Calls returns how many times Embed was invoked.
func (m *Embedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Texts returns every text passed to Embed, in call order.
func (m *Embedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Vector returns the deterministic unit vector for text.
func Vector(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for i, ch := range text {
		vec[(int(ch)+i)%dims] += 1.0
	}
	// Empty text would give a zero vector, which cosine similarity can't handle.
	if text == "" {
		vec[0] = 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
