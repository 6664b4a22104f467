package search

import (
	"fmt"
	"math"
	"sync"

	"github.com/knights-analytics/hugot"
)

// Embedder turns text into a dense vector
type Embedder interface {
	Embed(text string) ([]float32, error)
}

// HugotEmbedder runs a local sentence-transformer model through hugot.
// The model is expensive to load, so construction is deferred to first use
// and guarded by sync.Once: exactly one initialization, safe under
// concurrent first access.
type HugotEmbedder struct {
	modelPath string

	once    sync.Once
	initErr error
	embed   func(text string) ([]float32, error)
	destroy func() error
}

// NewHugotEmbedder creates a lazily-initialized embedder for the model at
// modelPath
func NewHugotEmbedder(modelPath string) *HugotEmbedder {
	return &HugotEmbedder{modelPath: modelPath}
}

func (e *HugotEmbedder) init() {
	session, err := hugot.NewGoSession()
	if err != nil {
		e.initErr = fmt.Errorf("failed to create hugot session: %w", err)
		return
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: e.modelPath,
		Name:      "food-embedder",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			e.initErr = fmt.Errorf("failed to create embedding pipeline: %w (cleanup error: %v)", err, destroyErr)
			return
		}
		e.initErr = fmt.Errorf("failed to create embedding pipeline: %w", err)
		return
	}

	e.destroy = session.Destroy
	e.embed = func(text string) ([]float32, error) {
		result, err := pipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}
}

// Embed returns the L2-normalized embedding for text, so that inner
// product equals cosine similarity.
func (e *HugotEmbedder) Embed(text string) ([]float32, error) {
	e.once.Do(e.init)
	if e.initErr != nil {
		return nil, e.initErr
	}

	vec, err := e.embed(text)
	if err != nil {
		return nil, err
	}
	NormalizeL2(vec)
	return vec, nil
}

// Close releases the underlying model session
func (e *HugotEmbedder) Close() error {
	if e.destroy != nil {
		return e.destroy()
	}
	return nil
}

// NormalizeL2 normalizes vec in place to unit length. Zero vectors are
// left unchanged.
func NormalizeL2(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// Dot returns the inner product of two equal-length vectors
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
