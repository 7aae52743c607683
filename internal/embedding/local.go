package embedding

import (
	"context"
	"math"
)

// Local is a deterministic, keyless embedder: it projects character codes
// onto a fixed-length vector and normalizes it. Similarity quality is crude
// but stable, which is all the dev path and the tests need.
type Local struct {
	dim int
}

func NewLocal(dim int) *Local {
	if dim <= 0 {
		dim = 1536
	}
	return &Local{dim: dim}
}

func (e *Local) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for i, r := range text {
		vec[i%e.dim] += float32(r%255) / 255
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func (e *Local) Dimension() int { return e.dim }
