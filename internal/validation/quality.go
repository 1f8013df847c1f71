package validation

import (
	"context"
	"math/rand/v2"
	"sync"

	"studio-wizard-backend/internal/staging"
)

const DefaultFailureRate = 0.1

// QualityChecker stands in for the external image quality assessment. It
// returns false for images that fail the check and an error when the
// assessment itself could not be performed.
type QualityChecker interface {
	Assess(ctx context.Context, f staging.File) (bool, error)
}

// QualityFunc adapts a function to QualityChecker.
type QualityFunc func(ctx context.Context, f staging.File) (bool, error)

func (fn QualityFunc) Assess(ctx context.Context, f staging.File) (bool, error) {
	return fn(ctx, f)
}

// FixedQuality always answers acceptable.
func FixedQuality(acceptable bool) QualityChecker {
	return QualityFunc(func(context.Context, staging.File) (bool, error) {
		return acceptable, nil
	})
}

// RandomQuality fails an independent fraction of assessments.
type RandomQuality struct {
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomQuality returns a checker failing failureRate of the images. A nil
// rng uses a randomly seeded source.
func NewRandomQuality(failureRate float64, rng *rand.Rand) *RandomQuality {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomQuality{failureRate: failureRate, rng: rng}
}

func (q *RandomQuality) Assess(context.Context, staging.File) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rng.Float64() >= q.failureRate, nil
}
