package normalizer

import (
	"math/rand/v2"

	"github.com/yudduy/ira/internal/models"
)

// Sample returns n subjects drawn without replacement. The same seed and input give the
// same sample.
func Sample(subjects []models.Subject, n int, seed uint64) []models.Subject {
	if n >= len(subjects) {
		return subjects
	}

	if n <= 0 {
		return []models.Subject{}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(len(subjects))

	out := make([]models.Subject, n)
	for i := range out {
		out[i] = subjects[perm[i]]
	}

	return out
}
