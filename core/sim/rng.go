package sim

import (
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// dayStream returns an independent random source for one civil day. The PCG
// is seeded from the run seed and an FNV-1a hash of the date, so the draws
// for a given day depend only on (seed, date): extending or shifting the
// generation range never perturbs days both ranges share.
func dayStream(seed int64, date time.Time) *rand.PCG {
	h := fnv.New64a()
	_, _ = h.Write([]byte(date.Format("2006-01-02")))
	return rand.NewPCG(uint64(seed), h.Sum64())
}
