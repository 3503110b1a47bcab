package quantile

import (
	"fmt"
	"math"

	"github.com/smartcommute/smartcommute/core/model"
)

// node holds the fitted quantile values of one cell, aligned with the
// model's level slice.
type node struct {
	N int       `json:"n"`
	Q []float64 `json:"q"`
}

// Model maps (context, departure time) to conditional travel-time quantiles.
// Cells are empirical quantiles over departure-time bins crossed with the
// categorical features; sparse cells back off to coarser tiers, ending at
// the global distribution. A Model is immutable once fitted and safe for
// concurrent readers.
//
// Predictions at different levels are fitted independently and may cross;
// callers must not assume the 0.95 value exceeds the 0.75 one.
type Model struct {
	levels     []float64
	binMinutes int
	minCell    int
	enc        *Encoder

	exact     map[string]node // bin|weekday|weather|season
	noSeason  map[string]node // bin|weekday|weather
	noWeekday map[string]node // bin|weather
	timeBin   map[string]node // bin
	global    node
}

// Levels returns the fitted quantile levels in ascending order.
func (m *Model) Levels() []float64 {
	out := make([]float64, len(m.levels))
	copy(out, m.levels)
	return out
}

// Encoder returns the categorical vocabulary fitted with the model.
func (m *Model) Encoder() *Encoder { return m.enc }

// Predict returns the estimated travel time in minutes at one fitted level.
func (m *Model) Predict(ctx model.Context, departure model.MinuteOfDay, level float64) (float64, error) {
	li, ok := m.levelIndex(level)
	if !ok {
		return 0, fmt.Errorf("level %v not fitted (have %v)", level, m.levels)
	}
	n, err := m.lookup(ctx, departure)
	if err != nil {
		return 0, err
	}
	return n.Q[li], nil
}

// PredictAll returns the estimated travel time at every fitted level.
func (m *Model) PredictAll(ctx model.Context, departure model.MinuteOfDay) (map[float64]float64, error) {
	n, err := m.lookup(ctx, departure)
	if err != nil {
		return nil, err
	}
	out := make(map[float64]float64, len(m.levels))
	for i, level := range m.levels {
		out[level] = n.Q[i]
	}
	return out, nil
}

// lookup walks the backoff chain from the most specific cell to the global
// distribution, returning the first tier with enough training samples.
func (m *Model) lookup(ctx model.Context, departure model.MinuteOfDay) (node, error) {
	wd, we, se, err := m.enc.Encode(ctx)
	if err != nil {
		return node{}, err
	}
	bin := int(departure) / m.binMinutes

	if n, ok := m.exact[keyExact(bin, wd, we, se)]; ok && n.N >= m.minCell {
		return n, nil
	}
	if n, ok := m.noSeason[keyNoSeason(bin, wd, we)]; ok && n.N >= m.minCell {
		return n, nil
	}
	if n, ok := m.noWeekday[keyNoWeekday(bin, we)]; ok && n.N >= m.minCell {
		return n, nil
	}
	if n, ok := m.timeBin[keyTimeBin(bin)]; ok && n.N >= m.minCell {
		return n, nil
	}
	return m.global, nil
}

func (m *Model) levelIndex(level float64) (int, bool) {
	for i, l := range m.levels {
		if math.Abs(l-level) < 1e-9 {
			return i, true
		}
	}
	return 0, false
}

func keyExact(bin int, wd, we, se string) string {
	return fmt.Sprintf("%d|%s|%s|%s", bin, wd, we, se)
}

func keyNoSeason(bin int, wd, we string) string {
	return fmt.Sprintf("%d|%s|%s", bin, wd, we)
}

func keyNoWeekday(bin int, we string) string {
	return fmt.Sprintf("%d|%s", bin, we)
}

func keyTimeBin(bin int) string {
	return fmt.Sprintf("%d", bin)
}
