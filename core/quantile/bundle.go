package quantile

import (
	"encoding/json"
	"fmt"
	"io"
)

// bundleVersion guards against loading artifacts written by an incompatible
// build.
const bundleVersion = 1

// bundle is the serialized form of a fitted Model.
type bundle struct {
	Version    int             `json:"version"`
	Levels     []float64       `json:"levels"`
	BinMinutes int             `json:"bin_minutes"`
	MinCell    int             `json:"min_cell_samples"`
	Encoder    *Encoder        `json:"encoder"`
	Exact      map[string]node `json:"exact"`
	NoSeason   map[string]node `json:"no_season"`
	NoWeekday  map[string]node `json:"no_weekday"`
	TimeBin    map[string]node `json:"time_bin"`
	Global     node            `json:"global"`
}

// WriteTo serializes the model as one JSON document. Together with
// ReadBundle it carries fitted models across process runs.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	buf, err := json.Marshal(bundle{
		Version:    bundleVersion,
		Levels:     m.levels,
		BinMinutes: m.binMinutes,
		MinCell:    m.minCell,
		Encoder:    m.enc,
		Exact:      m.exact,
		NoSeason:   m.noSeason,
		NoWeekday:  m.noWeekday,
		TimeBin:    m.timeBin,
		Global:     m.global,
	})
	if err != nil {
		return 0, fmt.Errorf("encode model bundle: %w", err)
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadBundle loads a model written by WriteTo.
func ReadBundle(r io.Reader) (*Model, error) {
	var b bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode model bundle: %w", err)
	}
	if b.Version != bundleVersion {
		return nil, fmt.Errorf("model bundle version %d, want %d", b.Version, bundleVersion)
	}
	if len(b.Levels) == 0 || b.Encoder == nil || b.Global.N == 0 {
		return nil, fmt.Errorf("model bundle incomplete")
	}
	if len(b.Global.Q) != len(b.Levels) {
		return nil, fmt.Errorf("model bundle has %d global quantiles for %d levels", len(b.Global.Q), len(b.Levels))
	}
	if b.BinMinutes <= 0 || b.MinCell < 1 {
		return nil, fmt.Errorf("model bundle has invalid binning")
	}
	return &Model{
		levels:     b.Levels,
		binMinutes: b.BinMinutes,
		minCell:    b.MinCell,
		enc:        b.Encoder,
		exact:      b.Exact,
		noSeason:   b.NoSeason,
		noWeekday:  b.NoWeekday,
		timeBin:    b.TimeBin,
		global:     b.Global,
	}, nil
}
