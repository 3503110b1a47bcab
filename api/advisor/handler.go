package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	coreadvisor "github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/advisor/logging"
	"github.com/smartcommute/smartcommute/core/model"
	"github.com/smartcommute/smartcommute/core/quantile"
)

// AdviceService serves departure advice. The app layer implements it; the
// handlers only translate HTTP to queries.
type AdviceService interface {
	Advise(ctx context.Context, source string, q coreadvisor.Query) (logging.AdviceRecord, error)
	Scan(q coreadvisor.Query) ([]coreadvisor.Candidate, error)
	PredictAll(mctx model.Context, departure model.MinuteOfDay) (map[float64]float64, error)
	Ready() bool
}

// New assembles the JSON API routes on a fresh mux.
func New(svc AdviceService, store logging.Store, token string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/advise", NewAdviseHandler(svc))
	mux.Handle("/api/v1/predict", NewPredictHandler(svc))
	mux.Handle("/api/v1/advice/logs", NewLogHandler(store, token))
	mux.Handle("/healthz", NewHealthHandler(svc))
	return mux
}

type adviseRequest struct {
	Weekday       string  `json:"weekday"`
	Weather       string  `json:"weather"`
	Season        string  `json:"season"`
	TargetArrival string  `json:"target_arrival"`
	Confidence    float64 `json:"confidence"`
	WindowStart   string  `json:"window_start"`
	WindowEnd     string  `json:"window_end"`
	DistanceScale float64 `json:"distance_scale"`
}

type adviseResponse struct {
	QueryID              string                  `json:"query_id"`
	RecommendedDeparture string                  `json:"recommended_departure"`
	PredictedTravelMin   float64                 `json:"predicted_travel_min"`
	PredictedArrival     string                  `json:"predicted_arrival"`
	BufferMin            float64                 `json:"buffer_min"`
	Feasible             bool                    `json:"feasible"`
	Candidates           []coreadvisor.Candidate `json:"candidates"`
}

// NewAdviseHandler returns the POST /api/v1/advise handler.
func NewAdviseHandler(svc AdviceService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !svc.Ready() {
			http.Error(w, "no model loaded", http.StatusServiceUnavailable)
			return
		}
		var req adviseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
			return
		}
		q, err := req.toQuery()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec, err := svc.Advise(r.Context(), "api", q)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		candidates, err := svc.Scan(q)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		resp := adviseResponse{
			QueryID:              rec.ID,
			RecommendedDeparture: rec.Departure,
			PredictedTravelMin:   rec.TravelMin,
			PredictedArrival:     model.MinuteOfDay(int(rec.ArrivalMin)).String(),
			BufferMin:            rec.BufferMin,
			Feasible:             rec.Feasible,
			Candidates:           candidates,
		}
		writeJSON(w, resp)
	})
}

func (req adviseRequest) toQuery() (coreadvisor.Query, error) {
	var q coreadvisor.Query
	wd, err := model.ParseWeekday(req.Weekday)
	if err != nil {
		return q, err
	}
	target, err := model.ParseHHMM(req.TargetArrival)
	if err != nil {
		return q, fmt.Errorf("target_arrival: %w", err)
	}
	q = coreadvisor.Query{
		Context: model.Context{
			Weekday: wd,
			Weather: model.Weather(req.Weather),
			Season:  model.Season(req.Season),
		},
		TargetArrival: target,
		Level:         req.Confidence,
		DistanceScale: req.DistanceScale,
	}
	if req.WindowStart != "" {
		if q.WindowStart, err = model.ParseHHMM(req.WindowStart); err != nil {
			return q, fmt.Errorf("window_start: %w", err)
		}
	}
	if req.WindowEnd != "" {
		if q.WindowEnd, err = model.ParseHHMM(req.WindowEnd); err != nil {
			return q, fmt.Errorf("window_end: %w", err)
		}
	}
	// Level and scale defaults are applied by the service, which also
	// validates the assembled query.
	return q, nil
}

// NewPredictHandler returns the GET /api/v1/predict handler exposing the
// per-level quantile predictions for one departure.
func NewPredictHandler(svc AdviceService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !svc.Ready() {
			http.Error(w, "no model loaded", http.StatusServiceUnavailable)
			return
		}
		params := r.URL.Query()
		wd, err := model.ParseWeekday(params.Get("weekday"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		departure, err := model.ParseHHMM(params.Get("departure"))
		if err != nil {
			http.Error(w, fmt.Sprintf("departure: %v", err), http.StatusBadRequest)
			return
		}
		mctx := model.Context{
			Weekday: wd,
			Weather: model.Weather(params.Get("weather")),
			Season:  model.Season(params.Get("season")),
		}
		preds, err := svc.PredictAll(mctx, departure)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		levels := make(map[string]float64, len(preds))
		for level, v := range preds {
			levels[fmt.Sprintf("%.2f", level)] = v
		}
		writeJSON(w, map[string]any{"departure": departure.String(), "levels": levels})
	})
}

// NewHealthHandler returns the liveness endpoint. The service is alive even
// without a model; the flag tells operators which.
func NewHealthHandler(svc AdviceService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "ok", "model_loaded": svc.Ready()})
	})
}

// writeQueryError maps domain errors to status codes: unknown categories
// and invalid queries are client errors, anything else is a server failure.
func writeQueryError(w http.ResponseWriter, err error) {
	var unknown *quantile.UnknownCategoryError
	if errors.As(err, &unknown) {
		http.Error(w, unknown.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, coreadvisor.ErrInvalidQuery) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
