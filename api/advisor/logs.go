package advisor

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/smartcommute/smartcommute/core/advisor/logging"
)

// NewLogHandler returns an HTTP handler exposing the advice audit log via
// GET /api/v1/advice/logs. Requests must include an Authorization header
// with "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := logging.AdviceQuery{}
		if s := r.URL.Query().Get("since"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("until"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.Source = r.URL.Query().Get("source")
		q.Weather = r.URL.Query().Get("weather")
		if s := r.URL.Query().Get("level"); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				q.Level = v
			}
		}
		if s := r.URL.Query().Get("feasible_only"); s != "" {
			if v, err := strconv.ParseBool(s); err == nil {
				q.FeasibleOnly = v
			}
		}
		if s := r.URL.Query().Get("limit"); s != "" {
			if v, err := strconv.Atoi(s); err == nil && v > 0 {
				q.Limit = v
			}
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.AdviceRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
