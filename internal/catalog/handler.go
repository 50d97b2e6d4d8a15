package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/racketbot/internal/logging"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds the /recommend request body.
const maxBodyBytes = 64 << 10

type recommendRequest struct {
	Level     *string  `json:"level"`
	Style     *string  `json:"style"`
	Stiffness *string  `json:"stiffness"`
	Budget    *float64 `json:"budget"`
}

func (r recommendRequest) query() (Query, error) {
	switch {
	case r.Level == nil:
		return Query{}, fmt.Errorf("%w: missing %s", ErrInvalidQuery, domain.KeyLevel)
	case r.Style == nil:
		return Query{}, fmt.Errorf("%w: missing %s", ErrInvalidQuery, domain.KeyStyle)
	case r.Stiffness == nil:
		return Query{}, fmt.Errorf("%w: missing %s", ErrInvalidQuery, domain.KeyStiffness)
	case r.Budget == nil:
		return Query{}, fmt.Errorf("%w: %s must be a number", ErrInvalidQuery, domain.KeyBudget)
	}
	return Query{Level: *r.Level, Style: *r.Style, Stiffness: *r.Stiffness, Budget: *r.Budget}, nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

// NewHandler exposes the catalogue as the recommendation service:
// POST /recommend, GET /rackets and GET /health.
func NewHandler(c *Catalog, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Post("/recommend", func(w http.ResponseWriter, req *http.Request) {
		var body recommendRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
		if err := dec.Decode(&body); err != nil {
			logger.Warn("recommend: invalid body", "err", err)
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: fmt.Sprintf("invalid body: %v", err)})
			return
		}
		q, err := body.query()
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: err.Error()})
			return
		}

		resp, err := c.Answer(req.Context(), q)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrInvalidQuery) {
				status = http.StatusUnprocessableEntity
			}
			logger.Error("recommend failed", "err", err)
			writeJSON(w, status, errorBody{Detail: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/rackets", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, c.Rackets())
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
