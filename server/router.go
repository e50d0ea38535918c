package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"drawbench/server/store"
)

// Reader is the read side of store.DB the API serves from.
type Reader interface {
	Ping(ctx context.Context) error
	ListMatches(ctx context.Context, limit int) ([]store.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (store.Match, []store.Participant, error)
	ListHands(ctx context.Context, matchID uuid.UUID, offset, limit int) ([]store.HandRow, error)
	HandEvents(ctx context.Context, handID uuid.UUID) ([]store.Event, error)
}

const (
	defaultPage = 100
	maxPage     = 1000
)

func Router(db Reader, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			writeJSONStatus(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	})

	r.Route("/api/matches", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			limit, err := intParam(r, "limit", 200)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			rows, err := db.ListMatches(r.Context(), limit)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, map[string]any{"rows": rows})
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			m, parts, err := db.GetMatch(r.Context(), id)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, map[string]any{"match": m, "participants": parts})
		})

		r.Get("/{id}/hands", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			offset, err := intParam(r, "offset", 0)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			limit, err := intParam(r, "limit", defaultPage)
			if err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if limit > maxPage {
				limit = maxPage
			}
			rows, err := db.ListHands(r.Context(), id, offset, limit)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, map[string]any{"rows": rows, "offset": offset, "limit": limit})
		})
	})

	r.Get("/api/hands/{handID}/events", func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "handID")
		if !ok {
			return
		}
		events, err := db.HandEvents(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, map[string]any{"hand_id": id, "events": events})
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.RequestURI()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("bad "+name))
		return uuid.Nil, false
	}
	return id, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("bad " + name)
	}
	return n, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSONStatus(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
