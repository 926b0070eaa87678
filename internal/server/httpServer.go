package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Asus/TradeAnalytics/internal/location"
	"github.com/Asus/TradeAnalytics/internal/product"
	"github.com/Asus/TradeAnalytics/internal/service"

	"github.com/araddon/dateparse"
)

// AnalyticsGiver - то, что серверу нужно от слоя сервиса
type AnalyticsGiver interface {
	Locations(ctx context.Context) (location.Result, error)
	Profiles(ctx context.Context) (service.UserReport, error)
	Sales(ctx context.Context, start, end time.Time) ([]product.ProductStats, error)
	Cancellation(ctx context.Context) ([]product.CancellationStats, error)
	HighCancellation(ctx context.Context) ([]product.CancellationStats, error)
	Association(ctx context.Context) ([]product.Itemset, error)
	Categories(ctx context.Context) (product.CategoryReport, error)
	Health(ctx context.Context) ([]product.HealthRecord, error)
	Recommendations(ctx context.Context) ([]string, error)
	Reload(ctx context.Context) (*service.Snapshot, error)
}

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	service AnalyticsGiver
	loc     *time.Location // зона для дат из query
}

func NewServer(addr string, analytics AnalyticsGiver, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	srv := &Server{
		router:  http.NewServeMux(),
		service: analytics,
		loc:     loc,
	}
	srv.server = &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.routes()
	return srv
}

// Start запускает сервер.
func (s *Server) Start() error {
	slog.Info("server starting", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Для того чтобы не писать логирование в каждом HandleFunc логируем все тут
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Info("request received", "method", r.Method, "path", r.URL.Path)
	s.router.ServeHTTP(w, r) // находим нужный хэндлер и вызываем
}

// эта функция заполняет наш маршрутизатор нужными хендлерами
func (s *Server) routes() {
	s.router.HandleFunc("GET /api/trade/analyze-location", s.handleLocation())
	s.router.HandleFunc("GET /api/trade/analyze-user", s.handleUsers())
	s.router.HandleFunc("POST /api/trade/reload", s.handleReload())

	s.router.HandleFunc("GET /api/product/analyze-sales", s.handleSales())
	s.router.HandleFunc("GET /api/product/analyze-cancellation", s.handleCancellation())
	s.router.HandleFunc("GET /api/product/analyze-association", s.handleAssociation())
	s.router.HandleFunc("GET /api/product/analyze-category", s.handleCategory())
	s.router.HandleFunc("GET /api/product/analyze-health", s.handleHealth())
	s.router.HandleFunc("GET /api/product/recommendations", s.handleRecommendations())
}

func (s *Server) handleLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := s.service.Locations(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, map[string]Table{
			"province_summary": NewTable(res.Provinces),
			"city_summary":     NewTable(res.Cities),
			"district_summary": NewTable(res.Districts),
		})
	}
}

func (s *Server) handleUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.service.Profiles(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, report)
	}
}

func (s *Server) handleReload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.service.Reload(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, snap)
	}
}

// analyze-sales?start=2025-06-01&end=2025-06-30, обе границы необязательны
func (s *Server) handleSales() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := s.queryDate(r, "start")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err))
			return
		}
		end, err := s.queryDate(r, "end")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err))
			return
		}
		if !start.IsZero() && !end.IsZero() && end.Before(start) {
			writeJSON(w, http.StatusBadRequest, errorBody(errors.New("end is before start")))
			return
		}

		stats, err := s.service.Sales(r.Context(), start, end)
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, NewTable(stats))
	}
}

func (s *Server) handleCancellation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cancellation := s.service.Cancellation
		if r.URL.Query().Get("high") == "true" {
			cancellation = s.service.HighCancellation
		}
		stats, err := cancellation(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, NewTable(stats))
	}
}

func (s *Server) handleAssociation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := s.service.Association(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, NewTable(sets))
	}
}

func (s *Server) handleCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.service.Categories(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, report)
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.service.Health(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, NewTable(records))
	}
}

func (s *Server) handleRecommendations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := s.service.Recommendations(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeData(w, map[string][]string{"recommendations": recs})
	}
}

func (s *Server) queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseIn(raw, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q", name, raw)
	}
	return t, nil
}

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func errorBody(err error) envelope {
	return envelope{Status: "error", Message: err.Error()}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, service.ErrNoSource) {
		code = http.StatusServiceUnavailable
	}
	slog.Error("analysis failed", "error", err)
	writeJSON(w, code, errorBody(err))
}

// writeJSON кодирует тело до WriteHeader: если кодирование упало, уходит 500 с ошибкой
func writeJSON(w http.ResponseWriter, code int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		slog.Error("failed to encode response to JSON", "error", err)
		code = http.StatusInternalServerError
		buf.Reset()
		// тело ошибки из одной строки кодируется всегда
		_ = json.NewEncoder(&buf).Encode(errorBody(fmt.Errorf("failed to encode response: %w", err)))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
