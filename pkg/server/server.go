package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"
	"github.com/rs/cors"

	"github.com/raterudder/retrofit/pkg/batch"
	"github.com/raterudder/retrofit/pkg/common"
	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/storage"
)

// maxBodyBytes bounds request bodies, uploaded price files included.
const maxBodyBytes = 4 << 20

// Server exposes scenario evaluation and scenario storage over HTTP.
type Server struct {
	storage storage.Database
	runner  *batch.Runner

	listenAddr    string
	corsOrigins   []string
	maxBatchSize  int
	serverName    string
	httpServer    *http.Server
	newScenarioID func() string
}

// Configured initializes the Server with dependencies.
// It uses lflag to register command-line flags for configuration.
func Configured(s storage.Database, r *batch.Runner) *Server {
	srv := newServer(s, r)
	revision := os.Getenv("K_REVISION")
	if revision != "" {
		srv.serverName = revision
	}

	// get the port from PORT when running in cloud run
	port := os.Getenv("PORT")
	if port == "" {
		// otherwise default to 8080
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	corsOrigins := lflag.String("cors-origins", "", "comma-delimited list of origins allowed to call the API from a browser")
	maxBatchSize := lflag.Int("max-batch-size", 500, "Maximum number of scenarios accepted by /api/evaluate/batch")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		srv.maxBatchSize = *maxBatchSize
		if *corsOrigins != "" {
			for _, origin := range strings.Split(*corsOrigins, ",") {
				if origin = strings.TrimSpace(origin); origin != "" {
					srv.corsOrigins = append(srv.corsOrigins, origin)
				}
			}
		}
	})

	return srv
}

func newServer(s storage.Database, r *batch.Runner) *Server {
	return &Server{
		storage:       s,
		runner:        r,
		maxBatchSize:  500,
		serverName:    common.ServerName(),
		newScenarioID: newID,
	}
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/evaluate", s.handleEvaluate)
	apiMux.HandleFunc("POST /api/evaluate/batch", s.handleEvaluateBatch)
	apiMux.HandleFunc("POST /api/prices/import", s.handleImportPrices)
	apiMux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	apiMux.HandleFunc("POST /api/scenarios", s.handleCreateScenario)
	apiMux.HandleFunc("GET /api/scenarios/{id}", s.handleGetScenario)
	apiMux.HandleFunc("PUT /api/scenarios/{id}", s.handlePutScenario)
	apiMux.HandleFunc("DELETE /api/scenarios/{id}", s.handleDeleteScenario)
	apiMux.HandleFunc("POST /api/scenarios/{id}/evaluate", s.handleEvaluateScenario)
	apiMux.HandleFunc("GET /api/scenarios/{id}/result", s.handleGetResult)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requestMiddleware(apiMux))
	mux.HandleFunc("/healthz", s.handleHealthz)

	var h http.Handler = s.securityHeadersMiddleware(mux)
	if len(s.corsOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		}).Handler(h)
	}
	return s.revisionMiddleware(gziphandler.GzipHandler(h))
}

// requestMiddleware attaches a request-scoped logger and bounds the body.
func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.With(ctx, log.Ctx(ctx).With(
			slog.String("reqMethod", r.Method),
			slog.String("reqPath", r.URL.Path),
		))
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, struct {
		Error string `json:"error"`
	}{Error: msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) revisionMiddleware(next http.Handler) http.Handler {
	if s.serverName == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", s.serverName)
		next.ServeHTTP(w, r)
	})
}
