// Package server exposes layout computation over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness and build information
//	POST /v1/layout        {"diagram": ..., "config": ...} -> layout JSON
//	POST /v1/layout/dot    same body -> Graphviz DOT
//	POST /v1/layout/svg    same body -> SVG
//
// Errors are answered as {"error": {"code": ..., "message": ...}} with the
// HTTP status derived from the error code. Every layout goes through a
// [pipeline.Runner], so a server backed by Redis shares its cache across
// instances.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/strata/pkg/buildinfo"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/observability"
	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/render/nodelink"
)

const (
	// DefaultMaxBodySize bounds request bodies.
	DefaultMaxBodySize = 10 << 20

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	tracerName = "github.com/matzehuels/strata/pkg/server"
)

// Server serves layouts over HTTP.
type Server struct {
	runner      *pipeline.Runner
	logger      *log.Logger
	maxBodySize int64
	timeout     time.Duration
	router      chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodySize overrides [DefaultMaxBodySize].
func WithMaxBodySize(n int64) Option {
	return func(s *Server) { s.maxBodySize = n }
}

// WithTimeout overrides [DefaultTimeout].
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New builds a server around runner. A nil logger discards logs.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		runner:      runner,
		logger:      logger,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    "METHOD_NOT_ALLOWED",
			Message: r.Method + " is not allowed on " + r.URL.Path,
		}})
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/layout", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/", s.handleLayout)
		r.Post("/dot", s.handleArtifact(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
		r.Post("/svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

// LayoutRequest is the body of every /v1/layout route. A missing config
// selects the defaults; a partial config overrides only the keys it sets.
type LayoutRequest struct {
	Diagram *graph.Diagram   `json:"diagram"`
	Config  layout.Config    `json:"config"`
	DOT     nodelink.Options `json:"dot"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, hit, err := s.runner.Layout(r.Context(), req.Diagram, pipeline.Options{Config: req.Config})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.Header().Set("ETag", `"`+l.Hash()+`"`)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleArtifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := s.decode(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.runner.Execute(r.Context(), req.Diagram, pipeline.Options{
			Config:  req.Config,
			Formats: []string{format},
			DOT:     req.DOT,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", cacheHeader(res.CacheHit))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[format])
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*LayoutRequest, error) {
	req := &LayoutRequest{Config: layout.DefaultConfig()}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.maxBodySize)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
	}
	if req.Diagram == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "diagram is required")
	}
	return req, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// =============================================================================
// Middleware
// =============================================================================

// observe traces the request, reports it to the HTTP hooks and logs it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := otel.Tracer(tracerName).Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(ctx)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, route)
		hooks.OnResponse(ctx, r.Method, route, status, elapsed)

		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)

		fields := []any{
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		}
		switch {
		case status >= 500:
			s.logger.Error("request", fields...)
		case status >= 400:
			s.logger.Warn("request", fields...)
		case route == "/healthz":
			s.logger.Debug("request", fields...)
		default:
			s.logger.Info("request", fields...)
		}
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)

	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)

	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
		if !errors.IsFatal(err) {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
