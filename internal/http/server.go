package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"wrapped/internal/backend"
	"wrapped/internal/cache"
	"wrapped/internal/core"
	"wrapped/internal/fetcher"
	"wrapped/internal/log"
	"wrapped/internal/storage"
	"wrapped/internal/view"
	appweb "wrapped/web"
)

// SnapshotArchive keeps the last fetched reports for stale fallback.
type SnapshotArchive interface {
	SaveSnapshot(ctx context.Context, s storage.Snapshot) (int64, error)
	LatestSnapshot(ctx context.Context, queryKey string) (storage.Snapshot, error)
}

// RefreshPublisher queues a background refresh of a report.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, q core.Query) error
}

// Options configures a Server. Archive and Publisher are optional.
type Options struct {
	Addr      string
	Source    backend.Source
	Defaults  core.Query
	Renderer  *view.Renderer
	Archive   SnapshotArchive
	Publisher RefreshPublisher
	CacheSize int
	CacheTTL  time.Duration
	Logger    *log.Logger
}

type Server struct {
	http.Server
	source    backend.Source
	defaults  core.Query
	renderer  *view.Renderer
	archive   SnapshotArchive
	publisher RefreshPublisher

	// Loaded sessions by query key. Sessions that produced no summary are
	// never cached, so the next request mounts a fresh one.
	sessions     *cache.LRUCache[*fetcher.Session]
	cacheManager *cache.Manager
	loads        singleflight.Group

	headers     headersConfig
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logger      *log.Logger
	structured  *log.StructuredLogger

	// baseCtx outlives single requests and is cancelled on Shutdown.
	baseCtx      context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if opts.CacheSize < 1 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()
	baseCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           log.Middleware(logger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		source:       opts.Source,
		defaults:     opts.Defaults,
		renderer:     opts.Renderer,
		archive:      opts.Archive,
		publisher:    opts.Publisher,
		sessions:     cache.NewLRUCache[*fetcher.Session](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(logger),
		headers:      defaultHeadersConfig(),
		rateLimiter:  newRateLimiter(),
		metrics:      &securityMetrics{},
		logger:       logger,
		structured:   log.NewStructuredLogger(logger),
		baseCtx:      baseCtx,
		cancel:       cancel,
	}

	s.cacheManager.Register("sessions", s.sessions)
	s.cacheManager.StartCleanup(10 * time.Minute)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", staticCacheControl(3600, static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/ui/wrapped", s.withSecurityHeaders(s.handleWrappedPartial))
	mux.HandleFunc("/api/wrapped", s.withSecurityHeaders(s.handleWrappedJSON))
	mux.HandleFunc("/wrapped.txt", s.withSecurityHeaders(s.handleWrappedText))
	mux.HandleFunc("/wrapped.pdf", s.withSecurityHeaders(s.handleWrappedPDF))
	mux.HandleFunc("/refresh", s.withSecurityHeaders(s.handleRefresh))

	return s
}

// Shutdown cancels in-flight backend loads, stops background cleanup and
// shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cancel()
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := uuid.NewString()

		logger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), logger)
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, requestID, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			s.logger.WarnContext(ctx, "Suspicious request",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
		}

		// Only refresh requests reach the backend on demand.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Request-ID", requestID)
		s.headers.apply(w, r)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), requestID, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
