// Package http serves the singil dashboard API: report reads with
// caching and pagination, approval pass-throughs, notifications, and
// export downloads. All responses are JSON except export streams.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"singil/internal/amqp"
	"singil/internal/cache"
	"singil/internal/core"
	"singil/internal/log"
	"singil/internal/middleware/ratelimit"
	"singil/internal/middleware/security"
	"singil/internal/middleware/trace"
	"singil/internal/portal"
	"singil/internal/services"
	"singil/internal/session"
	"singil/internal/worker"
)

// ExportQueue publishes export requests for background processing.
// Satisfied by *amqp.Client; nil means the queue surface is disabled.
type ExportQueue interface {
	PublishExportRequest(ctx context.Context, req *amqp.ExportRequest) error
}

// Deps collects everything the server handles requests with. Reports and
// Approvals are required; the rest degrade gracefully when nil.
type Deps struct {
	Reports   *services.ReportService
	Approvals *services.ApprovalService

	Sections      portal.SectionReader
	Stats         portal.StatsReader
	Notifications portal.NotificationReader
	Auth          portal.Authenticator

	Notifier *worker.Notifier
	Sessions session.Store
	Exports  ExportQueue

	Logger *log.Logger
}

// Server wraps http.Server with the dashboard's caches, rate limiter,
// and in-flight fetch sequencing.
type Server struct {
	http.Server

	reports   *services.ReportService
	approvals *services.ApprovalService

	sections      portal.SectionReader
	stats         portal.StatsReader
	notifications portal.NotificationReader
	auth          portal.Authenticator

	notifier *worker.Notifier
	sessions session.Store
	exports  ExportQueue

	logger *log.Logger

	// Normalized report months keyed by "<dept>|<rangeKey>". A snapshot
	// refresh or a mutation invalidates by department prefix.
	reportCache *cache.LRUCache[[]core.ReportMonth]
	statsCache  *cache.LRUCache[core.DashboardStats]
	cacheMgr    *cache.Manager

	// seq discards superseded fetches: only the latest generation per
	// dept+range key is allowed to write the cache.
	seq *portal.Sequencer

	// One paginator per group table, keyed by department. Resolve runs
	// the filter-key/page/slice sequence under the paginator's own lock;
	// pagMu only guards the map.
	pagMu      sync.Mutex
	paginators map[core.Department]*core.Paginator[core.Group]

	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	headers      *security.HeadersMiddleware
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		reports:       deps.Reports,
		approvals:     deps.Approvals,
		sections:      deps.Sections,
		stats:         deps.Stats,
		notifications: deps.Notifications,
		auth:          deps.Auth,
		notifier:      deps.Notifier,
		sessions:      deps.Sessions,
		exports:       deps.Exports,
		logger:        logger,
		reportCache:   cache.NewLRUCache[[]core.ReportMonth](100, 5*time.Minute),
		statsCache:    cache.NewLRUCache[core.DashboardStats](4, time.Minute),
		cacheMgr:      cache.NewManager(),
		seq:           portal.NewSequencer(),
		paginators:    make(map[core.Department]*core.Paginator[core.Group]),
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:      security.NewDetector(),
		headers:       security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
	}

	s.cacheMgr.Register(s.reportCache)
	s.cacheMgr.Register(s.statsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/reports/combined", s.handleCombinedReport)
	mux.HandleFunc("GET /api/reports/{dept}", s.handleReport)
	mux.HandleFunc("GET /api/trend/{dept}", s.handleTrend)
	mux.HandleFunc("GET /api/sections/available-stalls", s.handleAvailableStalls)
	mux.HandleFunc("GET /api/dashboard/stats", s.handleDashboardStats)
	mux.HandleFunc("GET /api/dashboard/collector-totals", s.handleCollectorTotals)

	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.handleMarkNotificationRead)

	mux.HandleFunc("POST /api/approvals/vendor-applications/{id}", s.handleVendorApplication)
	mux.HandleFunc("POST /api/approvals/incharge/{id}", s.handleInchargeStatus)
	mux.HandleFunc("POST /api/approvals/stall-change/{id}", s.handleStallChange)
	mux.HandleFunc("POST /api/approvals/stall-removal/{id}", s.handleStallRemoval)
	mux.HandleFunc("POST /api/approvals/remittance/{id}", s.handleRemittance)
	mux.HandleFunc("GET /api/renewals", s.handleRenewals)
	mux.HandleFunc("POST /api/renewals/{id}", s.handleResolveRenewal)

	mux.HandleFunc("GET /api/export/{file}", s.handleExportDownload)
	mux.HandleFunc("POST /api/export/{dept}/queue", s.handleExportQueue)
	mux.HandleFunc("GET /api/exports/recent", s.handleRecentExports)

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	mux.HandleFunc("GET /internal/metrics", s.handleMetrics)

	return s.middleware(mux)
}

// middleware chains trace (request ID + start/end logging), rate
// limiting on mutations, and security headers around the mux.
func (s *Server) middleware(next http.Handler) http.Handler {
	// Only mutations are rate limited; report reads go through the cache.
	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(next)
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			limit.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})

	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	screened := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				"method", r.Method, "path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		limited.ServeHTTP(w, r)
	})
	traced := s.tracer.Middleware(screened)
	logged := log.Middleware(s.logger)(traced)
	return s.headers.Middleware(logged)
}

// handleMetrics exposes operational counters for scraping. Not part of
// the public API surface.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"requests":           s.tracer.GetMetrics(),
		"rate_limit":         s.rateLimiter.GetMetrics(),
		"security":           s.detector.GetMetrics(),
		"report_cache_size":  s.reportCache.Size(),
		"rate_limit_clients": s.rateLimiter.ActiveClients(),
	})
}

// invalidateReports drops every cached range of the department, plus the
// combined view that folds it in.
func (s *Server) invalidateReports(dept core.Department) {
	s.reportCache.DeletePrefix(string(dept) + "|")
	s.reportCache.DeletePrefix(string(core.Combined) + "|")
}

// paginator returns the department's group-table paginator, creating it
// at the default size on first use.
func (s *Server) paginator(dept core.Department) *core.Paginator[core.Group] {
	s.pagMu.Lock()
	defer s.pagMu.Unlock()
	p, ok := s.paginators[dept]
	if !ok {
		p = core.NewPaginator[core.Group](core.DefaultPageSize)
		s.paginators[dept] = p
	}
	return p
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
