// Package http serves the WalletNote pages and JSON API.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"walletnote/internal/core"
	"walletnote/internal/log"
	"walletnote/internal/middleware/ratelimit"
	"walletnote/internal/middleware/security"
	"walletnote/internal/middleware/trace"
	appweb "walletnote/web"
)

// Deps are the services behind the HTTP surface. Receipts may be nil, in
// which case /api/ocr answers 503.
type Deps struct {
	Auth     Authenticator
	Records  RecordManager
	Reports  Reporter
	Settings SettingsManager
	Receipts ReceiptSubmitter
	DB       Pinger
}

// Options tune the server; zero values fall back to sane defaults.
type Options struct {
	Addr               string
	CookieSecure       bool
	MaxUploadBytes     int64
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	deps Deps
	opts Options

	templates   *template.Template
	limiter     *ratelimit.Limiter
	tracer      *trace.Middleware
	ipExtractor *security.IPExtractor
	logger      *log.Logger

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer parses templates, mounts routes and wires the middleware chain,
// returning a server ready for ListenAndServe.
func NewServer(opts Options, deps Deps) (*Server, error) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	logger := log.WithComponent(log.ComponentHTTP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	ipExtractor := security.NewIPExtractor()
	for _, cidr := range opts.TrustedProxies {
		if err := ipExtractor.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("trusted proxy: %w", err)
		}
	}

	s := &Server{
		deps:        deps,
		opts:        opts,
		templates:   t,
		ipExtractor: ipExtractor,
		logger:      logger,
		started:     time.Now(),
		now:         time.Now,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.tracer = trace.NewMiddleware(ipExtractor.ClientIP, logger)

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.limiter.Stop()
		return nil, err
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(ipExtractor.ClientIP, true, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, ipExtractor.ClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		writeMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.tracer.Middleware(headers.Middleware(limit(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("GET /signup", s.handleSignUpPage)
	mux.HandleFunc("GET /logout", s.handleLogoutPage)
	mux.Handle("GET /dashboard", s.requirePage(s.handleDashboardPage))
	mux.Handle("GET /setting", s.requirePage(s.handleSettingPage))

	// account
	mux.Handle("POST /api/signup", security.NoStore(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /api/login", security.NoStore(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/logout", security.NoStore(http.HandlerFunc(s.handleLogout)))
	mux.Handle("GET /api/setting", s.requireAPI(s.handleGetSetting))
	mux.Handle("POST /api/setting/currency", s.requireAPI(s.handleSetCurrency))

	// records
	mux.Handle("POST /api/records", s.requireAPI(s.handleCreateRecord))
	mux.Handle("POST /record/expense", s.requireAPI(s.handleCreateTyped(core.Expense)))
	mux.Handle("POST /record/income", s.requireAPI(s.handleCreateTyped(core.Income)))
	mux.Handle("GET /api/records", s.requireAPI(s.handleListRecords))
	mux.Handle("GET /api/records/{id}", s.requireAPI(s.handleGetRecord))
	mux.Handle("PUT /api/records/{id}", s.requireAPI(s.handleUpdateRecord))
	mux.Handle("DELETE /api/records/{id}", s.requireAPI(s.handleDeleteRecord))

	// receipts
	mux.Handle("POST /api/ocr", s.requireAPI(s.handleReceiptUpload))

	// reports
	mux.Handle("GET /api/chart/summary", s.requireAPI(s.handleChartSummary))
	mux.Handle("GET /api/chart/expense", s.requireAPI(s.handleChartExpense))
	mux.Handle("GET /api/chart/monthly", s.requireAPI(s.handleChartMonthly))
	mux.Handle("GET /api/chart/yearly", s.requireAPI(s.handleChartYearly))
	mux.Handle("GET /api/chart/today", s.requireAPI(s.handleChartToday))
	mux.Handle("GET /api/dashboard", s.requireAPI(s.handleDashboard))

	return nil
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
