package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/fraudguard/internal/activity"
	"github.com/jonathan/fraudguard/internal/analysis"
	"github.com/jonathan/fraudguard/internal/config"
	"github.com/jonathan/fraudguard/internal/ingest"
	"github.com/jonathan/fraudguard/internal/llm"
	"github.com/jonathan/fraudguard/internal/server/middleware"
	"github.com/jonathan/fraudguard/internal/server/ratelimit"
	"github.com/jonathan/fraudguard/internal/stats"
	"github.com/jonathan/fraudguard/internal/store"
)

// Server is the HTTP API over the analysis, activity and stats services.
type Server struct {
	httpServer  *http.Server
	store       store.Store
	llmClient   llm.Client
	analyzer    *analysis.Service
	activity    *activity.Service
	stats       *stats.Service
	users       *UserService
	authHandler *AuthHandler
	jwtService  *JWTService
	fetcher     *ingest.Fetcher
	rateLimiter *ratelimit.Limiter

	allowedOrigin string
	closeStore    func()
}

// New creates a server from the application configuration: Postgres when
// DATABASE_URL is set, the in-memory store otherwise, and a Gemini client
// at the model boundary. The bootstrap admin is seeded before serving.
func New(cfg *config.AppConfig) (*Server, error) {
	ctx := context.Background()

	var (
		st         store.Store
		closeStore func()
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		st = pg
		closeStore = pg.Close
		log.Printf("[server] using postgres store")
	} else {
		st = store.NewMemory()
		closeStore = func() {}
		log.Printf("[server] DATABASE_URL not set, using in-memory store")
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := newServer(st, client, passwordConfig, jwtConfig, cfg.AllowedOrigin)
	s.closeStore = closeStore
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	admin, err := s.users.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		closeStore()
		return nil, err
	}
	log.Printf("[server] admin account ready: %s", admin.Email)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // model calls with retries can be slow
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// newServer wires the services over injected dependencies. Tests call this
// directly with the memory store and a scripted model client.
func newServer(st store.Store, client llm.Client, passwordConfig *config.PasswordConfig, jwtConfig *config.JWTConfig, allowedOrigin string) *Server {
	s := &Server{
		store:         st,
		llmClient:     client,
		analyzer:      analysis.NewService(client, st),
		activity:      activity.NewService(st),
		stats:         stats.NewService(st),
		fetcher:       ingest.NewFetcher(),
		jwtService:    NewJWTService(jwtConfig),
		allowedOrigin: allowedOrigin,
		closeStore:    func() {},
	}
	s.users = NewUserService(st, passwordConfig)
	s.authHandler = NewAuthHandler(s.users, s.jwtService)
	return s
}

// routes builds the request mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(s.jwtService)
	requireAdmin := middleware.RequireAdmin(s.jwtService)
	optionalAuth := middleware.OptionalAuth(s.jwtService)

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /auth/logout", s.authHandler.Logout)

	// Analysis endpoints work anonymously; a valid bearer token makes the
	// result persistent under that user.
	mux.Handle("POST /analyze/job", optionalAuth(http.HandlerFunc(s.handleAnalyzeJob)))
	mux.Handle("POST /analyze/resume", optionalAuth(http.HandlerFunc(s.handleAnalyzeResume)))
	mux.Handle("POST /interview-prep", optionalAuth(http.HandlerFunc(s.handleInterviewPrep)))
	mux.Handle("POST /chat", optionalAuth(http.HandlerFunc(s.handleChat)))

	mux.Handle("GET /activity", requireAuth(http.HandlerFunc(s.handleListActivity)))
	mux.Handle("DELETE /activity/{source}/{id}", requireAuth(http.HandlerFunc(s.handleDeleteActivity)))
	mux.Handle("GET /activity/{id}/report", requireAuth(http.HandlerFunc(s.handleActivityReport)))

	mux.Handle("GET /interview-modules", requireAuth(http.HandlerFunc(s.handleListInterviewModules)))
	mux.Handle("DELETE /interview-modules/{id}", requireAuth(http.HandlerFunc(s.handleDeleteInterviewModule)))

	mux.Handle("GET /admin/stats", requireAdmin(http.HandlerFunc(s.handleAdminStats)))
	mux.Handle("GET /admin/activity", requireAdmin(http.HandlerFunc(s.handleAdminActivity)))
	mux.Handle("GET /admin/users", requireAdmin(http.HandlerFunc(s.handleAdminListUsers)))
	mux.Handle("POST /admin/users/{id}/block", requireAdmin(http.HandlerFunc(s.handleAdminBlockUser)))
	mux.Handle("DELETE /admin/users/{id}", requireAdmin(http.HandlerFunc(s.handleAdminDeleteUser)))

	return mux
}

// Start begins listening and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] serve error: %v", err)
		}
	}()

	<-stop
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.llmClient.Close(); err != nil {
		log.Printf("[server] model client close: %v", err)
	}
	s.closeStore()
	log.Println("[server] stopped")
	return nil
}

// withCORS adds CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := s.allowedOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with its duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit applies the per-client token buckets.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.rateLimiter.Allow(clientIP(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			log.Printf("[rate-limit] exceeded: limit=%d path=%s", info.Limit, r.URL.Path)
			errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address for rate limiting.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
