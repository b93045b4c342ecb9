package httpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/health-planner/internal/auth"
	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/fdg312/health-planner/internal/blob"
	"github.com/fdg312/health-planner/internal/config"
	"github.com/fdg312/health-planner/internal/profiles"
	"github.com/fdg312/health-planner/internal/reports"
	"github.com/fdg312/health-planner/internal/scenarios"
	"github.com/fdg312/health-planner/internal/storage"
	"github.com/fdg312/health-planner/internal/storage/memory"
	"github.com/fdg312/health-planner/internal/storage/postgres"
)

// backend хранит профили, сессии планирования и метаданные отчётов в одном хранилище
type backend interface {
	storage.Storage
	storage.SessionStorage
	storage.ReportsStorage
}

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        backend
	storageKind    string
	blobStore      blob.Store
	blobMode       string
	authMiddleware *auth.Middleware
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.initBlobStore()

	s.routes()
	return s
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory storage")
		s.storage = memory.New()
		s.storageKind = "memory"
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: PostgreSQL connection failed: %v", err)
		log.Println("WARN storage: fallback to in-memory storage")
		s.storage = memory.New()
		s.storageKind = "memory"
		return
	}

	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
	s.storageKind = "postgres"
}

// initBlobStore инициализирует хранилище файлов отчётов.
// REPORTS_MODE, если задан, переопределяет BLOB_MODE.
func (s *Server) initBlobStore() {
	cfg := s.config.Blob
	cfg.Mode = cfg.EffectiveReportsMode()

	log.Printf("INFO blob: initializing reports store (mode=%s)", cfg.Mode)
	store, mode, err := blob.NewBlobStore(context.Background(), cfg, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize reports store: %v", err)
	}

	s.blobStore = store
	s.blobMode = mode
}

// routes регистрирует маршруты
func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config, s.storage)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/dev - local dev token
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	// Profiles API
	profileService := profiles.NewService(s.storage)
	profileHandler := profiles.NewHandler(profileService)

	s.mux.HandleFunc("GET /v1/profiles", profileHandler.HandleList)
	s.mux.HandleFunc("POST /v1/profiles", profileHandler.HandleCreate)
	s.mux.HandleFunc("PATCH /v1/profiles/", profileHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/profiles/", profileHandler.HandleDelete)

	// Biometrics API
	metricsService := biometrics.NewService(s.storage, s.storage)
	metricsHandler := biometrics.NewHandler(metricsService)

	// POST /v1/biometrics/calculate - build and store the current snapshot
	s.mux.HandleFunc("POST /v1/biometrics/calculate", metricsHandler.HandleCalculate)

	// GET /v1/biometrics/current - current snapshot
	s.mux.HandleFunc("GET /v1/biometrics/current", metricsHandler.HandleCurrent)

	// GET /v1/biometrics/summary - plain text summary for sharing
	s.mux.HandleFunc("GET /v1/biometrics/summary", metricsHandler.HandleSummary)

	// POST /v1/biometrics/ideal-weight - ideal weight ranges for a height
	s.mux.HandleFunc("POST /v1/biometrics/ideal-weight", metricsHandler.HandleIdealWeight)

	// POST /v1/biometrics/goal-analysis - goal weight / body fat analysis
	s.mux.HandleFunc("POST /v1/biometrics/goal-analysis", metricsHandler.HandleGoalAnalysis)

	// Scenarios API
	scenariosService := scenarios.NewService(s.storage, s.storage, metricsService, s.config.PlannerMaxCustomMonths)
	scenariosHandler := scenarios.NewHandler(scenariosService)

	// POST /v1/scenarios/generate - build, score and rank scenarios for a goal
	s.mux.HandleFunc("POST /v1/scenarios/generate", scenariosHandler.HandleGenerate)

	// GET /v1/scenarios/current - last generated run
	s.mux.HandleFunc("GET /v1/scenarios/current", scenariosHandler.HandleCurrent)

	// Reports API
	reportsService := reports.NewService(
		s.storage,
		s.storage,
		s.storage,
		s.blobStore,
		s.blobMode == config.BlobModeLocal,
		s.config.ReportsMaxPerProfile,
		s.config.Blob.S3.PresignTTLSeconds,
		s.config.Blob.S3.PublicBaseURL,
		s.config.Blob.S3.PreferPublicURL,
	)
	reportsHandler := reports.NewHandlers(reportsService)

	// POST /v1/reports - create report
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)

	// GET /v1/reports - list reports
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)

	// GET /v1/reports/{id}/download - download report
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)

	// DELETE /v1/reports/{id} - delete report
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": s.storageKind,
		"blob":    s.blobMode,
	})
}

// Handler собирает цепочку middleware (внешняя первой): CORS → Auth → Rate Limit → Router.
// Rate limit стоит после auth, чтобы считать запросы по владельцу токена.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RateLimitMiddleware(s.config, handler)
	if s.authMiddleware != nil && s.config.AuthEnabled {
		if s.config.AuthRequired {
			handler = s.authMiddleware.RequireAuth(handler)
		} else {
			handler = s.authMiddleware.OptionalAuth(handler)
		}
	}
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("INFO http: listening on http://localhost%s", addr)
	log.Printf("INFO http: health check http://localhost%s/healthz", addr)
	log.Printf("INFO http: scenarios API http://localhost%s/v1/scenarios/generate", addr)

	return srv.ListenAndServe()
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
