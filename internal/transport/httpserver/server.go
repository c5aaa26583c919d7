// Package httpserver is the web transport for the dashboard. It owns the
// router, the session cookie and the JSON shapes; all business logic lives
// behind the DashboardService interface.
package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/mkuznec/portfolio_dashboard/config"
	"github.com/mkuznec/portfolio_dashboard/internal/model"
	"github.com/mkuznec/portfolio_dashboard/internal/model/avModel"
	"github.com/mkuznec/portfolio_dashboard/internal/model/newsModel"
	"github.com/mkuznec/portfolio_dashboard/utils"
)

const sessionCookie = "session_id"

type DashboardService interface {
	UploadPortfolio(ctx context.Context, sessionID, filename string, r io.Reader) (model.DashboardPage, error)
	GetDashboard(ctx context.Context, sessionID string) (model.DashboardPage, error)
	TickerNews(ctx context.Context, ticker string) ([]newsModel.ArticleWithSummary, error)
	PriceHistory(ctx context.Context, ticker string) ([]avModel.PricePoint, error)
	PriceChart(ctx context.Context, ticker string) ([]byte, error)
	ExportCSV(ctx context.Context, sessionID string) (fileBytes []byte, fileExtension string, err error)
	ExportXLSX(ctx context.Context, sessionID string) (fileBytes []byte, fileExtension string, err error)
	ExportToDrive(ctx context.Context, sessionID string) (shareLink string, err error)
}

type Server struct {
	router  *chi.Mux
	server  *http.Server
	service DashboardService
}

func New(cfg *config.Config, service DashboardService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/", s.handleUploadPortfolio)
			r.Get("/", s.handleGetDashboard)
			r.Get("/export", s.handleExport)
			r.Post("/export/drive", s.handleExportToDrive)
		})
		r.Get("/news/{ticker}", s.handleTickerNews)
		r.Get("/history/{ticker}", s.handlePriceHistory)
		r.Get("/charts/{ticker}", s.handlePriceChart)
	})
}

func (s *Server) Start() error {
	slog.Info("starting http server", slog.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// requestLogger assigns a request ID, puts it into the context and logs
// the start/finish pair for every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		rqID := uuid.NewString()
		ctx := utils.CtxWithRqID(r.Context(), rqID)

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Int("status", ww.Status()),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// sessionID returns the browser's session ID, issuing a new cookie when
// none is present.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
