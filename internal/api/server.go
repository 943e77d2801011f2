package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"farmtrack/backend/internal/config"
	"farmtrack/backend/internal/database"
	"farmtrack/backend/internal/reports"
	"farmtrack/backend/internal/reports/export"
)

// UserStore is the slice of the database the auth handlers need.
type UserStore interface {
	UserByUsername(ctx context.Context, username string) (database.User, error)
}

type Server struct {
	store     reports.Store
	users     UserStore
	gen       *reports.Generator
	exporter  *export.Exporter
	jwtSecret []byte
	log       *logrus.Logger
	origins   []string
}

func NewServer(store reports.Store, users UserStore, exporter *export.Exporter, jwtSecret string, corsOrigins []string) *Server {
	return &Server{
		store:     store,
		users:     users,
		gen:       reports.NewGenerator(store),
		exporter:  exporter,
		jwtSecret: []byte(jwtSecret),
		log:       config.GetLogger(),
		origins:   corsOrigins,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.Use(s.requestID)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(pr chi.Router) {
			pr.Use(s.authRequired)
			pr.Get("/auth/me", s.handleMe)

			pr.Group(func(ar chi.Router) {
				ar.Use(s.adminRequired)
				ar.Get("/dashboard", s.handleDashboard)
				ar.Get("/reports/data", s.handleReportData)
				ar.Post("/reports/export", s.handleExportReport)
			})
		})
	})

	return r
}
