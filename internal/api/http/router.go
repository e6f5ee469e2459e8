package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/zaktec/haibl-sub000/internal/auth"
	"github.com/zaktec/haibl-sub000/internal/engine"
	"github.com/zaktec/haibl-sub000/internal/rbac"
)

type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter mounts the JSON API. Everything except /healthz needs a bearer
// token; permissions come from the role claim.
func NewRouter(eng *engine.Engine, authSvc *auth.AuthService, log zerolog.Logger, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	log = log.With().Str("component", "http").Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, AccessLog(log), middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require(rbac.PermQuizView)).
			Get("/quizzes/{quizID}", GetQuizHandler(eng, log))

		pr.Route("/progress", func(p chi.Router) {
			p.With(rbac.Require(rbac.PermProgressAssign)).
				Post("/", AssignHandler(eng, log))
			p.With(rbac.RequireAny(rbac.PermProgressViewAll, rbac.PermProgressViewOwn)).
				Get("/", ListProgressHandler(eng, log))

			p.With(rbac.RequireAny(rbac.PermProgressViewAll, rbac.PermProgressViewOwn)).
				Get("/records/{recordID}", GetRecordHandler(eng, log))
			p.With(rbac.RequireAny(rbac.PermProgressViewAll, rbac.PermProgressViewOwn)).
				Get("/{userID}/summary", SummaryHandler(eng, log))
			p.With(rbac.Require(rbac.PermProgressReset)).
				Post("/{userID}/quizzes/{quizID}/reset", ResetByQuizHandler(eng, log))

			p.With(rbac.RequireAny(rbac.PermProgressViewAll, rbac.PermProgressViewOwn)).
				Get("/{userID}/{contentID}", GetProgressHandler(eng, log))
			p.With(rbac.Require(rbac.PermProgressSubmit)).
				Post("/{userID}/{contentID}/submit", SubmitHandler(eng, log))
			p.With(rbac.Require(rbac.PermProgressReset)).
				Post("/{userID}/{contentID}/reset", ResetHandler(eng, log))
			p.With(rbac.Require(rbac.PermProgressGrade)).
				Put("/{userID}/{contentID}/grade", GradeHandler(eng, log))
			p.With(rbac.Require(rbac.PermProgressDelete)).
				Delete("/{userID}/{contentID}", DeleteHandler(eng, log))
		})
	})
	return r
}
