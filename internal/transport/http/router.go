package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/go-social-nosql/internal/application/auth"
	"github.com/go-social-nosql/internal/application/engagement"
	"github.com/go-social-nosql/internal/application/notification"
	"github.com/go-social-nosql/internal/application/post"
	"github.com/go-social-nosql/internal/application/user"
	"github.com/go-social-nosql/internal/config"
	jwtinfra "github.com/go-social-nosql/internal/infrastructure/jwt"
	"github.com/go-social-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-social-nosql/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	PostRepo         PostRepository
	NotificationRepo NotificationRepository
	Media            ObjectStore
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:      deps.UserRepo,
		Media:         deps.Media,
		DefaultAvatar: cfg.DefaultAvatarURL,
		DefaultBio:    cfg.DefaultBio,
	})
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		UserRepo:         deps.UserRepo,
		Summaries:        userSvc,
	})
	engagementSvc := engagement.NewService(engagement.ServiceDeps{
		UserRepo:      deps.UserRepo,
		PostRepo:      deps.PostRepo,
		Notifications: notifSvc,
	})
	postSvc := post.NewService(post.ServiceDeps{
		PostRepo:      deps.PostRepo,
		UserRepo:      deps.UserRepo,
		Media:         deps.Media,
		Summaries:     userSvc,
		Notifications: notifSvc,
	})
	authSvc := auth.NewService(deps.UserRepo, deps.JWTProvider)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, engagementSvc)
	postH := handler.NewPostHandler(postSvc, engagementSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/sessions/login", sessionH.Login)
		r.Post("/users", userH.Register)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/users/search", userH.Search)
			r.Get("/users/by-username/{username}", userH.GetByUsername)
			r.Patch("/users/me", userH.Update)
			r.Post("/users/me/avatar", userH.UploadAvatar)
			r.Get("/users/{id}", userH.Get)
			r.Get("/users/{id}/posts", postH.ListByUser)
			r.Patch("/users/{id}/follow", userH.ToggleFollow)

			r.Get("/notifications", notifH.List)

			r.Get("/posts/feed", postH.Feed)
			r.Post("/posts", postH.Create)
			r.Delete("/posts/{id}", postH.Delete)
			r.Patch("/posts/{id}/like", postH.ToggleLike)
			r.Post("/posts/{id}/comments", postH.AddComment)
		})
	})

	return r
}
