package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/teamboard/teamboard/internal/api/handler"
	"github.com/teamboard/teamboard/internal/api/middleware"
	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/board"
	"github.com/teamboard/teamboard/internal/card"
	"github.com/teamboard/teamboard/internal/column"
	"github.com/teamboard/teamboard/internal/project"
	"github.com/teamboard/teamboard/internal/team"
	"github.com/teamboard/teamboard/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	DBPinger    handler.DBPinger
	Version     string

	Users    user.Repository
	Teams    team.Repository
	Projects project.Repository
	Boards   board.Repository
	Columns  column.Repository
	Cards    card.Repository

	// BoardSocket serves GET /ws/boards/{board_id}/ when set.
	BoardSocket http.Handler
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Users)
	cardHandler := handler.NewCardHandler(deps.Cards, deps.Users)
	columnHandler := handler.NewColumnHandler(deps.Columns, deps.Cards, cardHandler)
	boardHandler := handler.NewBoardHandler(deps.Boards)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	teamHandler := handler.NewTeamHandler(deps.Teams)
	membershipHandler := handler.NewMembershipHandler(deps.Teams)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register/", authHandler.Register)
		r.Post("/token/", authHandler.Token)
		r.Post("/token/refresh/", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.AuthService))

			r.Get("/profile/", authHandler.Profile)

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", teamHandler.Create)
				r.Get("/", teamHandler.List)
				r.Get("/{id}", teamHandler.GetByID)
				r.Patch("/{id}", teamHandler.Update)
				r.Delete("/{id}", teamHandler.Delete)
			})

			r.Route("/team-memberships", func(r chi.Router) {
				r.Post("/", membershipHandler.Create)
				r.Get("/", membershipHandler.List)
				r.Delete("/{id}", membershipHandler.Delete)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.Create)
				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.GetByID)
				r.Patch("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
			})

			r.Route("/boards", func(r chi.Router) {
				r.Post("/", boardHandler.Create)
				r.Get("/", boardHandler.List)
				r.Get("/{id}", boardHandler.GetByID)
				r.Patch("/{id}", boardHandler.Update)
				r.Delete("/{id}", boardHandler.Delete)
			})

			r.Route("/columns", func(r chi.Router) {
				r.Post("/", columnHandler.Create)
				r.Get("/", columnHandler.List)
				r.Get("/{id}", columnHandler.GetByID)
				r.Patch("/{id}", columnHandler.Update)
				r.Delete("/{id}", columnHandler.Delete)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", cardHandler.Create)
				r.Get("/", cardHandler.List)
				r.Get("/{id}", cardHandler.GetByID)
				r.Patch("/{id}", cardHandler.Update)
				r.Delete("/{id}", cardHandler.Delete)
			})
		})
	})

	if deps.BoardSocket != nil {
		r.Get("/ws/boards/{board_id}/", deps.BoardSocket.ServeHTTP)
	}

	return r
}
