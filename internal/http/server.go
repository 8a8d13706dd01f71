package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mauv0809/touchline/internal/http/handlers"
	"github.com/unrolled/render"
)

func NewServer(deps Deps) *Server {
	server := &Server{
		Deps:   deps,
		Router: chi.NewRouter(),
		render: render.New(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	r := s.Router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.Cfg.CORSOrigins))
	r.Use(paramsMiddleware)

	r.Handle("/metrics", s.MetricsHandler)
	r.Get("/health", handlers.HealthCheckHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/teams", handlers.ListTeamsHandler(s.Store, s.render))
		r.Get("/teams/{id}", handlers.GetTeamHandler(s.Store, s.render))
		r.Get("/players", handlers.ListPlayersHandler(s.Store, s.render))
		r.Get("/players/{id}", handlers.GetPlayerHandler(s.Store, s.Sheets, s.render))
		r.Get("/matches", handlers.ListMatchesHandler(s.Store, s.render))
		r.Get("/matches/{id}", handlers.GetMatchHandler(s.Store, s.render))
		r.Get("/leaderboard", handlers.LeaderboardHandler(s.Store, s.render))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/leaderboards", handlers.LeaderboardsHandler(s.Analytics, s.render))
			r.Get("/players/{id}/impact", handlers.PlayerImpactHandler(s.Analytics, s.render))
			r.Get("/players/{id}/team-combinations", handlers.PlayerTeamCombinationsHandler(s.Analytics, s.render))
			r.Get("/teams/internal", handlers.InternalTeamStatisticsHandler(s.Analytics, s.render))
			r.Get("/teams/club", handlers.ClubTeamStatisticsHandler(s.Analytics, s.render))
			r.Get("/teams/{id}/combinations", handlers.PlayerCombinationsHandler(s.Analytics, s.render))
			r.Get("/teams/{id}/players/{playerID}", handlers.TeamPerformanceHandler(s.Analytics, s.render))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/teams", handlers.CreateTeamHandler(s.Store, s.render))
			r.Put("/teams/{id}", handlers.UpdateTeamHandler(s.Store, s.render))
			r.Post("/players", handlers.CreatePlayerHandler(s.Store, s.render))
			r.Put("/players/{id}", handlers.UpdatePlayerHandler(s.Store, s.render))
			r.Post("/matches", handlers.CreateMatchHandler(s.Store, s.render))
			r.Put("/matches/{id}", handlers.UpdateMatchHandler(s.Store, s.render))

			r.Get("/matches/{id}/assignments", handlers.AssignmentSheetHandler(s.Workflow, s.render))
			r.Put("/matches/{id}/assignments", handlers.SaveAssignmentsHandler(s.Workflow, s.render))
			r.Get("/matches/{id}/stats", handlers.StatSheetHandler(s.Workflow, s.render))
			r.Put("/matches/{id}/stats", handlers.SaveStatsHandler(s.Workflow, s.render))
			r.Get("/matches/{id}/roster", handlers.RosterHandler(s.Workflow, s.render))
			r.Put("/matches/{id}/roster/{playerID}", handlers.UpdateRosterHandler(s.Workflow, s.render))

			r.Post("/leaderboard/post", handlers.PostLeaderboardHandler(s.Processor))
		})

		r.Post("/import", handlers.ImportHandler(s.Importer, s.render))
	})

	verify := slackVerifier(s.Cfg.Slack.SigningSecret)
	r.Method(http.MethodPost, "/slack/command/leaderboard", Chain(handlers.LeaderboardCommandHandler(s.Store, s.Notifier), verify))
	r.Method(http.MethodPost, "/slack/command/player-stats", Chain(handlers.PlayerStatsCommandHandler(s.Store, s.Notifier), verify))

	r.Post("/events/match-stats-saved", handlers.MatchStatsSavedHandler(s.Processor))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
