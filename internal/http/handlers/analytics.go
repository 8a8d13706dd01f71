package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/touchline/internal/analytics"
	"github.com/unrolled/render"
)

// analyticsHandler runs one analytics call and renders its result.
func analyticsHandler[T any](rnd *render.Render, run func(r *http.Request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := run(r)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, res)
	}
}

func LeaderboardsHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.Leaderboards, error) {
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			return nil, err
		}
		return svc.Leaderboards(r.Context(), limit)
	})
}

func PlayerImpactHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.PlayerImpact, error) {
		return svc.PlayerImpact(r.Context(), chi.URLParam(r, "id"))
	})
}

func PlayerTeamCombinationsHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.TeammateCombinations, error) {
		return svc.PlayerTeamCombinations(r.Context(), chi.URLParam(r, "id"))
	})
}

func PlayerCombinationsHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.PairCombinations, error) {
		minMatches, err := queryInt(r, "min_matches", 0)
		if err != nil {
			return nil, err
		}
		return svc.PlayerCombinations(r.Context(), chi.URLParam(r, "id"), minMatches)
	})
}

func TeamPerformanceHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.TeamPerformance, error) {
		return svc.TeamPerformanceWithPlayer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "playerID"))
	})
}

func InternalTeamStatisticsHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.TeamStatistics, error) {
		return svc.InternalTeamStatistics(r.Context())
	})
}

func ClubTeamStatisticsHandler(svc *analytics.Service, rnd *render.Render) http.HandlerFunc {
	return analyticsHandler(rnd, func(r *http.Request) (*analytics.TeamStatistics, error) {
		return svc.ClubTeamStatistics(r.Context())
	})
}
