package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/unrolled/render"
)

// DefaultLeaderboardLimit is used when ?limit= is absent.
const DefaultLeaderboardLimit = 20

// TeamPage is everything the public team page shows.
type TeamPage struct {
	Team    *club.Team       `json:"team"`
	Record  *club.TeamRecord `json:"record"`
	Players []club.Player    `json:"players"`
	Matches []club.Match     `json:"matches"`
}

// PlayerPage is everything the public player page shows.
type PlayerPage struct {
	Player  *club.Player                 `json:"player"`
	Totals  *club.PlayerTotals           `json:"totals"`
	Matches []matchsheet.PlayerMatchLine `json:"matches"`
}

func ListTeamsHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, teams)
	}
}

func GetTeamHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")
		team, err := store.GetTeam(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		record, err := store.TeamRecord(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		players, err := store.ListPlayersByTeam(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		matches, err := store.ListMatchesByTeam(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, TeamPage{Team: team, Record: record, Players: players, Matches: matches})
	}
}

func ListPlayersHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			players []club.Player
			err     error
		)
		if teamID := r.URL.Query().Get("team_id"); teamID != "" {
			players, err = store.ListPlayersByTeam(r.Context(), teamID)
		} else {
			players, err = store.ListPlayers(r.Context())
		}
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, players)
	}
}

func GetPlayerHandler(store club.ClubStore, sheets matchsheet.Store, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")
		player, err := store.GetPlayer(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		totals, err := store.PlayerTotalsByID(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		lines, err := sheets.ListStatsByPlayer(ctx, id)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, PlayerPage{Player: player, Totals: totals, Matches: lines})
	}
}

func ListMatchesHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			matches []club.Match
			err     error
		)
		if teamID := r.URL.Query().Get("team_id"); teamID != "" {
			matches, err = store.ListMatchesByTeam(r.Context(), teamID)
		} else {
			matches, err = store.ListMatches(r.Context())
		}
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, matches)
	}
}

func GetMatchHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := store.GetMatch(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, match)
	}
}

func LeaderboardHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", DefaultLeaderboardLimit)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		totals, err := store.PlayerTotals(r.Context(), limit)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, totals)
	}
}
