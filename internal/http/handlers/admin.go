package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/unrolled/render"
)

// entity describes how the admin handlers validate and persist one table.
type entity[T any] struct {
	name   string
	setID  func(*T, string)
	check  func(context.Context, *T, club.WriteKind) error
	create func(context.Context, *T) error
	update func(context.Context, *T) error
}

func createHandler[T any](e entity[T], rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if err := decodeJSON(r, &item); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		if IsDryRunFromContext(r) {
			if err := e.check(r.Context(), &item, club.WriteCreate); err != nil {
				writeError(rnd, w, r, err)
				return
			}
			requestLog(r).Info("[Dry Run] Would create "+e.name, "item", item)
			writeJSON(rnd, w, http.StatusOK, item)
			return
		}
		if err := e.create(r.Context(), &item); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusCreated, item)
	}
}

func updateHandler[T any](e entity[T], rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var item T
		if err := decodeJSON(r, &item); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		e.setID(&item, id)
		if IsDryRunFromContext(r) {
			if err := e.check(r.Context(), &item, club.WriteUpdate); err != nil {
				writeError(rnd, w, r, err)
				return
			}
			requestLog(r).Info("[Dry Run] Would update "+e.name, "id", id)
			writeJSON(rnd, w, http.StatusOK, item)
			return
		}
		if err := e.update(r.Context(), &item); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, item)
	}
}

func teamEntity(store club.ClubStore) entity[club.Team] {
	return entity[club.Team]{
		name:   "team",
		setID:  func(t *club.Team, id string) { t.ID = id },
		check:  store.CheckTeam,
		create: store.CreateTeam,
		update: store.UpdateTeam,
	}
}

func playerEntity(store club.ClubStore) entity[club.Player] {
	return entity[club.Player]{
		name:   "player",
		setID:  func(p *club.Player, id string) { p.ID = id },
		check:  store.CheckPlayer,
		create: store.CreatePlayer,
		update: store.UpdatePlayer,
	}
}

func matchEntity(store club.ClubStore) entity[club.Match] {
	return entity[club.Match]{
		name:   "match",
		setID:  func(m *club.Match, id string) { m.ID = id },
		check:  store.CheckMatch,
		create: store.CreateMatch,
		update: store.UpdateMatch,
	}
}

func CreateTeamHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return createHandler(teamEntity(store), rnd)
}

func UpdateTeamHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return updateHandler(teamEntity(store), rnd)
}

func CreatePlayerHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return createHandler(playerEntity(store), rnd)
}

func UpdatePlayerHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return updateHandler(playerEntity(store), rnd)
}

func CreateMatchHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return createHandler(matchEntity(store), rnd)
}

func UpdateMatchHandler(store club.ClubStore, rnd *render.Render) http.HandlerFunc {
	return updateHandler(matchEntity(store), rnd)
}
