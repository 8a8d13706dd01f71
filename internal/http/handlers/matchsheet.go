package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/unrolled/render"
)

type assignmentsRequest struct {
	Assignments []matchsheet.AssignmentInput `json:"assignments" validate:"dive"`
}

type statsRequest struct {
	Stats []matchsheet.StatInput `json:"stats" validate:"dive"`
}

type rosterUpdateRequest struct {
	TeamID string `json:"team_id"`
}

func AssignmentSheetHandler(svc *matchsheet.Service, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheet, err := svc.AssignmentSheet(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, sheet)
	}
}

func SaveAssignmentsHandler(svc *matchsheet.Service, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignmentsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		res, err := svc.SaveAssignments(r.Context(), chi.URLParam(r, "id"), req.Assignments, IsDryRunFromContext(r))
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, res)
	}
}

func StatSheetHandler(svc *matchsheet.Service, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheet, err := svc.StatSheet(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, sheet)
	}
}

func SaveStatsHandler(svc *matchsheet.Service, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statsRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		res, err := svc.SaveStats(r.Context(), chi.URLParam(r, "id"), req.Stats, IsDryRunFromContext(r))
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, res)
	}
}

func RosterHandler(svc *matchsheet.Service, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := svc.Roster(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, roster)
	}
}

func UpdateRosterHandler(svc *matchsheet.Service, rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rosterUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		matchID := chi.URLParam(r, "id")
		if err := svc.UpdateAssignment(r.Context(), matchID, chi.URLParam(r, "playerID"), req.TeamID, IsDryRunFromContext(r)); err != nil {
			writeError(rnd, w, r, err)
			return
		}
		roster, err := svc.Roster(r.Context(), matchID)
		if err != nil {
			writeError(rnd, w, r, err)
			return
		}
		writeJSON(rnd, w, http.StatusOK, roster)
	}
}
