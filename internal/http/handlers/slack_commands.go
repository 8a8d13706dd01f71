package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/notifier"
	"github.com/slack-go/slack"
)

// SlackLeaderboardSize is how many players the /leaderboard command lists.
const SlackLeaderboardSize = 10

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// respondWithFormatted writes a notifier response, which the Slack notifier
// returns as a slack.Message.
func respondWithFormatted(w http.ResponseWriter, msg any) {
	if slackMsg, ok := msg.(slack.Message); ok {
		respondWithSlackMsg(w, slackMsg)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode response to JSON", "error", err)
	}
}

func LeaderboardCommandHandler(store club.ClubStore, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := store.PlayerTotals(r.Context(), SlackLeaderboardSize)
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			requestLog(r).Error("Failed to get player totals from store", "error", err)
			return
		}

		msg, err := notifier.FormatLeaderboardResponse(totals)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			requestLog(r).Error("Failed to format leaderboard", "error", err)
			return
		}
		respondWithFormatted(w, msg)
	}
}

func PlayerStatsCommandHandler(store club.ClubStore, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		query := strings.Join(strings.Fields(r.FormValue("text")), " ")
		if query == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		requestLog(r).Info("Received player stats command", "player", query)
		var msg any
		player, err := store.FindPlayerByName(r.Context(), query)
		if err == nil {
			var totals *club.PlayerTotals
			totals, err = store.PlayerTotalsByID(r.Context(), player.ID)
			if err == nil {
				msg, err = notifier.FormatPlayerStatsResponse(totals, query)
			}
		}
		if errors.Is(err, club.ErrNotFound) {
			requestLog(r).Warn("Could not find player", "player", query)
			msg, err = notifier.FormatPlayerNotFoundResponse(query)
		}
		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			requestLog(r).Error("Failed to format player stats", "error", err)
			return
		}
		respondWithFormatted(w, msg)
	}
}
