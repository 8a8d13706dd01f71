package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/processor"
)

// PushMessage is the envelope Pub/Sub push subscriptions POST.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

func readPushData(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		requestLog(r).Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return nil, false
	}

	var msg PushMessage
	if err := json.Unmarshal(bodyBytes, &msg); err != nil {
		requestLog(r).Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}

	rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
	if err != nil {
		requestLog(r).Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return nil, false
	}
	requestLog(r).Debug("Received push message", "subscription", msg.Subscription, "messageID", msg.Message.MessageID)
	return rawData, true
}

// MatchStatsSavedHandler sends the match report for a match-stats-saved event.
// Events for matches that no longer exist are acknowledged so they are not redelivered.
func MatchStatsSavedHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, ok := readPushData(w, r)
		if !ok {
			return
		}
		err := proc.HandleMatchStatsSaved(r.Context(), rawData, IsDryRunFromContext(r))
		switch {
		case err == nil:
		case errors.Is(err, club.ErrNotFound), errors.Is(err, matchsheet.ErrMatchNotFound):
			requestLog(r).Warn("Dropping event for unknown match", "error", err)
		case errors.Is(err, processor.ErrInvalidEvent):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			requestLog(r).Error("Failed to process match stats event", "error", err)
			http.Error(w, "Failed to process event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// PostLeaderboardHandler pushes the leaderboard to the club channel.
func PostLeaderboardHandler(proc *processor.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := proc.PostLeaderboard(r.Context(), IsDryRunFromContext(r)); err != nil {
			requestLog(r).Error("Failed to post leaderboard", "error", err)
			http.Error(w, "Failed to post leaderboard", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
