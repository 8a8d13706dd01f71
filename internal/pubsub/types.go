package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client *pubsub.Client
}

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name.
type EventType string

const (
	EventMatchStatsSaved EventType = "match-stats-saved"
)

// MatchStatsSaved is published after the stat sheet of a match has been saved.
type MatchStatsSaved struct {
	MatchID string `msgpack:"match_id"`
	Saved   int    `msgpack:"saved"`
	SavedAt int64  `msgpack:"saved_at"`
}
