package processor

import (
	"errors"

	"github.com/mauv0809/touchline/internal/pubsub"
)

// ErrInvalidEvent is returned for payloads that cannot be decoded or carry no match.
var ErrInvalidEvent = errors.New("invalid event")

// LeaderboardSize is the number of players posted to the channel.
const LeaderboardSize = 10

// Processor reacts to club events by sending notifications.
type Processor struct {
	reports  Reporter
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
}
