package pubsub

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Published is one message handed to the mock, kept both as the value the
// caller passed and as the msgpack payload a subscriber would receive.
type Published struct {
	Topic   EventType
	Data    any
	Payload []byte
}

// MockPubSubClient records published events and decodes payloads with msgpack.
// It is safe for concurrent use.
type MockPubSubClient struct {
	mu sync.Mutex

	// SendErr, when set, is returned by SendMessage after the call is recorded.
	SendErr error

	published []Published
	decoded   int
}

// NewMock creates a new mock PubSubClient.
func NewMock() *MockPubSubClient {
	return &MockPubSubClient{}
}

// Reset clears everything recorded so far.
func (m *MockPubSubClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = nil
	m.decoded = 0
}

func (m *MockPubSubClient) SendMessage(topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, Published{Topic: topic, Data: data, Payload: payload})
	return m.SendErr
}

func (m *MockPubSubClient) ProcessMessage(data []byte, returnValue any) error {
	m.mu.Lock()
	m.decoded++
	m.mu.Unlock()
	return msgpack.Unmarshal(data, returnValue)
}

// Published returns a copy of every recorded message.
func (m *MockPubSubClient) Published() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Published, len(m.published))
	copy(out, m.published)
	return out
}

// MatchStatsSavedEvents decodes the recorded match-stats-saved payloads.
func (m *MockPubSubClient) MatchStatsSavedEvents() []MatchStatsSaved {
	var events []MatchStatsSaved
	for _, p := range m.Published() {
		if p.Topic != EventMatchStatsSaved {
			continue
		}
		var ev MatchStatsSaved
		if err := msgpack.Unmarshal(p.Payload, &ev); err == nil {
			events = append(events, ev)
		}
	}
	return events
}

// Decoded reports how many payloads ProcessMessage handled.
func (m *MockPubSubClient) Decoded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decoded
}
