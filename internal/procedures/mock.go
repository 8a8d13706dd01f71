package procedures

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

var _ Caller = (*Mock)(nil)

// Mock is a Caller returning canned JSON per procedure.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	Responses map[string]string
	Errors    map[string]error

	Calls []Call
}

// Call holds the arguments of one call to Mock.Call.
type Call struct {
	Name string
	Args []NamedArg
}

func NewMock() *Mock {
	return &Mock{
		Responses: make(map[string]string),
		Errors:    make(map[string]error),
	}
}

func (m *Mock) Call(_ context.Context, name string, args []NamedArg, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Name: name, Args: args})

	if !Known(name) {
		return fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}
	if err := m.Errors[name]; err != nil {
		return err
	}
	body, ok := m.Responses[name]
	if !ok {
		body = "[]"
	}
	return json.Unmarshal([]byte(body), dest)
}

// CallsTo returns the recorded calls for one procedure.
func (m *Mock) CallsTo(name string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
