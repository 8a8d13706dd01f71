package procedures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUnavailable is returned when no analytics database is configured.
	ErrUnavailable      = errors.New("analytics database not configured")
	ErrUnknownProcedure = errors.New("unknown procedure")
)

// The hosted aggregation functions this service knows how to call.
const (
	InternalTeamStatistics    = "get_internal_team_statistics"
	ClubTeamStatistics        = "get_club_team_statistics"
	PlayerAllTeamsImpact      = "get_player_all_teams_impact"
	PlayerTeamCombinations    = "get_player_team_combinations"
	PlayerCombinations        = "get_player_combinations"
	SimplifiedLeaderboards    = "get_simplified_leaderboards"
	TeamPerformanceWithPlayer = "get_team_performance_with_player"
)

var known = map[string]bool{
	InternalTeamStatistics:    true,
	ClubTeamStatistics:        true,
	PlayerAllTeamsImpact:      true,
	PlayerTeamCombinations:    true,
	PlayerCombinations:        true,
	SimplifiedLeaderboards:    true,
	TeamPerformanceWithPlayer: true,
}

var argName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Known reports whether name is one of the callable procedures.
func Known(name string) bool {
	return known[name]
}

// NamedArg is passed to the procedure as name => value.
type NamedArg struct {
	Name  string
	Value any
}

// Caller runs a stored procedure and decodes its rows, as a JSON array, into dest.
type Caller interface {
	Call(ctx context.Context, name string, args []NamedArg, dest any) error
}

type pgCaller struct {
	pool *pgxpool.Pool
}

// New connects to the analytics database. The returned teardown closes the pool.
func New(ctx context.Context, databaseURL string) (Caller, func(), error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create analytics pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to connect to analytics database: %w", err)
	}
	return &pgCaller{pool: pool}, pool.Close, nil
}

// BuildQuery renders the SELECT for a procedure call. Rows are aggregated into
// one JSON array so any result shape can be decoded by the caller.
func BuildQuery(name string, args []NamedArg) (string, []any, error) {
	if !Known(name) {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, name)
	}
	parts := make([]string, len(args))
	values := make([]any, len(args))
	for i, a := range args {
		if !argName.MatchString(a.Name) {
			return "", nil, fmt.Errorf("invalid argument name %q for %s", a.Name, name)
		}
		parts[i] = fmt.Sprintf("%s => $%d", a.Name, i+1)
		values[i] = a.Value
	}
	query := fmt.Sprintf("SELECT coalesce(json_agg(t), '[]'::json) FROM %s(%s) t", name, strings.Join(parts, ", "))
	return query, values, nil
}

func (c *pgCaller) Call(ctx context.Context, name string, args []NamedArg, dest any) error {
	query, values, err := BuildQuery(name, args)
	if err != nil {
		return err
	}
	var raw []byte
	if err := c.pool.QueryRow(ctx, query, values...).Scan(&raw); err != nil {
		log.Error("Procedure call failed", "error", err, "procedure", name)
		return fmt.Errorf("failed to call %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", name, err)
	}
	return nil
}

type unavailable struct{}

// Unavailable returns a Caller that fails every call with ErrUnavailable.
func Unavailable() Caller {
	return unavailable{}
}

func (unavailable) Call(context.Context, string, []NamedArg, any) error {
	return ErrUnavailable
}
