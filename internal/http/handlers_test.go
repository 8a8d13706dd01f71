package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/analytics"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/config"
	"github.com/mauv0809/touchline/internal/database"
	"github.com/mauv0809/touchline/internal/http/handlers"
	"github.com/mauv0809/touchline/internal/importer"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/notifier"
	"github.com/mauv0809/touchline/internal/procedures"
	"github.com/mauv0809/touchline/internal/processor"
	"github.com/mauv0809/touchline/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

type testEnv struct {
	server   *Server
	store    club.ClubStore
	notifier *notifier.Mock
	events   *pubsub.MockPubSubClient
	metrics  *metrics.Mock
}

// setupTestServer wires the real router to an in-memory database and mock clients.
func setupTestServer(t *testing.T, caller procedures.Caller, slackSigningSecret string) *testEnv {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	clock := clockwork.NewFakeClockAt(time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC))
	clubStore := club.New(db, clock)
	sheets := matchsheet.NewStore(db, clock)
	metricsMock := metrics.NewMock()
	events := pubsub.NewMock()
	notif := notifier.NewMock()
	workflow := matchsheet.NewService(clubStore, sheets, events, metricsMock, clock)

	reg := prometheus.NewRegistry()
	metrics.NewService(reg)

	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}
	server := NewServer(Deps{
		Store:          clubStore,
		Sheets:         sheets,
		Workflow:       workflow,
		Importer:       importer.New(importer.NewStore(clubStore, sheets), metricsMock, clock),
		Analytics:      analytics.New(caller, metricsMock, clock),
		Notifier:       notif,
		Processor:      processor.New(workflow, clubStore, notif, pubsub.NewDisabled()),
		MetricsHandler: metrics.NewMetricsHandler(reg),
		Cfg:            cfg,
	})
	return &testEnv{server: server, store: clubStore, notifier: notif, events: events, metrics: metricsMock}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req := httptest.NewRequest(http.MethodPost, targetURL, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func TestHealthCheckHandler(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")

	rr := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")

	rr := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTeamRoutes(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")

	t.Run("create", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/admin/teams", map[string]any{"name": "Red", "team_type": "internal"})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		team := decodeBody[club.Team](t, rr)
		assert.NotEmpty(t, team.ID)

		page := env.do(t, http.MethodGet, "/api/teams/"+team.ID, nil)
		require.Equal(t, http.StatusOK, page.Code)
		body := decodeBody[map[string]json.RawMessage](t, page)
		assert.Contains(t, body, "record")
		assert.Contains(t, body, "players")
	})

	t.Run("dry run does not persist", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/admin/teams?dry_run=true", map[string]any{"name": "Ghosts"})
		require.Equal(t, http.StatusOK, rr.Code)

		teams, err := env.store.ListTeams(context.Background())
		require.NoError(t, err)
		for _, team := range teams {
			assert.NotEqual(t, "Ghosts", team.Name)
		}
	})

	t.Run("validation", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/admin/teams", map[string]any{"name": " ", "founded_year": 1500})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody[map[string]any](t, rr)
		assert.Equal(t, "validation failed", resp["error"])
		assert.Len(t, resp["fields"], 2)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/teams", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown team", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/teams/nope", nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, "/api/admin/teams/nope", map[string]any{"name": "X"}).Code)
	})
}

func TestAdminReferences(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")
	red, _, _, _, match := seedMatch(t, env.store)

	for _, dryRun := range []bool{false, true} {
		suffix := ""
		if dryRun {
			suffix = "?dry_run=true"
		}
		t.Run(fmt.Sprintf("dry run %v", dryRun), func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/admin/players"+suffix, map[string]any{"name": "Zed", "team_id": "no-such-team"})
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			resp := decodeBody[handlers.ErrorResponse](t, rr)
			assert.Equal(t, []string{`team_id team "no-such-team" not found`}, resp.Fields)

			rr = env.do(t, http.MethodPost, "/api/admin/matches"+suffix, map[string]any{
				"match_date": "2024-09-10", "home_team_id": "ghost-a", "away_team_id": "ghost-b",
			})
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Len(t, decodeBody[handlers.ErrorResponse](t, rr).Fields, 2)

			rr = env.do(t, http.MethodPut, "/api/admin/matches/"+match.ID+suffix, map[string]any{
				"match_date": match.MatchDate, "home_team_id": red.ID, "away_team_id": "ghost",
			})
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			rr = env.do(t, http.MethodPut, "/api/admin/players/nope"+suffix, map[string]any{"name": "X"})
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}

	players, err := env.store.ListPlayers(context.Background())
	require.NoError(t, err)
	for _, p := range players {
		assert.NotEqual(t, "Zed", p.Name)
	}
}

// seedMatch creates two squads, two players and a friendly between them.
func seedMatch(t *testing.T, store club.ClubStore) (red, black *club.Team, ana, ben *club.Player, match *club.Match) {
	t.Helper()
	ctx := context.Background()
	red, black = &club.Team{Name: "Red"}, &club.Team{Name: "Black"}
	require.NoError(t, store.CreateTeam(ctx, red))
	require.NoError(t, store.CreateTeam(ctx, black))
	ana = &club.Player{Name: "Ana Silva", TeamID: red.ID}
	ben = &club.Player{Name: "Ben", TeamID: black.ID}
	require.NoError(t, store.CreatePlayer(ctx, ana))
	require.NoError(t, store.CreatePlayer(ctx, ben))
	match = &club.Match{MatchDate: "2024-09-14", HomeTeamID: red.ID, AwayTeamID: black.ID, HomeScore: 2, AwayScore: 1}
	require.NoError(t, store.CreateMatch(ctx, match))
	return red, black, ana, ben, match
}

func TestMatchWorkflowRoutes(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")
	red, black, ana, ben, match := seedMatch(t, env.store)
	base := "/api/admin/matches/" + match.ID

	rr := env.do(t, http.MethodPut, base+"/assignments", map[string]any{
		"assignments": []map[string]any{
			{"player_id": ana.ID, "participated": true},
			{"player_id": ben.ID, "participated": true, "team_id": black.ID},
		},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 2, decodeBody[matchsheet.SaveAssignmentsResult](t, rr).Saved)

	sheet := env.do(t, http.MethodGet, base+"/stats", nil)
	require.Equal(t, http.StatusOK, sheet.Code)
	stats := decodeBody[matchsheet.StatSheet](t, sheet)
	require.Len(t, stats.Home, 1)
	assert.Equal(t, ana.ID, stats.Home[0].PlayerID)

	rr = env.do(t, http.MethodPut, base+"/stats", map[string]any{
		"stats": []map[string]any{{"player_id": ana.ID, "goals": "2", "assists": "1", "own_goals": ""}},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decodeBody[matchsheet.SaveStatsResult](t, rr).Saved)
	published := env.events.Published()
	require.Len(t, published, 1)
	assert.Equal(t, pubsub.EventMatchStatsSaved, published[0].Topic)

	t.Run("roster reassignment", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, base+"/roster/"+ben.ID, map[string]any{"team_id": red.ID})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		roster := decodeBody[[]matchsheet.RosterLine](t, rr)
		require.Len(t, roster, 2)
		for _, line := range roster {
			assert.Equal(t, red.ID, line.TeamID)
		}
	})

	t.Run("roster rejects unknown team", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, base+"/roster/"+ben.ID, map[string]any{"team_id": "nope"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad counts", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, base+"/stats", map[string]any{
			"stats": []map[string]any{{"player_id": ana.ID, "goals": "-1"}},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing player id", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, base+"/assignments", map[string]any{
			"assignments": []map[string]any{{"participated": true}},
		})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeBody[map[string]any](t, rr)
		assert.Equal(t, []any{"assignments[0].player_id failed required rule"}, resp["fields"])
	})

	t.Run("unknown match", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/admin/matches/nope/roster", nil).Code)
	})

	t.Run("player page", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/players/"+ana.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		page := decodeBody[struct {
			Totals  club.PlayerTotals            `json:"totals"`
			Matches []matchsheet.PlayerMatchLine `json:"matches"`
		}](t, rr)
		assert.Equal(t, 2, page.Totals.Goals)
		require.Len(t, page.Matches, 1)
		assert.Equal(t, "2024-09-14", page.Matches[0].MatchDate)
	})

	t.Run("leaderboard", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/leaderboard?limit=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		totals := decodeBody[[]club.PlayerTotals](t, rr)
		require.Len(t, totals, 1)
		assert.Equal(t, "Ana Silva", totals[0].PlayerName)

		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/leaderboard?limit=abc", nil).Code)
	})
}

func pushBody(t *testing.T, event any) map[string]any {
	t.Helper()
	payload, err := msgpack.Marshal(event)
	require.NoError(t, err)
	return map[string]any{
		"subscription": "projects/p/subscriptions/s",
		"message":      map[string]any{"data": base64.StdEncoding.EncodeToString(payload), "messageId": "1"},
	}
}

func TestMatchStatsSavedEvent(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")
	_, _, _, _, match := seedMatch(t, env.store)

	t.Run("sends the match report", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/events/match-stats-saved", pushBody(t, pubsub.MatchStatsSaved{MatchID: match.ID, Saved: 1}))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		reports := env.notifier.MatchReports()
		require.Len(t, reports, 1)
		assert.Equal(t, "Red", reports[0].HomeTeam)
		assert.Equal(t, "Black", reports[0].AwayTeam)
	})

	t.Run("unknown match is acknowledged", func(t *testing.T) {
		env.notifier.Reset()
		rr := env.do(t, http.MethodPost, "/events/match-stats-saved", pushBody(t, pubsub.MatchStatsSaved{MatchID: "gone"}))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, env.notifier.MatchReports())
	})

	t.Run("missing match id", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/events/match-stats-saved", pushBody(t, pubsub.MatchStatsSaved{}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad envelope", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/events/match-stats-saved", map[string]any{"message": map[string]any{"data": "%%%"}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPostLeaderboardRoute(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")

	rr := env.do(t, http.MethodPost, "/api/admin/leaderboard/post?dry_run=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, env.notifier.Leaderboards(), 1)
}

func TestImportHandler(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), "")

	t.Run("csv text with one invalid row", func(t *testing.T) {
		csv := "name,position\nAna,FW\n,DF\nBen,GK\n"
		rr := env.do(t, http.MethodPost, "/api/import", map[string]any{"dataType": "players", "data": csv})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeBody[map[string]any](t, rr)
		assert.EqualValues(t, 2, resp["records"])
		assert.Len(t, resp["errors"], 1)
		assert.Contains(t, resp["message"], "Successfully imported")

		players, err := env.store.ListPlayers(context.Background())
		require.NoError(t, err)
		assert.Len(t, players, 2)
	})

	t.Run("parsed rows dry run", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/import", map[string]any{
			"dataType": "teams",
			"data":     []map[string]any{{"name": "Blue", "founded_year": 1990}},
			"dryRun":   true,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decodeBody[map[string]any](t, rr)
		assert.EqualValues(t, 1, resp["records"])
		assert.Contains(t, resp["message"], "Dry run")

		teams, err := env.store.ListTeams(context.Background())
		require.NoError(t, err)
		assert.Empty(t, teams)
	})

	t.Run("all rows invalid", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/import", map[string]any{"dataType": "players", "data": "name\n\n\"\"\n"})
		require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		resp := decodeBody[map[string]any](t, rr)
		assert.EqualValues(t, 0, resp["records"])
		assert.NotEmpty(t, resp["errors"])
	})

	t.Run("unknown data type", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/import", map[string]any{"dataType": "referees", "data": "name\nKim\n"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing data", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/import", map[string]any{"dataType": "teams"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAnalyticsRoutes(t *testing.T) {
	t.Run("backend not configured", func(t *testing.T) {
		env := setupTestServer(t, procedures.Unavailable(), "")
		rr := env.do(t, http.MethodGet, "/api/analytics/leaderboards", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("leaderboards", func(t *testing.T) {
		caller := procedures.NewMock()
		caller.Responses[procedures.SimplifiedLeaderboards] = `[
			{"player_id":"p1","player_name":"Ana","matches_played":4,"weighted_goals":2.5,"weighted_assists":0,"clean_sheet_percentage":50}
		]`
		env := setupTestServer(t, caller, "")

		rr := env.do(t, http.MethodGet, "/api/analytics/leaderboards?limit=3", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		boards := decodeBody[analytics.Leaderboards](t, rr)
		require.Len(t, boards.WeightedGoals, 1)
		assert.Empty(t, boards.WeightedAssists)
		require.Len(t, caller.CallsTo(procedures.SimplifiedLeaderboards), 1)
	})

	t.Run("static team routes win over ids", func(t *testing.T) {
		caller := procedures.NewMock()
		env := setupTestServer(t, caller, "")

		rr := env.do(t, http.MethodGet, "/api/analytics/teams/internal", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Len(t, caller.CallsTo(procedures.InternalTeamStatistics), 1)
	})
}

func TestSlackCommands(t *testing.T) {
	env := setupTestServer(t, procedures.NewMock(), testSlackSigningSecret)
	seedMatch(t, env.store)

	t.Run("leaderboard", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	t.Run("player found", func(t *testing.T) {
		form := url.Values{"text": {"ana"}}
		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Ana Silva")
	})

	t.Run("player not found", func(t *testing.T) {
		form := url.Values{"text": {"zed"}}
		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"zed"}, env.notifier.NotFoundQueries)
	})

	t.Run("missing text", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		form := url.Values{"text": {"ana"}}
		req := createSlackCommandRequest(t, "/slack/command/player-stats", form, "wrong-secret")
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
