package importer_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/database"
	"github.com/mauv0809/touchline/internal/importer"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerRecords(valid, nameless int) []importer.Record {
	var records []importer.Record
	for i := 0; i < valid; i++ {
		records = append(records, importer.Record{"name": fmt.Sprintf("Player %03d", i), "position": "MF"})
	}
	for i := 0; i < nameless; i++ {
		records = append(records, importer.Record{"name": "", "position": "DF"})
	}
	return records
}

func newImporter(store importer.Store) (*importer.Importer, *metrics.Mock) {
	m := metrics.NewMock()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	return importer.New(store, m, clock), m
}

func TestImportPlayers(t *testing.T) {
	ctx := context.Background()

	t.Run("dry run validates without writing", func(t *testing.T) {
		spy := newSpyStore()
		im, m := newImporter(spy)

		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: playerRecords(150, 2), DryRun: true, SkipDuplicates: true})
		require.NoError(t, err)
		assert.Equal(t, 150, res.Records)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, "Row 151: name is required", res.Errors[0])
		assert.Equal(t, "Row 152: name is required", res.Errors[1])
		assert.Equal(t, 0, res.Batches)
		assert.Zero(t, spy.writes())
		assert.Equal(t, 2, m.ImportErrors("players"))
		assert.Zero(t, m.ImportedRecords("players"))
	})

	t.Run("live import writes batches of 100", func(t *testing.T) {
		spy := newSpyStore()
		im, m := newImporter(spy)

		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: playerRecords(150, 2), SkipDuplicates: true})
		require.NoError(t, err)
		assert.Equal(t, 150, res.Records)
		assert.Len(t, res.Errors, 2)
		assert.Equal(t, 2, res.Batches)
		require.Len(t, spy.PlayerBatches, 2)
		assert.Len(t, spy.PlayerBatches[0], 100)
		assert.Len(t, spy.PlayerBatches[1], 50)
		assert.Equal(t, []club.ConflictMode{club.ConflictIgnore, club.ConflictIgnore}, spy.Modes)
		assert.Equal(t, "player:player 000", spy.PlayerBatches[0][0].ExternalID)
		assert.Equal(t, 2, m.UpsertBatches("players"))
		assert.Equal(t, 150, m.ImportedRecords("players"))
		assert.Len(t, m.ImportDurations(), 1)
	})

	t.Run("team reference by external id", func(t *testing.T) {
		spy := newSpyStore()
		spy.external["teams"] = map[string]string{"team:red": "t-red"}
		im, _ := newImporter(spy)

		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: []importer.Record{
			{"name": "Ana", "team_external_id": "team:red", "jersey_number": "9"},
			{"name": "Ben", "team_external_id": "team:blue"},
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Records)
		assert.Equal(t, []string{`Row 2: team_external_id "team:blue" not found`}, res.Errors)
		require.Len(t, spy.PlayerBatches, 1)
		assert.Equal(t, "t-red", spy.PlayerBatches[0][0].TeamID)
		assert.Equal(t, []club.ConflictMode{club.ConflictUpdate}, spy.Modes)
	})
}

func TestImportBatchCount(t *testing.T) {
	for _, n := range []int{1, 100, 101, 250} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			spy := newSpyStore()
			im, _ := newImporter(spy)

			var records []importer.Record
			for i := 0; i < n; i++ {
				records = append(records, importer.Record{"name": fmt.Sprintf("Team %d", i)})
			}
			res, err := im.Import(context.Background(), importer.Request{DataType: importer.DataTeams, Records: records})
			require.NoError(t, err)
			want := (n + importer.BatchSize - 1) / importer.BatchSize
			assert.Equal(t, want, res.Batches)
			assert.Len(t, spy.TeamBatches, want)
		})
	}
}

func TestImportRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown data type", func(t *testing.T) {
		im, _ := newImporter(newSpyStore())
		_, err := im.Import(ctx, importer.Request{DataType: "referees", Records: playerRecords(1, 0)})
		assert.ErrorIs(t, err, importer.ErrUnknownDataType)
	})

	t.Run("no records", func(t *testing.T) {
		im, _ := newImporter(newSpyStore())
		_, err := im.Import(ctx, importer.Request{DataType: importer.DataTeams})
		assert.ErrorIs(t, err, importer.ErrNoRecords)
	})

	t.Run("every record invalid", func(t *testing.T) {
		spy := newSpyStore()
		im, _ := newImporter(spy)
		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: playerRecords(0, 3)})
		assert.ErrorIs(t, err, importer.ErrAllRecordsInvalid)
		require.NotNil(t, res)
		assert.Len(t, res.Errors, 3)
		assert.Zero(t, spy.writes())
	})

	t.Run("match rows", func(t *testing.T) {
		spy := newSpyStore()
		spy.existing["teams"] = map[string]bool{"red": true, "black": true}
		im, _ := newImporter(spy)
		res, err := im.Import(ctx, importer.Request{DataType: importer.DataMatches, DryRun: true, Records: []importer.Record{
			{"match_date": "2024-09-03", "home_team_id": "red", "away_team_id": "black", "home_score": "2", "away_score": "1"},
			{"match_date": "2024-09-10", "home_team_id": "red", "away_team_id": "red"},
			{"match_date": "2024-09-17", "home_team_id": "red", "match_type": "external", "home_score": "x"},
			{"match_date": "2024-09-24"},
		}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Records)
		require.Len(t, res.Errors, 3)
		assert.Contains(t, res.Errors[0], "Row 2: away_team_id must differ")
		assert.Contains(t, res.Errors[1], "Row 3: home_score must be a whole number")
		assert.Contains(t, res.Errors[2], "Row 4: home_team_id or home_team_external_id is required")
	})
}

func TestImportDuplicates(t *testing.T) {
	ctx := context.Background()
	records := []importer.Record{
		{"external_id": "p-1", "name": "Ana"},
		{"external_id": "p-1", "name": "Ana Second"},
	}

	t.Run("skip keeps the first row", func(t *testing.T) {
		spy := newSpyStore()
		im, _ := newImporter(spy)
		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: records, SkipDuplicates: true})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Records)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, "Ana", spy.PlayerBatches[0][0].Name)
	})

	t.Run("update keeps the last row", func(t *testing.T) {
		spy := newSpyStore()
		im, _ := newImporter(spy)
		_, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: records})
		require.NoError(t, err)
		require.Len(t, spy.PlayerBatches[0], 1)
		assert.Equal(t, "Ana Second", spy.PlayerBatches[0][0].Name)
	})

	t.Run("at most one stored row", func(t *testing.T) {
		db, teardown, err := database.InitDB(":memory:", "", "")
		require.NoError(t, err)
		t.Cleanup(teardown)
		clubs := club.New(db, nil)
		im, _ := newImporter(importer.NewStore(clubs, matchsheet.NewStore(db, nil)))

		for i := 0; i < 2; i++ {
			_, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, Records: records, SkipDuplicates: true})
			require.NoError(t, err)
		}
		players, err := clubs.ListPlayers(ctx)
		require.NoError(t, err)
		require.Len(t, players, 1)
		assert.Equal(t, "Ana", players[0].Name)
	})
}

func TestImportNaturalKeys(t *testing.T) {
	ctx := context.Background()
	setup := func(t *testing.T) (club.ClubStore, *importer.Importer) {
		db, teardown, err := database.InitDB(":memory:", "", "")
		require.NoError(t, err)
		t.Cleanup(teardown)
		clubs := club.New(db, nil)
		im, _ := newImporter(importer.NewStore(clubs, matchsheet.NewStore(db, nil)))
		return clubs, im
	}

	t.Run("re-import finds a team created by hand", func(t *testing.T) {
		clubs, im := setup(t)
		require.NoError(t, clubs.CreateTeam(ctx, &club.Team{Name: "Red"}))

		_, err := im.Import(ctx, importer.Request{DataType: importer.DataTeams, Records: []importer.Record{{"name": "Red"}}, SkipDuplicates: true})
		require.NoError(t, err)

		teams, err := clubs.ListTeams(ctx)
		require.NoError(t, err)
		assert.Len(t, teams, 1)
	})

	t.Run("re-import finds a match created by hand", func(t *testing.T) {
		clubs, im := setup(t)
		red := &club.Team{Name: "Red"}
		black := &club.Team{Name: "Black"}
		require.NoError(t, clubs.CreateTeam(ctx, red))
		require.NoError(t, clubs.CreateTeam(ctx, black))
		require.NoError(t, clubs.CreateMatch(ctx, &club.Match{MatchDate: "2024-09-03", HomeTeamID: red.ID, AwayTeamID: black.ID}))

		_, err := im.Import(ctx, importer.Request{DataType: importer.DataMatches, Records: []importer.Record{
			{"match_date": "2024-09-03", "home_team_external_id": red.ExternalID, "away_team_id": black.ID, "home_score": "1"},
		}})
		require.NoError(t, err)

		matches, err := clubs.ListMatches(ctx)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, 1, matches[0].HomeScore)
	})

	t.Run("namesakes in different teams are kept apart", func(t *testing.T) {
		clubs, im := setup(t)
		red := &club.Team{Name: "Red"}
		black := &club.Team{Name: "Black"}
		require.NoError(t, clubs.CreateTeam(ctx, red))
		require.NoError(t, clubs.CreateTeam(ctx, black))

		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayers, SkipDuplicates: true, Records: []importer.Record{
			{"name": "Alex", "team_id": red.ID},
			{"name": "Alex", "team_id": black.ID},
			{"name": "alex ", "team_id": red.ID},
		}})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Records)
		assert.Equal(t, 1, res.Skipped)

		players, err := clubs.ListPlayers(ctx)
		require.NoError(t, err)
		assert.Len(t, players, 2)
	})
}

func TestImportPlayerStats(t *testing.T) {
	ctx := context.Background()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	clubs := club.New(db, nil)
	sheets := matchsheet.NewStore(db, nil)
	im, m := newImporter(importer.NewStore(clubs, sheets))

	teams := "external_id,name,team_type\nteam:red,Red,internal\nteam:black,Black,internal\n"
	players := "external_id,name,team_external_id\np-ana,Ana,team:red\np-ben,Ben,team:black\np-cal,Cal,\n"
	matches := "external_id,match_date,home_team_external_id,away_team_external_id,home_score,away_score\nm-1,2024-09-03,team:red,team:black,2,1\n"
	for _, step := range []struct {
		dataType importer.DataType
		body     string
	}{{importer.DataTeams, teams}, {importer.DataPlayers, players}, {importer.DataMatches, matches}} {
		recs, err := importer.ReadCSV(strings.NewReader(step.body))
		require.NoError(t, err)
		_, err = im.Import(ctx, importer.Request{DataType: step.dataType, Records: recs})
		require.NoError(t, err)
	}

	stats := "player_external_id,match_external_id,team_external_id,goals,assists,own_goals,minutes_played,xg\n" +
		"p-ana,m-1,,2,0,0,90,1.3\n" +
		"p-ben,m-1,team:red,0,1,1,45,\n" +
		"p-cal,m-1,,1,0,0,30,\n" +
		"p-ghost,m-1,,1,0,0,30,\n"
	recs, err := importer.ReadCSV(strings.NewReader(stats))
	require.NoError(t, err)

	t.Run("dry run", func(t *testing.T) {
		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayerStats, Records: recs, DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Records)
		assert.Equal(t, []string{`Row 4: player_external_id "p-ghost" not found`}, res.Errors)

		match, err := clubs.ResolveExternalIDs(ctx, "matches", []string{"m-1"})
		require.NoError(t, err)
		rows, err := sheets.ListStats(ctx, match["m-1"])
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("live derives assignments", func(t *testing.T) {
		res, err := im.Import(ctx, importer.Request{DataType: importer.DataPlayerStats, Records: recs})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Records)
		assert.Equal(t, 1, res.Batches)

		ids, err := clubs.ResolveExternalIDs(ctx, "players", []string{"p-ana", "p-ben", "p-cal"})
		require.NoError(t, err)
		teamIDs, err := clubs.ResolveExternalIDs(ctx, "teams", []string{"team:red"})
		require.NoError(t, err)
		match, err := clubs.ResolveExternalIDs(ctx, "matches", []string{"m-1"})
		require.NoError(t, err)

		assignments, err := sheets.ListAssignments(ctx, match["m-1"])
		require.NoError(t, err)
		byPlayer := map[string]string{}
		for _, a := range assignments {
			byPlayer[a.PlayerID] = a.TeamID
		}
		assert.Equal(t, map[string]string{ids["p-ana"]: teamIDs["team:red"], ids["p-ben"]: teamIDs["team:red"]}, byPlayer)

		rows, err := sheets.ListStats(ctx, match["m-1"])
		require.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, 1, m.UpsertBatches("player_match_assignments"))
		assert.Equal(t, 1, m.UpsertBatches("player_match_stats"))
	})
}
