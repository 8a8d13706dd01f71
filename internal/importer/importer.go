package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
)

// New creates an Importer writing through store.
func New(store Store, m metrics.Metrics, clock clockwork.Clock) *Importer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Importer{store: store, metrics: m, clock: clock}
}

// keyed is a validated row with its dedupe key.
type keyed[T any] struct {
	key   string
	value T
}

// statRow carries the team the player played for, used to derive the assignment.
type statRow struct {
	stat   matchsheet.Stat
	teamID string
}

// Import validates every record and, unless it is a dry run, upserts the valid
// ones in batches of BatchSize. Invalid records are reported in Result.Errors;
// the import only fails as a whole when no record is valid.
func (im *Importer) Import(ctx context.Context, req Request) (*Result, error) {
	if !req.DataType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataType, req.DataType)
	}
	if len(req.Records) == 0 {
		return nil, ErrNoRecords
	}

	start := im.clock.Now()
	im.metrics.IncImportRuns(string(req.DataType))
	defer func() {
		im.metrics.ObserveImportDuration(im.clock.Since(start).Seconds())
	}()

	log.Info("Starting import", "dataType", req.DataType, "records", len(req.Records), "dryRun", req.DryRun, "skipDuplicates", req.SkipDuplicates)

	mode := club.ConflictUpdate
	if req.SkipDuplicates {
		mode = club.ConflictIgnore
	}

	switch req.DataType {
	case DataTeams:
		items, problems := im.prepareTeams(req.Records)
		return finish(ctx, im, req, "teams", items, problems, func(ctx context.Context, rows []club.Team) error {
			return im.store.UpsertTeams(ctx, rows, mode)
		})
	case DataPlayers:
		items, problems, err := im.preparePlayers(ctx, req.Records)
		if err != nil {
			return nil, err
		}
		return finish(ctx, im, req, "players", items, problems, func(ctx context.Context, rows []club.Player) error {
			return im.store.UpsertPlayers(ctx, rows, mode)
		})
	case DataMatches:
		items, problems, err := im.prepareMatches(ctx, req.Records)
		if err != nil {
			return nil, err
		}
		return finish(ctx, im, req, "matches", items, problems, func(ctx context.Context, rows []club.Match) error {
			return im.store.UpsertMatches(ctx, rows, mode)
		})
	default:
		items, problems, err := im.prepareStats(ctx, req.Records)
		if err != nil {
			return nil, err
		}
		if !req.DryRun && len(items) > 0 {
			if err := im.writeAssignments(ctx, dedupe(items, req.SkipDuplicates), mode); err != nil {
				return nil, err
			}
		}
		return finish(ctx, im, req, "player_match_stats", items, problems, func(ctx context.Context, rows []statRow) error {
			stats := make([]matchsheet.Stat, len(rows))
			for i, r := range rows {
				stats[i] = r.stat
			}
			return im.store.UpsertStats(ctx, stats, mode)
		})
	}
}

// dedupe keeps one row per key in first-seen order. With skip the first
// occurrence wins, otherwise the last one does.
func dedupe[T any](items []keyed[T], skip bool) []T {
	index := make(map[string]int, len(items))
	rows := make([]T, 0, len(items))
	for _, it := range items {
		if i, seen := index[it.key]; seen {
			if !skip {
				rows[i] = it.value
			}
			continue
		}
		index[it.key] = len(rows)
		rows = append(rows, it.value)
	}
	return rows
}

// writeInBatches calls write once per chunk of at most BatchSize rows.
func writeInBatches[T any](ctx context.Context, rows []T, write func(context.Context, []T) error, onBatch func()) (int, error) {
	batches := 0
	for start := 0; start < len(rows); start += BatchSize {
		end := min(start+BatchSize, len(rows))
		if err := write(ctx, rows[start:end]); err != nil {
			return batches, fmt.Errorf("batch %d (rows %d-%d) failed: %w", batches+1, start+1, end, err)
		}
		batches++
		onBatch()
		log.Debug("Imported batch", "batch", batches, "rows", end-start)
	}
	return batches, nil
}

func finish[T any](ctx context.Context, im *Importer, req Request, table string, items []keyed[T], problems []string, write func(context.Context, []T) error) (*Result, error) {
	dataType := string(req.DataType)
	rows := dedupe(items, req.SkipDuplicates)
	result := &Result{
		Records: len(rows),
		Errors:  problems,
		Skipped: len(items) - len(rows),
		DryRun:  req.DryRun,
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	im.metrics.AddImportErrors(dataType, len(problems))

	if len(items) == 0 {
		result.Message = fmt.Sprintf("All %d records failed validation", len(req.Records))
		log.Warn("Import rejected", "dataType", dataType, "errors", len(problems))
		return result, ErrAllRecordsInvalid
	}
	if req.DryRun {
		result.Message = fmt.Sprintf("Dry run: %d %s records valid, %d errors", len(rows), dataType, len(problems))
		log.Info("Dry run import finished", "dataType", dataType, "valid", len(rows), "errors", len(problems), "duplicates", result.Skipped)
		return result, nil
	}

	batches, err := writeInBatches(ctx, rows, write, func() { im.metrics.IncUpsertBatches(table) })
	result.Batches = batches
	if err != nil {
		log.Error("Import failed", "error", err, "dataType", dataType, "batches", batches)
		return result, err
	}
	im.metrics.AddImportedRecords(dataType, len(rows))
	result.Message = fmt.Sprintf("Successfully imported %d %s records", len(rows), dataType)
	log.Info("Import finished", "dataType", dataType, "records", len(rows), "batches", batches, "errors", len(problems))
	return result, nil
}

func (im *Importer) prepareTeams(records []Record) ([]keyed[club.Team], []string) {
	var items []keyed[club.Team]
	var problems []string
	for i, rec := range records {
		f := &fieldReader{rec: rec}
		t := club.Team{
			ExternalID:     f.str("external_id"),
			Name:           f.str("name"),
			PrimaryColor:   f.str("primary_color"),
			SecondaryColor: f.str("secondary_color"),
			TeamType:       club.TeamType(strings.ToLower(f.str("team_type"))),
			FoundedYear:    f.optInt("founded_year"),
			Description:    f.str("description"),
		}
		f.validation(club.ValidateTeam(&t))
		if len(f.problems) > 0 {
			problems = append(problems, f.message(i+1))
			continue
		}
		if t.ExternalID == "" {
			t.ExternalID = club.TeamKey(t.Name)
		}
		items = append(items, keyed[club.Team]{key: t.ExternalID, value: t})
	}
	return items, problems
}

func (im *Importer) preparePlayers(ctx context.Context, records []Record) ([]keyed[club.Player], []string, error) {
	readers := make([]*fieldReader, len(records))
	teamRefs := make([]ref, len(records))
	for i, rec := range records {
		readers[i] = &fieldReader{rec: rec}
		teamRefs[i] = readers[i].ref("teams", "team_id", "team_external_id")
	}
	res := newResolver(im.store)
	if err := res.load(ctx, teamRefs); err != nil {
		return nil, nil, err
	}

	var items []keyed[club.Player]
	var problems []string
	for i, f := range readers {
		p := club.Player{
			ExternalID:   f.str("external_id"),
			Name:         f.str("name"),
			Position:     f.str("position"),
			TeamID:       res.resolve(teamRefs[i], f),
			JerseyNumber: f.optInt("jersey_number"),
			HeightCm:     f.optFloat("height_cm"),
			WeightKg:     f.optFloat("weight_kg"),
			DominantFoot: f.str("dominant_foot"),
			BirthDate:    f.str("birth_date"),
		}
		f.validation(club.ValidatePlayer(&p))
		if len(f.problems) > 0 {
			problems = append(problems, f.message(i+1))
			continue
		}
		if p.ExternalID == "" {
			p.ExternalID = club.PlayerKey(p.Name, p.TeamID)
		}
		items = append(items, keyed[club.Player]{key: p.ExternalID, value: p})
	}
	return items, problems, nil
}

func (im *Importer) prepareMatches(ctx context.Context, records []Record) ([]keyed[club.Match], []string, error) {
	readers := make([]*fieldReader, len(records))
	homeRefs := make([]ref, len(records))
	awayRefs := make([]ref, len(records))
	for i, rec := range records {
		f := &fieldReader{rec: rec}
		readers[i] = f
		homeRefs[i] = f.ref("teams", "home_team_id", "home_team_external_id")
		awayRefs[i] = f.ref("teams", "away_team_id", "away_team_external_id")
	}
	res := newResolver(im.store)
	if err := res.load(ctx, append(append([]ref{}, homeRefs...), awayRefs...)); err != nil {
		return nil, nil, err
	}

	var items []keyed[club.Match]
	var problems []string
	for i, f := range readers {
		home, away := homeRefs[i], awayRefs[i]
		if home.empty() {
			f.problems = append(f.problems, "home_team_id or home_team_external_id is required")
		}
		m := club.Match{
			ExternalID: f.str("external_id"),
			MatchDate:  f.required("match_date"),
			HomeTeamID: res.resolve(home, f),
			AwayTeamID: res.resolve(away, f),
			HomeScore:  f.count("home_score"),
			AwayScore:  f.count("away_score"),
			Venue:      f.str("venue"),
			MatchType:  club.MatchType(strings.ToLower(f.str("match_type"))),
			Attendance: f.optInt("attendance"),
			Weather:    f.str("weather"),
			Referee:    f.str("referee"),
		}
		if len(f.problems) == 0 {
			f.validation(club.ValidateMatch(&m))
		}
		if len(f.problems) > 0 {
			problems = append(problems, f.message(i+1))
			continue
		}
		if m.ExternalID == "" {
			m.ExternalID = club.MatchKey(m.MatchDate, m.HomeTeamID, m.AwayTeamID)
		}
		items = append(items, keyed[club.Match]{key: m.ExternalID, value: m})
	}
	return items, problems, nil
}

func (im *Importer) prepareStats(ctx context.Context, records []Record) ([]keyed[statRow], []string, error) {
	readers := make([]*fieldReader, len(records))
	playerRefs := make([]ref, len(records))
	matchRefs := make([]ref, len(records))
	teamRefs := make([]ref, len(records))
	for i, rec := range records {
		f := &fieldReader{rec: rec}
		readers[i] = f
		playerRefs[i] = f.ref("players", "player_id", "player_external_id")
		matchRefs[i] = f.ref("matches", "match_id", "match_external_id")
		teamRefs[i] = f.ref("teams", "team_id", "team_external_id")
	}
	all := make([]ref, 0, len(records)*3)
	all = append(all, playerRefs...)
	all = append(all, matchRefs...)
	all = append(all, teamRefs...)
	res := newResolver(im.store)
	if err := res.load(ctx, all); err != nil {
		return nil, nil, err
	}

	var items []keyed[statRow]
	var problems []string
	var needDefault []string
	for i, f := range readers {
		if playerRefs[i].empty() {
			f.problems = append(f.problems, "player_id or player_external_id is required")
		}
		if matchRefs[i].empty() {
			f.problems = append(f.problems, "match_id or match_external_id is required")
		}
		row := statRow{
			stat: matchsheet.Stat{
				PlayerID:      res.resolve(playerRefs[i], f),
				MatchID:       res.resolve(matchRefs[i], f),
				Goals:         f.count("goals"),
				Assists:       f.count("assists"),
				OwnGoals:      f.count("own_goals"),
				MinutesPlayed: f.count("minutes_played"),
				Shots:         f.count("shots"),
				ShotsOnTarget: f.count("shots_on_target"),
				YellowCards:   f.count("yellow_cards"),
				RedCards:      f.count("red_cards"),
				Tackles:       f.count("tackles"),
				Interceptions: f.count("interceptions"),
			},
			teamID: res.resolve(teamRefs[i], f),
		}
		if xg := f.optFloat("xg"); xg != nil {
			if *xg < 0 {
				f.problems = append(f.problems, "xg must not be negative")
			}
			row.stat.XG = *xg
		}
		if row.stat.ShotsOnTarget > row.stat.Shots && f.str("shots") != "" {
			f.problems = append(f.problems, "shots_on_target must not exceed shots")
		}
		if len(f.problems) > 0 {
			problems = append(problems, f.message(i+1))
			continue
		}
		if row.teamID == "" {
			needDefault = append(needDefault, row.stat.PlayerID)
		}
		items = append(items, keyed[statRow]{key: row.stat.MatchID + "|" + row.stat.PlayerID, value: row})
	}

	if len(needDefault) > 0 {
		defaults, err := im.store.PlayerTeams(ctx, unique(needDefault))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load default teams: %w", err)
		}
		for i := range items {
			if items[i].value.teamID == "" {
				items[i].value.teamID = defaults[items[i].value.stat.PlayerID]
			}
		}
	}
	return items, problems, nil
}

// writeAssignments upserts the team assignments implied by stat rows. Rows
// without a known team get no assignment.
func (im *Importer) writeAssignments(ctx context.Context, rows []statRow, mode club.ConflictMode) error {
	assignments := make([]matchsheet.Assignment, 0, len(rows))
	for _, r := range rows {
		if r.teamID == "" {
			log.Warn("No team for imported stat row, skipping assignment", "playerID", r.stat.PlayerID, "matchID", r.stat.MatchID)
			continue
		}
		assignments = append(assignments, matchsheet.Assignment{PlayerID: r.stat.PlayerID, MatchID: r.stat.MatchID, TeamID: r.teamID})
	}
	_, err := writeInBatches(ctx, assignments, func(ctx context.Context, batch []matchsheet.Assignment) error {
		return im.store.UpsertAssignments(ctx, batch, mode)
	}, func() { im.metrics.IncUpsertBatches("player_match_assignments") })
	if err != nil {
		return fmt.Errorf("failed to write derived assignments: %w", err)
	}
	return nil
}
