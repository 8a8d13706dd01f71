package processor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/touchline/internal/pubsub"
)

// New creates a new Processor.
func New(reports Reporter, store Store, notifier Notifier, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		reports:  reports,
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
	}
}

// HandleMatchStatsSaved decodes a match-stats-saved payload and sends the match report.
func (p *Processor) HandleMatchStatsSaved(ctx context.Context, data []byte, dryRun bool) error {
	var event pubsub.MatchStatsSaved
	if err := p.pubsub.ProcessMessage(data, &event); err != nil {
		return fmt.Errorf("%w: failed to decode %s payload: %v", ErrInvalidEvent, pubsub.EventMatchStatsSaved, err)
	}
	if event.MatchID == "" {
		return fmt.Errorf("%w: missing match id", ErrInvalidEvent)
	}
	log.Info("Processing match stats event", "matchID", event.MatchID, "saved", event.Saved)
	return p.NotifyMatchReport(ctx, event.MatchID, dryRun)
}

// NotifyMatchReport builds the report for a match and posts it.
func (p *Processor) NotifyMatchReport(ctx context.Context, matchID string, dryRun bool) error {
	report, err := p.reports.Report(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to build match report: %w", err)
	}
	if err := p.notifier.SendMatchReport(report, dryRun); err != nil {
		log.Error("Failed to send match report", "error", err, "matchID", matchID)
		return err
	}
	log.Info("Match report sent", "matchID", matchID, "lines", len(report.Lines), "dryRun", dryRun)
	return nil
}

// PostLeaderboard pushes the current top scorers to the club channel.
func (p *Processor) PostLeaderboard(ctx context.Context, dryRun bool) error {
	totals, err := p.store.PlayerTotals(ctx, LeaderboardSize)
	if err != nil {
		return fmt.Errorf("failed to get player totals: %w", err)
	}
	if err := p.notifier.SendLeaderboard(totals, dryRun); err != nil {
		log.Error("Failed to send leaderboard", "error", err)
		return err
	}
	log.Info("Leaderboard posted", "players", len(totals), "dryRun", dryRun)
	return nil
}
