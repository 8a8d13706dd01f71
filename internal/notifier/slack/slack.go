package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/touchline/internal/club"
	"github.com/mauv0809/touchline/internal/matchsheet"
	"github.com/mauv0809/touchline/internal/metrics"
	"github.com/mauv0809/touchline/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}
	if s.channelID == "" {
		log.Warn("No Slack channel configured, skipping message")
		return "", "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendMatchReport(report *matchsheet.MatchReport, dryRun bool) error {
	msg := s.formatMatchReport(report)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(totals []club.PlayerTotals, dryRun bool) error {
	msg := s.formatLeaderboard(totals)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(totals []club.PlayerTotals) (any, error) {
	return s.formatLeaderboard(totals), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(totals *club.PlayerTotals, query string) (any, error) {
	return s.formatPlayerStats(totals, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// formatMatchReport creates the Slack message for a match whose stats were just saved.
func (s *Notifier) formatMatchReport(report *matchsheet.MatchReport) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "⚽ Match report ⚽", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	details := report.Match.MatchDate
	if report.Match.Venue != "" {
		details = fmt.Sprintf("%s at %s", details, report.Match.Venue)
	}
	details = fmt.Sprintf("%s\n%s %d - %d %s", details,
		report.HomeTeam, report.Match.HomeScore, report.Match.AwayScore, report.AwayTeam)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, true, false), nil, nil))

	// Scorers
	if len(report.Lines) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No goal contributions recorded.", true, false), nil, nil))
	} else {
		var lines []string
		for _, line := range report.Lines {
			var parts []string
			if line.Goals > 0 {
				parts = append(parts, plural(line.Goals, "goal"))
			}
			if line.Assists > 0 {
				parts = append(parts, plural(line.Assists, "assist"))
			}
			if line.OwnGoals > 0 {
				parts = append(parts, plural(line.OwnGoals, "own goal"))
			}
			name := line.PlayerName
			if line.TeamName != "" {
				name = fmt.Sprintf("%s (%s)", name, line.TeamName)
			}
			lines = append(lines, fmt.Sprintf("• %s: %s", name, strings.Join(parts, ", ")))
		}
		text := "Contributions:\n" + strings.Join(lines, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil))
	}

	if report.Match.Referee != "" {
		refText := fmt.Sprintf("Referee: %s", report.Match.Referee)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", refText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the goals/assists leaderboard.
func (s *Notifier) formatLeaderboard(totals []club.PlayerTotals) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Top Scorers 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(totals) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, t := range totals {
		rank := i + 1
		playerText := fmt.Sprintf("%d. %s %s\n> Goals: %d | Assists: %d | Matches: %d | Goals/match: %.2f",
			rank,
			medal(rank),
			t.PlayerName,
			t.Goals,
			t.Assists,
			t.MatchesPlayed,
			t.GoalsPerMatch,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display a single player's totals.
func (s *Notifier) formatPlayerStats(t *club.PlayerTotals, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("⚽ Stats for %s ⚽", t.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Matches*: %d\n> *Goals*: %d (%.2f per match)\n> *Assists*: %d\n> *Own goals*: %d",
		t.MatchesPlayed,
		t.Goals,
		t.GoalsPerMatch,
		t.Assists,
		t.OwnGoals,
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	if !strings.EqualFold(strings.TrimSpace(query), t.PlayerName) {
		ctxText := fmt.Sprintf("Best match for \"%s\"", query)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", ctxText, false, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player's stats are not found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
