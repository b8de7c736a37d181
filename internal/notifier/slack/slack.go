package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/rating"
	"github.com/mauv0809/courtside/internal/session"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// bandEmoji marks each rating band in messages.
var bandEmoji = map[rating.Band]string{
	rating.BandBlue:   "🔵",
	rating.BandGreen:  "🟢",
	rating.BandYellow: "🟡",
	rating.BandOrange: "🟠",
	rating.BandRed:    "🔴",
}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	// offline forces every send into dry-run mode.
	offline bool
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

// Offline makes the notifier log messages instead of posting them. Used when
// no Slack credentials are configured.
func (s *Notifier) Offline() *Notifier {
	s.offline = true
	return s
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
	if dryRun || s.offline {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
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

func (s *Notifier) SendGameResult(game session.FinishedGame, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatGameResult(game), dryRun)
	return err
}

func (s *Notifier) SendPersistenceWarning(sessionID string, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatPersistenceWarning(sessionID), dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(stats []club.PlayerStats, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatLeaderboard(stats), dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(stats []club.PlayerStats) (any, error) {
	return s.formatLeaderboard(stats), nil
}

func teamLine(slots []session.Slot) string {
	names := make([]string, 0, len(slots))
	for _, p := range slots {
		names = append(names, fmt.Sprintf("%s %s", bandEmoji[rating.Classify(p.Rating)], p.Name))
	}
	return strings.Join(names, " & ")
}

// formatDuration renders a game length as m:ss, or h:mm:ss for long games.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// formatGameResult creates the Slack message for a finished game using Block Kit.
func (s *Notifier) formatGameResult(game session.FinishedGame) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏸 Game finished on %s 🏸", game.CourtName), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	resultText := fmt.Sprintf("Winners: %s\nLosers: %s", teamLine(game.Winners), teamLine(game.Losers))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))

	duration := time.Duration(game.DurationMs) * time.Millisecond
	contextText := fmt.Sprintf("⏱ %s", formatDuration(duration))
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatPersistenceWarning creates the message sent when the remote store could
// not be reached and a session only lives in this process.
func (s *Notifier) formatPersistenceWarning(sessionID string) slack.Message {
	text := fmt.Sprintf(":warning: The board for training *%s* could not be saved remotely. Changes are kept on this server only and will be lost if it restarts.", sessionID)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(stats []club.PlayerStats) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(stats) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No stats available yet. Go play some games!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, stat := range stats {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s %s\n> Win %%: %.2f%% (%d/%d)",
			rank,
			medal,
			bandEmoji[rating.Classify(stat.Rating)],
			stat.PlayerName,
			stat.WinPercentage,
			stat.GamesWon,
			stat.GamesPlayed,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
