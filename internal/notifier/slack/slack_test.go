package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/club"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/session"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func finishedGame() session.FinishedGame {
	return session.FinishedGame{
		SessionID: "T1",
		CourtID:   2,
		CourtName: "Court 2",
		Winners: []session.Slot{
			{PlayerID: "P1", Name: "Anna One", Rating: 900},
			{PlayerID: "P2", Name: "Bo Two", Rating: 500},
		},
		Losers: []session.Slot{
			{PlayerID: "P3", Name: "Carl Three", Rating: 200},
			{PlayerID: "P4", Name: "Dina Four", Rating: 700},
		},
		DurationMs: (12*time.Minute + 5*time.Second).Milliseconds(),
		FinishedAt: time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC),
	}
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestSendMessage_Offline(t *testing.T) {
	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(nil, "C123", metrics).Offline()

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	_, _, err := notifier.sendMessage(slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestSendGameResult_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}
	notifier := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	require.NoError(t, notifier.SendGameResult(finishedGame(), false))
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendGameResult")
}

func TestSendPersistenceWarning_DryRunSkipsAPI(t *testing.T) {
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			t.Fatal("PostMessageContext must not be called in dry-run mode")
			return "", "", nil
		},
	}
	notifier := NewNotifierWithAPI(api, "C123", metrics.NewMock())
	require.NoError(t, notifier.SendPersistenceWarning("T1", true))
}

func TestFormatGameResult(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatGameResult(finishedGame())
	require.Len(t, msg.Blocks.BlockSet, 3, "Expected 3 blocks")

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "🏸 Game finished on Court 2 🏸", header.Text.Text)

	result, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok, "Second block should be a SectionBlock")
	assert.Equal(t, "Winners: 🔴 Anna One & 🟡 Bo Two\nLosers: 🔵 Carl Three & 🟠 Dina Four", result.Text.Text)

	contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok, "Third block should be a ContextBlock")
	require.Len(t, contextBlock.ContextElements.Elements, 1)
	text, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "⏱ 12:05", text.Text)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59*time.Second + 600*time.Millisecond, "1:00"},
		{9*time.Minute + 7*time.Second, "9:07"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), "formatDuration(%v)", tt.in)
	}
}

func TestFormatLeaderboard(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	empty := client.formatLeaderboard(nil)
	require.Len(t, empty.Blocks.BlockSet, 2)

	msg := client.formatLeaderboard([]club.PlayerStats{
		{PlayerID: "P1", PlayerName: "Anna One", Rating: 900, GamesPlayed: 4, GamesWon: 3, GamesLost: 1, WinPercentage: 75},
		{PlayerID: "P3", PlayerName: "Carl Three", Rating: 200, GamesPlayed: 2, GamesWon: 0, GamesLost: 2},
	})
	require.Len(t, msg.Blocks.BlockSet, 3)
	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "1. 🥇 🔴 Anna One\n> Win %: 75.00% (3/4)", first.Text.Text)
}
