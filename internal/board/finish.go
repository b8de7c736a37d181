package board

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/session"
	"golang.org/x/sync/errgroup"
)

// Finish resolves the game on a court in favour of winner. Both teams go back
// to the tail of the queue, winners first. The finished game is published for
// stats and notifications; in dry-run mode, or when publishing fails, it is
// handled in this process instead.
func (b *Board) Finish(ctx context.Context, sessionID string, courtID int, winner session.Half, dryRun bool) (Outcome, error) {
	var game session.FinishedGame
	out, err := b.apply(ctx, sessionID, dryRun, func(e *session.Engine, out *Outcome) (bool, error) {
		res, err := e.FinishGame(courtID, winner)
		if err != nil {
			return false, err
		}
		for _, team := range [][]session.Slot{res.Winners, res.Losers} {
			for _, s := range team {
				if _, err := e.Enqueue(s.PlayerID, session.EndEnd); err != nil {
					log.Warn("Failed to requeue player after game", "session_id", sessionID, "player_id", s.PlayerID, "error", err)
				}
			}
		}
		game = session.FinishedGame{
			ID:         uuid.NewString(),
			SessionID:  sessionID,
			CourtID:    res.CourtID,
			CourtName:  res.CourtName,
			Winners:    res.Winners,
			Losers:     res.Losers,
			DurationMs: res.Duration.Milliseconds(),
			FinishedAt: b.now(),
		}
		out.Game = &game
		b.metrics.IncGamesFinished()
		b.metrics.ObserveGameDuration(res.Duration.Seconds())
		return true, nil
	})
	if err != nil {
		return Outcome{}, err
	}

	b.dispatch(ctx, game, dryRun)
	return out, nil
}

func (b *Board) dispatch(ctx context.Context, game session.FinishedGame, dryRun bool) {
	if !dryRun && b.pubsub != nil {
		err := b.pubsub.SendMessage(pubsub.EventGameFinished, game)
		if err == nil {
			return
		}
		log.Warn("Failed to publish finished game, handling inline", "session_id", game.SessionID, "court", game.CourtID, "error", err)
	}
	if err := b.HandleGameFinished(ctx, game, dryRun); err != nil {
		log.Error("Failed to handle finished game", "session_id", game.SessionID, "court", game.CourtID, "error", err)
	}
}

// HandleGameFinished records the result for the leaderboard and announces it.
// Both run concurrently; the first error is returned.
func (b *Board) HandleGameFinished(ctx context.Context, game session.FinishedGame, dryRun bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := b.stats.RecordGameResult(gctx, game.ID, slotIDs(game.Winners), slotIDs(game.Losers)); err != nil {
			return fmt.Errorf("failed to record game result: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := b.notifier.SendGameResult(game, dryRun); err != nil {
			return fmt.Errorf("failed to send game result: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Finished game handled", "session_id", game.SessionID, "court", game.CourtID, "dry_run", dryRun)
	return nil
}

// ConsumeGameFinished decodes a published finished game and handles it. It is
// the subscriber used with the inline pubsub client.
func (b *Board) ConsumeGameFinished(ctx context.Context, data []byte) error {
	var game session.FinishedGame
	if err := b.pubsub.ProcessMessage(data, &game); err != nil {
		return err
	}
	return b.HandleGameFinished(ctx, game, false)
}

func slotIDs(slots []session.Slot) []string {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.PlayerID)
	}
	return ids
}
