package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-telegram/bot"

	"github.com/quietroom/quiet-room-bot/internal/format"
	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/types"
)

// BroadcastStats is the outcome of one fan-out.
type BroadcastStats struct {
	Total   int
	Success int
	Blocked int
	Errors  int
}

// Broadcaster copies one admin message to every registered user, pacing
// sends to stay under the Telegram rate limit.
type Broadcaster struct {
	botClient *bot.Bot
	users     types.UserStore
	delay     time.Duration
}

func NewBroadcaster(botClient *bot.Bot, users types.UserStore, delay time.Duration) *Broadcaster {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Broadcaster{botClient: botClient, users: users, delay: delay}
}

// Run copies the message at (fromChatID, messageID) to all users. The
// progress message at (progressChatID, progressMessageID) is edited every
// 50 recipients; edit failures there are ignored.
func (b *Broadcaster) Run(ctx context.Context, fromChatID int64, messageID int, progressChatID int64, progressMessageID int) (BroadcastStats, error) {
	users, err := b.users.GetAllUsers()
	if err != nil {
		return BroadcastStats{}, err
	}

	stats := BroadcastStats{Total: len(users)}
	if stats.Total == 0 {
		return stats, nil
	}

	log.Printf("Broadcaster: sending to %s", format.UserCount(stats.Total))

	for i, u := range users {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		_, err := b.botClient.CopyMessage(ctx, &bot.CopyMessageParams{
			ChatID:     u.UserID,
			FromChatID: fromChatID,
			MessageID:  messageID,
		})
		switch {
		case err == nil:
			stats.Success++
		case errors.Is(err, bot.ErrorForbidden):
			stats.Blocked++
		default:
			stats.Errors++
			log.Printf("Broadcaster: failed to send to %d: %v", u.UserID, err)
		}

		done := i + 1
		if done%50 == 0 {
			b.editProgress(ctx, progressChatID, progressMessageID, done, stats)
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(b.delay):
		}
	}

	log.Printf("Broadcaster: done, success=%d blocked=%d errors=%d", stats.Success, stats.Blocked, stats.Errors)
	return stats, nil
}

func (b *Broadcaster) editProgress(ctx context.Context, chatID int64, messageID int, done int, stats BroadcastStats) {
	_, err := b.botClient.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      messages.BroadcastProgress(done, stats.Total, stats.Success, stats.Blocked, stats.Errors),
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		log.Printf("Broadcaster: progress edit failed: %v", err)
	}
}
