package middleware

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/quietroom/quiet-room-bot/internal/contextkeys"
	"github.com/quietroom/quiet-room-bot/store"
	"github.com/quietroom/quiet-room-bot/types"
)

type Middlewares struct {
	users types.UserStore
}

func NewUserTracker(users types.UserStore) *Middlewares {
	return &Middlewares{users: users}
}

// TrackUserMiddleware classifies the update, makes sure the sender has a
// user row, and stamps last activity. Updates without a sender are dropped.
func (m *Middlewares) TrackUserMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var from *models.User

		switch {
		case update.Message != nil && update.Message.From != nil:
			from = update.Message.From
			if strings.HasPrefix(update.Message.Text, "/") {
				ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeCommand)
			} else {
				ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeText)
			}
		case update.CallbackQuery != nil:
			from = &update.CallbackQuery.From
			ctx = contextkeys.WithMessageType(ctx, contextkeys.MessageTypeClickButton)
			ctx = contextkeys.WithCallbackData(ctx, update.CallbackQuery.Data)
		default:
			return
		}

		if from == nil || from.ID == 0 {
			return
		}

		if err := m.ensureUser(from); err != nil {
			log.Printf("Middleware: failed to register user %d: %v", from.ID, err)
		}

		next(ctx, b, update)
	}
}

func (m *Middlewares) ensureUser(from *models.User) error {
	_, err := m.users.GetUser(from.ID)
	if err == nil {
		return m.users.TouchActivity(from.ID)
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	now := time.Now().UTC()
	return m.users.AddUser(&types.User{
		UserID:       from.ID,
		Username:     from.Username,
		FirstName:    from.FirstName,
		JoinedAt:     now,
		LastActivity: now,
	})
}
