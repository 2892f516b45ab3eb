package notify

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/types"
)

const (
	KindPaymentProcessed = "payment_processed"
	KindExpiringSoon     = "expiring_soon"
	KindLastDay          = "last_day"
	KindExpired          = "expired"
	KindLapsed3          = "lapsed_3"
	KindLapsed7          = "lapsed_7"

	StatusSent    = "sent"
	StatusBlocked = "blocked"
	StatusFailed  = "failed"
)

// Notifier sends the subscription lifecycle messages and records every
// attempt as a touchpoint.
type Notifier struct {
	botClient   *bot.Bot
	touchpoints types.TouchpointStore

	Now func() time.Time
}

func NewNotifier(botClient *bot.Bot, touchpoints types.TouchpointStore) *Notifier {
	return &Notifier{
		botClient:   botClient,
		touchpoints: touchpoints,
		Now:         time.Now,
	}
}

func expiringKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Продлить доступ", CallbackData: "renew_subscription"}},
			{{Text: "Зайти в Тихую Комнату", CallbackData: "go_to_room_entrance"}},
		},
	}
}

func renewKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Продлить доступ", CallbackData: "renew_subscription"}},
		},
	}
}

func (n *Notifier) PaymentProcessed(ctx context.Context, userID int64) {
	n.send(ctx, userID, KindPaymentProcessed, messages.PaymentProcessedNotification(), nil)
}

// SubscriptionExpiring reminds a user before the end date. daysLeft 0 means
// the last day of access.
func (n *Notifier) SubscriptionExpiring(ctx context.Context, userID int64, daysLeft int) {
	if daysLeft == 0 {
		n.send(ctx, userID, KindLastDay, messages.ExpiringLastDay(), expiringKeyboard())
		return
	}
	n.send(ctx, userID, KindExpiringSoon, messages.ExpiringInDays(daysLeft), expiringKeyboard())
}

func (n *Notifier) SubscriptionExpired(ctx context.Context, userID int64) {
	n.send(ctx, userID, KindExpired, messages.ExpiredNotification(), renewKeyboard())
}

// SubscriptionLapsed is the win-back nudge after expiry. daysGone is 3 or 7.
func (n *Notifier) SubscriptionLapsed(ctx context.Context, userID int64, daysGone int) {
	if daysGone >= 7 {
		n.send(ctx, userID, KindLapsed7, messages.LapsedSevenDays(), renewKeyboard())
		return
	}
	n.send(ctx, userID, KindLapsed3, messages.LapsedThreeDays(), renewKeyboard())
}

func (n *Notifier) send(ctx context.Context, userID int64, kind, text string, markup *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    userID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	_, err := n.botClient.SendMessage(ctx, params)
	status := StatusSent
	detail := ""
	switch {
	case err == nil:
	case errors.Is(err, bot.ErrorForbidden):
		status = StatusBlocked
		log.Printf("Notifier: user %d blocked the bot (%s)", userID, kind)
	default:
		status = StatusFailed
		detail = err.Error()
		log.Printf("Notifier: failed to send %s to %d: %v", kind, userID, err)
	}

	if tpErr := n.touchpoints.LogTouchpoint(&types.Touchpoint{
		SentAt: n.Now().UTC(),
		UserID: userID,
		Kind:   kind,
		Status: status,
		Detail: detail,
	}); tpErr != nil {
		log.Printf("Notifier: failed to log touchpoint for %d: %v", userID, tpErr)
	}
}
