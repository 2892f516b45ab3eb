package handlers

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/internal/subscription"
	"github.com/quietroom/quiet-room-bot/types"
)

// HandleCheckSubscription shows the current subscription state of the caller.
func (bh *Handlers) HandleCheckSubscription(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, messages.NotifyCheckingSubscription())

	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}
	userID := update.CallbackQuery.From.ID

	var text string
	user, err := bh.users.GetUser(userID)
	if err != nil {
		log.Printf("Handlers: subscription check failed for %d: %v", userID, err)
		text = messages.SubscriptionCheckFailed()
	} else {
		info := subscription.EvaluateStatus(user.SubActive, user.SubEnd, bh.reconciler.Now())
		switch info.Status {
		case types.StatusActive:
			text = messages.SubscriptionActive(info.EndDate)
		case types.StatusExpiringSoon:
			text = messages.SubscriptionExpiringSoon(info.DaysLeft, info.EndDate)
		case types.StatusExpired:
			text = messages.SubscriptionExpired(info.EndDate)
		case types.StatusNone:
			text = messages.SubscriptionNone()
		default:
			text = messages.SubscriptionCheckFailed()
		}
	}

	bh.editMessage(ctx, b, chatID, messageID, text, checkSubscriptionKeyboard())
}

func (bh *Handlers) HandleRenewSubscription(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, "")

	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}
	bh.editMessage(ctx, b, chatID, messageID, messages.RenewSubscription(), renewSubscriptionKeyboard(bh.renewURL))
}

// HandleVerifyPayment runs the storefront reconciliation for just the
// caller. The keyboard is removed while the check runs so the button cannot
// be pressed twice.
func (bh *Handlers) HandleVerifyPayment(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, messages.NotifyCheckingPayment())

	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}

	bh.editMessage(ctx, b, chatID, messageID, messages.PaymentChecking(), nil)

	from := update.CallbackQuery.From
	result := bh.reconciler.SyncUser(from.ID, from.Username)

	// Failures all collapse to one fixed text; the specific reason is
	// already logged by the reconciler.
	text := result.Message
	if !result.OK {
		text = messages.PaymentNotFound()
	}

	bh.editMessage(ctx, b, chatID, messageID, text, renewSubscriptionKeyboard(bh.renewURL))
}
