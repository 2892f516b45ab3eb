package handlers

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/store"
	"github.com/quietroom/quiet-room-bot/types"
)

// HandleBroadcastCommand starts the admin broadcast flow: the next message
// from the admin becomes the broadcast payload.
func (bh *Handlers) HandleBroadcastCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	from := update.Message.From
	chatID := update.Message.Chat.ID

	if from.ID != bh.adminID {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   messages.BroadcastNoAccess(),
		})
		return
	}

	if err := bh.chats.SetSession(from.ID, &store.ChatSession{State: types.StateBroadcastText}); err != nil {
		log.Printf("Handlers: failed to set broadcast state for %d: %v", from.ID, err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      messages.BroadcastPrompt(),
		ParseMode: messages.ParseModeHTML,
	})
}

func (bh *Handlers) HandleCancelCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	from := update.Message.From
	chatID := update.Message.Chat.ID

	session, _ := bh.chats.GetSession(from.ID)
	if session.State == types.StateIdle {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   messages.BroadcastNothingToCancel(),
		})
		return
	}

	if err := bh.chats.ClearSession(from.ID); err != nil {
		log.Printf("Handlers: failed to clear broadcast state for %d: %v", from.ID, err)
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   messages.BroadcastCancelled(),
	})
}

// HandleText consumes plain messages. Only the broadcast flow cares about
// them: when the admin is mid-flow the message becomes the pending payload.
func (bh *Handlers) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	from := update.Message.From
	if from.ID != bh.adminID {
		return
	}

	session, _ := bh.chats.GetSession(from.ID)
	if session.State != types.StateBroadcastText {
		return
	}

	session.State = types.StateBroadcastConfirm
	session.PendingChatID = update.Message.Chat.ID
	session.PendingMessageID = update.Message.ID
	if err := bh.chats.SetSession(from.ID, session); err != nil {
		log.Printf("Handlers: failed to store pending broadcast for %d: %v", from.ID, err)
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        messages.BroadcastPreview(),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: broadcastConfirmKeyboard(),
	})
}

func (bh *Handlers) HandleBroadcastCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	from := update.CallbackQuery.From
	if from.ID != bh.adminID {
		return
	}

	if err := bh.chats.ClearSession(from.ID); err != nil {
		log.Printf("Handlers: failed to clear broadcast state for %d: %v", from.ID, err)
	}

	chatID, messageID := callbackMessageRef(update)
	if chatID != 0 {
		bh.editMessage(ctx, b, chatID, messageID, messages.BroadcastCancelled(), nil)
	}
	bh.answerCallback(ctx, b, update, "")
}

// HandleBroadcastConfirm copies the pending message to every user.
func (bh *Handlers) HandleBroadcastConfirm(ctx context.Context, b *bot.Bot, update *models.Update) {
	from := update.CallbackQuery.From
	if from.ID != bh.adminID {
		return
	}

	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}

	session, _ := bh.chats.GetSession(from.ID)
	if session.State != types.StateBroadcastConfirm || session.PendingMessageID == 0 {
		bh.editMessage(ctx, b, chatID, messageID, messages.BroadcastLost(), nil)
		bh.chats.ClearSession(from.ID)
		bh.answerCallback(ctx, b, update, "")
		return
	}

	bh.editMessage(ctx, b, chatID, messageID, messages.BroadcastStarting(), nil)
	bh.answerCallback(ctx, b, update, "")

	stats, err := bh.broadcaster.Run(ctx, session.PendingChatID, session.PendingMessageID, chatID, messageID)
	if err != nil {
		log.Printf("Handlers: broadcast aborted: %v", err)
	}

	if stats.Total == 0 {
		bh.editMessage(ctx, b, chatID, messageID, messages.BroadcastNoUsers(), nil)
	} else {
		bh.editMessage(ctx, b, chatID, messageID, messages.BroadcastReport(stats.Total, stats.Success, stats.Blocked, stats.Errors), nil)
	}

	if err := bh.chats.ClearSession(from.ID); err != nil {
		log.Printf("Handlers: failed to clear broadcast state for %d: %v", from.ID, err)
	}
}
