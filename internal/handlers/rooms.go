package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/types"
)

// HandleRoomEntrance opens the diamond room. Only diamond users reach this
// keyboard, but access is re-checked against the stored flags anyway.
func (bh *Handlers) HandleRoomEntrance(ctx context.Context, b *bot.Bot, update *models.Update) {
	userID := update.CallbackQuery.From.ID

	user, err := bh.users.GetUser(userID)
	if err != nil {
		bh.answerCallbackAlert(ctx, b, update, messages.UserNotFound())
		return
	}
	if types.MaxAccess(user).Rank() < types.AccessDiamond.Rank() {
		bh.answerCallbackAlert(ctx, b, update, messages.RoomAccessDenied())
		return
	}

	links := bh.activeRoomLinks()
	if links.diamond == "" {
		bh.answerCallbackAlert(ctx, b, update, messages.RoomAccessDenied())
		return
	}

	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}

	bh.logRoomVisit(user, links)

	bh.editMessage(ctx, b, chatID, messageID, messages.RoomEntrance(links.diamond), diamondRoomEntranceKeyboard(links.diamond))
	bh.answerCallback(ctx, b, update, "")
}

func (bh *Handlers) logRoomVisit(user *types.User, links roomLinks) {
	rooms, err := bh.rooms.GetActiveRooms()
	if err != nil {
		log.Printf("Handlers: failed to load rooms for visit log: %v", err)
		return
	}

	var room *types.Room
	for _, r := range rooms {
		if r.AccessLevel == types.AccessDiamond && r.RoomURL == links.diamond {
			room = r
			break
		}
	}
	if room == nil {
		return
	}

	now := time.Now().UTC()
	if err := bh.rooms.LogRoomVisit(&types.RoomVisit{
		ID:        uuid.NewString(),
		VisitedAt: now,
		UserID:    user.UserID,
		Username:  user.Username,
		RoomID:    room.RoomID,
		RoomName:  room.RoomName,
		Source:    "menu",
	}); err != nil {
		log.Printf("Handlers: failed to log room visit for %d: %v", user.UserID, err)
	}

	if err := bh.users.RecordRoomVisitStats(user.UserID, now); err != nil {
		log.Printf("Handlers: failed to update visit stats for %d: %v", user.UserID, err)
	}
}

func (bh *Handlers) answerCallbackAlert(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
		ShowAlert:       true,
	})
}
