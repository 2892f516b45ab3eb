package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/quietroom/quiet-room-bot/internal/config"
	"github.com/quietroom/quiet-room-bot/internal/contextkeys"
	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/internal/notify"
	"github.com/quietroom/quiet-room-bot/internal/subscription"
	"github.com/quietroom/quiet-room-bot/store"
	"github.com/quietroom/quiet-room-bot/types"
)

type Handlers struct {
	users       types.UserStore
	rooms       types.RoomStore
	chats       *store.RedisChatStore
	reconciler  *subscription.Reconciler
	vip         *subscription.VIPSync
	broadcaster *notify.Broadcaster

	adminID  int64
	renewURL string
	diaryURL string
	helpURL  string
}

func NewHandlers(users types.UserStore, rooms types.RoomStore, chats *store.RedisChatStore, reconciler *subscription.Reconciler, vip *subscription.VIPSync, broadcaster *notify.Broadcaster, cfg config.Config) *Handlers {
	return &Handlers{
		users:       users,
		rooms:       rooms,
		chats:       chats,
		reconciler:  reconciler,
		vip:         vip,
		broadcaster: broadcaster,
		adminID:     cfg.AdminID,
		renewURL:    cfg.RenewURL,
		diaryURL:    cfg.DiaryURL,
		helpURL:     cfg.HelpURL,
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	messageType, _ := contextkeys.GetMessageType(ctx)

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, b, update)
	case contextkeys.MessageTypeText:
		bh.HandleText(ctx, b, update)
	case contextkeys.MessageTypeClickButton:
		bh.HandleClickButton(ctx, b, update)
	}
}

func (bh *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	fields := strings.Fields(update.Message.Text)
	if len(fields) == 0 {
		return
	}
	command := fields[0]
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		bh.HandleStart(ctx, b, update)
	case "/broadcast":
		bh.HandleBroadcastCommand(ctx, b, update)
	case "/cancel":
		bh.HandleCancelCommand(ctx, b, update)
	case "/myid":
		bh.HandleMyID(ctx, b, update)
	default:
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    update.Message.Chat.ID,
			Text:      messages.UnknownCommand(),
			ParseMode: messages.ParseModeHTML,
		})
	}
}

func (bh *Handlers) HandleClickButton(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	data, ok := contextkeys.GetCallbackData(ctx)
	if !ok {
		data = update.CallbackQuery.Data
	}

	switch strings.TrimSpace(data) {
	case "go_to_profile_menu", "back_to_profile":
		bh.showProfileMenu(ctx, b, update)
	case "go_to_help_menu":
		bh.showHelpMenu(ctx, b, update)
	case "go_to_diary_menu":
		bh.showDiaryMenu(ctx, b, update)
	case "go_to_room_entrance":
		bh.HandleRoomEntrance(ctx, b, update)
	case "back_to_main":
		bh.showMainMenu(ctx, b, update)
	case "check_subscription":
		bh.HandleCheckSubscription(ctx, b, update)
	case "renew_subscription":
		bh.HandleRenewSubscription(ctx, b, update)
	case "verify_payment":
		bh.HandleVerifyPayment(ctx, b, update)
	case "broadcast_confirm":
		bh.HandleBroadcastConfirm(ctx, b, update)
	case "broadcast_cancel":
		bh.HandleBroadcastCancel(ctx, b, update)
	default:
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

// HandleStart greets the user with the menu of their tier. A provisional VIP
// grant keyed by handle is converted into an id entry on first contact.
func (bh *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	from := update.Message.From
	chatID := update.Message.Chat.ID

	b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})

	if from.Username != "" {
		temp, err := bh.vip.IsTempVIP(from.Username)
		if err != nil {
			log.Printf("Handlers: temp vip check failed for %d: %v", from.ID, err)
		} else if temp {
			if err := bh.vip.MigrateSingleTempVIP(from.Username, from.ID); err != nil {
				log.Printf("Handlers: temp vip migration failed for %d: %v", from.ID, err)
			}
		}
	}

	text, keyboard := bh.mainMenuFor(from.ID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
}

// mainMenuFor builds the tiered greeting. Stored flags decide the tier, the
// room table supplies the links.
func (bh *Handlers) mainMenuFor(userID int64) (string, *models.InlineKeyboardMarkup) {
	var isVIP, isDiamond bool
	if user, err := bh.users.GetUser(userID); err == nil {
		isVIP = user.IsVIP
		isDiamond = user.IsDiamond
	} else {
		log.Printf("Handlers: could not load user %d: %v", userID, err)
	}

	links := bh.activeRoomLinks()

	var text string
	switch {
	case isDiamond:
		text = messages.StartDiamond()
	case isVIP:
		text = messages.StartVIP(links.vip)
	default:
		text = messages.StartFree(links.main)
	}
	return text, mainMenuKeyboard(isVIP, isDiamond, links)
}

func (bh *Handlers) activeRoomLinks() roomLinks {
	var links roomLinks
	rooms, err := bh.rooms.GetActiveRooms()
	if err != nil {
		log.Printf("Handlers: failed to load rooms: %v", err)
		return links
	}
	for _, room := range rooms {
		switch room.AccessLevel {
		case types.AccessDiamond:
			if links.diamond == "" {
				links.diamond = room.RoomURL
			}
		case types.AccessVIP:
			if links.vip == "" {
				links.vip = room.RoomURL
			}
		default:
			if links.main == "" {
				links.main = room.RoomURL
			}
		}
	}
	return links
}

func (bh *Handlers) showMainMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, "")

	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}

	text, keyboard := bh.mainMenuFor(update.CallbackQuery.From.ID)
	bh.editMessage(ctx, b, chatID, messageID, text, keyboard)
}

func (bh *Handlers) showProfileMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, "")
	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}
	bh.editMessage(ctx, b, chatID, messageID, messages.ProfileMenu(), profileMenuKeyboard())
}

func (bh *Handlers) showHelpMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, "")
	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}
	bh.editMessage(ctx, b, chatID, messageID, messages.HelpMenu(), helpMenuKeyboard(bh.helpURL))
}

func (bh *Handlers) showDiaryMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	bh.answerCallback(ctx, b, update, "")
	chatID, messageID := callbackMessageRef(update)
	if chatID == 0 {
		return
	}
	bh.editMessage(ctx, b, chatID, messageID, messages.DiaryMenu(), diaryMenuKeyboard(bh.diaryURL))
}

func (bh *Handlers) HandleMyID(ctx context.Context, b *bot.Bot, update *models.Update) {
	from := update.Message.From
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      messages.MyID(from.ID, from.Username, fullName),
		ParseMode: messages.ParseModeHTML,
	})
}

func (bh *Handlers) answerCallback(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
}

// editMessage swallows the "message is not modified" error Telegram returns
// when the menu content did not change.
func (bh *Handlers) editMessage(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, keyboard *models.InlineKeyboardMarkup) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: keyboard,
	})
	if err != nil && !strings.Contains(err.Error(), "message is not modified") {
		log.Printf("Handlers: edit failed in chat %d: %v", chatID, err)
	}
}

func callbackMessageRef(update *models.Update) (int64, int) {
	if update.CallbackQuery == nil {
		return 0, 0
	}
	m := update.CallbackQuery.Message
	if m.Message != nil {
		return m.Message.Chat.ID, m.Message.ID
	}
	if m.InaccessibleMessage != nil {
		return m.InaccessibleMessage.Chat.ID, m.InaccessibleMessage.MessageID
	}
	return 0, 0
}
