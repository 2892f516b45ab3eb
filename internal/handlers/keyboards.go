package handlers

import (
	"github.com/go-telegram/bot/models"
)

// roomLinks are the invite links of the currently open rooms, one per tier.
type roomLinks struct {
	main    string
	vip     string
	diamond string
}

func mainMenuKeyboard(isVIP, isDiamond bool, links roomLinks) *models.InlineKeyboardMarkup {
	var roomButton models.InlineKeyboardButton
	if isDiamond {
		roomButton = models.InlineKeyboardButton{
			Text:         "Зайти в Тихую Комнату",
			CallbackData: "go_to_room_entrance",
		}
	} else {
		link := links.main
		if isVIP {
			link = links.vip
		}
		roomButton = models.InlineKeyboardButton{
			Text: "Зайти в Тихую Комнату",
			URL:  link,
		}
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{roomButton},
			{
				{Text: "Твой кабинет", CallbackData: "go_to_profile_menu"},
				{Text: "Нужна тех. помощь", CallbackData: "go_to_help_menu"},
			},
		},
	}
}

func diamondRoomEntranceKeyboard(diamondLink string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Зайти в комнату", URL: diamondLink}},
			{{Text: "Назад", CallbackData: "back_to_main"}},
		},
	}
}

func profileMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Проверить подписку", CallbackData: "check_subscription"},
				{Text: "Продлить доступ", CallbackData: "renew_subscription"},
			},
			{{Text: "Живой дневник", CallbackData: "go_to_diary_menu"}},
			{{Text: "Назад", CallbackData: "back_to_main"}},
		},
	}
}

func checkSubscriptionKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Продлить подписку", CallbackData: "renew_subscription"}},
			{{Text: "Проверить оплату", CallbackData: "verify_payment"}},
			{{Text: "Назад", CallbackData: "back_to_profile"}},
		},
	}
}

func renewSubscriptionKeyboard(renewURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Продлить подписку", URL: renewURL}},
			{{Text: "Проверить оплату", CallbackData: "verify_payment"}},
			{{Text: "Назад", CallbackData: "back_to_profile"}},
		},
	}
}

func diaryMenuKeyboard(diaryURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Живой дневник", URL: diaryURL}},
			{{Text: "Назад", CallbackData: "back_to_profile"}},
		},
	}
}

func helpMenuKeyboard(helpURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Тык!", URL: helpURL}},
			{{Text: "Назад", CallbackData: "back_to_main"}},
		},
	}
}

func broadcastConfirmKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✅ Отправить всем", CallbackData: "broadcast_confirm"}},
			{{Text: "❌ Отмена", CallbackData: "broadcast_cancel"}},
		},
	}
}
