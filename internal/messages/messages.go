package messages

import (
	"fmt"
	"strings"

	"github.com/quietroom/quiet-room-bot/internal/format"
)

const ParseModeHTML = "HTML"

func Escape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(strings.TrimSpace(s))
}

// Главное меню

func StartDiamond() string {
	return "<b>Ты в Тихой Комнате.</b>\nЗдесь можно не спешить.\n" +
		"Возвращайся в любой момент в ту Комнату, что откликается сейчас.\n\n" +
		"Всё уже настроено и ждёт тебя."
}

func StartVIP(vipLink string) string {
	return "Ты уже отвечала на Тихие Вопросы.\n" +
		"По ним я открыла для тебя две Комнаты — как отклик на то, что ты сейчас проживаешь.\n\n" +
		"Ты заходишь в живое пространство, созданное под твои состояния. " +
		"Выбери то, что откликается сильнее. Тихо, без давления, с того места, где ты сейчас.\n\n" +
		"⤷ Посмотри, какие Комнаты уже ждут тебя:\n" + vipLink
}

func StartFree(mainLink string) string {
	return "Тихая Комната — это живое пространство, которое откликается на твоё состояние.\n\n" +
		"Одна из Комнат уже ждёт твоего первого шага. Она подскажет, с чего можно начать.\n\n" +
		"⤷ Посмотри, какая Комната сейчас открыта:\n" + mainLink
}

func ProfileMenu() string {
	return "<b>Твой кабинет</b>\n\nЗдесь можно проверить подписку и продлить доступ."
}

func HelpMenu() string {
	return "<b>Тех. помощь</b>\n\nНапиши нам, если что-то не работает, — мы рядом."
}

func DiaryMenu() string {
	return "<b>Живой дневник</b>\n\nМесто для твоих заметок и наблюдений."
}

func RoomEntrance(link string) string {
	return "<b>Комната открыта.</b>\n\nЗаходи, когда будешь готова:\n" + link
}

func RoomAccessDenied() string {
	return "❌ Доступ к этой Комнате сейчас закрыт."
}

func UserNotFound() string {
	return "❌ Ошибка: пользователь не найден"
}

// Статус подписки

func SubscriptionActive(endDate string) string {
	return fmt.Sprintf("✅ Твоя подписка активна.\n\nДоступ открыт до %s.", endDate)
}

func SubscriptionExpiringSoon(daysLeft int, endDate string) string {
	return fmt.Sprintf("⚠️ Внимание! Твоя подписка истекает через %d %s.\n\n", daysLeft, format.DaysWord(daysLeft)) +
		fmt.Sprintf("Последний день доступа: %s\n\n", endDate) +
		"Рекомендуем продлить заранее, чтобы не потерять доступ к Тихой Комнате."
}

func SubscriptionExpired(endDate string) string {
	return fmt.Sprintf("❌ Твоя подписка истекла %s.\n\nПродли доступ, чтобы вернуться в Тихую Комнату.", endDate)
}

func SubscriptionNone() string {
	return "ℹ️ У тебя пока нет подписки.\n\nОформи доступ, чтобы зайти в Тихую Комнату."
}

func SubscriptionCheckFailed() string {
	return "⚠️ Не удалось проверить статус подписки. Попробуйте позже или обратитесь в техподдержку."
}

func RenewSubscription() string {
	return "Продлить доступ можно по кнопке ниже.\n\nПосле оплаты нажми «Проверить оплату»."
}

// Короткие уведомления поверх экрана

func NotifyCheckingSubscription() string {
	return "Проверяю подписку..."
}

func NotifyCheckingPayment() string {
	return "Проверяю оплату..."
}

// Проверка оплаты

func PaymentChecking() string {
	return "⏳ Проверяю оплату, это может занять несколько секунд..."
}

func SyncNoUsername() string {
	return "❌ У тебя не установлен username в Telegram.\n\n" +
		"Добавь его в настройках Telegram и попробуй снова."
}

func SyncNoNewPayments() string {
	return "Новых оплат не найдено."
}

func SyncNoMatches() string {
	return "Оплаты для вашего username не найдены."
}

func SyncNoEndDate() string {
	return "❌ В оплате не указана дата окончания доступа.\n\nОбратитесь в техподдержку."
}

func SyncFailed() string {
	return "❌ Не удалось проверить оплату. Попробуйте позже."
}

func SyncUpdateFailed() string {
	return "❌ Не удалось обновить подписку. Попробуйте позже."
}

func SyncInsertFailed() string {
	return "❌ Не удалось сохранить данные. Попробуйте позже."
}

func SyncUpdated(endDate string) string {
	return fmt.Sprintf("✅ Ваша подписка обновлена! Активна до %s", endDate)
}

func SyncWelcome(endDate string) string {
	return fmt.Sprintf("🎉 Добро пожаловать! Ваша подписка активна до %s", endDate)
}

func PaymentNotFound() string {
	return "❌ Оплата не найдена.\n\n" +
		"Если ты уже оплатила, подожди пару минут и попробуй снова."
}

// Уведомления

func PaymentProcessedNotification() string {
	return "✅ Твоя оплата обработана!\n\nДоступ к Тихой Комнате продлён."
}

func ExpiringLastDay() string {
	return "⚠️ Внимание! Сегодня последний день твоей подписки.\n\n" +
		"Продли сейчас, чтобы не потерять доступ к Тихой Комнате."
}

func ExpiringInDays(daysLeft int) string {
	return fmt.Sprintf("⚠️ Внимание! Твоя подписка истекает через %d %s.\n\n", daysLeft, format.DaysWord(daysLeft)) +
		"Рекомендуем продлить заранее, чтобы не потерять доступ к Тихой Комнате."
}

func ExpiredNotification() string {
	return "❌ Твоя подписка истекла.\n\nДоступ к Тихой Комнате приостановлен."
}

func LapsedThreeDays() string {
	return "Тихая Комната всё ещё помнит тебя.\n\n" +
		"Прошло три дня с конца твоей подписки. Можно вернуться в любой момент."
}

func LapsedSevenDays() string {
	return "Прошла неделя без Тихой Комнаты.\n\n" +
		"Если захочешь вернуться — дверь открыта. Продли доступ по кнопке ниже."
}

// Рассылка

func BroadcastNoAccess() string {
	return "❌ У тебя нет доступа к этой команде."
}

func BroadcastPrompt() string {
	return "📝 <b>Создание рассылки</b>\n\n" +
		"Отправь текст, который нужно разослать всем пользователям.\n\n" +
		"Для отмены отправь /cancel"
}

func BroadcastNothingToCancel() string {
	return "❌ Нечего отменять."
}

func BroadcastCancelled() string {
	return "❌ Рассылка отменена."
}

func BroadcastPreview() string {
	return "📢 <b>ПРЕВЬЮ РАССЫЛКИ:</b>\n\n" +
		"👆 Сообщение выше будет отправлено ВСЕМ пользователям.\n\n" +
		"Подтверждаешь?"
}

func BroadcastLost() string {
	return "❌ Ошибка: сообщение не найдено."
}

func BroadcastStarting() string {
	return "🚀 Начинаю рассылку..."
}

func BroadcastNoUsers() string {
	return "❌ Не найдено пользователей для рассылки."
}

func BroadcastProgress(done, total, success, blocked, errors int) string {
	return "🚀 <b>Рассылка в процессе...</b>\n\n" +
		fmt.Sprintf("📊 Прогресс: %d/%d (%d%%)\n", done, total, done*100/total) +
		fmt.Sprintf("✅ Отправлено: %d\n", success) +
		fmt.Sprintf("🚫 Заблокировали: %d\n", blocked) +
		fmt.Sprintf("⚠️ Ошибки: %d", errors)
}

func BroadcastReport(total, success, blocked, errors int) string {
	rate := 0
	if total > 0 {
		rate = success * 100 / total
	}
	return "✅ <b>Рассылка завершена!</b>\n\n" +
		"📊 <b>Статистика:</b>\n" +
		fmt.Sprintf("• Всего пользователей: %d\n", total) +
		fmt.Sprintf("• ✅ Успешно: %d\n", success) +
		fmt.Sprintf("• 🚫 Заблокировали бота: %d\n", blocked) +
		fmt.Sprintf("• ⚠️ Ошибки: %d\n\n", errors) +
		fmt.Sprintf("📈 Успешность: %d%%", rate)
}

// Прочее

func MyID(userID int64, username, fullName string) string {
	if username == "" {
		username = "Не указан"
	}
	if fullName == "" {
		fullName = "Не указано"
	}
	return "👤 <b>Информация о пользователе:</b>\n\n" +
		fmt.Sprintf("🆔 ID: <code>%d</code>\n", userID) +
		fmt.Sprintf("📝 Username: @%s\n", Escape(username)) +
		fmt.Sprintf("🏷 Имя: %s", Escape(fullName))
}

func UnknownCommand() string {
	return "❓ <b>Команда не найдена</b>"
}
