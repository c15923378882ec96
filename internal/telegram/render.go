package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/browse"
)

// Callback data values. OPEN carries the entry id after the prefix;
// drive ids stay well under Telegram's 64-byte callback data limit.
const (
	callbackOpen = "OPEN:"
	callbackBack = "BACK"
	callbackHome = "HOME"
	callbackPrev = "PREV"
	callbackNext = "NEXT"
)

// viewMessage renders a navigation view as a fresh message: the path
// header as text, everything else as the inline keyboard.
func viewMessage(chatID int64, v browse.View) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, "📂 "+v.Path)
	msg.ReplyMarkup = keyboardFor(v)
	msg.DisableWebPagePreview = true
	return msg
}

// keyboardFor lays out the keyboard: a navigation row, a paging row
// when there is anything to page to, then one row per item. Folders
// open via callback; files are plain URL buttons so tapping them never
// round-trips through the bot.
func keyboardFor(v browse.View) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(v.Items)+2)

	nav := make([]tgbotapi.InlineKeyboardButton, 0, 2)
	if v.CanBack {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", callbackBack))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("🏠 Home", callbackHome))
	rows = append(rows, nav)

	if v.HasPrev || v.HasNext {
		paging := make([]tgbotapi.InlineKeyboardButton, 0, 2)
		if v.HasPrev {
			paging = append(paging, tgbotapi.NewInlineKeyboardButtonData("◀️ Prev", callbackPrev))
		}
		if v.HasNext {
			paging = append(paging, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", callbackNext))
		}
		rows = append(rows, paging)
	}

	for _, it := range v.Items {
		label := it.Icon + " " + it.Name
		var btn tgbotapi.InlineKeyboardButton
		if it.Kind.IsFolder() {
			btn = tgbotapi.NewInlineKeyboardButtonData(label, callbackOpen+it.ID)
		} else {
			btn = tgbotapi.NewInlineKeyboardButtonURL(label, it.URL)
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{btn})
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
