package telegram

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/seashop/core/shop"
)

// Sender implements shop.Transport over a telebot bot.
type Sender struct {
	bot *tele.Bot
}

// NewSender wraps a bot for outbound replies.
func NewSender(bot *tele.Bot) *Sender {
	return &Sender{bot: bot}
}

// SendText delivers a text reply with an optional action menu.
func (s *Sender) SendText(_ context.Context, chatID int64, text string, menu *shop.Menu) error {
	_, err := s.bot.Send(tele.ChatID(chatID), text, sendOptions(menu)...)
	return err
}

// SendPhoto delivers a local photo file with caption and optional action menu.
func (s *Sender) SendPhoto(_ context.Context, chatID int64, path, caption string, menu *shop.Menu) error {
	photo := &tele.Photo{File: tele.FromDisk(path), Caption: caption}
	_, err := s.bot.Send(tele.ChatID(chatID), photo, sendOptions(menu)...)
	return err
}

// Delete removes a previously sent message.
func (s *Sender) Delete(_ context.Context, chatID int64, messageID int) error {
	return s.bot.Delete(tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}

func sendOptions(menu *shop.Menu) []interface{} {
	if menu == nil {
		return nil
	}
	return []interface{}{&tele.SendOptions{ReplyMarkup: menuMarkup(menu)}}
}

// menuMarkup converts a reply menu into an inline keyboard. Buttons carry
// their payload verbatim so the dispatcher sees exactly the tokens the reply
// builders encoded.
func menuMarkup(menu *shop.Menu) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, 0, len(menu.Rows))
	for _, row := range menu.Rows {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tele.InlineButton{Text: b.Label, Data: b.Data})
		}
		inline = append(inline, buttons)
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
