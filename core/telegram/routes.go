package telegram

import (
	"errors"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/seashop/core/logger"
	"github.com/m3rciful/seashop/core/shop"
)

// RegisterRoutes funnels commands, free text, and button callbacks into the
// single conversation dispatcher.
func RegisterRoutes(bot *tele.Bot, dispatcher *shop.Dispatcher) {
	handler := RecoverMiddleware(LoggerMiddleware(dispatch(dispatcher)))
	bot.Handle("/start", handler)
	bot.Handle(tele.OnText, handler)
	bot.Handle(tele.OnCallback, handler)
}

// dispatch converts the update into a conversation event and hands it to the
// dispatcher. Dispatcher errors never propagate into the poller loop: they
// are reported here and the user may retry their last action.
func dispatch(dispatcher *shop.Dispatcher) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := buildContext(c)

		ev, ok := eventFrom(c)
		if !ok {
			// Neither a recognizable message nor a callback.
			logger.Debug(ctx, "tg", "update.ignored")
			return nil
		}

		if c.Callback() != nil {
			// Stop the client-side loading indicator before the handler
			// performs its backend round-trips.
			_ = c.Respond()
		}

		if err := dispatcher.Handle(ctx, ev); err != nil {
			var unhandled *shop.UnhandledEventError
			if errors.As(err, &unhandled) {
				logger.Error(ctx, "tg", "event.unhandled",
					slog.String("state", string(unhandled.State)),
					slog.String("kind", unhandled.Kind.String()),
					slog.Int64("chat_id", ev.ChatID),
				)
				return nil
			}
			logger.Error(ctx, "tg", "event.fail",
				slog.String("kind", ev.Kind.String()),
				slog.Int64("chat_id", ev.ChatID),
				slog.String("err", err.Error()),
			)
			return nil
		}
		return nil
	}
}

// eventFrom derives the chat identifier and raw payload from whichever form
// of update is present.
func eventFrom(c tele.Context) (shop.Event, bool) {
	name := senderName(c.Sender())

	if cb := c.Callback(); cb != nil && cb.Message != nil {
		data := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
		return shop.CallbackEvent(cb.Message.Chat.ID, cb.Message.ID, name, data), true
	}
	if msg := c.Message(); msg != nil && msg.Text != "" {
		return shop.TextEvent(msg.Chat.ID, name, msg.Text), true
	}
	return shop.Event{}, false
}

func senderName(user *tele.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Username
	}
	return name
}
