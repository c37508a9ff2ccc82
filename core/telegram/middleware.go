package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/seashop/core/logger"
)

const contextKey = "logger_ctx"

// buildContext constructs a context.Context from tele.Context, enriching it
// with rid and update/user/chat metadata for consistent service logging.
func buildContext(c tele.Context) context.Context {
	if v := c.Get(contextKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}

	upd := c.Update()
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}

	rid := logger.BuildRID(upd.ID, chatID, userID)
	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(contextKey, ctx)
	return ctx
}

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(buildContext(c), "tg", "panic",
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}

// LoggerMiddleware logs a single receipt line per update and seeds the rid context.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := buildContext(c)
		upd := c.Update()

		attrs := []slog.Attr{
			slog.Int("update_id", upd.ID),
		}
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Callback.Data, 256)))
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)

		return next(c)
	}
}
