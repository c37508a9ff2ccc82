// Package telegram adapts the conversation core to the Telegram transport:
// bot construction, update routing, outbound delivery, and the run loop.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/seashop/core/config"
	"github.com/m3rciful/seashop/core/logger"
)

// NewBot constructs a telebot bot from configuration: poller per run mode and
// the retrying HTTP client.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(),
		OnError: func(err error, c tele.Context) {
			ctx := context.Background()
			if c != nil {
				ctx = buildContext(c)
			}
			logger.Error(ctx, "tg", "bot.error", slog.String("err", err.Error()))
		},
	}

	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	return bot, nil
}

// Run starts the bot and blocks until the provided context is done.
func Run(ctx context.Context, bot *tele.Bot, cfg *coreconfig.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeLongpoll) {
		// A leftover webhook blocks long polling.
		if err := deleteWebhook(cfg.Telegram.Token, false); err != nil {
			logger.Warn(ctx, "tg", "delete_webhook.fail", slog.String("err", err.Error()))
		}
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", cfg.Telegram.LongPollTimeoutSeconds),
		)
	} else {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "webhook"),
			slog.String("public_url", cfg.Webhook.URL),
		)
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-runDone:
		return nil
	}
}

func deleteWebhook(token string, dropPending bool) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	body := "drop_pending_updates=false"
	if dropPending {
		body = "drop_pending_updates=true"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
