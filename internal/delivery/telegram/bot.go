// internal/delivery/telegram/bot.go
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ethfi-report-bot/pkg/logger"

	"github.com/mymmrac/telego"
)

// httpTimeout - таймаут запросов к Bot API, long polling укладывается в него
const (
	httpTimeout    = 30 * time.Second
	pollingTimeout = 20
)

// Config - параметры транспорта
type Config struct {
	Token     string
	APIServer string // пусто - https://api.telegram.org
}

// Bot - транспорт Telegram: long polling, маршрутизация команд и отправка HTML
type Bot struct {
	api    *telego.Bot
	router *Router

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBot создает бота; роутер можно подключить позже через SetRouter
func NewBot(cfg Config) (*Bot, error) {
	opts := []telego.BotOption{
		telego.WithHTTPClient(&http.Client{Timeout: httpTimeout}),
		telego.WithDiscardLogger(),
	}
	if cfg.APIServer != "" {
		opts = append(opts, telego.WithAPIServer(cfg.APIServer))
	}

	api, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Bot{api: api}, nil
}

// SetRouter подключает обработчики команд
func (b *Bot) SetRouter(r *Router) {
	b.router = r
}

// Send отправляет HTML-сообщение без превью ссылок
func (b *Bot) Send(ctx context.Context, chatID int64, htmlText string) error {
	_, err := b.api.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:             telego.ChatID{ID: chatID},
		Text:               htmlText,
		ParseMode:          telego.ModeHTML,
		LinkPreviewOptions: &telego.LinkPreviewOptions{IsDisabled: true},
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// Start сбрасывает накопившиеся апдейты и запускает long polling
func (b *Bot) Start(ctx context.Context) error {
	if b.router == nil {
		return fmt.Errorf("telegram router is not configured")
	}

	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	if err := b.api.DeleteWebhook(ctx, &telego.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("drop pending updates: %w", err)
	}
	if err := b.api.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: []telego.BotCommand{
		{Command: "start", Description: "Đăng ký nhận báo cáo"},
		{Command: "now", Description: "Báo cáo ngay"},
		{Command: "stop", Description: "Hủy đăng ký"},
		{Command: "help", Description: "Danh sách lệnh"},
	}}); err != nil {
		logger.Warn("⚠️ [Telegram] Не удалось установить список команд: %v", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	updates, err := b.api.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        pollingTimeout,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for update := range updates {
			b.handleUpdate(pollCtx, update)
		}
	}()

	logger.Info("✅ [Telegram] Бот @%s запущен (long polling)", me.Username)
	return nil
}

// Stop останавливает long polling и ждет обработчик
func (b *Bot) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
	logger.Info("🛑 [Telegram] Бот остановлен")
}

// handleUpdate обрабатывает команды последовательно, по одной за раз
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	in := Incoming{ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.From != nil {
		in.FirstName = msg.From.FirstName
	}

	reply, ok := b.router.Route(ctx, in)
	if !ok {
		return
	}
	logger.Debug("💬 [Telegram] %s от %d", msg.Text, in.ChatID)

	if err := b.Send(ctx, in.ChatID, reply.Text); err != nil {
		logger.Warn("⚠️ [Telegram] Не удалось ответить %d: %v", in.ChatID, err)
	}
}
