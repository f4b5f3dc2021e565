// application/services/notification/service.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"ethfi-report-bot/internal/core/domain/report"
	"ethfi-report-bot/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Тексты ответов на команды
const (
	textSubscribedFmt  = "Chào <b>%s</b>! 👍\nBạn đã đăng ký nhận <b>%s Update</b> định kỳ ở đây.\nDùng /now để nhận báo cáo ngay."
	textAlreadyFmt     = "Bạn đã đăng ký nhận <b>%s Update</b> rồi.\nDùng /now để nhận báo cáo ngay."
	textUnsubscribed   = "Đã hủy đăng ký cập nhật định kỳ."
	textNotSubscribed  = "Bạn chưa đăng ký."
	textStorageFailure = "Không lưu được đăng ký. Thử lại sau nhé."
	textReportFailure  = "Lỗi khi lấy dữ liệu. Thử lại sau nhé."
)

// Registry - реестр подписчиков
type Registry interface {
	Add(id int64) (bool, error)
	Remove(id int64) (bool, error)
	Snapshot() []int64
	Count() int
}

// Sender доставляет готовое HTML-сообщение одному получателю
type Sender interface {
	Send(ctx context.Context, chatID int64, htmlText string) error
}

// Delivery - одна адресная доставка в рамках тика
type Delivery struct {
	ChatID int64
	Text   string
}

// BroadcastResult - итог одной рассылки
type BroadcastResult struct {
	RunID      string
	Recipients int
	Delivered  int
	Failed     int
	Skipped    bool
}

// Config - параметры сервиса
type Config struct {
	Asset     string
	SendDelay time.Duration // пауза между отправками из-за лимитов транспорта
}

// Service - точки входа для команд и таймера
type Service struct {
	registry Registry
	reports  report.Source
	sender   Sender
	cfg      Config
	limiter  *rate.Limiter
}

// NewService создает сервис уведомлений
func NewService(registry Registry, reports report.Source, sender Sender, cfg Config) *Service {
	if cfg.Asset == "" {
		cfg.Asset = "ETHFI"
	}
	limit := rate.Inf
	if cfg.SendDelay > 0 {
		limit = rate.Every(cfg.SendDelay)
	}
	return &Service{
		registry: registry,
		reports:  reports,
		sender:   sender,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// SetSender подключает транспорт после создания сервиса
func (s *Service) SetSender(sender Sender) {
	s.sender = sender
}

// OnSubscribe регистрирует вызывающего и возвращает подтверждение
func (s *Service) OnSubscribe(ctx context.Context, chatID int64, firstName string) string {
	added, err := s.registry.Add(chatID)
	if err != nil {
		logger.Error("❌ [Notification] Не удалось подписать %d: %v", chatID, err)
		return textStorageFailure
	}
	if !added {
		return fmt.Sprintf(textAlreadyFmt, s.cfg.Asset)
	}
	logger.Info("➕ [Notification] Новый подписчик %d (всего %d)", chatID, s.registry.Count())
	return fmt.Sprintf(textSubscribedFmt, html.EscapeString(firstName), s.cfg.Asset)
}

// OnUnsubscribe удаляет вызывающего; для неподписанного - "не подписан"
func (s *Service) OnUnsubscribe(ctx context.Context, chatID int64) string {
	removed, err := s.registry.Remove(chatID)
	if err != nil {
		logger.Error("❌ [Notification] Не удалось отписать %d: %v", chatID, err)
		return textStorageFailure
	}
	if !removed {
		return textNotSubscribed
	}
	logger.Info("➖ [Notification] Подписчик %d отписался (осталось %d)", chatID, s.registry.Count())
	return textUnsubscribed
}

// OnReportRequest возвращает отчет или текст ошибки при полном отказе источников.
// ok=false означает, что вернулся текст ошибки.
func (s *Service) OnReportRequest(ctx context.Context) (text string, ok bool) {
	r := s.reports.Latest(ctx)
	if err := r.Err(); err != nil {
		logger.Error("❌ [Notification] Отчет по запросу не собран: %v", err)
		return textReportFailure, false
	}
	return r.Text, true
}

// OnScheduledTick собирает один отчет на весь тик и раздает его снапшоту подписчиков.
// Пустой реестр - пустой результат без обращения к API.
func (s *Service) OnScheduledTick(ctx context.Context) ([]Delivery, error) {
	recipients := s.registry.Snapshot()
	if len(recipients) == 0 {
		return nil, nil
	}

	r := s.reports.Compile(ctx)
	if err := r.Err(); err != nil {
		return nil, err
	}

	deliveries := make([]Delivery, len(recipients))
	for i, id := range recipients {
		deliveries[i] = Delivery{ChatID: id, Text: r.Text}
	}
	return deliveries, nil
}

// Broadcast отправляет результат тика последовательно с паузой.
// Ошибка доставки одному получателю логируется и не прерывает остальных.
// Дедлайн ctx ограничивает только сборку отчета: доставку прерывает лишь отмена.
func (s *Service) Broadcast(ctx context.Context) (BroadcastResult, error) {
	res := BroadcastResult{RunID: uuid.NewString()}
	log := logger.WithFields(logger.Fields{"run_id": res.RunID})

	deliveries, err := s.OnScheduledTick(ctx)
	if err != nil {
		log.Errorf("❌ [Broadcast] Отчет не собран, рассылка пропущена: %v", err)
		res.Skipped = true
		return res, err
	}
	if len(deliveries) == 0 {
		log.Debug("📭 [Broadcast] Нет подписчиков, рассылка пропущена")
		res.Skipped = true
		return res, nil
	}
	if s.sender == nil {
		return res, errors.New("sender is not configured")
	}

	res.Recipients = len(deliveries)
	dctx, stop := deliveryContext(ctx)
	defer stop()
	for _, d := range deliveries {
		if err := s.limiter.Wait(dctx); err != nil {
			log.Warnf("⚠️ [Broadcast] Рассылка прервана: %v", err)
			return res, err
		}
		if err := s.sender.Send(dctx, d.ChatID, d.Text); err != nil {
			res.Failed++
			log.WithField("chat_id", d.ChatID).Warnf("⚠️ [Broadcast] Не доставлено: %v", err)
			continue
		}
		res.Delivered++
	}

	log.Infof("📨 [Broadcast] Доставлено %d из %d (ошибок: %d)", res.Delivered, res.Recipients, res.Failed)
	return res, nil
}

// deliveryContext снимает с родителя дедлайн, но сохраняет явную отмену
func deliveryContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		if errors.Is(parent.Err(), context.Canceled) {
			cancel(parent.Err())
		}
	})
	return ctx, func() {
		stop()
		cancel(nil)
	}
}
