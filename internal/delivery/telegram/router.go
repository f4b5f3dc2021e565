// internal/delivery/telegram/router.go
package telegram

import (
	"context"
	"fmt"
	"strings"
)

// Commands - точки входа ядра, к которым привязаны команды бота
type Commands interface {
	OnSubscribe(ctx context.Context, chatID int64, firstName string) string
	OnUnsubscribe(ctx context.Context, chatID int64) string
	OnReportRequest(ctx context.Context) (string, bool)
}

// Incoming - входящее сообщение, уже извлеченное из апдейта
type Incoming struct {
	ChatID    int64
	FirstName string
	Text      string
}

// Reply - ответ на команду
type Reply struct {
	Text string
}

// command -> обработчик, алиасы указывают на один обработчик
type handlerFunc func(ctx context.Context, in Incoming) Reply

// Router сопоставляет текстовые команды с вызовами ядра
type Router struct {
	commands      Commands
	handlers      map[string]handlerFunc
	asset         string
	adminUsername string
}

// NewRouter создает маршрутизатор команд
func NewRouter(commands Commands, asset, adminUsername string) *Router {
	r := &Router{commands: commands, asset: asset, adminUsername: adminUsername}

	subscribe := func(ctx context.Context, in Incoming) Reply {
		return Reply{Text: r.commands.OnSubscribe(ctx, in.ChatID, in.FirstName)}
	}
	unsubscribe := func(ctx context.Context, in Incoming) Reply {
		return Reply{Text: r.commands.OnUnsubscribe(ctx, in.ChatID)}
	}
	now := func(ctx context.Context, _ Incoming) Reply {
		text, _ := r.commands.OnReportRequest(ctx)
		return Reply{Text: text}
	}

	r.handlers = map[string]handlerFunc{
		"start":       subscribe,
		"subscribe":   subscribe,
		"stop":        unsubscribe,
		"unsubscribe": unsubscribe,
		"now":         now,
		"report":      now,
		"help":        func(context.Context, Incoming) Reply { return Reply{Text: r.helpText()} },
	}
	return r
}

// Route возвращает ответ; ok=false для обычного текста и неизвестных команд
func (r *Router) Route(ctx context.Context, in Incoming) (Reply, bool) {
	name, ok := parseCommand(in.Text)
	if !ok {
		return Reply{}, false
	}
	h, ok := r.handlers[name]
	if !ok {
		return Reply{}, false
	}
	return h(ctx, in), true
}

func (r *Router) helpText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s Update bot</b>\n", r.asset)
	b.WriteString("/start - đăng ký nhận báo cáo định kỳ\n")
	b.WriteString("/stop - hủy đăng ký\n")
	b.WriteString("/now - nhận báo cáo ngay\n")
	b.WriteString("/help - danh sách lệnh")
	if r.adminUsername != "" {
		fmt.Fprintf(&b, "\nLiên hệ: @%s", r.adminUsername)
	}
	return b.String()
}

// parseCommand: "/Now@my_bot extra" -> "now"
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text[1:])
	if len(name) == 0 {
		return "", false
	}
	cmd := name[0]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	if cmd == "" {
		return "", false
	}
	return strings.ToLower(cmd), true
}
