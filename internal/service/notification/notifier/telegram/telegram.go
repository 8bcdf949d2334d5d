// Package telegram 텔레그램 봇으로 알림을 발송하는 Notifier 구현을 제공합니다.
//
// 발송 전용(Send-Only)으로 동작하며, 봇 명령어 수신(Long Polling)은 수행하지 않습니다.
// 감시 항목의 추가/제거 명령은 ntfy 명령 토픽을 통해서만 접수됩니다.
package telegram

import (
	"context"
	"fmt"
	"html"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/notification/notifier"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramNotifier 텔레그램 봇 API로 알림 메시지를 전송하는 Notifier 구현체입니다.
type telegramNotifier struct {
	*notifier.Base

	client *tgbotapi.BotAPI
	chatID int64
}

var _ notifier.Notifier = (*telegramNotifier)(nil)

// New 텔레그램 Notifier를 생성합니다.
//
// 생성 과정에서 봇 토큰의 유효성을 확인하기 위해 텔레그램 서버와 통신(getMe)하므로,
// 토큰이 잘못되었거나 네트워크에 문제가 있으면 에러를 반환합니다.
// 이 에러는 서비스 기동 단계에서 발생하므로 치명적 오류로 처리됩니다.
func New(cfg config.TelegramConfig) (notifier.Notifier, error) {
	client, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.Unavailable, "텔레그램 봇 초기화에 실패했습니다 (NotifierID: '%s')", cfg.ID)
	}

	return &telegramNotifier{
		Base: notifier.NewBase(contract.NotifierID(cfg.ID)),

		client: client,
		chatID: cfg.ChatID,
	}, nil
}

// Run 대기열의 알림 요청을 소비하는 워커를 실행합니다. Context가 취소될 때까지 블로킹됩니다.
func (n *telegramNotifier) Run(ctx context.Context) {
	n.RunLoop(ctx, n.sendMessage)
}

// sendMessage 단일 알림을 텔레그램 메시지로 전송합니다.
//
// 텔레그램에는 ntfy의 제목/우선순위 개념이 없으므로, 제목을 굵은 글씨의 첫 줄로 합쳐서 보냅니다.
// 상품 페이지 링크가 있으면 본문 마지막에 덧붙입니다.
func (n *telegramNotifier) sendMessage(_ context.Context, notification contract.Notification) error {
	// 상품명 등에 포함될 수 있는 HTML 특수 문자가 파싱 오류를 일으키지 않도록 이스케이프합니다.
	text := fmt.Sprintf("<b>【 %s 】</b>", html.EscapeString(notification.Title))
	if notification.Message != "" {
		text += "\n\n" + html.EscapeString(notification.Message)
	}
	if notification.ClickURL != "" {
		text += fmt.Sprintf("\n\n<a href=\"%s\">상품 페이지 열기</a>", notification.ClickURL)
	}

	messageConfig := tgbotapi.NewMessage(n.chatID, text)
	messageConfig.ParseMode = tgbotapi.ModeHTML
	messageConfig.DisableWebPagePreview = notification.AttachURL == ""

	if _, err := n.client.Send(messageConfig); err != nil {
		return apperrors.Wrapf(err, apperrors.ExecutionFailed, "텔레그램 메시지 전송에 실패했습니다 (ChatID: %d)", n.chatID)
	}

	return nil
}
