// Package ntfy ntfy(https://ntfy.sh) 토픽으로 알림을 발송하는 Notifier 구현을 제공합니다.
package ntfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/notification/notifier"
)

// sendTimeout 개별 알림 발송 요청의 HTTP 타임아웃
const sendTimeout = 10 * time.Second

// ntfyNotifier ntfy 서버의 토픽으로 알림을 발행하는 Notifier 구현체입니다.
//
// 알림 메시지의 각 필드는 ntfy의 발행 규격에 1:1로 대응됩니다:
// 본문은 요청 바디로, 나머지는 Title/Priority/Tags/Click/Attach 헤더로 전달됩니다.
// (https://docs.ntfy.sh/publish/)
type ntfyNotifier struct {
	*notifier.Base

	client *http.Client

	// publishURL 알림이 발행되는 주소 ("{서버}/{토픽}")
	publishURL string
}

var _ notifier.Notifier = (*ntfyNotifier)(nil)

// New ntfy Notifier를 생성합니다.
func New(cfg config.NtfyConfig) notifier.Notifier {
	return &ntfyNotifier{
		Base: notifier.NewBase(contract.NotifierID(cfg.ID)),

		client: &http.Client{Timeout: sendTimeout},

		publishURL: fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Server, "/"), cfg.Topic),
	}
}

// Run 대기열의 알림 요청을 소비하는 워커를 실행합니다. Context가 취소될 때까지 블로킹됩니다.
func (n *ntfyNotifier) Run(ctx context.Context) {
	n.RunLoop(ctx, n.publish)
}

// publish 단일 알림을 ntfy 토픽으로 발행합니다.
func (n *ntfyNotifier) publish(ctx context.Context, notification contract.Notification) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.publishURL, strings.NewReader(notification.Message))
	if err != nil {
		return apperrors.Wrapf(err, apperrors.Internal, "ntfy 발행 요청 생성에 실패했습니다: '%s'", n.publishURL)
	}

	req.Header.Set("Title", notification.Title)
	if notification.Priority != 0 {
		req.Header.Set("Priority", strconv.Itoa(int(notification.Priority)))
	}
	if len(notification.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(notification.Tags, ","))
	}
	if notification.ClickURL != "" {
		req.Header.Set("Click", notification.ClickURL)
	}
	if notification.AttachURL != "" {
		req.Header.Set("Attach", notification.AttachURL)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.Unavailable, "ntfy 발행 요청에 실패했습니다: '%s'", n.publishURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.Newf(apperrors.ExecutionFailed, "ntfy 서버가 비정상 상태 코드를 반환했습니다 (HTTP %d): %s", resp.StatusCode, string(body))
	}

	return nil
}
