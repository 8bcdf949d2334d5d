// Package notifier 다양한 알림 채널(ntfy, 텔레그램 등)의 공통 동작을 정의합니다.
package notifier

import (
	"context"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
)

// Notifier 다양한 알림 채널을 추상화한 인터페이스입니다.
type Notifier interface {
	// ID Notifier 인스턴스의 고유 식별자(ID)를 반환합니다.
	ID() contract.NotifierID

	// Run 알림 발송을 처리하는 백그라운드 워커(Consumer)를 실행합니다.
	// 이 메서드는 블로킹되며, 큐에 쌓인 알림 요청을 하나씩 꺼내어 실제로 전송합니다.
	// Context가 취소되면 큐를 닫고 종료합니다.
	Run(ctx context.Context)

	// Send 알림 발송 요청을 내부 버퍼(Queue)에 등록하고 즉시 반환합니다.
	// 실제 전송은 Run() 고루틴에서 비동기로 처리되며, 전송 실패는 로깅으로만 처리됩니다.
	//
	// 반환값:
	//   - error: 큐가 가득 찼거나(ErrQueueFull) Notifier가 종료된 경우(ErrClosed)
	Send(ctx context.Context, notification contract.Notification) error
}
