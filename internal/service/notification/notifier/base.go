package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
)

// component Notifier 로깅용 컴포넌트 이름
const component = "notification.notifier"

const (
	// defaultBufferSize 알림 발송 대기열의 기본 버퍼 크기입니다.
	// 감시 사이클이 한 번에 생성할 수 있는 알림 수(항목 수 × 범주 수)를 수용할 수 있어야 합니다.
	defaultBufferSize = 100

	// defaultEnqueueTimeout 대기열이 가득 찼을 때 요청을 버리기 전까지 기다려줄 최대 시간입니다.
	defaultEnqueueTimeout = 5 * time.Second
)

// SendFunc 단일 알림을 실제 채널로 전송하는 함수입니다. 각 Notifier 구현체가 제공합니다.
type SendFunc func(ctx context.Context, notification contract.Notification) error

// request 대기열을 통해 워커에게 전달되는 알림 발송 요청입니다.
//
// Go 관례상 context.Context를 구조체에 저장하는 것은 지양되지만,
// 채널을 통해 Context를 전달하기 위해 내부적으로만 사용하는 래퍼입니다.
type request struct {
	ctx          context.Context
	notification contract.Notification
}

// Base 모든 Notifier 구현체가 임베딩하여 사용하는 기본 구조체입니다.
//
// "알림을 큐에 넣고 워커로 소비하는 책임"을 Base가 담당하므로, 구체적인 구현체(ntfy, 텔레그램)는
// "실제로 외부 API를 호출하는 책임"(SendFunc)에만 집중할 수 있습니다.
type Base struct {
	id contract.NotifierID

	// notificationC 알림 발송 요청을 버퍼링하는 내부 대기열입니다.
	// 요청자는 즉시 리턴받고, 워커는 자신의 속도에 맞춰 메시지를 가져갑니다.
	notificationC chan *request

	// enqueueTimeout 대기열이 가득 찼을 때 기다려줄 최대 시간입니다.
	// 이 시간 동안에도 빈 공간이 생기지 않으면 요청은 드롭됩니다.
	enqueueTimeout time.Duration

	// done 종료 이벤트를 대기 중인 모든 고루틴에게 전파하는 신호 채널입니다.
	done chan struct{}

	// closed Close()가 호출되어 더 이상 새로운 요청을 받지 않는 상태인지를 나타냅니다.
	closed bool

	mu sync.Mutex
}

// NewBase 새로운 Base Notifier 인스턴스를 생성합니다.
func NewBase(id contract.NotifierID) *Base {
	return &Base{
		id: id,

		notificationC:  make(chan *request, defaultBufferSize),
		enqueueTimeout: defaultEnqueueTimeout,

		done: make(chan struct{}),
	}
}

// ID Notifier 인스턴스의 고유 식별자(ID)를 반환합니다.
func (b *Base) ID() contract.NotifierID {
	return b.id
}

// Send 알림 발송 요청을 대기열에 등록합니다.
//
// 실제 발송은 수행하지 않으므로 빠르게 리턴됩니다. 대기열이 가득 찬 경우
// enqueueTimeout만큼 대기하며, 그 안에 빈 공간이 생기지 않으면 요청을 드롭합니다.
func (b *Base) Send(ctx context.Context, notification contract.Notification) error {
	if ctx == nil {
		ctx = context.Background()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.mu.Unlock()

	// 대기열 포화 시 무한정 기다리지 않도록 타임아웃을 겁니다. (Backpressure)
	timer := time.NewTimer(b.enqueueTimeout)
	defer timer.Stop()

	select {
	case b.notificationC <- &request{ctx: ctx, notification: notification}:
		return nil

	case <-b.done:
		// 대기 중에 Notifier가 종료됨 (Graceful Shutdown)
		return ErrClosed

	case <-ctx.Done():
		return ctx.Err()

	case <-timer.C:
		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": b.id,
			"title":       notification.Title,
		}).Warn("알림 요청 거부: 발송 대기열 용량 초과 (Queue Full)")
		return ErrQueueFull
	}
}

// RunLoop 대기열의 알림 요청을 하나씩 꺼내어 send 함수로 전송하는 워커 루프입니다.
//
// 전송 실패는 해당 알림에 한정된 실패로 취급하여 로깅만 하고 재시도하지 않습니다.
// Context가 취소되면 대기열을 닫고, 큐에 남은 요청은 폐기한 뒤 종료합니다.
func (b *Base) RunLoop(ctx context.Context, send SendFunc) {
	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_id": b.id,
	}).Debug("Notifier 워커 시작")

	for {
		select {
		case req := <-b.notificationC:
			if err := send(req.ctx, req.notification); err != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"notifier_id": b.id,
					"title":       req.notification.Title,
					"error":       err,
				}).Error("알림 전송 실패 (재시도하지 않음)")
			}

		case <-ctx.Done():
			b.Close()

			// 큐에 남은 요청은 수신자가 없으므로 폐기합니다.
			// 채널 자체는 GC가 회수하므로 명시적으로 닫지 않습니다.
			if remaining := len(b.notificationC); remaining > 0 {
				applog.WithComponentAndFields(component, applog.Fields{
					"notifier_id": b.id,
					"dropped":     remaining,
				}).Warn("Notifier 종료: 대기열에 남은 알림 요청을 폐기합니다")
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"notifier_id": b.id,
			}).Debug("Notifier 워커 종료")

			return
		}
	}
}

// Close Notifier의 운영을 중단합니다. 이후의 Send 요청은 ErrClosed로 거부됩니다.
//
// 내부 대기열(notificationC)은 명시적으로 닫지 않습니다. 여러 고루틴이 동시에 Send를
// 호출할 수 있는 환경에서 채널을 닫으면 "send on closed channel" 패닉이 발생할 수 있습니다.
func (b *Base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.done)
	}
}
