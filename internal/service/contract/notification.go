package contract

import "context"

// Priority 알림 메시지의 중요도입니다. ntfy의 1~5 단계 우선순위 체계를 따릅니다.
// (https://docs.ntfy.sh/publish/#message-priority)
type Priority int

const (
	// PriorityMin 가장 낮은 우선순위입니다. 진동/알림음 없이 조용히 전달됩니다.
	PriorityMin Priority = 1

	// PriorityLow 낮은 우선순위입니다.
	PriorityLow Priority = 2

	// PriorityDefault 기본 우선순위입니다.
	PriorityDefault Priority = 3

	// PriorityHigh 높은 우선순위입니다. 재고 상태 변화 등 빠른 확인이 필요한 알림에 사용합니다.
	PriorityHigh Priority = 4

	// PriorityMax 가장 높은 우선순위입니다. 품절 임박 등 긴급 알림에 사용합니다.
	PriorityMax Priority = 5
)

// Notification 사용자에게 전달할 알림 메시지입니다.
//
// 필드 대부분은 ntfy의 발행 헤더(Title, Tags, Priority, Click, Attach)에 1:1로 대응하며,
// ntfy 외의 채널(텔레그램 등)은 각 Notifier가 자신의 규격에 맞게 변환하여 전송합니다.
type Notification struct {
	// NotifierID 알림을 발송할 채널의 식별자입니다. 비어있으면 기본 채널로 발송됩니다.
	NotifierID NotifierID

	// Title 알림 제목입니다.
	Title string

	// Message 알림 본문입니다.
	Message string

	// Priority 알림 중요도입니다. 0이면 PriorityDefault로 처리됩니다.
	Priority Priority

	// Tags 알림에 표시할 태그(이모지) 목록입니다. (예: "warning", "skull")
	Tags []string

	// ClickURL 알림 클릭 시 이동할 상품 페이지 주소입니다. (선택)
	ClickURL string

	// AttachURL 알림에 첨부할 상품 이미지 주소입니다. (선택)
	AttachURL string

	// ErrorOccurred 오류 상황에 대한 알림인지 여부입니다.
	ErrorOccurred bool
}

// NewErrorNotification 기본 채널로 발송되는 오류 알림을 생성합니다.
func NewErrorNotification(title, message string) Notification {
	return Notification{
		Title:         title,
		Message:       message,
		Priority:      PriorityHigh,
		Tags:          []string{"rotating_light"},
		ErrorOccurred: true,
	}
}

// NotificationSender 알림 발송 기능을 제공하는 인터페이스입니다.
// Monitor, Listener, API와 같은 클라이언트는 이 인터페이스를 통해 알림 서비스를 사용합니다.
type NotificationSender interface {
	// Notify 알림 메시지의 발송을 요청합니다.
	//
	// 발송 요청이 정상적으로 큐에 등록되면 nil을 반환하며, 이는 실제 전송 성공과는 무관합니다.
	// 실제 전송 실패(DeliveryError)는 각 Notifier가 로깅으로만 처리하고 재시도하지 않습니다.
	//
	// 반환값:
	//   - error: 서비스가 중지되었거나 존재하지 않는 NotifierID가 지정된 경우
	Notify(ctx context.Context, notification Notification) error
}

// NotificationHealthChecker Notification 서비스의 상태를 확인하는 인터페이스입니다.
type NotificationHealthChecker interface {
	// Health 서비스가 정상적으로 실행 중이면 nil을, 그렇지 않으면 에러를 반환합니다.
	Health() error
}
