package contract

import (
	"context"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
)

// WatchRegistrar 감시 목록에 대한 변경/조회 기능을 제공하는 인터페이스입니다.
//
// 감시 목록과 스냅샷 저장소의 소유자는 Monitor 서비스이며, 명령 수신(Listener)이나
// API 핸들러는 이 인터페이스를 통해서만 목록을 변경할 수 있습니다.
// 이로써 "감시 항목 제거 시 스냅샷도 함께 제거된다"는 불변 조건이 한 곳에서 보장됩니다.
type WatchRegistrar interface {
	// AddWatch 상품 URL을 검증하고 감시 목록에 등록합니다.
	//
	// 등록 과정에서 상품 정보를 1회 조회하여 URL의 유효성을 확인하고 정규화된 URL을
	// 식별자로 확정합니다. 동일한 상품이 이미 감시 중이면 별칭만 새 값으로 덮어쓰며,
	// 재등록은 에러가 아닙니다. 등록에 성공하면 감시 목록이 즉시 영속 저장됩니다.
	//
	// 반환값:
	//   - watch.Entry: 정규화된 URL이 반영된 등록 항목
	//   - watch.ProductSnapshot: 검증 과정에서 조회된 상품 정보 (등록 알림 구성에 사용)
	//   - error: 상품 조회 실패, 저장 실패 시
	AddWatch(ctx context.Context, productURL string, nickname string) (watch.Entry, watch.ProductSnapshot, error)

	// RemoveWatch 토큰(URL 또는 별칭)과 일치하는 모든 감시 항목을 제거합니다.
	//
	// 제거된 항목의 스냅샷도 함께 삭제되므로, 같은 상품을 다시 등록하면 최초 관측으로
	// 취급됩니다. 일치하는 항목이 없으면 빈 슬라이스를 반환하며 에러가 아닙니다.
	// 목록이 변경된 경우 감시 목록이 즉시 영속 저장됩니다.
	RemoveWatch(ctx context.Context, token string) ([]watch.Entry, error)

	// Watches 현재 감시 중인 항목들의 복사본을 반환합니다.
	Watches() []watch.Entry
}
