// Package fetch 상품 정보 조회 기능의 공통 인터페이스를 정의합니다.
package fetch

import (
	"context"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
)

// Result 상품 조회의 결과물입니다.
type Result struct {
	// CanonicalURL 색상/사이즈 코드까지 정규화된 상품 URL입니다.
	// 감시 목록과 스냅샷 저장소에서 상품을 식별하는 키로 사용됩니다.
	CanonicalURL string

	// Snapshot 조회 시점의 상품 상태입니다.
	Snapshot watch.ProductSnapshot
}

// Fetcher 상품 URL로부터 현재 상품 상태를 조회하는 인터페이스입니다.
//
// 구현체는 재시도, 요청 속도 제한, 타임아웃을 스스로 처리해야 하며,
// 호출부(감시 사이클)는 반환된 에러를 해당 상품에 한정된 실패로 취급합니다.
type Fetcher interface {
	// Fetch 상품의 현재 상태를 조회합니다.
	//
	// 반환값:
	//   - *Result: 정규화된 URL과 상품 스냅샷
	//   - error: URL이 상품 페이지가 아니거나(InvalidInput), 조회/파싱에 실패한 경우
	Fetch(ctx context.Context, productURL string) (*Result, error)
}
