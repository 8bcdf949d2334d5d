package monitor

import (
	"context"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
)

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ contract.WatchRegistrar = (*Service)(nil)

// AddWatch 상품 URL을 검증하고 감시 목록에 등록합니다.
//
// 등록 과정에서 상품 정보를 1회 조회하여 URL의 유효성을 확인하고, 조회 결과의 정규화된
// URL을 감시 키로 사용합니다. 동일한 URL이 이미 감시 중이면 별칭만 새 값으로 덮어쓰며,
// 이때 스냅샷 저장소는 건드리지 않으므로 기존 상품의 변경 감지는 끊기지 않습니다.
// 조회된 스냅샷은 등록 알림 구성을 위해 호출자에게 반환될 뿐, 스냅샷 저장소에는 저장되지
// 않습니다. 따라서 새로 등록된 상품의 첫 감시 사이클은 항상 최초 관측으로 취급되어
// 변경 이벤트를 생성하지 않습니다.
func (s *Service) AddWatch(ctx context.Context, productURL string, nickname string) (watch.Entry, watch.ProductSnapshot, error) {
	if !s.isRunning() {
		return watch.Entry{}, watch.ProductSnapshot{}, ErrServiceNotRunning
	}

	result, err := s.fetcher.Fetch(ctx, productURL)
	if err != nil {
		return watch.Entry{}, watch.ProductSnapshot{}, err
	}

	entry := watch.Entry{URL: result.CanonicalURL, Nickname: nickname}
	previous, replaced := s.watches.Add(entry)

	if err := s.persist(); err != nil {
		// 저장에 실패한 변경이 메모리에만 남지 않도록 목록을 이전 상태로 되돌립니다.
		if replaced {
			s.watches.Add(previous)
		} else {
			s.watches.Remove(entry.URL)
		}
		return watch.Entry{}, watch.ProductSnapshot{}, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url":      entry.URL,
		"nickname": entry.Nickname,
		"replaced": replaced,
	}).Info("감시 항목 등록 완료")

	return entry, result.Snapshot, nil
}

// RemoveWatch 토큰(URL 또는 별칭)과 일치하는 모든 감시 항목을 제거합니다.
//
// 제거된 항목의 스냅샷도 함께 삭제되므로, 같은 상품을 다시 등록하면 최초 관측으로
// 취급됩니다. 일치하는 항목이 없으면 빈 결과를 반환하며 에러가 아닙니다.
func (s *Service) RemoveWatch(ctx context.Context, token string) ([]watch.Entry, error) {
	if !s.isRunning() {
		return nil, ErrServiceNotRunning
	}

	removed := s.watches.Remove(token)
	if len(removed) == 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"token": token,
		}).Debug("감시 항목 제거 무시: 일치하는 항목이 없습니다")
		return nil, nil
	}

	s.snapshotsMu.Lock()
	for _, entry := range removed {
		delete(s.snapshots, entry.URL)
	}
	s.snapshotsMu.Unlock()

	if err := s.persist(); err != nil {
		return removed, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"token":         token,
		"removed_count": len(removed),
	}).Info("감시 항목 제거 완료")

	return removed, nil
}

// Watches 현재 감시 중인 항목들의 복사본을 반환합니다.
func (s *Service) Watches() []watch.Entry {
	if !s.isRunning() {
		return nil
	}

	return s.watches.Entries()
}

// persist 현재 감시 목록 전체를 저장소에 기록합니다.
func (s *Service) persist() error {
	return s.store.Save(s.watches.Entries())
}

func (s *Service) isRunning() bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	return s.running
}
