// Package watch 감시 대상 상품 목록과 상품 스냅샷, 그리고 두 스냅샷 간의
// 변경 사항을 판별하는 비교 규칙을 정의하는 도메인 패키지입니다.
package watch

import (
	"sort"
	"sync"
)

// Entry 감시 목록의 단일 항목입니다.
//
// URL은 색상/사이즈 코드까지 정규화된 상품 URL로, 감시 목록과 스냅샷 저장소
// 양쪽에서 상품을 식별하는 키로 사용됩니다.
type Entry struct {
	// URL 정규화된 상품 페이지 주소 (식별자)
	URL string `json:"url"`

	// Nickname 사용자가 붙인 상품 별칭
	Nickname string `json:"nickname"`
}

// List 감시 대상 상품들의 목록입니다.
//
// 감시 사이클과 명령 수신 고루틴이 동시에 접근하므로 모든 메서드는 내부 뮤텍스로 보호됩니다.
// 뮤텍스는 목록의 읽기/쓰기 동안에만 짧게 유지되며, 네트워크 I/O가 락 안에서 수행되는 일은 없습니다.
type List struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewList 감시 목록을 생성합니다. 초기 항목이 있으면 함께 등록합니다.
func NewList(entries []Entry) *List {
	l := &List{
		entries: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		l.entries[e.URL] = e
	}
	return l
}

// Add 감시 항목을 등록합니다.
//
// 동일한 URL의 항목이 이미 존재하면 별칭을 새 값으로 덮어씁니다. 재등록은 에러가 아니며,
// 이때 이전 항목과 true를 함께 반환하므로 호출자는 필요 시 이전 상태로 되돌릴 수 있습니다.
func (l *List) Add(e Entry) (previous Entry, replaced bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	previous, replaced = l.entries[e.URL]
	l.entries[e.URL] = e

	return previous, replaced
}

// Remove 토큰(URL 또는 별칭)과 일치하는 모든 항목을 목록에서 제거하고, 제거된 항목들을 반환합니다.
//
// 토큰은 상품 URL과 먼저 비교되며, 일치하는 URL이 없더라도 별칭이 같은 항목이 있으면 함께
// 제거됩니다. 여러 항목이 같은 별칭을 공유하는 경우 모두 제거됩니다.
// 일치하는 항목이 없으면 빈 슬라이스를 반환하며, 이는 에러가 아닙니다.
func (l *List) Remove(token string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []Entry
	for url, e := range l.entries {
		if e.URL == token || e.Nickname == token {
			removed = append(removed, e)
			delete(l.entries, url)
		}
	}

	sortEntries(removed)

	return removed
}

// Contains 해당 URL의 항목이 감시 목록에 존재하는지 확인합니다.
func (l *List) Contains(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, exists := l.entries[url]
	return exists
}

// Entries 현재 시점의 감시 목록 복사본을 URL 오름차순으로 정렬하여 반환합니다.
//
// 반환된 슬라이스는 내부 상태와 완전히 분리된 복사본이므로, 호출부(감시 사이클)는
// 락을 잡지 않은 상태에서 목록을 순회하며 네트워크 요청을 수행할 수 있습니다.
// 사이클 도중의 목록 변경은 다음 사이클부터 반영됩니다.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}

	sortEntries(entries)

	return entries
}

// Len 현재 감시 중인 항목의 개수를 반환합니다.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// sortEntries 항목 순서를 URL 기준으로 고정하여 로깅과 알림 순서의 일관성을 보장합니다.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].URL < entries[j].URL
	})
}
