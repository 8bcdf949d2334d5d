// Package storage 감시 목록을 JSON 파일로 영속화하는 저장소를 제공합니다.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
)

// component Storage 로깅용 컴포넌트 이름
const component = "watch.storage"

// WatchListStore 감시 목록의 적재/저장 기능을 제공하는 인터페이스입니다.
type WatchListStore interface {
	// Load 저장된 감시 목록을 읽어옵니다. 파일이 존재하지 않으면 에러를 반환합니다.
	Load() ([]watch.Entry, error)

	// Save 감시 목록 전체를 원자적으로 저장합니다.
	Save(entries []watch.Entry) error
}

// fileWatchListStore 파일 시스템 기반의 감시 목록 저장소 구현체입니다.
//
// [파일 형식]
// 상품 URL을 키로, 별칭을 값으로 하는 단순한 JSON 객체입니다:
//
//	{
//	  "https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL09": "여름용 티셔츠"
//	}
type fileWatchListStore struct {
	path string

	// tempPattern 원자적 쓰기에 사용되는 임시 파일의 이름 패턴입니다.
	tempPattern string

	// mu 동일 파일에 대한 동시 쓰기를 방지합니다.
	// 감시 사이클과 명령 수신 고루틴이 각각 Save를 호출할 수 있습니다.
	mu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ WatchListStore = (*fileWatchListStore)(nil)

// NewFileStore 지정된 경로의 JSON 파일을 사용하는 감시 목록 저장소를 생성합니다.
// 상대 경로는 절대 경로로 변환되며, 상위 디렉토리가 없으면 생성합니다.
func NewFileStore(path string) (WatchListStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "감시 목록 파일의 절대 경로 변환에 실패했습니다: '%s'", path)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "감시 목록 저장 디렉토리 생성에 실패했습니다: '%s'", filepath.Dir(absPath))
	}

	return &fileWatchListStore{
		path:        absPath,
		tempPattern: tempFilePattern(absPath),
	}, nil
}

// Load 감시 목록 파일을 읽어 항목 목록으로 변환합니다.
//
// 파일이 존재하지 않으면 System 에러를 반환합니다. 감시 목록은 서비스 기동의
// 전제 조건이므로, 호출부(main)는 이 에러를 치명적 오류로 처리해야 합니다.
func (s *fileWatchListStore) Load() ([]watch.Entry, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()

	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrapf(err, apperrors.System, "감시 목록 파일을 찾을 수 없습니다: '%s'", s.path)
		}
		return nil, apperrors.Wrapf(err, apperrors.System, "감시 목록 파일 읽기에 실패했습니다: '%s'", s.path)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ParsingFailed, "감시 목록 파일 파싱에 실패했습니다: '%s'", s.path)
	}

	entries := make([]watch.Entry, 0, len(raw))
	for url, nickname := range raw {
		entries = append(entries, watch.Entry{URL: url, Nickname: nickname})
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"path":  s.path,
		"count": len(entries),
	}).Info("감시 목록 적재 완료")

	return entries, nil
}

// Save 감시 목록 전체를 원자적으로 저장합니다.
//
// [저장 전략: 원자적 쓰기]
// 저장 중 시스템 장애(전원 차단, 프로세스 종료)가 발생해도 기존 파일이 손상되지 않도록
// "임시 파일 쓰기 → fsync → 원자적 이름 변경" 3단계로 저장합니다.
func (s *fileWatchListStore) Save(entries []watch.Entry) error {
	raw := make(map[string]string, len(entries))
	for _, e := range entries {
		raw[e.URL] = e.Nickname
	}

	// 직렬화는 락 획득 전에 수행하여 락 보유 시간을 최소화합니다.
	data, err := json.MarshalIndent(raw, "", "\t")
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "감시 목록 직렬화에 실패했습니다")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeAtomic(data)
}

// writeAtomic 데이터를 파일에 원자적으로 기록합니다.
func (s *fileWatchListStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)

	// 같은 디렉토리 내에 임시 파일을 생성해야 rename이 원자적으로 동작합니다.
	tmpFile, err := os.CreateTemp(dir, s.tempPattern)
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 생성에 실패했습니다")
	}
	tmpPath := tmpFile.Name()

	// Windows에서는 열린 파일을 삭제할 수 없으므로 Close가 Remove보다 먼저 실행되어야 합니다.
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 쓰기에 실패했습니다")
	}

	// 운영체제 버퍼 캐시에만 남은 상태에서 전원이 차단되는 것을 방지합니다.
	if err := tmpFile.Sync(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 동기화에 실패했습니다")
	}

	if err := tmpFile.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "임시 파일 닫기에 실패했습니다")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return apperrors.Wrapf(err, apperrors.System, "감시 목록 파일 교체에 실패했습니다: '%s'", s.path)
	}

	// 이름 변경 사항을 디스크에 기록합니다. 실패해도 치명적이지 않으므로 에러를 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}
