// Package monitor 감시 목록의 상품들을 주기적으로 조회하여 직전 상태와 비교하고,
// 변경 사항을 알림으로 발송하는 Monitor 서비스를 제공합니다.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/fetch"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch/storage"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	"github.com/robfig/cron/v3"
)

// component Monitor 서비스의 로깅용 컴포넌트 이름
const component = "monitor.service"

// Service 감시 사이클을 주기적으로 실행하는 Monitor 서비스입니다.
//
// 감시 목록(watches)과 스냅샷 저장소(snapshots)의 소유자이며, 외부(Listener, API)는
// contract.WatchRegistrar 인터페이스를 통해서만 목록을 변경할 수 있습니다.
//
// 주요 책임:
//   - Cron 스케줄에 따른 감시 사이클 실행 (조회 → 비교 → 알림 → 스냅샷 교체)
//   - 감시 항목 추가/제거 및 감시 목록의 영속화
//   - 항목 제거 시 스냅샷 동반 삭제 (재등록 시 최초 관측으로 취급)
type Service struct {
	appConfig *config.AppConfig

	// watches 감시 대상 상품 목록입니다. 서비스 시작 시 저장소에서 적재됩니다.
	watches *watch.List

	// snapshots 상품 URL을 키로 하는 직전 사이클의 스냅샷 저장소입니다.
	snapshots   map[string]watch.ProductSnapshot
	snapshotsMu sync.Mutex

	// store 감시 목록을 영속화하는 저장소입니다. 목록이 변경될 때마다 즉시 저장됩니다.
	store storage.WatchListStore

	// fetcher 상품 정보를 조회하는 클라이언트입니다. 감시 사이클과 항목 등록 검증이 공유합니다.
	fetcher fetch.Fetcher

	// notificationSender 변경 알림을 외부 채널로 전송하는 인터페이스입니다.
	notificationSender contract.NotificationSender

	cron *cron.Cron

	// cycleMu 감시 사이클의 중복 실행을 방지합니다.
	// 기동 직후의 초기화 사이클과 Cron이 실행하는 정기 사이클이 겹칠 수 있습니다.
	cycleMu sync.Mutex

	running   bool
	runningMu sync.Mutex
}

// NewService Monitor 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, store storage.WatchListStore, fetcher fetch.Fetcher) *Service {
	if store == nil {
		panic("WatchListStore는 필수입니다")
	}
	if fetcher == nil {
		panic("Fetcher는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,

		snapshots: make(map[string]watch.ProductSnapshot),

		store:   store,
		fetcher: fetcher,
	}
}

// SetNotificationSender 변경 알림을 전달할 NotificationSender를 주입합니다.
//
// Notification 서비스와의 순환 의존성 문제로 생성자에서 받지 않으므로,
// Start() 호출 전에 이 메서드를 통해 별도로 주입해야 합니다.
func (s *Service) SetNotificationSender(notificationSender contract.NotificationSender) {
	s.notificationSender = notificationSender
}

// Start Monitor 서비스를 시작합니다.
//
// 저장소에서 감시 목록을 적재한 뒤 Cron 엔진에 감시 사이클을 등록하고,
// 별도의 고루틴에서 초기화 사이클(모든 상품의 스냅샷 준비)을 수행합니다.
//
// 매개변수:
//   - serviceStopCtx: 서비스 종료 신호를 받기 위한 Context
//   - serviceStopWG: 서비스 종료 완료를 알리기 위한 WaitGroup
//
// 반환값:
//   - error: NotificationSender 미주입, 감시 목록 적재 실패, 스케줄 등록 실패 시
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Monitor 서비스 초기화 프로세스를 시작합니다")

	if s.notificationSender == nil {
		serviceStopWG.Done()
		return ErrNotificationSenderNotInitialized
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Monitor 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// 1. 감시 목록 적재
	// 감시 목록은 서비스 기동의 전제 조건이므로, 적재 실패는 치명적 오류로 반환됩니다.
	entries, err := s.store.Load()
	if err != nil {
		serviceStopWG.Done()
		return err
	}
	s.watches = watch.NewList(entries)

	// 2. Cron 엔진 초기화
	// - Recover: Panic 발생 시 복구하여 다음 사이클에 영향을 주지 않음
	// - SkipIfStillRunning: 이전 사이클이 끝나지 않았으면 다음 사이클을 건너뜀
	s.cron = cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)

	timeSpec := fmt.Sprintf("@every %ds", s.appConfig.Monitor.RefreshTime)
	if _, err := s.cron.AddFunc(timeSpec, func() {
		s.runCycle(serviceStopCtx, false)
	}); err != nil {
		serviceStopWG.Done()
		return fmt.Errorf("감시 사이클 스케줄 등록에 실패했습니다 (TimeSpec: %s): %w", timeSpec, err)
	}

	// 3. 스케줄러 시작
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"watch_count":  s.watches.Len(),
		"refresh_time": s.appConfig.Monitor.RefreshTime,
	}).Info("서비스 시작 완료: Monitor 서비스가 정상적으로 초기화되었습니다")

	// 4. 초기화 사이클 실행 (고루틴)
	// 감시 중인 모든 상품을 한 차례 조회하여 비교 기준이 될 스냅샷을 준비합니다.
	// NotifyOnStartup이 켜져 있으면 각 상품에 대해 등록 알림을 발송합니다.
	go s.runCycle(serviceStopCtx, s.appConfig.Monitor.NotifyOnStartup)

	// 5. 종료 신호 대기 (고루틴)
	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 Monitor 서비스를 안전하게 중지합니다.
// 진행 중인 감시 사이클이 있으면 완료될 때까지 대기합니다.
func (s *Service) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Monitor 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Monitor 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// runCycle 감시 사이클을 1회 실행합니다.
//
// 사이클 시작 시점의 감시 목록 복사본을 기준으로, 설정된 동시 실행 한도 내에서
// 각 상품을 병렬로 점검합니다. 사이클 도중의 목록 변경은 다음 사이클부터 반영됩니다.
//
// announceFirstSight가 true이면 처음 관측된 상품에 대해 등록 알림을 발송합니다.
// (기동 직후의 초기화 사이클에서만 사용됩니다)
func (s *Service) runCycle(ctx context.Context, announceFirstSight bool) {
	// 초기화 사이클과 정기 사이클이 겹치면 나중에 시작된 쪽을 건너뜁니다.
	if !s.cycleMu.TryLock() {
		applog.WithComponent(component).Warn("감시 사이클 건너뜀: 이전 사이클이 아직 진행 중입니다")
		return
	}
	defer s.cycleMu.Unlock()

	entries := s.watches.Entries()
	if len(entries) == 0 {
		applog.WithComponent(component).Debug("감시 사이클 건너뜀: 감시 중인 상품이 없습니다")
		return
	}

	started := time.Now()

	applog.WithComponentAndFields(component, applog.Fields{
		"watch_count": len(entries),
	}).Debug("감시 사이클 시작")

	// 동시 조회 개수를 제한하는 세마포어
	sem := make(chan struct{}, s.appConfig.Monitor.MaxConcurrentFetches)

	var wg sync.WaitGroup
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(entry watch.Entry) {
			defer wg.Done()
			defer func() { <-sem }()

			s.checkWatch(ctx, entry, announceFirstSight)
		}(entry)
	}
	wg.Wait()

	applog.WithComponentAndFields(component, applog.Fields{
		"watch_count": len(entries),
		"elapsed":     time.Since(started).Round(time.Millisecond).String(),
	}).Info("감시 사이클 완료")
}

// checkWatch 단일 감시 항목을 점검합니다.
//
// 상품을 조회하여 직전 스냅샷과 비교하고, 변경 사항이 있으면 범주별로 1건씩 알림을
// 발송합니다. 조회 실패는 해당 항목에 한정된 실패로 처리되어 이번 사이클만 건너뛰며,
// 기존 스냅샷은 그대로 유지됩니다.
func (s *Service) checkWatch(ctx context.Context, entry watch.Entry, announceFirstSight bool) {
	result, err := s.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":      entry.URL,
			"nickname": entry.Nickname,
			"error":    err,
		}).Warn("상품 조회 실패: 이번 사이클을 건너뜁니다 (기존 스냅샷 유지)")
		return
	}

	s.snapshotsMu.Lock()
	prev, seen := s.snapshots[entry.URL]
	s.snapshotsMu.Unlock()

	var notifications []contract.Notification
	if !seen {
		// 최초 관측된 상품은 비교 기준이 없으므로 변경 이벤트를 생성하지 않습니다.
		if announceFirstSight {
			notifications = append(notifications, RenderAdded(entry, result.Snapshot))
		}
	} else {
		for _, change := range watch.Diff(entry, &prev, result.Snapshot) {
			notifications = append(notifications, renderChange(change))
		}
	}

	// 스냅샷은 알림 발송 성공 여부와 무관하게 항상 최신 상태로 교체합니다.
	// 발송에 실패한 변경 사항이 다음 사이클에 중복 알림으로 재발송되는 것을 방지합니다.
	s.commitSnapshot(entry.URL, result.Snapshot)

	for _, notification := range notifications {
		if err := s.notificationSender.Notify(ctx, notification); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"url":   entry.URL,
				"title": notification.Title,
				"error": err,
			}).Error("알림 발송 요청 실패")
		}
	}
}

// commitSnapshot 스냅샷을 최신 상태로 교체합니다.
// 사이클 도중 감시 목록에서 제거된 상품의 스냅샷이 부활하지 않도록, 목록에 존재하는 경우에만 저장합니다.
func (s *Service) commitSnapshot(url string, snapshot watch.ProductSnapshot) {
	s.snapshotsMu.Lock()
	defer s.snapshotsMu.Unlock()

	if !s.watches.Contains(url) {
		return
	}

	s.snapshots[url] = snapshot
}
