// Package notification 설정된 알림 채널(ntfy, 텔레그램)들을 관리하고,
// 알림 발송 요청을 해당 채널의 발송 워커에게 라우팅하는 Notification 서비스를 제공합니다.
package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/notification/notifier"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/notification/notifier/ntfy"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/notification/notifier/telegram"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
)

// component Notification 서비스의 로깅용 컴포넌트 이름
const component = "notification.service"

// Service 알림 발송 요청을 접수하여 각 채널의 발송 워커에게 전달하는 서비스입니다.
//
// 각 Notifier는 자신의 대기열과 발송 워커(고루틴)를 가지며, Notify()는 요청을
// 대기열에 등록만 하고 즉시 반환됩니다. 실제 전송 실패는 각 워커가 로깅으로만
// 처리하고 재시도하지 않습니다.
type Service struct {
	appConfig *config.AppConfig

	notifiers       []notifier.Notifier
	defaultNotifier notifier.Notifier

	// notifiersStopWG 모든 하위 Notifier 워커의 종료를 대기하는 WaitGroup
	notifiersStopWG sync.WaitGroup

	running   bool
	runningMu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var (
	_ contract.NotificationSender        = (*Service)(nil)
	_ contract.NotificationHealthChecker = (*Service)(nil)
)

// NewService Notification 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig) *Service {
	return &Service{
		appConfig: appConfig,
	}
}

// Start 설정된 모든 알림 채널을 초기화하고 발송 워커를 실행합니다.
//
// 텔레그램 봇 토큰 검증 실패, 기본 Notifier 부재 등 초기화 단계의 오류는
// 치명적 오류로 반환됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Notification 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Notification 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// 1. 설정된 알림 채널들을 초기화합니다.
	notifiers, err := s.createNotifiers()
	if err != nil {
		serviceStopWG.Done()
		return err
	}

	// 2. 기본 Notifier를 확정합니다.
	// 발송 워커를 실행하기 전에 확인해야, 기동 실패 시 정리할 고루틴이 남지 않습니다.
	defaultNotifierID := contract.NotifierID(s.appConfig.Notifiers.DefaultNotifierID)
	for _, n := range notifiers {
		if n.ID() == defaultNotifierID {
			s.defaultNotifier = n
			break
		}
	}
	if s.defaultNotifier == nil {
		serviceStopWG.Done()
		return apperrors.Newf(apperrors.NotFound, "기본 NotifierID('%s')를 찾을 수 없습니다", s.appConfig.Notifiers.DefaultNotifierID)
	}

	// 3. 발송 워커를 실행합니다.
	for _, n := range notifiers {
		s.notifiers = append(s.notifiers, n)

		s.notifiersStopWG.Add(1)
		go func(n notifier.Notifier) {
			defer s.notifiersStopWG.Done()
			n.Run(serviceStopCtx)
		}(n)

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": n.ID(),
		}).Debug("Notifier가 Notification 서비스에 등록되었습니다")
	}

	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"notifier_count":      len(s.notifiers),
		"default_notifier_id": defaultNotifierID,
	}).Info("서비스 시작 완료: Notification 서비스가 정상적으로 초기화되었습니다")

	// 3. 종료 신호 대기 (고루틴)
	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	return nil
}

// createNotifiers 설정 파일에 정의된 모든 알림 채널의 Notifier 인스턴스를 생성합니다.
func (s *Service) createNotifiers() ([]notifier.Notifier, error) {
	var notifiers []notifier.Notifier

	for _, cfg := range s.appConfig.Notifiers.Ntfys {
		notifiers = append(notifiers, ntfy.New(cfg))
	}

	for _, cfg := range s.appConfig.Notifiers.Telegrams {
		n, err := telegram.New(cfg)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}

	return notifiers, nil
}

// waitForShutdown 서비스의 종료 신호를 감지하고 모든 발송 워커의 종료를 대기합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("종료 절차 진입: Notification 서비스 중지 시그널을 수신했습니다")

	// 각 Notifier의 Run() 워커가 종료될 때까지 대기합니다.
	s.notifiersStopWG.Wait()

	s.runningMu.Lock()
	s.running = false
	s.notifiers = nil
	s.defaultNotifier = nil
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Notification 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// Notify 알림 발송 요청을 해당 채널의 대기열에 등록합니다.
//
// NotifierID가 비어있으면 기본 채널로 발송됩니다. 등록 성공이 실제 전송 성공을
// 의미하지는 않으며, 전송 실패는 각 채널의 워커가 로깅으로만 처리합니다.
func (s *Service) Notify(ctx context.Context, notification contract.Notification) error {
	s.runningMu.Lock()

	if !s.running {
		s.runningMu.Unlock()

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notification.NotifierID,
			"title":       notification.Title,
		}).Warn("알림 발송 불가: Notification 서비스가 실행 중이 아닙니다")

		return ErrServiceNotRunning
	}

	fallback := s.defaultNotifier

	target := fallback
	if notification.NotifierID != "" {
		target = s.findNotifier(notification.NotifierID)
	}

	s.runningMu.Unlock()

	if target == nil {
		message := fmt.Sprintf("알 수 없는 Notifier('%s')입니다. 알림 메시지 발송이 실패하였습니다. (Title: %s)", notification.NotifierID, notification.Title)

		applog.WithComponentAndFields(component, applog.Fields{
			"notifier_id": notification.NotifierID,
		}).Error(message)

		// 관리자가 설정 오류를 인지할 수 있도록 기본 채널로 오류 알림을 발송합니다.
		if err := fallback.Send(ctx, contract.NewErrorNotification("알림 채널 오류", message)); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": err,
			}).Error("오류 알림 발송에 실패했습니다")
		}

		return apperrors.Newf(apperrors.NotFound, "알 수 없는 NotifierID입니다: '%s'", notification.NotifierID)
	}

	return target.Send(ctx, notification)
}

// findNotifier ID로 Notifier를 찾습니다. 호출부는 runningMu를 보유하고 있어야 합니다.
func (s *Service) findNotifier(id contract.NotifierID) notifier.Notifier {
	for _, n := range s.notifiers {
		if n.ID() == id {
			return n
		}
	}
	return nil
}

// Health 서비스가 정상적으로 실행 중인지 확인합니다.
func (s *Service) Health() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return ErrServiceNotRunning
	}
	return nil
}
