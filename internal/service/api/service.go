// Package api 감시 목록의 조회/변경을 위한 Watch API 서버를 제공합니다.
//
// ntfy 명령 토픽과 동일한 기능(등록/제거)을 REST API로 노출하며, 설정에서
// 활성화된 경우에만 기동됩니다. 모든 목록 변경은 contract.WatchRegistrar를 통해
// Monitor 서비스에 위임됩니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	"github.com/labstack/echo/v4"
)

// component Watch API 서비스의 로깅용 컴포넌트 이름
const component = "api.service"

// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
const shutdownTimeout = 5 * time.Second

// Service Watch API 서버의 생명주기를 관리하는 서비스입니다.
type Service struct {
	appConfig *config.AppConfig

	registrar contract.WatchRegistrar

	notificationSender contract.NotificationSender
	healthChecker      contract.NotificationHealthChecker

	running   bool
	runningMu sync.Mutex
}

// NewService Watch API 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, registrar contract.WatchRegistrar) *Service {
	if registrar == nil {
		panic("WatchRegistrar는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,

		registrar: registrar,
	}
}

// SetNotificationSender 서버 오류 알림을 전달할 NotificationSender를 주입합니다.
// Notification 서비스와의 순환 의존성 문제로 생성자에서 받지 않습니다.
func (s *Service) SetNotificationSender(notificationSender contract.NotificationSender) {
	s.notificationSender = notificationSender
}

// SetHealthChecker 헬스체크 엔드포인트가 조회할 NotificationHealthChecker를 주입합니다.
func (s *Service) SetHealthChecker(healthChecker contract.NotificationHealthChecker) {
	s.healthChecker = healthChecker
}

// Start Watch API 서비스를 시작합니다. 실제 서버는 별도의 고루틴에서 실행됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Watch API 서비스 초기화 프로세스를 시작합니다")

	if s.notificationSender == nil {
		serviceStopWG.Done()
		return ErrNotificationSenderNotInitialized
	}
	if s.healthChecker == nil {
		serviceStopWG.Done()
		return ErrHealthCheckerNotInitialized
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Watch API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponentAndFields(component, applog.Fields{
		"listen_port": s.appConfig.WatchAPI.ListenPort,
	}).Info("서비스 시작 완료: Watch API 서비스가 정상적으로 초기화되었습니다")

	return nil
}

// runServiceLoop 서버 설정, HTTP 서버 시작, Shutdown 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := newHTTPServer(s.appConfig.Debug, NewHandler(s.registrar, s.healthChecker))

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// startHTTPServer HTTP 서버를 시작합니다. 서버가 종료될 때까지 블로킹됩니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.WatchAPI.ListenPort
	applog.WithComponentAndFields(component, applog.Fields{
		"port": port,
	}).Debug("HTTP 서버를 시작합니다")

	s.handleServerError(e.Start(fmt.Sprintf(":%d", port)))
}

// handleServerError HTTP 서버 종료 시 반환된 에러를 처리합니다.
//
//   - http.ErrServerClosed: Graceful Shutdown의 정상 경로
//   - 그 외: 로깅 후 관리자가 인지할 수 있도록 오류 알림을 발송합니다
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Info("HTTP 서버가 정상적으로 중지되었습니다")
		return
	}

	message := "Watch API HTTP 서버가 예기치 않게 종료되었습니다"
	applog.WithComponentAndFields(component, applog.Fields{
		"port":  s.appConfig.WatchAPI.ListenPort,
		"error": err,
	}).Error(message)

	notification := contract.NewErrorNotification(message, err.Error())
	if notifyErr := s.notificationSender.Notify(context.Background(), notification); notifyErr != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": notifyErr,
		}).Error("오류 알림 발송에 실패했습니다")
	}
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(component).Info("종료 절차 진입: Watch API 서비스 중지 시그널을 수신했습니다")

	case <-httpServerDone:
		// 포트 바인딩 실패 등으로 서버가 이미 종료된 상태이므로 상태만 정리합니다.
		applog.WithComponent(component).Error("HTTP 서버가 예기치 않게 종료되어 서비스 상태를 정리합니다")
		s.cleanup()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("HTTP 서버 Shutdown 중 오류가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

// cleanup 서비스 종료 후 상태를 정리합니다.
func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Watch API 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}
