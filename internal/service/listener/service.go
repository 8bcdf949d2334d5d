// Package listener ntfy 명령 토픽을 구독하여 감시 항목의 등록/제거 명령을 수신하는
// Listener 서비스를 제공합니다.
//
// 명령은 다음 두 가지 형식의 메시지로 접수됩니다.
//   - "<상품 URL> name:<별칭>" : 감시 항목 등록
//   - "remove: <URL 또는 별칭>" : 감시 항목 제거
//
// 어느 형식에도 해당하지 않는 메시지는 로깅 후 무시됩니다.
package listener

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/fetch"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/monitor"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
)

// component Listener 서비스의 로깅용 컴포넌트 이름
const component = "listener.service"

// defaultReconnectDelay 구독 스트림이 끊어졌을 때 재연결을 시도하기까지의 대기 시간
const defaultReconnectDelay = 5 * time.Second

// Service ntfy 명령 토픽의 구독 스트림을 유지하며 수신된 명령을 처리하는 서비스입니다.
//
// 감시 목록의 소유자가 아니므로, 모든 목록 변경은 contract.WatchRegistrar를 통해서만
// 수행합니다. 구독 스트림이 끊어지면 일정 시간 대기 후 자동으로 재연결합니다.
type Service struct {
	appConfig *config.AppConfig

	// registrar 감시 항목의 등록/제거를 위임받는 인터페이스 (Monitor 서비스가 구현)
	registrar contract.WatchRegistrar

	// fetcher 제거 명령의 URL 토큰을 감시 키와 같은 정규화된 형태로 맞추는 데 사용됩니다.
	fetcher fetch.Fetcher

	// notificationSender 등록 성공 알림을 전송하는 인터페이스입니다.
	notificationSender contract.NotificationSender

	client *http.Client

	// subscribeURL 명령 토픽의 Raw 구독 엔드포인트 URL
	subscribeURL string

	reconnectDelay time.Duration

	running   bool
	runningMu sync.Mutex
}

// NewService Listener 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, registrar contract.WatchRegistrar, fetcher fetch.Fetcher) *Service {
	if registrar == nil {
		panic("WatchRegistrar는 필수입니다")
	}
	if fetcher == nil {
		panic("Fetcher는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,

		registrar: registrar,
		fetcher:   fetcher,

		// 구독 스트림은 연결을 계속 유지해야 하므로 Client 수준의 Timeout을 두지 않습니다.
		// 연결 종료는 Context 취소로만 이루어집니다.
		client: &http.Client{},

		subscribeURL: fmt.Sprintf("%s/%s/raw", appConfig.Command.Server, appConfig.Command.Topic),

		reconnectDelay: defaultReconnectDelay,
	}
}

// SetNotificationSender 등록 성공 알림을 전달할 NotificationSender를 주입합니다.
//
// Notification 서비스와의 순환 의존성 문제로 생성자에서 받지 않으므로,
// Start() 호출 전에 이 메서드를 통해 별도로 주입해야 합니다.
func (s *Service) SetNotificationSender(notificationSender contract.NotificationSender) {
	s.notificationSender = notificationSender
}

// Start Listener 서비스를 시작합니다. 구독과 명령 처리는 별도의 고루틴에서 수행됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Listener 서비스 초기화 프로세스를 시작합니다")

	if s.notificationSender == nil {
		serviceStopWG.Done()
		return ErrNotificationSenderNotInitialized
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Listener 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"topic": s.appConfig.Command.Topic,
	}).Info("서비스 시작 완료: Listener 서비스가 정상적으로 초기화되었습니다")

	go s.run(serviceStopCtx, serviceStopWG)

	return nil
}

// run 구독 스트림을 유지하는 메인 루프입니다. 스트림이 끊어지면 재연결하며,
// Context가 취소될 때까지 반복합니다.
func (s *Service) run(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	for {
		err := s.subscribe(serviceStopCtx)

		if serviceStopCtx.Err() != nil {
			break
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Errorf("명령 토픽 구독이 중단되었습니다. %s 후 재연결합니다", s.reconnectDelay)

		select {
		case <-time.After(s.reconnectDelay):
		case <-serviceStopCtx.Done():
		}

		if serviceStopCtx.Err() != nil {
			break
		}
	}

	applog.WithComponent(component).Info("종료 절차 진입: Listener 서비스 중지 시그널을 수신했습니다")

	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("Listener 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// subscribe 명령 토픽의 Raw 스트림을 구독하고, 수신된 메시지를 한 줄씩 처리합니다.
// 스트림이 정상/비정상 종료되면 에러를 반환하며, 호출자가 재연결을 결정합니다.
func (s *Service) subscribe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.subscribeURL, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "명령 토픽 구독 요청 생성에 실패했습니다")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "명령 토픽 구독 연결에 실패했습니다")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()              //nolint:errcheck
	}()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Newf(apperrors.ExecutionFailed, "명령 토픽 구독 요청이 실패했습니다 (StatusCode: %d)", resp.StatusCode)
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"topic": s.appConfig.Command.Topic,
	}).Info("명령 토픽 구독을 시작했습니다")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			// ntfy는 연결 유지를 위해 주기적으로 빈 줄을 보냅니다.
			continue
		}

		s.dispatch(ctx, line)
	}

	if err := scanner.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "명령 토픽 스트림 수신 중 오류가 발생했습니다")
	}

	return apperrors.New(apperrors.Unavailable, "명령 토픽 스트림이 종료되었습니다")
}

// dispatch 수신된 메시지 한 줄을 명령으로 해석하여 처리합니다.
// 해석할 수 없는 메시지는 로깅 후 무시되며, 구독 루프에는 영향을 주지 않습니다.
func (s *Service) dispatch(ctx context.Context, line string) {
	cmd, ok := parseCommand(line)
	if !ok {
		applog.WithComponentAndFields(component, applog.Fields{
			"message": line,
		}).Debug("해석할 수 없는 명령 메시지를 무시합니다")
		return
	}

	switch cmd.kind {
	case commandAdd:
		s.handleAdd(ctx, cmd)
	case commandRemove:
		s.handleRemove(ctx, cmd)
	}
}

// handleAdd 감시 항목 등록 명령을 처리하고, 성공 시 등록 알림을 발송합니다.
func (s *Service) handleAdd(ctx context.Context, cmd command) {
	entry, snapshot, err := s.registrar.AddWatch(ctx, cmd.productURL, cmd.nickname)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":      cmd.productURL,
			"nickname": cmd.nickname,
			"error":    err,
		}).Warn("감시 항목 등록 명령 처리 실패")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url":      entry.URL,
		"nickname": entry.Nickname,
	}).Info("감시 항목 등록 명령 처리 완료")

	if err := s.notificationSender.Notify(ctx, monitor.RenderAdded(entry, snapshot)); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"url":   entry.URL,
			"error": err,
		}).Error("등록 알림 발송 요청 실패")
	}
}

// handleRemove 감시 항목 제거 명령을 처리합니다.
//
// 토큰이 상품 URL이면 상품 정보를 1회 조회하여 감시 키와 같은 정규화된 URL로 맞춥니다.
// 조회에 실패하면 정규화 전 토큰으로 제거를 시도합니다.
func (s *Service) handleRemove(ctx context.Context, cmd command) {
	token := cmd.token
	if cmd.tokenIsURL {
		if result, err := s.fetcher.Fetch(ctx, token); err == nil {
			token = result.CanonicalURL
		}
	}

	removed, err := s.registrar.RemoveWatch(ctx, token)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"token": token,
			"error": err,
		}).Warn("감시 항목 제거 명령 처리 실패")
		return
	}

	if len(removed) == 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"token": token,
		}).Info("감시 항목 제거 명령 무시: 일치하는 항목이 없습니다")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"token":         token,
		"removed_count": len(removed),
	}).Info("감시 항목 제거 명령 처리 완료")
}
