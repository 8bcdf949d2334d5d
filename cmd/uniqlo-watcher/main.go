package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	"github.com/darkkaiser/uniqlo-watcher/internal/pkg/version"
	"github.com/darkkaiser/uniqlo-watcher/internal/service"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/api"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/fetch/uniqlo"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/listener"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/monitor"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/notification"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch/storage"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	log "github.com/sirupsen/logrus"
)

// 빌드 정보 변수 (빌드 시 ldflags로 주입됨)
var (
	Version   = "dev"     // Git 태그 또는 커밋 해시
	Commit    = "unknown" // Git 커밋 해시
	BuildDate = "unknown" // 빌드 날짜
)

const (
	banner = `
  _   _         _         _        __        __     _         _
 | | | | _ __  (_)  __ _ | |  ___  \ \      / /__ _| |_  ___ | |__    ___  _ __
 | | | || '_ \ | | / _' || | / _ \  \ \ /\ / // _' | __|/ __|| '_ \  / _ \| '__|
 | |_| || | | || || (_| || || (_) |  \ V  V /| (_| | |_| (__ | | | ||  __/| |
  \___/ |_| |_||_| \__, ||_| \___/    \_/\_/  \__,_|\__|\___||_| |_| \___||_|
                      |_|                                    %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	configFile := config.DefaultFilename
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	appConfig, err := config.LoadWithFile(configFile)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, Version)

	// 빌드 정보 설정 (전역 싱글톤 등록)
	buildInfo := version.Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	version.Set(buildInfo)

	applog.WithComponentAndFields("main", log.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 서비스를 생성하고 초기화한다.
	store, err := storage.NewFileStore(appConfig.Monitor.WatchListFile)
	if err != nil {
		log.Fatalf("감시 목록 저장소 초기화 실패: %v", err)
	}

	fetcher := uniqlo.New(uniqlo.Config{
		MaxRetries:    appConfig.Fetch.MaxRetries,
		RetryDelay:    appConfig.Fetch.RetryDelayDuration(),
		Timeout:       appConfig.Fetch.TimeoutDuration(),
		RatePerSecond: appConfig.Fetch.RatePerSecond,
	})

	monitorService := monitor.NewService(appConfig, store, fetcher)
	notificationService := notification.NewService(appConfig)
	listenerService := listener.NewService(appConfig, monitorService, fetcher)

	monitorService.SetNotificationSender(notificationService)
	listenerService.SetNotificationSender(notificationService)

	services := []service.Service{notificationService, monitorService, listenerService}

	if appConfig.WatchAPI.Enabled {
		apiService := api.NewService(appConfig, monitorService)
		apiService.SetNotificationSender(notificationService)
		apiService.SetHealthChecker(notificationService)

		services = append(services, apiService)
	}

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	// Notification 서비스가 가장 먼저 시작되어야 다른 서비스의 알림 발송이 가능하다.
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}
