package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// fileExt 생성되는 로그 파일의 기본 확장자
	fileExt = "log"

	// 기본 로그 로테이션 정책
	defaultMaxSizeMB  = 100 // 로그 파일 하나당 최대 크기 (단위: MB)
	defaultMaxBackups = 20  // 로테이션 된 로그 파일의 최대 보관 개수
)

var (
	// Setup() 함수의 중복 호출을 방지하기 위한 동기화 객체
	// 프로세스 생명주기 동안 Setup()이 단 한 번만 실행되도록 보장합니다.
	setupOnce sync.Once

	// 전역 로깅 리소스의 해제 객체(Closer)를 보관합니다.
	globalCloser io.Closer

	// 로깅 시스템 초기화 단계에서 발생한 에러를 보관합니다.
	// 초기화에 실패한 경우, 이후 Setup()이 재호출되더라도 재시도하지 않고 최초의 에러를 그대로 반환합니다.
	globalSetupErr error
)

// Setup 전역 로깅 시스템을 초기화하고 설정된 옵션에 따라 파일 출력을 구성합니다.
//
// 주의:
//   - 애플리케이션 시작 시점(main 함수 도입부)에 호출하는 것을 권장합니다.
//   - 반환된 Closer는 반드시 defer를 통해 리소스가 해제되도록 보장해야 합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setupInternal(opts)
	})

	return globalCloser, globalSetupErr
}

// setupInternal 실제 로깅 시스템 초기화 로직을 수행합니다.
// 이 함수는 Setup()에서 sync.Once를 통해 단 한 번만 호출됩니다.
func setupInternal(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	// 로그 레벨 설정
	level := opts.Level
	if level == 0 {
		level = InfoLevel
	}
	logrus.SetLevel(level)

	// 호출자 정보(파일명, 라인번호) 기록 여부를 설정합니다.
	logrus.SetReportCaller(opts.ReportCaller)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,         // TTY가 아니어도 타임스탬프를 항상 출력
		TimestampFormat: time.RFC3339, // ISO8601 표준
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = frame.Function + "(line:" + strconv.Itoa(frame.Line) + ")"
			if opts.CallerPathPrefix != "" {
				if cut, found := strings.CutPrefix(function, opts.CallerPathPrefix); found {
					function = "..." + cut
				}
			}
			return
		},
	})

	// 로그 저장 경로가 명시되지 않은 경우, 실행 위치의 'logs' 디렉토리를 기본값으로 사용합니다.
	logDir := opts.Dir
	if logDir == "" {
		logDir = "logs"
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("로그 디렉토리 생성 실패: %w", err)
	}

	// 로그 로테이션 설정값 결정
	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}

	// 로테이션을 지원하는 메인 로그 파일 Writer를 초기화합니다.
	fileLogger := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fmt.Sprintf("%s.%s", opts.Name, fileExt)),
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   false,
		LocalTime:  true,
	}

	// 콘솔 로깅이 활성화된 경우 파일과 표준 출력에 동시에 기록합니다.
	if opts.EnableConsoleLog {
		logrus.SetOutput(io.MultiWriter(fileLogger, os.Stdout))
	} else {
		logrus.SetOutput(fileLogger)
	}

	// Fatal 로그 발생 시(os.Exit 호출 직전) 버퍼에 남은 로그를 디스크에 쓰고 리소스를 안전하게 해제합니다.
	logrus.RegisterExitHandler(func() {
		_ = fileLogger.Close()
	})

	return fileLogger, nil
}
