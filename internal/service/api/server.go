package api

import (
	"net/http"
	"time"

	apimiddleware "github.com/darkkaiser/uniqlo-watcher/internal/service/api/middleware"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second

	// defaultMaxBodySize 요청 본문 크기 제한 (대용량 요청으로 인한 메모리 고갈 방지)
	defaultMaxBodySize = "64K"

	defaultRateLimitPerSecond = 20
	defaultRateLimitBurst     = 40
)

// requestValidator 요청 구조체의 validate 태그를 검증하는 echo.Validator 구현체입니다.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "요청 본문이 올바르지 않습니다: "+err.Error())
	}
	return nil
}

// newHTTPServer 미들웨어와 라우트가 설정된 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다:
//  1. Recover - 핸들러의 Panic을 복구하여 서버 다운 방지
//  2. RequestID - 각 요청에 고유 ID 부여 (X-Request-ID 헤더)
//  3. Server 헤더 제거 - 기술 스택 노출 방지
//  4. RateLimit - IP별 요청 속도 제한 (초과 시 429)
//  5. BodyLimit - 요청 본문 크기 제한 (초과 시 413)
//  6. Secure - XSS Protection 등 보안 헤더 추가
func newHTTPServer(debug bool, h *Handler) *echo.Echo {
	e := echo.New()

	e.Debug = debug
	e.HideBanner = true

	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	// Echo 프레임워크의 내부 로그를 애플리케이션 로거로 통합합니다.
	e.Logger = apimiddleware.Logger{Logger: applog.StandardLogger()}

	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(apimiddleware.RateLimit(defaultRateLimitPerSecond, defaultRateLimitBurst))
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	e.Use(middleware.Secure())

	setupRoutes(e, h)

	return e
}

// setupRoutes Watch API의 모든 라우트를 등록합니다.
//
//   - 시스템 엔드포인트: 서비스 상태 확인(/health) 및 버전 정보(/version)
//   - 감시 목록 엔드포인트: 조회/등록/제거 (/api/v1/watches)
func setupRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)

	v1 := e.Group("/api/v1")
	v1.GET("/watches", h.ListWatchesHandler)
	v1.POST("/watches", h.AddWatchHandler)
	v1.DELETE("/watches", h.RemoveWatchHandler)
}
