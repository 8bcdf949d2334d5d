package api

import (
	"net/http"
	"time"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/pkg/version"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	"github.com/labstack/echo/v4"
)

// componentHandler API 핸들러의 로깅용 컴포넌트 이름
const componentHandler = "api.handler"

// Handler Watch API의 모든 엔드포인트를 처리하는 핸들러입니다.
//
// 감시 목록의 조회/변경은 contract.WatchRegistrar를 통해 Monitor 서비스에 위임하므로,
// ntfy 명령 토픽과 REST API 어느 쪽으로 변경하더라도 동일한 불변 조건이 유지됩니다.
type Handler struct {
	registrar contract.WatchRegistrar

	healthChecker contract.NotificationHealthChecker

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(registrar contract.WatchRegistrar, healthChecker contract.NotificationHealthChecker) *Handler {
	if registrar == nil {
		panic("WatchRegistrar는 필수입니다")
	}
	if healthChecker == nil {
		panic("NotificationHealthChecker는 필수입니다")
	}

	return &Handler{
		registrar: registrar,

		healthChecker: healthChecker,

		serverStartTime: time.Now(),
	}
}

// dependencyStatus 외부 의존성의 상태 정보
type dependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// healthResponse 헬스체크 응답
type healthResponse struct {
	Status       string                      `json:"status"`
	Uptime       int64                       `json:"uptime"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// watchResponse 감시 항목 응답
type watchResponse struct {
	URL      string `json:"url"`
	Nickname string `json:"nickname"`
}

// productResponse 상품 정보 응답
type productResponse struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	Status    string `json:"status"`
	ColorName string `json:"color_name,omitempty"`
	SizeName  string `json:"size_name,omitempty"`
}

// addWatchRequest 감시 항목 등록 요청
type addWatchRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name" validate:"required"`
}

// addWatchResponse 감시 항목 등록 응답
type addWatchResponse struct {
	watchResponse
	Product productResponse `json:"product"`
}

// removeWatchResponse 감시 항목 제거 응답
type removeWatchResponse struct {
	Removed []watchResponse `json:"removed"`
}

// HealthCheckHandler 서버와 하위 의존성의 상태를 반환합니다. 인증 없이 호출 가능합니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	deps := map[string]dependencyStatus{}

	if err := h.healthChecker.Health(); err != nil {
		deps["notification_service"] = dependencyStatus{Status: "unhealthy", Message: err.Error()}
	} else {
		deps["notification_service"] = dependencyStatus{Status: "healthy", Message: "정상 동작 중"}
	}

	status := "healthy"
	for _, dep := range deps {
		if dep.Status != "healthy" {
			status = "unhealthy"
			break
		}
	}

	return c.JSON(http.StatusOK, healthResponse{
		Status:       status,
		Uptime:       int64(time.Since(h.serverStartTime).Seconds()),
		Dependencies: deps,
	})
}

// VersionHandler 애플리케이션의 빌드 정보를 반환합니다.
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}

// ListWatchesHandler 현재 감시 중인 항목 목록을 반환합니다.
func (h *Handler) ListWatchesHandler(c echo.Context) error {
	entries := h.registrar.Watches()

	watches := make([]watchResponse, 0, len(entries))
	for _, entry := range entries {
		watches = append(watches, newWatchResponse(entry))
	}

	return c.JSON(http.StatusOK, watches)
}

// AddWatchHandler 상품 URL을 검증하고 감시 목록에 등록합니다.
func (h *Handler) AddWatchHandler(c echo.Context) error {
	var req addWatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "요청 본문을 해석할 수 없습니다")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, snapshot, err := h.registrar.AddWatch(c.Request().Context(), req.URL, req.Name)
	if err != nil {
		return toHTTPError(err)
	}

	applog.WithComponentAndFields(componentHandler, applog.Fields{
		"url":      entry.URL,
		"nickname": entry.Nickname,
	}).Info("감시 항목 등록 요청 처리 완료")

	return c.JSON(http.StatusCreated, addWatchResponse{
		watchResponse: newWatchResponse(entry),
		Product: productResponse{
			Name:      snapshot.Name,
			Price:     snapshot.PriceString(),
			Status:    string(snapshot.Status),
			ColorName: snapshot.ColorName,
			SizeName:  snapshot.SizeName,
		},
	})
}

// RemoveWatchHandler 토큰(URL 또는 별칭)과 일치하는 감시 항목들을 제거합니다.
func (h *Handler) RemoveWatchHandler(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token 파라미터는 필수입니다")
	}

	removed, err := h.registrar.RemoveWatch(c.Request().Context(), token)
	if err != nil {
		return toHTTPError(err)
	}

	if len(removed) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "일치하는 감시 항목이 없습니다")
	}

	applog.WithComponentAndFields(componentHandler, applog.Fields{
		"token":         token,
		"removed_count": len(removed),
	}).Info("감시 항목 제거 요청 처리 완료")

	watches := make([]watchResponse, 0, len(removed))
	for _, entry := range removed {
		watches = append(watches, newWatchResponse(entry))
	}

	return c.JSON(http.StatusOK, removeWatchResponse{Removed: watches})
}

func newWatchResponse(entry watch.Entry) watchResponse {
	return watchResponse{URL: entry.URL, Nickname: entry.Nickname}
}

// toHTTPError 도메인 에러를 적절한 HTTP 상태 코드의 에러로 변환합니다.
func toHTTPError(err error) error {
	switch {
	case apperrors.Is(err, apperrors.InvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case apperrors.Is(err, apperrors.NotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apperrors.Is(err, apperrors.Timeout),
		apperrors.Is(err, apperrors.Unavailable),
		apperrors.Is(err, apperrors.ExecutionFailed),
		apperrors.Is(err, apperrors.ParsingFailed):
		// 상품 조회 실패는 유니클로 API 쪽의 문제이므로 Bad Gateway로 구분합니다.
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
