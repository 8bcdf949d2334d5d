package api

import (
	"net/http"

	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	"github.com/labstack/echo/v4"
)

// componentErrorHandler 전역 에러 핸들러의 로깅용 컴포넌트 이름
const componentErrorHandler = "api.error_handler"

// errorResponse 표준 에러 응답 형식
type errorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// errorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 HTTP 에러를 가로채서 표준 errorResponse JSON 형식으로 변환하여 반환하고,
// 상태 코드에 따라 적절한 로그 레벨(Error/Warn)로 기록합니다.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "서버 내부 오류가 발생하였습니다"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	// 존재하지 않는 경로에 대한 기본 메시지를 통일합니다.
	if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
		message = "요청하신 경로를 찾을 수 없습니다"
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(componentErrorHandler, fields).Error("HTTP 5xx 서버 오류가 발생하였습니다")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(componentErrorHandler, fields).Warn("HTTP 4xx 클라이언트 오류가 발생하였습니다")
	}

	// 이미 응답이 전송된 경우 추가 응답을 시도하지 않습니다.
	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(code) //nolint:errcheck
		return
	}

	c.JSON(code, errorResponse{ //nolint:errcheck
		ResultCode: code,
		Message:    message,
	})
}
