package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProductURL = "https://www.uniqlo.com/ca/en/products/E463985-000"

// fakeRegistrar 준비된 결과를 반환하는 contract.WatchRegistrar 테스트 구현체입니다.
type fakeRegistrar struct {
	mu sync.Mutex

	entries []watch.Entry

	addErr    error
	removeErr error
}

func (r *fakeRegistrar) AddWatch(_ context.Context, productURL string, nickname string) (watch.Entry, watch.ProductSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.addErr != nil {
		return watch.Entry{}, watch.ProductSnapshot{}, r.addErr
	}

	entry := watch.Entry{URL: productURL, Nickname: nickname}
	r.entries = append(r.entries, entry)

	snapshot := watch.ProductSnapshot{
		Name:      "AIRism Cotton T-Shirt",
		Price:     2990,
		Status:    watch.StockStatusInStock,
		ColorName: "BLACK",
	}
	return entry, snapshot, nil
}

func (r *fakeRegistrar) RemoveWatch(_ context.Context, token string) ([]watch.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removeErr != nil {
		return nil, r.removeErr
	}

	var removed, remaining []watch.Entry
	for _, entry := range r.entries {
		if entry.URL == token || entry.Nickname == token {
			removed = append(removed, entry)
		} else {
			remaining = append(remaining, entry)
		}
	}
	r.entries = remaining

	return removed, nil
}

func (r *fakeRegistrar) Watches() []watch.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]watch.Entry(nil), r.entries...)
}

// fakeHealthChecker 지정된 상태를 반환하는 contract.NotificationHealthChecker 테스트 구현체입니다.
type fakeHealthChecker struct {
	err error
}

func (h *fakeHealthChecker) Health() error {
	return h.err
}

func newTestServer(registrar *fakeRegistrar, healthChecker *fakeHealthChecker) *echo.Echo {
	return newHTTPServer(false, NewHandler(registrar, healthChecker))
}

func doRequest(e *echo.Echo, method string, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// TestHealthCheckHandler 의존성 상태에 따라 전체 상태가 달라지는지 검증합니다.
func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	t.Run("정상 상태", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
		rec := doRequest(e, http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.Dependencies["notification_service"].Status)
	})

	t.Run("알림 서비스 비정상", func(t *testing.T) {
		t.Parallel()

		healthChecker := &fakeHealthChecker{err: apperrors.New(apperrors.Unavailable, "실행 중이 아닙니다")}
		e := newTestServer(&fakeRegistrar{}, healthChecker)
		rec := doRequest(e, http.MethodGet, "/health", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
	})
}

// TestVersionHandler 버전 정보가 JSON으로 반환되는지 검증합니다.
func TestVersionHandler(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
	rec := doRequest(e, http.MethodGet, "/version", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}

// TestListWatchesHandler 감시 목록 조회를 검증합니다.
func TestListWatchesHandler(t *testing.T) {
	t.Parallel()

	registrar := &fakeRegistrar{entries: []watch.Entry{
		{URL: testProductURL, Nickname: "여름 티셔츠"},
	}}
	e := newTestServer(registrar, &fakeHealthChecker{})

	rec := doRequest(e, http.MethodGet, "/api/v1/watches", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []watchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, testProductURL, resp[0].URL)
	assert.Equal(t, "여름 티셔츠", resp[0].Nickname)
}

// TestAddWatchHandler 감시 항목 등록 요청의 처리를 검증합니다.
func TestAddWatchHandler(t *testing.T) {
	t.Parallel()

	t.Run("등록 성공", func(t *testing.T) {
		t.Parallel()

		registrar := &fakeRegistrar{}
		e := newTestServer(registrar, &fakeHealthChecker{})

		rec := doRequest(e, http.MethodPost, "/api/v1/watches",
			`{"url": "`+testProductURL+`", "name": "여름 티셔츠"}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp addWatchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, testProductURL, resp.URL)
		assert.Equal(t, "여름 티셔츠", resp.Nickname)
		assert.Equal(t, "AIRism Cotton T-Shirt", resp.Product.Name)
		assert.Equal(t, "$29.90", resp.Product.Price)
		assert.Equal(t, "IN_STOCK", resp.Product.Status)

		require.Len(t, registrar.Watches(), 1)
	})

	t.Run("이름 누락", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
		rec := doRequest(e, http.MethodPost, "/api/v1/watches", `{"url": "`+testProductURL+`"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("URL 형식 오류", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
		rec := doRequest(e, http.MethodPost, "/api/v1/watches", `{"url": "비정상적인 값", "name": "티셔츠"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("상품 페이지가 아닌 URL", func(t *testing.T) {
		t.Parallel()

		registrar := &fakeRegistrar{addErr: apperrors.New(apperrors.InvalidInput, "상품 페이지 URL이 아닙니다")}
		e := newTestServer(registrar, &fakeHealthChecker{})

		rec := doRequest(e, http.MethodPost, "/api/v1/watches",
			`{"url": "`+testProductURL+`", "name": "티셔츠"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("상품 조회 실패", func(t *testing.T) {
		t.Parallel()

		registrar := &fakeRegistrar{addErr: apperrors.New(apperrors.Unavailable, "유니클로 API 요청에 실패했습니다")}
		e := newTestServer(registrar, &fakeHealthChecker{})

		rec := doRequest(e, http.MethodPost, "/api/v1/watches",
			`{"url": "`+testProductURL+`", "name": "티셔츠"}`)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

// TestRemoveWatchHandler 감시 항목 제거 요청의 처리를 검증합니다.
func TestRemoveWatchHandler(t *testing.T) {
	t.Parallel()

	t.Run("별칭으로 제거", func(t *testing.T) {
		t.Parallel()

		registrar := &fakeRegistrar{entries: []watch.Entry{
			{URL: testProductURL, Nickname: "여름 티셔츠"},
		}}
		e := newTestServer(registrar, &fakeHealthChecker{})

		rec := doRequest(e, http.MethodDelete, "/api/v1/watches?token="+url.QueryEscape("여름 티셔츠"), "")

		require.Equal(t, http.StatusOK, rec.Code)

		var resp removeWatchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Removed, 1)
		assert.Equal(t, testProductURL, resp.Removed[0].URL)
		assert.Empty(t, registrar.Watches())
	})

	t.Run("토큰 누락", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
		rec := doRequest(e, http.MethodDelete, "/api/v1/watches", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("일치하는 항목 없음", func(t *testing.T) {
		t.Parallel()

		e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
		rec := doRequest(e, http.MethodDelete, "/api/v1/watches?token=없는토큰", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestErrorHandler_UnknownPath 존재하지 않는 경로가 표준 에러 응답으로 처리되는지 검증합니다.
func TestErrorHandler_UnknownPath(t *testing.T) {
	t.Parallel()

	e := newTestServer(&fakeRegistrar{}, &fakeHealthChecker{})
	rec := doRequest(e, http.MethodGet, "/no-such-path", "")

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.ResultCode)
}

// TestNewHandler 필수 의존성 없이 생성할 수 없는지 검증합니다.
func TestNewHandler(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "WatchRegistrar는 필수입니다", func() {
		NewHandler(nil, &fakeHealthChecker{})
	})
	assert.PanicsWithValue(t, "NotificationHealthChecker는 필수입니다", func() {
		NewHandler(&fakeRegistrar{}, nil)
	})
}
