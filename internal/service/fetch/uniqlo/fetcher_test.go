package uniqlo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleProductJSON 커머스 API의 상품 응답 샘플입니다.
// 색상 09/사이즈 004 옵션은 프로모션 중이고, 색상 12 옵션은 재고 부족 상태입니다.
const sampleProductJSON = `{
	"result": {
		"items": [
			{
				"name": "AIRism Cotton T-Shirt",
				"colors": [{"code": "COL09", "name": "BLACK"}],
				"sizes": [{"code": "SMA004", "name": "L"}],
				"images": {
					"main": [
						{"colorCode": "09", "url": "https://image.uniqlo.com/products/E463985-000/09.jpg"},
						{"colorCode": "12", "url": "https://image.uniqlo.com/products/E463985-000/12.jpg"}
					]
				},
				"l2s": [
					{
						"color": {"displayCode": "09", "name": "BLACK"},
						"size": {"displayCode": "004", "name": "L"},
						"prices": {
							"base": {"value": 29.90},
							"promo": {"value": 19.90}
						},
						"stock": {"statusCode": "IN_STOCK", "quantity": 87}
					},
					{
						"color": {"displayCode": "12", "name": "WINE"},
						"size": {"displayCode": "004", "name": "L"},
						"prices": {
							"base": {"value": 29.90},
							"promo": null
						},
						"stock": {"statusCode": "LOW_STOCK", "quantity": 3}
					}
				]
			}
		]
	}
}`

// testConfig 테스트용 Fetcher 설정을 반환합니다. 재시도 대기와 속도 제한을 최소화합니다.
func testConfig() Config {
	return Config{
		MaxRetries:    3,
		RetryDelay:    time.Millisecond,
		Timeout:       time.Second,
		RatePerSecond: 1000,
	}
}

// TestFetch 상품 조회가 스냅샷과 정규화된 URL을 올바르게 반환하는지 검증합니다.
func TestFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/E463985-000", r.URL.Path)
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(sampleProductJSON))
	}))
	defer server.Close()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	result, err := fetcher.Fetch(context.Background(),
		"https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL09&sizeCode=SMA004")

	require.NoError(t, err)
	assert.Equal(t, "https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL09&sizeCode=SMA004", result.CanonicalURL)
	assert.Equal(t, watch.ProductSnapshot{
		Name:      "AIRism Cotton T-Shirt",
		Price:     1990,
		IsPromo:   true,
		Status:    watch.StockStatusInStock,
		ColorName: "BLACK",
		SizeName:  "L",
		ImageURL:  "https://image.uniqlo.com/products/E463985-000/09.jpg",
	}, result.Snapshot)
}

// TestFetch_LowStockVariant 재고 부족 옵션에서 잔여 수량과 정가가 반환되는지 검증합니다.
func TestFetch_LowStockVariant(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleProductJSON))
	}))
	defer server.Close()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	result, err := fetcher.Fetch(context.Background(),
		"https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL12&sizeCode=SMA004")

	require.NoError(t, err)
	assert.Equal(t, watch.StockStatusLowStock, result.Snapshot.Status)
	assert.Equal(t, 3, result.Snapshot.LowStockQuantity)
	assert.False(t, result.Snapshot.IsPromo)
	assert.Equal(t, watch.Price(2990), result.Snapshot.Price)
	assert.Equal(t, "WINE", result.Snapshot.ColorName)
}

// TestFetch_VariantSelection 옵션 코드를 생략하면 첫 번째 옵션이 선택되는지 검증합니다.
func TestFetch_VariantSelection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleProductJSON))
	}))
	defer server.Close()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	result, err := fetcher.Fetch(context.Background(),
		"https://www.uniqlo.com/ca/en/products/E463985-000")

	require.NoError(t, err)
	assert.Equal(t, watch.StockStatusInStock, result.Snapshot.Status)
	// 옵션이 지정되지 않았으므로 색상/사이즈/이미지 정보는 비어 있어야 합니다.
	assert.Empty(t, result.Snapshot.ColorName)
	assert.Empty(t, result.Snapshot.SizeName)
	assert.Empty(t, result.Snapshot.ImageURL)
	assert.Equal(t, "https://www.uniqlo.com/ca/en/products/E463985-000", result.CanonicalURL)
}

// TestFetch_VariantNotFound 일치하는 옵션이 없으면 NotFound 에러가 반환되는지 검증합니다.
func TestFetch_VariantNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleProductJSON))
	}))
	defer server.Close()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	_, err := fetcher.Fetch(context.Background(),
		"https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL99")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.NotFound))
}

// TestFetch_RetryOnServerError 일시적인 서버 오류 후 재시도가 성공하는지 검증합니다.
func TestFetch_RetryOnServerError(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleProductJSON))
	}))
	defer server.Close()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	result, err := fetcher.Fetch(context.Background(),
		"https://www.uniqlo.com/ca/en/products/E463985-000")

	require.NoError(t, err)
	assert.Equal(t, int32(3), requestCount.Load())
	assert.Equal(t, "AIRism Cotton T-Shirt", result.Snapshot.Name)
}

// TestFetch_RetriesExhausted 재시도 횟수를 모두 소진하면 에러가 반환되는지 검증합니다.
func TestFetch_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	_, err := fetcher.Fetch(context.Background(),
		"https://www.uniqlo.com/ca/en/products/E463985-000")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
	assert.Equal(t, int32(3), requestCount.Load())
}

// TestFetch_InvalidResponse 상품 정보가 없는 응답에 대해 ParsingFailed 에러가 반환되는지 검증합니다.
func TestFetch_InvalidResponse(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"JSON이 아닌 응답": "<html>maintenance</html>",
		"상품 목록이 빈 응답": `{"result": {"items": []}}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			fetcher := newFetcher(testConfig(), server.URL+"/")

			_, err := fetcher.Fetch(context.Background(),
				"https://www.uniqlo.com/ca/en/products/E463985-000")

			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
		})
	}
}

// TestFetch_ContextCancelled 컨텍스트 취소 시 재시도 없이 즉시 반환되는지 검증합니다.
func TestFetch_ContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newFetcher(testConfig(), server.URL+"/")

	_, err := fetcher.Fetch(ctx, "https://www.uniqlo.com/ca/en/products/E463985-000")

	require.Error(t, err)
}

// TestFetch_NotProductURL 상품 페이지가 아닌 URL은 API 호출 없이 거부되는지 검증합니다.
func TestFetch_NotProductURL(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(testConfig(), "http://127.0.0.1:1/")

	_, err := fetcher.Fetch(context.Background(), "https://www.uniqlo.com/ca/en/men/tops")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
}
