// Package uniqlo Uniqlo 커머스 API를 통해 상품 정보를 조회하는 Fetcher 구현을 제공합니다.
package uniqlo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/fetch"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	applog "github.com/darkkaiser/uniqlo-watcher/pkg/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// component Fetcher 로깅용 컴포넌트 이름
const component = "fetch.uniqlo"

// userAgent API 요청에 사용하는 User-Agent 헤더 값입니다.
// 기본 Go HTTP 클라이언트의 User-Agent는 서버에서 차단될 수 있습니다.
const userAgent = "Mozilla/5.0"

// Config Uniqlo Fetcher의 동작 설정입니다.
type Config struct {
	// MaxRetries 조회 실패 시 최대 시도 횟수 (1 이상)
	MaxRetries int

	// RetryDelay 재시도 사이의 대기 시간
	RetryDelay time.Duration

	// Timeout 개별 HTTP 요청의 타임아웃
	Timeout time.Duration

	// RatePerSecond 초당 최대 API 요청 수
	RatePerSecond int
}

// uniqloFetcher Uniqlo 커머스 API 기반의 Fetcher 구현체입니다.
type uniqloFetcher struct {
	client *http.Client

	// limiter 감시 사이클이 병렬로 실행되더라도 API 서버에 대한
	// 전체 요청 속도가 설정값을 넘지 않도록 제한합니다.
	limiter *rate.Limiter

	maxRetries int
	retryDelay time.Duration

	apiBaseURL string
}

var _ fetch.Fetcher = (*uniqloFetcher)(nil)

// New Uniqlo 상품 정보를 조회하는 Fetcher를 생성합니다.
func New(config Config) fetch.Fetcher {
	return newFetcher(config, defaultAPIBaseURL)
}

func newFetcher(config Config, apiBaseURL string) *uniqloFetcher {
	maxRetries := config.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	ratePerSecond := config.RatePerSecond
	if ratePerSecond < 1 {
		ratePerSecond = 1
	}

	return &uniqloFetcher{
		client:     &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
		maxRetries: maxRetries,
		retryDelay: config.RetryDelay,
		apiBaseURL: apiBaseURL,
	}
}

// Fetch 상품의 현재 상태를 조회합니다.
//
// 상품 URL에서 상품 ID와 색상/사이즈 코드를 추출하여 커머스 API를 호출하고,
// 응답에서 해당 옵션의 가격/재고 정보를 뽑아 스냅샷으로 구성합니다.
func (f *uniqloFetcher) Fetch(ctx context.Context, productURL string) (*fetch.Result, error) {
	id, err := productID(productURL)
	if err != nil {
		return nil, err
	}

	codes, err := parseVariantCodes(productURL)
	if err != nil {
		return nil, err
	}

	body, err := f.getWithRetry(ctx, f.apiBaseURL+"products/"+id)
	if err != nil {
		return nil, err
	}

	return f.parseProduct(productURL, codes, body)
}

// getWithRetry API를 호출하여 응답 본문을 반환합니다. 실패 시 설정된 횟수만큼 재시도합니다.
func (f *uniqloFetcher) getWithRetry(ctx context.Context, apiURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Wrap(err, apperrors.Timeout, "API 요청 대기 중 작업이 취소되었습니다")
		}

		body, err := f.get(ctx, apiURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// 호출부의 취소 요청은 재시도 대상이 아닙니다.
		if ctx.Err() != nil {
			return nil, lastErr
		}

		if attempt < f.maxRetries {
			applog.WithComponentAndFields(component, applog.Fields{
				"url":     apiURL,
				"attempt": fmt.Sprintf("%d/%d", attempt, f.maxRetries),
			}).Warnf("API 호출에 실패하여 %s 후에 재시도합니다. (%v)", f.retryDelay, err)

			select {
			case <-time.After(f.retryDelay):
			case <-ctx.Done():
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

func (f *uniqloFetcher) get(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.Internal, "API 요청 생성에 실패했습니다: '%s'", apiURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperrors.Wrapf(err, apperrors.Timeout, "API 응답 대기 시간이 초과되었습니다: '%s'", apiURL)
		}
		return nil, apperrors.Wrapf(err, apperrors.Unavailable, "API 호출에 실패했습니다: '%s'", apiURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ExecutionFailed, "API가 비정상 상태 코드를 반환했습니다: '%s' (HTTP %d)", apiURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "API 응답 읽기에 실패했습니다: '%s'", apiURL)
	}

	return body, nil
}

// parseProduct API 응답에서 요청된 색상/사이즈 옵션의 상품 정보를 추출합니다.
func (f *uniqloFetcher) parseProduct(productURL string, codes variantCodes, body []byte) (*fetch.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.Newf(apperrors.ParsingFailed, "API 응답이 유효한 JSON이 아닙니다: '%s'", productURL)
	}

	item := gjson.GetBytes(body, "result.items.0")
	if !item.Exists() {
		return nil, apperrors.Newf(apperrors.ParsingFailed, "API 응답에 상품 정보가 없습니다: '%s'", productURL)
	}

	// 정규화된 URL의 색상/사이즈 코드에 붙일 알파벳 접두어 ("COL09"의 "COL")
	var colorCodePrefix, sizeCodePrefix string
	if codes.colorDisplayCode != "" {
		colorCodePrefix = lettersOnlyRegexp.ReplaceAllString(item.Get("colors.0.code").String(), "")
	}
	if codes.sizeDisplayCode != "" {
		sizeCodePrefix = lettersOnlyRegexp.ReplaceAllString(item.Get("sizes.0.code").String(), "")
	}

	variant, found := findVariant(item, codes)
	if !found {
		return nil, apperrors.Newf(apperrors.NotFound, "URL과 일치하는 상품 옵션을 찾을 수 없습니다: '%s'", productURL)
	}

	snapshot := watch.ProductSnapshot{
		Name:   item.Get("name").String(),
		Status: watch.StockStatus(variant.Get("stock.statusCode").String()),
	}

	// 프로모션 가격이 있으면 프로모션 가격이 실판매가입니다.
	promoValue := variant.Get("prices.promo.value")
	if promoValue.Exists() {
		snapshot.Price = watch.PriceFromValue(promoValue.Float())
		snapshot.IsPromo = true
	} else {
		snapshot.Price = watch.PriceFromValue(variant.Get("prices.base.value").Float())
	}

	// 잔여 수량은 재고 부족 상태에서만 의미가 있습니다.
	if snapshot.Status == watch.StockStatusLowStock {
		snapshot.LowStockQuantity = int(variant.Get("stock.quantity").Int())
	}

	if codes.colorDisplayCode != "" {
		snapshot.ColorName = variant.Get("color.name").String()
		snapshot.ImageURL = findImageURL(item, codes.colorDisplayCode)
	}
	if codes.sizeDisplayCode != "" {
		snapshot.SizeName = variant.Get("size.name").String()
	}

	return &fetch.Result{
		CanonicalURL: canonicalURL(productURL, codes, colorCodePrefix, sizeCodePrefix),
		Snapshot:     snapshot,
	}, nil
}

// findVariant 색상/사이즈 표시 코드와 일치하는 첫 번째 상품 옵션을 찾습니다.
// 지정되지 않은 코드(빈 문자열)는 모든 옵션과 일치합니다.
func findVariant(item gjson.Result, codes variantCodes) (gjson.Result, bool) {
	for _, variant := range item.Get("l2s").Array() {
		colorMatched := codes.colorDisplayCode == "" ||
			variant.Get("color.displayCode").String() == codes.colorDisplayCode
		sizeMatched := codes.sizeDisplayCode == "" ||
			variant.Get("size.displayCode").String() == codes.sizeDisplayCode

		if colorMatched && sizeMatched {
			return variant, true
		}
	}

	return gjson.Result{}, false
}

// findImageURL 색상 표시 코드와 일치하는 대표 이미지의 URL을 찾습니다. 없으면 빈 문자열을 반환합니다.
func findImageURL(item gjson.Result, colorDisplayCode string) string {
	for _, image := range item.Get("images.main").Array() {
		if image.Get("colorCode").String() == colorDisplayCode {
			return image.Get("url").String()
		}
	}

	return ""
}
