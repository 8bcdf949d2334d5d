package uniqlo

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
)

const (
	// defaultAPIBaseURL Uniqlo 캐나다 커머스 API의 기본 주소
	defaultAPIBaseURL = "https://www.uniqlo.com/ca/api/commerce/v3/en/"

	// storefrontHost 상품 페이지 URL이 반드시 포함해야 하는 호스트
	storefrontHost = "www.uniqlo.com"
)

var (
	// storePathRegexp 상품 페이지 URL에서 지역/언어 이후의 경로를 추출합니다.
	// (예: "https://www.uniqlo.com/ca/en/products/E463985-000" → "/products/E463985-000")
	storePathRegexp = regexp.MustCompile(`(ca)/(en)([A-Za-z0-9\-/]+)?`)

	// productIDRegexp 경로에서 상품 ID를 추출합니다. (예: "E463985-000")
	productIDRegexp = regexp.MustCompile(`products/([\dA-Z\-]+)`)

	// digitsOnlyRegexp 색상/사이즈 코드에서 숫자만 남깁니다. ("COL09" → "09")
	digitsOnlyRegexp = regexp.MustCompile(`[^0-9]`)

	// lettersOnlyRegexp 색상/사이즈 코드에서 알파벳만 남깁니다. ("COL09" → "COL")
	lettersOnlyRegexp = regexp.MustCompile(`[^A-Za-z]`)
)

// variantCodes 상품 URL에서 추출한 색상/사이즈 식별 코드입니다.
// 빈 문자열은 해당 옵션이 지정되지 않았음을 의미하며, 모든 옵션과 일치하는 것으로 취급됩니다.
type variantCodes struct {
	// colorDisplayCode 색상 표시 코드 (숫자만, 예: "09")
	colorDisplayCode string

	// sizeDisplayCode 사이즈 표시 코드 (숫자만, 예: "004")
	sizeDisplayCode string
}

// parseVariantCodes 상품 URL의 쿼리 파라미터에서 색상/사이즈 표시 코드를 추출합니다.
//
// colorDisplayCode/sizeDisplayCode 파라미터가 있으면 그대로 사용하고,
// 없으면 colorCode/sizeCode 값("COL09", "SMA004" 등)에서 숫자만 추출합니다.
func parseVariantCodes(productURL string) (variantCodes, error) {
	parsed, err := url.Parse(productURL)
	if err != nil {
		return variantCodes{}, apperrors.Wrapf(err, apperrors.InvalidInput, "상품 URL 파싱에 실패했습니다: '%s'", productURL)
	}

	query := parsed.Query()

	codes := variantCodes{
		colorDisplayCode: query.Get("colorDisplayCode"),
		sizeDisplayCode:  query.Get("sizeDisplayCode"),
	}
	if codes.colorDisplayCode == "" {
		codes.colorDisplayCode = digitsOnlyRegexp.ReplaceAllString(query.Get("colorCode"), "")
	}
	if codes.sizeDisplayCode == "" {
		codes.sizeDisplayCode = digitsOnlyRegexp.ReplaceAllString(query.Get("sizeCode"), "")
	}

	return codes, nil
}

// productID 상품 페이지 URL에서 상품 ID를 추출합니다.
// 상품 상세 페이지가 아닌 URL(기획전, 카테고리 등)은 감시 대상이 될 수 없으므로 에러를 반환합니다.
func productID(productURL string) (string, error) {
	matches := storePathRegexp.FindStringSubmatch(productURL)
	if matches == nil {
		return "", apperrors.Newf(apperrors.InvalidInput, "Uniqlo 상품 페이지 URL이 아닙니다: '%s'", productURL)
	}

	idMatches := productIDRegexp.FindStringSubmatch(matches[3])
	if idMatches == nil {
		return "", apperrors.Newf(apperrors.InvalidInput, "URL에서 상품 ID를 찾을 수 없습니다: '%s'", productURL)
	}

	return idMatches[1], nil
}

// canonicalURL 상품 URL을 정규화합니다.
//
// 기존 쿼리 파라미터를 모두 제거한 뒤, 색상/사이즈 코드를 "{알파벳 접두어}{표시 코드}"
// 형태로 다시 붙입니다. (예: "?colorCode=COL09&sizeCode=SMA004")
// 같은 상품을 가리키는 서로 다른 URL 표기가 하나의 감시 키로 수렴하도록 합니다.
func canonicalURL(productURL string, codes variantCodes, colorCodePrefix, sizeCodePrefix string) string {
	canonical, _, _ := strings.Cut(productURL, "?")

	appendParam := func(key, value string) {
		delimiter := "?"
		if strings.Contains(canonical, "?") {
			delimiter = "&"
		}
		canonical += fmt.Sprintf("%s%s=%s", delimiter, key, value)
	}

	if codes.colorDisplayCode != "" {
		appendParam("colorCode", colorCodePrefix+codes.colorDisplayCode)
	}
	if codes.sizeDisplayCode != "" {
		appendParam("sizeCode", sizeCodePrefix+codes.sizeDisplayCode)
	}

	return canonical
}

// NormalizeURL 임의의 문자열에서 Uniqlo 상품 URL 부분만 추출하여 https 주소로 복원합니다.
//
// 명령 메시지에는 스킴이 생략되거나 다른 텍스트가 섞인 URL이 들어올 수 있으므로,
// "www.uniqlo.com" 이후의 경로만 취해 정식 주소로 재구성합니다.
func NormalizeURL(raw string) (string, error) {
	_, after, found := strings.Cut(raw, storefrontHost)
	if !found {
		return "", apperrors.Newf(apperrors.InvalidInput, "Uniqlo 상품 URL이 아닙니다: '%s'", raw)
	}

	return "https://" + storefrontHost + strings.TrimSpace(after), nil
}
