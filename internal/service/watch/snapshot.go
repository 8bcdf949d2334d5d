package watch

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StockStatus 상품 변형(색상/사이즈)의 재고 상태입니다.
// 유니클로 커머스 API의 statusCode 값을 그대로 사용합니다.
type StockStatus string

const (
	// StockStatusInStock 재고가 충분한 상태입니다.
	StockStatusInStock StockStatus = "IN_STOCK"

	// StockStatusLowStock 재고가 얼마 남지 않은 상태입니다.
	// 이 상태에서만 남은 수량(LowStockQuantity)이 의미를 가집니다.
	StockStatusLowStock StockStatus = "LOW_STOCK"

	// StockStatusOut 품절 상태입니다.
	StockStatusOut StockStatus = "STOCK_OUT"
)

// Price 상품 가격입니다. 부동소수점 비교 오차를 피하기 위해 센트 단위 정수로 보관하며,
// 가격 변경 판정은 정확한 동등 비교로만 수행합니다.
type Price int64

// PriceFromValue API가 반환하는 달러 단위 실수 금액을 센트 단위 Price로 변환합니다.
func PriceFromValue(value float64) Price {
	return Price(math.Round(value * 100))
}

// pricePrinter 천 단위 구분 기호가 포함된 금액 표기를 위한 Printer입니다.
var pricePrinter = message.NewPrinter(language.English)

// String 가격을 "$1,234.56" 형식의 문자열로 변환합니다.
func (p Price) String() string {
	return pricePrinter.Sprintf("$%.2f", float64(p)/100)
}

// ProductSnapshot 특정 시점에 관측된 상품 변형의 상태입니다.
//
// 감시 사이클은 직전 사이클의 스냅샷과 이 스냅샷을 비교(Diff)하여 변경 이벤트를 생성하고,
// 비교 결과와 무관하게 항상 이 스냅샷을 새로운 기준으로 저장합니다.
type ProductSnapshot struct {
	// Name API가 반환한 상품의 공식 이름
	Name string `json:"name"`

	// Price 현재 판매 가격 (프로모션 가격이 있으면 프로모션 가격, 없으면 정가)
	Price Price `json:"price"`

	// IsPromo 현재 가격이 프로모션 가격인지 여부
	IsPromo bool `json:"is_promo"`

	// Status 재고 상태
	Status StockStatus `json:"status"`

	// LowStockQuantity 남은 재고 수량. Status가 LOW_STOCK인 경우에만 0이 아닌 값을 가집니다.
	LowStockQuantity int `json:"low_stock_quantity,omitempty"`

	// ColorName 선택된 색상의 이름 (URL에 색상 코드가 없으면 빈 문자열)
	ColorName string `json:"color_name,omitempty"`

	// SizeName 선택된 사이즈의 이름 (URL에 사이즈 코드가 없으면 빈 문자열)
	SizeName string `json:"size_name,omitempty"`

	// ImageURL 선택된 색상의 상품 이미지 주소
	ImageURL string `json:"image_url,omitempty"`
}

// PriceString 현재 가격을 알림 메시지용 문자열로 변환합니다. 프로모션 가격이면 "(Sale)"이 덧붙습니다.
func (s ProductSnapshot) PriceString() string {
	if s.IsPromo {
		return s.Price.String() + " (Sale)"
	}
	return s.Price.String()
}

// FullName 상품의 공식 이름, 색상, 별칭을 조합하여 알림 제목에 사용할 전체 이름을 생성합니다.
// (예: "AIRism Cotton T-Shirt (Black) - 여름용 티셔츠")
func (s ProductSnapshot) FullName(nickname string) string {
	name := s.Name
	if s.ColorName != "" {
		name = fmt.Sprintf("%s (%s)", name, s.ColorName)
	}
	if nickname != "" {
		name = fmt.Sprintf("%s - %s", name, nickname)
	}
	return name
}
