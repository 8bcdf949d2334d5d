package monitor

import (
	"testing"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
	"github.com/stretchr/testify/assert"
)

func changeOf(changeType watch.ChangeType, prev, current watch.ProductSnapshot) watch.Change {
	return watch.Change{
		Type:    changeType,
		Entry:   watch.Entry{URL: testProductURL, Nickname: "티셔츠"},
		Current: current,
		Prev:    prev,
	}
}

// TestRenderPriceChange 가격 변동 알림의 제목/본문/우선순위를 검증합니다.
func TestRenderPriceChange(t *testing.T) {
	t.Parallel()

	prev := inStockSnapshot()
	current := inStockSnapshot()
	current.Price = 1990

	n := renderChange(changeOf(watch.ChangePrice, prev, current))

	assert.Equal(t, "Price change for AIRism Cotton T-Shirt (BLACK) - 티셔츠", n.Title)
	assert.Equal(t, "Old price: $29.90\nNew price: $19.90\nPrice difference: -$10.00", n.Message)
	assert.Equal(t, contract.PriorityHigh, n.Priority)
	assert.Equal(t, []string{"tada"}, n.Tags)
	assert.Equal(t, testProductURL, n.ClickURL)
}

// TestRenderStatusChange 재고 상태 전환별 알림 내용을 검증합니다.
func TestRenderStatusChange(t *testing.T) {
	t.Parallel()

	base := inStockSnapshot()
	base.ImageURL = "https://image.uniqlo.com/09.jpg"
	base.SizeName = "L"

	lowStock := base
	lowStock.Status = watch.StockStatusLowStock
	lowStock.LowStockQuantity = 5

	stockOut := base
	stockOut.Status = watch.StockStatusOut

	tests := []struct {
		name             string
		prev             watch.ProductSnapshot
		current          watch.ProductSnapshot
		expectedTitle    string
		expectedMessage  string
		expectedPriority contract.Priority
		expectedTags     []string
		expectedAttach   string
	}{
		{
			name:             "재고 충분에서 재고 부족으로 전환",
			prev:             base,
			current:          lowStock,
			expectedTitle:    "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is LOW on stock",
			expectedMessage:  "Price: $29.90, Quantity: 5, BLACK, L",
			expectedPriority: contract.PriorityHigh,
			expectedTags:     []string{"warning"},
			expectedAttach:   "https://image.uniqlo.com/09.jpg",
		},
		{
			name: "품절에서 재고 부족으로 복귀",
			prev: func() watch.ProductSnapshot {
				s := base
				s.Status = watch.StockStatusOut
				return s
			}(),
			current:          lowStock,
			expectedTitle:    "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is LOW on stock",
			expectedMessage:  "Price: $29.90, Quantity: 5, BLACK, L",
			expectedPriority: contract.PriorityHigh,
			expectedTags:     []string{"up", "tada"},
			expectedAttach:   "https://image.uniqlo.com/09.jpg",
		},
		{
			name:             "품절로 전환",
			prev:             lowStock,
			current:          stockOut,
			expectedTitle:    "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is OUT OF STOCK",
			expectedMessage:  " ",
			expectedPriority: contract.PriorityHigh,
			expectedTags:     []string{"skull"},
		},
		{
			name:             "재입고",
			prev:             stockOut,
			current:          base,
			expectedTitle:    "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is back IN STOCK",
			expectedMessage:  "Price: $29.90",
			expectedPriority: contract.PriorityHigh,
			expectedTags:     []string{"up", "tada"},
			expectedAttach:   "https://image.uniqlo.com/09.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := renderChange(changeOf(watch.ChangeStockStatus, tt.prev, tt.current))

			assert.Equal(t, tt.expectedTitle, n.Title)
			assert.Equal(t, tt.expectedMessage, n.Message)
			assert.Equal(t, tt.expectedPriority, n.Priority)
			assert.Equal(t, tt.expectedTags, n.Tags)
			assert.Equal(t, tt.expectedAttach, n.AttachURL)
		})
	}
}

// TestRenderQuantityChange 재고 부족 상태에서의 수량 변동 알림을 검증합니다.
// 품절 임박 기준 이하로 떨어지면 최고 우선순위로 격상되어야 합니다.
func TestRenderQuantityChange(t *testing.T) {
	t.Parallel()

	snapshotWithQuantity := func(quantity int) watch.ProductSnapshot {
		s := inStockSnapshot()
		s.Status = watch.StockStatusLowStock
		s.LowStockQuantity = quantity
		return s
	}

	t.Run("수량 감소", func(t *testing.T) {
		t.Parallel()

		n := renderChange(changeOf(watch.ChangeQuantity, snapshotWithQuantity(8), snapshotWithQuantity(5)))

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 - Quantity change", n.Title)
		assert.Equal(t, "Quantity is down from 8 to 5 at Price: $29.90", n.Message)
		assert.Equal(t, contract.PriorityDefault, n.Priority)
		assert.Equal(t, []string{"small_red_triangle_down"}, n.Tags)
	})

	t.Run("품절 임박 수준까지 감소", func(t *testing.T) {
		t.Parallel()

		n := renderChange(changeOf(watch.ChangeQuantity, snapshotWithQuantity(5), snapshotWithQuantity(2)))

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 - ALMOST OUT OF STOCK", n.Title)
		assert.Equal(t, contract.PriorityMax, n.Priority)
		assert.Equal(t, []string{"rotating_light"}, n.Tags)
	})

	t.Run("수량 증가", func(t *testing.T) {
		t.Parallel()

		n := renderChange(changeOf(watch.ChangeQuantity, snapshotWithQuantity(2), snapshotWithQuantity(7)))

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 - Quantity change", n.Title)
		assert.Equal(t, "Quantity is up from 2 to 7 at Price: $29.90", n.Message)
		assert.Equal(t, []string{"up"}, n.Tags)
	})
}

// TestRenderAdded 상품 등록 알림이 등록 시점의 재고 상태에 따라 달라지는지 검증합니다.
func TestRenderAdded(t *testing.T) {
	t.Parallel()

	entry := watch.Entry{URL: testProductURL, Nickname: "티셔츠"}

	t.Run("재고 충분", func(t *testing.T) {
		t.Parallel()

		n := RenderAdded(entry, inStockSnapshot())

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 Added", n.Title)
		assert.Equal(t, "Price: $29.90, BLACK", n.Message)
		assert.Equal(t, contract.PriorityDefault, n.Priority)
		assert.Empty(t, n.Tags)
	})

	t.Run("재고 부족", func(t *testing.T) {
		t.Parallel()

		s := inStockSnapshot()
		s.Status = watch.StockStatusLowStock
		s.LowStockQuantity = 5

		n := RenderAdded(entry, s)

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is LOW on stock", n.Title)
		assert.Equal(t, "Price: $29.90, Quantity: 5, BLACK", n.Message)
		assert.Equal(t, contract.PriorityHigh, n.Priority)
		assert.Equal(t, []string{"warning"}, n.Tags)
	})

	t.Run("품절 임박", func(t *testing.T) {
		t.Parallel()

		s := inStockSnapshot()
		s.Status = watch.StockStatusLowStock
		s.LowStockQuantity = 1

		n := RenderAdded(entry, s)

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is ALMOST OUT of stock", n.Title)
		assert.Equal(t, contract.PriorityMax, n.Priority)
		assert.Equal(t, []string{"rotating_light"}, n.Tags)
	})

	t.Run("품절", func(t *testing.T) {
		t.Parallel()

		s := inStockSnapshot()
		s.Status = watch.StockStatusOut

		n := RenderAdded(entry, s)

		assert.Equal(t, "AIRism Cotton T-Shirt (BLACK) - 티셔츠 is OUT OF STOCK", n.Title)
		assert.Equal(t, contract.PriorityHigh, n.Priority)
		assert.Equal(t, []string{"skull"}, n.Tags)
	})
}

// TestPriceDifference 가격 차이의 부호 표기를 검증합니다.
func TestPriceDifference(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+$10.00", priceDifference(1990, 2990))
	assert.Equal(t, "-$10.00", priceDifference(2990, 1990))
	assert.Equal(t, "+$0.00", priceDifference(2990, 2990))
}
