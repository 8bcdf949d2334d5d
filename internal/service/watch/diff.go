package watch

// ChangeType 두 스냅샷 사이에서 감지된 변경의 종류를 식별하기 위한 열거형입니다.
type ChangeType int

const (
	// ChangeNone 변경 사항이 없음을 나타냅니다. (기본값)
	ChangeNone ChangeType = iota

	// ChangePrice 판매 가격이 변동되었음을 나타냅니다.
	ChangePrice

	// ChangeStockStatus 재고 상태(IN_STOCK/LOW_STOCK/STOCK_OUT)가 전환되었음을 나타냅니다.
	ChangeStockStatus

	// ChangeQuantity 재고 상태는 LOW_STOCK으로 유지되면서 남은 수량만 변동되었음을 나타냅니다.
	ChangeQuantity
)

// Change 직전 스냅샷과 현재 스냅샷을 비교하여 발견된 단일 변경 사항입니다.
//
// Diff()의 결과물로 생성되며, 감시 사이클은 각 Change를 알림 메시지로 렌더링하여 발송합니다.
// 최신 상태와 이전 상태를 동시에 보유하므로, 알림 메시지에서 구체적인 변화 내역
// (이전 가격, 이전 수량 등)을 보여줄 수 있습니다.
type Change struct {
	// Type 발견된 변경 사항의 종류
	Type ChangeType

	// Entry 변경이 발생한 감시 항목
	Entry Entry

	// Current 최신 상태의 상품 스냅샷
	Current ProductSnapshot

	// Prev 직전 사이클의 상품 스냅샷
	Prev ProductSnapshot
}

// Diff 현재 스냅샷을 직전 스냅샷과 대조하여 변경 이벤트 목록을 생성합니다.
//
// 비교 규칙:
//  1. 가격 변경: 센트 단위 정확한 동등 비교로 판정하며, 인상/인하를 구분하지 않고 하나의 이벤트를 생성합니다.
//  2. 재고 상태 전환: 상태가 달라진 경우 하나의 이벤트를 생성합니다.
//     상태가 전환된 사이클에는 수량 변경 이벤트를 함께 생성하지 않습니다.
//     (예: IN_STOCK → LOW_STOCK 전환 알림에 이미 현재 수량이 포함되므로 중복 알림을 방지합니다)
//  3. 수량 변경: 직전과 현재 모두 LOW_STOCK인 경우에만 수량 차이를 이벤트로 생성합니다.
//  4. 최초 관측: prev가 nil이면(처음 보는 상품) 아무 이벤트도 생성하지 않습니다.
//
// 가격과 재고는 서로 독립적인 범주이므로, 한 사이클에 가격 이벤트와 재고 이벤트가
// 각각 최대 1건씩 동시에 생성될 수 있습니다.
func Diff(entry Entry, prev *ProductSnapshot, current ProductSnapshot) []Change {
	// 최초 관측된 상품은 비교 기준이 없으므로 이벤트 없이 스냅샷만 저장됩니다.
	if prev == nil {
		return nil
	}

	var changes []Change

	if current.Price != prev.Price {
		changes = append(changes, Change{
			Type:    ChangePrice,
			Entry:   entry,
			Current: current,
			Prev:    *prev,
		})
	}

	if current.Status != prev.Status {
		changes = append(changes, Change{
			Type:    ChangeStockStatus,
			Entry:   entry,
			Current: current,
			Prev:    *prev,
		})
	} else if current.Status == StockStatusLowStock && current.LowStockQuantity != prev.LowStockQuantity {
		changes = append(changes, Change{
			Type:    ChangeQuantity,
			Entry:   entry,
			Current: current,
			Prev:    *prev,
		})
	}

	return changes
}
