package monitor

import (
	"fmt"
	"strings"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/contract"
	"github.com/darkkaiser/uniqlo-watcher/internal/service/watch"
)

// lowStockCriticalThreshold 품절 임박으로 판단하여 최고 우선순위 알림을 발송하는 잔여 수량 기준입니다.
const lowStockCriticalThreshold = 3

// renderChange 감지된 변경 사항을 알림 메시지로 변환합니다.
func renderChange(change watch.Change) contract.Notification {
	switch change.Type {
	case watch.ChangePrice:
		return renderPriceChange(change)
	case watch.ChangeStockStatus:
		return renderStatusChange(change)
	case watch.ChangeQuantity:
		return renderQuantityChange(change)
	default:
		return contract.NewErrorNotification(
			"알 수 없는 변경 유형",
			fmt.Sprintf("처리할 수 없는 변경 유형(%d)이 감지되었습니다: '%s'", change.Type, change.Entry.URL),
		)
	}
}

// renderPriceChange 가격 변동 알림을 생성합니다. 인상/인하 모두 동일한 형식을 사용합니다.
func renderPriceChange(change watch.Change) contract.Notification {
	fullName := change.Current.FullName(change.Entry.Nickname)

	return contract.Notification{
		Title: fmt.Sprintf("Price change for %s", fullName),
		Message: fmt.Sprintf("Old price: %s\nNew price: %s\nPrice difference: %s",
			change.Prev.Price, change.Current.Price, priceDifference(change.Prev.Price, change.Current.Price)),
		Priority: contract.PriorityHigh,
		Tags:     []string{"tada"},
		ClickURL: change.Entry.URL,
	}
}

// renderStatusChange 재고 상태 전환 알림을 생성합니다.
func renderStatusChange(change watch.Change) contract.Notification {
	fullName := change.Current.FullName(change.Entry.Nickname)

	switch change.Current.Status {
	case watch.StockStatusLowStock:
		// 품절에서 돌아온 경우와 재고 충분에서 줄어든 경우는 의미가 다르므로 태그를 구분합니다.
		tags := []string{"warning"}
		if change.Prev.Status != watch.StockStatusInStock {
			tags = []string{"up", "tada"}
		}

		return contract.Notification{
			Title:     fmt.Sprintf("%s is LOW on stock", fullName),
			Message:   detailLine(change.Current),
			Priority:  contract.PriorityHigh,
			Tags:      tags,
			ClickURL:  change.Entry.URL,
			AttachURL: change.Current.ImageURL,
		}

	case watch.StockStatusOut:
		return contract.Notification{
			Title:    fmt.Sprintf("%s is OUT OF STOCK", fullName),
			Message:  " ",
			Priority: contract.PriorityHigh,
			Tags:     []string{"skull"},
			ClickURL: change.Entry.URL,
		}

	default:
		// 재입고 (LOW_STOCK/STOCK_OUT → IN_STOCK)
		return contract.Notification{
			Title:     fmt.Sprintf("%s is back IN STOCK", fullName),
			Message:   fmt.Sprintf("Price: %s", change.Current.PriceString()),
			Priority:  contract.PriorityHigh,
			Tags:      []string{"up", "tada"},
			ClickURL:  change.Entry.URL,
			AttachURL: change.Current.ImageURL,
		}
	}
}

// renderQuantityChange 재고 부족 상태에서의 잔여 수량 변동 알림을 생성합니다.
// 수량이 품절 임박 기준 이하로 떨어지면 최고 우선순위로 격상됩니다.
func renderQuantityChange(change watch.Change) contract.Notification {
	fullName := change.Current.FullName(change.Entry.Nickname)

	if change.Current.LowStockQuantity < change.Prev.LowStockQuantity {
		notification := contract.Notification{
			Title: fmt.Sprintf("%s - Quantity change", fullName),
			Message: fmt.Sprintf("Quantity is down from %d to %d at Price: %s",
				change.Prev.LowStockQuantity, change.Current.LowStockQuantity, change.Current.PriceString()),
			Priority: contract.PriorityDefault,
			Tags:     []string{"small_red_triangle_down"},
			ClickURL: change.Entry.URL,
		}

		if change.Current.LowStockQuantity <= lowStockCriticalThreshold {
			notification.Title = fmt.Sprintf("%s - ALMOST OUT OF STOCK", fullName)
			notification.Priority = contract.PriorityMax
			notification.Tags = []string{"rotating_light"}
		}

		return notification
	}

	return contract.Notification{
		Title: fmt.Sprintf("%s - Quantity change", fullName),
		Message: fmt.Sprintf("Quantity is up from %d to %d at Price: %s",
			change.Prev.LowStockQuantity, change.Current.LowStockQuantity, change.Current.PriceString()),
		Priority: contract.PriorityDefault,
		Tags:     []string{"up"},
		ClickURL: change.Entry.URL,
	}
}

// RenderAdded 새로 등록된 상품에 대한 안내 알림을 생성합니다.
// 등록 시점에 이미 재고가 부족하거나 품절인 경우 제목과 우선순위가 격상됩니다.
//
// 명령 수신(Listener)이나 API 핸들러가 AddWatch() 성공 후 등록 알림을 구성할 때에도 사용됩니다.
func RenderAdded(entry watch.Entry, snapshot watch.ProductSnapshot) contract.Notification {
	fullName := snapshot.FullName(entry.Nickname)

	notification := contract.Notification{
		Title:     fmt.Sprintf("%s Added", fullName),
		Message:   detailLine(snapshot),
		Priority:  contract.PriorityDefault,
		ClickURL:  entry.URL,
		AttachURL: snapshot.ImageURL,
	}

	switch snapshot.Status {
	case watch.StockStatusLowStock:
		notification.Title = fmt.Sprintf("%s is LOW on stock", fullName)
		notification.Priority = contract.PriorityHigh
		notification.Tags = []string{"warning"}

		if snapshot.LowStockQuantity <= lowStockCriticalThreshold {
			notification.Title = fmt.Sprintf("%s is ALMOST OUT of stock", fullName)
			notification.Priority = contract.PriorityMax
			notification.Tags = []string{"rotating_light"}
		}

	case watch.StockStatusOut:
		notification.Title = fmt.Sprintf("%s is OUT OF STOCK", fullName)
		notification.Priority = contract.PriorityHigh
		notification.Tags = []string{"skull"}
	}

	return notification
}

// detailLine 가격, 잔여 수량, 색상, 사이즈를 한 줄로 요약합니다.
// 잔여 수량은 재고 부족 상태에서만, 색상/사이즈는 URL에 옵션이 지정된 경우에만 포함됩니다.
func detailLine(snapshot watch.ProductSnapshot) string {
	parts := []string{fmt.Sprintf("Price: %s", snapshot.PriceString())}

	if snapshot.Status == watch.StockStatusLowStock {
		parts = append(parts, fmt.Sprintf("Quantity: %d", snapshot.LowStockQuantity))
	}
	if snapshot.ColorName != "" {
		parts = append(parts, snapshot.ColorName)
	}
	if snapshot.SizeName != "" {
		parts = append(parts, snapshot.SizeName)
	}

	return strings.Join(parts, ", ")
}

// priceDifference 가격 차이를 부호가 포함된 문자열로 변환합니다. (예: "-$5.00", "+$2.50")
func priceDifference(prev, current watch.Price) string {
	diff := current - prev
	if diff < 0 {
		return "-" + (-diff).String()
	}
	return "+" + diff.String()
}
