package notifier

import (
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
)

var (
	// ErrQueueFull 내부 처리 대기열이 포화 상태에 도달하여 새로운 알림 요청을 수락할 수 없을 때 반환됩니다. (일시적 부하 상태)
	ErrQueueFull = apperrors.New(apperrors.Unavailable, "현재 알림 발송 대기열이 가득 차서 요청을 처리할 수 없습니다. 잠시 후 다시 시도해 주세요")

	// ErrClosed 알림 발송 서비스가 종료 절차를 밟고 있거나 이미 종료되어, 더 이상 서비스가 불가능할 때 반환됩니다. (영구적 불가 상태)
	ErrClosed = apperrors.New(apperrors.Unavailable, "알림 발송 서비스가 종료되었기 때문에 새로운 요청을 수락할 수 없습니다")
)
