package notification

import (
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
)

var (
	// ErrServiceNotRunning Notification 서비스가 실행 중이 아닐 때 반환하는 에러입니다.
	ErrServiceNotRunning = apperrors.New(apperrors.Unavailable, "Notification 서비스가 현재 실행 중이지 않아 알림을 발송할 수 없습니다")
)
