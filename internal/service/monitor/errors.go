package monitor

import (
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
)

var (
	// ErrNotificationSenderNotInitialized 서비스 시작 시 핵심 의존성 객체인 NotificationSender가 올바르게 초기화되지 않았을 때 반환하는 에러입니다.
	ErrNotificationSenderNotInitialized = apperrors.New(apperrors.Internal, "NotificationSender 객체가 초기화되지 않았습니다")

	// ErrServiceNotRunning Monitor 서비스가 실행 중이 아닐 때 반환하는 에러입니다.
	ErrServiceNotRunning = apperrors.New(apperrors.Internal, "Monitor 서비스가 현재 실행 중이지 않아 요청을 수행할 수 없습니다")
)
