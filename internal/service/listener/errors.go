package listener

import (
	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
)

var (
	// ErrNotificationSenderNotInitialized NotificationSender가 주입되지 않은 상태로
	// 서비스 시작이 요청되었을 때 반환하는 에러입니다.
	ErrNotificationSenderNotInitialized = apperrors.New(apperrors.Internal, "NotificationSender가 초기화되지 않았습니다")
)
