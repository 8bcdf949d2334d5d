// Package service 애플리케이션을 구성하는 장기 실행 서비스들의 공통 생명주기를 정의합니다.
package service

import (
	"context"
	"sync"
)

// Service 장기 실행 서비스의 공통 인터페이스입니다.
//
// 모든 서비스(Monitor, Notification, Listener, API)는 이 인터페이스를 구현하며,
// main()에서 일괄적으로 시작되고 종료 신호에 따라 일괄적으로 정리됩니다.
type Service interface {
	// Start 서비스를 시작합니다.
	//
	// 매개변수:
	//   - serviceStopCtx: 서비스 종료 신호를 전달받는 컨텍스트입니다.
	//     이 컨텍스트가 취소되면 서비스는 Graceful Shutdown을 시작해야 합니다.
	//   - serviceStopWG: 서비스가 완전히 종료되었을 때 Done()을 호출해야 하는 WaitGroup입니다.
	//     시작에 실패한 경우에도 반드시 Done()이 호출되어야 합니다.
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
