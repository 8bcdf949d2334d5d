// Package version 애플리케이션의 빌드 및 버저닝 정보를 관리하는 패키지입니다.
//
// 빌드 시점(-ldflags)에 주입된 메타데이터와 실행 시점의 환경 정보(Go 버전, OS, 아키텍처)를
// 통합하여 제공합니다. /version API 엔드포인트와 시작 로그에 사용됩니다.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
)

const unknown = "unknown"

// globalBuildInfo 전역 빌드 정보 (Atomic Value를 사용하여 Thread-Safe 보장)
var globalBuildInfo atomic.Value

// Info 애플리케이션의 빌드 정보를 담고 있습니다.
type Info struct {
	Version   string `json:"version"`    // 애플리케이션의 버전 (예: v1.2.0-12-g3ab41cf)
	Commit    string `json:"commit"`     // Git 커밋 해시
	BuildDate string `json:"build_date"` // 빌드 날짜 (ISO 8601 형식 권장)
	GoVersion string `json:"go_version"` // 빌드에 사용된 Go 컴파일러 버전
	OS        string `json:"os"`         // 실행 중인 운영체제
	Arch      string `json:"arch"`       // 실행 중인 시스템 아키텍처
}

// Set 애플리케이션의 빌드 정보를 설정합니다.
// main() 시작 시점에 한 번 호출되며, 비어있는 런타임 필드는 자동으로 채워집니다.
func Set(bi Info) {
	if bi.GoVersion == "" {
		bi.GoVersion = runtime.Version()
	}
	if bi.OS == "" {
		bi.OS = runtime.GOOS
	}
	if bi.Arch == "" {
		bi.Arch = runtime.GOARCH
	}
	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.Commit == "" {
		bi.Commit = unknown
	}

	globalBuildInfo.Store(bi)
}

// Get 애플리케이션의 빌드 정보를 반환합니다.
func Get() Info {
	bi := globalBuildInfo.Load()
	if bi == nil {
		return Info{
			Version: unknown,
			Commit:  unknown,
		}
	}
	return bi.(Info)
}

// ToMap 빌드 정보를 맵(Map) 형태로 반환합니다. (구조적 로깅용)
func (i Info) ToMap() map[string]any {
	return map[string]any{
		"version":    i.Version,
		"commit":     i.Commit,
		"build_date": i.BuildDate,
		"go_version": i.GoVersion,
		"os":         i.OS,
		"arch":       i.Arch,
	}
}

// String 빌드 정보를 사람이 읽기 쉬운 하나의 문자열로 요약해 반환합니다.
func (i Info) String() string {
	if i.Version == "" {
		return unknown
	}

	var details []string

	if i.Commit != "" && i.Commit != unknown {
		commit := i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		details = append(details, fmt.Sprintf("commit: %s", commit))
	}
	if i.BuildDate != "" {
		details = append(details, fmt.Sprintf("date: %s", i.BuildDate))
	}
	if i.GoVersion != "" {
		details = append(details, fmt.Sprintf("go: %s", i.GoVersion))
	}
	if i.OS != "" && i.Arch != "" {
		details = append(details, fmt.Sprintf("platform: %s/%s", i.OS, i.Arch))
	}

	if len(details) == 0 {
		return i.Version
	}

	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(details, ", "))
}
