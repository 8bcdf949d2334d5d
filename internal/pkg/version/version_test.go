package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSetAndGet 설정한 빌드 정보가 조회되고 런타임 필드가 자동으로 채워지는지 검증합니다.
func TestSetAndGet(t *testing.T) {
	Set(Info{
		Version:   "v1.2.0",
		Commit:    "3ab41cf9d2e8",
		BuildDate: "2026-08-01T10:00:00Z",
	})

	got := Get()

	assert.Equal(t, "v1.2.0", got.Version)
	assert.Equal(t, "3ab41cf9d2e8", got.Commit)
	assert.Equal(t, runtime.Version(), got.GoVersion)
	assert.Equal(t, runtime.GOOS, got.OS)
	assert.Equal(t, runtime.GOARCH, got.Arch)
}

// TestSet_EmptyFieldsFallBackToUnknown 비어있는 버전/커밋이 unknown으로 대체되는지 검증합니다.
func TestSet_EmptyFieldsFallBackToUnknown(t *testing.T) {
	Set(Info{})

	got := Get()

	assert.Equal(t, unknown, got.Version)
	assert.Equal(t, unknown, got.Commit)
}

// TestString 요약 문자열에 커밋 해시 축약과 플랫폼 정보가 포함되는지 검증합니다.
func TestString(t *testing.T) {
	i := Info{
		Version:   "v1.2.0",
		Commit:    "3ab41cf9d2e8",
		GoVersion: "go1.24.0",
		OS:        "linux",
		Arch:      "amd64",
	}

	s := i.String()

	assert.Contains(t, s, "v1.2.0")
	assert.Contains(t, s, "commit: 3ab41cf")
	assert.NotContains(t, s, "3ab41cf9d2e8", "커밋 해시는 7자로 축약되어야 합니다")
	assert.Contains(t, s, "platform: linux/amd64")
}

// TestToMap 구조적 로깅용 맵 변환을 검증합니다.
func TestToMap(t *testing.T) {
	i := Info{Version: "v1.2.0", Commit: "abc1234"}

	m := i.ToMap()

	assert.Equal(t, "v1.2.0", m["version"])
	assert.Equal(t, "abc1234", m["commit"])
}
