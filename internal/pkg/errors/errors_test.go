package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew 에러 생성 시 타입과 메시지가 올바르게 설정되는지 검증합니다.
func TestNew(t *testing.T) {
	t.Parallel()

	err := New(ExecutionFailed, "상품 정보를 가져올 수 없습니다")

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ExecutionFailed, appErr.Type())
	assert.Equal(t, "상품 정보를 가져올 수 없습니다", appErr.Message())
	assert.NotEmpty(t, appErr.Stack())
	assert.Equal(t, "[ExecutionFailed] 상품 정보를 가져올 수 없습니다", err.Error())
}

// TestNewf 포맷 문자열이 적용되는지 검증합니다.
func TestNewf(t *testing.T) {
	t.Parallel()

	err := Newf(NotFound, "상품('%s')을 찾을 수 없습니다", "E463985-000")

	assert.Contains(t, err.Error(), "E463985-000")
}

// TestWrap 에러 래핑 시 원인 에러가 체인에 보존되는지 검증합니다.
func TestWrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")
	err := Wrap(cause, System, "감시 목록 저장 실패")

	assert.Equal(t, cause, RootCause(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, stderrors.Is(err, cause))
}

// TestWrap_NilReturnsNil nil 에러 래핑 시 nil이 반환되는지 검증합니다.
func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, System, "무시되어야 합니다"))
	assert.Nil(t, Wrapf(nil, System, "무시되어야 합니다: %d", 1))
}

// TestIs 에러 체인 내의 타입 검사가 동작하는지 검증합니다.
func TestIs(t *testing.T) {
	t.Parallel()

	inner := New(Timeout, "요청 시간이 초과되었습니다")
	outer := Wrap(inner, ExecutionFailed, "상품 수집 실패")

	assert.True(t, Is(outer, Timeout))
	assert.True(t, Is(outer, ExecutionFailed))
	assert.False(t, Is(outer, NotFound))
	assert.False(t, Is(nil, Timeout))
}

// TestTypeOf AppError와 일반 에러의 타입 판별을 검증합니다.
func TestTypeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, InvalidInput, TypeOf(New(InvalidInput, "잘못된 명령 형식입니다")))
	assert.Equal(t, Unknown, TypeOf(stderrors.New("plain error")))
	assert.Equal(t, Unknown, TypeOf(nil))
}

// TestFormat_Verbose %+v 출력에 스택과 원인이 포함되는지 검증합니다.
func TestFormat_Verbose(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("EOF")
	err := Wrap(cause, ParsingFailed, "JSON 응답 파싱 실패")

	formatted := fmt.Sprintf("%+v", err)

	assert.Contains(t, formatted, "[ParsingFailed] JSON 응답 파싱 실패")
	assert.Contains(t, formatted, "Stack trace:")
	assert.Contains(t, formatted, "Caused by:")
	assert.Contains(t, formatted, "EOF")
}

// TestErrorTypeString 모든 에러 타입의 문자열 표현을 검증합니다.
func TestErrorTypeString(t *testing.T) {
	t.Parallel()

	tests := map[ErrorType]string{
		Unknown:         "Unknown",
		Internal:        "Internal",
		System:          "System",
		InvalidInput:    "InvalidInput",
		NotFound:        "NotFound",
		ExecutionFailed: "ExecutionFailed",
		ParsingFailed:   "ParsingFailed",
		Timeout:         "Timeout",
		Unavailable:     "Unavailable",
	}

	for errType, expected := range tests {
		assert.Equal(t, expected, errType.String())
	}
}
