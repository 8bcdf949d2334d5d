package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseCommand_Add 등록 명령 메시지의 해석을 검증합니다.
func TestParseCommand_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		line             string
		expectedURL      string
		expectedNickname string
	}{
		{
			name:             "기본 형식",
			line:             "https://www.uniqlo.com/ca/en/products/E463985-000 name:여름 티셔츠",
			expectedURL:      "https://www.uniqlo.com/ca/en/products/E463985-000",
			expectedNickname: "여름 티셔츠",
		},
		{
			name:             "http 스킴은 https로 정규화",
			line:             "http://www.uniqlo.com/ca/en/products/E463985-000 name:티셔츠",
			expectedURL:      "https://www.uniqlo.com/ca/en/products/E463985-000",
			expectedNickname: "티셔츠",
		},
		{
			name:             "별칭 마커의 대소문자 무시",
			line:             "https://www.uniqlo.com/ca/en/products/E463985-000 NAME: 티셔츠",
			expectedURL:      "https://www.uniqlo.com/ca/en/products/E463985-000",
			expectedNickname: "티셔츠",
		},
		{
			name:             "앞뒤 공백 제거",
			line:             "  https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL09 name:  블랙 티셔츠  ",
			expectedURL:      "https://www.uniqlo.com/ca/en/products/E463985-000?colorCode=COL09",
			expectedNickname: "블랙 티셔츠",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, ok := parseCommand(tt.line)

			require.True(t, ok)
			assert.Equal(t, commandAdd, cmd.kind)
			assert.Equal(t, tt.expectedURL, cmd.productURL)
			assert.Equal(t, tt.expectedNickname, cmd.nickname)
		})
	}
}

// TestParseCommand_Remove 제거 명령 메시지의 해석을 검증합니다.
func TestParseCommand_Remove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		line          string
		expectedToken string
		expectedIsURL bool
	}{
		{
			name:          "URL 토큰",
			line:          "remove: https://www.uniqlo.com/ca/en/products/E463985-000",
			expectedToken: "https://www.uniqlo.com/ca/en/products/E463985-000",
			expectedIsURL: true,
		},
		{
			name:          "별칭 토큰",
			line:          "remove: 여름 티셔츠",
			expectedToken: "여름 티셔츠",
		},
		{
			name:          "제거 키워드의 대소문자 무시",
			line:          "REMOVE: 티셔츠",
			expectedToken: "티셔츠",
		},
		{
			name:          "키워드와 토큰 사이 공백 없음",
			line:          "remove:티셔츠",
			expectedToken: "티셔츠",
		},
		{
			name:          "키워드와 콜론 사이 공백 허용",
			line:          "remove : 티셔츠",
			expectedToken: "티셔츠",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, ok := parseCommand(tt.line)

			require.True(t, ok)
			assert.Equal(t, commandRemove, cmd.kind)
			assert.Equal(t, tt.expectedToken, cmd.token)
			assert.Equal(t, tt.expectedIsURL, cmd.tokenIsURL)
		})
	}
}

// TestParseCommand_RemoveKeywordTakesPriority 제거 키워드가 별칭 마커보다 먼저
// 확인되는지 검증합니다. "remove:" 뒤에 "name:"이 포함되어도 제거 명령입니다.
func TestParseCommand_RemoveKeywordTakesPriority(t *testing.T) {
	t.Parallel()

	cmd, ok := parseCommand("remove: https://www.uniqlo.com/ca/en/products/E463985-000 name:티셔츠")

	require.True(t, ok)
	assert.Equal(t, commandRemove, cmd.kind)
}

// TestParseCommand_Malformed 해석할 수 없는 메시지가 무시되는지 검증합니다.
func TestParseCommand_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "빈 메시지", line: ""},
		{name: "공백만 있는 메시지", line: "   "},
		{name: "명령 형식이 아닌 일반 텍스트", line: "hello world"},
		{name: "별칭 마커 없는 URL", line: "https://www.uniqlo.com/ca/en/products/E463985-000"},
		{name: "상품 URL 없는 별칭 마커", line: "name:티셔츠"},
		{name: "유니클로 URL이 아닌 등록 명령", line: "https://www.example.com/product name:티셔츠"},
		{name: "별칭이 비어있는 등록 명령", line: "https://www.uniqlo.com/ca/en/products/E463985-000 name:"},
		{name: "토큰이 비어있는 제거 명령", line: "remove:"},
		{name: "토큰이 공백뿐인 제거 명령", line: "remove:   "},
		{name: "콜론 없는 제거 키워드", line: "remove 티셔츠"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, ok := parseCommand(tt.line)
			assert.False(t, ok)
		})
	}
}
