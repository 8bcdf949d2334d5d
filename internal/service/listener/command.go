package listener

import (
	"strings"

	"github.com/darkkaiser/uniqlo-watcher/internal/service/fetch/uniqlo"
)

// commandKind 명령 토픽으로 수신된 메시지의 명령 유형
type commandKind int

const (
	commandAdd commandKind = iota + 1
	commandRemove
)

// removeKeyword 제거 명령의 선두 키워드 (대소문자 무시, 콜론 앞뒤 공백 허용)
const removeKeyword = "remove"

// nicknameMarker 등록 명령에서 상품 URL과 별칭을 구분하는 마커 (대소문자 무시)
const nicknameMarker = "name:"

// command 명령 토픽의 메시지 한 줄을 해석한 결과입니다.
type command struct {
	kind commandKind

	// token 제거 명령의 대상 토큰입니다. URL 또는 별칭일 수 있습니다.
	token string
	// tokenIsURL token이 정규화 가능한 상품 URL이면 true입니다.
	tokenIsURL bool

	// productURL 등록 명령의 정규화된 상품 URL입니다.
	productURL string
	// nickname 등록 명령의 상품 별칭입니다.
	nickname string
}

// parseCommand 명령 토픽의 메시지 한 줄을 명령으로 해석합니다.
//
// 제거 키워드("remove:")가 등록 명령의 별칭 마커("name:")보다 항상 먼저 확인되므로,
// "remove:" 뒤에 "name:"이 포함된 메시지도 제거 명령으로 해석됩니다.
// 해석할 수 없는 메시지는 ok=false를 반환하며, 호출자는 이를 무시해야 합니다.
func parseCommand(line string) (command, bool) {
	message := strings.TrimSpace(line)
	if message == "" {
		return command{}, false
	}

	if rest, ok := cutRemoveKeyword(message); ok {
		return parseRemoveCommand(rest)
	}

	return parseAddCommand(message)
}

// cutRemoveKeyword 메시지가 제거 키워드와 콜론으로 시작하면 콜론 이후의 나머지를 반환합니다.
// 키워드와 콜론 사이의 공백도 제거 명령으로 인정합니다. (예: "remove : <토큰>")
func cutRemoveKeyword(message string) (string, bool) {
	if len(message) < len(removeKeyword) || !strings.EqualFold(message[:len(removeKeyword)], removeKeyword) {
		return "", false
	}

	rest := strings.TrimLeft(message[len(removeKeyword):], " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}

	return rest[1:], true
}

// parseRemoveCommand 제거 키워드 이후의 나머지 문자열을 제거 명령으로 해석합니다.
func parseRemoveCommand(rest string) (command, bool) {
	token := strings.TrimSpace(rest)
	if token == "" {
		return command{}, false
	}

	// 토큰이 상품 URL이면 정규화하여 감시 키와 같은 형태로 맞춥니다.
	// URL이 아니면 별칭으로 취급하여 그대로 둡니다.
	if normalized, err := uniqlo.NormalizeURL(token); err == nil {
		return command{kind: commandRemove, token: normalized, tokenIsURL: true}, true
	}

	return command{kind: commandRemove, token: token}, true
}

// parseAddCommand "<상품 URL> name:<별칭>" 형식의 메시지를 등록 명령으로 해석합니다.
func parseAddCommand(message string) (command, bool) {
	index := strings.Index(strings.ToLower(message), nicknameMarker)
	if index < 0 {
		return command{}, false
	}

	productURL, err := uniqlo.NormalizeURL(strings.TrimSpace(message[:index]))
	if err != nil {
		return command{}, false
	}

	nickname := strings.TrimSpace(message[index+len(nicknameMarker):])
	if nickname == "" {
		return command{}, false
	}

	return command{kind: commandAdd, productURL: productURL, nickname: nickname}, true
}
