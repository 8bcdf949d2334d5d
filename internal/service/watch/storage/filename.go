package storage

import (
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
)

// filenameReplacer 임시 파일 이름에 포함되면 문제를 일으킬 수 있는 문자를 안전한 문자로 치환합니다.
// os.CreateTemp는 패턴의 '*'를 난수로 치환하므로, 패턴 자체에 '*'나 경로 구분자가
// 섞여 들어가지 않도록 방어합니다.
var filenameReplacer = strings.NewReplacer(
	"..", "--",
	"/", "-",
	"\\", "-",
	"*", "-",
	"?", "-",
)

// tempFilePattern 감시 목록 파일 경로로부터 원자적 쓰기에 사용할 임시 파일 패턴을 생성합니다.
//
// 파일의 기본 이름을 Kebab-Case로 정규화하여 "{이름}-*.tmp" 형태의 패턴을 만듭니다.
// (예: "products.json" → "products-*.tmp", "My Watch List.json" → "my-watch-list-*.tmp")
// 같은 디렉토리에 여러 감시 목록 파일이 공존하더라도 임시 파일의 출처를 식별할 수 있습니다.
func tempFilePattern(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	name := strcase.ToKebab(base)
	name = filenameReplacer.Replace(name)
	if name == "" {
		name = "watch-list"
	}

	return name + "-*.tmp"
}
