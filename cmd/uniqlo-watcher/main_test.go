package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/darkkaiser/uniqlo-watcher/internal/config"
	"github.com/darkkaiser/uniqlo-watcher/internal/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppMetadata 애플리케이션의 기본 메타데이터 설정이 올바른지 검증합니다.
func TestAppMetadata(t *testing.T) {
	t.Parallel()

	t.Run("AppName 검증", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "uniqlo-watcher", config.AppName)
		assert.NotContains(t, config.AppName, " ", "애플리케이션 이름에는 공백이 포함될 수 없습니다")
	})

	t.Run("ConfigFileName 검증", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "uniqlo-watcher.json", config.DefaultFilename)
	})

	t.Run("빌드 정보 기본값 검증", func(t *testing.T) {
		t.Parallel()
		// ldflags 없이 빌드된 테스트 환경에서의 기본값
		assert.NotEmpty(t, Version)
		assert.NotEmpty(t, BuildDate)
	})
}

// TestBanner 서버 시작 시 출력되는 배너의 형식과 내용이 올바른지 검증합니다.
func TestBanner(t *testing.T) {
	t.Parallel()

	t.Run("템플릿 형식 검증", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, banner, "%s", "배너 템플릿에는 버전 포맷팅을 위한 '%s'가 포함되어야 합니다")
		assert.Contains(t, banner, "DarkKaiser")
	})

	t.Run("출력 포맷팅 검증", func(t *testing.T) {
		t.Parallel()
		v := version.Get().Version
		output := fmt.Sprintf(banner, v)
		assert.Contains(t, output, v)
		assert.NotContains(t, output, "%s", "최종 출력된 배너에는 포맷 지정자가 남아있지 않아야 합니다")
	})
}

// TestLoadAppConfig 설정 파일 로드 로직을 검증합니다.
func TestLoadAppConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fileContent string
		wantErr     bool
		validate    func(*testing.T, *config.AppConfig)
	}{
		{
			name: "Success_ValidConfig",
			fileContent: `{
				"debug": true,
				"notifiers": {
					"default_notifier_id": "main-ntfy",
					"ntfys": [
						{ "id": "main-ntfy", "server": "https://ntfy.sh", "topic": "uniqlo-alerts" }
					]
				},
				"command": {
					"server": "https://ntfy.sh",
					"topic": "uniqlo-commands"
				}
			}`,
			wantErr: false,
			validate: func(t *testing.T, c *config.AppConfig) {
				assert.True(t, c.Debug)
				assert.Equal(t, "main-ntfy", c.Notifiers.DefaultNotifierID)
				// 명시하지 않은 항목은 기본값이 유지되어야 합니다.
				assert.Equal(t, 300, c.Monitor.RefreshTime)
				assert.Equal(t, "products.json", c.Monitor.WatchListFile)
			},
		},
		{
			name:        "Error_InvalidJSON",
			fileContent: `{"debug": true, "broken_json...`,
			wantErr:     true,
		},
		{
			name: "Error_NoNotifiers",
			fileContent: `{
				"command": { "server": "https://ntfy.sh", "topic": "uniqlo-commands" }
			}`,
			wantErr: true,
		},
		{
			name: "Error_CommandTopicSameAsNotifyTopic",
			fileContent: `{
				"notifiers": {
					"default_notifier_id": "main-ntfy",
					"ntfys": [
						{ "id": "main-ntfy", "server": "https://ntfy.sh", "topic": "uniqlo-alerts" }
					]
				},
				"command": { "server": "https://ntfy.sh", "topic": "uniqlo-alerts" }
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := createTempConfigFile(t, tt.fileContent)
			cfg, err := config.LoadWithFile(f)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

// TestLoadAppConfig_FileNotFound 설정 파일이 존재하지 않는 경우를 검증합니다.
func TestLoadAppConfig_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadWithFile(filepath.Join(t.TempDir(), "ghost_config.json"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// createTempConfigFile t.TempDir()을 사용하여 임시 설정 파일을 생성합니다.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), "test_config.json")
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644), "임시 파일 생성 실패")

	return filePath
}
