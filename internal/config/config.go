package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/uniqlo-watcher/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "uniqlo-watcher"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug     bool           `json:"debug"`
	Monitor   MonitorConfig  `json:"monitor"`
	Fetch     FetchConfig    `json:"fetch"`
	Notifiers NotifierConfig `json:"notifiers"`
	Command   CommandConfig  `json:"command"`
	WatchAPI  WatchAPIConfig `json:"watch_api"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := c.Monitor.validate(); err != nil {
		return err
	}

	if err := c.Fetch.validate(); err != nil {
		return err
	}

	if _, err := c.Notifiers.validate(); err != nil {
		return err
	}

	if err := c.Command.validate(); err != nil {
		return err
	}

	if err := c.WatchAPI.validate(); err != nil {
		return err
	}

	// 인바운드 명령 토픽과 아웃바운드 알림 토픽이 동일하면, 발송한 알림이 명령으로
	// 되돌아와 무한 루프가 발생할 수 있으므로 기동 자체를 차단합니다.
	for _, n := range c.Notifiers.Ntfys {
		if n.Server == c.Command.Server && n.Topic == c.Command.Topic {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("명령 수신 토픽('%s')은 알림 발송 토픽과 달라야 합니다", c.Command.Topic))
		}
	}

	return nil
}

// MonitorConfig 상품 감시 주기 및 감시 목록 저장 위치를 정의하는 설정 구조체
type MonitorConfig struct {
	// RefreshTime 감시 사이클 사이의 대기 시간 (초 단위)
	RefreshTime int `json:"refresh_time" validate:"min=1"`

	// WatchListFile 감시 목록(상품 URL → 별칭)이 저장되는 JSON 파일 경로
	WatchListFile string `json:"watch_list_file" validate:"required"`

	// MaxConcurrentFetches 한 사이클 내에서 동시에 수행할 수 있는 상품 조회의 최대 개수
	MaxConcurrentFetches int `json:"max_concurrent_fetches" validate:"min=1"`

	// NotifyOnStartup 서비스 기동 시 감시 중인 모든 상품에 대해 등록 알림을 발송할지 여부입니다.
	// 재시작이 잦은 환경에서는 false로 설정하여 중복 알림을 방지할 수 있습니다.
	NotifyOnStartup bool `json:"notify_on_startup"`
}

func (c *MonitorConfig) validate() error {
	if err := checkStruct(validate, c, "Monitor"); err != nil {
		return err
	}

	c.WatchListFile = strings.TrimSpace(c.WatchListFile)
	if !strings.HasSuffix(strings.ToLower(c.WatchListFile), ".json") {
		return apperrors.New(apperrors.InvalidInput, "감시 목록 파일(watch_list_file)에는 .json 확장자를 가진 파일 경로만 지정할 수 있습니다")
	}

	return nil
}

// RefreshInterval 감시 사이클 주기를 time.Duration으로 반환합니다.
func (c *MonitorConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshTime) * time.Second
}

// FetchConfig 상품 정보 조회 시의 재시도 횟수와 대기 시간, 요청 제한을 정의하는 설정 구조체
type FetchConfig struct {
	MaxRetries    int    `json:"max_retries" validate:"min=0"`
	RetryDelay    string `json:"retry_delay"`
	Timeout       string `json:"timeout"`
	RatePerSecond int    `json:"rate_per_second" validate:"min=1"`
}

func (c *FetchConfig) validate() error {
	if err := checkStruct(validate, c, "Fetch"); err != nil {
		return err
	}

	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("재시도 대기 시간(retry_delay) 설정이 올바르지 않습니다: '%s' (예: 5s, 500ms)", c.RetryDelay))
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("요청 제한 시간(timeout) 설정이 올바르지 않습니다: '%s' (예: 10s)", c.Timeout))
	}

	return nil
}

// RetryDelayDuration 재시도 대기 시간을 time.Duration으로 반환합니다.
// validate()를 통과한 이후에만 호출해야 합니다.
func (c *FetchConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// TimeoutDuration 요청 제한 시간을 time.Duration으로 반환합니다.
func (c *FetchConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// NotifierConfig ntfy, 텔레그램 등 다양한 알림 채널을 정의하는 설정 구조체
type NotifierConfig struct {
	DefaultNotifierID string           `json:"default_notifier_id"`
	Ntfys             []NtfyConfig     `json:"ntfys"`
	Telegrams         []TelegramConfig `json:"telegrams"`
}

func (c *NotifierConfig) validate() ([]string, error) {
	var notifierIDs []string

	for _, n := range c.Ntfys {
		if err := checkStruct(validate, n, fmt.Sprintf("Ntfy Notifier['%s']", n.ID)); err != nil {
			return nil, err
		}
		notifierIDs = append(notifierIDs, n.ID)
	}

	for _, t := range c.Telegrams {
		if err := checkStruct(validate, t, fmt.Sprintf("Telegram Notifier['%s']", t.ID)); err != nil {
			return nil, err
		}
		notifierIDs = append(notifierIDs, t.ID)
	}

	if len(notifierIDs) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "알림 채널(notifiers)이 하나도 정의되지 않았습니다")
	}

	// Notifier 중복 ID 검사
	if err := checkUniqueStrings(notifierIDs, "Notifier"); err != nil {
		return nil, err
	}

	// 기본 Notifier ID 검사
	if !slices.Contains(notifierIDs, c.DefaultNotifierID) {
		return nil, apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')가 정의된 Notifier 목록에 존재하지 않습니다", c.DefaultNotifierID))
	}

	return notifierIDs, nil
}

// NtfyConfig ntfy 서버 주소와 발송 토픽 정보를 담는 설정 구조체
type NtfyConfig struct {
	ID     string `json:"id" validate:"required"`
	Server string `json:"server" validate:"required,url"`
	Topic  string `json:"topic" validate:"required"`
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	ID       string `json:"id" validate:"required"`
	BotToken string `json:"bot_token" validate:"required,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required"`
}

// CommandConfig 감시 목록 변경 명령을 수신할 ntfy 구독 토픽을 정의하는 설정 구조체
type CommandConfig struct {
	Server string `json:"server" validate:"required,url"`
	Topic  string `json:"topic" validate:"required"`
}

func (c *CommandConfig) validate() error {
	return checkStruct(validate, c, "Command")
}

// WatchAPIConfig 감시 목록 조회/변경용 REST API 서버 설정 구조체
type WatchAPIConfig struct {
	Enabled    bool `json:"enabled"`
	ListenPort int  `json:"listen_port" validate:"min=1,max=65535"`
}

func (c *WatchAPIConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	return checkStruct(validate, c, "WatchAPI")
}

// defaultAppConfig 설정 파일이나 환경 변수로 덮어쓰기 전의 기본값입니다.
func defaultAppConfig() AppConfig {
	return AppConfig{
		Monitor: MonitorConfig{
			RefreshTime:          300,
			WatchListFile:        "products.json",
			MaxConcurrentFetches: 4,
			NotifyOnStartup:      true,
		},
		Fetch: FetchConfig{
			MaxRetries:    3,
			RetryDelay:    "5s",
			Timeout:       "10s",
			RatePerSecond: 2,
		},
		Command: CommandConfig{
			Server: "https://ntfy.sh",
		},
		WatchAPI: WatchAPIConfig{
			Enabled:    false,
			ListenPort: 8180,
		},
	}
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
//
// 로드 순서 (뒤로 갈수록 우선순위가 높습니다):
//  1. 구조체 기본값
//  2. JSON 설정 파일
//  3. 환경 변수 (접두사 UNIQLO_, 이중 언더스코어(__)는 계층 구분자)
//     예: UNIQLO_MONITOR__REFRESH_TIME=60 → monitor.refresh_time
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	if err := k.Load(structs.Provider(defaultAppConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	if err := k.Load(env.Provider("UNIQLO_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "UNIQLO_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
