// config - источник загрузки конфигурации клиента BrainBoost.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// После чтения файла поверх значений из YAML накладываются ENV-переменные.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы durable-хранилища токенов.
const (
	DurableFile  = "file"
	DurableRedis = "redis"
	DurableNone  = "none"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	API       APIConfig       `yaml:"api"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Storage   StorageConfig   `yaml:"storage"`
	Proxy     ProxyConfig     `yaml:"proxy"`
	Export    ExportConfig    `yaml:"export"`
	Poll      PollConfig      `yaml:"poll"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// APIConfig — адрес бэкенда и параметры исходящих запросов.
type APIConfig struct {
	BaseURL   string `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8000"`
	UserAgent string `yaml:"user_agent" env:"API_USER_AGENT" env-default:"brainboost-cli"`
	// LoginPath — клиентский маршрут страницы входа, куда уводит принудительный logout.
	LoginPath string `yaml:"login_path" env:"API_LOGIN_PATH" env-default:"/login"`
}

// EndpointsConfig — пути REST-ресурсов относительно BaseURL.
type EndpointsConfig struct {
	Login          string `yaml:"login"           env:"EP_LOGIN"           env-default:"/accounts/api/login/"`
	Refresh        string `yaml:"refresh"         env:"EP_REFRESH"         env-default:"/accounts/api/token/refresh/"`
	Profile        string `yaml:"profile"         env:"EP_PROFILE"         env-default:"/accounts/api/profile/"`
	GoogleLogin    string `yaml:"google_login"    env:"EP_GOOGLE_LOGIN"    env-default:"/accounts/api/google/"`
	Courses        string `yaml:"courses"         env:"EP_COURSES"         env-default:"/courses/"`
	MyCourses      string `yaml:"my_courses"      env:"EP_MY_COURSES"      env-default:"/courses/my/"`
	Lessons        string `yaml:"lessons"         env:"EP_LESSONS"         env-default:"/lessons/"`
	Tests          string `yaml:"tests"           env:"EP_TESTS"           env-default:"/tests/"`
	Chats          string `yaml:"chats"           env:"EP_CHATS"           env-default:"/chats/"`
	Notifications  string `yaml:"notifications"   env:"EP_NOTIFICATIONS"   env-default:"/notifications/"`
	Certificates   string `yaml:"certificates"    env:"EP_CERTIFICATES"    env-default:"/certificates/"`
	PayPalCreate   string `yaml:"paypal_create"   env:"EP_PAYPAL_CREATE"   env-default:"/payments/paypal/create/"`
	PayPalCapture  string `yaml:"paypal_capture"  env:"EP_PAYPAL_CAPTURE"  env-default:"/payments/paypal/capture/"`
	CoinbaseCreate string `yaml:"coinbase_create" env:"EP_COINBASE_CREATE" env-default:"/payments/coinbase/create/"`
}

// StorageConfig — где живут токены с "remember me".
// Session-scoped хранилище всегда в памяти процесса.
type StorageConfig struct {
	Durable     string `yaml:"durable"      env:"STORAGE_DURABLE"      env-default:"file"`
	FilePath    string `yaml:"file_path"    env:"STORAGE_FILE"`
	RedisURL    string `yaml:"redis_url"    env:"REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX" env-default:"brainboost:"`
}

// TokenFile возвращает путь к файлу токенов; по умолчанию — в каталоге
// пользовательской конфигурации ОС.
func (s StorageConfig) TokenFile() (string, error) {
	if s.FilePath != "" {
		return s.FilePath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}

	return filepath.Join(dir, "brainboost", "tokens.json"), nil
}

// ProxyConfig — локальный аутентифицированный шлюз (brainboost proxy).
type ProxyConfig struct {
	Host string `yaml:"host" env:"PROXY_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"PROXY_PORT" env-default:"50095"`
}

func (p ProxyConfig) Addr() string { return net.JoinHostPort(p.Host, p.Port) }

// ExportConfig — S3/MinIO-приёмник для выгрузки сертификатов.
type ExportConfig struct {
	Endpoint  string `yaml:"s3_endpoint"   env:"S3_ENDPOINT"`
	AccessKey string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"s3_bucket"     env:"S3_BUCKET"`
	Prefix    string `yaml:"s3_prefix"     env:"S3_PREFIX" env-default:"certificates/"`
}

// PollConfig — период опроса чатов.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" env:"POLL_INTERVAL" env-default:"5s"`
}

// TimeoutConfig — таймауты исходящих запросов.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"15s"`
	Refresh time.Duration `yaml:"refresh" env:"REFRESH_TIMEOUT" env-default:"10s"`
}

// Validate проверяет согласованность значений после загрузки.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}

	switch c.Storage.Durable {
	case DurableFile, DurableNone:
	case DurableRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for durable=%s", DurableRedis)
		}
	default:
		return fmt.Errorf("unknown storage.durable %q", c.Storage.Durable)
	}

	return nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	finish := func() (*Config, error) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}

		return &cfg, nil
	}

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		return finish()
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
