package config

import (
	"flag"
	"net/url"

	"github.com/fsdevblog/linkresolver/internal/db"
	"github.com/sirupsen/logrus"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	DefaultServerAddress = "localhost:8080"
	DefaultDBType        = db.StorageTypeInMemory
)

type Config struct {
	// Адрес на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// Базовый адрес результирующего сокращенного URL
	BaseURL *url.URL `env:"BASE_URL"`
	// Тип хранилища: inMemory, sqlite, postgres, mysql, redis
	DBType db.StorageType `env:"DB_TYPE"`
	// Строка подключения к хранилищу. Для sqlite путь к файлу.
	DatabaseDSN string `env:"DATABASE_DSN"`
	// Уровень логирования, перекрывает уровень по умолчанию
	LogLevel string `env:"LOG_LEVEL"`
	Logger   *logrus.Logger
}

// LoadConfig собирает конфигурацию из флагов и переменных окружения. Переменные окружения приоритетнее.
//
// Параметры:
//   - args: аргументы командной строки без имени программы
//
// Возвращает:
//   - *Config: конфигурация с инициализированным логгером
//   - error: ошибка разбора окружения, флагов или уровня логирования
func LoadConfig(args []string) (*Config, error) {
	var flagsConfig, envConfig Config

	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	if err := loadFlags(&flagsConfig, args); err != nil {
		return nil, errors.Wrap(err, "parse flags error")
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	logger, err := initLogger(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	conf.Logger = logger
	return conf, nil
}

// loadFlags парсит флаги командной строки.
func loadFlags(flagsConfig *Config, args []string) error {
	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)

	fs.StringVar(&flagsConfig.ServerAddress, "a", DefaultServerAddress, "Адрес сервера")

	bDesc := "Базовый адрес результирующего сокращенного URL (по умолчанию Scheme://Host запущенного сервера)"
	fs.Func("b", bDesc, func(rawURL string) error {
		parsedURL, err := parseBaseURL(rawURL)
		if err != nil {
			return err
		}
		flagsConfig.BaseURL = parsedURL
		return nil
	})

	var dbType string
	fs.StringVar(&dbType, "t", string(DefaultDBType), "Тип хранилища: inMemory, sqlite, postgres, mysql, redis")
	fs.StringVar(&flagsConfig.DatabaseDSN, "d", "", "Строка подключения к хранилищу")
	fs.StringVar(&flagsConfig.LogLevel, "l", "", "Уровень логирования")

	if err := fs.Parse(args); err != nil {
		return err //nolint:wrapcheck
	}
	flagsConfig.DBType = db.StorageType(dbType)
	return nil
}

// parseBaseURL отсекает Path и Query, если они заданы в базовом урле.
func parseBaseURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse base url")
	}
	return &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}, nil
}

// mergeConfig сливает структуры для env и флагов.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	baseURL := defaultIfBlank[*url.URL](envConfig.BaseURL, flagsConfig.BaseURL)
	if baseURL != nil {
		baseURL = &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host}
	}
	return &Config{
		ServerAddress: defaultIfBlank[string](envConfig.ServerAddress, flagsConfig.ServerAddress),
		BaseURL:       baseURL,
		DBType:        defaultIfBlank[db.StorageType](envConfig.DBType, flagsConfig.DBType),
		DatabaseDSN:   defaultIfBlank[string](envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		LogLevel:      defaultIfBlank[string](envConfig.LogLevel, flagsConfig.LogLevel),
	}
}

func defaultIfBlank[T any](value T, defaultValue T) T {
	if v, ok := any(value).(string); ok && v == "" {
		return defaultValue
	}
	if v, ok := any(value).(db.StorageType); ok && v == "" {
		return defaultValue
	}
	if v, ok := any(value).(*url.URL); ok && v == nil {
		return defaultValue
	}
	return value
}
