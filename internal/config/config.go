package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// MustLoad читает конфигурацию и завершает процесс при ошибке.
// Путь к файлу берётся из флага --config или переменной CONFIG_PATH.
// Если путь не задан, конфигурация собирается только из окружения.
func MustLoad() *Config {
	cfg, err := Load(fetchConfigPath())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load читает конфигурацию из YAML-файла (если path не пустой) и переменных окружения.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
		cfg.normalize()
		return &cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	cfg.configPath = path
	cfg.normalize()

	return &cfg, nil
}

// Path возвращает путь к файлу, из которого прочитана конфигурация.
func (c *Config) Path() string {
	return c.configPath
}

// SourceTimeout возвращает таймаут загрузки страницы для платформы, либо общий таймаут загрузчика.
func (c *Config) SourceTimeout(source string) time.Duration {
	var t time.Duration
	switch source {
	case "webtickets":
		t = c.SourcesConfig.Webtickets.Timeout
	case "computicket":
		t = c.SourcesConfig.Computicket.Timeout
	case "ticketpro":
		t = c.SourcesConfig.Ticketpro.Timeout
	case "quicket":
		t = c.SourcesConfig.Quicket.Timeout
	case "howler":
		t = c.SourcesConfig.Howler.Timeout
	}
	if t <= 0 {
		return c.FetcherConfig.Timeout
	}
	return t
}

// normalize приводит значения к допустимым границам.
func (c *Config) normalize() {
	if c.FetcherConfig.Timeout <= 0 {
		c.FetcherConfig.Timeout = 10 * time.Second
	}
	// Загрузка страницы ограничена диапазоном 10–30 секунд.
	if c.FetcherConfig.Timeout > 30*time.Second {
		c.FetcherConfig.Timeout = 30 * time.Second
	}
	if c.SourcesConfig.Webtickets.Timeout == 0 {
		c.SourcesConfig.Webtickets.Timeout = 30 * time.Second
	}
	if c.SourcesConfig.Ticketpro.Timeout == 0 {
		c.SourcesConfig.Ticketpro.Timeout = 30 * time.Second
	}
	if c.PipelineConfig.WorkersCount <= 0 {
		c.PipelineConfig.WorkersCount = 1
	}
	if c.PipelineConfig.JobBufferSize <= 0 {
		c.PipelineConfig.JobBufferSize = 1
	}
	if c.AIConfig.RetryCount <= 0 {
		c.AIConfig.RetryCount = 1
	}
}

func fetchConfigPath() string {
	var res string

	if flag.Lookup("config") == nil {
		flag.StringVar(&res, "config", "", "path to config file")
	}
	if !flag.Parsed() {
		flag.Parse()
	}

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
