// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Identity                `yaml:"identity"`
	Generator               `yaml:"generator"`
	Session                 `yaml:"session"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis,
// в котором хранятся снимки пользовательских сессий
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Identity структура для подключения к внешнему identity-провайдеру
type Identity struct {
	BaseURL     string        `yaml:"base_url"`
	AnonKey     string        `yaml:"anon_key" env:"IDENTITY_ANON_KEY"`
	JWTSecret   string        `yaml:"jwt_secret" env:"IDENTITY_JWT_SECRET"`
	RedirectURL string        `yaml:"redirect_url"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
}

// Generator структура для подключения к webhook генерации документов
type Generator struct {
	WebhookURL string        `yaml:"webhook_url" env:"GENERATOR_WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout" env-default:"60s"`
}

// Session структура с настройками сессионного контроллера
type Session struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"30s"`
	SnapshotTTL     time.Duration `yaml:"snapshot_ttl" env-default:"720h"`
}

// RabbitMQ структура для подключения к брокеру сообщений
type RabbitMQ struct {
	AmqpURI string `yaml:"amqp_uri" env:"AMQP_URI"`
}

// SMTP структура для отправки почтовых уведомлений
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
