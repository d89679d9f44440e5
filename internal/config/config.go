package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type TicketConfig struct {
	Env          string `yaml:"env" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	TicketDB     `yaml:"ticket_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka-service"`
	Redis        `yaml:"redis"`
	Razorpay     `yaml:"razorpay"`
	Auth         `yaml:"auth"`
	RateLimit    `yaml:"rate_limit"`
	Background   `yaml:"background"`
}

type HTTPServer struct {
	Host           string        `yaml:"host" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env-default:"15s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"30s"`
}

type TicketDB struct {
	Dsn            string `yaml:"dsn" env:"TICKET_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"ticket-events"`
}

func (k KafkaService) Enabled() bool {
	return k.Host != ""
}

func (k KafkaService) Brokers() []string {
	return []string{fmt.Sprintf("%s:%s", k.Host, k.Port)}
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type Razorpay struct {
	BaseURL       string        `yaml:"base_url" env-default:"https://api.razorpay.com"`
	KeyID         string        `yaml:"key_id" env:"RAZORPAY_KEY_ID"`
	KeySecret     string        `yaml:"key_secret" env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string        `yaml:"webhook_secret" env:"RAZORPAY_WEBHOOK_SECRET"`
	Currency      string        `yaml:"currency" env-default:"INR"`
	Timeout       time.Duration `yaml:"timeout" env-default:"15s"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
}

type RateLimit struct {
	Requests int           `yaml:"requests" env-default:"10"`
	Window   time.Duration `yaml:"window" env-default:"1m"`
}

type Background struct {
	AuditInterval time.Duration `yaml:"audit_interval" env-default:"1m"`
	AuditGrace    time.Duration `yaml:"audit_grace" env-default:"5m"`
}

// Load reads the YAML file at path and applies env overrides.
func Load(path string) (*TicketConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg TicketConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if cfg.Razorpay.KeyID == "" || cfg.Razorpay.KeySecret == "" || cfg.Razorpay.WebhookSecret == "" {
		return nil, fmt.Errorf("razorpay credentials are not configured")
	}

	return &cfg, nil
}

func MustLoad() *TicketConfig {
	configPath := os.Getenv("TICKET_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("TICKET_CONFIG_PATH was not found\n")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("%v\n", err)
	}

	return cfg
}
