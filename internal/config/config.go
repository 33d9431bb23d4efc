package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"exchange-form-service/internal/domain/model"
)

type Config struct {
	Server      ServerConfig
	ExchangeAPI ExchangeAPIConfig
	Exchange    ExchangeConfig
	Store       StoreConfig
	Events      EventsConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
}

type ExchangeAPIConfig struct {
	BaseURL     string        `yaml:"base_url" env:"EXCHANGE_API_BASE_URL" env-default:"https://api.exchangerate.host"`
	APIKey      string        `yaml:"api_key" env:"EXCHANGE_API_KEY"`
	Base        string        `yaml:"base" env:"EXCHANGE_API_BASE" env-default:"USD"`
	Timeout     time.Duration `yaml:"timeout" env:"EXCHANGE_API_TIMEOUT" env-default:"10s"`
	RefreshRate time.Duration `yaml:"refresh_rate" env:"EXCHANGE_API_REFRESH_RATE" env-default:"10s"`
}

type ExchangeConfig struct {
	Currencies      []string           `yaml:"currencies" env:"EXCHANGE_CURRENCIES" env-default:"USD,EUR,GBP" env-separator:","`
	AmountPrecision int                `yaml:"amount_precision" env:"EXCHANGE_AMOUNT_PRECISION" env-default:"2"`
	RatePrecision   int                `yaml:"rate_precision" env:"EXCHANGE_RATE_PRECISION" env-default:"4"`
	InitialBalances map[string]float64 `yaml:"initial_balances" env:"EXCHANGE_INITIAL_BALANCES" env-default:"USD:1000,EUR:500,GBP:250" env-separator:","`
}

type StoreConfig struct {
	Driver        string `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisPrefix   string `yaml:"redis_prefix" env:"REDIS_PREFIX" env-default:"exchange:"`
}

type EventsConfig struct {
	Driver        string   `yaml:"driver" env:"EVENTS_DRIVER" env-default:"log"`
	KafkaBrokers  []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092" env-separator:","`
	RefreshTopic  string   `yaml:"refresh_topic" env:"KAFKA_REFRESH_TOPIC" env-default:"exchange.rates.refresh"`
	ExchangeTopic string   `yaml:"exchange_topic" env:"KAFKA_EXCHANGE_TOPIC" env-default:"exchange.orders"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// LoadConfig reads an optional .env file, then the YAML file named by
// CONFIG_PATH if set, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Exchange.Currencies) < 2 {
		return errors.New("at least two currencies are required")
	}
	if c.Exchange.AmountPrecision < 0 || c.Exchange.RatePrecision < 0 {
		return errors.New("precision must not be negative")
	}
	if c.ExchangeAPI.RefreshRate <= 0 {
		return errors.New("refresh rate must be positive")
	}
	switch c.Store.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Events.Driver {
	case "log", "kafka":
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	return nil
}

func (c ExchangeConfig) CurrencyList() []model.Currency {
	list := make([]model.Currency, 0, len(c.Currencies))
	for _, code := range c.Currencies {
		list = append(list, model.ParseCurrency(code))
	}
	return list
}

func (c ExchangeConfig) Balances() model.Balances {
	balances := make(model.Balances, len(c.InitialBalances))
	for code, amount := range c.InitialBalances {
		balances[model.ParseCurrency(code)] = amount
	}
	return balances
}
