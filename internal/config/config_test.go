package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-form-service/internal/domain/model"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.ExchangeAPI.RefreshRate)
	assert.Equal(t, "USD", cfg.ExchangeAPI.Base)
	assert.Equal(t, []model.Currency{"USD", "EUR", "GBP"}, cfg.Exchange.CurrencyList())
	assert.Equal(t, 2, cfg.Exchange.AmountPrecision)
	assert.Equal(t, 4, cfg.Exchange.RatePrecision)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "log", cfg.Events.Driver)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("EXCHANGE_CURRENCIES", "usd, jpy")
	t.Setenv("EXCHANGE_API_REFRESH_RATE", "1m")
	t.Setenv("EXCHANGE_AMOUNT_PRECISION", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []model.Currency{"USD", "JPY"}, cfg.Exchange.CurrencyList())
	assert.Equal(t, time.Minute, cfg.ExchangeAPI.RefreshRate)
	assert.Equal(t, 3, cfg.Exchange.AmountPrecision)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			ExchangeAPI: ExchangeAPIConfig{RefreshRate: time.Second},
			Exchange:    ExchangeConfig{Currencies: []string{"USD", "EUR"}, AmountPrecision: 2, RatePrecision: 4},
			Store:       StoreConfig{Driver: "memory"},
			Events:      EventsConfig{Driver: "log"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"one currency", func(c *Config) { c.Exchange.Currencies = []string{"USD"} }, true},
		{"negative precision", func(c *Config) { c.Exchange.RatePrecision = -1 }, true},
		{"zero interval", func(c *Config) { c.ExchangeAPI.RefreshRate = 0 }, true},
		{"unknown store", func(c *Config) { c.Store.Driver = "etcd" }, true},
		{"unknown events", func(c *Config) { c.Events.Driver = "nats" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExchangeConfig_Balances(t *testing.T) {
	c := ExchangeConfig{InitialBalances: map[string]float64{"usd": 10, "EUR": 5}}
	assert.Equal(t, model.Balances{"USD": 10, "EUR": 5}, c.Balances())
}
