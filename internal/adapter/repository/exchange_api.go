package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/pkg/logger"
)

var ErrAPIFailure = errors.New("exchange API failure")

// ExchangeAPI fetches live quotes from an exchangerate.host compatible API.
type ExchangeAPI struct {
	baseURL    string
	apiKey     string
	base       model.Currency
	httpClient *http.Client
	log        *logger.Logger
}

type exchangerateAPIResponse struct {
	Success   bool               `json:"success"`
	Terms     string             `json:"terms,omitempty"`
	Privacy   string             `json:"privacy,omitempty"`
	Timestamp int64              `json:"timestamp"`
	Source    string             `json:"source"`
	Quotes    map[string]float64 `json:"quotes"`
	Error     *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

func NewExchangeAPI(baseURL, apiKey string, base model.Currency, timeout time.Duration, log *logger.Logger) *ExchangeAPI {
	return &ExchangeAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		base:    base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// FetchRates returns every quote of the configured base currency as a rate
// table. Quote keys are the source code followed by the target code.
func (e *ExchangeAPI) FetchRates(ctx context.Context) (*model.RateTable, error) {
	apiResp, err := e.fetchLive(ctx)
	if err != nil {
		return nil, err
	}

	source := model.ParseCurrency(apiResp.Source)
	if source == "" {
		source = e.base
	}

	table := &model.RateTable{
		Base:  source,
		Rates: make(map[model.Currency]float64, len(apiResp.Quotes)),
	}
	for key, rate := range apiResp.Quotes {
		code, ok := strings.CutPrefix(key, source.String())
		if !ok || code == "" {
			e.log.Debug("Skipping unexpected quote", "key", key)
			continue
		}
		if model.Currency(code) == source {
			continue
		}
		table.Rates[model.Currency(code)] = rate
	}

	e.log.Debug("Fetched live quotes", "base", table.Base, "count", len(table.Rates))
	return table, nil
}

func (e *ExchangeAPI) fetchLive(ctx context.Context) (*exchangerateAPIResponse, error) {
	query := url.Values{}
	query.Set("source", e.base.String())
	if e.apiKey != "" {
		query.Set("access_key", e.apiKey)
	}
	endpoint := fmt.Sprintf("%s/live?%s", e.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", ErrAPIFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned non-OK status: %d", ErrAPIFailure, resp.StatusCode)
	}

	var apiResp exchangerateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrAPIFailure, err)
	}

	if !apiResp.Success {
		if apiResp.Error != nil && apiResp.Error.Info != "" {
			return nil, fmt.Errorf("%w: %s", ErrAPIFailure, apiResp.Error.Info)
		}
		return nil, fmt.Errorf("%w: API reported failure", ErrAPIFailure)
	}

	return &apiResp, nil
}
