package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AurifyAE/Honor-TV-View/internal/httputil"
)

// CurrencyClient reads a reference exchange rate from a public rates API
// returning {"rates": {"QAR": 3.64, ...}}.
type CurrencyClient struct {
	url        string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewCurrencyClient(url string) *CurrencyClient {
	return &CurrencyClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   1 * time.Second,
			MaxDelay:    4 * time.Second,
		},
	}
}

func (c *CurrencyClient) FetchRate(ctx context.Context, code string) (float64, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	})
	if err != nil {
		return 0, fmt.Errorf("currency fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("currency api returned status %d", resp.StatusCode)
	}

	var data struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	code = strings.ToUpper(code)
	rate, ok := data.Rates[code]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no valid %s rate in response", code)
	}
	return rate, nil
}
