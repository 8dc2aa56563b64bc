package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AurifyAE/Honor-TV-View/internal/httputil"
	"github.com/AurifyAE/Honor-TV-View/internal/models"
)

// ErrLimitExceeded is returned when the admin API refuses another screen
// for the account.
var ErrLimitExceeded = errors.New("screen limit exceeded")

// AdminClient talks to the admin REST API that owns the session's
// commodity list, spreads and quote-server address.
type AdminClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewAdminClient(baseURL string) *AdminClient {
	return &AdminClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    8 * time.Second,
		},
	}
}

type spotRatesResponse struct {
	Info struct {
		Commodities []models.CommodityLineItem `json:"commodities"`
		models.Spreads
	} `json:"info"`
}

// FetchSpotRates loads the commodity rows and spreads configured for adminID.
func (c *AdminClient) FetchSpotRates(ctx context.Context, adminID string) (*models.SpotRateConfig, error) {
	if adminID == "" {
		return nil, errors.New("admin id is required")
	}

	var body spotRatesResponse
	endpoint := c.baseURL + "/get-spotrates/" + url.PathEscape(adminID)
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("fetch spot rates: %w", err)
	}

	return &models.SpotRateConfig{
		AdminID:     adminID,
		Commodities: body.Info.Commodities,
		Spreads:     body.Info.Spreads,
	}, nil
}

// Load satisfies spotrate.Source.
func (c *AdminClient) Load(ctx context.Context, adminID string) (*models.SpotRateConfig, error) {
	return c.FetchSpotRates(ctx, adminID)
}

// FetchServerURL returns the quote server address the screen should connect to.
func (c *AdminClient) FetchServerURL(ctx context.Context) (string, error) {
	var body struct {
		Info struct {
			ServerURL string `json:"serverURL"`
		} `json:"info"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/get-server", &body); err != nil {
		return "", fmt.Errorf("fetch server url: %w", err)
	}
	if body.Info.ServerURL == "" {
		return "", errors.New("fetch server url: empty serverURL")
	}
	return body.Info.ServerURL, nil
}

// CheckScreenAccess returns ErrLimitExceeded when the account has no
// screen slots left. Any other failure is returned as-is.
func (c *AdminClient) CheckScreenAccess(ctx context.Context, adminID string) error {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tv-screen", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("admin-id", adminID)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("check screen access: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return ErrLimitExceeded
	case resp.StatusCode >= 300:
		return fmt.Errorf("check screen access: status %d", resp.StatusCode)
	}
	return nil
}

func (c *AdminClient) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
