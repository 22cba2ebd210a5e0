// Package contahub is the client for the ContaHub report API. Calls are
// deliberately plain: the upstream rate limiter tolerates neither retries
// nor parallel requests, so pacing lives in the collector, not here.
package contahub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// Client calls the ContaHub login and report endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a ContaHub API client.
func NewClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Login exchanges stored credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/auth/login", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("contahub: login request failed", zap.Error(err))
		return "", &domain.ErrAuthentication{Service: "contahub", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("contahub: login non-2xx", zap.Int("status", resp.StatusCode))
		return "", &domain.ErrAuthentication{
			Service: "contahub",
			Err:     fmt.Errorf("login returned status %d", resp.StatusCode),
		}
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &domain.ErrAuthentication{Service: "contahub", Err: fmt.Errorf("decode login response: %w", err)}
	}
	if result.Token == "" {
		return "", &domain.ErrAuthentication{Service: "contahub", Err: fmt.Errorf("login returned no token")}
	}

	c.logger.Debug("contahub: login OK")
	return result.Token, nil
}

// FetchReport pulls one report type for a business date. The bearer token
// is passed explicitly so concurrent runs for different tenants never share
// authentication state.
func (c *Client) FetchReport(ctx context.Context, token string, dataType domain.DataType, dataDate string) (json.RawMessage, error) {
	if token == "" {
		return nil, &domain.ErrAuthentication{Service: "contahub", Err: fmt.Errorf("no bearer token available")}
	}

	url := fmt.Sprintf("%s/relatorio/%s?data=%s", c.baseURL, dataType, dataDate)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("contahub: report request failed",
			zap.String("data_type", string(dataType)),
			zap.String("data_date", dataDate),
			zap.Error(err),
		)
		return nil, &domain.ErrExternalService{Service: "contahub", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "contahub", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("contahub: report non-2xx",
			zap.String("data_type", string(dataType)),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &domain.ErrExternalService{
			Service: "contahub",
			Err:     fmt.Errorf("report %s returned status %d: %s", dataType, resp.StatusCode, resp.Status),
		}
	}

	c.logger.Debug("contahub: report OK",
		zap.String("data_type", string(dataType)),
		zap.String("data_date", dataDate),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}
