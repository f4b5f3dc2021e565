// internal/infrastructure/api/http.go
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout таймаут исходящих запросов к рыночным API
const DefaultTimeout = 15 * time.Second

const userAgent = "EthfiReportBot/1.0"

// StatusError - ответ API с кодом вне 2xx
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status: %d", e.URL, e.StatusCode)
}

// Client - общий GET-клиент для публичных JSON API без авторизации
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// NewClient создает клиент с ограниченным таймаутом
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		headers:    map[string]string{},
	}
}

// SetHeader добавляет заголовок ко всем запросам
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Get выполняет GET-запрос и возвращает тело ответа
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: c.baseURL + path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
