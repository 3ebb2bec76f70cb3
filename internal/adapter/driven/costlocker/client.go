package costlocker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/logger"
)

const (
	apiPath               = "/api-public/v2"
	defaultRequestTimeout = 60 * time.Second
)

// HTTPClient talks to the Costlocker public API on behalf of one tenant.
type HTTPClient struct {
	c     *http.Client
	host  string
	token string
}

// NewHTTPClient creates a client for host authenticated with token. A nil
// http client gets a default one with a request timeout.
func NewHTTPClient(c *http.Client, host, token string) *HTTPClient {
	if c == nil {
		c = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &HTTPClient{c: c, host: strings.TrimRight(host, "/"), token: token}
}

// NewHTTPClients creates one client per tenant token.
func NewHTTPClients(c *http.Client, host string, tokens []string) []*HTTPClient {
	clients := make([]*HTTPClient, 0, len(tokens))
	for _, token := range tokens {
		clients = append(clients, NewHTTPClient(c, host, token))
	}
	return clients
}

// Request sends a bulk query and returns rows per resource.
func (hc *HTTPClient) Request(ctx context.Context, query entity.Query) (entity.Response, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode costlocker query: %w", err)
	}

	var payload struct {
		Data map[string]entity.Rows `json:"data"`
	}
	if err := hc.do(ctx, http.MethodPost, hc.host+apiPath+"/", bytes.NewReader(body), &payload); err != nil {
		return nil, err
	}

	response := make(entity.Response, len(query))
	for resource := range query {
		response[resource] = payload.Data[resource]
	}
	return response, nil
}

// RestAPI calls a REST endpoint such as "/me".
func (hc *HTTPClient) RestAPI(ctx context.Context, endpoint string) (map[string]any, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	var payload map[string]any
	if err := hc.do(ctx, http.MethodGet, hc.host+apiPath+endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (hc *HTTPClient) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Static "+hc.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.c.Do(req)
	if err != nil {
		return fmt.Errorf("costlocker %s %s failed: %w", method, url, err)
	}
	defer resp.Body.Close()
	logger.Debug("costlocker.request", "method", method, "url", url, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("costlocker %s %s returned %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode costlocker response: %w", err)
	}
	return nil
}
