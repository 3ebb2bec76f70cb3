package costlocker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
)

// CachingClient memoizes identical queries for the lifetime of one run.
// There is no eviction, a new instance is built for every run.
type CachingClient struct {
	next repository.CostlockerClient

	mu        sync.Mutex
	responses map[string]entity.Response
	rest      map[string]map[string]any
	hits      int
	misses    int
}

// NewCachingClient wraps next.
func NewCachingClient(next repository.CostlockerClient) *CachingClient {
	return &CachingClient{
		next:      next,
		responses: make(map[string]entity.Response),
		rest:      make(map[string]map[string]any),
	}
}

// Request returns the cached response of an identical query or asks next.
func (c *CachingClient) Request(ctx context.Context, query entity.Query) (entity.Response, error) {
	key, err := queryKey(query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.responses[key]; ok {
		c.hits++
		return cached, nil
	}
	c.misses++
	response, err := c.next.Request(ctx, query)
	if err != nil {
		return nil, err
	}
	c.responses[key] = response
	return response, nil
}

// RestAPI memoizes REST calls by endpoint.
func (c *CachingClient) RestAPI(ctx context.Context, endpoint string) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.rest[endpoint]; ok {
		c.hits++
		return cached, nil
	}
	c.misses++
	payload, err := c.next.RestAPI(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	c.rest[endpoint] = payload
	return payload, nil
}

// Stats returns the number of cache hits and misses.
func (c *CachingClient) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// queryKey hashes the canonical JSON encoding of a query. encoding/json sorts
// map keys, so equal queries get equal keys.
func queryKey(query entity.Query) (string, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to encode costlocker query: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
