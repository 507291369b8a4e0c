package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"tasksync/internal/session"
)

// Variables are the named inputs of a single operation.
type Variables map[string]interface{}

// Client is the shared GraphQL transport. It reads the current token from
// the session store before every request and attaches it as a bearer
// header, alongside the admin-secret header used by the development trust
// boundary. Query results are cached in memory until invalidated.
type Client struct {
	endpoint    string
	adminSecret string
	store       session.Store
	httpClient  *http.Client

	mu    sync.Mutex
	cache map[string]json.RawMessage
}

// New builds the process-wide client for the given endpoint.
func New(endpoint, adminSecret string, store session.Store) *Client {
	return &Client{
		endpoint:    endpoint,
		adminSecret: adminSecret,
		store:       store,
		httpClient:  &http.Client{},
		cache:       make(map[string]json.RawMessage),
	}
}

type requestEnvelope struct {
	Query         string    `json:"query"`
	Variables     Variables `json:"variables,omitempty"`
	OperationName string    `json:"operationName"`
}

type responseEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// cacheKey canonicalizes operation+variables; json.Marshal sorts map keys.
func cacheKey(op Operation, vars Variables) string {
	raw, err := json.Marshal(vars)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", vars))
	}
	return op.Name + ":" + string(raw)
}

// Query runs a read operation, serving a cached result when one exists.
func (c *Client) Query(ctx context.Context, op Operation, vars Variables, out interface{}) error {
	key := cacheKey(op, vars)

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return decodeData(cached, out)
	}
	return c.Refetch(ctx, op, vars, out)
}

// Refetch runs a read operation against the server unconditionally and
// replaces the cached result. Callers use it after mutations to bring the
// view back in line with server state.
func (c *Client) Refetch(ctx context.Context, op Operation, vars Variables, out interface{}) error {
	data, err := c.do(ctx, op, vars)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cache[cacheKey(op, vars)] = data
	c.mu.Unlock()

	return decodeData(data, out)
}

// Mutate runs a mutating operation. Mutations are never cached.
func (c *Client) Mutate(ctx context.Context, op Operation, vars Variables, out interface{}) error {
	data, err := c.do(ctx, op, vars)
	if err != nil {
		return err
	}
	return decodeData(data, out)
}

// Invalidate drops every cached result for the operation.
func (c *Client) Invalidate(op Operation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.cache {
		if strings.HasPrefix(key, op.Name+":") {
			delete(c.cache, key)
		}
	}
}

func (c *Client) do(ctx context.Context, op Operation, vars Variables) (json.RawMessage, error) {
	body, err := json.Marshal(requestEnvelope{
		Query:         op.Doc,
		Variables:     vars,
		OperationName: op.Name,
	})
	if err != nil {
		return nil, networkError(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, networkError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	// token is read fresh from the store on every request
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", c.adminSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, networkError(fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return nil, graphqlError(messages)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, networkError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return envelope.Data, nil
}

func decodeData(data json.RawMessage, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return networkError(fmt.Errorf("decode data: %w", err))
	}
	return nil
}
