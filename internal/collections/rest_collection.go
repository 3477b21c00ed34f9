package collections

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/httpclients"
)

const maxErrorBodyBytes = 512

// RESTOptions configures the client of a KV store REST endpoint such as
// https://splunk:8089/servicesNS/nobody/search/storage/collections/data.
type RESTOptions struct {
	BaseURL       string
	AuthToken     string
	RetryAttempts int
	RetryBackoff  time.Duration
}

type restProvider struct {
	client *http.Client
	opts   RESTOptions
}

type restCollection struct {
	client *http.Client
	opts   RESTOptions
	name   string
}

// NewRESTProvider serves collections from a remote KV store. Unknown collection names are only
// detected when the store answers 404.
func NewRESTProvider(client *http.Client, opts RESTOptions) Provider {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &restProvider{client: client, opts: opts}
}

func (p *restProvider) Collection(name string) (Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrCollectionNotFound)
	}
	return &restCollection{client: p.client, opts: p.opts, name: name}, nil
}

func (c *restCollection) Name() string {
	return c.name
}

// Query is retried with exponential backoff on transport errors and 5xx answers.
func (c *restCollection) Query(ctx context.Context, filter Filter) ([]*models.TransactionRecord, error) {
	endpoint, err := c.endpoint("", filter)
	if err != nil {
		return nil, err
	}

	var records []*models.TransactionRecord
	err = httpclients.Retry(ctx, c.opts.RetryAttempts, c.opts.RetryBackoff, 8*c.opts.RetryBackoff, func() error {
		body, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		records = nil
		if err := json.Unmarshal(body, &records); err != nil {
			return httpclients.Permanent(fmt.Errorf("%w: collection %s: %w", ErrInvalidResponse, c.name, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *restCollection) BatchSave(ctx context.Context, records []*models.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}
	endpoint, err := c.endpoint("batch_save", Filter{})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPost, endpoint, payload)
	return err
}

func (c *restCollection) Delete(ctx context.Context, filter Filter) error {
	endpoint, err := c.endpoint("", filter)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

func (c *restCollection) endpoint(action string, filter Filter) (string, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", c.opts.BaseURL, err)
	}
	u = u.JoinPath(c.name)
	if action != "" {
		u = u.JoinPath(action)
	}
	if !filter.IsEmpty() {
		q := u.Query()
		q.Set(queryParam, filter.String())
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// do sends one request. 4xx answers are wrapped as permanent so that Retry gives up on them.
func (c *restCollection) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, httpclients.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.AuthToken != "" {
		req.Header.Set("Authorization", "Splunk "+c.opts.AuthToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, c.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, c.name, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, httpclients.Permanent(fmt.Errorf("%w: %s", ErrCollectionNotFound, c.name))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%s %s: status %d: %s", method, c.name, resp.StatusCode, truncate(data))
	case resp.StatusCode >= 300:
		return nil, httpclients.Permanent(fmt.Errorf("%s %s: status %d: %s", method, c.name, resp.StatusCode, truncate(data)))
	}
	return data, nil
}

func truncate(data []byte) string {
	if len(data) > maxErrorBodyBytes {
		return string(data[:maxErrorBodyBytes]) + "..."
	}
	return string(data)
}
