package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Config describes how to reach the content store's query API.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // a date such as 2023-01-01
	UseCDN     bool   // query the cached API edge instead of the live API
	Token      string // optional bearer token for private datasets
	Timeout    time.Duration

	// BaseURL replaces the host derived from the project ID, mostly useful for tests and proxies.
	BaseURL string
}

// Client queries the content store over HTTP.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// maxResponse bounds how much of a response is read.
const maxResponse = 16 << 20

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Dataset == `` {
		return nil, errors.New(`content store dataset is required`)
	}
	if cfg.APIVersion == `` {
		cfg.APIVersion = `2023-01-01`
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, `/`)
	if base == `` {
		if cfg.ProjectID == `` {
			return nil, errors.New(`content store project id is required`)
		}
		host := `api`
		if cfg.UseCDN {
			host = `apicdn`
		}
		base = `https://` + url.PathEscape(cfg.ProjectID) + `.` + host + `.sanity.io`
	}
	return &Client{
		endpoint: base + `/v` + strings.TrimPrefix(cfg.APIVersion, `v`) + `/data/query/` + url.PathEscape(cfg.Dataset),
		token:    cfg.Token,
		http:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Fetch implements Fetcher by sending the query and its parameters as a GET request.
func (c *Client) Fetch(ctx context.Context, query string, params Params) (gjson.Result, error) {
	q := make(url.Values, len(params)+1)
	q.Set(`query`, query)
	for name, value := range params {
		js, err := json.Marshal(value)
		if err != nil {
			return gjson.Result{}, fmt.Errorf(`encode parameter %q: %w`, name, err)
		}
		q.Set(`$`+name, string(js))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+`?`+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set(`Accept`, `application/json`)
	if c.token != `` {
		req.Header.Set(`Authorization`, `Bearer `+c.token)
	}

	start := time.Now()
	rsp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf(`query content store: %w`, err)
	}
	defer func() { _ = rsp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(rsp.Body, maxResponse))
	if err != nil {
		return gjson.Result{}, fmt.Errorf(`read content store response: %w`, err)
	}
	zerolog.Ctx(ctx).Debug().
		Int(`status`, rsp.StatusCode).
		Int(`read`, len(body)).
		Int64(`took`, time.Since(start).Milliseconds()).
		Msg(`content store query`)

	if rsp.StatusCode != http.StatusOK {
		return gjson.Result{}, &Error{Status: rsp.StatusCode, Description: describeError(body)}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New(`content store returned invalid JSON`)
	}
	return gjson.GetBytes(body, `result`), nil
}

func describeError(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ``
	}
	for _, path := range []string{`error.description`, `error.message`, `message`, `error`} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != `` {
			return v.Str
		}
	}
	return ``
}
