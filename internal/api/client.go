package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/gpudash/internal/config"
	"github.com/rileyhilliard/gpudash/internal/errors"
	"github.com/rileyhilliard/gpudash/internal/logger"
)

// RequestIDHeader carries a per-request uuid so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// Default messages used when the backend flags a failure without saying why.
const (
	DefaultStatusError  = "Unable to load GPU status"
	DefaultProcessError = "Unable to load GPU processes"
)

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL         string
	Endpoints       config.EndpointsConfig
	Timeout         time.Duration
	TransferTimeout time.Duration
	Logger          logger.Logger

	// HTTPClient overrides the client used for JSON calls. Tests use it to
	// point at an httptest server.
	HTTPClient *http.Client
}

// Client talks to the GPU backend. It is safe for concurrent use.
type Client struct {
	baseURL   string
	endpoints config.EndpointsConfig
	http      *http.Client
	transfer  *http.Client
	log       logger.Logger
}

// NewClient builds a Client from loaded configuration.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	return New(Options{
		BaseURL:         cfg.Server,
		Endpoints:       cfg.Endpoints,
		Timeout:         cfg.Timeout,
		TransferTimeout: cfg.TransferTimeout,
		Logger:          log,
	})
}

// New builds a Client from explicit options. Zero values fall back to defaults.
func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Endpoints == (config.EndpointsConfig{}) {
		opts.Endpoints = config.DefaultEndpoints()
	}
	if opts.Timeout == 0 {
		opts.Timeout = config.DefaultConfig().Timeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	// Transfers share the transport but get their own overall deadline.
	transferClient := &http.Client{
		Transport: httpClient.Transport,
		Timeout:   opts.TransferTimeout,
	}

	return &Client{
		baseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
		endpoints: opts.Endpoints,
		http:      httpClient,
		transfer:  transferClient,
		log:       opts.Logger,
	}
}

// BaseURL returns the backend address this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListHosts fetches the host aliases the backend knows about.
func (c *Client) ListHosts(ctx context.Context) (*HostList, error) {
	var out HostList
	status, body, err := c.getJSON(ctx, c.endpoints.Servers, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, c.failure(status, body, "Host list request failed")
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, malformed(err, "host list")
	}
	return &out, nil
}

// Status fetches the GPU summary for one host.
//
// A network failure or unparsable body is an ErrTransport error. A parsed
// body with ok=false is an ErrApplication error carrying the server message.
func (c *Client) Status(ctx context.Context, host string) (*StatusReport, error) {
	if host == "" {
		return nil, errors.Validation("Select a host first")
	}

	q := url.Values{"host": {host}}
	status, body, err := c.getJSON(ctx, c.endpoints.Status, q)
	if err != nil {
		return nil, err
	}

	var out StatusReport
	if err := c.decodeEnvelope(status, body, &out, DefaultStatusError); err != nil {
		return nil, err
	}
	if out.Host == "" {
		out.Host = host
	}
	return &out, nil
}

// Processes fetches the compute processes on one GPU of a host.
func (c *Client) Processes(ctx context.Context, host string, index int) (*ProcessReport, error) {
	if host == "" {
		return nil, errors.Validation("Select a host first")
	}
	if index < 0 {
		return nil, errors.Validation(fmt.Sprintf("Invalid GPU index %d", index))
	}

	q := url.Values{"host": {host}, "index": {strconv.Itoa(index)}}
	status, body, err := c.getJSON(ctx, c.endpoints.Processes, q)
	if err != nil {
		return nil, err
	}

	var out ProcessReport
	if err := c.decodeEnvelope(status, body, &out, DefaultProcessError); err != nil {
		return nil, err
	}
	if out.Host == "" {
		out.Host = host
	}
	return &out, nil
}

// StatusMany fetches status for every host concurrently, at most limit at a
// time. Failures are folded into the report (ok=false) so the result always
// has one entry per host, in input order.
func (c *Client) StatusMany(ctx context.Context, hosts []string, limit int) []StatusReport {
	if limit <= 0 {
		limit = 8
	}

	results := make([]StatusReport, len(hosts))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, host := range hosts {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			report, err := c.Status(ctx, host)
			if err != nil {
				results[i] = StatusReport{Host: host, OK: false, Error: errors.Message(err)}
				return
			}
			results[i] = *report
		}(i, host)
	}

	wg.Wait()
	return results
}

// getJSON issues a GET and returns the status code and full body.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values) (int, []byte, error) {
	endpoint := c.url(path, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Failed to build request",
			"Check the 'server' setting in your config")
	}
	req.Header.Set("Accept", "application/json")
	id := c.stamp(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("GET %s failed after %s (request %s): %v", endpoint, time.Since(start), id, err)
		return 0, nil, unreachable(err, c.baseURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Connection dropped while reading the backend response",
			"Try again; run 'gpudash doctor' if it keeps happening")
	}

	c.log.Debug("GET %s -> %d in %s (request %s)", endpoint, resp.StatusCode, time.Since(start), id)
	return resp.StatusCode, body, nil
}

// decodeEnvelope applies the three-outcome contract to a status or process
// response. Any HTTP code is accepted as long as the body parses and carries
// an ok flag; the backend answers bad input with 400 {"ok":false,...}.
func (c *Client) decodeEnvelope(status int, body []byte, out any, fallback string) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.OK == nil {
		if status < 200 || status > 299 {
			return c.failure(status, body, fallback)
		}
		if err == nil {
			err = fmt.Errorf("response has no 'ok' field")
		}
		return malformed(err, "response")
	}

	if !*env.OK {
		msg := strings.TrimSpace(env.Error)
		if msg == "" {
			msg = fallback
		}
		return errors.New(errors.ErrApplication, msg, "")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return malformed(err, "response")
	}
	return nil
}

// failure builds the error for a non-2xx response. A JSON body with an error
// message is an application failure; anything else is transport.
func (c *Client) failure(status int, body []byte, fallback string) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && strings.TrimSpace(env.Error) != "" {
		return errors.New(errors.ErrApplication, strings.TrimSpace(env.Error), "")
	}

	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200] + "..."
	}
	var cause error
	if snippet != "" {
		cause = fmt.Errorf("HTTP %d: %s", status, snippet)
	} else {
		cause = fmt.Errorf("HTTP %d", status)
	}
	return errors.WrapWithCode(cause, errors.ErrTransport,
		fmt.Sprintf("%s (HTTP %d)", fallback, status),
		"Check the backend logs, or the 'endpoints' section if routes differ")
}

// url joins the base address, a route and a query string.
func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// stamp sets a fresh request id on req and returns it.
func (c *Client) stamp(req *http.Request) string {
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	return id
}

func unreachable(err error, server string) *errors.Error {
	return errors.WrapWithCode(err, errors.ErrTransport,
		"Cannot reach the GPU backend at "+server,
		"Start the backend or point --server at it, then run 'gpudash doctor'")
}

func malformed(err error, what string) *errors.Error {
	return errors.WrapWithCode(err, errors.ErrTransport,
		"Backend sent a malformed "+what,
		"Check that 'server' points at the GPU backend and not another service")
}
