package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/pkg/errors"

	healthDto "cnpgdemo/internal/domains/health/model/dto"
	itemDto "cnpgdemo/internal/domains/item/model/dto"
	"cnpgdemo/shared/constant"
)

const (
	pathHealth = "/health"
	pathItems  = "/items"

	backoffFactor  = 2
	defaultBackoff = 100 * time.Millisecond
)

// StatusError is a response with an unexpected status code.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

type ClientOptions struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Retries        int
	Backoff        time.Duration
	MaxBackoff     time.Duration
}

// Client talks to the items API, retrying throttled and failed round trips
// with exponential backoff.
type Client struct {
	baseURL string
	http    *http.Client
	opts    ClientOptions
	clock   clock.Clock
}

func NewClient(baseURL string, opts ClientOptions) *Client {
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	if opts.MaxBackoff < opts.Backoff {
		opts.MaxBackoff = opts.Backoff
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          0,
		MaxIdleConnsPerHost:   256,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: opts.ReadTimeout,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		opts:    opts,
		clock:   clock.WallClock,
	}
}

func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) Health(ctx context.Context) (healthDto.HealthResponse, error) {
	var res healthDto.HealthResponse

	err := c.do(ctx, http.MethodGet, pathHealth, nil, &res)

	return res, err
}

func (c *Client) CreateItem(ctx context.Context, req itemDto.CreateItemRequest) (itemDto.ItemResponse, error) {
	var res itemDto.ItemResponse

	err := c.do(ctx, http.MethodPost, pathItems, req, &res)

	return res, err
}

func (c *Client) GetItem(ctx context.Context, id int64) (itemDto.ItemResponse, error) {
	var res itemDto.ItemResponse

	err := c.do(ctx, http.MethodGet, itemPath(id), nil, &res)

	return res, err
}

// UpdateItem sends both fields, so the body has the create shape.
func (c *Client) UpdateItem(ctx context.Context, id int64, req itemDto.CreateItemRequest) (itemDto.ItemResponse, error) {
	var res itemDto.ItemResponse

	err := c.do(ctx, http.MethodPut, itemPath(id), req, &res)

	return res, err
}

func (c *Client) ListItems(ctx context.Context) (itemDto.ItemsResponse, error) {
	var res itemDto.ItemsResponse

	err := c.do(ctx, http.MethodGet, pathItems, nil, &res)

	return res, err
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int64) string {
	return pathItems + "/" + strconv.FormatInt(id, 10)
}

// do retries transport errors and 429s. Any other non-200 is final. All
// attempts share one request id.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte

	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	}

	requestID := uuid.NewString()

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			return c.roundTrip(ctx, method, path, requestID, payload, out)
		},
		IsFatalError: func(err error) bool {
			return !isRetryable(err)
		},
		Attempts:    c.opts.Retries + 1,
		Delay:       c.opts.Backoff,
		MaxDelay:    c.opts.MaxBackoff,
		BackoffFunc: retry.ExpBackoff(c.opts.Backoff, c.opts.MaxBackoff, backoffFactor, true),
		Clock:       c.clock,
		Stop:        ctx.Done(),
	})
	if retry.IsAttemptsExceeded(err) || retry.IsRetryStopped(err) {
		err = retry.LastError(err)
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, requestID string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set(constant.RequestHeaderRequestID, requestID)

	if payload != nil {
		req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)

		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests
	}

	var urlErr *url.Error

	return errors.As(err, &urlErr)
}
