// Package webdav stores named blobs in a WebDAV collection with plain HTTP
// PUT and GET.
package webdav

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
)

const backend = "webdav"

var errUnexpectedStatus = errors.New("unexpected status")

// maxBodyBytes bounds how much of a response is read into memory.
const maxBodyBytes = 256 << 20

// Config identifies a WebDAV collection.
type Config struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

type Client struct {
	base     string
	user     string
	password string
	http     *http.Client
	log      logging.Logger
}

// New validates cfg and returns a client. A nil httpClient gets a default
// one bounded by cfg.Timeout.
func New(cfg Config, httpClient *http.Client, log logging.Logger) (*Client, error) {
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: webdav url, user and password are required", common.ErrConfiguration)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		base:     strings.TrimRight(cfg.URL, "/"),
		user:     cfg.User,
		password: cfg.Password,
		http:     httpClient,
		log:      log.With("backend", backend),
	}, nil
}

func (c *Client) fileURL(name string) string {
	return c.base + "/" + strings.TrimLeft(name, "/")
}

func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.password)
	return req, nil
}

func (c *Client) do(req *http.Request, op string) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, common.NewTransportError(backend, op, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, common.NewTransportError(backend, op, resp.StatusCode, nil, fmt.Errorf("read body: %w", err))
	}
	return resp.StatusCode, body, nil
}

// Get downloads name. It returns (nil, false, nil) on 404.
func (c *Client) Get(ctx context.Context, name string) ([]byte, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.fileURL(name), nil)
	if err != nil {
		return nil, false, common.NewTransportError(backend, "get", 0, nil, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	status, body, err := c.do(req, "get")
	if err != nil {
		return nil, false, err
	}
	switch {
	case status == http.StatusNotFound:
		c.log.Debug(ctx, "remote object absent", "name", name)
		return nil, false, nil
	case status < 200 || status > 299:
		return nil, false, statusError("get", status, body)
	}
	return body, true, nil
}

// Put uploads data as name, replacing any previous content.
func (c *Client) Put(ctx context.Context, name string, data []byte) error {
	req, err := c.newRequest(ctx, http.MethodPut, c.fileURL(name), data)
	if err != nil {
		return common.NewTransportError(backend, "put", 0, nil, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	status, body, err := c.do(req, "put")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return statusError("put", status, body)
	}
	c.log.Debug(ctx, "remote object written", "name", name, "bytes", len(data))
	return nil
}

// TestConnection checks the collection with PROPFIND Depth 0, retrying with
// HEAD when the server does not support PROPFIND.
func (c *Client) TestConnection(ctx context.Context) error {
	status, body, err := c.ping(ctx, "PROPFIND")
	if err != nil {
		return err
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		status, body, err = c.ping(ctx, http.MethodHead)
		if err != nil {
			return err
		}
	}
	if status < 200 || status > 299 {
		return statusError("test", status, body)
	}
	return nil
}

func (c *Client) ping(ctx context.Context, method string) (int, []byte, error) {
	req, err := c.newRequest(ctx, method, c.base+"/", nil)
	if err != nil {
		return 0, nil, common.NewTransportError(backend, "test", 0, nil, err)
	}
	req.Header.Set("Depth", "0")
	return c.do(req, "test")
}

func statusError(op string, status int, body []byte) error {
	var cause error
	if status == http.StatusUnauthorized {
		cause = common.ErrUnauthorized
	} else {
		cause = errUnexpectedStatus
	}
	return common.NewTransportError(backend, op, status, body, cause)
}
