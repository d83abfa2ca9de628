// Package acs is a client for the GenieACS northbound management interface.
//
// Every operation performs exactly one HTTP round trip against the NBI and
// collapses transport failures and non-2xx responses into util.RemoteError.
// The bridge never retries: a timeout surfaces immediately to the caller.
package acs

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

	"github.com/michaelayoade/ontbridge/pkg/util"
)

// DefaultTimeout bounds a single NBI round trip when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Gateway talks to one ACS server's NBI.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway creates a gateway for the given NBI base URL.
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the NBI base URL this gateway targets.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// do issues one request and decodes a JSON response body into out (when out
// is non-nil and the body is non-empty). The response is returned for callers
// that need headers; its body is already consumed and closed.
func (g *Gateway) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) (*http.Response, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, util.NewRemoteError(op, err.Error())
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, util.NewRemoteError(op, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.NewRemoteError(op, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		return nil, util.NewRemoteError(op, fmt.Sprintf("%s (HTTP %d)", msg, resp.StatusCode))
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, util.NewRemoteError(op, "decoding response: "+err.Error())
		}
	}
	return resp, nil
}

// getJSON issues a GET and decodes the response.
func (g *Gateway) getJSON(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	_, err := g.do(ctx, op, http.MethodGet, path, query, nil, "", out)
	return err
}

// postJSON issues a POST with a JSON body and decodes the response.
func (g *Gateway) postJSON(ctx context.Context, op, path string, query url.Values, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return util.NewRemoteError(op, "encoding request: "+err.Error())
		}
		rd = bytes.NewReader(data)
	}
	_, err := g.do(ctx, op, http.MethodPost, path, query, rd, "application/json", out)
	return err
}

// putJSON issues a PUT with a JSON body.
func (g *Gateway) putJSON(ctx context.Context, op, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return util.NewRemoteError(op, "encoding request: "+err.Error())
	}
	_, err = g.do(ctx, op, http.MethodPut, path, nil, bytes.NewReader(data), "application/json", nil)
	return err
}

// delete issues a DELETE.
func (g *Gateway) delete(ctx context.Context, op, path string) error {
	_, err := g.do(ctx, op, http.MethodDelete, path, nil, nil, "", nil)
	return err
}
