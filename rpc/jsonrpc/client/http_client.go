// Package client provides an HTTP client for JSON-RPC 2.0 chain
// nodes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	rpctypes "github.com/0xNineteen/sol-lightnode/rpc/jsonrpc/types"
)

// maxResponseBytes caps how much of a response body is read. A block
// of transactions is the largest payload this client ever asks for.
const maxResponseBytes = 64 << 20

// Client is a JSON-RPC 2.0 client over HTTP POST. Request IDs come
// from an atomic counter, so a Client is safe for concurrent use.
type Client struct {
	address string
	client  *http.Client

	nextReqID int64
}

// New returns a Client talking to the JSON-RPC endpoint at remote.
func New(remote string) (*Client, error) {
	httpClient := DefaultHTTPClient()
	return NewWithHTTPClient(remote, httpClient)
}

// NewWithHTTPClient returns a Client using a caller-supplied
// http.Client, for custom transports and timeouts.
func NewWithHTTPClient(remote string, client *http.Client) (*Client, error) {
	if client == nil {
		return nil, errors.New("nil http.Client")
	}
	parsed, err := url.Parse(remote)
	if err != nil {
		return nil, fmt.Errorf("invalid remote %q: %w", remote, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote %q: scheme must be http or https", remote)
	}
	return &Client{address: remote, client: client}, nil
}

// DefaultHTTPClient returns an http.Client with sane timeouts for
// talking to a chain RPC node. There is no overall request timeout;
// the per-call context carries that.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        4,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// Remote returns the endpoint the client talks to.
func (c *Client) Remote() string {
	return c.address
}

// Call invokes a JSON-RPC method with positional params and decodes
// the result member into result. A JSON null result is returned as a
// *rpctypes.RPCError-free nil with ErrNullResult, since several chain
// methods use null for "not found".
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	id := atomic.AddInt64(&c.nextReqID, 1)
	request, err := rpctypes.ParamsToRequest(id, method, params)
	if err != nil {
		return errors.Wrap(err, "failed to encode params")
	}
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address, bytes.NewReader(requestBytes))
	if err != nil {
		return errors.Wrap(err, "request setup failed")
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := c.client.Do(httpRequest)
	if err != nil {
		return errors.Wrapf(err, "%s call failed", method)
	}
	defer httpResponse.Body.Close()

	responseBytes, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrapf(err, "%s: failed to read response body", method)
	}

	return unmarshalResponseBytes(responseBytes, id, method, result)
}

// ErrNullResult reports a well-formed response whose result member is
// JSON null.
var ErrNullResult = errors.New("rpc result is null")

func unmarshalResponseBytes(responseBytes []byte, expectedID int64, method string, result interface{}) error {
	response := &rpctypes.RPCResponse{}
	if err := json.Unmarshal(responseBytes, response); err != nil {
		return errors.Wrapf(err, "%s: error unmarshaling response", method)
	}
	if response.Error != nil {
		return errors.Wrapf(response.Error, "%s: response error", method)
	}
	if response.ID != expectedID {
		return fmt.Errorf("%s: wrong response ID: got %d, expected %d", method, response.ID, expectedID)
	}
	if len(response.Result) == 0 || bytes.Equal(response.Result, []byte("null")) {
		return errors.Wrap(ErrNullResult, method)
	}
	if err := json.Unmarshal(response.Result, result); err != nil {
		return errors.Wrapf(err, "%s: error unmarshaling result", method)
	}
	return nil
}

// ErrorCode extracts the JSON-RPC error code of err, if err wraps an
// RPC error.
func ErrorCode(err error) (int, bool) {
	var rpcErr *rpctypes.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code, true
	}
	return 0, false
}
