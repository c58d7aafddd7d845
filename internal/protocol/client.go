// internal/protocol/client.go
// Outbound JSON-RPC client: one HTTP POST per call, retried under the §5
// backoff policy and guarded by a per-target circuit breaker. Two-peer
// fan-out (invite, move request) is expressed with sourcegraph/conc/pool
// for ordered, panic-safe concurrent collection, replacing the
// "coroutine-heavy agent loops" pattern named in the design notes.
package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/evenodd-league/tournament/internal/events"
	"github.com/evenodd-league/tournament/internal/protocol/rpcerr"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Client issues JSON-RPC calls to peer agents over HTTP.
type Client struct {
	httpClient *http.Client
	sender     string
	authToken  string
	retry      RetryPolicy
	logger     *zap.SugaredLogger
	bus        events.Publisher

	mu       sync.Mutex
	breakers map[string]*Breaker

	breakerThreshold int
	breakerCooldown  time.Duration
}

// NewClient creates a client identifying itself as sender (e.g. "referee:R01")
// with the given bearer token, used for every outbound call until rotated.
func NewClient(sender, authToken string, logger *zap.SugaredLogger, bus events.Publisher) *Client {
	return &Client{
		httpClient:       &http.Client{},
		sender:           sender,
		authToken:        authToken,
		retry:            DefaultRetryPolicy(),
		logger:           logger,
		bus:              bus,
		breakers:         make(map[string]*Breaker),
		breakerThreshold: 5,
		breakerCooldown:  30 * time.Second,
	}
}

// SetAuthToken rotates the bearer token used on subsequent calls. The
// player and referee binaries do not call it; they keep presenting the
// bootstrap secret they were constructed with.
func (c *Client) SetAuthToken(token string) { c.authToken = token }

func (c *Client) breakerFor(target string) *Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[target]
	if !ok {
		b = NewBreaker(target, c.breakerThreshold, c.breakerCooldown, c.bus)
		c.breakers[target] = b
	}
	return b
}

// Call sends method with payload to endpoint and decodes the result into
// dst. Deadline governs the per-attempt timeout; the overall retry policy
// may make multiple attempts within the caller's ctx.
func (c *Client) Call(ctx context.Context, endpoint, method string, payload interface{}, dst interface{}, deadline time.Duration) error {
	breaker := c.breakerFor(endpoint)

	return c.retry.Do(ctx, func(err error) bool {
		if e, ok := rpcerr.AsError(err); ok {
			return rpcerr.Retryable(e.Kind)
		}
		return false
	}, func() error {
		allowed, _ := breaker.Allow()
		if !allowed {
			return rpcerr.New(rpcerr.ConnectionRefused, "circuit open for %s", endpoint)
		}

		err := c.doOnce(ctx, endpoint, method, payload, dst, deadline)
		if err != nil {
			if e, ok := rpcerr.AsError(err); ok && rpcerr.Retryable(e.Kind) {
				breaker.RecordFailure()
			}
			return err
		}
		breaker.RecordSuccess()
		return nil
	})
}

func (c *Client) doOnce(ctx context.Context, endpoint, method string, payload interface{}, dst interface{}, deadline time.Duration) error {
	req, err := NewRequest(method, c.sender, c.authToken, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return rpcerr.Wrap(rpcerr.MalformedMessage, err, "marshal request")
	}

	callCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return rpcerr.Wrap(rpcerr.MalformedMessage, err, "build http request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if callCtx.Err() != nil {
			return rpcerr.New(rpcerr.Timeout, "%s %s timed out after %s", method, endpoint, deadline)
		}
		return rpcerr.Wrap(rpcerr.ConnectionRefused, err, "%s %s unreachable", method, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return rpcerr.New(rpcerr.ConnectionRefused, "%s %s returned %d", method, endpoint, resp.StatusCode)
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return rpcerr.Wrap(rpcerr.MalformedMessage, err, "decode response from %s", endpoint)
	}

	if rpcResp.Error != nil {
		kind := rpcerr.Kind("INTERNAL")
		if rpcResp.Error.Data != nil {
			kind = rpcerr.Kind(rpcResp.Error.Data.Kind)
		}
		return &rpcerr.Error{Kind: kind, Message: rpcResp.Error.Message}
	}

	if dst != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, dst); err != nil {
			return rpcerr.Wrap(rpcerr.MalformedMessage, err, "decode result from %s", endpoint)
		}
	}
	return nil
}

// PeerCall names one leg of a two-peer fan-out.
type PeerCall struct {
	Endpoint string
	Method   string
	Payload  interface{}
	Dst      interface{}
}

// FanOut2 issues two calls concurrently and waits for both, within deadline.
// Each leg's error (if any) is reported independently so the caller (the
// referee's invite/move-collection loop) can treat one timing out and the
// other succeeding as two separate facts, per §4.3.
func (c *Client) FanOut2(ctx context.Context, a, b PeerCall, deadline time.Duration) (errA, errB error) {
	p := pool.New().WithMaxGoroutines(2)
	calls := []PeerCall{a, b}
	var results [2]error
	for i, call := range calls {
		i, call := i, call
		p.Go(func() {
			results[i] = c.Call(ctx, call.Endpoint, call.Method, call.Payload, call.Dst, deadline)
		})
	}
	p.Wait()
	return results[0], results[1]
}
