// client.go
//
// HTTP client for a peer execution bridge.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/forthic-lang/forthic"
)

// Client talks to one peer runtime.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets baseURL, e.g. "http://localhost:8044". A zero timeout
// means no client-side deadline beyond the context's.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ExecuteWord runs one word on the peer against stack and returns the
// resulting stack. A peer-reported failure comes back as
// *RemoteExecutionError.
func (c *Client) ExecuteWord(ctx context.Context, word string, stack []forthic.Value) ([]forthic.Value, error) {
	seed, err := EncodeStack(stack)
	if err != nil {
		return nil, err
	}
	req := ExecuteWordRequest{Word: word, Stack: seed}
	var resp ExecuteResponse
	if err := c.post(ctx, "/rpc/execute-word", req, &resp); err != nil {
		return nil, err
	}
	return resultStack(resp)
}

// ExecuteSequence runs words in order on the peer, fail-fast.
func (c *Client) ExecuteSequence(ctx context.Context, words []string, stack []forthic.Value) ([]forthic.Value, error) {
	seed, err := EncodeStack(stack)
	if err != nil {
		return nil, err
	}
	req := ExecuteSequenceRequest{Words: words, Stack: seed}
	var resp ExecuteResponse
	if err := c.post(ctx, "/rpc/execute-sequence", req, &resp); err != nil {
		return nil, err
	}
	return resultStack(resp)
}

// ListModules returns the peer's registered modules.
func (c *Client) ListModules(ctx context.Context) ([]ModuleSummary, error) {
	var resp ListModulesResponse
	if err := c.get(ctx, "/rpc/modules", &resp); err != nil {
		return nil, err
	}
	return resp.Modules, nil
}

// GetModuleInfo returns one module's summary and exported words.
func (c *Client) GetModuleInfo(ctx context.Context, name string) (*ModuleInfoResponse, error) {
	var resp ModuleInfoResponse
	if err := c.get(ctx, "/rpc/modules/"+url.PathEscape(name), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func resultStack(resp ExecuteResponse) ([]forthic.Value, error) {
	if resp.Error != nil {
		return nil, &RemoteExecutionError{Info: *resp.Error}
	}
	return DecodeStack(resp.Stack)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// Execution errors arrive with a non-2xx status but still carry the
	// structured response body. Anything unparseable is a transport error.
	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, data)
		}
		return err
	}
	if resp.StatusCode >= 400 {
		if er, ok := out.(*ExecuteResponse); ok && er.Error != nil {
			return nil
		}
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, data)
	}
	return nil
}
