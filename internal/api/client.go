// Package api provides a small Go client for the planning server. The
// CLI solve command uses it; external tooling can too.
package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/goccy/go-json"
)

// Client talks to a running planning server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client. Call Login or Register before any
// authenticated request.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// errorBody mirrors the server's error replies.
type errorBody struct {
	Error string `json:"error"`
}

// do sends one JSON request and decodes the response into out (when
// non-nil). Non-2xx replies become errors carrying the server message.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorBody
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Healthcheck checks if the server is reachable.
func (c *Client) Healthcheck() error {
	return c.do(http.MethodGet, "/api/v1/health", nil, nil)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type session struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(username, password string) (core.User, error) {
	var s session
	err := c.do(http.MethodPost, "/api/v1/auth/login",
		credentials{Username: username, Password: password}, &s)
	if err != nil {
		return core.User{}, err
	}
	c.token = s.Token
	return s.User, nil
}

// Register creates an account and stores the session token.
func (c *Client) Register(username, password string) (core.User, error) {
	var s session
	err := c.do(http.MethodPost, "/api/v1/auth/register",
		credentials{Username: username, Password: password}, &s)
	if err != nil {
		return core.User{}, err
	}
	c.token = s.Token
	return s.User, nil
}

type solveRequest struct {
	core.FireMission
	ChargeRings *int `json:"chargeRings"`
}

type solveResponse struct {
	Solutions []core.ChargeSolution `json:"solutions"`
}

// Solve computes firing solutions. A nil chargeRings solves all five
// charges; otherwise just the given one.
func (c *Client) Solve(fm core.FireMission, chargeRings *int) ([]core.ChargeSolution, error) {
	var resp solveResponse
	err := c.do(http.MethodPost, "/api/v1/calculator/solve",
		solveRequest{FireMission: fm, ChargeRings: chargeRings}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Solutions, nil
}

// ListPlans fetches the plans visible to the logged-in user.
func (c *Client) ListPlans() ([]core.Plan, error) {
	var plans []core.Plan
	if err := c.do(http.MethodGet, "/api/v1/plans/", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
