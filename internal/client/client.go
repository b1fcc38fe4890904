// Package client is the HTTP client for the member API. It carries the bearer
// token supplied by a TokenFunc on every member-scoped call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fairyhunter13/tour-member/internal/model"
)

var (
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoToken is returned when a member-scoped call is attempted without a token.
	ErrNoToken = errors.New("no session token")
)

// APIError is a non-2xx response other than 401/403.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// TokenFunc returns the current bearer token, or "" when anonymous.
type TokenFunc func() string

// Client talks to the member API.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
}

// New creates a Client whose requests time out after timeout.
func New(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, token)
}

// NewWithHTTPClient creates a Client around a caller-provided http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, token TokenFunc) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		token:   token,
	}
}

// Me resolves the member behind token. The token is passed explicitly because
// the session calls this before it adopts the token.
func (c *Client) Me(ctx context.Context, token string) (*model.MemberResponse, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var out model.MemberResponse
	if err := c.do(ctx, http.MethodGet, "/api/member/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FavoriteIDs returns the server's favorite tour ids for the member.
func (c *Client) FavoriteIDs(ctx context.Context) ([]int64, error) {
	var out model.FavoriteIDsResponse
	if err := c.member(ctx, http.MethodGet, "/api/member/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out.TourIDs, nil
}

// ToggleFavorite flips the server-side favorite and reports the new membership.
func (c *Client) ToggleFavorite(ctx context.Context, tourID int64) (bool, error) {
	var out model.ToggleFavoriteResponse
	req := model.ToggleFavoriteRequest{TourID: &tourID}
	if err := c.member(ctx, http.MethodPost, "/api/member/favorites/toggle", req, &out); err != nil {
		return false, err
	}
	return out.Favorited, nil
}

// Notifications lists the member's promotional notices.
func (c *Client) Notifications(ctx context.Context) (*model.NotificationListResponse, error) {
	var out model.NotificationListResponse
	if err := c.member(ctx, http.MethodGet, "/api/member/notifications", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notification fetches one notice. The server marks it read as a side effect.
func (c *Client) Notification(ctx context.Context, id int64) (*model.Notification, error) {
	var out model.Notification
	path := "/api/member/notifications/" + strconv.FormatInt(id, 10)
	if err := c.member(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAllRead marks every notice read for the member.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.member(ctx, http.MethodPost, "/api/member/notifications/read-all", nil, nil)
}

// Claim claims a promotion. Rejections come back as a ClaimResponse with
// Success false and the server's message, not as an error.
func (c *Client) Claim(ctx context.Context, id int64) (*model.ClaimResponse, error) {
	token := c.token()
	if token == "" {
		return nil, ErrNoToken
	}
	body, err := json.Marshal(model.ClaimRequest{ID: &id})
	if err != nil {
		return nil, fmt.Errorf("encode claim request: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/member/notifications/claim", token, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read claim response: %w", err)
	}
	var out model.ClaimResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
		}
		return nil, fmt.Errorf("decode claim response: %w", err)
	}
	if resp.StatusCode >= 300 && out.Success {
		// A non-2xx never counts as a successful claim.
		return nil, &APIError{Status: resp.StatusCode, Message: out.Message}
	}
	if resp.StatusCode >= 300 && out.Message == "" {
		out.Message = errorMessage(raw)
	}
	return &out, nil
}

// TabBadges fetches the curated tour tab badge collection.
func (c *Client) TabBadges(ctx context.Context) ([]model.BadgeSource, error) {
	var out []model.BadgeSource
	if err := c.do(ctx, http.MethodGet, "/api/badges/tabs", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FestivalBadges fetches the festival badge collection.
func (c *Client) FestivalBadges(ctx context.Context) ([]model.BadgeSource, error) {
	var out []model.BadgeSource
	if err := c.do(ctx, http.MethodGet, "/api/badges/festivals", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) member(ctx context.Context, method, path string, in, out any) error {
	token := c.token()
	if token == "" {
		return ErrNoToken
	}
	return c.do(ctx, method, path, token, in, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request %s %s: %w", method, path, err)
		}
	}

	resp, err := c.send(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redact(c.baseURL+path), err)
	}
	return resp, nil
}

// errorMessage extracts "error" or "message" from a JSON error body.
func errorMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	return u.String()
}
