package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tartampluch/birthday-dashboard/internal/config"
)

// ErrUnexpectedStatus is wrapped by every error caused by a non-2xx answer
// that could not be read as a mutation result.
var ErrUnexpectedStatus = errors.New(config.ErrUnexpectedStatus)

// API is the backend REST contract consumed by the dashboard.
// This interface allows for mocking in tests and decoupling from the network layer.
type API interface {
	ListFriends(ctx context.Context) ([]Friend, error)
	CreateFriend(ctx context.Context, in FriendInput) (Result, error)
	UpdateFriend(ctx context.Context, id int64, in FriendInput) (Result, error)
	DeleteFriend(ctx context.Context, id int64) (Result, error)
	ListAlerts(ctx context.Context) ([]Alert, error)
	MarkAlertRead(ctx context.Context, id int64) (Result, error)
	UpcomingBirthdays(ctx context.Context) ([]UpcomingEntry, error)
	FriendMessages(ctx context.Context, friendID int64) ([]Message, error)
}

// FindFriend locates one friend by listing the whole collection.
// The backend has no GET /friends/{id}; once it does, only this function changes.
func FindFriend(ctx context.Context, api API, id int64) (Friend, bool, error) {
	friends, err := api.ListFriends(ctx)
	if err != nil {
		return Friend{}, false, err
	}
	for _, f := range friends {
		if f.ID == id {
			return f, true, nil
		}
	}
	return Friend{}, false, nil
}

// Client implements API over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	// safeBase is BaseURL without query or credentials, used in logs.
	safeBase string
}

// NewClient validates the base URL (e.g. "http://host:5000/api") and configures timeouts.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(config.ErrBackendURLEmpty)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	// Security check: ensure strictly HTTP or HTTPS.
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	if timeout <= 0 {
		timeout = config.HTTPTimeout
	}

	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: timeout},
		safeBase: u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/"),
	}, nil
}

// ListFriends implements API.
func (c *Client) ListFriends(ctx context.Context) ([]Friend, error) {
	var friends []Friend
	if err := c.getJSON(ctx, config.PathFriends, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// CreateFriend implements API.
func (c *Client) CreateFriend(ctx context.Context, in FriendInput) (Result, error) {
	return c.mutate(ctx, http.MethodPost, config.PathFriends, in)
}

// UpdateFriend implements API.
func (c *Client) UpdateFriend(ctx context.Context, id int64, in FriendInput) (Result, error) {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf(config.FormatPathFriend, id), in)
}

// DeleteFriend implements API.
func (c *Client) DeleteFriend(ctx context.Context, id int64) (Result, error) {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf(config.FormatPathFriend, id), nil)
}

// ListAlerts implements API.
func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	if err := c.getJSON(ctx, config.PathAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// MarkAlertRead implements API.
func (c *Client) MarkAlertRead(ctx context.Context, id int64) (Result, error) {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf(config.FormatPathAlertRead, id), nil)
}

// UpcomingBirthdays implements API.
func (c *Client) UpcomingBirthdays(ctx context.Context) ([]UpcomingEntry, error) {
	var upcoming []UpcomingEntry
	if err := c.getJSON(ctx, config.PathUpcoming, &upcoming); err != nil {
		return nil, err
	}
	return upcoming, nil
}

// FriendMessages implements API.
func (c *Client) FriendMessages(ctx context.Context, friendID int64) ([]Message, error) {
	var messages []Message
	if err := c.getJSON(ctx, fmt.Sprintf(config.FormatPathMessages, friendID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// getJSON issues a GET and decodes a 2xx JSON answer into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logStatus(http.MethodGet, path, resp.StatusCode)
		return fmt.Errorf(config.FormatUnexpectedCode, ErrUnexpectedStatus, resp.StatusCode, http.MethodGet, path)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, config.MaxHTTPResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDecodeResponse, err)
	}
	return nil
}

// mutate sends a JSON request and decodes the {success, error} answer.
// A 4xx answer carrying a result is an application failure, not a transport one.
func (c *Client) mutate(ctx context.Context, method, path string, body any) (Result, error) {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", config.ErrEncodeBody, err)
		}
		payload = bytes.NewReader(buf)
	}

	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var res Result
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, config.MaxHTTPResponseSize)).Decode(&res)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logStatus(method, path, resp.StatusCode)
		if decodeErr != nil {
			return Result{}, fmt.Errorf(config.FormatUnexpectedCode, ErrUnexpectedStatus, resp.StatusCode, method, path)
		}
		// A refusal body like {"error": "Unauthorized"} decodes but is still a failure.
		res.Success = false
		return res, nil
	}

	if decodeErr != nil {
		return Result{}, fmt.Errorf("%s: %w", config.ErrDecodeResponse, decodeErr)
	}
	return res, nil
}

// do builds and sends one request. Mutations always carry a JSON content type.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrBuildRequest, err)
	}

	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)
	if method != http.MethodGet {
		req.Header.Set(config.HeaderContentType, config.MimeJSON)
	}

	slog.Debug(config.MsgRequest,
		config.LogKeyComponent, config.CompBackend,
		config.LogKeyMethod, method,
		config.LogKeyURL, c.safeBase+path,
	)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}
	return resp, nil
}

func (c *Client) logStatus(method, path string, status int) {
	slog.Warn(config.MsgStatusError,
		config.LogKeyComponent, config.CompBackend,
		config.LogKeyMethod, method,
		config.LogKeyURL, c.safeBase+path,
		config.LogKeyStatus, status,
	)
}
