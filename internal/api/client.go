package api

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/notexe/reminder-dash/internal/reminder"
)

// DefaultBaseURL is the local development endpoint.
const DefaultBaseURL = "http://localhost:8080/api/v1/reminders"

// RequestIDHeader carries a per-request id, echoed by the server in its logs.
const RequestIDHeader = "X-Request-ID"

// Client talks to the remote reminder service over HTTP. It performs no
// retries: every failure is returned to the caller.
type Client struct {
	client  *http.Client
	baseURL string
	log     logrus.FieldLogger
}

// NewClient creates a client for baseURL. A non-positive timeout falls back
// to 30 seconds; a nil logger discards output.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.WithField("component", "api"),
	}
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// listResponse is the service's page envelope. number is zero-based.
type listResponse struct {
	Content       []reminder.Reminder `json:"content"`
	TotalPages    int                 `json:"totalPages"`
	TotalElements int                 `json:"totalElements"`
	Number        int                 `json:"number"`
	Size          int                 `json:"size"`
}

// errorResponse covers both the development server's and Spring's error bodies.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// List fetches one page. q.Page is 1-based; the wire page is zero-based.
// Optional filters that are unset are not sent.
func (c *Client) List(ctx context.Context, q reminder.Query) (*reminder.Page, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/all", encodeQuery(q), nil, &resp); err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}

	items := resp.Content
	if items == nil {
		items = []reminder.Reminder{}
	}
	return &reminder.Page{
		Items:      items,
		TotalPages: resp.TotalPages,
		Total:      resp.TotalElements,
	}, nil
}

// Get fetches a single reminder.
func (c *Client) Get(ctx context.Context, id int64) (*reminder.Reminder, error) {
	var r reminder.Reminder
	if err := c.do(ctx, http.MethodGet, "/get/"+strconv.FormatInt(id, 10), nil, nil, &r); err != nil {
		return nil, fmt.Errorf("get reminder %d: %w", id, err)
	}
	return &r, nil
}

// Create sends a draft and returns the stored reminder.
func (c *Client) Create(ctx context.Context, d reminder.Draft) (*reminder.Reminder, error) {
	var r reminder.Reminder
	if err := c.do(ctx, http.MethodPost, "/create", nil, d, &r); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return &r, nil
}

// Update replaces the editable fields of reminder id.
func (c *Client) Update(ctx context.Context, id int64, d reminder.Draft) (*reminder.Reminder, error) {
	var r reminder.Reminder
	if err := c.do(ctx, http.MethodPut, "/update/"+strconv.FormatInt(id, 10), nil, d, &r); err != nil {
		return nil, fmt.Errorf("update reminder %d: %w", id, err)
	}
	return &r, nil
}

// Delete removes reminder id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/delete/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return fmt.Errorf("delete reminder %d: %w", id, err)
	}
	return nil
}

// Complete marks reminder id as completed and returns the server's copy,
// including the new updatedAt.
func (c *Client) Complete(ctx context.Context, id int64) (*reminder.Reminder, error) {
	var r reminder.Reminder
	if err := c.do(ctx, http.MethodPatch, "/complete/"+strconv.FormatInt(id, 10), nil, nil, &r); err != nil {
		return nil, fmt.Errorf("complete reminder %d: %w", id, err)
	}
	return &r, nil
}

func encodeQuery(q reminder.Query) url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 10
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(page-1))
	v.Set("size", strconv.Itoa(size))
	v.Set("sort", q.Sort.String())
	v.Set("title", q.Title)
	if q.Priority != "" {
		v.Set("priority", q.Priority.String())
	}
	if q.Completed != nil {
		v.Set("isCompleted", strconv.FormatBool(*q.Completed))
	}
	return v
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return err
	}
	defer resp.Body.Close()

	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func newStatusError(resp *http.Response) *StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	msg := strings.TrimSpace(string(data))
	var er errorResponse
	if json.Unmarshal(data, &er) == nil {
		switch {
		case er.Message != "":
			msg = er.Message
		case er.Error != "":
			msg = er.Error
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
