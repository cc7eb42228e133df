// Package remote talks to the employee store over HTTP.
package remote

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

	"github.com/Houeta/staff-directory/internal/lib/logger/sl"
	"github.com/Houeta/staff-directory/internal/models"
	"github.com/google/uuid"
)

const (
	EmployeesPath = "/api/employees"
	LoginPath     = "/api/auth/login"
	SignupPath    = "/api/auth/signup"

	// RequestIDHeader correlates every request of one pipeline in the store's logs.
	RequestIDHeader = "X-Request-ID"

	maxBodySize = 4 << 20
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrEmployeeNotFound = errors.New("employee not found")
)

type requestIDKey struct{}

// WithRequestID attaches id to ctx; requests sent with ctx carry it in RequestIDHeader.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id attached to ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRequestID returns a fresh correlation id.
func NewRequestID() string {
	return uuid.NewString()
}

// ClientIface is the transport the rest of the client is written against.
type ClientIface interface {
	Do(ctx context.Context, method, path string, payload any) (Response, error)
	URL(path string) string
}

// Client sends JSON requests to the store rooted at baseURL.
type Client struct {
	client  *http.Client
	baseURL string
	log     *slog.Logger
}

func NewClient(log *slog.Logger, client *http.Client, baseURL string) *Client {
	return &Client{client: client, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// URL resolves path against the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// EmployeePath is the item path of the employee with the given id.
func EmployeePath(id string) string {
	return EmployeesPath + "/" + url.PathEscape(id)
}

// Do sends payload (JSON-encoded, nil for no body) and returns the response whatever its status.
// The error is non-nil only when no response was received.
func (c *Client) Do(ctx context.Context, method, path string, payload any) (Response, error) {
	target := c.URL(path)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Response{}, fmt.Errorf("failed to encode payload for %s %s: %w", method, target, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create new request %s: %w", target, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", models.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = NewRequestID()
	}
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "Request failed",
			slog.String("method", method), slog.String("url", target), slog.String("request_id", requestID), sl.Err(err))
		return Response{}, fmt.Errorf("failed to request %s: %w", target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response body: %w", err)
	}

	c.log.DebugContext(ctx, "Request completed",
		slog.String("method", method),
		slog.String("url", target),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	return Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// ListEmployees returns every record in the store.
func ListEmployees(ctx context.Context, client ClientIface) ([]models.Record, error) {
	resp, err := client.Do(ctx, http.MethodGet, EmployeesPath, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err()
	}

	records, _, err := resp.Records()
	if err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}

	return records, nil
}

// FetchEmployee reads one record. A response that is not a single record falls back to
// searching the collection by empid or id.
func FetchEmployee(ctx context.Context, client ClientIface, id string) (models.Record, error) {
	resp, err := client.Do(ctx, http.MethodGet, EmployeePath(id), nil)
	if err == nil && resp.OK() {
		if rec, ok := resp.SingleRecord(); ok {
			return rec, nil
		}
	}

	records, err := ListEmployees(ctx, client)
	if err != nil {
		return nil, err
	}
	if rec, ok := FindByID(records, id); ok {
		return rec, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
}

// FindByID returns the first record whose empid or id equals id.
func FindByID(records []models.Record, id string) (models.Record, bool) {
	for _, rec := range records {
		if rec.String(models.KeyEmpID) == id || rec.String(models.KeyID) == id {
			return rec, true
		}
	}
	return nil, false
}
