package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/common/models"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
)

// New creates an HTTP client tuned for calls to the assessment service.
func New(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// APIError is a non-2xx answer from the service. Message is the text meant
// for the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assessment service returned %d: %s", e.Status, e.Message)
}

// Client talks to a running obesity-service over its /api/v1 surface.
type Client struct {
	baseURL  string
	http     *http.Client
	attempts int
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/") + "/api/v1",
		http:     New(timeout),
		attempts: 3,
	}
}

// Predict submits raw and returns the assessment. Only failures to connect
// are retried, so a submission the service may have seen is never sent twice.
func (c *Client) Predict(ctx context.Context, raw models.RawSubmission) (*models.Assessment, error) {
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var out models.Assessment
	if err := c.do(ctx, http.MethodPost, "/predict", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Questionnaire(ctx context.Context) (*questionnaire.Form, error) {
	var out questionnaire.Form
	if err := c.do(ctx, http.MethodGet, "/questionnaire", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var resp *http.Response
	err := Retry(ctx, c.attempts, 100*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err = c.http.Do(req)
		if err != nil && IsRetriable(err) {
			logger.Log.WithError(err).WithField("path", path).Debug("retrying assessment service call")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("call assessment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode assessment service response: %w", err)
	}
	return nil
}

// Retry executes fn with exponential backoff. Errors that IsRetriable rejects
// end the loop early.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts <= 1 {
		return fn()
	}

	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil || !IsRetriable(err) {
			return err
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
		}
	}

	return err
}

// IsRetriable reports whether err happened while dialing, before any request
// bytes reached the service. Read, write and timeout failures after the
// connection was made are not retried.
func IsRetriable(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
