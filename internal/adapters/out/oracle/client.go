// Package oracle is the HTTP client of the external ETA prediction service.
//
// The service takes the trip features and answers with minutes, a 95% range
// and a confidence label. The client reports every unusable answer as an
// error; turning errors into fallback estimates is left to the predictor.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"tracking/internal/core/domain/model/eta"
)

const (
	predictPath     = "/predict"
	maxResponseSize = 1 << 20
	maxAttempts     = 2
	retryBackoff    = 100 * time.Millisecond
)

// ErrMalformedResponse is returned when a 2xx body cannot be used as an estimate.
var ErrMalformedResponse = errors.New("oracle response is malformed")

// HTTPStatusError is a non-2xx answer.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("oracle answered %d: %s", e.Code, e.Body)
}

type predictRequest struct {
	Distance      float64 `json:"distance"`
	BaseSpeed     float64 `json:"base_speed"`
	TrafficFactor float64 `json:"traffic_factor"`
	Vehicle       string  `json:"vehicle"`
	Weather       string  `json:"weather"`
	Route         string  `json:"route"`
	TimeOfDay     int     `json:"time_of_day"`
	DayOfWeek     int     `json:"day_of_week"`
}

type predictResponse struct {
	EstimatedMinutes *float64 `json:"estimated_eta_minutes"`
	EstimatedHours   float64  `json:"estimated_eta_hours"`
	Range            *struct {
		Lower float64 `json:"lower"`
		Upper float64 `json:"upper"`
	} `json:"eta_range"`
	Confidence string `json:"confidence"`
	ModelUsed  string `json:"model_used"`
}

// Client implements ports.ETAOracle over HTTP. It is safe for concurrent use.
type Client struct {
	session *http.Client
	baseURL string
}

// NewClient builds a client for baseURL. The deadline comes from the caller's context;
// the http.Client timeout only guards against a missing one.
func NewClient(baseURL string, session *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oracle base url is empty")
	}
	if session == nil {
		session = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{session: session, baseURL: baseURL}, nil
}

// Predict asks the oracle for an estimate. 429 and 5xx answers and network errors are
// retried once while the context allows it.
func (c *Client) Predict(ctx context.Context, req eta.Request) (eta.Estimate, error) {
	payload, err := json.Marshal(predictRequest{
		Distance:      req.DistanceKm,
		BaseSpeed:     req.BaseSpeed(),
		TrafficFactor: req.TrafficFactor,
		Vehicle:       req.Vehicle.String(),
		Weather:       string(req.Weather),
		Route:         string(req.Route),
		TimeOfDay:     req.TimeOfDay(),
		DayOfWeek:     req.DayOfWeek(),
	})
	if err != nil {
		return eta.Estimate{}, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(payload))
	})
	if err != nil {
		return eta.Estimate{}, err
	}
	defer resp.Body.Close()

	var body predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return eta.Estimate{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return body.toEstimate()
}

func (r predictResponse) toEstimate() (eta.Estimate, error) {
	if r.EstimatedMinutes == nil {
		return eta.Estimate{}, fmt.Errorf("%w: estimated_eta_minutes is missing", ErrMalformedResponse)
	}
	minutes := *r.EstimatedMinutes
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		return eta.Estimate{}, fmt.Errorf("%w: estimated_eta_minutes is %v", ErrMalformedResponse, minutes)
	}

	confidence, err := eta.ParseConfidence(strings.ToLower(strings.TrimSpace(r.Confidence)))
	if err != nil || confidence == eta.ConfidenceFallback {
		return eta.Estimate{}, fmt.Errorf("%w: confidence %q", ErrMalformedResponse, r.Confidence)
	}

	estimate := eta.Estimate{
		Minutes:    minutes,
		Confidence: confidence,
		Range:      eta.Range{Lower: minutes, Upper: minutes},
	}
	if r.Range != nil && r.Range.Lower >= 0 && r.Range.Lower <= r.Range.Upper {
		estimate.Range = eta.Range{Lower: r.Range.Lower, Upper: r.Range.Upper}
	}
	return estimate, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &HTTPStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := retryBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var he *HTTPStatusError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
