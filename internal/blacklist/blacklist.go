// Package blacklist asks the Karma identity service whether an email may be onboarded.
package blacklist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the outcome of a successful lookup.
type Status int

const (
	StatusClear  Status = iota // unknown to the service or not listed
	StatusListed               // listed, onboarding must stop
)

func (s Status) String() string {
	if s == StatusListed {
		return "listed"
	}
	return "clear"
}

// Checker looks up an identity. A non-nil error means the outcome is unknown.
type Checker interface {
	Check(ctx context.Context, email string) (Status, error)
}

// Client calls the Karma lookup endpoint over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logrus.FieldLogger
}

// NewClient returns a Client for baseURL. timeout bounds every lookup.
func NewClient(baseURL, apiKey string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type karmaResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		KarmaIdentity string `json:"karma_identity"`
		Reason        string `json:"reason"`
	} `json:"data"`
}

// Check performs GET {base}/verification/karma/{email}. 404 means the identity is
// unknown and therefore clear.
func (c *Client) Check(ctx context.Context, email string) (Status, error) {
	endpoint := c.baseURL + "/verification/karma/" + url.PathEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return StatusClear, fmt.Errorf("build karma request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return StatusClear, fmt.Errorf("karma lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return StatusClear, nil
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return StatusClear, fmt.Errorf("karma lookup: unexpected status %d", resp.StatusCode)
	}

	var body karmaResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return StatusClear, fmt.Errorf("decode karma response: %w", err)
	}
	if body.Data != nil && body.Data.KarmaIdentity != "" {
		c.log.WithFields(logrus.Fields{
			"reason": body.Data.Reason,
		}).Warn("Identity found on karma blacklist")
		return StatusListed, nil
	}
	return StatusClear, nil
}

// AllowAll is used when no lookup service is configured.
type AllowAll struct{}

// Check always reports StatusClear.
func (AllowAll) Check(context.Context, string) (Status, error) { return StatusClear, nil }

// Func adapts a function to Checker.
type Func func(ctx context.Context, email string) (Status, error)

// Check calls f.
func (f Func) Check(ctx context.Context, email string) (Status, error) { return f(ctx, email) }
