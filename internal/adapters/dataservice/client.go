// Package dataservice is the HTTP client of the activity data service. Each
// call returns parsed JSON or a *FetchError.
package dataservice

import (
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

	"github.com/okian/tcxview/internal/domain/model"
	"github.com/okian/tcxview/pkg/logger"
	"github.com/okian/tcxview/pkg/metrics"
)

// RequestIDHeader carries the per-call id to the data service.
const RequestIDHeader = "X-Request-ID"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 32 << 20
)

type endpoint struct {
	name    string
	failure string
}

var (
	epActivities = endpoint{name: "activities", failure: "Failed to fetch activities"}
	epData       = endpoint{name: "activity_data", failure: "Failed to load activity data"}
	epDetails    = endpoint{name: "activity_details", failure: "Failed to load activity details"}
	epMonthly    = endpoint{name: "monthly_data", failure: "Failed to load calendar data"}
	epProgress   = endpoint{name: "progress_data", failure: "Failed to load progress data"}
)

// Client calls the five read endpoints.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("dataservice")
	}
	return c, nil
}

// Activities lists sessions newest first.
func (c *Client) Activities(ctx context.Context) ([]model.ActivitySummary, error) {
	var out []model.ActivitySummary
	if err := c.get(ctx, epActivities, []string{"api", "activities"}, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.ActivitySummary{}
	}
	return out, nil
}

// ActivityData fetches one session's series at a smoothing level.
func (c *Client) ActivityData(ctx context.Context, id model.ID, smoothing int) (model.ActivityData, error) {
	var out model.ActivityData
	q := url.Values{"smoothing": {strconv.Itoa(smoothing)}}
	if err := c.get(ctx, epData, []string{"api", "activity_data", id.String()}, q, &out); err != nil {
		return model.ActivityData{}, err
	}
	if out.HeartRate == nil && len(out.Labels) > 0 {
		out.HeartRate = make([]*float64, len(out.Labels))
	}
	if err := out.Validate(); err != nil {
		return model.ActivityData{}, shapeError(epData, err.Error())
	}
	return out, nil
}

// ActivityDetails fetches the detail panel map of one session.
func (c *Client) ActivityDetails(ctx context.Context, id model.ID) (model.Details, error) {
	var out model.Details
	if err := c.get(ctx, epDetails, []string{"api", "activity_details", id.String()}, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = model.Details{}
	}
	return out, nil
}

// MonthlyData fetches every session of a month.
func (c *Client) MonthlyData(ctx context.Context, year int, month time.Month) (model.MonthlyData, error) {
	var out model.MonthlyData
	path := []string{"api", "monthly_data", strconv.Itoa(year), strconv.Itoa(int(month))}
	if err := c.get(ctx, epMonthly, path, nil, &out); err != nil {
		return model.MonthlyData{}, err
	}
	for day, sessions := range out.Activities {
		for _, s := range sessions {
			if s.Start.Unparsed != "" {
				c.logger.Debug(ctx, "unrecognised start_time",
					logger.String("day", day),
					logger.String("tcxid", string(s.ID)),
					logger.String("start_time", s.Start.Unparsed))
			}
		}
	}
	return out, nil
}

// ProgressData fetches the per-session averages of the whole history.
func (c *Client) ProgressData(ctx context.Context) (model.ProgressData, error) {
	var out model.ProgressData
	if err := c.get(ctx, epProgress, []string{"api", "progress_data"}, nil, &out); err != nil {
		return model.ProgressData{}, err
	}
	if err := out.Validate(); err != nil {
		return model.ProgressData{}, shapeError(epProgress, err.Error())
	}
	return out, nil
}

// URL builds the request URL; path segments are escaped.
func (c *Client) URL(segments []string, query url.Values) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.RawPath = strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, ep endpoint, segments []string, query url.Values, out any) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	requestID := uuid.NewString()
	metrics.AddFetchesInFlight(1)
	defer func() {
		metrics.AddFetchesInFlight(-1)
		outcome := "ok"
		var fe *FetchError
		if errors.As(err, &fe) {
			outcome = string(fe.Kind)
		}
		metrics.RecordFetch(ep.name, outcome, float64(time.Since(start).Milliseconds()))
	}()

	target := c.URL(segments, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return networkError(ep, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug(ctx, "fetch", logger.String("endpoint", ep.name), logger.String("url", target), logger.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "fetch failed", logger.String("endpoint", ep.name), logger.String("request_id", requestID), logger.Error(err))
		return networkError(ep, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return networkError(ep, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		c.logger.Warn(ctx, "fetch rejected",
			logger.String("endpoint", ep.name),
			logger.Int("status", resp.StatusCode),
			logger.String("request_id", requestID))
		return statusError(ep, resp.StatusCode, e.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return shapeError(ep, fmt.Sprintf("expected %s at %q, got %s", typeErr.Type, typeErr.Field, typeErr.Value))
		}
		return decodeError(ep, err)
	}
	return nil
}
