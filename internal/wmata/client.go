// Package wmata talks to the WMATA rail APIs and converts their payloads into
// the metro domain model.
package wmata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/karina-peters/metro-map/internal/metro"
)

const (
	routesPath      = "TrainPositions/StandardRoutes"
	positionsPath   = "TrainPositions/TrainPositions"
	predictionsPath = "StationPrediction.svc/json/GetPrediction/"

	// maxBodyBytes caps how much of an upstream response is read
	maxBodyBytes = 16 << 20
)

// Options configures a Client
type Options struct {
	Host      string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, <= 0 disables limiting
	RateBurst int
	Transport http.RoundTripper // defaults to http.DefaultTransport
}

// Client fetches routes, train positions and predictions from WMATA
type Client struct {
	host    string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client. Every request carries the api_key header and
// waits on the rate limiter.
func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		host:   strings.TrimRight(opts.Host, "/"),
		apiKey: opts.APIKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		limiter: limiter,
	}
}

// FetchRoutes fetches the standard route of every line and direction
func (c *Client) FetchRoutes(ctx context.Context) ([]metro.RawLine, error) {
	var body standardRoutesResponse
	if err := c.getJSON(ctx, "fetch routes", routesPath, &body); err != nil {
		return nil, err
	}

	lines := make([]metro.RawLine, 0, len(body.StandardRoutes))
	for _, r := range body.StandardRoutes {
		lines = append(lines, r.toRaw())
	}
	return lines, nil
}

// FetchPositions fetches the current position of every train
func (c *Client) FetchPositions(ctx context.Context) ([]metro.VehiclePosition, error) {
	var body trainPositionsResponse
	if err := c.getJSON(ctx, "fetch positions", positionsPath, &body); err != nil {
		return nil, err
	}

	positions := make([]metro.VehiclePosition, 0, len(body.TrainPositions))
	for _, p := range body.TrainPositions {
		positions = append(positions, p.toPosition())
	}
	return positions, nil
}

// FetchArrivals fetches next-train predictions for the given stations
func (c *Client) FetchArrivals(ctx context.Context, stationCodes []string) ([]metro.Arrival, error) {
	if len(stationCodes) == 0 {
		return nil, nil
	}
	path := predictionsPath + strings.Join(stationCodes, ",")

	var body predictionResponse
	if err := c.getJSON(ctx, "fetch arrivals", path, &body); err != nil {
		return nil, err
	}

	arrivals := make([]metro.Arrival, 0, len(body.Trains))
	for _, p := range body.Trains {
		arrivals = append(arrivals, p.toArrival())
	}
	return arrivals, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	body, err := c.get(ctx, op, c.host+"/"+path+"?contentType=json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &metro.FetchError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// get performs an authenticated GET and returns the body of a 200 response
func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &metro.FetchError{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &metro.FetchError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if c.apiKey != "" {
		req.Header.Set("api_key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &metro.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &metro.FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &metro.FetchError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(snippet(body))}
	}
	return body, nil
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	if s == "" {
		s = "empty body"
	}
	return s
}
