// Package geocode resolves free-text places and US postal codes through a
// Nominatim-compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/shadowing-api/internal/geo"
	"github.com/jwalitptl/shadowing-api/pkg/metrics"
)

const (
	MaxSuggestions = 6

	kindSearch = "search"
	kindZip    = "zip"
)

var (
	ErrDisabled    = errors.New("geocoding is disabled")
	ErrUnavailable = errors.New("geocoding service unavailable")

	errCallerGone = errors.New("caller context done")
)

type Config struct {
	Enabled           bool
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	CacheTTL          time.Duration
	RequestsPerSecond float64
}

// Suggestion is one place a search query resolved to.
type Suggestion struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Zip     string  `json:"zip"`
}

type place struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

type Client struct {
	cfg     Config
	http    *http.Client
	cache   Cache
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "geocode",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errCallerGone)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache(cfg.CacheTTL)
	}
	return c
}

// Search returns up to MaxSuggestions places matching q.
func (c *Client) Search(ctx context.Context, q string) ([]Suggestion, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Suggestion{}, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", fmt.Sprint(MaxSuggestions))
	params.Set("q", q)

	places, err := c.lookup(ctx, kindSearch, "search:"+strings.ToLower(q), params)
	if err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(places))
	for _, p := range places {
		s, ok := p.suggestion()
		if !ok {
			continue
		}
		out = append(out, s)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out, nil
}

// PostalCode resolves a postal code to its center. found is false when the
// code is unknown upstream.
func (c *Client) PostalCode(ctx context.Context, code string) (point geo.Point, found bool, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return geo.Point{}, false, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("postalcode", code)

	places, err := c.lookup(ctx, kindZip, "zip:"+code, params)
	if err != nil {
		return geo.Point{}, false, err
	}
	for _, p := range places {
		if s, ok := p.suggestion(); ok {
			return geo.Point{Lat: s.Lat, Lng: s.Lng}, true, nil
		}
	}
	return geo.Point{}, false, nil
}

func (c *Client) lookup(ctx context.Context, kind, key string, params url.Values) ([]place, error) {
	if !c.cfg.Enabled {
		c.metrics.ObserveGeocode(kind, "disabled")
		return nil, ErrDisabled
	}

	if b, ok := c.cache.Get(ctx, key); ok {
		var places []place
		if err := json.Unmarshal(b, &places); err == nil {
			c.metrics.ObserveGeocode(kind, "cache_hit")
			return places, nil
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := c.fetch(ctx, params)
		if err != nil && ctx.Err() != nil {
			// The caller hung up or timed out; upstream health is unknown.
			return nil, fmt.Errorf("%w: %v", errCallerGone, err)
		}
		return body, err
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		c.metrics.ObserveGeocode(kind, outcome)
		log.Warn().Err(err).Str("kind", kind).Msg("geocode lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body := result.([]byte)
	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		c.metrics.ObserveGeocode(kind, "error")
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	c.cache.Set(ctx, key, body)
	c.metrics.ObserveGeocode(kind, "ok")
	return places, nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (p place) suggestion() (Suggestion, bool) {
	lat, err := cast.ToFloat64E(p.Lat)
	if err != nil {
		return Suggestion{}, false
	}
	lng, err := cast.ToFloat64E(p.Lon)
	if err != nil {
		return Suggestion{}, false
	}

	name := p.Name
	if name == "" {
		name = strings.TrimSpace(strings.SplitN(p.DisplayName, ",", 2)[0])
	}
	return Suggestion{
		Name:    name,
		Address: p.DisplayName,
		Lat:     lat,
		Lng:     lng,
		Zip:     p.Address.Postcode,
	}, true
}
