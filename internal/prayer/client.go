package prayer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoTimings is returned when the timings API answers without times.
var ErrNoTimings = errors.New("no prayer timings in response")

const (
	timingsURL = "https://api.aladhan.com/v1/timings"
	geocodeURL = "https://nominatim.openstreetmap.org/reverse"

	// DefaultMethod is the calculation method id sent to the timings API.
	DefaultMethod = 2

	fallbackLocation = "Your Location"
	userAgent        = "biome/1.0"
)

// Timings are the day's prayer times as "HH:MM".
type Timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

// Day is one fetched day of prayer times.
type Day struct {
	Timings  Timings
	Hijri    string
	Location string
}

type timingsResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings Timings `json:"timings"`
		Date    struct {
			Hijri struct {
				Day   string `json:"day"`
				Month struct {
					En string `json:"en"`
				} `json:"month"`
				Year string `json:"year"`
			} `json:"hijri"`
		} `json:"date"`
	} `json:"data"`
}

type geocodeResponse struct {
	Address *struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		Country string `json:"country"`
	} `json:"address"`
}

// Client fetches prayer times and a place name for a coordinate. It makes
// one attempt per call.
type Client struct {
	timingsURL string
	geocodeURL string
	method     int
	client     *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithBaseURLs points the client at other timings and geocode endpoints.
func WithBaseURLs(timings, geocode string) Option {
	return func(c *Client) {
		c.timingsURL = timings
		c.geocodeURL = geocode
	}
}

func WithMethod(method int) Option {
	return func(c *Client) { c.method = method }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		timingsURL: timingsURL,
		geocodeURL: geocodeURL,
		method:     DefaultMethod,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With("component", "prayer"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fetch returns today's timings for lat/lon. A failed timings request is an
// error; a failed place lookup degrades to a generic location name.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (Day, error) {
	q := url.Values{}
	q.Set("latitude", coord(lat))
	q.Set("longitude", coord(lon))
	q.Set("method", strconv.Itoa(c.method))

	var tr timingsResponse
	if err := c.getJSON(ctx, c.timingsURL+"?"+q.Encode(), &tr); err != nil {
		return Day{}, fmt.Errorf("fetch prayer times: %w", err)
	}
	if tr.Data.Timings.Fajr == "" {
		return Day{}, fmt.Errorf("fetch prayer times: %w", ErrNoTimings)
	}

	h := tr.Data.Date.Hijri
	day := Day{
		Timings:  tr.Data.Timings,
		Hijri:    strings.TrimSpace(fmt.Sprintf("%s %s %s", h.Day, h.Month.En, h.Year)),
		Location: c.location(ctx, lat, lon),
	}
	return day, nil
}

func (c *Client) location(ctx context.Context, lat, lon float64) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", coord(lat))
	q.Set("lon", coord(lon))

	var gr geocodeResponse
	if err := c.getJSON(ctx, c.geocodeURL+"?"+q.Encode(), &gr); err != nil {
		c.logger.Debug("reverse geocode failed", "error", err)
		return fallbackLocation
	}
	if gr.Address == nil {
		return fallbackLocation
	}
	a := gr.Address
	city := firstNonEmpty(a.City, a.Town, a.Village, a.County)
	switch {
	case city != "" && a.Country != "":
		return city + ", " + a.Country
	case city != "" || a.Country != "":
		return city + a.Country
	}
	return fallbackLocation
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
