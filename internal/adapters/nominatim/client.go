package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

type client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// NewClient returns a Geocoder backed by a Nominatim-compatible search
// endpoint. userAgent identifies this deployment to the upstream service per
// its usage policy and must not be empty in production. Pass an *http.Client
// with a timeout; nil falls back to http.DefaultClient.
func NewClient(httpClient *http.Client, baseURL, userAgent string) domain.Geocoder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{http: httpClient, baseURL: baseURL, userAgent: userAgent}
}

// searchResult mirrors the upstream response; lat and lon arrive as strings.
type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *client) Resolve(ctx context.Context, query string, limit int) ([]domain.Place, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if limit < 1 {
		limit = 1
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeocoderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrGeocoderUnreachable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeocoderBadResponse, err)
	}

	places := make([]domain.Place, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad latitude %q", domain.ErrGeocoderBadResponse, r.Lat)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad longitude %q", domain.ErrGeocoderBadResponse, r.Lon)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("%w: coordinates out of range (%s, %s)", domain.ErrGeocoderBadResponse, r.Lat, r.Lon)
		}
		places = append(places, domain.Place{DisplayName: r.DisplayName, Lon: lon, Lat: lat})
	}
	return places, nil
}
