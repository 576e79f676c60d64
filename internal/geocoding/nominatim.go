package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/courier/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL -- public Nominatim search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent identifies the service as required by the Nominatim usage policy.
const nominatimUserAgent = "Courier-Dispatch-Service/1.0 (https://github.com/UnknownOlympus/courier)"

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// The public instance allows one request per second.
type NominatimProvider struct {
	endpoint restEndpoint
	region   string // sent as countrycodes when set
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a provider for the public Nominatim API.
func NewNominatimProvider(region string, rateLimit int, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(newHTTPClient(), region, newLimiter(rateLimit), log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
func NewNominatimProviderWithClient(
	client HTTPClient,
	region string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		endpoint: restEndpoint{
			name:    "nominatim",
			client:  client,
			baseURL: NominatimBaseURL,
			header:  http.Header{"User-Agent": {nominatimUserAgent}},
			limiter: limiter,
			log:     log,
		},
		region: region,
	}
}

// Geocode converts an address to geographic coordinates using the Nominatim API.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	np.endpoint.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	params := url.Values{
		"q":      {address},
		"format": {"json"},
		"limit":  {"1"},
	}
	if np.region != "" {
		params.Set("countrycodes", np.region)
	}

	var places []nominatimPlace
	if err := np.endpoint.getJSON(ctx, params, &places); err != nil {
		return nil, err
	}

	if len(places) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, places[0].Lon)
	}

	return checkCoordinates(lon, lat)
}
