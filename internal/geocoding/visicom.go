package geocoding

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/courier/internal/models"
	"golang.org/x/time/rate"
)

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

// VisicomProvider resolves addresses with the Visicom Data API.
type VisicomProvider struct {
	endpoint restEndpoint
	apiKey   string
	region   string // sent as the country filter when set
}

// Common errors for Visicom provider.
var (
	ErrVisicomEmptyResponse = errors.New("visicom API returned empty response")
	ErrVisicomEmptyAddress  = errors.New("visicom provider got empty address")
	ErrVisicomInvalidCoords = errors.New("visicom API returned invalid coordinates")
	ErrVisicomUnauthorized  = errors.New("visicom API unauthorized (invalid API key)")
)

type visicomFeature struct {
	Centroid struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// NewVisicomProvider creates a new Visicom geocoding provider.
func NewVisicomProvider(apiKey, region string, rateLimit int, log *slog.Logger) *VisicomProvider {
	return NewVisicomProviderWithClient(newHTTPClient(), apiKey, region, newLimiter(rateLimit), log)
}

// NewVisicomProviderWithClient allows injecting custom HTTP client.
func NewVisicomProviderWithClient(
	client HTTPClient,
	apiKey string,
	region string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *VisicomProvider {
	return &VisicomProvider{
		endpoint: restEndpoint{
			name:         "visicom",
			client:       client,
			baseURL:      VisicomBaseURL,
			header:       http.Header{"Accept": {"application/json"}},
			limiter:      limiter,
			log:          log,
			unauthorized: ErrVisicomUnauthorized,
		},
		apiKey: apiKey,
		region: region,
	}
}

// Geocode returns the centroid of the best Visicom match for the address.
func (vp *VisicomProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if address == "" {
		return nil, ErrVisicomEmptyAddress
	}

	params := url.Values{
		"text":  {address},
		"limit": {"1"},
		"key":   {vp.apiKey},
	}
	if vp.region != "" {
		params.Set("country", vp.region)
	}

	vp.endpoint.log.DebugContext(ctx, "Geocoding using Visicom", "address", address)

	var feature visicomFeature
	if err := vp.endpoint.getJSON(ctx, params, &feature); err != nil {
		return nil, err
	}

	const lonLat = 2
	switch point := feature.Centroid.Coordinates; len(point) {
	case 0:
		return nil, ErrVisicomEmptyResponse
	case lonLat:
		return checkCoordinates(point[0], point[1])
	default:
		return nil, ErrVisicomInvalidCoords
	}
}
