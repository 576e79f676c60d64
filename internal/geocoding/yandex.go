package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/courier/internal/models"
	"golang.org/x/time/rate"
)

// YandexBaseURL -- Yandex Geocoder HTTP API endpoint.
const YandexBaseURL = "https://geocode-maps.yandex.ru/1.x"

// YandexProvider resolves addresses with the Yandex Geocoder.
// The region hint is sent as the response locale, which also biases the search.
type YandexProvider struct {
	endpoint restEndpoint
	apiKey   string
	lang     string // empty when the region has no Yandex locale
}

// yandexLocales maps ISO 3166-1 alpha-2 codes to the locales the geocoder accepts.
var yandexLocales = map[string]string{
	"ru": "ru_RU",
	"ua": "uk_UA",
	"by": "be_BY",
	"kz": "kk_KZ",
	"uz": "uz_UZ",
	"tr": "tr_TR",
	"us": "en_US",
}

// YandexLang returns the Yandex locale for a region code, or "" if there is none.
func YandexLang(region string) string {
	return yandexLocales[strings.ToLower(strings.TrimSpace(region))]
}

// Common errors for Yandex provider.
var (
	ErrYandexEmptyResponse = errors.New("yandex API returned empty response")
	ErrYandexInvalidCoords = errors.New("yandex API returned invalid coordinates")
	ErrYandexUnauthorized  = errors.New("yandex API unauthorized (invalid API key)")
)

type yandexResponse struct {
	Response struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject struct {
					Point struct {
						Pos string `json:"pos"` // "lon lat"
					} `json:"Point"`
				} `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

// NewYandexProvider creates a new Yandex geocoding provider.
func NewYandexProvider(apiKey, region string, rateLimit int, log *slog.Logger) *YandexProvider {
	return NewYandexProviderWithClient(newHTTPClient(), apiKey, region, newLimiter(rateLimit), log)
}

// NewYandexProviderWithClient allows injecting custom HTTP client.
func NewYandexProviderWithClient(
	client HTTPClient,
	apiKey string,
	region string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *YandexProvider {
	return &YandexProvider{
		endpoint: restEndpoint{
			name:         "yandex",
			client:       client,
			baseURL:      YandexBaseURL,
			header:       http.Header{"Accept": {"application/json"}},
			limiter:      limiter,
			log:          log,
			unauthorized: ErrYandexUnauthorized,
		},
		apiKey: apiKey,
		lang:   YandexLang(region),
	}
}

// Geocode returns the coordinates of the most relevant Yandex result for the address.
func (yp *YandexProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	yp.endpoint.log.DebugContext(ctx, "Geocoding using Yandex", "address", address)

	params := url.Values{
		"geocode": {address},
		"apikey":  {yp.apiKey},
		"format":  {"json"},
		"results": {"1"},
	}
	if yp.lang != "" {
		params.Set("lang", yp.lang)
	}

	var result yandexResponse
	if err := yp.endpoint.getJSON(ctx, params, &result); err != nil {
		return nil, err
	}

	members := result.Response.GeoObjectCollection.FeatureMember
	if len(members) == 0 {
		return nil, ErrYandexEmptyResponse
	}

	return parsePos(members[0].GeoObject.Point.Pos)
}

// parsePos parses a "lon lat" pair as returned in GeoObject.Point.pos.
func parsePos(pos string) (*models.Coordinates, error) {
	lonStr, latStr, found := strings.Cut(strings.TrimSpace(pos), " ")
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrYandexInvalidCoords, pos)
	}

	lon, errLon := strconv.ParseFloat(lonStr, 64)
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if errLon != nil || errLat != nil {
		return nil, fmt.Errorf("%w: %q", ErrYandexInvalidCoords, pos)
	}

	return checkCoordinates(lon, lat)
}
