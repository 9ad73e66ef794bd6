package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
)

// Estimator answers "how far is engineer base from job site" between two
// normalized postcodes. Implementations tag the returned estimate with the
// tier it was produced at.
type Estimator interface {
	Estimate(ctx context.Context, from, to string) (domain.TravelEstimate, error)
}

// StatusError is a non-2xx answer from the routing provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("travel provider status %d", e.Code)
}

// HTTPGateway is a travel estimator backed by the external routing provider.
type HTTPGateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPGateway creates a travel estimator backed by the routing provider.
// A nil client falls back to a default with a request timeout.
func NewHTTPGateway(client *http.Client, baseURL, apiKey string) *HTTPGateway {
	if baseURL == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPGateway{client: client, baseURL: baseURL, apiKey: apiKey}
}

type routeResponse struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// Estimate fetches a live route between two postcodes.
func (g *HTTPGateway) Estimate(ctx context.Context, from, to string) (domain.TravelEstimate, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/route?"+q.Encode(), nil)
	if err != nil {
		return domain.TravelEstimate{}, fmt.Errorf("travel gateway: build request: %w", err)
	}
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.TravelEstimate{}, fmt.Errorf("travel gateway: route: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.TravelEstimate{}, &StatusError{Code: resp.StatusCode}
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.TravelEstimate{}, fmt.Errorf("travel gateway: decode route: %w", err)
	}

	return domain.TravelEstimate{
		DistanceKm: body.DistanceKm,
		Duration:   time.Duration(body.DurationMinutes * float64(time.Minute)),
		Tier:       domain.TravelTierLive,
	}, nil
}
