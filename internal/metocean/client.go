// README: NWS observation client; feeds station reports into the weather detector.
package metocean

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pelorus/internal/modules/weather"
	"pelorus/internal/types"
)

const (
	kmhToKnots = 1 / 1.852
	pascalToMb = 1.0 / 100
	metersToFt = 3.28084
)

// Client fetches recent observations from the NWS API
// (api.weather.gov) and converts them into detector input.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates an observation client. baseURL is typically
// https://api.weather.gov; pass a test server URL in tests.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "Pelorus/1.0",
	}
}

// StationObservations retrieves observations for a station since the given
// time, oldest first, converted to the units the detector expects (knots,
// feet, millibars).
func (c *Client) StationObservations(ctx context.Context, stationID string, since time.Time) ([]weather.Observation, error) {
	u := fmt.Sprintf("%s/stations/%s/observations?start=%s",
		c.baseURL, url.PathEscape(stationID), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var obsResp observationResponse
	if err := json.NewDecoder(resp.Body).Decode(&obsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	out := make([]weather.Observation, 0, len(obsResp.Features))
	for _, f := range obsResp.Features {
		p := f.Properties
		ts, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			continue
		}

		obs := weather.Observation{
			Time: ts,
		}
		if len(f.Geometry.Coordinates) == 2 {
			obs.Location = types.Waypoint{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]}
		}
		if p.WindSpeed.Value != nil {
			obs.WindSpeedKt = *p.WindSpeed.Value * kmhToKnots
		}
		if p.Visibility.Value != nil {
			obs.VisibilityNm = *p.Visibility.Value / 1852
		}
		if p.WaveHeight.Value != nil {
			obs.WaveHeightFt = *p.WaveHeight.Value * metersToFt
		}
		if p.BarometricPressure.Value != nil {
			mb := *p.BarometricPressure.Value * pascalToMb
			obs.PressureMb = &mb
		} else if p.SeaLevelPressure.Value != nil {
			mb := *p.SeaLevelPressure.Value * pascalToMb
			obs.PressureMb = &mb
		}
		out = append(out, obs)
	}

	// The API returns newest first; the detector wants chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// NWS API response types. Values are nullable quantities with WMO unit
// codes; speeds arrive in km/h, pressures in Pa, wave heights in meters.

type measurement struct {
	UnitCode string   `json:"unitCode"`
	Value    *float64 `json:"value"`
}

type observationResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Timestamp          string      `json:"timestamp"`
			WindSpeed          measurement `json:"windSpeed"`
			Visibility         measurement `json:"visibility"`
			WaveHeight         measurement `json:"waveHeight"`
			BarometricPressure measurement `json:"barometricPressure"`
			SeaLevelPressure   measurement `json:"seaLevelPressure"`
		} `json:"properties"`
	} `json:"features"`
}
