// Package pvgis calls the European Commission PVGIS service for per-kWp
// production data.
package pvgis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/helioscrm/helios/internal/config"
	"github.com/helioscrm/helios/internal/observability/metrics"
	"github.com/helioscrm/helios/internal/solar/domain"
	"go.uber.org/zap"
)

// AllowedHost is the only hostname outbound irradiance requests may
// resolve to. The check runs before any I/O; anything else is a blocked
// request, not a retryable failure.
const AllowedHost = "re.jrc.ec.europa.eu"

const requestTimeout = 10 * time.Second

var (
	ErrHostNotAllowed  = errors.New("pvgis: host not in allow-list")
	ErrInvalidResponse = errors.New("pvgis: invalid response")
)

type Client struct {
	baseURL     string
	allowedHost string
	httpClient  *http.Client
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewClient(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:     cfg.PVGISBaseURL,
		allowedHost: AllowedHost,
		httpClient:  &http.Client{Timeout: requestTimeout},
		log:         logger.Named("solar.pvgis"),
		metrics:     m,
	}
}

// pvcalcResponse mirrors the subset of the PVcalc payload we consume.
type pvcalcResponse struct {
	Outputs struct {
		Totals struct {
			Fixed struct {
				EY float64 `json:"E_y"`
			} `json:"fixed"`
		} `json:"totals"`
		Monthly struct {
			Fixed []struct {
				EM float64 `json:"E_m"`
			} `json:"fixed"`
		} `json:"monthly"`
	} `json:"outputs"`
}

// FetchAnnualProduction queries PVcalc for a 1 kWp reference system. The
// annual figure is mandatory; monthly data may be absent.
func (c *Client) FetchAnnualProduction(ctx context.Context, lat, lng, tilt float64, azimuth int) (domain.ProductionEstimate, error) {
	endpoint, err := c.buildURL(lat, lng, tilt, azimuth)
	if err != nil {
		return domain.ProductionEstimate{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ProductionEstimate{}, fmt.Errorf("pvgis: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countRequest("error")
		return domain.ProductionEstimate{}, fmt.Errorf("pvgis: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.countRequest("error")
		return domain.ProductionEstimate{}, fmt.Errorf("pvgis: unexpected status %d", resp.StatusCode)
	}

	var payload pvcalcResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.countRequest("invalid")
		return domain.ProductionEstimate{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	annual := payload.Outputs.Totals.Fixed.EY
	if annual <= 0 || math.IsNaN(annual) || math.IsInf(annual, 0) {
		c.countRequest("invalid")
		return domain.ProductionEstimate{}, fmt.Errorf("%w: non-positive annual figure", ErrInvalidResponse)
	}

	monthly := make([]float64, 0, len(payload.Outputs.Monthly.Fixed))
	for _, m := range payload.Outputs.Monthly.Fixed {
		monthly = append(monthly, m.EM)
	}

	c.countRequest("ok")
	return domain.ProductionEstimate{
		AnnualPerKwp:  annual,
		MonthlyPerKwp: monthly,
		Source:        domain.SourcePVGIS,
	}, nil
}

// buildURL constructs the PVcalc URL and validates its hostname against
// the allow-list before any network I/O happens.
func (c *Client) buildURL(lat, lng, tilt float64, azimuth int) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("pvgis: parse base url: %w", err)
	}

	base.Path = base.Path + "/PVcalc"
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lng))
	q.Set("peakpower", "1")
	q.Set("loss", "14")
	q.Set("angle", formatCoord(tilt))
	q.Set("aspect", strconv.Itoa(azimuth))
	q.Set("outputformat", "json")
	base.RawQuery = q.Encode()

	if base.Hostname() != c.allowedHost {
		if c.metrics != nil {
			c.metrics.BlockedOutbound.Inc()
		}
		c.log.Error("blocked outbound request to non-allow-listed host",
			zap.String("host", base.Hostname()),
		)
		return "", ErrHostNotAllowed
	}

	return base.String(), nil
}

func (c *Client) countRequest(outcome string) {
	if c.metrics != nil {
		c.metrics.PVGISRequests.WithLabelValues(outcome).Inc()
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
