package pvgis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/helioscrm/helios/internal/solar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *Client {
	parsed, _ := url.Parse(baseURL)
	return &Client{
		baseURL:     baseURL,
		allowedHost: parsed.Hostname(),
		httpClient:  &http.Client{Timeout: requestTimeout},
		log:         zap.NewNop(),
	}
}

const pvcalcBody = `{
	"outputs": {
		"totals": {"fixed": {"E_y": 1643.5}},
		"monthly": {"fixed": [
			{"E_m": 90}, {"E_m": 105}, {"E_m": 140}, {"E_m": 150},
			{"E_m": 170}, {"E_m": 180}, {"E_m": 190}, {"E_m": 175},
			{"E_m": 150}, {"E_m": 120}, {"E_m": 95}, {"E_m": 80}
		]}
	}
}`

func TestFetchAnnualProduction_Success(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pvcalcBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	estimate, err := client.FetchAnnualProduction(context.Background(), 40.4, -3.7, 30, 180)
	require.NoError(t, err)

	assert.Equal(t, 1643.5, estimate.AnnualPerKwp)
	assert.Len(t, estimate.MonthlyPerKwp, 12)
	assert.Equal(t, domain.SourcePVGIS, estimate.Source)

	assert.Equal(t, "40.4", gotQuery.Get("lat"))
	assert.Equal(t, "-3.7", gotQuery.Get("lon"))
	assert.Equal(t, "1", gotQuery.Get("peakpower"))
	assert.Equal(t, "14", gotQuery.Get("loss"))
	assert.Equal(t, "30", gotQuery.Get("angle"))
	assert.Equal(t, "180", gotQuery.Get("aspect"))
	assert.Equal(t, "json", gotQuery.Get("outputformat"))
}

func TestFetchAnnualProduction_MissingMonthlyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outputs":{"totals":{"fixed":{"E_y": 1500}}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	estimate, err := client.FetchAnnualProduction(context.Background(), 40.4, -3.7, 30, 180)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, estimate.AnnualPerKwp)
	assert.Empty(t, estimate.MonthlyPerKwp)
}

func TestFetchAnnualProduction_NonPositiveAnnualIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outputs":{"totals":{"fixed":{"E_y": -5}}}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchAnnualProduction(context.Background(), 40.4, -3.7, 30, 180)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestFetchAnnualProduction_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchAnnualProduction(context.Background(), 40.4, -3.7, 30, 180)
	assert.Error(t, err)
}

func TestFetchAnnualProduction_MalformedJSONIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"outputs":`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchAnnualProduction(context.Background(), 40.4, -3.7, 30, 180)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

// A base URL pointed anywhere but the allow-listed production host must be
// blocked before any network I/O.
func TestFetchAnnualProduction_BlocksNonAllowListedHost(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(pvcalcBody))
	}))
	defer server.Close()

	client := &Client{
		baseURL:     server.URL,
		allowedHost: AllowedHost,
		httpClient:  &http.Client{Timeout: requestTimeout},
		log:         zap.NewNop(),
	}

	_, err := client.FetchAnnualProduction(context.Background(), 40.4, -3.7, 30, 180)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
	assert.Equal(t, int64(0), hits.Load(), "blocked request must not reach the network")
}

func TestBuildURL_ProductionHostPassesAllowList(t *testing.T) {
	client := &Client{
		baseURL:     "https://re.jrc.ec.europa.eu/api/v5_2",
		allowedHost: AllowedHost,
		log:         zap.NewNop(),
	}

	endpoint, err := client.buildURL(40.4, -3.7, 30, 180)
	require.NoError(t, err)

	parsed, err := url.Parse(endpoint)
	require.NoError(t, err)
	assert.Equal(t, AllowedHost, parsed.Hostname())
	assert.Equal(t, "/api/v5_2/PVcalc", parsed.Path)
}
