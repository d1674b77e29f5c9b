package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/helioscrm/helios/internal/config"
	"github.com/helioscrm/helios/internal/solar/domain"
	"github.com/helioscrm/helios/internal/solar/estimator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIrradianceClient struct {
	mock.Mock
}

func (m *mockIrradianceClient) FetchAnnualProduction(ctx context.Context, lat, lng, tilt float64, azimuth int) (domain.ProductionEstimate, error) {
	args := m.Called(ctx, lat, lng, tilt, azimuth)
	return args.Get(0).(domain.ProductionEstimate), args.Error(1)
}

func newTestService(client domain.IrradianceClient) *Service {
	svc := New(Params{
		Log:    zap.NewNop(),
		Solar:  config.NewStaticSolarConfigHolder(config.DefaultSolarConfig()),
		Client: client,
	})
	return svc.(*Service)
}

func validRequest() domain.CalculationRequest {
	return domain.CalculationRequest{
		Consumption:      4000,
		InstallationType: domain.InstallationResidential,
		Location:         domain.Location{Lat: 40.4, Lng: -3.7},
		RoofOrientation:  domain.OrientationSouth,
		RoofTilt:         30,
	}
}

func TestCalculate_WithUpstreamEstimate(t *testing.T) {
	client := new(mockIrradianceClient)
	client.On("FetchAnnualProduction", mock.Anything, 40.4, -3.7, 30.0, 180).
		Return(domain.ProductionEstimate{
			AnnualPerKwp:  1600,
			MonthlyPerKwp: []float64{90, 105, 140, 150, 170, 180, 190, 175, 150, 120, 95, 80},
			Source:        domain.SourcePVGIS,
		}, nil)

	svc := newTestService(client)
	result, err := svc.Calculate(context.Background(), validRequest())
	require.NoError(t, err)

	// 4000 / 1600 = 2.5 kWp, panels = ceil(2500/550) = 5
	assert.Equal(t, 2.5, result.SystemSize)
	assert.Equal(t, 5, result.Panels)
	assert.Equal(t, 4000.0, result.Production)
	assert.Equal(t, 1000.0, result.Savings) // 4000 * 0.25
	assert.Equal(t, domain.SourcePVGIS, result.DataSource)
	assert.Len(t, result.MonthlyProduction, 12)
	assert.Equal(t, 225, result.MonthlyProduction[0]) // 90 * 2.5
	assert.GreaterOrEqual(t, result.AnnualROI, 0.0)

	client.AssertExpectations(t)
}

func TestCalculate_FallsBackWhenClientFails(t *testing.T) {
	client := new(mockIrradianceClient)
	client.On("FetchAnnualProduction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ProductionEstimate{}, errors.New("upstream unreachable"))

	svc := newTestService(client)
	req := validRequest()
	result, err := svc.Calculate(context.Background(), req)
	require.NoError(t, err)

	want := estimator.Estimate(req.Location.Lat, req.RoofOrientation, req.RoofTilt)
	estimate := svc.acquireEstimate(context.Background(), req)
	assert.Equal(t, want, estimate.AnnualPerKwp)
	assert.Equal(t, domain.SourceFallback, result.DataSource)
	assert.Greater(t, result.SystemSize, 0.0)
}

func TestCalculate_FallsBackOnNonPositiveAnnual(t *testing.T) {
	client := new(mockIrradianceClient)
	client.On("FetchAnnualProduction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ProductionEstimate{AnnualPerKwp: -5, Source: domain.SourcePVGIS}, nil)

	svc := newTestService(client)
	result, err := svc.Calculate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.DataSource)
	assert.Greater(t, result.Production, 0.0)
}

func TestAcquireEstimate_ReasonDistinguishesNonFinite(t *testing.T) {
	cases := []struct {
		name   string
		annual float64
		want   string
	}{
		{"negative", -5, "non-positive annual figure"},
		{"nan", math.NaN(), "non-finite annual figure"},
		{"inf", math.Inf(1), "non-finite annual figure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(mockIrradianceClient)
			client.On("FetchAnnualProduction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(domain.ProductionEstimate{AnnualPerKwp: tc.annual, Source: domain.SourcePVGIS}, nil)

			svc := newTestService(client)
			estimate := svc.acquireEstimate(context.Background(), validRequest())
			assert.Equal(t, domain.SourceFallback, estimate.Source)
			assert.Equal(t, tc.want, estimate.SourceReason)
		})
	}
}

func TestCalculate_ValidationRejectsBeforeExternalCall(t *testing.T) {
	client := new(mockIrradianceClient)

	svc := newTestService(client)

	cases := []struct {
		name    string
		mutate  func(*domain.CalculationRequest)
		wantErr error
	}{
		{"consumption zero", func(r *domain.CalculationRequest) { r.Consumption = 0 }, domain.ErrInvalidConsumption},
		{"consumption above max", func(r *domain.CalculationRequest) { r.Consumption = 1_000_001 }, domain.ErrInvalidConsumption},
		{"bad installation type", func(r *domain.CalculationRequest) { r.InstallationType = "farm" }, domain.ErrInvalidInstallationType},
		{"latitude out of range", func(r *domain.CalculationRequest) { r.Location.Lat = 91 }, domain.ErrInvalidLatitude},
		{"longitude out of range", func(r *domain.CalculationRequest) { r.Location.Lng = -181 }, domain.ErrInvalidLongitude},
		{"bad orientation", func(r *domain.CalculationRequest) { r.RoofOrientation = "up" }, domain.ErrInvalidOrientation},
		{"tilt out of range", func(r *domain.CalculationRequest) { r.RoofTilt = 95 }, domain.ErrInvalidTilt},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Calculate(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	client.AssertNotCalled(t, "FetchAnnualProduction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSize_MonotonicInConsumption(t *testing.T) {
	svc := newTestService(new(mockIrradianceClient))
	estimate := domain.ProductionEstimate{AnnualPerKwp: 1500, Source: domain.SourcePVGIS}

	previous := 0.0
	for consumption := 1000.0; consumption <= 50_000; consumption += 1000 {
		sizing, err := svc.size(consumption, estimate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sizing.SystemSizeKwp, previous)
		previous = sizing.SystemSizeKwp
	}
}

func TestSize_DefaultsWhenPerKwpNonPositive(t *testing.T) {
	svc := newTestService(new(mockIrradianceClient))

	sizing, err := svc.size(4000, domain.ProductionEstimate{AnnualPerKwp: 0})
	require.NoError(t, err)
	assert.True(t, sizing.UsedDefaultPerKwp)
	assert.Equal(t, float64(defaultProductionPerKwp), sizing.ProductionPerKwp)
}

func TestSize_RejectsImplausibleResult(t *testing.T) {
	svc := newTestService(new(mockIrradianceClient))

	// 1,000,000 kWh/year at 0.01 kWh/kWp blows past the 10,000 kWp cap.
	_, err := svc.size(1_000_000, domain.ProductionEstimate{AnnualPerKwp: 0.01})
	assert.ErrorIs(t, err, domain.ErrImplausibleSizing)
}

func TestSize_PanelCountAlwaysPositive(t *testing.T) {
	svc := newTestService(new(mockIrradianceClient))
	estimate := domain.ProductionEstimate{AnnualPerKwp: 1400}

	for consumption := 100.0; consumption <= 100_000; consumption *= 3 {
		sizing, err := svc.size(consumption, estimate)
		require.NoError(t, err)
		assert.Positive(t, sizing.PanelCount)
	}
}

func TestFinancials_ZeroCostYieldsZeroROI(t *testing.T) {
	svc := newTestService(new(mockIrradianceClient))

	summary := svc.financials(domain.SystemSizing{SystemSizeKwp: 0, TotalAnnualProdKwh: 0})
	assert.Equal(t, 0.0, summary.AnnualROI)
	assert.Equal(t, 0.0, summary.SystemCost)
}

func TestFinancials_NonNegative(t *testing.T) {
	svc := newTestService(new(mockIrradianceClient))

	summary := svc.financials(domain.SystemSizing{SystemSizeKwp: 2.5, TotalAnnualProdKwh: 4000})
	assert.GreaterOrEqual(t, summary.AnnualSavings, 0.0)
	assert.GreaterOrEqual(t, summary.SystemCost, 0.0)
	assert.GreaterOrEqual(t, summary.AnnualROI, 0.0)
}
