package alerts

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglesias-tp2023/tphub-claudecode-sub007/internal/core/domain"
)

var errRPCFailed = errors.New("rpc failed")

type fakeSource struct {
	orders   []domain.OrderAnomaly
	reviews  []domain.ReviewAnomaly
	ads      []domain.AdsAnomaly
	profiles []domain.ConsultantProfile

	ordersErr   error
	reviewsErr  error
	adsErr      error
	profilesErr error

	calls atomic.Int32

	gotOrders  float64
	gotReviews float64
	gotAds     float64
}

func (f *fakeSource) GetOrderAnomalies(_ context.Context, threshold float64) ([]domain.OrderAnomaly, error) {
	f.calls.Add(1)
	f.gotOrders = threshold

	return f.orders, f.ordersErr
}

func (f *fakeSource) GetReviewAnomalies(_ context.Context, threshold float64) ([]domain.ReviewAnomaly, error) {
	f.calls.Add(1)
	f.gotReviews = threshold

	return f.reviews, f.reviewsErr
}

func (f *fakeSource) GetAdsAnomalies(_ context.Context, threshold float64) ([]domain.AdsAnomaly, error) {
	f.calls.Add(1)
	f.gotAds = threshold

	return f.ads, f.adsErr
}

func (f *fakeSource) GetStaffProfiles(_ context.Context, _ []domain.Role) ([]domain.ConsultantProfile, error) {
	f.calls.Add(1)

	return f.profiles, f.profilesErr
}

func TestCollector_AllSourcesSucceed(t *testing.T) {
	logger := zerolog.Nop()
	src := &fakeSource{
		orders:   []domain.OrderAnomaly{orderAnomaly("c1")},
		reviews:  []domain.ReviewAnomaly{{CompanyID: "c2"}},
		profiles: []domain.ConsultantProfile{profile("p1", "c1")},
	}

	thresholds := domain.Thresholds{OrderDeviationPct: -25, ReviewRating: 3.5, AdsROAS: 2}
	got := NewCollector(src, &logger).Collect(context.Background(), thresholds)

	assert.Equal(t, int32(4), src.calls.Load())
	assert.Equal(t, -25.0, src.gotOrders)
	assert.Equal(t, 3.5, src.gotReviews)
	assert.Equal(t, 2.0, src.gotAds)

	assert.Empty(t, got.Errors)
	assert.Empty(t, got.ProfilesErr)
	assert.Len(t, got.Orders, 1)
	assert.Len(t, got.Reviews, 1)
	assert.NotNil(t, got.Ads)
	assert.Empty(t, got.Ads)
	assert.Equal(t, thresholds, got.Thresholds)
}

func TestCollector_PartialFailureKeepsOtherSources(t *testing.T) {
	logger := zerolog.Nop()
	src := &fakeSource{
		orders:     []domain.OrderAnomaly{orderAnomaly("c1")},
		reviews:    []domain.ReviewAnomaly{{CompanyID: "c1"}},
		reviewsErr: errRPCFailed,
		ads:        []domain.AdsAnomaly{{CompanyID: "c1"}},
		profiles:   []domain.ConsultantProfile{profile("p1", "c1")},
	}

	got := NewCollector(src, &logger).Collect(context.Background(), domain.Thresholds{})

	require.Len(t, got.Errors, 1)
	assert.Equal(t, SourceError{Source: SourceReviews, Message: "rpc failed"}, got.Errors[0])
	assert.Empty(t, got.Reviews, "failed source is treated as empty")
	assert.Len(t, got.Orders, 1)
	assert.Len(t, got.Ads, 1)

	g := got.Group()
	require.Contains(t, g, "p1")
	assert.Len(t, g["p1"].Orders, 1)
	assert.Empty(t, g["p1"].Reviews)
}

func TestCollector_ProfileFailureSendsEverythingToUnassigned(t *testing.T) {
	logger := zerolog.Nop()
	src := &fakeSource{
		orders:      []domain.OrderAnomaly{orderAnomaly("c1")},
		profilesErr: errRPCFailed,
	}

	got := NewCollector(src, &logger).Collect(context.Background(), domain.Thresholds{})

	require.Len(t, got.Errors, 1)
	assert.Equal(t, SourceProfiles, got.Errors[0].Source)
	assert.Equal(t, "rpc failed", got.ProfilesErr)

	g := got.Group()
	require.Len(t, g, 1)
	assert.Len(t, g[UnassignedKey].Orders, 1)
}

func TestCollector_AllFail(t *testing.T) {
	logger := zerolog.Nop()
	src := &fakeSource{
		ordersErr:   errRPCFailed,
		reviewsErr:  errRPCFailed,
		adsErr:      errRPCFailed,
		profilesErr: errRPCFailed,
	}

	got := NewCollector(src, &logger).Collect(context.Background(), domain.Thresholds{})

	require.Len(t, got.Errors, 4)
	assert.Equal(t, []string{SourceOrders, SourceReviews, SourceAds, SourceProfiles},
		[]string{got.Errors[0].Source, got.Errors[1].Source, got.Errors[2].Source, got.Errors[3].Source})
	assert.Empty(t, got.Group())
}
