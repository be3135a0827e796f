package fxrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fjacquet/pod-ledger/internal/logging"
	"fjacquet/pod-ledger/internal/models"
	"fjacquet/pod-ledger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	historical    decimal.Decimal
	historicalErr error
	latest        decimal.Decimal
	latestErr     error

	historicalCalls int
	latestCalls     int
	lastDate        string
}

func (f *fakeSource) Historical(_ context.Context, _, _, date string) (decimal.Decimal, error) {
	f.historicalCalls++
	f.lastDate = date
	return f.historical, f.historicalErr
}

func (f *fakeSource) Latest(context.Context, string, string) (decimal.Decimal, error) {
	f.latestCalls++
	return f.latest, f.latestErr
}

var jan5 = time.Date(2024, 1, 5, 15, 30, 0, 0, time.UTC)

func TestService_SameCurrencyNeedsNoRate(t *testing.T) {
	source := &fakeSource{}
	cache := store.NewMemory(store.Seed{})
	svc := NewService(cache, source, "", logging.NewMockLogger())

	got, err := svc.Normalize(context.Background(), models.MustMoney("12.345", "CAD"), jan5)
	require.NoError(t, err)
	assert.Equal(t, "12.35 CAD", got.String())
	assert.Zero(t, source.historicalCalls)
	assert.Zero(t, cache.RateCount())
}

func TestService_CacheHitSkipsRemote(t *testing.T) {
	cache := store.NewMemory(store.Seed{})
	require.NoError(t, cache.PutRate(context.Background(), "USD", "2024-01-05", decimal.RequireFromString("1.35125")))
	source := &fakeSource{historicalErr: errors.New("must not be called")}
	svc := NewService(cache, source, "CAD", nil)

	got, err := svc.Normalize(context.Background(), models.MustMoney("10.00", "USD"), jan5)
	require.NoError(t, err)
	assert.Equal(t, "13.51 CAD", got.String())
	assert.Zero(t, source.historicalCalls)
	assert.Zero(t, source.latestCalls)
}

func TestService_FetchesAndCachesHistorical(t *testing.T) {
	cache := store.NewMemory(store.Seed{})
	source := &fakeSource{historical: decimal.RequireFromString("1.3")}
	svc := NewService(cache, source, "CAD", nil)

	got, err := svc.Normalize(context.Background(), models.MustMoney("100.00", "USD"), jan5)
	require.NoError(t, err)
	assert.Equal(t, "130.00 CAD", got.String())
	assert.Equal(t, "2024-01-05", source.lastDate)

	_, err = svc.Normalize(context.Background(), models.MustMoney("1.00", "USD"), jan5)
	require.NoError(t, err)
	assert.Equal(t, 1, source.historicalCalls)

	rate, ok, err := cache.GetRate(context.Background(), "USD", "2024-01-05")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.3", rate.String())
}

func TestService_FallbackRatePinnedToRequestedDate(t *testing.T) {
	cache := store.NewMemory(store.Seed{})
	source := &fakeSource{historicalErr: ErrNoRate, latest: decimal.RequireFromString("1.4")}
	logger := logging.NewMockLogger()
	svc := NewService(cache, source, "CAD", logger)

	got, err := svc.Normalize(context.Background(), models.MustMoney("10.00", "USD"), jan5)
	require.NoError(t, err)
	assert.Equal(t, "14.00 CAD", got.String())
	assert.Equal(t, 1, source.latestCalls)

	rate, ok, err := cache.GetRate(context.Background(), "USD", "2024-01-05")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.4", rate.String())
	assert.True(t, logger.HasEntry("WARN", "Caching latest rate under requested date"))
}

func TestService_RateUnavailable(t *testing.T) {
	cache := store.NewMemory(store.Seed{})
	source := &fakeSource{historicalErr: ErrNoRate, latestErr: errors.New("connection refused")}
	svc := NewService(cache, source, "CAD", nil)

	_, err := svc.Normalize(context.Background(), models.MustMoney("10.00", "USD"), jan5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateUnavailable)

	var unavailable *RateUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "USD", unavailable.Currency)
	assert.Equal(t, "2024-01-05", unavailable.Date)
	assert.Zero(t, cache.RateCount())
}

func TestService_CacheFailureIsHard(t *testing.T) {
	cache := store.NewMemory(store.Seed{})
	cache.FailOn("PutRate", errors.New("readonly database"))
	svc := NewService(cache, &fakeSource{historical: decimal.RequireFromString("1.3")}, "CAD", nil)

	_, err := svc.Normalize(context.Background(), models.MustMoney("10.00", "USD"), jan5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readonly database")
}

func TestService_ThrottledRemoteEndToEnd(t *testing.T) {
	var historical, latest int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/historical":
			atomic.AddInt32(&historical, 1)
		case "/live":
			atomic.AddInt32(&latest, 1)
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{
		BaseURL:           server.URL,
		RequestsPerMinute: -1,
		Sleep:             func(context.Context, time.Duration) error { return nil },
	}, nil)
	cache := store.NewMemory(store.Seed{})
	svc := NewService(cache, client, "CAD", nil)

	_, err := svc.Normalize(context.Background(), models.MustMoney("10.00", "USD"), jan5)
	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&historical))
	assert.Equal(t, int32(1), atomic.LoadInt32(&latest))
	assert.Zero(t, cache.RateCount())
}

func TestService_RemoteRateIsCached(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"quotes":{"USDCAD":1.33725}}`)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseURL: server.URL, RequestsPerMinute: -1}, nil)
	svc := NewService(store.NewMemory(store.Seed{}), client, "CAD", nil)

	for i := 0; i < 3; i++ {
		got, err := svc.Normalize(context.Background(), models.MustMoney("100.00", "USD"), jan5)
		require.NoError(t, err)
		assert.Equal(t, "133.73 CAD", got.String())
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
