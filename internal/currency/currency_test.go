package currency_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/cache"
	"github.com/MrJamesThe3rd/cardcycle/internal/currency"
)

func newRateServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		switch r.URL.Path {
		case "/latest/USD":
			w.Write([]byte(`{"result":"success","rates":{"USD":1,"VND":25000.5}}`))
		case "/latest/XAU":
			w.Write([]byte(`{"result":"success","rates":{"USD":2300}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(ts.Close)

	return ts
}

func newConverter(source currency.RateSource) *currency.Converter {
	return currency.NewConverter(source, cache.NewTTL[decimal.Decimal](time.Hour, 0))
}

func TestConverter_ToVND(t *testing.T) {
	var hits atomic.Int32

	ts := newRateServer(t, &hits)
	conv := newConverter(currency.NewHTTPSource(ts.URL, time.Second))

	type testCase struct {
		name     string
		amount   string
		currency string
		want     int64
		wantErr  error
	}

	tests := []testCase{
		{name: "VND is identity", amount: "850000", currency: "vnd", want: 850_000},
		{name: "USD from source", amount: "12.50", currency: "USD", want: 312_506},
		{name: "EUR falls back to table", amount: "2", currency: "EUR", want: 55_000},
		{name: "Unknown currency", amount: "1", currency: "XAU", wantErr: currency.ErrUnsupportedCurrency},
		{name: "Invalid code", amount: "1", currency: "US", wantErr: currency.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.ToVND(context.Background(), decimal.RequireFromString(tt.amount), tt.currency)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConverter_CachesRates(t *testing.T) {
	var hits atomic.Int32

	ts := newRateServer(t, &hits)
	conv := newConverter(currency.NewHTTPSource(ts.URL, time.Second))

	for range 3 {
		_, err := conv.Rate(context.Background(), "USD")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), hits.Load())
}

type failingSource struct{}

func (failingSource) Rate(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("network down")
}

func TestConverter_FallbackIsNotCached(t *testing.T) {
	rates := cache.NewTTL[decimal.Decimal](time.Hour, 0)
	conv := currency.NewConverter(failingSource{}, rates)

	rate, err := conv.Rate(context.Background(), "usd")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(25_400)))
	assert.Equal(t, 0, rates.Len())
}

func TestConverter_RefetchesAfterExpiry(t *testing.T) {
	var hits atomic.Int32

	ts := newRateServer(t, &hits)
	conv := currency.NewConverter(
		currency.NewHTTPSource(ts.URL, time.Second),
		cache.NewTTL[decimal.Decimal](20*time.Millisecond, 0),
	)

	_, err := conv.Rate(context.Background(), "USD")
	require.NoError(t, err)

	_, err = conv.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	time.Sleep(40 * time.Millisecond)

	_, err = conv.Rate(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
