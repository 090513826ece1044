package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rocketcart/pkg/config"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
	"github.com/angelmondragon/rocketcart/pkg/metrics"
)

func testFixture() *Fixture {
	return &Fixture{
		Products: []Product{
			{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: NewPrice(decimal.RequireFromString("179.9")), Image: "https://cdn.example/shoe1.jpg"},
			{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: NewPrice(decimal.RequireFromString("139.9")), Image: "https://cdn.example/shoe2.jpg"},
		},
		Stock: []Stock{{ID: 1, Amount: 3}, {ID: 2, Amount: 5}},
	}
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(config.CatalogConfig{
		BaseURL:      baseURL,
		Timeout:      time.Second,
		MaxRetries:   2,
		RetryBase:    time.Millisecond,
		BreakerTrips: 3,
	}, opts...)
	require.NoError(t, err)
	return client
}

func TestClientFetchesStockAndProduct(t *testing.T) {
	srv := httptest.NewServer(NewFixtureHandler(testFixture(), nil))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)

	stock, err := client.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, Stock{ID: 1, Amount: 3}, stock)

	product, err := client.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), product.ID)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("139.9")))
}

func TestClientNotFoundIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	_, err := client.GetStock(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClientRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"amount":4}`))
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	stock, err := client.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, stock.Amount)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(t, srv.URL)
	_, err := client.GetStock(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClientMalformedBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stock/1":
			_, _ = w.Write([]byte(`{"id":1,"amount":`))
		case "/stock/2":
			_, _ = w.Write([]byte(`{"id":2,"amount":-1}`))
		case "/products/3":
			_, _ = w.Write([]byte(`{"id":4,"title":"wrong"}`))
		}
	}))
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	m := metrics.NewCartMetrics(reg)
	client := newTestClient(t, srv.URL, WithMetrics(m))

	_, err := client.GetStock(context.Background(), 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = client.GetStock(context.Background(), 2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = client.GetProduct(context.Background(), 3)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	count, err := testutil.GatherAndCount(reg, "catalog_requests_total")
	require.NoError(t, err)
	// stock:malformed, stock:ok, products:ok
	assert.Equal(t, 3, count)
}

func TestClientBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(config.CatalogConfig{
		BaseURL:        srv.URL,
		Timeout:        time.Second,
		MaxRetries:     0,
		RetryBase:      time.Millisecond,
		BreakerTrips:   2,
		BreakerTimeout: time.Minute,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := client.GetStock(context.Background(), 1)
		require.Error(t, err)
	}
	_, err = client.GetStock(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "breaker_open", resultLabel(pkgerrors.As(err).Unwrap()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.CatalogConfig{})
	require.Error(t, err)
}
