package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/kalshibot/internal/domain"
)

// testClient wires a client straight at an httptest server with real signing
// but no rate limiting and no backoff delays.
func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	key, _ := generateTestKey(t)
	return &Client{
		http:    srv.Client(),
		baseURL: srv.URL,
		tokens:  newTokenSource("key-123", key),
		limiter: rate.NewLimiter(rate.Inf, 1),
		sleep:   func(context.Context, time.Duration) {},
	}
}

func TestClient_SignsRequests(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"markets":[]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.GetMarkets(context.Background(), 100, "open")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(auth, "Bearer "), "got %q", auth)
}

func TestClient_RetriesOn429ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"balance":{"cash":100000}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	bal, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), bal.CashCents)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ExhaustedRetriesIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.GetBalance(context.Background())

	var netErr *domain.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 3, netErr.Attempts)
}

func TestClient_FailsFastOnBusinessError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid market"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.GetMarkets(context.Background(), 100, "open")

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, int32(1), calls.Load(), "business errors must not be retried")
}

func TestClient_PostIsNeverRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.PlaceOrder(context.Background(), domain.PlaceOrderRequest{
		MarketID: "FED-25DEC", Side: domain.SideYes, Price: 45, Quantity: 1, OrderType: "limit",
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "order placement has no idempotency key")
}

func TestClient_MalformedMarketsDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	markets, err := c.GetMarkets(context.Background(), 100, "open")
	require.NoError(t, err)
	assert.Empty(t, markets)
}

func TestClient_MalformedBalanceDegradesToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"balance":{}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	bal, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.CashCents)
}

func TestClient_MarketRecordsWithoutIDAreDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"markets":[
			{"market_id":"FED-25DEC","yes_bid":45,"yes_ask":52,"volume":5000},
			{"title":"no id here"}
		]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	markets, err := c.GetMarkets(context.Background(), 100, "open")
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "FED-25DEC", markets[0].ID)
	assert.Equal(t, 45, markets[0].YesBid)
}

func TestClient_ShutdownAbortsMidRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.sleep = func(ctx context.Context, d time.Duration) {
		cancel() // shutdown arrives while waiting out the backoff
		sleepCtx(ctx, d)
	}

	start := time.Now()
	_, err := c.GetBalance(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "cancelled backoff must not run its full duration")
}

func TestMapOrderStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPending, mapOrderStatus("resting"))
	assert.Equal(t, domain.StatusFilled, mapOrderStatus("executed"))
	assert.Equal(t, domain.StatusCancelled, mapOrderStatus("canceled"))
	assert.Equal(t, domain.StatusFailed, mapOrderStatus("rejected"))
	assert.Equal(t, domain.StatusPending, mapOrderStatus("???"))
}
