package source

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *CoinbaseSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultCoinbaseConfig()
	cfg.BaseURL = srv.URL
	cfg.MinDelay = time.Millisecond
	return NewCoinbaseSource(cfg)
}

func wireTrade(id string, priceSize string, ts time.Time, side string) map[string]any {
	return map[string]any{
		"trade_id":   id,
		"product_id": "BTC-USD",
		"price":      priceSize,
		"size":       "1",
		"time":       ts.UTC().Format(time.RFC3339),
		"side":       side,
	}
}

func TestFetchWindowSinglePage(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"trades": []map[string]any{
				wireTrade("2", "11", base.Add(time.Minute), "BUY"),
				wireTrade("1", "10", base, "BUY"),
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	trades, err := s.FetchWindow(t.Context(), "BTC-USD", base, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "1", trades[0].TradeID, "trades must be returned sorted ascending by time")
	assert.Equal(t, "2", trades[1].TradeID)
}

func TestFetchWindowDedupesAcrossPages(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		var resp map[string]any
		if calls == 1 {
			trades := make([]map[string]any, pageLimit)
			for i := 0; i < pageLimit; i++ {
				trades[i] = wireTrade(fmt.Sprintf("page1-%d", i), "10", base.Add(time.Duration(i)*time.Second), "BUY")
			}
			resp = map[string]any{"trades": trades}
		} else {
			resp = map[string]any{"trades": []map[string]any{
				wireTrade("page1-0", "10", base, "BUY"), // overlap, must be deduped
				wireTrade("final", "9", base.Add(-time.Second), "BUY"),
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	trades, err := s.FetchWindow(t.Context(), "BTC-USD", base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, pageLimit+1, len(trades))
}

func TestFetchWindowTooBusyWhenCursorCannotAdvance(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		trades := make([]map[string]any, pageLimit)
		for i := 0; i < pageLimit; i++ {
			// Every trade shares the same timestamp: the earliest-in-page
			// can never be before the cursor, so the walk cannot advance.
			trades[i] = wireTrade(fmt.Sprintf("same-%d", i), "10", base, "BUY")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"trades": trades})
	})

	_, err := s.FetchWindow(t.Context(), "BTC-USD", base.Add(-time.Hour), base.Add(time.Hour))
	assert.ErrorIs(t, err, ErrWindowTooBusy)
}

func TestFetchWindowProtocolViolation(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"trades": []map[string]any{
			{"trade_id": "1", "product_id": "BTC-USD", "price": "not-a-number", "size": "1", "time": "2024-01-01T00:00:00Z", "side": "BUY"},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := s.FetchWindow(t.Context(), "BTC-USD", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}

func TestFetchWindowNonTransientStatusFailsFast(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := s.FetchWindow(t.Context(), "BTC-USD", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}

func TestDefaultCoinbaseConfigFillsZeroFields(t *testing.T) {
	s := NewCoinbaseSource(CoinbaseConfig{})
	assert.Equal(t, "coinbase", s.Name())
	assert.ElementsMatch(t, []string{"BTC-USD", "ETH-USD"}, s.SupportedPairs())
}
