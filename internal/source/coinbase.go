package source

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"arcana/internal/model"
)

const (
	pageLimit = 1000

	defaultBaseURL = "https://api.exchange.coinbase.com"
)

var backoffSchedule = []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}

// tradeWire is the wire shape of one element of a market-trades response,
// per spec.md §6: string-encoded decimals, RFC3339 time, upper-case side.
type tradeWire struct {
	TradeID   string `json:"trade_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Price     string `json:"price" validate:"required,numeric"`
	Size      string `json:"size" validate:"required,numeric"`
	Time      string `json:"time" validate:"required"`
	Side      string `json:"side" validate:"required,oneof=BUY SELL"`
}

type tradesResponse struct {
	Trades []tradeWire `json:"trades"`
}

// CoinbaseSource implements TradeSource against a Coinbase-shaped public
// market-trades HTTP endpoint, per spec.md §6.
type CoinbaseSource struct {
	client   *resty.Client
	limiter  *rate.Limiter
	validate *validator.Validate
	pairs    []string
}

// CoinbaseConfig configures a CoinbaseSource.
type CoinbaseConfig struct {
	BaseURL        string
	MinDelay       time.Duration // inter-request delay; spec default 0.12s
	SupportedPairs []string
}

// DefaultCoinbaseConfig returns spec.md §6's documented defaults.
func DefaultCoinbaseConfig() CoinbaseConfig {
	return CoinbaseConfig{
		BaseURL:        defaultBaseURL,
		MinDelay:       120 * time.Millisecond,
		SupportedPairs: []string{"BTC-USD", "ETH-USD"},
	}
}

// NewCoinbaseSource builds a CoinbaseSource from cfg, zero-valuing fields
// falling back to DefaultCoinbaseConfig.
func NewCoinbaseSource(cfg CoinbaseConfig) *CoinbaseSource {
	def := DefaultCoinbaseConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = def.MinDelay
	}
	if len(cfg.SupportedPairs) == 0 {
		cfg.SupportedPairs = def.SupportedPairs
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	// One token every MinDelay, burst 1 — spec's "configurable minimum
	// inter-request delay", not a bucket of accumulated bursts.
	limiter := rate.NewLimiter(rate.Every(cfg.MinDelay), 1)

	return &CoinbaseSource{
		client:   client,
		limiter:  limiter,
		validate: validator.New(),
		pairs:    cfg.SupportedPairs,
	}
}

func (s *CoinbaseSource) Name() string { return "coinbase" }

func (s *CoinbaseSource) SupportedPairs() []string { return s.pairs }

// FetchWindow implements the backward-page-walk algorithm of spec.md §4.1.
func (s *CoinbaseSource) FetchWindow(ctx context.Context, pair string, start, end time.Time) ([]model.Trade, error) {
	var all []model.Trade
	seen := make(map[string]struct{})

	cursor := end
	for {
		page, err := s.fetchPage(ctx, pair, start, cursor)
		if err != nil {
			return nil, err
		}

		for _, t := range page {
			// The endpoint's bounds are inclusive and second-granular; keep
			// only trades inside the half-open [start, end) window.
			if t.Timestamp.Before(start) || !t.Timestamp.Before(end) {
				continue
			}
			if _, dup := seen[t.TradeID]; dup {
				continue
			}
			seen[t.TradeID] = struct{}{}
			all = append(all, t)
		}

		if len(page) < pageLimit {
			break
		}

		earliest := page[0].Timestamp
		for _, t := range page {
			if t.Timestamp.Before(earliest) {
				earliest = t.Timestamp
			}
		}
		if !earliest.Before(cursor) {
			return nil, fmt.Errorf("%w: pair=%s window=[%s,%s]", ErrWindowTooBusy, pair, start, end)
		}
		cursor = earliest
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })
	return all, nil
}

// fetchPage performs one rate-limited, retried GET for [start, cursor],
// returning the page newest-first as received from the wire.
func (s *CoinbaseSource) fetchPage(ctx context.Context, pair string, start, cursor time.Time) ([]model.Trade, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var result tradesResponse
	var lastErr error

	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"product_id": pair,
				"start":      strconv.FormatInt(start.Unix(), 10),
				"end":        strconv.FormatInt(cursor.Unix(), 10),
				"limit":      strconv.Itoa(pageLimit),
			}).
			SetResult(&result).
			ForceContentType("application/json").
			Get("/market-trades")

		if err == nil && resp.StatusCode() == http.StatusOK {
			break
		}

		if err == nil && !isTransientStatus(resp.StatusCode()) {
			return nil, fmt.Errorf("source: non-transient status %d: %s", resp.StatusCode(), resp.String())
		}

		if err != nil {
			lastErr = fmt.Errorf("source: request failed: %w", err)
		} else {
			lastErr = fmt.Errorf("source: transient status %d", resp.StatusCode())
		}

		if attempt == len(backoffSchedule) {
			return nil, fmt.Errorf("source: exhausted retries for pair=%s: %w", pair, lastErr)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoffSchedule[attempt]):
		}
	}

	out := make([]model.Trade, 0, len(result.Trades))
	for _, w := range result.Trades {
		if err := s.validate.Struct(w); err != nil {
			return nil, fmt.Errorf("source: protocol violation: %w", err)
		}
		t, err := w.toTrade(pair)
		if err != nil {
			return nil, fmt.Errorf("source: protocol violation: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func isTransientStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func (w tradeWire) toTrade(pair string) (model.Trade, error) {
	ts, err := time.Parse(time.RFC3339, w.Time)
	if err != nil {
		return model.Trade{}, fmt.Errorf("parse time %q: %w", w.Time, err)
	}
	price, err := decimal.NewFromString(w.Price)
	if err != nil {
		return model.Trade{}, fmt.Errorf("parse price %q: %w", w.Price, err)
	}
	size, err := decimal.NewFromString(w.Size)
	if err != nil {
		return model.Trade{}, fmt.Errorf("parse size %q: %w", w.Size, err)
	}
	return model.Trade{
		Timestamp: ts.UTC(),
		TradeID:   w.TradeID,
		Source:    "coinbase",
		Pair:      pair,
		Price:     price,
		Size:      size,
		Side:      model.ParseSide(w.Side),
	}, nil
}
