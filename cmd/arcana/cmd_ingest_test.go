package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcana/internal/model"
)

type fakeTradeSource struct {
	pairs []string
}

func (f *fakeTradeSource) FetchWindow(_ context.Context, _ string, _, _ time.Time) ([]model.Trade, error) {
	return nil, nil
}
func (f *fakeTradeSource) SupportedPairs() []string { return f.pairs }
func (f *fakeTradeSource) Name() string             { return "fake" }

func TestSupportsPair(t *testing.T) {
	app := &App{Source: &fakeTradeSource{pairs: []string{"BTC-USD", "ETH-USD"}}}
	assert.True(t, supportsPair(app, "BTC-USD"))
	assert.False(t, supportsPair(app, "XRP-USD"))
}

func TestParseTimeArgRFC3339(t *testing.T) {
	got, err := parseTimeArg("2024-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got)
}

func TestParseTimeArgBareDate(t *testing.T) {
	got, err := parseTimeArg("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTimeArgEmpty(t *testing.T) {
	_, err := parseTimeArg("")
	assert.Error(t, err)
}

func TestParseTimeArgUnparseable(t *testing.T) {
	_, err := parseTimeArg("not-a-date")
	assert.Error(t, err)
}
