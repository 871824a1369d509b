package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func trade(price, size string, ts time.Time) Trade {
	return Trade{
		Timestamp: ts,
		TradeID:   "t",
		Source:    "coinbase",
		Pair:      "BTC-USD",
		Price:     dec(price),
		Size:      dec(size),
		Side:      UnknownSide,
	}
}

func TestAccumulatorEmpty(t *testing.T) {
	var a Accumulator
	assert.True(t, a.Empty())
}

func TestAccumulatorAddTracksOHLC(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var a Accumulator
	a.Add(trade("10", "1", base))
	a.Add(trade("12", "1", base.Add(time.Second)))
	a.Add(trade("9", "1", base.Add(2*time.Second)))
	a.Add(trade("11", "1", base.Add(3*time.Second)))

	assert.False(t, a.Empty())
	assert.True(t, a.Open.Equal(dec("10")))
	assert.True(t, a.High.Equal(dec("12")))
	assert.True(t, a.Low.Equal(dec("9")))
	assert.True(t, a.Close.Equal(dec("11")))
	assert.Equal(t, int64(4), a.TickCount)
	assert.Equal(t, base, a.TimeStart)
	assert.Equal(t, base.Add(3*time.Second), a.TimeEnd)
}

func TestAccumulatorVWAP(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var a Accumulator
	a.Add(trade("10", "2", base))
	a.Add(trade("11", "2", base.Add(time.Second)))
	a.Add(trade("12", "2", base.Add(2*time.Second)))

	// (10*2 + 11*2 + 12*2) / 6 = 66/6 = 11.0
	require.True(t, a.VWAP().Equal(dec("11")))
	require.True(t, a.Volume.Equal(dec("6")))
	require.True(t, a.DollarVolume.Equal(dec("66")))
}

func TestAccumulatorVWAPZeroVolume(t *testing.T) {
	var a Accumulator
	assert.True(t, a.VWAP().Equal(decimal.Zero))
}

func TestAccumulatorEmitBarAndReset(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var a Accumulator
	a.Add(trade("10", "1", base))
	a.Add(trade("12", "1", base.Add(time.Second)))

	bar := a.EmitBar("tick_2", "coinbase", "BTC-USD", nil)
	assert.Equal(t, "tick_2", bar.BarType)
	assert.Equal(t, int64(2), bar.TickCount)
	assert.True(t, bar.Open.Equal(dec("10")))
	assert.True(t, bar.Close.Equal(dec("12")))
	assert.Nil(t, bar.Metadata)

	// EmitBar must not mutate the accumulator.
	assert.False(t, a.Empty())

	a.Reset()
	assert.True(t, a.Empty())
	assert.True(t, a.Volume.Equal(decimal.Zero))
}
