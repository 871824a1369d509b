package bars

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcana/internal/model"
)

// spec.md §8 seed test 5: TIB W=2, all-buy trades of size 1. theta grows
// 1,2,3,4. Bootstrap emits at the first trade (theta=1 > 0), seeding
// EWMA E=1; each subsequent bar emits after exactly one more trade since
// the unit imbalance per trade is constant and the sign never flips.
func TestImbalanceBuilderTIBSeedScenario(t *testing.T) {
	b := NewImbalanceBuilder("tib", 2, unitTick, "coinbase", "BTC-USD", nil)
	ts := seq(4)

	for i := 0; i < 4; i++ {
		bar, ok := b.ProcessTrade(mkTrade("10", "1", ts[i]))
		require.True(t, ok, "trade %d should emit a bar", i)
		assert.Equal(t, int64(1), bar.TickCount)
		assert.Equal(t, int64(i+1), bar.Metadata[model.MetaEWMABarCount])
	}
}

func TestImbalanceBuilderBarTypeAndWarmResume(t *testing.T) {
	b := NewImbalanceBuilder("vib", 10, unitVolume, "coinbase", "BTC-USD", nil)
	assert.Equal(t, "vib_10", b.BarType())

	prior := &model.Bar{
		Metadata: map[string]any{
			model.MetaEWMAExpected: "5",
			model.MetaEWMABarCount: int64(3),
			model.MetaLastSign:     int64(-1),
		},
	}
	warm := NewImbalanceBuilder("vib", 10, unitVolume, "coinbase", "BTC-USD", prior)
	assert.Equal(t, int64(3), warm.ewma.barCount)
	assert.Equal(t, -1, warm.sign.prevSign)
}

func TestImbalanceBuilderFlushDoesNotUpdateEWMA(t *testing.T) {
	b := NewImbalanceBuilder("vib", 2, unitVolume, "coinbase", "BTC-USD", nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Bootstrap on a large first trade seeds a high expected imbalance
	// (theta=10), so the small trades that follow never cross it.
	_, ok := b.ProcessTrade(mkTrade("10", "10", base))
	require.True(t, ok)
	require.Equal(t, int64(1), b.ewma.barCount)

	_, ok = b.ProcessTrade(mkTrade("10", "1", base.Add(time.Second)))
	require.False(t, ok)
	_, ok = b.ProcessTrade(mkTrade("10", "1", base.Add(2*time.Second)))
	require.False(t, ok)

	bar, ok := b.Flush()
	require.True(t, ok)
	assert.Equal(t, int64(2), bar.TickCount)
	assert.Equal(t, int64(1), b.ewma.barCount, "Flush must not advance the EWMA bar count")
}
