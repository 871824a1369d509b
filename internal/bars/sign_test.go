package bars

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"arcana/internal/model"
)

func TestSignStateExplicitSide(t *testing.T) {
	s := newSignState()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, s.next(mkSideTrade("10", "1", model.Buy, base)))
	assert.Equal(t, -1, s.next(mkSideTrade("10", "1", model.Sell, base)))
}

// Tick rule: unknown side infers sign from price movement, carrying the
// previous sign on a flat print. The very first trade defaults to +1.
func TestSignStateTickRule(t *testing.T) {
	s := newSignState()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, s.next(mkSideTrade("10", "1", model.UnknownSide, base)), "first trade defaults to +1")
	assert.Equal(t, 1, s.next(mkSideTrade("11", "1", model.UnknownSide, base)), "price rose")
	assert.Equal(t, -1, s.next(mkSideTrade("9", "1", model.UnknownSide, base)), "price fell")
	assert.Equal(t, -1, s.next(mkSideTrade("9", "1", model.UnknownSide, base)), "flat print carries previous sign")
}
