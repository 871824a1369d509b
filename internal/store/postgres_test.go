package store

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalMetadataNil(t *testing.T) {
	data, err := marshalMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMarshalMetadataNormalizesDecimals(t *testing.T) {
	meta := map[string]any{
		"ewma_expected":  decimal.RequireFromString("12.50"),
		"ewma_bar_count": int64(3),
	}
	data, err := marshalMetadata(meta)
	require.NoError(t, err)

	out, err := unmarshalMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, "12.5", out["ewma_expected"], "decimal.Decimal.String() drops trailing zeros")
	assert.Equal(t, float64(3), out["ewma_bar_count"], "JSON round-trips all numbers as float64")
}

func TestUnmarshalMetadataInvalidJSON(t *testing.T) {
	_, err := unmarshalMetadata([]byte("not json"))
	assert.Error(t, err)
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, isUndefinedTable(errors.New(`ERROR: relation "bars_tick_500_btc_usd" does not exist (SQLSTATE 42P01)`)))
	assert.True(t, isUndefinedTable(errors.New(`some error SQLSTATE 42P01`)))
	assert.False(t, isUndefinedTable(errors.New("connection refused")))
	assert.False(t, isUndefinedTable(nil))
}

func TestIsUndefinedFunction(t *testing.T) {
	assert.True(t, isUndefinedFunction(errors.New(`ERROR: function create_hypertable(unknown, unknown) does not exist (SQLSTATE 42883)`)))
	assert.False(t, isUndefinedFunction(errors.New("connection refused")))
	assert.False(t, isUndefinedFunction(nil))
}
