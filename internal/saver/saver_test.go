package saver

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcana/internal/model"
)

func sampleBars() []model.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Bar{
		{
			TimeStart: base, TimeEnd: base.Add(time.Minute),
			BarType: "tick_3", Source: "coinbase", Pair: "BTC-USD",
			Open: decimal.RequireFromString("10"), High: decimal.RequireFromString("12"),
			Low: decimal.RequireFromString("9"), Close: decimal.RequireFromString("11"),
			VWAP: decimal.RequireFromString("10.5"), Volume: decimal.RequireFromString("3"),
			DollarVolume: decimal.RequireFromString("31.5"), TickCount: 3,
		},
	}
}

func TestNewBarSaver(t *testing.T) {
	assert.IsType(t, CSVSaver{}, NewBarSaver("csv"))
	assert.IsType(t, CSVSaver{}, NewBarSaver("CSV"))
	assert.IsType(t, JSONSaver{}, NewBarSaver("json"))
	assert.IsType(t, ParquetSaver{}, NewBarSaver("parquet"))
	assert.Nil(t, NewBarSaver("xml"))
	assert.Nil(t, NewBarSaver(""))
}

func TestCSVSaverRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	s := CSVSaver{}
	require.NoError(t, s.Save(sampleBars(), path))
	assert.Equal(t, "csv", s.Extension())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one bar
	assert.Equal(t, "tick_3", rows[1][2])
	assert.Equal(t, "11", rows[1][8])
}

func TestJSONSaverRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.json")
	s := JSONSaver{}
	require.NoError(t, s.Save(sampleBars(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []model.Bar
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "tick_3", out[0].BarType)
}

func TestParquetSaverWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.parquet")
	s := ParquetSaver{}
	require.NoError(t, s.Save(sampleBars(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestToBarRowWidensDecimalsAndTimes(t *testing.T) {
	bars := sampleBars()
	row := toBarRow(bars[0])
	assert.Equal(t, "11", row.Close)
	assert.Equal(t, bars[0].TimeStart.UnixNano(), row.TimeStart)
}
