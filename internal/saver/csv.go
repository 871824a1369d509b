package saver

import (
	"encoding/csv"
	"os"
	"strconv"

	"arcana/internal/model"
)

// CSVSaver writes bars as CSV with header:
// time_start,time_end,bar_type,source,pair,open,high,low,close,vwap,volume,dollar_volume,tick_count
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time_start", "time_end", "bar_type", "source", "pair",
		"open", "high", "low", "close", "vwap", "volume", "dollar_volume", "tick_count"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.TimeStart.UTC().Format("2006-01-02T15:04:05.000000000Z"),
			b.TimeEnd.UTC().Format("2006-01-02T15:04:05.000000000Z"),
			b.BarType,
			b.Source,
			b.Pair,
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			b.VWAP.String(),
			b.Volume.String(),
			b.DollarVolume.String(),
			strconv.FormatInt(b.TickCount, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
