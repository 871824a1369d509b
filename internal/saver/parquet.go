package saver

import (
	"github.com/parquet-go/parquet-go"

	"arcana/internal/model"
)

// barRow is the on-disk parquet row shape for a model.Bar: decimals widen
// to strings to preserve exact precision (parquet-go has no native decimal
// Go type binding here), timestamps widen to Unix nanoseconds.
type barRow struct {
	TimeStart    int64  `parquet:"time_start"`
	TimeEnd      int64  `parquet:"time_end"`
	BarType      string `parquet:"bar_type"`
	Source       string `parquet:"source"`
	Pair         string `parquet:"pair"`
	Open         string `parquet:"open"`
	High         string `parquet:"high"`
	Low          string `parquet:"low"`
	Close        string `parquet:"close"`
	VWAP         string `parquet:"vwap"`
	Volume       string `parquet:"volume"`
	DollarVolume string `parquet:"dollar_volume"`
	TickCount    int64  `parquet:"tick_count"`
}

func toBarRow(b model.Bar) barRow {
	return barRow{
		TimeStart:    b.TimeStart.UTC().UnixNano(),
		TimeEnd:      b.TimeEnd.UTC().UnixNano(),
		BarType:      b.BarType,
		Source:       b.Source,
		Pair:         b.Pair,
		Open:         b.Open.String(),
		High:         b.High.String(),
		Low:          b.Low.String(),
		Close:        b.Close.String(),
		VWAP:         b.VWAP.String(),
		Volume:       b.Volume.String(),
		DollarVolume: b.DollarVolume.String(),
		TickCount:    b.TickCount,
	}
}

// ParquetSaver writes bars as a Parquet file, one row group, schema
// inferred from barRow.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []model.Bar, path string) error {
	rows := make([]barRow, len(bars))
	for i, b := range bars {
		rows[i] = toBarRow(b)
	}
	return parquet.WriteFile(path, rows)
}
