// Package saver persists a slice of model.Bar to disk in one of several
// formats, for the "bars export" CLI verb. Adapted from the teacher's
// PacketSaver abstraction (internal/saver in the teacher tree), retargeted
// from raw aggregate packets to already-built model.Bar rows.
package saver

import (
	"strings"

	"arcana/internal/model"
)

// BarSaver persists bars to a single file at path.
type BarSaver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// NewBarSaver returns the BarSaver for format (csv, json, parquet),
// case-insensitive, or nil if unsupported.
func NewBarSaver(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}
