package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"arcana/internal/model"
)

// PostgresStore is the production Store implementation, backed by a
// pgxpool.Pool. Bar tables are created lazily and their existence cached
// in-process to avoid a round-trip per insert.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	mu            sync.Mutex
	knownBarTable map[string]bool
}

// NewPostgresStore wraps an already-configured pool. logger may be nil, in
// which case slog.Default() is used for the hypertable-fallback warning.
func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, logger: logger, knownBarTable: make(map[string]bool)}
}

// DSN renders a libpq-style connection string from discrete parameters,
// mirroring the shape of a typical pg config block (host/port/name/user/
// password).
func DSN(host string, port int, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

// Connect opens a pgxpool.Pool against dsn and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createRawTradesSQL); err != nil {
		return fmt.Errorf("create raw_trades: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createRawTradesPairIndexSQL); err != nil {
		return fmt.Errorf("create raw_trades index: %w", err)
	}
	if err := s.attemptHypertable(ctx, hypertableRawSQL, "raw_trades"); err != nil {
		return err
	}
	return nil
}

// attemptHypertable converts table into a TimescaleDB hypertable, falling
// back to a warning and a plain table when the extension isn't installed —
// create_hypertable is then simply undefined in this Postgres instance.
func (s *PostgresStore) attemptHypertable(ctx context.Context, sql, table string) error {
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		if isUndefinedFunction(err) {
			s.logger.Warn("create_hypertable not available, table left as a regular Postgres table; is the TimescaleDB extension installed?",
				"table", table)
			return nil
		}
		return fmt.Errorf("create hypertable %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) InsertTrades(ctx context.Context, trades []model.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(upsertTradeSQL, t.Timestamp.UTC(), t.TradeID, t.Source, t.Pair, t.Price, t.Size, t.Side.String())
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range trades {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert trade batch: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) ensureBarTable(ctx context.Context, barType, pair string) (string, error) {
	table := barTableName(barType, pair)

	s.mu.Lock()
	known := s.knownBarTable[table]
	s.mu.Unlock()
	if known {
		return table, nil
	}

	ddl := fmt.Sprintf(createBarTableSQLTemplate, table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return "", fmt.Errorf("create bar table %s: %w", table, err)
	}
	if err := s.attemptHypertable(ctx, fmt.Sprintf(hypertableBarSQLTemplate, table), table); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.knownBarTable[table] = true
	s.mu.Unlock()
	return table, nil
}

func (s *PostgresStore) InsertBars(ctx context.Context, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Group by physical table so each bar family/pair lazily creates its
	// own table once, then batches its own upserts.
	byTable := make(map[string][]model.Bar)
	for _, b := range bars {
		table, err := s.ensureBarTable(ctx, b.BarType, b.Pair)
		if err != nil {
			return err
		}
		byTable[table] = append(byTable[table], b)
	}

	for table, group := range byTable {
		sql := fmt.Sprintf(upsertBarSQLTemplate, table)
		batch := &pgx.Batch{}
		for _, b := range group {
			metaJSON, err := marshalMetadata(b.Metadata)
			if err != nil {
				return fmt.Errorf("marshal bar metadata: %w", err)
			}
			batch.Queue(sql, b.TimeStart.UTC(), b.TimeEnd.UTC(), b.BarType, b.Source, b.Pair,
				b.Open, b.High, b.Low, b.Close, b.VWAP, b.Volume, b.DollarVolume, b.TickCount,
				b.TimeSpan(), metaJSON)
		}
		br := s.pool.SendBatch(ctx, batch)
		for range group {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert bar batch into %s: %w", table, err)
			}
		}
		br.Close()
	}
	return nil
}

func (s *PostgresStore) MaxTradeTS(ctx context.Context, source, pair string) (time.Time, bool, error) {
	var ts *time.Time
	if err := s.pool.QueryRow(ctx, maxTradeTSSQL, source, pair).Scan(&ts); err != nil {
		return time.Time{}, false, fmt.Errorf("max trade ts: %w", err)
	}
	if ts == nil {
		return time.Time{}, false, nil
	}
	return ts.UTC(), true, nil
}

func (s *PostgresStore) TradesSince(ctx context.Context, source, pair string, ts time.Time) ([]model.Trade, error) {
	rows, err := s.pool.Query(ctx, tradesSinceSQL, source, pair, ts.UTC())
	if err != nil {
		return nil, fmt.Errorf("trades since: %w", err)
	}
	defer rows.Close()

	var out []model.Trade
	for rows.Next() {
		var t model.Trade
		var sideStr string
		if err := rows.Scan(&t.Timestamp, &t.TradeID, &t.Source, &t.Pair, &t.Price, &t.Size, &sideStr); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = model.ParseSide(sideStr)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trades since: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LastBar(ctx context.Context, barType, source, pair string) (model.Bar, bool, error) {
	table := barTableName(barType, pair)
	sql := fmt.Sprintf(lastBarSQLTemplate, table)

	var b model.Bar
	var metaJSON []byte
	err := s.pool.QueryRow(ctx, sql, barType, source, pair).Scan(
		&b.TimeStart, &b.TimeEnd, &b.BarType, &b.Source, &b.Pair,
		&b.Open, &b.High, &b.Low, &b.Close, &b.VWAP, &b.Volume, &b.DollarVolume, &b.TickCount, &metaJSON)
	if err != nil {
		if err == pgx.ErrNoRows || isUndefinedTable(err) {
			return model.Bar{}, false, nil
		}
		return model.Bar{}, false, fmt.Errorf("last bar: %w", err)
	}
	if len(metaJSON) > 0 {
		meta, uerr := unmarshalMetadata(metaJSON)
		if uerr != nil {
			return model.Bar{}, false, fmt.Errorf("unmarshal bar metadata: %w", uerr)
		}
		b.Metadata = meta
	}
	return b, true, nil
}

func (s *PostgresStore) ListBars(ctx context.Context, barType, source, pair string, start, end time.Time) ([]model.Bar, error) {
	table := barTableName(barType, pair)
	sql := fmt.Sprintf(listBarsSQLTemplate, table)

	rows, err := s.pool.Query(ctx, sql, barType, source, pair, start.UTC(), end.UTC())
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list bars: %w", err)
	}
	defer rows.Close()

	var out []model.Bar
	for rows.Next() {
		var b model.Bar
		var metaJSON []byte
		if err := rows.Scan(&b.TimeStart, &b.TimeEnd, &b.BarType, &b.Source, &b.Pair,
			&b.Open, &b.High, &b.Low, &b.Close, &b.VWAP, &b.Volume, &b.DollarVolume, &b.TickCount, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if len(metaJSON) > 0 {
			meta, uerr := unmarshalMetadata(metaJSON)
			if uerr != nil {
				return nil, fmt.Errorf("unmarshal bar metadata: %w", uerr)
			}
			b.Metadata = meta
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bars: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByDay(ctx context.Context, source, pair string, start, end time.Time) ([]DayCount, error) {
	rows, err := s.pool.Query(ctx, countByDaySQL, source, pair, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("count by day: %w", err)
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count by day: %w", err)
	}
	return out, nil
}

func marshalMetadata(meta map[string]any) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	normalized := make(map[string]any, len(meta))
	for k, v := range meta {
		if d, ok := v.(decimal.Decimal); ok {
			normalized[k] = d.String()
		} else {
			normalized[k] = v
		}
	}
	return json.Marshal(normalized)
}

func unmarshalMetadata(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// isUndefinedTable reports whether err is a Postgres "relation does not
// exist" error — the expected shape of LastBar on a family/pair that has
// never emitted a bar.
func isUndefinedTable(err error) bool {
	return err != nil && containsAny(err.Error(), "does not exist", "SQLSTATE 42P01")
}

// isUndefinedFunction reports whether err is Postgres's "function does not
// exist" error (SQLSTATE 42883) — the shape create_hypertable fails with
// when the TimescaleDB extension isn't installed.
func isUndefinedFunction(err error) bool {
	return err != nil && containsAny(err.Error(), "SQLSTATE 42883")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if len(s) >= len(sub) && indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
