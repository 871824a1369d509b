package store

const createRawTradesSQL = `
CREATE TABLE IF NOT EXISTS raw_trades (
	"timestamp"   TIMESTAMPTZ NOT NULL,
	trade_id      TEXT        NOT NULL,
	source        TEXT        NOT NULL,
	pair          TEXT        NOT NULL,
	price         NUMERIC     NOT NULL,
	size          NUMERIC     NOT NULL,
	side          TEXT        NOT NULL,
	PRIMARY KEY (source, trade_id, "timestamp")
)`

const createRawTradesPairIndexSQL = `
CREATE INDEX IF NOT EXISTS raw_trades_pair_ts_idx
	ON raw_trades (source, pair, "timestamp")`

// hypertableRawSQL converts raw_trades into a TimescaleDB hypertable
// partitioned on "timestamp" (spec.md §6). A plain table is left in place
// when the extension isn't installed — see isUndefinedFunction.
const hypertableRawSQL = `
SELECT create_hypertable('raw_trades', 'timestamp', if_not_exists => TRUE)`

// hypertableBarSQLTemplate does the same for a lazily-created bar table,
// partitioned on time_start.
const hypertableBarSQLTemplate = `
SELECT create_hypertable('%s', 'time_start', if_not_exists => TRUE)`

const upsertTradeSQL = `
INSERT INTO raw_trades ("timestamp", trade_id, source, pair, price, size, side)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (source, trade_id, "timestamp") DO NOTHING`

const maxTradeTSSQL = `
SELECT MAX("timestamp") FROM raw_trades WHERE source = $1 AND pair = $2`

const tradesSinceSQL = `
SELECT "timestamp", trade_id, source, pair, price, size, side
FROM raw_trades
WHERE source = $1 AND pair = $2 AND "timestamp" >= $3
ORDER BY "timestamp" ASC`

const countByDaySQL = `
SELECT date_trunc('day', "timestamp") AS day, COUNT(*)
FROM raw_trades
WHERE source = $1 AND pair = $2 AND "timestamp" >= $3 AND "timestamp" < $4
GROUP BY day
ORDER BY day ASC`

// createBarTableSQLTemplate is formatted with the physical table name; table names
// are derived from a restricted charset (see slug.go) so this is not
// susceptible to injection via user-controlled bar_type/pair strings.
const createBarTableSQLTemplate = `
CREATE TABLE IF NOT EXISTS %s (
	time_start    TIMESTAMPTZ NOT NULL,
	time_end      TIMESTAMPTZ NOT NULL,
	bar_type      TEXT        NOT NULL,
	source        TEXT        NOT NULL,
	pair          TEXT        NOT NULL,
	open          NUMERIC     NOT NULL,
	high          NUMERIC     NOT NULL,
	low           NUMERIC     NOT NULL,
	close         NUMERIC     NOT NULL,
	vwap          NUMERIC     NOT NULL,
	volume        NUMERIC     NOT NULL,
	dollar_volume NUMERIC     NOT NULL,
	tick_count    BIGINT      NOT NULL,
	time_span     INTERVAL    NOT NULL,
	metadata      JSONB,
	PRIMARY KEY (bar_type, source, pair, time_start)
)`

const upsertBarSQLTemplate = `
INSERT INTO %s (time_start, time_end, bar_type, source, pair, open, high, low,
	close, vwap, volume, dollar_volume, tick_count, time_span, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (bar_type, source, pair, time_start) DO UPDATE SET
	time_end      = EXCLUDED.time_end,
	open          = EXCLUDED.open,
	high          = EXCLUDED.high,
	low           = EXCLUDED.low,
	close         = EXCLUDED.close,
	vwap          = EXCLUDED.vwap,
	volume        = EXCLUDED.volume,
	dollar_volume = EXCLUDED.dollar_volume,
	tick_count    = EXCLUDED.tick_count,
	time_span     = EXCLUDED.time_span,
	metadata      = EXCLUDED.metadata`

const lastBarSQLTemplate = `
SELECT time_start, time_end, bar_type, source, pair, open, high, low, close,
	vwap, volume, dollar_volume, tick_count, metadata
FROM %s
WHERE bar_type = $1 AND source = $2 AND pair = $3
ORDER BY time_start DESC
LIMIT 1`

const listBarsSQLTemplate = `
SELECT time_start, time_end, bar_type, source, pair, open, high, low, close,
	vwap, volume, dollar_volume, tick_count, metadata
FROM %s
WHERE bar_type = $1 AND source = $2 AND pair = $3
	AND time_start >= $4 AND time_start < $5
ORDER BY time_start ASC`
