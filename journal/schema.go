package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	cycle_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	target REAL NOT NULL,
	previous REAL NOT NULL,
	price REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_time ON orders(time);
CREATE INDEX IF NOT EXISTS idx_orders_cycle ON orders(cycle_id);

CREATE TABLE IF NOT EXISTS positions (
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	sector TEXT NOT NULL,
	quantity REAL NOT NULL,
	avg_price REAL NOT NULL,
	last_price REAL NOT NULL,
	total_change REAL NOT NULL,
	pct_total_change REAL NOT NULL,
	pct_port REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_time ON positions(time);
`
