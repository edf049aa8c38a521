package sqlite

import "database/sql"

func RunMigrations(db *sql.DB) error {
	stmts := []string{

		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			processor_id TEXT NOT NULL DEFAULT '',
			checkout_id TEXT NOT NULL DEFAULT '',
			order_id TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			charge_status TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			return_url TEXT NOT NULL DEFAULT ''
		);`,

		`CREATE INDEX IF NOT EXISTS idx_payments_processor
			ON payments (processor_id) WHERE active = 1;`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			payment_id TEXT NOT NULL REFERENCES payments (id),
			kind TEXT NOT NULL,
			token TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL,
			currency TEXT NOT NULL,
			success INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_payment
			ON transactions (payment_id);`,

		`CREATE TABLE IF NOT EXISTS checkouts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL,
			shipping_price INTEGER NOT NULL DEFAULT 0,
			discount INTEGER NOT NULL DEFAULT 0,
			payment_id TEXT NOT NULL DEFAULT ''
		);`,

		`CREATE TABLE IF NOT EXISTS checkout_lines (
			checkout_id TEXT NOT NULL REFERENCES checkouts (id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			variant_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price INTEGER NOT NULL,
			available INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (checkout_id, position)
		);`,

		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			checkout_id TEXT NOT NULL,
			total INTEGER NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS order_lines (
			order_id TEXT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			variant_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price INTEGER NOT NULL,
			available INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (order_id, position)
		);`,

		`CREATE TABLE IF NOT EXISTS outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload BLOB NOT NULL,
			published INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
