package sqlite

import "database/sql"

func RunMigrations(db *sql.DB) error {
	stmts := []string{

		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			method TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			customer_id TEXT NOT NULL,
			merchant_id TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			processed_at DATETIME,
			failure_reason TEXT NOT NULL DEFAULT '',
			transaction_id TEXT
		);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id
			ON payments (transaction_id) WHERE transaction_id IS NOT NULL;`,

		`CREATE TABLE IF NOT EXISTS archived_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			payment_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			exported INTEGER NOT NULL DEFAULT 0,
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
