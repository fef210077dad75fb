package archive

import (
	"database/sql"

	"github.com/payflow-labs/payflow/internal/domain/event"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db}
}

func (r *SQLiteRepository) Save(evt ArchivedEvent) error {
	_, err := r.db.Exec(`
		INSERT INTO archived_events (id, event_type, payment_id, payload, exported, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		evt.ID,
		string(evt.Type),
		evt.PaymentID,
		evt.Payload,
		0,
		evt.CreatedAt,
	)
	return err
}

func (r *SQLiteRepository) FindUnexported(limit int) ([]ArchivedEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, event_type, payment_id, payload, exported, created_at
		FROM archived_events
		WHERE exported = 0
		ORDER BY created_at
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ArchivedEvent

	for rows.Next() {
		var evt ArchivedEvent
		var eventType string
		var exported int

		if err := rows.Scan(
			&evt.ID,
			&eventType,
			&evt.PaymentID,
			&evt.Payload,
			&exported,
			&evt.CreatedAt,
		); err != nil {
			return nil, err
		}

		evt.Type = event.Type(eventType)
		evt.Exported = exported == 1
		events = append(events, evt)
	}

	return events, rows.Err()
}

func (r *SQLiteRepository) MarkExported(id string) error {
	_, err := r.db.Exec(`
		UPDATE archived_events
		SET exported = 1
		WHERE id = ?
	`, id)

	return err
}
