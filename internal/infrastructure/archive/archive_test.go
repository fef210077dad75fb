package archive_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/payflow-labs/payflow/internal/domain/event"
	"github.com/payflow-labs/payflow/internal/infrastructure/archive"
	"github.com/payflow-labs/payflow/internal/infrastructure/eventbus"
	"github.com/payflow-labs/payflow/internal/infrastructure/persistence/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)

	if err := sqlite.RunMigrations(db); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

type fakeSink struct {
	delivered []event.Event
	fail      bool
}

func (f *fakeSink) Deliver(evt event.Event) error {
	if f.fail {
		return errors.New("sink down")
	}
	f.delivered = append(f.delivered, evt)
	return nil
}

func testEvent(id string, t event.Type) event.Event {
	return event.Event{
		ID:        id,
		Type:      t,
		Timestamp: time.Now().UTC(),
		PaymentID: "pay-1",
		Version:   event.SchemaVersion,
		Source:    event.Source,
		Data:      map[string]any{"reason": "test"},
	}
}

func TestRecorder_PersistsEvent(t *testing.T) {
	repo := archive.NewSQLiteRepository(setupTestDB(t))
	recorder := &archive.Recorder{Repo: repo}

	require.NoError(t, recorder.Handle(testEvent("evt-1", event.PaymentCreated)))

	rows, err := repo.FindUnexported(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "evt-1", rows[0].ID)
	assert.Equal(t, event.PaymentCreated, rows[0].Type)
	assert.Equal(t, "pay-1", rows[0].PaymentID)
	assert.False(t, rows[0].Exported)
}

func TestRecorder_SubscribeAllJournalsEveryType(t *testing.T) {
	repo := archive.NewSQLiteRepository(setupTestDB(t))
	recorder := &archive.Recorder{Repo: repo}

	bus := eventbus.New(eventbus.Options{
		HistoryEnabled: true,
		MaxHistorySize: 10,
		RetryAttempts:  1,
		RetryBaseDelay: time.Millisecond,
	})

	ids := recorder.SubscribeAll(bus)
	assert.Len(t, ids, len(event.Types()))

	bus.Publish(testEvent("evt-1", event.PaymentCreated))
	bus.Publish(testEvent("evt-2", event.PaymentCompleted))
	bus.Publish(testEvent("evt-3", event.PaymentDeleted))

	rows, err := repo.FindUnexported(10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExporter_DeliversAndMarks(t *testing.T) {
	repo := archive.NewSQLiteRepository(setupTestDB(t))
	recorder := &archive.Recorder{Repo: repo}
	require.NoError(t, recorder.Handle(testEvent("evt-1", event.PaymentCompleted)))

	sink := &fakeSink{}
	exporter := &archive.Exporter{
		Repo:         repo,
		Sink:         sink,
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	exporter.ExportOnce()

	require.Len(t, sink.delivered, 1)
	assert.Equal(t, "evt-1", sink.delivered[0].ID)
	assert.Equal(t, event.PaymentCompleted, sink.delivered[0].Type)

	rows, err := repo.FindUnexported(10)
	require.NoError(t, err)
	assert.Empty(t, rows, "delivered events must be marked exported")
}

func TestExporter_FailedDeliveryStaysQueued(t *testing.T) {
	repo := archive.NewSQLiteRepository(setupTestDB(t))
	recorder := &archive.Recorder{Repo: repo}
	require.NoError(t, recorder.Handle(testEvent("evt-1", event.PaymentFailed)))

	sink := &fakeSink{fail: true}
	exporter := &archive.Exporter{
		Repo:         repo,
		Sink:         sink,
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	exporter.ExportOnce()

	rows, err := repo.FindUnexported(10)
	require.NoError(t, err)
	require.Len(t, rows, 1, "failed delivery leaves the row for the next pass")

	sink.fail = false
	exporter.ExportOnce()

	rows, err = repo.FindUnexported(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
