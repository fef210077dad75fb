package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/payflow-labs/payflow/internal/domain/event"
	"github.com/payflow-labs/payflow/internal/infra/logging"
)

// Exporter drains unexported archive rows to a sink on a polling loop.
// Delivery failures leave the row unexported so the next pass retries it.
type Exporter struct {
	Repo         Repository
	Sink         Sink
	PollInterval time.Duration
	BatchSize    int
	Logger       logging.Logger
}

func (e *Exporter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.ExportOnce()
		}
	}
}

func (e *Exporter) ExportOnce() {
	rows, err := e.Repo.FindUnexported(e.BatchSize)
	if err != nil {
		e.logger().Error("archive scan failed", map[string]any{"error": err.Error()})
		return
	}

	for _, row := range rows {
		var evt event.Event
		if err := json.Unmarshal(row.Payload, &evt); err != nil {
			e.logger().Error("corrupt archived event", map[string]any{
				"event-id": row.ID,
				"error":    err.Error(),
			})
			continue
		}

		if err := e.Sink.Deliver(evt); err != nil {
			continue
		}

		_ = e.Repo.MarkExported(row.ID)
	}
}

func (e *Exporter) logger() logging.Logger {
	if e.Logger == nil {
		return logging.Nop{}
	}
	return e.Logger
}

// LogSink writes exported events to the log; the default outbound feed when
// no real downstream transport is configured.
type LogSink struct {
	Logger logging.Logger
}

func (s *LogSink) Deliver(evt event.Event) error {
	s.Logger.Info("event exported", map[string]any{
		"event-id":   evt.ID,
		"event-type": evt.Type,
		"payment-id": evt.PaymentID,
	})
	return nil
}
